package probe

import (
	"fmt"

	"github.com/okian/regmatrix/pkg/logger"
)

// SetupLogging initializes the global logger at the requested verbosity.
func SetupLogging(level string, verbose bool) error {
	if err := logger.Init(); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	if verbose {
		level = "debug"
	}
	if err := logger.SetLevelString(level); err != nil {
		return fmt.Errorf("failed to set log level: %w", err)
	}
	return nil
}
