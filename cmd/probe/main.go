// Command probe loads every dashboard page through the data-access layer
// against a running deployment and reports what it saw.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/okian/regmatrix/internal/config"
	"github.com/okian/regmatrix/internal/probe"
)

const defaultProbeTimeout = 2 * time.Minute

// probeFlags holds the parsed flags for the root command.
type probeFlags struct {
	origin     string
	production bool
	hostname   string
	basePath   string
	workers    int
	rps        float64
	feedback   string
	timeout    time.Duration
	verbose    bool
}

func main() {
	var flags probeFlags
	root := &cobra.Command{
		Use:   "probe",
		Short: "Exercise a dashboard deployment end to end",
		Long: "Probe classifies the deployment, loads every page twice through the query cache, " +
			"optionally submits feedback, and logs the final statistics.",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runProbe(cmd, flags)
		},
	}

	f := root.Flags()
	f.StringVar(&flags.origin, "origin", "", "Origin the dashboard is served from (default from config)")
	f.BoolVar(&flags.production, "production", false, "Treat the build as production")
	f.StringVar(&flags.hostname, "hostname", "", "Host name used for classification (default: origin host)")
	f.StringVar(&flags.basePath, "base-path", "", "Base path of the static host (default from config)")
	f.IntVar(&flags.workers, "workers", 4, "Concurrent readers per page on the cold pass")
	f.Float64Var(&flags.rps, "rps", 0, "Maximum requests per second; 0 is unlimited")
	f.StringVar(&flags.feedback, "feedback", "", "Feedback to submit after loading pages")
	f.DurationVar(&flags.timeout, "timeout", defaultProbeTimeout, "Overall probe timeout")
	f.BoolVar(&flags.verbose, "verbose", false, "Enable verbose logging")

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func runProbe(cmd *cobra.Command, flags probeFlags) error {
	ctx, cancel := context.WithTimeout(context.Background(), flags.timeout)
	defer cancel()

	cfg, err := config.Load(ctx)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	f := cmd.Flags()
	if f.Changed("origin") {
		cfg.Origin = flags.origin
	}
	if f.Changed("production") {
		cfg.Production = flags.production
	}
	if f.Changed("hostname") {
		cfg.Hostname = flags.hostname
	}
	if f.Changed("base-path") {
		cfg.BasePath = flags.basePath
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	if err := probe.SetupLogging(cfg.LogLevel, flags.verbose); err != nil {
		return err
	}

	origin, err := cfg.OriginURL()
	if err != nil {
		return err
	}

	_, err = probe.Run(ctx, &probe.Config{
		Origin:     origin,
		Deployment: cfg.Deployment(),
		Workers:    flags.workers,
		RPS:        flags.rps,
		StaleTime:  cfg.StaleTime(),
		Feedback:   flags.feedback,
		Verbose:    flags.verbose,
	})
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("probe timed out after %s: %w", flags.timeout, err)
	}
	return err
}
