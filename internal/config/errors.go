package config

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidConfig is wrapped by every validation failure.
	ErrInvalidConfig = errors.New("invalid config")
	// ErrLoadConfig is wrapped when a file or environment source cannot be read.
	ErrLoadConfig = errors.New("load config failed")

	// ErrInvalidOrigin marks an origin that is not an absolute http(s) URL.
	ErrInvalidOrigin = fmt.Errorf("%w: origin", ErrInvalidConfig)
	// ErrInvalidBasePath marks a base path that does not look like "/segment".
	ErrInvalidBasePath = fmt.Errorf("%w: base_path", ErrInvalidConfig)
)
