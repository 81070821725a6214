package probe

import "errors"

// Sentinel kinds for probe errors.
var (
	ErrNoOrigin         = errors.New("probe origin is not set")
	ErrPagesFailed      = errors.New("one or more pages failed to load")
	ErrFeedbackFailed   = errors.New("feedback was not acknowledged")
	ErrCacheIneffective = errors.New("cached pages were fetched again")
)
