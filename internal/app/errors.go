package service

import "errors"

// Sentinel kinds for service errors.
var (
	ErrNotFound      = errors.New("page not found")
	ErrEmptyFeedback = errors.New("feedback is empty")
)
