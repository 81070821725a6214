package query

import "errors"

// Errors returned by the query client.
var (
	ErrNoFetcher = errors.New("query client has no fetcher")
	ErrDecode    = errors.New("failed to decode cached data")
)
