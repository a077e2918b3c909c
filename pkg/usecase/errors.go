package usecase

import "errors"

// Sentinel errors for use case layer
var (
	// ErrEmptyQuery is returned when a search query has no content
	ErrEmptyQuery = errors.New("search query is empty")
)
