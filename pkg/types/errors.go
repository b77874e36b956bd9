package types

import "errors"

// Domain errors for type validation
var (
	ErrMissingPath  = errors.New("component path is required")
	ErrInvalidScore = errors.New("score must be between 0 and 1")
)
