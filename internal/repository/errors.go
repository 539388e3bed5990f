package repository

import "github.com/pkg/errors"

// Common repository errors
var (
	ErrLoadFailed  = errors.New("failed to load collection")
	ErrSaveFailed  = errors.New("failed to save collection")
	ErrBadEncoding = errors.New("stored record has invalid encoding")
)
