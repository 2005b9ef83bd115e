package repository

import "errors"

// Sentinel kinds for registry errors.
var (
	ErrInvalidArgument = errors.New("invalid argument")
	ErrNotFound        = errors.New("match not found")
	ErrInvalidLimit    = errors.New("invalid summary limit")
)
