package errors

import "errors"

var (
	ErrNotFound = errors.New("fleet resource not found")

	ErrInvalidID = errors.New("invalid fleet resource ID format")
)
