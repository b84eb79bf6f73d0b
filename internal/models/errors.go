package models

import "errors"

// Custom errors
var (
	ErrNotFound       = errors.New("record not found")
	ErrAlreadySettled = errors.New("fixture already settled")
	ErrInvalidScore   = errors.New("invalid final score")
	ErrInvalidMatch   = errors.New("invalid match context")
)
