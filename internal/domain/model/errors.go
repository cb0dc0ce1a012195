package model

import "errors"

// Sentinel error kinds for this package.
var (
	ErrUnknownColumn = errors.New("unknown column")
	ErrNotNumeric    = errors.New("column is not numeric")
	ErrDuplicateDay  = errors.New("duplicate day")
)
