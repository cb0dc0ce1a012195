package api

import "errors"

// Sentinel kinds for API errors.
var (
	ErrServe       = errors.New("dashboard serve failed")
	ErrBadRequest  = errors.New("bad request")
	ErrUnavailable = errors.New("dataset not loaded")
)
