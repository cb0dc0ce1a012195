package service

import "errors"

// Sentinel errors for run orchestration.
var (
	ErrLoad    = errors.New("load raw data")
	ErrPrepare = errors.New("prepare dataset")
	ErrWrite   = errors.New("write outputs")
	ErrFetch   = errors.New("fetch raw data")
	ErrStarted = errors.New("service already started")
)
