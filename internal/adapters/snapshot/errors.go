package snapshot

import "errors"

// Sentinel error kinds for this package.
var (
	ErrEncode = errors.New("encode snapshot")
	ErrWrite  = errors.New("write snapshot")
)
