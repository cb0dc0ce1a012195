package correlation

import "errors"

// Sentinel error kinds for this package.
var (
	ErrUnknownReference = errors.New("unknown reference column")
	ErrUnknownCandidate = errors.New("unknown candidate column")
	ErrUnknownFormat    = errors.New("unknown report format")
)
