package prep

import "errors"

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	ErrMalformedRecord = errors.New("malformed record")
	ErrInvalidTimezone = errors.New("invalid timezone")
)
