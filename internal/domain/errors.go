package domain

import "errors"

// Sentinel errors. Use errors.Is to check them.
var (
	ErrNotFound        = errors.New("flashwise: not found")
	ErrInvalidResponse = errors.New("flashwise: invalid response")
	ErrInvalidDate     = errors.New("flashwise: invalid date")
)
