package crawler

import "errors"

var (
	// ErrFetchFailed is returned when a page cannot be fetched.
	// The wrapped error carries the transport error or the status code.
	ErrFetchFailed = errors.New("fetch failed")

	// ErrInvalidAddress is returned when an address has no scheme or no authority.
	ErrInvalidAddress = errors.New("invalid address")
)
