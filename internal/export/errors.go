package export

import "errors"

var (
	// ErrUnsupportedFormat is returned by NewWriter for an unknown format.
	ErrUnsupportedFormat = errors.New("unsupported output format")

	// ErrMalformedText is returned by ReadText for input that is not in
	// the text export format.
	ErrMalformedText = errors.New("malformed text export")
)
