package codec

import "errors"

// Sentinel errors for payload decoding.
var (
	// ErrMalformed is returned when a payload is truncated or inconsistent.
	ErrMalformed = errors.New("codec: malformed payload")

	// ErrUnexpectedTag is returned when a payload's type tag does not match
	// the decoder it was handed to.
	ErrUnexpectedTag = errors.New("codec: unexpected type tag")

	// ErrImageTooLarge is returned when an image blob declares more pixel
	// data than the decoder allows.
	ErrImageTooLarge = errors.New("codec: image exceeds size limit")
)
