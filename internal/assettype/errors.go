package assettype

import "errors"

// Sentinel errors for asset operations.
var (
	// ErrNotFound is returned when a hash is absent from every cache tier and
	// cannot be located in the named container.
	ErrNotFound = errors.New("assetpipe: asset not found")

	// ErrAssetSize is returned when an asset claims an implausible length.
	ErrAssetSize = errors.New("assetpipe: implausible asset size")

	// ErrKindMismatch is returned when a payload decodes to a different kind
	// than the one requested.
	ErrKindMismatch = errors.New("assetpipe: asset kind mismatch")
)
