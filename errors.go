package assetpipe

import (
	"errors"

	"github.com/meigma/assetpipe/internal/assettype"
)

// Errors re-exported from assettype.
var (
	// ErrNotFound is returned when a hash is absent from every cache tier and
	// cannot be located in the named container.
	ErrNotFound = assettype.ErrNotFound

	// ErrAssetSize is returned when an asset claims an implausible length.
	ErrAssetSize = assettype.ErrAssetSize

	// ErrKindMismatch is returned when an asset is requested as a kind it
	// is not.
	ErrKindMismatch = assettype.ErrKindMismatch
)

// Lifecycle errors.
var (
	// ErrStarted is returned when Start is called on a running pipeline.
	ErrStarted = errors.New("assetpipe: pipeline already started")

	// ErrNotStarted is returned when waiting on a pipeline that was never started.
	ErrNotStarted = errors.New("assetpipe: pipeline not started")

	// ErrClosed is returned by operations on a disposed pipeline.
	ErrClosed = errors.New("assetpipe: pipeline disposed")
)
