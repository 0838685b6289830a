package assettype

import (
	"fmt"
	"io"
)

// Ref identifies one asset inside a container file.
type Ref struct {
	// Container is the path or URL of the container file holding the asset.
	Container string

	// Name is the asset name inside the container.
	Name string

	// Offset is the absolute byte offset of the asset in the container.
	Offset int64

	// Size is the length in bytes of the asset's payload.
	Size int64

	// Kind is the content kind of the payload.
	Kind Kind

	// Hash identifies the payload content. Assets with byte-identical
	// payloads share a hash, across containers.
	Hash string
}

// String formats the ref for logs and errors.
func (r Ref) String() string {
	return fmt.Sprintf("%s:%s", r.Container, r.Name)
}

// Container is an open container file.
type Container interface {
	io.ReaderAt
	io.Closer

	// Size returns the container length in bytes.
	Size() int64
}
