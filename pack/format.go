package pack

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/opencontainers/go-digest"

	"github.com/meigma/assetpipe"
)

const (
	// Magic opens every pack file.
	Magic = "APAK"

	// Version is the format version written by this package.
	Version uint32 = 1

	// HeaderSize is the size of the fixed header preceding the index.
	HeaderSize = 16

	// DefaultMaxIndexSize is the default cap on the index length (64MB).
	DefaultMaxIndexSize = 64 << 20
)

// Sentinel errors.
var (
	// ErrInvalidPack is returned when a file is not a well-formed pack.
	ErrInvalidPack = errors.New("pack: invalid pack")

	// ErrUnsupportedVersion is returned for packs written by a newer format.
	ErrUnsupportedVersion = errors.New("pack: unsupported version")

	// ErrEmptyName is returned when an input has no name.
	ErrEmptyName = errors.New("pack: empty asset name")

	// ErrDuplicateName is returned when two inputs share a name.
	ErrDuplicateName = errors.New("pack: duplicate asset name")

	// ErrChecksum is returned when a payload does not match its digest.
	ErrChecksum = errors.New("pack: checksum mismatch")

	// ErrClosed is returned by a closed library.
	ErrClosed = errors.New("pack: library closed")
)

// Asset describes one asset stored in a pack.
type Asset struct {
	Name string
	Kind assetpipe.Kind

	// Offset is relative to the start of the data section.
	Offset int64
	Size   int64

	// Digest identifies the payload content.
	Digest digest.Digest
}

// header is the fixed-size prefix of a pack file.
type header struct {
	version  uint32
	indexLen uint64
}

func (h header) marshal() []byte {
	buf := make([]byte, 0, HeaderSize)
	buf = append(buf, Magic...)
	buf = binary.LittleEndian.AppendUint32(buf, h.version)
	return binary.LittleEndian.AppendUint64(buf, h.indexLen)
}

func parseHeader(buf []byte) (header, error) {
	if len(buf) < HeaderSize {
		return header{}, fmt.Errorf("%w: short header", ErrInvalidPack)
	}
	if string(buf[:4]) != Magic {
		return header{}, fmt.Errorf("%w: bad magic %q", ErrInvalidPack, buf[:4])
	}
	h := header{
		version:  binary.LittleEndian.Uint32(buf[4:]),
		indexLen: binary.LittleEndian.Uint64(buf[8:]),
	}
	if h.version == 0 || h.version > Version {
		return header{}, fmt.Errorf("%w: %d", ErrUnsupportedVersion, h.version)
	}
	return h, nil
}
