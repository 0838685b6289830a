// Package batch reads the payloads of a group of assets from one container,
// coalescing adjacent ranges into single reads.
package batch

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"

	"github.com/meigma/assetpipe/internal/assettype"
	"github.com/meigma/assetpipe/internal/sizing"
)

const (
	// DefaultMaxAssetSize is the largest payload a single asset may claim.
	DefaultMaxAssetSize = 222444000

	// DefaultMaxSpanBytes caps how many bytes one coalesced read may cover.
	DefaultMaxSpanBytes = 8 << 20
)

// ErrShortRead is returned when a source returns fewer bytes than requested.
var ErrShortRead = errors.New("batch: short read")

// Ref is an alias for assettype.Ref.
type Ref = assettype.Ref

// Source provides random access to one open container.
type Source interface {
	io.ReaderAt
	Size() int64
}

// Result is the outcome of reading one asset.
type Result struct {
	Ref  Ref
	Data []byte
	Err  error
}

// Reader reads asset payloads from containers.
type Reader struct {
	maxAssetSize int64
	maxSpanBytes int64
	logger       *slog.Logger
}

// log returns the logger, falling back to a discard logger if nil.
func (r *Reader) log() *slog.Logger {
	if r.logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return r.logger
}

// ReaderOption configures a Reader.
type ReaderOption func(*Reader)

// WithMaxAssetSize sets the largest payload an asset may claim.
// Set to 0 to disable the limit.
func WithMaxAssetSize(limit int64) ReaderOption {
	return func(r *Reader) {
		r.maxAssetSize = max(limit, 0)
	}
}

// WithMaxSpanBytes caps the size of a coalesced read. Set to 0 to disable
// the cap, or to a negative value to read every asset separately.
func WithMaxSpanBytes(limit int64) ReaderOption {
	return func(r *Reader) {
		r.maxSpanBytes = limit
	}
}

// WithLogger sets the logger for read operations.
func WithLogger(logger *slog.Logger) ReaderOption {
	return func(r *Reader) {
		r.logger = logger
	}
}

// NewReader creates a Reader.
func NewReader(opts ...ReaderOption) *Reader {
	r := &Reader{
		maxAssetSize: DefaultMaxAssetSize,
		maxSpanBytes: DefaultMaxSpanBytes,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// MaxAssetSize returns the configured payload size limit.
func (r *Reader) MaxAssetSize() int64 {
	return r.maxAssetSize
}

// Validate checks that ref claims a plausible size and lies within a source
// of sourceSize bytes.
func Validate(ref Ref, sourceSize, maxAssetSize int64) error {
	if ref.Size < 0 || (maxAssetSize > 0 && ref.Size > maxAssetSize) {
		return fmt.Errorf("%w: %s claims %d bytes", assettype.ErrAssetSize, ref, ref.Size)
	}
	if !sizing.InRange(ref.Offset, ref.Size, sourceSize) {
		return fmt.Errorf("%w: %s range [%d,+%d) outside container of %d bytes",
			assettype.ErrAssetSize, ref, ref.Offset, ref.Size, sourceSize)
	}
	return nil
}

// ReadOne reads the payload of a single asset.
func (r *Reader) ReadOne(src Source, ref Ref) ([]byte, error) {
	if err := Validate(ref, src.Size(), r.maxAssetSize); err != nil {
		return nil, err
	}
	return readRange(src, ref.Offset, ref.Size)
}

// ReadAll reads every ref from src and hands each outcome to fn in offset
// order. Refs must be sorted by Offset. Adjacent refs are fetched with a
// single read; when such a read fails the refs are retried one by one, so a
// fault only costs the assets it actually covers.
func (r *Reader) ReadAll(src Source, refs []Ref, fn func(Result)) {
	sourceSize := src.Size()
	valid := make([]Ref, 0, len(refs))
	for _, ref := range refs {
		if err := Validate(ref, sourceSize, r.maxAssetSize); err != nil {
			fn(Result{Ref: ref, Err: err})
			continue
		}
		valid = append(valid, ref)
	}
	if len(valid) == 0 {
		return
	}

	if r.maxSpanBytes < 0 {
		for _, ref := range valid {
			data, err := readRange(src, ref.Offset, ref.Size)
			fn(Result{Ref: ref, Data: data, Err: err})
		}
		return
	}

	spans := groupAdjacent(valid, r.maxSpanBytes)
	r.log().Debug("batch read", "assets", len(valid), "spans", len(spans))
	for _, s := range spans {
		r.readSpan(src, s, fn)
	}
}

func (r *Reader) readSpan(src Source, s span, fn func(Result)) {
	data, err := readRange(src, s.start, s.end-s.start)
	if err != nil {
		if len(s.refs) == 1 {
			fn(Result{Ref: s.refs[0], Err: err})
			return
		}
		r.log().Debug("span read failed, reading assets separately", "start", s.start, "end", s.end, "error", err)
		for _, ref := range s.refs {
			data, err := readRange(src, ref.Offset, ref.Size)
			fn(Result{Ref: ref, Data: data, Err: err})
		}
		return
	}
	if len(s.refs) == 1 {
		fn(Result{Ref: s.refs[0], Data: data})
		return
	}
	// Each asset gets its own buffer; a cached payload must not pin the span.
	for _, ref := range s.refs {
		lo := ref.Offset - s.start
		fn(Result{Ref: ref, Data: slices.Clone(data[lo : lo+ref.Size])})
	}
}

// readRange reads exactly length bytes at off.
func readRange(src io.ReaderAt, off, length int64) ([]byte, error) {
	n, err := sizing.ToInt(uint64(length), assettype.ErrAssetSize) //nolint:gosec // length validated non-negative
	if err != nil {
		return nil, err
	}
	data := make([]byte, n)
	read, err := src.ReadAt(data, off)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("batch: read at %d: %w", off, err)
	}
	if read != n {
		return nil, fmt.Errorf("%w (%d of %d bytes at %d)", ErrShortRead, read, n, off)
	}
	return data, nil
}
