package pack

import (
	"context"
	"errors"
	"fmt"
	"io"
	"iter"
	"log/slog"
	"os"
	"slices"

	"github.com/opencontainers/go-digest"

	"github.com/meigma/assetpipe"
	"github.com/meigma/assetpipe/internal/sizing"
	"github.com/meigma/assetpipe/pack/internal/fb"
)

// ReaderAtSizer is random-access storage of known length, such as an
// *os.File wrapper or an HTTP range source.
type ReaderAtSizer interface {
	io.ReaderAt
	Size() int64
}

// Pack is an open pack file. It is safe for concurrent use.
//
// Pack satisfies the pipeline's Container interface: ReadAt and Size address
// the whole file, so the absolute offsets in [Pack.Refs] can be read directly.
type Pack struct {
	name      string
	src       ReaderAtSizer
	closer    io.Closer
	dataStart int64
	index     []byte
	root      *fb.Pack
	byHash    map[string]int
	logger    *slog.Logger
}

// Option configures Open and OpenSource.
type Option func(*openConfig)

type openConfig struct {
	maxIndexSize int64
	logger       *slog.Logger
	closer       io.Closer
}

// WithMaxIndexSize caps the index length accepted from the header.
func WithMaxIndexSize(n int64) Option {
	return func(c *openConfig) {
		c.maxIndexSize = n
	}
}

// WithLogger sets the logger for pack operations.
func WithLogger(logger *slog.Logger) Option {
	return func(c *openConfig) {
		c.logger = logger
	}
}

// WithCloser sets a closer invoked by [Pack.Close].
func WithCloser(closer io.Closer) Option {
	return func(c *openConfig) {
		c.closer = closer
	}
}

type fileSource struct {
	*os.File
	size int64
}

func (f fileSource) Size() int64 { return f.size }

// Open opens the pack file at path. Close releases the file.
func Open(path string, opts ...Option) (*Pack, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	opts = append(opts, WithCloser(f))
	p, err := OpenSource(path, fileSource{File: f, size: info.Size()}, opts...)
	if err != nil {
		f.Close()
		return nil, err
	}
	return p, nil
}

// OpenSource reads the header and index of a pack stored in src. The name is
// used as the container of every ref the pack returns.
func OpenSource(name string, src ReaderAtSizer, opts ...Option) (*Pack, error) {
	cfg := openConfig{maxIndexSize: DefaultMaxIndexSize}
	for _, opt := range opts {
		opt(&cfg)
	}

	var hdr [HeaderSize]byte
	if _, err := src.ReadAt(hdr[:], 0); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: short header", ErrInvalidPack)
		}
		return nil, fmt.Errorf("pack: read header: %w", err)
	}
	h, err := parseHeader(hdr[:])
	if err != nil {
		return nil, err
	}

	indexLen, err := sizing.ToInt64(h.indexLen, ErrInvalidPack)
	if err != nil {
		return nil, err
	}
	if indexLen == 0 || indexLen > cfg.maxIndexSize {
		return nil, fmt.Errorf("%w: index length %d", ErrInvalidPack, indexLen)
	}
	if !sizing.InRange(HeaderSize, indexLen, src.Size()) {
		return nil, fmt.Errorf("%w: index exceeds file size %d", ErrInvalidPack, src.Size())
	}

	index := make([]byte, indexLen)
	if _, err := src.ReadAt(index, HeaderSize); err != nil {
		return nil, fmt.Errorf("pack: read index: %w", err)
	}

	p := &Pack{
		name:      name,
		src:       src,
		closer:    cfg.closer,
		dataStart: HeaderSize + indexLen,
		index:     index,
		logger:    cfg.logger,
	}
	if err := p.load(); err != nil {
		return nil, err
	}
	p.log().Debug("pack opened", "pack", name, "assets", len(p.byHash), "index_size", indexLen)
	return p, nil
}

// load parses and validates the index. Malformed FlatBuffers data panics
// inside the generated accessors, so every table is visited here once.
func (p *Pack) load() (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: failed to parse index: %v", ErrInvalidPack, r)
		}
	}()

	p.root = fb.GetRootAsPack(p.index, 0)
	dataSize := p.src.Size() - p.dataStart
	n := p.root.AssetsLength()
	if n > len(p.index)/4 {
		return fmt.Errorf("%w: asset count %d exceeds index size", ErrInvalidPack, n)
	}
	p.byHash = make(map[string]int, n)

	var prev []byte
	var entry fb.Asset
	for i := range n {
		if !p.root.Assets(&entry, i) {
			return fmt.Errorf("%w: missing asset %d", ErrInvalidPack, i)
		}
		a, err := toAsset(&entry)
		if err != nil {
			return err
		}
		if i > 0 && string(prev) >= a.Name {
			return fmt.Errorf("%w: index not sorted at %q", ErrInvalidPack, a.Name)
		}
		prev = entry.Name()
		if !sizing.InRange(a.Offset, a.Size, dataSize) {
			return fmt.Errorf("%w: asset %q out of range", ErrInvalidPack, a.Name)
		}
		if _, ok := p.byHash[a.Digest.String()]; !ok {
			p.byHash[a.Digest.String()] = i
		}
	}
	return nil
}

func toAsset(entry *fb.Asset) (Asset, error) {
	name := string(entry.Name())
	if name == "" {
		return Asset{}, fmt.Errorf("%w: asset without name", ErrInvalidPack)
	}
	kind := assetpipe.Kind(entry.Kind())
	if kind > assetpipe.KindMaterial {
		return Asset{}, fmt.Errorf("%w: asset %q has kind %d", ErrInvalidPack, name, kind)
	}
	off, err := sizing.ToInt64(entry.Offset(), ErrInvalidPack)
	if err != nil {
		return Asset{}, err
	}
	size, err := sizing.ToInt64(entry.Size(), ErrInvalidPack)
	if err != nil {
		return Asset{}, err
	}
	d, err := digest.Parse(string(entry.Hash()))
	if err != nil {
		return Asset{}, fmt.Errorf("%w: asset %q: %w", ErrInvalidPack, name, err)
	}
	return Asset{Name: name, Kind: kind, Offset: off, Size: size, Digest: d}, nil
}

// log returns the logger, falling back to a discard logger if nil.
func (p *Pack) log() *slog.Logger {
	if p.logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return p.logger
}

// Name returns the container name given when the pack was opened.
func (p *Pack) Name() string {
	return p.name
}

// Version returns the format version recorded in the index.
func (p *Pack) Version() uint32 {
	return p.root.Version()
}

// Len returns the number of assets in the pack.
func (p *Pack) Len() int {
	return p.root.AssetsLength()
}

// Assets returns an iterator over all assets in name order.
func (p *Pack) Assets() iter.Seq[Asset] {
	return func(yield func(Asset) bool) {
		var entry fb.Asset
		for i := range p.root.AssetsLength() {
			if !p.root.Assets(&entry, i) {
				return
			}
			a, err := toAsset(&entry)
			if err != nil {
				return
			}
			if !yield(a) {
				return
			}
		}
	}
}

// Lookup returns the asset with the given name.
func (p *Pack) Lookup(name string) (Asset, bool) {
	var entry fb.Asset
	if !p.root.AssetsByKey(&entry, name) {
		return Asset{}, false
	}
	a, err := toAsset(&entry)
	return a, err == nil
}

// LocateHash returns the first asset, in name order, whose payload has the
// given digest.
func (p *Pack) LocateHash(hash string) (Asset, bool) {
	i, ok := p.byHash[hash]
	if !ok {
		return Asset{}, false
	}
	var entry fb.Asset
	if !p.root.Assets(&entry, i) {
		return Asset{}, false
	}
	a, err := toAsset(&entry)
	return a, err == nil
}

// Ref converts an asset of this pack to a pipeline ref with an absolute
// offset.
func (p *Pack) Ref(a Asset) assetpipe.Ref {
	return assetpipe.Ref{
		Container: p.name,
		Name:      a.Name,
		Offset:    p.dataStart + a.Offset,
		Size:      a.Size,
		Kind:      a.Kind,
		Hash:      a.Digest.String(),
	}
}

// Refs returns refs for every asset in storage order. Assets sharing
// deduplicated bytes are ordered by name.
func (p *Pack) Refs() []assetpipe.Ref {
	refs := make([]assetpipe.Ref, 0, p.Len())
	for a := range p.Assets() {
		refs = append(refs, p.Ref(a))
	}
	slices.SortStableFunc(refs, func(a, b assetpipe.Ref) int {
		switch {
		case a.Offset < b.Offset:
			return -1
		case a.Offset > b.Offset:
			return 1
		default:
			return 0
		}
	})
	return refs
}

// ReadAt reads from the pack file at an absolute offset.
func (p *Pack) ReadAt(b []byte, off int64) (int, error) {
	return p.src.ReadAt(b, off)
}

// Size returns the pack file length.
func (p *Pack) Size() int64 {
	return p.src.Size()
}

// DataSize returns the length of the data section.
func (p *Pack) DataSize() int64 {
	return p.src.Size() - p.dataStart
}

// Close releases the underlying file, if the pack owns one.
func (p *Pack) Close() error {
	if p.closer == nil {
		return nil
	}
	return p.closer.Close()
}

// ReadRange reads length bytes at off, relative to the data section.
func (p *Pack) ReadRange(off, length int64) ([]byte, error) {
	if !sizing.InRange(off, length, p.DataSize()) {
		return nil, fmt.Errorf("%w: range %d+%d exceeds data size %d", assetpipe.ErrAssetSize, off, length, p.DataSize())
	}
	buf := make([]byte, length)
	n, err := p.src.ReadAt(buf, p.dataStart+off)
	if n == len(buf) {
		return buf, nil
	}
	if err == nil || errors.Is(err, io.EOF) {
		err = io.ErrUnexpectedEOF
	}
	return nil, fmt.Errorf("pack: read range %d+%d: %w", off, length, err)
}

// ReadAsset reads the payload of the named asset and verifies its digest.
func (p *Pack) ReadAsset(name string) ([]byte, error) {
	a, ok := p.Lookup(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", assetpipe.ErrNotFound, name)
	}
	data, err := p.ReadRange(a.Offset, a.Size)
	if err != nil {
		return nil, err
	}
	if digest.FromBytes(data) != a.Digest {
		return nil, fmt.Errorf("%w: %s", ErrChecksum, name)
	}
	return data, nil
}

// Verify checks every payload against its digest. Shared payloads are read
// once.
func (p *Pack) Verify(ctx context.Context) error {
	type span struct{ off, size int64 }
	checked := make(map[span]bool)
	for a := range p.Assets() {
		if err := ctx.Err(); err != nil {
			return err
		}
		key := span{a.Offset, a.Size}
		if checked[key] {
			continue
		}
		verifier := a.Digest.Verifier()
		section := io.NewSectionReader(p.src, p.dataStart+a.Offset, a.Size)
		if _, err := io.Copy(verifier, section); err != nil {
			return fmt.Errorf("pack: verify %s: %w", a.Name, err)
		}
		if !verifier.Verified() {
			return fmt.Errorf("%w: %s", ErrChecksum, a.Name)
		}
		checked[key] = true
	}
	return nil
}
