package pack

import (
	"bytes"
	_ "crypto/sha256" // registers sha256 for go-digest
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"

	flatbuffers "github.com/google/flatbuffers/go"
	"github.com/natefinch/atomic"
	"github.com/opencontainers/go-digest"

	"github.com/meigma/assetpipe"
	"github.com/meigma/assetpipe/internal/sizing"
	"github.com/meigma/assetpipe/pack/internal/fb"
)

// Input is one asset to be written into a pack.
type Input struct {
	Name string
	Kind assetpipe.Kind
	Data []byte
}

// CreateOption configures Create and Write.
type CreateOption func(*createConfig)

type createConfig struct {
	dedup  bool
	logger *slog.Logger
}

// WithDedup stores byte-identical payloads once. The assets keep their own
// index entries and point at the shared bytes.
func WithDedup(enabled bool) CreateOption {
	return func(c *createConfig) {
		c.dedup = enabled
	}
}

// WithCreateLogger sets the logger used while writing.
func WithCreateLogger(logger *slog.Logger) CreateOption {
	return func(c *createConfig) {
		c.logger = logger
	}
}

// Create writes a pack holding inputs to path. The file is replaced
// atomically: readers see either the previous file or the complete new one.
func Create(path string, inputs []Input, opts ...CreateOption) error {
	var buf bytes.Buffer
	if err := Write(&buf, inputs, opts...); err != nil {
		return err
	}
	if err := atomic.WriteFile(path, &buf); err != nil {
		return fmt.Errorf("pack: write %s: %w", path, err)
	}
	return nil
}

// Write encodes a pack holding inputs to w.
//
// Payloads are stored in input order. The index is sorted by name, so names
// must be unique.
func Write(w io.Writer, inputs []Input, opts ...CreateOption) error {
	cfg := createConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}
	log := cfg.logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	assets, data, err := layout(inputs, cfg.dedup)
	if err != nil {
		return err
	}

	index := buildIndex(assets)
	h := header{version: Version, indexLen: uint64(len(index))}
	for _, chunk := range [][]byte{h.marshal(), index} {
		if _, err := w.Write(chunk); err != nil {
			return err
		}
	}
	for _, d := range data {
		if _, err := w.Write(d); err != nil {
			return err
		}
	}

	log.Debug("pack written", "assets", len(assets), "payloads", len(data), "index_size", len(index))
	return nil
}

// layout assigns data offsets and returns the index entries sorted by name
// along with the payloads in storage order.
func layout(inputs []Input, dedup bool) ([]Asset, [][]byte, error) {
	assets := make([]Asset, 0, len(inputs))
	data := make([][]byte, 0, len(inputs))
	seen := make(map[string]struct{}, len(inputs))
	stored := make(map[digest.Digest]int64)

	var off int64
	for _, in := range inputs {
		if in.Name == "" {
			return nil, nil, ErrEmptyName
		}
		if _, dup := seen[in.Name]; dup {
			return nil, nil, fmt.Errorf("%w: %s", ErrDuplicateName, in.Name)
		}
		seen[in.Name] = struct{}{}

		d := digest.FromBytes(in.Data)
		a := Asset{Name: in.Name, Kind: in.Kind, Size: int64(len(in.Data)), Digest: d}
		if prev, ok := stored[d]; ok && dedup {
			a.Offset = prev
			assets = append(assets, a)
			continue
		}

		a.Offset = off
		next, ok := sizing.AddInt64(off, a.Size)
		if !ok {
			return nil, nil, fmt.Errorf("%w: data section overflows", ErrInvalidPack)
		}
		off = next
		stored[d] = a.Offset
		assets = append(assets, a)
		data = append(data, in.Data)
	}

	slices.SortFunc(assets, func(a, b Asset) int {
		return strings.Compare(a.Name, b.Name)
	})
	return assets, data, nil
}

// buildIndex serializes assets to FlatBuffers format.
func buildIndex(assets []Asset) []byte {
	builder := flatbuffers.NewBuilder(1024)

	// Tables are built back to front.
	offsets := make([]flatbuffers.UOffsetT, len(assets))
	for i := len(assets) - 1; i >= 0; i-- {
		a := assets[i]
		nameOffset := builder.CreateString(a.Name)
		hashOffset := builder.CreateString(a.Digest.String())

		fb.AssetStart(builder)
		fb.AssetAddName(builder, nameOffset)
		fb.AssetAddKind(builder, byte(a.Kind))
		fb.AssetAddOffset(builder, uint64(a.Offset)) //nolint:gosec // offsets are non-negative
		fb.AssetAddSize(builder, uint64(a.Size))     //nolint:gosec // sizes are non-negative
		fb.AssetAddHash(builder, hashOffset)
		offsets[i] = fb.AssetEnd(builder)
	}

	fb.PackStartAssetsVector(builder, len(assets))
	for i := len(offsets) - 1; i >= 0; i-- {
		builder.PrependUOffsetT(offsets[i])
	}
	assetsOffset := builder.EndVector(len(assets))

	fb.PackStart(builder)
	fb.PackAddVersion(builder, Version)
	fb.PackAddAssets(builder, assetsOffset)
	root := fb.PackEnd(builder)

	builder.Finish(root)
	return builder.FinishedBytes()
}
