package assetpipe

import (
	"fmt"

	"github.com/meigma/assetpipe/codec"
	"github.com/meigma/assetpipe/internal/assettype"
)

// Source opens containers and locates assets inside them by content hash.
// Implementations must be safe for concurrent use: the load worker and the
// consumer's cold loads call it from different goroutines.
type Source interface {
	// Open opens a container for reading.
	Open(container string) (Container, error)

	// Locate returns the ref of the asset with the given hash in container.
	// It returns an error wrapping ErrNotFound if there is none.
	Locate(container, hash string) (Ref, error)
}

// Deserializer turns raw payload bytes into finished objects. It is used
// whenever the decode worker has not prepared an intermediate object.
// Implementations must be safe for concurrent use.
type Deserializer interface {
	DecodeTexture(raw []byte, container string, primary bool) (*Texture, error)
	DecodeMesh(raw []byte, container string, primary bool) (*Mesh, error)
	DecodeMaterial(raw []byte, container string, primary bool) (*Material, error)
}

// Metrics receives pipeline measurements. Implementations must be safe for
// concurrent use.
type Metrics interface {
	// ObserveOutcome records n requests of kind satisfied with outcome.
	ObserveOutcome(kind Kind, outcome Outcome, n int)

	// ObserveRead records one asset read and its size in bytes.
	ObserveRead(kind Kind, ok bool, bytes int)

	// ObserveDecode records one decode worker attempt.
	ObserveDecode(kind Kind, ok bool)

	// SetCacheEntries reports the current eviction cache size.
	SetCacheEntries(n int)
}

type nopMetrics struct{}

func (nopMetrics) ObserveOutcome(Kind, Outcome, int) {}
func (nopMetrics) ObserveRead(Kind, bool, int)       {}
func (nopMetrics) ObserveDecode(Kind, bool)          {}
func (nopMetrics) SetCacheEntries(int)               {}

// CodecDeserializer decodes payloads in the formats of package codec.
type CodecDeserializer struct {
	dec *codec.Decoder
}

// NewCodecDeserializer creates a deserializer backed by dec. A nil dec uses
// a decoder with default limits.
func NewCodecDeserializer(dec *codec.Decoder) *CodecDeserializer {
	if dec == nil {
		dec = codec.NewDecoder()
	}
	return &CodecDeserializer{dec: dec}
}

// DecodeTexture implements Deserializer.
func (d *CodecDeserializer) DecodeTexture(raw []byte, container string, _ bool) (*Texture, error) {
	data, err := d.dec.DecodeTexture(raw)
	if err != nil {
		return nil, fmt.Errorf("decode texture: %w", err)
	}
	return assettype.NewTexture(data, container), nil
}

// DecodeMesh implements Deserializer.
func (d *CodecDeserializer) DecodeMesh(raw []byte, container string, _ bool) (*Mesh, error) {
	data, err := codec.DecodeMesh(raw)
	if err != nil {
		return nil, fmt.Errorf("decode mesh: %w", err)
	}
	return assettype.NewMesh(data, container), nil
}

// DecodeMaterial implements Deserializer.
func (d *CodecDeserializer) DecodeMaterial(raw []byte, container string, _ bool) (*Material, error) {
	data, err := codec.DecodeMaterial(raw)
	if err != nil {
		return nil, fmt.Errorf("decode material: %w", err)
	}
	return assettype.NewMaterial(data, container), nil
}
