package assetpipe

import (
	"errors"
	"fmt"

	"github.com/meigma/assetpipe/internal/assettype"
	"github.com/meigma/assetpipe/internal/tier"
)

// kindOps adapts the generic request path to one object kind.
type kindOps[T any] struct {
	kind Kind

	// cache selects the kind's tiered cache.
	cache func(*tier.Set) *tier.Cache[T]

	// assemble builds a finished object from an intermediate one; it
	// reports false if the entry holds no intermediate of this kind.
	assemble func(e cacheEntry, container string) (T, bool)

	// deserialize builds a finished object from raw bytes.
	deserialize func(d Deserializer, raw []byte, container string, primary bool) (T, error)

	clone func(T) T

	// related counts extra texture hits credited by a primary hit.
	related func(T) int
}

var textureOps = kindOps[*Texture]{
	kind:  KindTexture,
	cache: func(s *tier.Set) *tier.Cache[*Texture] { return s.Textures },
	assemble: func(e cacheEntry, container string) (*Texture, bool) {
		if e.texture == nil {
			return nil, false
		}
		return assettype.NewTexture(e.texture, container), true
	},
	deserialize: Deserializer.DecodeTexture,
	clone:       (*Texture).Clone,
}

var meshOps = kindOps[*Mesh]{
	kind:  KindMesh,
	cache: func(s *tier.Set) *tier.Cache[*Mesh] { return s.Meshes },
	assemble: func(e cacheEntry, container string) (*Mesh, bool) {
		if e.mesh == nil {
			return nil, false
		}
		return assettype.NewMesh(e.mesh, container), true
	},
	deserialize: Deserializer.DecodeMesh,
	clone:       (*Mesh).Clone,
}

var materialOps = kindOps[*Material]{
	kind:  KindMaterial,
	cache: func(s *tier.Set) *tier.Cache[*Material] { return s.Materials },
	assemble: func(cacheEntry, string) (*Material, bool) {
		return nil, false
	},
	deserialize: Deserializer.DecodeMaterial,
	clone:       (*Material).Clone,
	related:     (*Material).TextureCount,
}

// GetTexture returns the finished texture with the given content hash,
// loading it from container if no cache holds it. With sharing enabled for
// the kind, primary requests share one object per hash and LOD requests
// receive a private copy of the cached one.
func (p *Pipeline) GetTexture(hash, container string, primary bool) (*Texture, error) {
	return get(p, textureOps, hash, container, primary)
}

// GetMesh returns the finished mesh with the given content hash.
// See GetTexture for the sharing rules.
func (p *Pipeline) GetMesh(hash, container string, primary bool) (*Mesh, error) {
	return get(p, meshOps, hash, container, primary)
}

// GetMaterial returns the finished material with the given content hash.
// See GetTexture for the sharing rules. A primary hit also counts a texture
// hit for every texture the material references.
func (p *Pipeline) GetMaterial(hash, container string, primary bool) (*Material, error) {
	return get(p, materialOps, hash, container, primary)
}

func get[T any](p *Pipeline, ops kindOps[T], hash, container string, primary bool) (T, error) {
	var zero T
	t := assettype.TierOf(primary)

	if !p.shares(ops.kind) {
		return build(p, ops, hash, container, primary)
	}

	if v, ok, err := lookup(p, ops, t, hash); err != nil || ok {
		return share(ops, t, v), err
	}

	key := fmt.Sprintf("%d/%d/%s", ops.kind, t, hash)
	leader := false
	res, err, _ := p.flight.Do(key, func() (any, error) {
		leader = true
		// A request collapsed into an earlier flight may arrive after the
		// object was stored.
		if v, ok, err := lookup(p, ops, t, hash); err != nil || ok {
			return v, err
		}
		v, err := build(p, ops, hash, container, primary)
		if err != nil {
			return zero, err
		}
		return promote(p, ops, t, hash, v)
	})
	if err != nil {
		return zero, err
	}
	v := res.(T) //nolint:forcetypeassert // flight only returns T
	if !leader {
		p.count(ops.kind, hitOutcome(t))
	}
	return share(ops, t, v), nil
}

// promote stores v in its tier and drops the eviction cache entry for hash,
// including one the load worker inserted while v was being built.
func promote[T any](p *Pipeline, ops kindOps[T], t Tier, hash string, v T) (T, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed() {
		var zero T
		return zero, ErrClosed
	}
	v = ops.cache(p.tiers).Put(t, hash, v)
	if e, ok := p.cache.TryGet(hash); ok && (e.kind == ops.kind || e.kind == KindOther) {
		p.cache.Remove(hash)
	}
	return v, nil
}

// hitOutcome is how a tier hit is counted: LOD hits hand out a fresh copy
// and count as preloaded.
func hitOutcome(t Tier) Outcome {
	if t == TierLOD {
		return OutcomePreloaded
	}
	return OutcomeHit
}

// lookup serves a request from the tiered cache and counts the hit.
func lookup[T any](p *Pipeline, ops kindOps[T], t Tier, hash string) (T, bool, error) {
	var zero T
	p.mu.Lock()
	if p.closed() {
		p.mu.Unlock()
		return zero, false, ErrClosed
	}
	v, ok := ops.cache(p.tiers).Get(t, hash)
	if !ok {
		p.mu.Unlock()
		return zero, false, nil
	}
	related := 0
	if ops.related != nil && t == TierPrimary {
		related = ops.related(v)
	}
	outcome := hitOutcome(t)
	p.stats.Kind(ops.kind).add(outcome, 1)
	p.stats.Textures.add(OutcomeHit, related)
	p.mu.Unlock()

	p.metrics.ObserveOutcome(ops.kind, outcome, 1)
	if related > 0 {
		p.metrics.ObserveOutcome(KindTexture, OutcomeHit, related)
	}
	return v, true, nil
}

func share[T any](ops kindOps[T], t Tier, v T) T {
	if t == TierLOD {
		return ops.clone(v)
	}
	return v
}

// build produces a new finished object from the eviction cache or, failing
// that, from the container.
func build[T any](p *Pipeline, ops kindOps[T], hash, container string, primary bool) (v T, err error) {
	p.mu.Lock()
	if p.closed() {
		p.mu.Unlock()
		return v, ErrClosed
	}
	entry, ok := p.cache.TryGet(hash)
	p.mu.Unlock()

	if ok {
		if v, ok := ops.assemble(entry, container); ok {
			p.count(ops.kind, OutcomePreloaded)
			return v, nil
		}
		if entry.raw != nil {
			v, err = ops.deserialize(p.deserializer, entry.raw, container, primary)
			if err == nil {
				p.count(ops.kind, OutcomePreloaded)
				return v, nil
			}
			p.log().Warn("prefetched asset failed to deserialize, reloading",
				"hash", hash, "container", container, "error", err)
		}
	}

	raw, err := p.loadRaw(ops.kind, hash, container)
	if err != nil {
		return v, err
	}
	v, err = ops.deserialize(p.deserializer, raw, container, primary)
	if err != nil {
		return v, fmt.Errorf("%s %s in %s: %w", ops.kind, hash, container, err)
	}
	p.count(ops.kind, OutcomeLoaded)
	return v, nil
}

// loadRaw reads an asset's payload straight from its container.
func (p *Pipeline) loadRaw(kind Kind, hash, container string) ([]byte, error) {
	ref, err := p.source.Locate(container, hash)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("locate %s in %s: %w", hash, container, err)
	}
	if kind != KindOther && ref.Kind != KindOther && ref.Kind != kind {
		return nil, fmt.Errorf("%w: %s is a %s, not a %s", ErrKindMismatch, ref, ref.Kind, kind)
	}

	c, err := p.source.Open(container)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", container, err)
	}
	defer c.Close()
	return p.reader.ReadOne(c, ref)
}

func (p *Pipeline) count(kind Kind, o Outcome) {
	p.mu.Lock()
	p.stats.Kind(kind).add(o, 1)
	p.mu.Unlock()
	p.metrics.ObserveOutcome(kind, o, 1)
}

// ReadAsset returns the raw payload of any asset, serving prefetched bytes
// when the eviction cache holds them. The returned slice must not be
// modified.
func (p *Pipeline) ReadAsset(hash, container string) ([]byte, error) {
	p.mu.Lock()
	if p.closed() {
		p.mu.Unlock()
		return nil, ErrClosed
	}
	entry, ok := p.cache.TryGet(hash)
	p.mu.Unlock()
	if ok && entry.raw != nil {
		return entry.raw, nil
	}
	return p.loadRaw(KindOther, hash, container)
}
