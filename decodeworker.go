package assetpipe

import (
	"context"

	"github.com/meigma/assetpipe/codec"
)

// runDecoder drains the handoff queue until the load worker completes it.
// Once ctx ends, remaining payloads are dropped without decoding.
func (p *Pipeline) runDecoder(ctx context.Context) error {
	defer p.mtAhead.Close()

	for {
		item, ok := p.queue.Dequeue()
		if !ok {
			p.log().Debug("decode worker finished")
			return nil
		}
		if item.GroupEnd {
			p.mtAhead.Increment()
			p.loadAhead.Decrement()
			continue
		}
		if ctx.Err() != nil {
			continue
		}
		p.decode(item.Value)
	}
}

// decode replaces a payload's raw cache entry with its intermediate object.
// Entries that were evicted or promoted meanwhile are left alone.
func (p *Pipeline) decode(pl payload) {
	if !p.awaitsDecode(pl.ref) {
		return
	}
	entry := cacheEntry{kind: pl.ref.Kind}
	var err error
	switch pl.ref.Kind {
	case KindMesh:
		entry.mesh, err = codec.DecodeMesh(pl.raw)
	case KindTexture:
		entry.texture, err = p.decoder.DecodeTexture(pl.raw)
	default:
		return
	}
	p.metrics.ObserveDecode(pl.ref.Kind, err == nil)
	if err != nil {
		p.log().Warn("asset decode failed", "asset", pl.ref.String(), "error", err)
		p.mu.Lock()
		p.stats.DecodeFailures++
		p.mu.Unlock()
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.stats.Decoded++
	if p.tiers.Holds(pl.ref.Kind, pl.ref.Hash) {
		return
	}
	if cur, ok := p.cache.TryGet(pl.ref.Hash); ok && !cur.decoded() {
		p.cache.Set(pl.ref.Hash, entry)
	}
}

// awaitsDecode reports whether the eviction cache still holds ref's raw
// bytes and no tier holds the finished object.
func (p *Pipeline) awaitsDecode(ref Ref) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.tiers.Holds(ref.Kind, ref.Hash) {
		return false
	}
	cur, ok := p.cache.TryGet(ref.Hash)
	return ok && !cur.decoded()
}
