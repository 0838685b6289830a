package assetpipe

import (
	"context"

	"github.com/meigma/assetpipe/internal/batch"
)

// runLoader walks the plan one group at a time. Each group's payloads are
// inserted into the eviction cache before the group's end marker is queued,
// so a consumer released by WaitForWorkers finds every prefetched asset.
func (p *Pipeline) runLoader(ctx context.Context, plan []Ref) error {
	defer p.queue.SetCompleted()

	groups := batch.SplitGroups(plan)
	for i, g := range groups {
		if ctx.Err() != nil {
			p.log().Debug("load worker stopping", "remaining_groups", len(groups)-i)
			break
		}
		p.loadGroup(g)
		p.queue.EndGroup()
		if !p.loadAhead.Increment() {
			break
		}
		p.trim()
	}
	p.log().Debug("load worker finished")
	return nil
}

// pending selects the refs of a group that still need a read. Refs whose
// content is finished or already prefetched are dropped, the latter after
// being touched so the eviction cache retains them for this group.
func (p *Pipeline) pending(refs []Ref) []Ref {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([]Ref, 0, len(refs))
	seen := make(map[string]struct{}, len(refs))
	for _, ref := range refs {
		if p.skip != nil && p.skip(ref) {
			continue
		}
		if _, dup := seen[ref.Hash]; dup {
			continue
		}
		seen[ref.Hash] = struct{}{}
		if p.tiers.Holds(ref.Kind, ref.Hash) {
			continue
		}
		if p.cache.Touch(ref.Hash) {
			p.stats.Touched++
			continue
		}
		out = append(out, ref)
	}
	return out
}

func (p *Pipeline) loadGroup(g batch.Group) {
	refs := p.pending(g.Refs)
	if len(refs) == 0 {
		return
	}
	batch.SortByOffset(refs)

	c, err := p.source.Open(g.Container)
	if err != nil {
		p.log().Warn("open container failed", "container", g.Container, "assets", len(refs), "error", err)
		p.mu.Lock()
		p.stats.ReadFailures += len(refs)
		p.mu.Unlock()
		for _, ref := range refs {
			p.metrics.ObserveRead(ref.Kind, false, 0)
		}
		return
	}
	defer func() {
		if err := c.Close(); err != nil {
			p.log().Debug("close container failed", "container", g.Container, "error", err)
		}
	}()

	p.reader.ReadAll(c, refs, func(res batch.Result) {
		if res.Err != nil {
			p.log().Warn("asset read failed", "asset", res.Ref.String(), "error", res.Err)
			p.mu.Lock()
			p.stats.ReadFailures++
			p.mu.Unlock()
			p.metrics.ObserveRead(res.Ref.Kind, false, 0)
			return
		}
		p.metrics.ObserveRead(res.Ref.Kind, true, len(res.Data))
		if p.insert(res.Ref, res.Data) && res.Ref.Kind.Decodable() {
			p.queue.Enqueue(payload{ref: res.Ref, raw: res.Data})
		}
	})
	p.log().Debug("group loaded", "container", g.Container, "assets", len(refs))
}

// insert stores freshly read bytes in the eviction cache unless the content
// was finished in the meantime, then trims the cache. It reports whether the
// bytes were stored.
func (p *Pipeline) insert(ref Ref, raw []byte) bool {
	p.mu.Lock()
	p.stats.Read++
	stored := !p.tiers.Holds(ref.Kind, ref.Hash) &&
		p.cache.Put(ref.Hash, cacheEntry{kind: ref.Kind, raw: raw})
	n := p.cache.Count()
	p.stats.MaxCacheCount = max(p.stats.MaxCacheCount, n)
	if removed := p.cache.Trim(p.window, p.evictionBatch); removed > 0 {
		n -= removed
	}
	p.mu.Unlock()

	p.metrics.SetCacheEntries(n)
	return stored
}

// trim removes the oldest eviction cache entries beyond the retention window.
func (p *Pipeline) trim() {
	p.mu.Lock()
	p.cache.Trim(p.window, p.evictionBatch)
	n := p.cache.Count()
	p.mu.Unlock()

	p.metrics.SetCacheEntries(n)
}
