package assetpipe

import (
	"context"
	"log/slog"
	"slices"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/meigma/assetpipe/codec"
	"github.com/meigma/assetpipe/internal/batch"
	"github.com/meigma/assetpipe/internal/evict"
	"github.com/meigma/assetpipe/internal/handoff"
	"github.com/meigma/assetpipe/internal/pacing"
	"github.com/meigma/assetpipe/internal/tier"
)

type state uint8

const (
	stateIdle state = iota
	stateRunning
	stateDraining
	stateTerminated
)

// cacheEntry is an eviction cache value: the raw payload of an asset, or the
// intermediate object the decode worker produced from it. Exactly one of
// raw, mesh and texture is set.
type cacheEntry struct {
	kind    Kind
	raw     []byte
	mesh    *codec.MeshData
	texture *codec.TextureData
}

func (e cacheEntry) decoded() bool {
	return e.mesh != nil || e.texture != nil
}

// payload is a prefetched asset handed from the load to the decode worker.
type payload struct {
	ref Ref
	raw []byte
}

// Pipeline prefetches and decodes the assets of a plan ahead of a consumer
// and shares finished objects by content hash.
//
// The Get methods, WaitForWorkers and Dispose are safe for concurrent use.
type Pipeline struct {
	source        Source
	deserializer  Deserializer
	decoder       *codec.Decoder
	reader        *batch.Reader
	metrics       Metrics
	logger        *slog.Logger
	depth         int
	queueCapacity int
	window        int
	evictionBatch int
	maxAssetSize  int64
	sharing       [KindMaterial + 1]bool
	skip          func(Ref) bool
	runID         string

	loadAhead *pacing.Counter
	mtAhead   *pacing.Counter
	queue     *handoff.Queue[payload]
	workers   errgroup.Group
	flight    singleflight.Group

	// mu guards everything below.
	mu     sync.Mutex
	state  state
	cancel context.CancelFunc
	cache  *evict.Cache[cacheEntry]
	tiers  *tier.Set
	stats  Stats
}

// log returns the logger, falling back to a discard logger if nil.
func (p *Pipeline) log() *slog.Logger {
	if p.logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return p.logger
}

// New creates an idle pipeline reading from source.
func New(source Source, opts ...Option) *Pipeline {
	p := &Pipeline{
		source:        source,
		metrics:       nopMetrics{},
		depth:         DefaultDepth,
		queueCapacity: DefaultQueueCapacity,
		evictionBatch: DefaultEvictionBatch,
		maxAssetSize:  DefaultMaxAssetSize,
		sharing:       [...]bool{KindTexture: true, KindMesh: true, KindMaterial: true},
		runID:         uuid.NewString(),
		cache:         evict.New[cacheEntry](),
		tiers:         tier.NewSet(),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.window == 0 {
		p.window = p.depth * DefaultWindowPerGroup
	}
	if p.decoder == nil {
		p.decoder = codec.NewDecoder()
	}
	if p.deserializer == nil {
		p.deserializer = NewCodecDeserializer(p.decoder)
	}
	if p.logger != nil {
		p.logger = p.logger.With("run", p.runID)
	}
	p.reader = batch.NewReader(
		batch.WithMaxAssetSize(p.maxAssetSize),
		batch.WithLogger(p.logger),
	)
	p.loadAhead = pacing.New(p.depth)
	p.mtAhead = pacing.New(p.depth)
	p.queue = handoff.New[payload](p.queueCapacity)
	return p
}

// RunID returns the identifier attached to this pipeline's log records.
func (p *Pipeline) RunID() string {
	return p.runID
}

// Start launches the load and decode workers over plan. The plan is copied.
// A pipeline runs at most once; later calls return ErrStarted, or ErrClosed
// after Dispose.
//
// Canceling ctx stops the load worker at the next group boundary.
func (p *Pipeline) Start(ctx context.Context, plan []Ref) error {
	p.mu.Lock()
	switch p.state {
	case stateIdle:
	case stateRunning:
		p.mu.Unlock()
		return ErrStarted
	default:
		p.mu.Unlock()
		return ErrClosed
	}
	ctx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.state = stateRunning
	plan = slices.Clone(plan)
	// The workers join the group before Dispose can observe stateRunning
	// and wait on it.
	p.workers.Go(func() error { return p.runLoader(ctx, plan) })
	p.workers.Go(func() error { return p.runDecoder(ctx) })
	p.mu.Unlock()

	p.log().Info("asset pipeline started", "assets", len(plan), "depth", p.depth, "window", p.window)
	return nil
}

// WaitForWorkers blocks until the decode worker has finished one more group
// the consumer has not waited for yet. The consumer calls it once per group,
// before requesting that group's assets.
//
// Once the workers have finished the plan it returns immediately.
func (p *Pipeline) WaitForWorkers(ctx context.Context) error {
	p.mu.Lock()
	st := p.state
	p.mu.Unlock()
	switch st {
	case stateIdle:
		return ErrNotStarted
	case stateTerminated:
		return ErrClosed
	}
	_, err := p.mtAhead.DecrementContext(ctx)
	return err
}

// Stats returns a snapshot of the diagnostics so far.
func (p *Pipeline) Stats() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stats
}

// Dispose stops the workers at the next group boundary, waits for them to
// exit and releases every cache. It logs and returns the run diagnostics.
// Dispose is idempotent.
func (p *Pipeline) Dispose() Stats {
	p.mu.Lock()
	if p.state == stateTerminated || p.state == stateDraining {
		p.mu.Unlock()
		// A concurrent Dispose owns the shutdown; wait for the workers it
		// is draining so callers observe the same end state.
		_ = p.workers.Wait() //nolint:errcheck // workers never fail
		return p.Stats()
	}
	started := p.state == stateRunning
	p.state = stateDraining
	cancel := p.cancel
	p.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	p.loadAhead.Close()
	p.mtAhead.Close()
	if started {
		_ = p.workers.Wait() //nolint:errcheck // workers never fail
	}

	p.mu.Lock()
	stats := p.stats
	p.cache.Clear()
	p.tiers.Clear()
	p.state = stateTerminated
	p.mu.Unlock()

	p.metrics.SetCacheEntries(0)
	p.log().Info("asset pipeline disposed", "stats", stats)
	return stats
}

// shares reports whether finished objects of kind k go to its tiered cache.
func (p *Pipeline) shares(k Kind) bool {
	return int(k) < len(p.sharing) && p.sharing[k]
}

// closed reports whether Dispose has begun. Callers must hold p.mu.
func (p *Pipeline) closed() bool {
	return p.state == stateDraining || p.state == stateTerminated
}
