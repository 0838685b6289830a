package assetpipe

import (
	"log/slog"

	"github.com/meigma/assetpipe/codec"
	"github.com/meigma/assetpipe/internal/assettype"
	"github.com/meigma/assetpipe/internal/batch"
	"github.com/meigma/assetpipe/internal/pacing"
)

// Defaults for a new Pipeline.
const (
	// DefaultDepth is how many groups each worker may run ahead.
	DefaultDepth = pacing.DefaultDepth

	// DefaultQueueCapacity is the handoff queue capacity.
	DefaultQueueCapacity = 48

	// DefaultWindowPerGroup sizes the retention window: the eviction cache
	// keeps DefaultWindowPerGroup entries per group of depth.
	DefaultWindowPerGroup = 44

	// DefaultEvictionBatch is the most entries removed by one trim.
	DefaultEvictionBatch = 18

	// DefaultMaxAssetSize is the largest payload a single asset may claim.
	DefaultMaxAssetSize = batch.DefaultMaxAssetSize
)

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithDepth sets how many groups the workers may run ahead of the consumer.
// Values < 1 are treated as 1.
func WithDepth(n int) Option {
	return func(p *Pipeline) {
		p.depth = max(n, 1)
	}
}

// WithQueueCapacity sets the handoff queue capacity.
// Values < 1 are treated as 1.
func WithQueueCapacity(n int) Option {
	return func(p *Pipeline) {
		p.queueCapacity = max(n, 1)
	}
}

// WithRetentionWindow sets how many entries the eviction cache retains
// before trimming. Zero derives the window from the depth.
func WithRetentionWindow(n int) Option {
	return func(p *Pipeline) {
		p.window = max(n, 0)
	}
}

// WithEvictionBatch sets the most entries removed by one trim.
// Values < 1 are treated as 1.
func WithEvictionBatch(n int) Option {
	return func(p *Pipeline) {
		p.evictionBatch = max(n, 1)
	}
}

// WithMaxAssetSize sets the largest payload an asset may claim.
// Set to 0 to disable the limit.
func WithMaxAssetSize(limit int64) Option {
	return func(p *Pipeline) {
		p.maxAssetSize = max(limit, 0)
	}
}

// WithSharing enables or disables the tiered object cache of each listed
// kind, or of every kind when none is listed (default: all enabled).
// Requests for a kind without sharing always build a fresh object.
func WithSharing(enabled bool, kinds ...Kind) Option {
	return func(p *Pipeline) {
		if len(kinds) == 0 {
			kinds = assettype.Kinds[:]
		}
		for _, k := range kinds {
			if int(k) < len(p.sharing) {
				p.sharing[k] = enabled
			}
		}
	}
}

// WithSkip sets a filter; plan entries it matches are never prefetched.
func WithSkip(skip func(Ref) bool) Option {
	return func(p *Pipeline) {
		p.skip = skip
	}
}

// WithLogger sets the logger for pipeline operations.
// If not set, logging is disabled.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// WithMetrics sets the metrics sink.
func WithMetrics(m Metrics) Option {
	return func(p *Pipeline) {
		if m != nil {
			p.metrics = m
		}
	}
}

// WithDeserializer replaces the fallback deserializer used by the consumer
// paths.
func WithDeserializer(d Deserializer) Option {
	return func(p *Pipeline) {
		if d != nil {
			p.deserializer = d
		}
	}
}

// WithCodecDecoder sets the payload decoder used by the decode worker and
// the default deserializer.
func WithCodecDecoder(dec *codec.Decoder) Option {
	return func(p *Pipeline) {
		if dec != nil {
			p.decoder = dec
		}
	}
}
