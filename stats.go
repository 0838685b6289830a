package assetpipe

import "log/slog"

// KindStats counts how requests for one kind were satisfied.
type KindStats struct {
	Hit       int
	Preloaded int
	Loaded    int
}

// Requests returns the total number of requests counted.
func (k KindStats) Requests() int {
	return k.Hit + k.Preloaded + k.Loaded
}

func (k *KindStats) add(o Outcome, n int) {
	switch o {
	case OutcomeHit:
		k.Hit += n
	case OutcomePreloaded:
		k.Preloaded += n
	case OutcomeLoaded:
		k.Loaded += n
	}
}

// Stats are the diagnostics of one pipeline run.
type Stats struct {
	Textures  KindStats
	Meshes    KindStats
	Materials KindStats

	// MaxCacheCount is the peak number of eviction cache entries.
	MaxCacheCount int

	// Read and ReadFailures count prefetch reads by the load worker.
	Read         int
	ReadFailures int

	// Decoded and DecodeFailures count decode worker attempts.
	Decoded        int
	DecodeFailures int

	// Touched counts plan entries whose content was already prefetched.
	Touched int
}

// Kind returns the counters for kind k.
func (s *Stats) Kind(k Kind) *KindStats {
	switch k {
	case KindTexture:
		return &s.Textures
	case KindMesh:
		return &s.Meshes
	case KindMaterial:
		return &s.Materials
	default:
		return nil
	}
}

// LogValue implements slog.LogValuer.
func (s Stats) LogValue() slog.Value {
	kind := func(k KindStats) slog.Value {
		return slog.GroupValue(
			slog.Int("hit", k.Hit),
			slog.Int("preloaded", k.Preloaded),
			slog.Int("loaded", k.Loaded),
		)
	}
	return slog.GroupValue(
		slog.Attr{Key: "textures", Value: kind(s.Textures)},
		slog.Attr{Key: "meshes", Value: kind(s.Meshes)},
		slog.Attr{Key: "materials", Value: kind(s.Materials)},
		slog.Int("max_cache_count", s.MaxCacheCount),
		slog.Int("read", s.Read),
		slog.Int("read_failures", s.ReadFailures),
		slog.Int("decoded", s.Decoded),
		slog.Int("decode_failures", s.DecodeFailures),
		slog.Int("touched", s.Touched),
	)
}
