package config

import (
	"strings"
	"time"

	"github.com/meigma/assetpipe"
	"github.com/meigma/assetpipe/codec"
)

// DefaultSkipSuffixes names preview assets that consumers never request.
var DefaultSkipSuffixes = []string{"_SteamPreview", "_Snapshot"}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	cfg := &Config{
		Pipeline: PipelineConfig{
			Sharing:      SharingConfig{Textures: true, Meshes: true, Materials: true},
			SkipSuffixes: append([]string(nil), DefaultSkipSuffixes...),
		},
	}
	ApplyDefaults(cfg)
	return cfg
}

// ApplyDefaults replaces zero values with defaults and normalizes the
// logging level. Explicit values are preserved.
func ApplyDefaults(cfg *Config) {
	applyLoggingDefaults(&cfg.Logging)
	applyPipelineDefaults(&cfg.Pipeline)
	applyDecoderDefaults(&cfg.Decoder)
	applyHTTPDefaults(&cfg.HTTP)
}

func applyLoggingDefaults(cfg *LoggingConfig) {
	if cfg.Level == "" {
		cfg.Level = "INFO"
	}
	cfg.Level = strings.ToUpper(cfg.Level)
	if cfg.Format == "" {
		cfg.Format = "text"
	}
}

func applyPipelineDefaults(cfg *PipelineConfig) {
	if cfg.Depth == 0 {
		cfg.Depth = assetpipe.DefaultDepth
	}
	if cfg.QueueCapacity == 0 {
		cfg.QueueCapacity = assetpipe.DefaultQueueCapacity
	}
	if cfg.EvictionBatch == 0 {
		cfg.EvictionBatch = assetpipe.DefaultEvictionBatch
	}
	if cfg.MaxAssetSize == 0 {
		cfg.MaxAssetSize = assetpipe.DefaultMaxAssetSize
	}
}

func applyDecoderDefaults(cfg *DecoderConfig) {
	if cfg.MaxImageBytes == 0 {
		cfg.MaxImageBytes = codec.DefaultMaxImageBytes
	}
	if cfg.MaxDecoderMemory == 0 {
		cfg.MaxDecoderMemory = codec.DefaultMaxDecoderMemory
	}
}

func applyHTTPDefaults(cfg *HTTPConfig) {
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
}
