package config

import (
	"io"
	"log/slog"
	nethttp "net/http"

	"github.com/meigma/assetpipe"
	"github.com/meigma/assetpipe/codec"
	"github.com/meigma/assetpipe/pack"
	packhttp "github.com/meigma/assetpipe/pack/http"
)

// NewLogger builds the slog logger described by the logging section.
func (c *Config) NewLogger(w io.Writer) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Logging.Level)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if c.Logging.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// NewDecoder builds the payload decoder described by the decoder section.
func (c *Config) NewDecoder() *codec.Decoder {
	return codec.NewDecoder(
		codec.WithMaxImageBytes(int64(c.Decoder.MaxImageBytes)),
		codec.WithMaxDecoderMemory(uint64(c.Decoder.MaxDecoderMemory)), //nolint:gosec // validated non-negative
		codec.WithDecoderLowmem(c.Decoder.LowMemory),
	)
}

// PipelineOptions maps the pipeline and decoder sections to pipeline
// options. Logger and metrics are left to the caller.
func (c *Config) PipelineOptions() []assetpipe.Option {
	p := c.Pipeline
	opts := []assetpipe.Option{
		assetpipe.WithDepth(p.Depth),
		assetpipe.WithQueueCapacity(p.QueueCapacity),
		assetpipe.WithRetentionWindow(p.RetentionWindow),
		assetpipe.WithEvictionBatch(p.EvictionBatch),
		assetpipe.WithMaxAssetSize(int64(p.MaxAssetSize)),
		assetpipe.WithSharing(p.Sharing.Textures, assetpipe.KindTexture),
		assetpipe.WithSharing(p.Sharing.Meshes, assetpipe.KindMesh),
		assetpipe.WithSharing(p.Sharing.Materials, assetpipe.KindMaterial),
		assetpipe.WithCodecDecoder(c.NewDecoder()),
	}
	if len(p.SkipSuffixes) > 0 {
		opts = append(opts, assetpipe.WithSkip(assetpipe.SkipSuffixes(p.SkipSuffixes...)))
	}
	return opts
}

// LibraryOptions maps the http section to pack library options.
func (c *Config) LibraryOptions(logger *slog.Logger) []pack.LibraryOption {
	httpOpts := []packhttp.Option{
		packhttp.WithClient(&nethttp.Client{Timeout: c.HTTP.Timeout}),
	}
	if c.HTTP.ConditionalHeaders {
		httpOpts = append(httpOpts, packhttp.WithConditionalHeaders())
	}
	for k, v := range c.HTTP.Headers {
		httpOpts = append(httpOpts, packhttp.WithHeader(k, v))
	}
	return []pack.LibraryOption{
		pack.WithHTTPOptions(httpOpts...),
		pack.WithLibraryLogger(logger),
	}
}
