package config

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meigma/assetpipe"
	"github.com/meigma/assetpipe/codec"
	"github.com/meigma/assetpipe/internal/testutil"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "assetpipe.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, Default(), cfg)
	assert.Equal(t, "INFO", cfg.Logging.Level)
	assert.Equal(t, "text", cfg.Logging.Format)
	assert.Equal(t, assetpipe.DefaultDepth, cfg.Pipeline.Depth)
	assert.Equal(t, assetpipe.DefaultQueueCapacity, cfg.Pipeline.QueueCapacity)
	assert.Equal(t, assetpipe.DefaultEvictionBatch, cfg.Pipeline.EvictionBatch)
	assert.Equal(t, ByteSize(assetpipe.DefaultMaxAssetSize), cfg.Pipeline.MaxAssetSize)
	assert.Equal(t, SharingConfig{Textures: true, Meshes: true, Materials: true}, cfg.Pipeline.Sharing)
	assert.Equal(t, DefaultSkipSuffixes, cfg.Pipeline.SkipSuffixes)
	assert.Equal(t, ByteSize(codec.DefaultMaxImageBytes), cfg.Decoder.MaxImageBytes)
	assert.Equal(t, 30*time.Second, cfg.HTTP.Timeout)
	assert.Empty(t, cfg.Metrics.Listen)
}

func TestLoad_File(t *testing.T) {
	path := writeConfig(t, `
logging:
  level: debug
  format: json
pipeline:
  depth: 5
  retention_window: 100
  max_asset_size: 64MiB
  sharing:
    meshes: false
  skip_suffixes: ["_Thumb"]
decoder:
  max_image_bytes: 16MB
  low_memory: true
http:
  timeout: 5s
  conditional_headers: true
  headers:
    authorization: Bearer abc
metrics:
  listen: 127.0.0.1:9090
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "DEBUG", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, 5, cfg.Pipeline.Depth)
	assert.Equal(t, 100, cfg.Pipeline.RetentionWindow)
	assert.Equal(t, assetpipe.DefaultQueueCapacity, cfg.Pipeline.QueueCapacity)
	assert.Equal(t, ByteSize(64<<20), cfg.Pipeline.MaxAssetSize)
	assert.Equal(t, SharingConfig{Textures: true, Meshes: false, Materials: true}, cfg.Pipeline.Sharing)
	assert.Equal(t, []string{"_Thumb"}, cfg.Pipeline.SkipSuffixes)
	assert.Equal(t, ByteSize(16_000_000), cfg.Decoder.MaxImageBytes)
	assert.True(t, cfg.Decoder.LowMemory)
	assert.Equal(t, 5*time.Second, cfg.HTTP.Timeout)
	assert.True(t, cfg.HTTP.ConditionalHeaders)
	assert.Equal(t, "Bearer abc", cfg.HTTP.Headers["authorization"])
	assert.Equal(t, "127.0.0.1:9090", cfg.Metrics.Listen)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("ASSETPIPE_PIPELINE_DEPTH", "7")
	t.Setenv("ASSETPIPE_PIPELINE_SKIP_SUFFIXES", "_A,_B")
	t.Setenv("ASSETPIPE_DECODER_MAX_DECODER_MEMORY", "1GiB")
	t.Setenv("ASSETPIPE_PIPELINE_SHARING_MATERIALS", "false")
	path := writeConfig(t, "pipeline:\n  depth: 2\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.Pipeline.Depth)
	assert.Equal(t, []string{"_A", "_B"}, cfg.Pipeline.SkipSuffixes)
	assert.Equal(t, ByteSize(1<<30), cfg.Decoder.MaxDecoderMemory)
	assert.False(t, cfg.Pipeline.Sharing.Materials)
	assert.True(t, cfg.Pipeline.Sharing.Textures)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "bad level", body: "logging:\n  level: loud\n"},
		{name: "bad format", body: "logging:\n  format: xml\n"},
		{name: "depth too large", body: "pipeline:\n  depth: 500\n"},
		{name: "negative window", body: "pipeline:\n  retention_window: -1\n"},
		{name: "bad size", body: "pipeline:\n  max_asset_size: lots\n"},
		{name: "bad listen", body: "metrics:\n  listen: nowhere\n"},
		{name: "bad yaml", body: "pipeline: [\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			require.Error(t, err)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}

func TestParseByteSize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    ByteSize
		wantErr bool
	}{
		{in: "1024", want: 1024},
		{in: "10B", want: 10},
		{in: "2KB", want: 2000},
		{in: "2KiB", want: 2048},
		{in: "3 MiB", want: 3 << 20},
		{in: "1Gi", want: 1 << 30},
		{in: "5M", want: 5_000_000},
		{in: "-1", wantErr: true},
		{in: "MB", wantErr: true},
		{in: "1.5MB", wantErr: true},
		{in: "99999999999GiB", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			got, err := ParseByteSize(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewLogger(t *testing.T) {
	t.Parallel()

	cfg := Default()
	cfg.Logging.Format = "json"
	cfg.Logging.Level = "WARN"

	var buf bytes.Buffer
	logger := cfg.NewLogger(&buf)
	logger.Info("dropped")
	logger.Warn("kept", "n", 1)

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "kept", rec["msg"])
	assert.Equal(t, "WARN", rec["level"])
}

func TestPipelineOptions(t *testing.T) {
	t.Parallel()

	cfg := Default()
	cfg.Pipeline.SkipSuffixes = []string{"_Skip"}

	src := testutil.NewMemSource()
	keep := src.Add("a.pack", "m", assetpipe.KindMesh, testutil.MeshPayload("m"))
	skip := src.Add("a.pack", "m_Skip", assetpipe.KindMesh, testutil.MeshPayload("other"))

	pipe := assetpipe.New(src, cfg.PipelineOptions()...)
	require.NoError(t, pipe.Start(t.Context(), []assetpipe.Ref{keep, skip}))
	require.NoError(t, pipe.WaitForWorkers(t.Context()))
	stats := pipe.Dispose()
	assert.Equal(t, 1, stats.Read, "suffix filter from config is applied")
}

func TestPipelineOptions_SharingPerKind(t *testing.T) {
	t.Parallel()

	cfg := Default()
	cfg.Pipeline.Sharing.Meshes = false

	src := testutil.NewMemSource()
	mesh := src.Add("a.pack", "m", assetpipe.KindMesh, testutil.MeshPayload("m"))
	pipe := assetpipe.New(src, cfg.PipelineOptions()...)
	defer pipe.Dispose()

	m1, err := pipe.GetMesh(mesh.Hash, mesh.Container, true)
	require.NoError(t, err)
	m2, err := pipe.GetMesh(mesh.Hash, mesh.Container, true)
	require.NoError(t, err)
	assert.NotSame(t, m1, m2)
	assert.Equal(t, assetpipe.KindStats{Loaded: 2}, pipe.Stats().Meshes)
}

func TestLibraryOptions(t *testing.T) {
	t.Parallel()

	cfg := Default()
	cfg.HTTP.ConditionalHeaders = true
	cfg.HTTP.Headers = map[string]string{"X-Token": "t"}
	assert.Len(t, cfg.LibraryOptions(nil), 2)
}
