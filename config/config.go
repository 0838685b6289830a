// Package config loads assetpipe settings from a YAML file and ASSETPIPE_*
// environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g.
// ASSETPIPE_PIPELINE_DEPTH=4.
const EnvPrefix = "ASSETPIPE"

// Config is the complete assetpipe configuration.
type Config struct {
	Logging  LoggingConfig  `mapstructure:"logging" yaml:"logging"`
	Pipeline PipelineConfig `mapstructure:"pipeline" yaml:"pipeline"`
	Decoder  DecoderConfig  `mapstructure:"decoder" yaml:"decoder"`
	HTTP     HTTPConfig     `mapstructure:"http" yaml:"http"`
	Metrics  MetricsConfig  `mapstructure:"metrics" yaml:"metrics"`
}

// LoggingConfig controls the CLI logger.
type LoggingConfig struct {
	// Level is one of DEBUG, INFO, WARN, ERROR (case-insensitive).
	Level string `mapstructure:"level" validate:"required,oneof=DEBUG INFO WARN ERROR" yaml:"level"`

	// Format is "text" or "json".
	Format string `mapstructure:"format" validate:"required,oneof=text json" yaml:"format"`
}

// PipelineConfig maps onto the pipeline's functional options.
type PipelineConfig struct {
	Depth           int           `mapstructure:"depth" validate:"gte=1,lte=64" yaml:"depth"`
	QueueCapacity   int           `mapstructure:"queue_capacity" validate:"gte=1" yaml:"queue_capacity"`
	RetentionWindow int           `mapstructure:"retention_window" validate:"gte=0" yaml:"retention_window"`
	EvictionBatch   int           `mapstructure:"eviction_batch" validate:"gte=1" yaml:"eviction_batch"`
	MaxAssetSize    ByteSize      `mapstructure:"max_asset_size" validate:"gt=0" yaml:"max_asset_size"`
	Sharing         SharingConfig `mapstructure:"sharing" yaml:"sharing"`

	// SkipSuffixes excludes plan assets whose names end with any suffix.
	SkipSuffixes []string `mapstructure:"skip_suffixes" yaml:"skip_suffixes"`
}

// SharingConfig enables the tiered object cache per asset kind.
type SharingConfig struct {
	Textures  bool `mapstructure:"textures" yaml:"textures"`
	Meshes    bool `mapstructure:"meshes" yaml:"meshes"`
	Materials bool `mapstructure:"materials" yaml:"materials"`
}

// DecoderConfig bounds payload decoding.
type DecoderConfig struct {
	MaxImageBytes    ByteSize `mapstructure:"max_image_bytes" validate:"gte=0" yaml:"max_image_bytes"`
	MaxDecoderMemory ByteSize `mapstructure:"max_decoder_memory" validate:"gte=0" yaml:"max_decoder_memory"`
	LowMemory        bool     `mapstructure:"low_memory" yaml:"low_memory"`
}

// HTTPConfig configures access to remote packs.
type HTTPConfig struct {
	Timeout            time.Duration     `mapstructure:"timeout" validate:"gte=0" yaml:"timeout"`
	ConditionalHeaders bool              `mapstructure:"conditional_headers" yaml:"conditional_headers"`
	Headers            map[string]string `mapstructure:"headers" yaml:"headers,omitempty"`
}

// MetricsConfig controls the Prometheus endpoint of the load command.
type MetricsConfig struct {
	// Listen is the host:port serving /metrics. Empty disables it.
	Listen string `mapstructure:"listen" validate:"omitempty,hostname_port" yaml:"listen"`
}

// Load loads configuration from file, environment, and defaults.
//
// Configuration precedence (highest to lowest):
//  1. Environment variables (ASSETPIPE_*)
//  2. Configuration file, if path is not empty
//  3. Default values
func Load(path string) (*Config, error) {
	v := viper.New()
	setupViper(v, path)

	if path != "" {
		if err := v.ReadInConfig(); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("configuration file not found: %s", path)
			}
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, viper.DecodeHook(decodeHooks())); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	ApplyDefaults(&cfg)
	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &cfg, nil
}

// setupViper registers defaults for every key, so that environment
// overrides apply even without a config file.
func setupViper(v *viper.Viper, path string) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	d := Default()
	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.format", d.Logging.Format)
	v.SetDefault("pipeline.depth", d.Pipeline.Depth)
	v.SetDefault("pipeline.queue_capacity", d.Pipeline.QueueCapacity)
	v.SetDefault("pipeline.retention_window", d.Pipeline.RetentionWindow)
	v.SetDefault("pipeline.eviction_batch", d.Pipeline.EvictionBatch)
	v.SetDefault("pipeline.max_asset_size", int64(d.Pipeline.MaxAssetSize))
	v.SetDefault("pipeline.sharing.textures", d.Pipeline.Sharing.Textures)
	v.SetDefault("pipeline.sharing.meshes", d.Pipeline.Sharing.Meshes)
	v.SetDefault("pipeline.sharing.materials", d.Pipeline.Sharing.Materials)
	v.SetDefault("pipeline.skip_suffixes", d.Pipeline.SkipSuffixes)
	v.SetDefault("decoder.max_image_bytes", int64(d.Decoder.MaxImageBytes))
	v.SetDefault("decoder.max_decoder_memory", int64(d.Decoder.MaxDecoderMemory))
	v.SetDefault("decoder.low_memory", d.Decoder.LowMemory)
	v.SetDefault("http.timeout", d.HTTP.Timeout)
	v.SetDefault("http.conditional_headers", d.HTTP.ConditionalHeaders)
	v.SetDefault("metrics.listen", d.Metrics.Listen)

	if path != "" {
		v.SetConfigFile(path)
	}
}

// decodeHooks converts human-readable sizes, durations and comma-separated
// lists.
func decodeHooks() mapstructure.DecodeHookFunc {
	return mapstructure.ComposeDecodeHookFunc(
		byteSizeDecodeHook(),
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	)
}

// byteSizeDecodeHook converts strings like "64MiB" and plain numbers to
// ByteSize.
func byteSizeDecodeHook() mapstructure.DecodeHookFunc {
	return func(_ reflect.Type, to reflect.Type, data any) (any, error) {
		if to != reflect.TypeFor[ByteSize]() {
			return data, nil
		}
		switch v := data.(type) {
		case string:
			return ParseByteSize(v)
		case int:
			return ByteSize(v), nil
		case int64:
			return ByteSize(v), nil
		case uint64:
			return ByteSize(v), nil //nolint:gosec // validated as positive afterwards
		case float64:
			return ByteSize(v), nil
		default:
			return data, nil
		}
	}
}

// Validate checks cfg against its struct constraints.
func Validate(cfg *Config) error {
	v := validator.New(validator.WithRequiredStructEnabled())
	return v.Struct(cfg)
}
