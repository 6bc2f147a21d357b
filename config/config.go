package config

import (
	"bytes"
	"fmt"
	"os"
	"time"

	"github.com/opd-ai/clipforge"
	"github.com/opd-ai/clipforge/interfaces"
	"github.com/opd-ai/clipforge/limits"
	"github.com/opd-ai/clipforge/media/transcode"
	"gopkg.in/yaml.v3"
)

// Config holds the complete server configuration.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Storage    StorageConfig    `yaml:"storage"`
	Processing ProcessingConfig `yaml:"processing"`
	Media      MediaConfig      `yaml:"media"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// ServerConfig defines HTTP server settings.
type ServerConfig struct {
	Addr            string        `yaml:"addr"`             // Listen address, host:port
	MaxUploadSize   int64         `yaml:"max_upload_size"`  // Bytes accepted per upload
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"` // Grace period on SIGINT/SIGTERM
}

// StorageConfig defines where media and the catalog live.
type StorageConfig struct {
	MediaRoot string `yaml:"media_root"` // Root of incoming/, videos/ and trash/
	Database  string `yaml:"database"`   // SQLite catalog file
}

// ProcessingConfig defines how jobs are run.
type ProcessingConfig struct {
	Workers          int    `yaml:"workers"`           // Concurrent jobs, 0 means one per CPU
	Container        string `yaml:"container"`         // Output container of the processed video
	Codec            string `yaml:"codec"`             // Output encoder
	StrictDecode     bool   `yaml:"strict_decode"`     // Fail the video on a mid-stream decode error
	MaxWidth         int    `yaml:"max_width"`         // Widest processed output
	ThumbnailQuality int    `yaml:"thumbnail_quality"` // JPEG quality 1-100
}

// MediaConfig selects and tunes the media backend.
type MediaConfig struct {
	UseSimulation  bool   `yaml:"use_simulation"`
	FFmpegPath     string `yaml:"ffmpeg_path"`
	ProbeTimeoutMS int    `yaml:"probe_timeout_ms"`
}

// LoggingConfig defines logrus output.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // trace, debug, info, warn, error
	Format string `yaml:"format"` // text or json
}

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := &Config{}
	cfg.setDefaults()
	return cfg
}

// Load reads configuration from a YAML file.
// Returns an error if the file cannot be read or decoded.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML configuration data and applies defaults.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields

	// An empty document decodes to io.EOF; treat it as all defaults
	if len(bytes.TrimSpace(data)) > 0 {
		if err := decoder.Decode(&cfg); err != nil {
			return nil, fmt.Errorf("decode config: %w", err)
		}
	}

	cfg.setDefaults()
	return &cfg, nil
}

// setDefaults applies explicit default values to unset fields.
func (c *Config) setDefaults() {
	if c.Server.Addr == "" {
		c.Server.Addr = ":5000"
	}
	if c.Server.MaxUploadSize == 0 {
		c.Server.MaxUploadSize = limits.MaxUploadSize
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = 5 * time.Second
	}

	if c.Storage.MediaRoot == "" {
		c.Storage.MediaRoot = "media"
	}
	if c.Storage.Database == "" {
		c.Storage.Database = "videos.db"
	}

	if c.Processing.Container == "" {
		c.Processing.Container = transcode.DefaultContainer
	}
	if c.Processing.Codec == "" {
		c.Processing.Codec = transcode.DefaultCodec
	}
	if c.Processing.MaxWidth == 0 {
		c.Processing.MaxWidth = limits.MaxOutputWidth
	}
	if c.Processing.ThumbnailQuality == 0 {
		c.Processing.ThumbnailQuality = limits.ThumbnailQuality
	}

	if c.Media.FFmpegPath == "" {
		c.Media.FFmpegPath = "ffmpeg"
	}
	if c.Media.ProbeTimeoutMS == 0 {
		c.Media.ProbeTimeoutMS = 5000
	}

	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "text"
	}
}

// BackendConfig converts the media section for the backend factory.
func (c *Config) BackendConfig() *interfaces.MediaBackendConfig {
	return &interfaces.MediaBackendConfig{
		UseSimulation: c.Media.UseSimulation,
		FFmpegPath:    c.Media.FFmpegPath,
		ProbeTimeout:  c.Media.ProbeTimeoutMS,
	}
}

// PipelineOptions converts the processing section for clipforge.NewPipeline.
func (c *Config) PipelineOptions() *clipforge.Options {
	opts := clipforge.NewOptions()
	opts.MaxWidth = c.Processing.MaxWidth
	opts.ThumbnailQuality = c.Processing.ThumbnailQuality
	opts.Transcode.Container = c.Processing.Container
	opts.Transcode.Codec = c.Processing.Codec
	opts.Transcode.StrictDecode = c.Processing.StrictDecode
	return opts
}
