package config

import (
	"fmt"
	"strings"

	"github.com/opd-ai/clipforge/limits"
	"github.com/opd-ai/clipforge/real"
	"github.com/sirupsen/logrus"
)

// Validate checks that all configuration values are within acceptable ranges.
// Returns an error describing the first validation failure found.
func (c *Config) Validate() error {
	if err := c.Server.Validate(); err != nil {
		return fmt.Errorf("server config: %w", err)
	}
	if err := c.Storage.Validate(); err != nil {
		return fmt.Errorf("storage config: %w", err)
	}
	if err := c.Processing.Validate(); err != nil {
		return fmt.Errorf("processing config: %w", err)
	}
	if err := c.BackendConfig().Validate(); err != nil {
		return fmt.Errorf("media config: %w", err)
	}
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging config: %w", err)
	}
	return nil
}

// Validate checks server configuration values.
func (s *ServerConfig) Validate() error {
	if s.Addr == "" {
		return fmt.Errorf("addr must not be empty")
	}
	if s.MaxUploadSize <= 0 {
		return fmt.Errorf("max_upload_size must be positive, got %d", s.MaxUploadSize)
	}
	if s.ShutdownTimeout <= 0 {
		return fmt.Errorf("shutdown_timeout must be positive, got %s", s.ShutdownTimeout)
	}
	return nil
}

// Validate checks storage configuration values.
func (s *StorageConfig) Validate() error {
	if s.MediaRoot == "" {
		return fmt.Errorf("media_root must not be empty")
	}
	if s.Database == "" {
		return fmt.Errorf("database must not be empty")
	}
	return nil
}

// Validate checks processing configuration values.
func (p *ProcessingConfig) Validate() error {
	if p.Workers < 0 {
		return fmt.Errorf("workers must not be negative, got %d", p.Workers)
	}
	if !real.CodecAllowed(p.Container, p.Codec) {
		return fmt.Errorf("codec %q cannot be muxed into container %q (known containers: %s)",
			p.Codec, p.Container, strings.Join(real.Containers(), ", "))
	}
	if p.MaxWidth <= 0 || p.MaxWidth > limits.MaxDimension {
		return fmt.Errorf("max_width must be between 1 and %d, got %d", limits.MaxDimension, p.MaxWidth)
	}
	if p.ThumbnailQuality < 1 || p.ThumbnailQuality > 100 {
		return fmt.Errorf("thumbnail_quality must be between 1 and 100, got %d", p.ThumbnailQuality)
	}
	return nil
}

// Validate checks logging configuration values.
func (l *LoggingConfig) Validate() error {
	if _, err := logrus.ParseLevel(l.Level); err != nil {
		return fmt.Errorf("level: %w", err)
	}
	switch l.Format {
	case "text", "json":
	default:
		return fmt.Errorf("format must be text or json, got %q", l.Format)
	}
	return nil
}
