package config

import (
	"fmt"

	"github.com/zsiec/ringvideo/internal/ringvideo/decoder"
	"github.com/zsiec/ringvideo/internal/ringvideo/marker"
)

func (c *Config) Validate() error {
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging config: %w", err)
	}

	if err := c.Decode.Validate(); err != nil {
		return fmt.Errorf("decode config: %w", err)
	}

	if err := c.Output.Validate(); err != nil {
		return fmt.Errorf("output config: %w", err)
	}

	if err := c.Metrics.Validate(); err != nil {
		return fmt.Errorf("metrics config: %w", err)
	}

	if err := c.Cache.Validate(); err != nil {
		return fmt.Errorf("cache config: %w", err)
	}

	return nil
}

func (l *LoggingConfig) Validate() error {
	validLevels := map[string]bool{
		"panic": true,
		"fatal": true,
		"error": true,
		"warn":  true,
		"info":  true,
		"debug": true,
		"trace": true,
	}

	if !validLevels[l.Level] {
		return fmt.Errorf("invalid log level: %s", l.Level)
	}

	if l.Format != "json" && l.Format != "text" {
		return fmt.Errorf("invalid log format: %s", l.Format)
	}

	if l.Output == "" {
		return fmt.Errorf("log output is required")
	}

	if l.MaxSize < 0 || l.MaxBackups < 0 || l.MaxAge < 0 {
		return fmt.Errorf("log rotation settings cannot be negative")
	}

	return nil
}

func (d *DecodeConfig) Validate() error {
	if _, err := marker.ParseMode(d.Mode); err != nil {
		return err
	}

	if _, err := decoder.ParseFlip(d.Flip); err != nil {
		return err
	}

	if d.SearchWindow <= 0 {
		return fmt.Errorf("search_window must be positive")
	}

	if d.ReadChunk <= 0 {
		return fmt.Errorf("read_chunk must be positive")
	}

	if d.MaxCaptureSize < 0 {
		return fmt.Errorf("max_capture_size cannot be negative")
	}

	return nil
}

// ParsedMode returns the decode mode as a marker.Mode.
func (d *DecodeConfig) ParsedMode() marker.Mode {
	m, _ := marker.ParseMode(d.Mode)
	return m
}

// ParsedFlip returns the flip correction as a decoder.Flip.
func (d *DecodeConfig) ParsedFlip() decoder.Flip {
	f, _ := decoder.ParseFlip(d.Flip)
	return f
}

func (o *OutputConfig) Validate() error {
	if o.Dir == "" {
		return fmt.Errorf("output dir is required")
	}

	return nil
}

func (m *MetricsConfig) Validate() error {
	if m.Enabled && m.Textfile == "" {
		return fmt.Errorf("textfile path is required when metrics are enabled")
	}

	return nil
}

func (c *CacheConfig) Validate() error {
	if !c.Enabled {
		return nil
	}

	if c.Addr == "" {
		return fmt.Errorf("cache addr is required")
	}

	if c.DB < 0 {
		return fmt.Errorf("invalid Redis database number: %d", c.DB)
	}

	if c.TTL < 0 {
		return fmt.Errorf("ttl cannot be negative")
	}

	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}

	return nil
}
