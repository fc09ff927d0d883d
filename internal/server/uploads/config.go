package uploads

import (
	"fmt"
	"time"
)

const (
	DefaultSessionTTL      = 1 * time.Hour
	DefaultSweepInterval   = 10 * time.Minute
	DefaultPreviewMaxBytes = 4 << 20 // 4 MiB
	DefaultMaxParts        = 10000
)

type Config struct {
	// SessionTTL is the maximum age an abandoned chunked-upload session may
	// reach before the reaper evicts it.
	SessionTTL time.Duration `mapstructure:"session_ttl"`

	// SweepInterval is the reaper period.
	SweepInterval time.Duration `mapstructure:"sweep_interval"`

	// PreviewMaxBytes caps the byte-truncated preview for time-based media.
	PreviewMaxBytes int64 `mapstructure:"preview_max_bytes"`

	// MaxParts bounds the declared part count of a multipart upload.
	MaxParts int `mapstructure:"max_parts"`
}

func (c *Config) Validate() error {
	if c.SessionTTL <= 0 {
		return fmt.Errorf("uploads `session_ttl` must be positive")
	}
	if c.SweepInterval <= 0 {
		return fmt.Errorf("uploads `sweep_interval` must be positive")
	}
	if c.PreviewMaxBytes <= 0 {
		return fmt.Errorf("uploads `preview_max_bytes` must be positive")
	}
	if c.MaxParts <= 0 {
		return fmt.Errorf("uploads `max_parts` must be positive")
	}
	return nil
}

func DefaultConfig() *Config {
	return &Config{
		SessionTTL:      DefaultSessionTTL,
		SweepInterval:   DefaultSweepInterval,
		PreviewMaxBytes: DefaultPreviewMaxBytes,
		MaxParts:        DefaultMaxParts,
	}
}
