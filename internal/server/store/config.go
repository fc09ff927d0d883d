package store

import (
	"fmt"
	"strings"

	"github.com/mintgate/mediavault/internal/utils"
)

type Config struct {
	BucketName    string `mapstructure:"bucket_name"`
	Region        string `mapstructure:"region"`
	AccessKey     string `mapstructure:"access_key"`
	SecretKey     string `mapstructure:"secret_key"`
	Endpoint      string `mapstructure:"endpoint"`
	UseAccelerate bool   `mapstructure:"use_accelerate"`
	GatewayURL    string `mapstructure:"gateway_url"`
}

// Configured reports whether store credentials are present. When false the
// server still boots, but every ingestion endpoint answers "storage not
// configured" instead of crashing.
func (c *Config) Configured() bool {
	return c.BucketName != "" && c.AccessKey != "" && c.SecretKey != ""
}

func (c *Config) Validate() error {
	if c.BucketName == "" {
		return fmt.Errorf("bucket_name required")
	}
	if c.Region == "" {
		return fmt.Errorf("region required")
	}
	if c.AccessKey == "" {
		return fmt.Errorf("access_key required")
	}
	if c.SecretKey == "" {
		return fmt.Errorf("secret_key required")
	}
	if c.Endpoint != "" && !utils.IsValidURL(c.Endpoint) {
		return fmt.Errorf("invalid endpoint URL %q", c.Endpoint)
	}
	if c.GatewayURL == "" {
		return fmt.Errorf("gateway_url required")
	}
	if !utils.IsValidURL(c.GatewayURL) {
		return fmt.Errorf("invalid gateway URL %q", c.GatewayURL)
	}
	return nil
}

// GatewayFor builds the public retrieval URL for a content identifier.
func (c *Config) GatewayFor(cid string) string {
	return strings.TrimSuffix(c.GatewayURL, "/") + "/" + cid
}
