package auth

import (
	"fmt"
)

type Config struct {
	Enabled     bool   `mapstructure:"enabled"`
	TokenIssuer string `mapstructure:"token_issuer"`
	TokenSecret string `mapstructure:"token_secret"`
}

func (c *Config) Validate() error {
	if c.Enabled {
		if c.TokenSecret == "" {
			return fmt.Errorf("auth `token_secret` is required when auth is enabled")
		}
	}
	return nil
}
