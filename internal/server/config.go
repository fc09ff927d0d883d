package server

import (
	"fmt"

	"github.com/mintgate/mediavault/internal/server/auth"
	"github.com/mintgate/mediavault/internal/server/crypt"
	"github.com/mintgate/mediavault/internal/server/store"
	"github.com/mintgate/mediavault/internal/server/uploads"
)

const (
	DefaultAddr      = "0.0.0.0:8080"
	DefaultRateLimit = "120-M"
)

type Config struct {
	HTTP    HTTPConfig     `mapstructure:"http"`
	Store   store.Config   `mapstructure:"store"`
	Auth    auth.Config    `mapstructure:"auth"`
	Crypt   crypt.Config   `mapstructure:"crypt"`
	Uploads uploads.Config `mapstructure:"uploads"`
	DBPath  string         `mapstructure:"db_path"`
}

type HTTPConfig struct {
	Addr     string `mapstructure:"addr"`
	CertFile string `mapstructure:"cert_file"`
	KeyFile  string `mapstructure:"key_file"`

	// RateLimit is a ulule/limiter formatted rate, e.g. "120-M".
	RateLimit string `mapstructure:"rate_limit"`
}

func (c *Config) Validate() error {
	if c.HTTP.Addr == "" {
		return fmt.Errorf("http `addr` required")
	}
	if c.DBPath == "" {
		return fmt.Errorf("`db_path` required")
	}
	if err := c.Auth.Validate(); err != nil {
		return err
	}
	if err := c.Uploads.Validate(); err != nil {
		return err
	}
	// store credentials are optional; when present they must be complete
	if c.Store.Configured() {
		if err := c.Store.Validate(); err != nil {
			return err
		}
	}
	return nil
}
