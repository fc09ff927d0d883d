package crypt

import "fmt"

type Config struct {
	MasterSecret string `mapstructure:"master_secret"`
}

// Configured reports whether a master secret has been injected. The server
// runs without one, but any request asking for encryption is refused.
func (c *Config) Configured() bool {
	return c.MasterSecret != ""
}

func (c *Config) Validate() error {
	if c.MasterSecret == "" {
		return fmt.Errorf("crypt `master_secret` is required")
	}
	return nil
}
