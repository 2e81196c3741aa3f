// File: internal/services/provider/config.go
package provider

import (
	"fmt"
	"time"
)

// Config holds one provider's connection settings. Credentials are read
// once at startup and passed in here; clients never touch the environment.
type Config struct {
	APIKey  string
	BaseURL string

	// HTTP client timeout for a single upstream call. The per-request
	// deadline is the caller's context; this is a backstop.
	Timeout time.Duration

	// MaxOutputTokens is the safety ceiling applied on top of whatever the
	// model's detail endpoint reports.
	MaxOutputTokens int

	Temperature float32
}

func (c *Config) Validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("api key is required")
	}
	if c.BaseURL == "" {
		return fmt.Errorf("base url is required")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if c.MaxOutputTokens <= 0 {
		return fmt.Errorf("max output tokens must be positive")
	}
	return nil
}

func DefaultConfig() *Config {
	return &Config{
		Timeout:         5 * time.Minute,
		MaxOutputTokens: 4096,
		Temperature:     0.7,
	}
}
