package goldfeed

import (
	"errors"
	"time"
)

// ProviderConfig contains configuration for the external gold price provider
type ProviderConfig struct {
	// BaseURL is the provider API base URL
	BaseURL string
	// APIKey authenticates requests when the provider requires it
	APIKey string
	// Timeout bounds each HTTP request
	Timeout time.Duration
	// RetryAttempts is how many times a failed fetch is retried before the
	// static fallback table takes over
	RetryAttempts int
	// RetryDelay is the delay between retries
	RetryDelay time.Duration
}

// Errors for configuration validation
var (
	ErrMissingBaseURL = errors.New("goldfeed: missing provider base URL")
	ErrInvalidTimeout = errors.New("goldfeed: timeout must be positive")
)

// Validate validates the configuration and fills defaults
func (c *ProviderConfig) Validate() error {
	if c.BaseURL == "" {
		return ErrMissingBaseURL
	}
	if c.Timeout == 0 {
		c.Timeout = 10 * time.Second
	}
	if c.Timeout < 0 {
		return ErrInvalidTimeout
	}
	if c.RetryAttempts < 0 {
		c.RetryAttempts = 0
	}
	if c.RetryDelay <= 0 {
		c.RetryDelay = 500 * time.Millisecond
	}
	return nil
}
