package notification

import (
	"errors"
	"time"
)

// SMSConfig contains configuration for the SMS gateway
type SMSConfig struct {
	// BaseURL is the gateway API base URL
	BaseURL string
	// APIKey is the account API key, embedded in the request path
	APIKey string
	// Sender is the originating line number
	Sender string
	// Timeout bounds each HTTP request
	Timeout time.Duration
}

// Errors for configuration validation
var (
	ErrSMSMissingBaseURL = errors.New("notification: missing SMS gateway base URL")
	ErrSMSMissingAPIKey  = errors.New("notification: missing SMS gateway API key")
)

// Validate validates the configuration and fills defaults
func (c *SMSConfig) Validate() error {
	if c.BaseURL == "" {
		return ErrSMSMissingBaseURL
	}
	if c.APIKey == "" {
		return ErrSMSMissingAPIKey
	}
	if c.Timeout <= 0 {
		c.Timeout = 10 * time.Second
	}
	return nil
}
