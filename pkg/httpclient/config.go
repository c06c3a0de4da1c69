package httpclient

import (
	"crypto/tls"
	"fmt"
	"time"
)

// Config represents HTTP client configuration options. There is
// deliberately no retry section: every request in the bootstrap workflow is
// attempted exactly once.
type Config struct {
	Timeout   time.Duration     `json:"timeout" yaml:"timeout"`
	UserAgent string            `json:"user_agent" yaml:"user_agent"`
	Headers   map[string]string `json:"headers" yaml:"headers"`

	// TLS configuration
	TLSConfig *TLSConfig `json:"tls" yaml:"tls"`

	// Rate limiting configuration
	RateLimitConfig *RateLimitConfig `json:"rate_limit" yaml:"rate_limit"`
}

// TLSConfig defines TLS security settings
type TLSConfig struct {
	InsecureSkipVerify bool     `json:"insecure_skip_verify" yaml:"insecure_skip_verify"`
	MinVersion         uint16   `json:"min_version" yaml:"min_version"`
	CipherSuites       []uint16 `json:"cipher_suites" yaml:"cipher_suites"`
}

// RateLimitConfig defines rate limiting behavior
type RateLimitConfig struct {
	RequestsPerSecond float64 `json:"requests_per_second" yaml:"requests_per_second"`
	BurstSize         int     `json:"burst_size" yaml:"burst_size"`
}

// DefaultConfig returns a secure default configuration
func DefaultConfig() *Config {
	return &Config{
		Timeout:   30 * time.Second,
		UserAgent: "tokenfetch/1.0 (https://cybermonkey.net.au)",
		Headers:   make(map[string]string),

		TLSConfig: &TLSConfig{
			InsecureSkipVerify: false,
			MinVersion:         tls.VersionTLS12,
			CipherSuites: []uint16{
				tls.TLS_ECDHE_RSA_WITH_AES_256_GCM_SHA384,
				tls.TLS_ECDHE_RSA_WITH_CHACHA20_POLY1305,
				tls.TLS_ECDHE_ECDSA_WITH_AES_256_GCM_SHA384,
				tls.TLS_ECDHE_ECDSA_WITH_CHACHA20_POLY1305,
			},
		},

		RateLimitConfig: &RateLimitConfig{
			RequestsPerSecond: 10.0,
			BurstSize:         5,
		},
	}
}

// Validate checks the configuration for invalid combinations.
func (c *Config) Validate() error {
	if c.Timeout < 0 {
		return fmt.Errorf("invalid timeout: %v", c.Timeout)
	}
	if c.RateLimitConfig != nil {
		if c.RateLimitConfig.RequestsPerSecond < 0 {
			return fmt.Errorf("invalid rate limit: %v requests per second", c.RateLimitConfig.RequestsPerSecond)
		}
		if c.RateLimitConfig.RequestsPerSecond > 0 && c.RateLimitConfig.BurstSize <= 0 {
			return fmt.Errorf("rate limiting requires a positive burst size")
		}
	}
	return nil
}

func (c *Config) buildTLSConfig() *tls.Config {
	if c.TLSConfig == nil {
		return &tls.Config{MinVersion: tls.VersionTLS12}
	}
	minVersion := c.TLSConfig.MinVersion
	if minVersion == 0 {
		minVersion = tls.VersionTLS12
	}
	return &tls.Config{
		InsecureSkipVerify: c.TLSConfig.InsecureSkipVerify,
		MinVersion:         minVersion,
		CipherSuites:       c.TLSConfig.CipherSuites,
	}
}
