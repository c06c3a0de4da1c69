// pkg/httpclient/httpclient.go

package httpclient

import (
	"context"
	"net"
	"net/http"
	"time"

	cerr "github.com/cockroachdb/errors"
	"golang.org/x/time/rate"
)

// Client wraps *http.Client with the workflow's policy: fixed timeout, TLS
// floor, optional client-side rate limiting, and a shared header set.
type Client struct {
	client  *http.Client
	config  *Config
	limiter *rate.Limiter
}

// NewClient builds a Client from the given configuration. A nil config uses
// DefaultConfig.
func NewClient(config *Config) (*Client, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, cerr.Wrap(err, "invalid http client config")
	}

	transport := &http.Transport{
		TLSClientConfig: config.buildTLSConfig(),
		DialContext: (&net.Dialer{
			Timeout:   5 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
	}

	c := &Client{
		client: &http.Client{
			Timeout:   config.Timeout,
			Transport: transport,
		},
		config: config,
	}

	if rl := config.RateLimitConfig; rl != nil && rl.RequestsPerSecond > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(rl.RequestsPerSecond), rl.BurstSize)
	}

	return c, nil
}

// Do applies shared headers and rate limiting, then performs the request.
func (c *Client) Do(ctx context.Context, req *http.Request) (*http.Response, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, cerr.Wrap(err, "rate limiter wait")
		}
	}
	if c.config.UserAgent != "" && req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", c.config.UserAgent)
	}
	for k, v := range c.config.Headers {
		if req.Header.Get(k) == "" {
			req.Header.Set(k, v)
		}
	}
	return c.client.Do(req.WithContext(ctx))
}
