// Package token implements the bank authentication client: bearer token
// acquisition via the client-credentials grant, cached in an external keyed
// store.
//
// Validity is defined purely as cache presence. The client performs no TTL
// check of its own; the cache store owns expiration, and the bank API is the
// source of truth for token validity. There is deliberately no locking around
// refresh: concurrent callers hitting an empty cache may each refresh, which
// at worst issues a surplus token.
package token

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"banklink/internal/logging"
	"banklink/internal/platform/config"
	"banklink/internal/platform/metrics"
	dErrors "banklink/pkg/domain-errors"
)

// cacheKey is the fixed key the bearer token is cached under.
const cacheKey = "banklink:bank:access_token"

// Cache is the keyed external store the token lives in. Get reports presence;
// an expired-and-evicted key is simply absent.
type Cache interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
}

// Client obtains and caches bearer tokens from the bank token endpoint.
type Client struct {
	hc           *http.Client
	tokenURL     string
	clientID     string
	clientSecret string
	cache        Cache
	ttl          time.Duration
	logs         *logging.Gateway
	metrics      *metrics.Metrics
}

// Option configures a Client.
type Option func(*Client)

// WithMetrics enables the token refresh counter.
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

// New builds an authentication client from bank config.
func New(cfg config.Bank, cache Cache, logs *logging.Gateway, opts ...Option) (*Client, error) {
	if cache == nil {
		return nil, fmt.Errorf("token cache is required")
	}
	if logs == nil {
		return nil, fmt.Errorf("logging gateway is required")
	}

	ttl := cfg.TokenCacheTTL
	if ttl <= 0 {
		ttl = time.Hour
	}

	c := &Client{
		hc:           &http.Client{Timeout: cfg.Timeout},
		tokenURL:     cfg.TokenURL,
		clientID:     cfg.ClientID,
		clientSecret: cfg.ClientSecret,
		cache:        cache,
		ttl:          ttl,
		logs:         logs,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Authenticate returns the cached token when present, refreshing otherwise.
// Cache read failures degrade to a refresh rather than failing the call.
func (c *Client) Authenticate(ctx context.Context) (string, error) {
	if tok, ok, err := c.cache.Get(ctx, cacheKey); err == nil && ok && tok != "" {
		return tok, nil
	}
	return c.RefreshToken(ctx)
}

// tokenResponse is the bank token endpoint's success body.
type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

// RefreshToken posts the client-credentials grant and caches the result under
// the fixed key for the configured TTL. A response without an access token is
// unrecoverable for the call in progress.
func (c *Client) RefreshToken(ctx context.Context) (string, error) {
	form := url.Values{
		"client_id":     {c.clientID},
		"client_secret": {c.clientSecret},
		"grant_type":    {"client_credentials"},
	}

	c.logs.LogRequest(c.tokenURL, map[string]any{
		"client_id":  c.clientID,
		"grant_type": "client_credentials",
	}, nil)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeUpstream, "build token request")
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.hc.Do(req)
	if err != nil {
		c.metrics.IncrementTokenRefresh("error")
		c.logs.LogError("token request failed", map[string]any{"endpoint": c.tokenURL}, err)
		return "", dErrors.Wrap(err, dErrors.CodeUpstream, "token request")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeUpstream, "read token response")
	}
	c.logs.LogResponse(c.tokenURL, body, resp.StatusCode)

	var parsed tokenResponse
	if err := json.Unmarshal(body, &parsed); err != nil || parsed.AccessToken == "" {
		c.metrics.IncrementTokenRefresh("error")
		return "", dErrors.New(dErrors.CodeUpstream, "token response missing access_token")
	}
	c.metrics.IncrementTokenRefresh("ok")

	if err := c.cache.Set(ctx, cacheKey, parsed.AccessToken, c.ttl); err != nil {
		// A write failure means the next caller refreshes again; the token in
		// hand is still good for this call.
		c.logs.LogError("token cache write failed", map[string]any{"endpoint": c.tokenURL}, err)
	}

	return parsed.AccessToken, nil
}
