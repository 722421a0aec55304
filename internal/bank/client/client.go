// Package client provides the low-level HTTP client for the bank's account
// verification and linking endpoints. Unlike the shared HTTP gateway, it is
// configured with its own base URL and timeout and sends the bank-specific
// clientId/clientSecret/organizationId headers instead of an Authorization
// header.
package client

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"banklink/internal/bank"
	"banklink/internal/logging"
	"banklink/internal/platform/config"
	dErrors "banklink/pkg/domain-errors"
)

// TokenProvider supplies the bearer token carried in the clientSecret header.
type TokenProvider interface {
	Authenticate(ctx context.Context) (string, error)
}

// Client issues single, retry-free POST calls against the bank API.
type Client struct {
	baseURL        string
	hc             *http.Client
	clientID       string
	organizationID string
	auth           TokenProvider
	logs           *logging.Gateway
}

// New builds a bank client from config. The TLS verification toggle exists
// for the bank's staging environment, which serves a private CA.
func New(cfg config.Bank, auth TokenProvider, logs *logging.Gateway) (*Client, error) {
	if auth == nil {
		return nil, fmt.Errorf("token provider is required")
	}
	if logs == nil {
		return nil, fmt.Errorf("logging gateway is required")
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	if cfg.InsecureSkipVerify {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}

	orgID := cfg.OrganizationID
	if orgID == "" {
		orgID = "223"
	}

	return &Client{
		baseURL:        cfg.BaseURL,
		hc:             &http.Client{Timeout: cfg.FlowTimeout, Transport: transport},
		clientID:       cfg.ClientID,
		organizationID: orgID,
		auth:           auth,
		logs:           logs,
	}, nil
}

// Post sends payload as JSON to path and returns the raw response body and
// status code. The token acquisition failure path is unrecoverable for the
// call; transport errors surface after being logged, and the caller decides
// whether to retry.
func (c *Client) Post(ctx context.Context, path string, payload any) ([]byte, int, error) {
	tok, err := c.auth.Authenticate(ctx)
	if err != nil {
		return nil, 0, dErrors.Wrap(err, dErrors.CodeUpstream, "acquire bank token")
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, 0, dErrors.Wrap(err, dErrors.CodeInternal, "marshal bank request")
	}

	endpoint := c.baseURL + path
	headers := map[string]string{
		bank.HeaderClientID:       c.clientID,
		bank.HeaderClientSecret:   tok,
		bank.HeaderOrganizationID: c.organizationID,
		"Content-Type":            "application/json",
	}
	c.logs.LogRequest(endpoint, asMap(body), headers)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, 0, dErrors.Wrap(err, dErrors.CodeUpstream, "build bank request")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		c.logs.LogError("bank request failed", map[string]any{"endpoint": endpoint}, err)
		return nil, 0, dErrors.Wrap(err, dErrors.CodeUpstream, "bank request")
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, dErrors.Wrap(err, dErrors.CodeUpstream, "read bank response")
	}
	c.logs.LogResponse(endpoint, respBody, resp.StatusCode)

	return respBody, resp.StatusCode, nil
}

// asMap round-trips a JSON body into a map so the logging gateway can mask
// individual fields.
func asMap(body []byte) map[string]any {
	var m map[string]any
	if err := json.Unmarshal(body, &m); err != nil {
		return map[string]any{"raw": string(body)}
	}
	return m
}
