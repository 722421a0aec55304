// Package gateway implements the shared authenticated HTTP client used for
// bank platform APIs outside the account verification and linking endpoints.
// Every call acquires a bearer token, is logged on both legs, and produces a
// single audit entry. Calls are made exactly once; retries are the caller's
// concern.
package gateway

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"banklink/internal/audit"
	"banklink/internal/logging"
	"banklink/internal/platform/config"
	"banklink/internal/platform/metrics"
	dErrors "banklink/pkg/domain-errors"
)

const tracerName = "banklink/internal/gateway"

// TokenProvider supplies the bearer token carried on every request.
type TokenProvider interface {
	Authenticate(ctx context.Context) (string, error)
}

// Auditor records gateway activity for the audit trail.
type Auditor interface {
	Log(ctx context.Context, action, module string, payload map[string]any, actorID, referenceID string) error
}

// Gateway issues authenticated requests against the bank platform API.
type Gateway struct {
	baseURL string
	hc      *http.Client
	auth    TokenProvider
	logs    *logging.Gateway
	auditor Auditor
	metrics *metrics.Metrics
	headers map[string]string
}

// Option configures a Gateway.
type Option func(*Gateway)

// WithDefaultHeaders sets headers attached to every request. Per-call headers
// with the same name win.
func WithDefaultHeaders(headers map[string]string) Option {
	return func(g *Gateway) {
		g.headers = headers
	}
}

// WithMetrics enables request metrics.
func WithMetrics(m *metrics.Metrics) Option {
	return func(g *Gateway) {
		g.metrics = m
	}
}

// New builds a Gateway from config. The auditor may be a disabled recorder
// but must not be nil.
func New(cfg config.Bank, auth TokenProvider, logs *logging.Gateway, auditor Auditor, opts ...Option) (*Gateway, error) {
	if auth == nil {
		return nil, fmt.Errorf("token provider is required")
	}
	if logs == nil {
		return nil, fmt.Errorf("logging gateway is required")
	}
	if auditor == nil {
		return nil, fmt.Errorf("auditor is required")
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	if cfg.InsecureSkipVerify {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	g := &Gateway{
		baseURL: cfg.BaseURL,
		hc:      &http.Client{Timeout: timeout, Transport: transport},
		auth:    auth,
		logs:    logs,
		auditor: auditor,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// Get issues a GET request against path.
func (g *Gateway) Get(ctx context.Context, path string, headers map[string]string) (*http.Response, error) {
	return g.do(ctx, http.MethodGet, path, nil, headers)
}

// Post issues a POST request with payload marshaled as JSON.
func (g *Gateway) Post(ctx context.Context, path string, payload any, headers map[string]string) (*http.Response, error) {
	return g.do(ctx, http.MethodPost, path, payload, headers)
}

// Put issues a PUT request with payload marshaled as JSON.
func (g *Gateway) Put(ctx context.Context, path string, payload any, headers map[string]string) (*http.Response, error) {
	return g.do(ctx, http.MethodPut, path, payload, headers)
}

// Delete issues a DELETE request against path.
func (g *Gateway) Delete(ctx context.Context, path string, headers map[string]string) (*http.Response, error) {
	return g.do(ctx, http.MethodDelete, path, nil, headers)
}

// do performs one authenticated request. The response body is fully read for
// logging and handed back as a fresh reader, so callers can consume it again.
func (g *Gateway) do(ctx context.Context, method, path string, payload any, headers map[string]string) (*http.Response, error) {
	endpoint := g.baseURL + path

	ctx, span := otel.Tracer(tracerName).Start(ctx, "gateway.request",
		trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()
	span.SetAttributes(
		attribute.String("http.method", method),
		attribute.String("http.url", endpoint),
	)

	tok, err := g.auth.Authenticate(ctx)
	if err != nil {
		span.SetStatus(codes.Error, "token acquisition failed")
		return nil, dErrors.Wrap(err, dErrors.CodeUpstream, "acquire token")
	}

	var body []byte
	if payload != nil {
		body, err = json.Marshal(payload)
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "marshal request payload")
		}
	}

	merged := map[string]string{
		"Authorization": "Bearer " + tok,
		"Content-Type":  "application/json",
	}
	for k, v := range g.headers {
		merged[k] = v
	}
	for k, v := range headers {
		merged[k] = v
	}

	g.logs.LogRequest(endpoint, requestData(body), merged)

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "build request")
	}
	for k, v := range merged {
		req.Header.Set(k, v)
	}

	start := time.Now()
	resp, err := g.hc.Do(req)
	if err != nil {
		g.metrics.ObserveBankRequest(path, "error", time.Since(start))
		span.SetStatus(codes.Error, "request failed")
		g.logs.LogError("api request failed", map[string]any{
			"method":   method,
			"endpoint": endpoint,
		}, err)
		return nil, dErrors.Wrap(err, dErrors.CodeUpstream, "execute request")
	}

	respBody, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUpstream, "read response body")
	}
	resp.Body = io.NopCloser(bytes.NewReader(respBody))

	g.metrics.ObserveBankRequest(path, strconv.Itoa(resp.StatusCode), time.Since(start))
	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))
	g.logs.LogResponse(endpoint, respBody, resp.StatusCode)

	if err := g.auditor.Log(ctx, "api_request", audit.ModuleGateway, map[string]any{
		"method":      method,
		"endpoint":    endpoint,
		"status_code": resp.StatusCode,
	}, "", ""); err != nil {
		g.logs.LogError("audit write failed", map[string]any{"endpoint": endpoint}, err)
	}

	return resp, nil
}

// requestData decodes a JSON object body into a map for field-level masking.
func requestData(body []byte) map[string]any {
	if len(body) == 0 {
		return nil
	}
	var m map[string]any
	if err := json.Unmarshal(body, &m); err != nil {
		return map[string]any{"raw": string(body)}
	}
	return m
}
