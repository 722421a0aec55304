// Package logging implements the request/response logging gateway. Every
// payload logged here passes through field-level redaction unless the service
// is explicitly configured to log sensitive data; Authorization-style headers
// are redacted unconditionally.
package logging

import (
	"encoding/json"

	"go.uber.org/zap"

	"banklink/pkg/platform/mask"
)

// Headers that are redacted regardless of the log-sensitive-data flag.
var redactedHeaders = []string{"Authorization", "X-API-Key", "X-Auth-Token", "clientSecret"}

// Gateway records outbound requests, inbound responses, and errors.
type Gateway struct {
	log             *zap.Logger
	sensitiveFields []string
	logSensitive    bool
}

// Option configures a Gateway.
type Option func(*Gateway)

// WithSensitiveFields adds caller-configured field names to the default
// redaction set.
func WithSensitiveFields(fields []string) Option {
	return func(g *Gateway) {
		g.sensitiveFields = fields
	}
}

// WithSensitiveData disables payload masking. Header redaction stays on.
func WithSensitiveData(enabled bool) Option {
	return func(g *Gateway) {
		g.logSensitive = enabled
	}
}

// New builds a logging gateway over the given zap logger.
func New(log *zap.Logger, opts ...Option) *Gateway {
	g := &Gateway{log: log}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// LogRequest records an outbound API request with masked payload and headers.
func (g *Gateway) LogRequest(endpoint string, data map[string]any, headers map[string]string) {
	g.log.Info("api request",
		zap.String("endpoint", endpoint),
		zap.Any("data", g.payload(data)),
		zap.Any("headers", mask.Headers(headers, redactedHeaders...)),
	)
}

// LogResponse records an inbound API response. Responses with status >= 400
// log at error level, everything else at info.
func (g *Gateway) LogResponse(endpoint string, response any, statusCode int) {
	fields := []zap.Field{
		zap.String("endpoint", endpoint),
		zap.Int("status_code", statusCode),
		zap.Any("response", g.responsePayload(response)),
	}
	if statusCode >= 400 {
		g.log.Error("api response", fields...)
		return
	}
	g.log.Info("api response", fields...)
}

// LogError records a failure with identifying context. The context is logged
// as provided; callers are responsible for keeping it free of sensitive
// values.
func (g *Gateway) LogError(message string, context map[string]any, cause error) {
	g.log.Error(message,
		zap.Any("context", context),
		zap.Error(cause),
	)
}

// LogInfo records an informational event with caller-supplied context.
func (g *Gateway) LogInfo(message string, context map[string]any) {
	g.log.Info(message, zap.Any("context", context))
}

func (g *Gateway) payload(data map[string]any) map[string]any {
	if g.logSensitive {
		return data
	}
	return mask.Sanitize(data, g.sensitiveFields...)
}

// responsePayload normalizes a response value for logging. JSON object bodies
// are decoded so they can be sanitized field by field; anything else is logged
// as-is.
func (g *Gateway) responsePayload(response any) any {
	switch v := response.(type) {
	case map[string]any:
		return g.payload(v)
	case []byte:
		var decoded map[string]any
		if err := json.Unmarshal(v, &decoded); err == nil {
			return g.payload(decoded)
		}
		return string(v)
	case string:
		var decoded map[string]any
		if err := json.Unmarshal([]byte(v), &decoded); err == nil {
			return g.payload(decoded)
		}
		return v
	default:
		return v
	}
}
