// Package mask implements field-level redaction and the fixed-format
// identifier checks used across the bank integration: CNIC and mobile number
// validation, canonical formatting, and recursive sanitization of key/value
// payloads before they reach a log sink.
package mask

import (
	"fmt"
	"strings"
)

// DefaultSensitiveKeys are always redacted by Sanitize, regardless of the
// caller-supplied extras. Matching is case-insensitive.
var DefaultSensitiveKeys = []string{
	"password",
	"pin",
	"cvv",
	"card_number",
	"account_number",
	"cnic",
	"mobile_number",
}

// Value coerces v to text and masks it, preserving length. Values of four
// characters or fewer become all asterisks; longer values keep their first and
// last two characters. Masking is idempotent: re-masking produces the same
// output.
func Value(v any) string {
	s := fmt.Sprint(v)
	n := len(s)
	if n == 0 {
		return ""
	}
	if n <= 4 {
		return strings.Repeat("*", n)
	}
	return s[:2] + strings.Repeat("*", n-4) + s[n-2:]
}

// Sanitize returns a copy of m with sensitive leaf values masked. Keys are
// matched case-insensitively against DefaultSensitiveKeys unioned with extra.
// Nested map[string]any values are sanitized recursively. The input map is
// never mutated.
func Sanitize(m map[string]any, extra ...string) map[string]any {
	if m == nil {
		return nil
	}

	sensitive := make(map[string]struct{}, len(DefaultSensitiveKeys)+len(extra))
	for _, k := range DefaultSensitiveKeys {
		sensitive[strings.ToLower(k)] = struct{}{}
	}
	for _, k := range extra {
		sensitive[strings.ToLower(k)] = struct{}{}
	}

	return sanitize(m, sensitive)
}

func sanitize(m map[string]any, sensitive map[string]struct{}) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		if nested, ok := v.(map[string]any); ok {
			out[k] = sanitize(nested, sensitive)
			continue
		}
		if _, match := sensitive[strings.ToLower(k)]; match {
			out[k] = Value(v)
			continue
		}
		out[k] = v
	}
	return out
}

// Headers redacts the values of the given header names, case-insensitively,
// returning a copy. Used by the logging gateway for Authorization-style
// headers that must never appear in logs even when payload masking is
// disabled.
func Headers(headers map[string]string, names ...string) map[string]string {
	if headers == nil {
		return nil
	}
	redact := make(map[string]struct{}, len(names))
	for _, n := range names {
		redact[strings.ToLower(n)] = struct{}{}
	}
	out := make(map[string]string, len(headers))
	for k, v := range headers {
		if _, match := redact[strings.ToLower(k)]; match {
			out[k] = Value(v)
			continue
		}
		out[k] = v
	}
	return out
}
