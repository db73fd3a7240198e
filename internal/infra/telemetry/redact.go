package telemetry

import (
	"encoding/json"
	"strings"
)

// RedactionMarker replaces every sensitive value before it reaches a log line.
const RedactionMarker = "[REDACTED]"

var sensitiveKeys = map[string]struct{}{
	"access_token":  {},
	"refresh_token": {},
	"token":         {},
	"authorization": {},
	"client_secret": {},
	"secret":        {},
	"password":      {},
	"card_number":   {},
	"number":        {},
	"security_code": {},
	"cvv":           {},
	"cvv2":          {},
}

// Redact returns a copy of v with sensitive values masked, recursing through
// maps and slices. Redacting an already-redacted structure is a no-op. The
// input is never mutated.
func Redact(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for key, inner := range val {
			if isSensitiveKey(key) {
				out[key] = RedactionMarker
				continue
			}
			out[key] = Redact(inner)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, inner := range val {
			out[i] = Redact(inner)
		}
		return out
	default:
		return v
	}
}

// RedactJSON decodes raw JSON, masks it, and re-encodes it for logging.
// Payloads that do not parse are replaced wholesale rather than logged raw.
func RedactJSON(raw []byte) string {
	if len(raw) == 0 {
		return ""
	}
	var decoded any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return RedactionMarker
	}
	masked, err := json.Marshal(Redact(decoded))
	if err != nil {
		return RedactionMarker
	}
	return string(masked)
}

func isSensitiveKey(key string) bool {
	_, ok := sensitiveKeys[strings.ToLower(key)]
	return ok
}
