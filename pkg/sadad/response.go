package sadad

import (
	"bytes"
	"encoding/json"
	"strings"
)

// payload is a decoded gateway response. Sadad wraps results as
// {"errorKey": ..., "response": {...}}; only inspected fields are interpreted and
// raw keeps the whole body for callers.
type payload struct {
	raw      json.RawMessage
	errorKey string
	response json.RawMessage
	fields   map[string]json.RawMessage
}

// decodePayload never fails: a body that is not a JSON object yields an empty payload,
// so the caller reports the missing field it was looking for.
func decodePayload(body []byte) *payload {
	p := &payload{raw: json.RawMessage(body)}

	var envelope struct {
		ErrorKey json.RawMessage `json:"errorKey"`
		Response json.RawMessage `json:"response"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return p
	}
	p.errorKey = textOf(envelope.ErrorKey)
	p.response = envelope.Response

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(envelope.Response, &fields); err == nil {
		p.fields = fields
	}
	return p
}

// gatewayError returns a *GatewayError when the payload carries an errorKey.
func (p *payload) gatewayError() error {
	if p.errorKey == "" {
		return nil
	}
	return &GatewayError{Code: p.errorKey}
}

// field returns response.<name> as text, or "" when it is absent or empty.
func (p *payload) field(name string) string {
	return textOf(p.fields[name])
}

// textOf renders a scalar JSON value as text. Missing, null, "", "0", 0, false and
// composite values all count as empty.
func textOf(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return ""
	}
	switch t := v.(type) {
	case string:
		if t == "0" {
			return ""
		}
		return t
	case json.Number:
		if f, err := t.Float64(); err == nil && f == 0 {
			return ""
		}
		return t.String()
	case bool:
		if t {
			return "true"
		}
	}
	return ""
}

// sensitiveFields are masked before bodies reach the audit log.
var sensitiveFields = []string{"token", "secret", "password", "authorization"}

// sanitizeForLog masks sensitive fields from JSON for logging
func sanitizeForLog(data []byte) []byte {
	var obj map[string]any
	if err := json.Unmarshal(data, &obj); err != nil {
		if json.Valid(data) {
			return data
		}
		return []byte(`{"_error": "response is not valid JSON"}`)
	}

	sanitizeMap(obj)

	sanitized, err := json.Marshal(obj)
	if err != nil {
		return []byte(`{"_error": "failed to marshal sanitized data"}`)
	}
	return sanitized
}

// sanitizeMap recursively masks sensitive fields in a map
func sanitizeMap(obj map[string]any) {
	for key, value := range obj {
		keyLower := strings.ToLower(key)
		masked := false
		for _, sensitive := range sensitiveFields {
			if strings.Contains(keyLower, sensitive) {
				obj[key] = "***MASKED***"
				masked = true
				break
			}
		}
		if masked {
			continue
		}
		switch nested := value.(type) {
		case map[string]any:
			sanitizeMap(nested)
		case []any:
			for _, item := range nested {
				if m, ok := item.(map[string]any); ok {
					sanitizeMap(m)
				}
			}
		}
	}
}
