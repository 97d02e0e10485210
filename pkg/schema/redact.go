package schema

import "regexp"

var sensitiveKey = regexp.MustCompile(`(?i)(password|passphrase|secret|token|api_?key|credential|authorization)`)

// Redact returns a deep copy of params with the values of sensitive keys
// masked. Keys matching the built-in patterns (passwords, tokens, api
// keys, ...) are always masked; extraKeys adds exact names on top. Nested
// maps are walked recursively. Useful for LogSafe implementations.
func Redact(params map[string]any, extraKeys ...string) map[string]any {
	extra := make(map[string]bool, len(extraKeys))
	for _, k := range extraKeys {
		extra[k] = true
	}

	out := make(map[string]any, len(params))
	for k, v := range params {
		if sensitiveKey.MatchString(k) || extra[k] {
			out[k] = "***"
			continue
		}
		if sub, ok := v.(map[string]any); ok {
			out[k] = Redact(sub, extraKeys...)
			continue
		}
		out[k] = v
	}
	return out
}
