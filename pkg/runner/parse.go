package runner

import (
	"encoding/json"
	"strings"

	"github.com/aretw0/graft/pkg/domain"
	"github.com/aretw0/graft/pkg/registry"
	"github.com/aretw0/graft/pkg/schema"
)

// controlFlags steer the dispatcher itself and never become parameters.
var controlFlags = map[string]bool{
	"--stream":     true,
	"--session":    true,
	"--sample-via": true,
	"--manifest":   true,
	"--help":       true,
	"--validate":   true,
}

// firstJSONToken returns the first argument that looks like a JSON object.
func firstJSONToken(args []string) string {
	for _, arg := range args {
		if strings.HasPrefix(arg, "{") {
			return arg
		}
	}
	return ""
}

// parseFlags collects `--key value` pairs into a parameter map. Keys map
// dashes to underscores; values are parsed as JSON when possible, falling
// back to the literal string. A flag with no value (followed by another
// flag or the end of arguments) becomes boolean true. Later occurrences
// of the same key win.
func parseFlags(args []string) map[string]any {
	data := map[string]any{}
	for i := 0; i < len(args); {
		arg := args[i]
		if !strings.HasPrefix(arg, "--") || controlFlags[arg] {
			i++
			continue
		}

		key := strings.ReplaceAll(arg[2:], "-", "_")
		if i+1 < len(args) && !strings.HasPrefix(args[i+1], "--") {
			data[key] = coerceValue(args[i+1])
			i += 2
		} else {
			data[key] = true
			i++
		}
	}
	return data
}

// coerceValue interprets a flag value as JSON so numbers, booleans and
// nested structures survive the command line; everything else stays a
// string.
func coerceValue(s string) any {
	var v any
	if err := json.Unmarshal([]byte(s), &v); err == nil {
		return v
	}
	return s
}

// buildInput assembles the tool's input from either the JSON token or the
// flag pairs, validates it against the tool's schema, and decodes it into
// the input model when the tool declares one.
func buildInput(t *registry.Tool, args []string, jsonInput string) (any, *domain.Error) {
	var raw map[string]any
	if jsonInput != "" {
		if err := json.Unmarshal([]byte(jsonInput), &raw); err != nil {
			return nil, domain.NewErrorf(domain.CodeInvalidInput, "Invalid JSON: %v", err)
		}
	} else {
		raw = parseFlags(args)
	}

	if t.Schema != nil {
		if err := schema.ValidateRaw(t.Schema, raw); err != nil {
			return nil, domain.NewError(domain.CodeInvalidInput, err.Error())
		}
	}

	if t.Decode == nil {
		return raw, nil
	}

	in, err := t.Decode(raw)
	if err != nil {
		return nil, domain.NewError(domain.CodeInvalidInput, err.Error())
	}
	return in, nil
}
