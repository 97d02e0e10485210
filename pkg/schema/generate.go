package schema

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"
)

// Generate reflects a JSON schema from the input model type T. Definitions
// are inlined and the document keywords ($schema, $id) are stripped so the
// result is the bare object schema manifests expect.
func Generate[T any]() json.RawMessage {
	var zero T
	return generateFor(zero)
}

func generateFor(zero any) json.RawMessage {
	reflector := &jsonschema.Reflector{
		Anonymous:      true,
		DoNotReference: true,
		ExpandedStruct: true,
	}

	s := reflector.Reflect(zero)
	s.Version = ""
	s.ID = ""

	raw, err := json.Marshal(s)
	if err != nil {
		// Only unmarshalable field types end up here, which is a
		// programming error in the model declaration.
		panic(fmt.Sprintf("schema: cannot reflect %T: %v", zero, err))
	}
	return raw
}

// Property is one parameter description parsed back out of a schema, used
// for human help text.
type Property struct {
	Name        string
	Type        string
	Description string
	Default     any
	Required    bool
}

// Properties parses an object schema into its parameter list, preserving
// the declaration order of the properties object.
func Properties(raw json.RawMessage) ([]Property, error) {
	if len(raw) == 0 {
		return nil, nil
	}

	var doc struct {
		Properties map[string]struct {
			Type        string `json:"type"`
			Description string `json:"description"`
			Default     any    `json:"default"`
		} `json:"properties"`
		Required []string `json:"required"`
	}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parsing schema: %w", err)
	}

	required := make(map[string]bool, len(doc.Required))
	for _, name := range doc.Required {
		required[name] = true
	}

	names, err := propertyOrder(raw)
	if err != nil {
		return nil, err
	}

	props := make([]Property, 0, len(names))
	for _, name := range names {
		p, ok := doc.Properties[name]
		if !ok {
			continue
		}
		typ := p.Type
		if typ == "" {
			typ = "string"
		}
		props = append(props, Property{
			Name:        name,
			Type:        typ,
			Description: p.Description,
			Default:     p.Default,
			Required:    required[name],
		})
	}
	return props, nil
}

// propertyOrder walks the raw JSON tokens to recover the key order of the
// top-level properties object, which encoding/json maps discard.
func propertyOrder(raw json.RawMessage) ([]string, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))

	// Enter the top-level object.
	if _, err := dec.Token(); err != nil {
		return nil, err
	}

	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, _ := keyTok.(string)
		if key != "properties" {
			// Skip this member's value wholesale.
			var skip json.RawMessage
			if err := dec.Decode(&skip); err != nil {
				return nil, err
			}
			continue
		}

		// Inside the properties object: collect keys, skip values.
		if _, err := dec.Token(); err != nil {
			return nil, err
		}
		var names []string
		for dec.More() {
			nameTok, err := dec.Token()
			if err != nil {
				return nil, err
			}
			name, _ := nameTok.(string)
			names = append(names, name)
			var skip json.RawMessage
			if err := dec.Decode(&skip); err != nil {
				return nil, err
			}
		}
		return names, nil
	}
	return nil, nil
}
