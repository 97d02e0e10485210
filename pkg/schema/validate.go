package schema

import (
	"encoding/json"
	"fmt"

	"github.com/xeipuuv/gojsonschema"
)

// ValidateRaw checks a raw parameter map against an object schema produced
// by Generate. On failure it returns an *AggregateError whose entries are
// *ValidationError, one per offending field.
func ValidateRaw(raw json.RawMessage, data map[string]any) error {
	if len(raw) == 0 {
		return nil
	}

	schemaLoader := gojsonschema.NewBytesLoader(raw)
	dataLoader := gojsonschema.NewGoLoader(data)

	result, err := gojsonschema.Validate(schemaLoader, dataLoader)
	if err != nil {
		return fmt.Errorf("running schema validation: %w", err)
	}
	if result.Valid() {
		return nil
	}

	errs := make([]error, 0, len(result.Errors()))
	for _, re := range result.Errors() {
		field := re.Field()
		if field == "(root)" {
			if p, ok := re.Details()["property"].(string); ok {
				field = p
			}
		}
		errs = append(errs, &ValidationError{
			Field:   field,
			Message: re.Description(),
			Value:   re.Value(),
		})
	}
	return &AggregateError{Errors: errs}
}
