package runner

import (
	"encoding/json"
	"errors"

	"github.com/aretw0/graft/pkg/domain"
	"github.com/aretw0/graft/pkg/registry"
	"github.com/aretw0/graft/pkg/schema"
)

// validation is the bare result object of a --validate run. It is printed
// as-is, never wrapped in a Response envelope.
type validation struct {
	Valid  bool             `json:"valid"`
	Errors []map[string]any `json:"errors,omitempty"`
}

// validateOnly checks jsonInput against the tool's declared contract
// without executing anything: JSON syntax, schema shape, model decoding
// and the PreValidate hook. Schema failures, structured errors and plain
// errors all normalize into the same errors list. Reserved-field side
// effects (chdir, deadline, dry-run) never happen here.
func validateOnly(t *registry.Tool, jsonInput string) validation {
	invalid := func(entries ...map[string]any) validation {
		return validation{Valid: false, Errors: entries}
	}

	data := map[string]any{}
	if err := json.Unmarshal([]byte(jsonInput), &data); err != nil {
		return invalid(map[string]any{"message": err.Error()})
	}

	if t.Schema != nil {
		if err := schema.ValidateRaw(t.Schema, data); err != nil {
			if errs := schema.ValidationErrors(err); errs != nil {
				entries := make([]map[string]any, 0, len(errs))
				for _, e := range errs {
					var ve *schema.ValidationError
					if errors.As(e, &ve) {
						entries = append(entries, ve.Entry())
					} else {
						entries = append(entries, map[string]any{"message": e.Error()})
					}
				}
				return invalid(entries...)
			}
			return invalid(map[string]any{"message": err.Error()})
		}
	}

	if t.Decode != nil {
		in, err := t.Decode(data)
		if err != nil {
			return invalid(map[string]any{"message": err.Error()})
		}
		if pv, ok := in.(schema.PreValidator); ok {
			if _, err := safeCall(func() (any, error) { return nil, pv.PreValidate() }); err != nil {
				if serr, ok := domain.AsError(err); ok {
					return invalid(map[string]any{"code": string(serr.Code), "message": serr.Message})
				}
				return invalid(map[string]any{"message": err.Error()})
			}
		}
	}

	return validation{Valid: true}
}
