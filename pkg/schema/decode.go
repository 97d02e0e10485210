package schema

import (
	"fmt"

	"github.com/mitchellh/mapstructure"
)

// Decode fills the typed input model from a raw parameter map. Field names
// follow json tags, embedded structs are squashed, and scalar conversions
// are lenient (a JSON number decodes into an int field, "true" into a
// bool) to accept both JSON input and flag-parsed values.
func Decode(data map[string]any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		TagName:          "json",
		Squash:           true,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return fmt.Errorf("building decoder: %w", err)
	}
	if err := dec.Decode(data); err != nil {
		return fmt.Errorf("decoding input: %w", err)
	}
	return nil
}
