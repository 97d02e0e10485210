// Package schema turns Go input models into JSON schemas and back.
//
// It covers the three legs of input handling for a tool: generating a
// {type: object, properties, required} schema from a struct type for
// manifests and help text, validating a raw parameter map against that
// schema before execution, and decoding the validated map into the typed
// model the tool function receives.
//
// Basic usage:
//
//	type AddInput struct {
//	    A int `json:"a" jsonschema:"description=First operand"`
//	    B int `json:"b" jsonschema:"description=Second operand"`
//	}
//
//	raw := schema.Generate[AddInput]()
//	if err := schema.ValidateRaw(raw, params); err != nil {
//	    // err aggregates per-field failures
//	}
//	var in AddInput
//	if err := schema.Decode(params, &in); err != nil { ... }
//
// Input models may opt into dispatcher-interpreted behavior by satisfying
// the capability interfaces in this package (HasWorkingDir, HasTimeout,
// HasDryRun, PreValidator, LogSafer), or by embedding Reserved to get the
// standard reserved fields in one line.
package schema
