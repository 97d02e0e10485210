package graft

import (
	"context"

	"github.com/aretw0/graft/pkg/protocol"
	"github.com/aretw0/graft/pkg/registry"
	"github.com/aretw0/graft/pkg/schema"
)

// ToolOption refines a tool registration.
type ToolOption func(*registry.Tool)

// WithDescription sets the long-form description shown in the manifest.
func WithDescription(description string) ToolOption {
	return func(t *registry.Tool) {
		t.Description = description
	}
}

// WithExamples attaches example invocations to the manifest.
func WithExamples(examples ...any) ToolOption {
	return func(t *registry.Tool) {
		t.Examples = append(t.Examples, examples...)
	}
}

// WithTags attaches classification tags to the manifest.
func WithTags(tags ...string) ToolOption {
	return func(t *registry.Tool) {
		t.Tags = append(t.Tags, tags...)
	}
}

// Tool registers a direct tool on app. The input model T drives schema
// generation, validation and the reserved execution-control fields.
// Registration is a package function taking the app first because Go
// methods cannot have type parameters.
func Tool[T any](app *App, name, summary string, fn func(ctx context.Context, in T) (any, error), opts ...ToolOption) {
	t := &registry.Tool{
		Name:    name,
		Summary: summary,
		Schema:  schema.Generate[T](),
		Decode:  decodeInto[T](),
		Invoke: func(ctx context.Context, in any) (any, error) {
			return fn(ctx, *in.(*T))
		},
	}
	applyToolOptions(t, opts)
	app.Registry.RegisterTool(t)
}

// StreamTool registers a streaming tool. It only runs under the --stream
// flag and reports streaming: true in discovery.
func StreamTool[T any](app *App, name, summary string, fn func(ctx context.Context, in T, st *protocol.Stream) error, opts ...ToolOption) {
	t := &registry.Tool{
		Name:      name,
		Summary:   summary,
		Streaming: true,
		Schema:    schema.Generate[T](),
		Decode:    decodeInto[T](),
		Stream: func(ctx context.Context, in any, st *protocol.Stream) error {
			return fn(ctx, *in.(*T), st)
		},
	}
	applyToolOptions(t, opts)
	app.Registry.RegisterTool(t)
}

// SessionTool registers an interactive tool gated behind the --session
// flag. The handler drives the turn loop through sess.
func SessionTool[T any](app *App, name, summary string, fn func(ctx context.Context, in T, sess *protocol.Session) error, opts ...ToolOption) {
	t := &registry.Tool{
		Name:        name,
		Summary:     summary,
		SessionMode: true,
		Schema:      schema.Generate[T](),
		Decode:      decodeInto[T](),
		Session: func(ctx context.Context, in any, sess *protocol.Session) error {
			return fn(ctx, *in.(*T), sess)
		},
	}
	applyToolOptions(t, opts)
	app.Registry.RegisterTool(t)
}

// RawTool registers a tool that consumes the parameter map directly:
// no schema, no validation, no reserved fields.
func (a *App) RawTool(name, summary string, fn func(ctx context.Context, params map[string]any) (any, error), opts ...ToolOption) {
	t := &registry.Tool{
		Name:    name,
		Summary: summary,
		Invoke: func(ctx context.Context, in any) (any, error) {
			params, _ := in.(map[string]any)
			return fn(ctx, params)
		},
	}
	applyToolOptions(t, opts)
	a.Registry.RegisterTool(t)
}

// ResourceOption refines a resource registration.
type ResourceOption func(*registry.Resource)

// WithMimeTypes declares the content types the resource serves.
func WithMimeTypes(types ...string) ResourceOption {
	return func(r *registry.Resource) {
		r.MimeTypes = append(r.MimeTypes, types...)
	}
}

// WithResourceTags attaches classification tags to the manifest entry.
func WithResourceTags(tags ...string) ResourceOption {
	return func(r *registry.Resource) {
		r.Tags = append(r.Tags, tags...)
	}
}

// Resource registers a handler for a URI pattern such as
// "config://{section}". Placeholder values captured from the URI are
// passed to the handler. Fails when the pattern does not compile.
func (a *App) Resource(pattern, summary string, handler registry.ResourceHandler, opts ...ResourceOption) error {
	res := &registry.Resource{
		Pattern: pattern,
		Summary: summary,
		Handler: handler,
	}
	for _, opt := range opts {
		opt(res)
	}
	return a.Registry.RegisterResource(res)
}

// PromptOption refines a prompt registration.
type PromptOption func(*registry.Prompt)

// WithArguments documents the prompt's expected arguments as name to
// description pairs.
func WithArguments(args map[string]string) PromptOption {
	return func(p *registry.Prompt) {
		p.Arguments = args
	}
}

// WithPromptTags attaches classification tags to the manifest entry.
func WithPromptTags(tags ...string) PromptOption {
	return func(p *registry.Prompt) {
		p.Tags = append(p.Tags, tags...)
	}
}

// Prompt registers a named prompt template.
func (a *App) Prompt(name, summary string, handler registry.PromptHandler, opts ...PromptOption) {
	p := &registry.Prompt{
		Name:    name,
		Summary: summary,
		Handler: handler,
	}
	for _, opt := range opts {
		opt(p)
	}
	a.Registry.RegisterPrompt(p)
}

func applyToolOptions(t *registry.Tool, opts []ToolOption) {
	for _, opt := range opts {
		opt(t)
	}
}

// decodeInto builds the decoder shared by the typed registrations. It
// returns a pointer so hook methods with pointer receivers stay visible
// to the dispatcher.
func decodeInto[T any]() registry.Decoder {
	return func(params map[string]any) (any, error) {
		in := new(T)
		if err := schema.Decode(params, in); err != nil {
			return nil, err
		}
		return in, nil
	}
}
