package registry

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/aretw0/graft/pkg/domain"
	"github.com/aretw0/graft/pkg/protocol"
)

// Invoker runs a direct tool with its decoded input.
type Invoker func(ctx context.Context, in any) (any, error)

// StreamInvoker runs a streaming tool, emitting events through st.
type StreamInvoker func(ctx context.Context, in any, st *protocol.Stream) error

// SessionInvoker runs a session tool over sess.
type SessionInvoker func(ctx context.Context, in any, sess *protocol.Session) error

// Decoder converts validated raw parameters into the tool's input model.
// A nil Decoder means the tool consumes the raw map directly.
type Decoder func(params map[string]any) (any, error)

// emptyObjectSchema is the schema reported for tools without an input
// model: any object validates.
var emptyObjectSchema = json.RawMessage(`{"type":"object","properties":{}}`)

// Tool is one registered command: an invoker for exactly one of the three
// execution modes plus its declarative metadata.
type Tool struct {
	Name        string
	Summary     string
	Description string
	Tags        []string
	Examples    []any
	Streaming   bool
	SessionMode bool
	Schema      json.RawMessage
	Decode      Decoder
	Invoke      Invoker
	Stream      StreamInvoker
	Session     SessionInvoker
}

// Manifest renders the tool's full manifest document.
func (t *Tool) Manifest() domain.ToolManifest {
	schema := t.Schema
	if schema == nil {
		schema = emptyObjectSchema
	}
	return domain.ToolManifest{
		Name:        t.Name,
		Summary:     t.Summary,
		Description: t.Description,
		Streaming:   t.Streaming,
		SessionMode: t.SessionMode,
		Schema:      schema,
		Examples:    t.Examples,
		Tags:        t.Tags,
	}
}

// ResourceHandler serves one resource URI; params holds the values captured
// by the pattern's placeholders.
type ResourceHandler func(ctx context.Context, params map[string]string) (any, error)

// Resource is a registered URI pattern with its handler.
type Resource struct {
	Pattern   string
	Summary   string
	MimeTypes []string
	Tags      []string
	Handler   ResourceHandler

	matcher *patternMatcher
}

// Manifest renders the resource's manifest entry. Slice fields are always
// present in the output, empty rather than null.
func (r *Resource) Manifest() domain.ResourceManifest {
	return domain.ResourceManifest{
		URIPattern: r.Pattern,
		Summary:    r.Summary,
		MimeTypes:  emptyIfNil(r.MimeTypes),
		Tags:       emptyIfNil(r.Tags),
	}
}

// PromptHandler renders a prompt template with the supplied arguments.
type PromptHandler func(ctx context.Context, args map[string]any) (any, error)

// Prompt is a registered prompt template.
type Prompt struct {
	Name      string
	Summary   string
	Arguments map[string]string
	Tags      []string
	Handler   PromptHandler
}

// Manifest renders the prompt's manifest entry.
func (p *Prompt) Manifest() domain.PromptManifest {
	args := p.Arguments
	if args == nil {
		args = map[string]string{}
	}
	return domain.PromptManifest{
		Name:      p.Name,
		Summary:   p.Summary,
		Arguments: args,
		Tags:      emptyIfNil(p.Tags),
	}
}

// Registry holds all registrations for one process. It is safe for
// concurrent use, though registration normally happens once at startup.
type Registry struct {
	mu          sync.RWMutex
	tools       map[string]*Tool
	toolOrder   []string
	resources   []*Resource
	prompts     map[string]*Prompt
	promptOrder []string
}

// NewRegistry creates a new empty registry.
func NewRegistry() *Registry {
	return &Registry{
		tools:   make(map[string]*Tool),
		prompts: make(map[string]*Prompt),
	}
}

// RegisterTool adds t under its name. Re-registering a name replaces the
// prior entry but keeps its original position in the listing order.
func (r *Registry) RegisterTool(t *Tool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.tools[t.Name]; !exists {
		r.toolOrder = append(r.toolOrder, t.Name)
	}
	r.tools[t.Name] = t
}

// Tool looks up a registered tool by name.
func (r *Registry) Tool(name string) (*Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.tools[name]
	return t, ok
}

// Tools returns all registered tools in registration order.
func (r *Registry) Tools() []*Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Tool, 0, len(r.toolOrder))
	for _, name := range r.toolOrder {
		out = append(out, r.tools[name])
	}
	return out
}

// RegisterResource compiles the resource's pattern and adds it to the
// routing table. Patterns are matched in registration order.
func (r *Registry) RegisterResource(res *Resource) error {
	matcher, err := compilePattern(res.Pattern)
	if err != nil {
		return err
	}
	res.matcher = matcher

	r.mu.Lock()
	defer r.mu.Unlock()
	r.resources = append(r.resources, res)
	return nil
}

// Resources returns all registered resources in registration order.
func (r *Registry) Resources() []*Resource {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Resource, len(r.resources))
	copy(out, r.resources)
	return out
}

// ResolveResource finds the first registered pattern matching the whole
// URI and returns it with the captured placeholder values.
func (r *Registry) ResolveResource(uri string) (*Resource, map[string]string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, res := range r.resources {
		if params, ok := res.matcher.match(uri); ok {
			return res, params, true
		}
	}
	return nil, nil, false
}

// RegisterPrompt adds p under its name, replacing any prior entry.
func (r *Registry) RegisterPrompt(p *Prompt) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.prompts[p.Name]; !exists {
		r.promptOrder = append(r.promptOrder, p.Name)
	}
	r.prompts[p.Name] = p
}

// Prompt looks up a registered prompt by name.
func (r *Registry) Prompt(name string) (*Prompt, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.prompts[name]
	return p, ok
}

// Prompts returns all registered prompts in registration order.
func (r *Registry) Prompts() []*Prompt {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Prompt, 0, len(r.promptOrder))
	for _, name := range r.promptOrder {
		out = append(out, r.prompts[name])
	}
	return out
}

// Manifest assembles the app-level discovery document.
func (r *Registry) Manifest(name, version string) domain.Manifest {
	m := domain.Manifest{
		Name:      name,
		Version:   version,
		Tools:     []domain.ToolSummary{},
		Resources: []domain.ResourceManifest{},
		Prompts:   []domain.PromptManifest{},
	}
	for _, t := range r.Tools() {
		m.Tools = append(m.Tools, domain.ToolSummary{
			Name:        t.Name,
			Summary:     t.Summary,
			Streaming:   t.Streaming,
			SessionMode: t.SessionMode,
		})
	}
	for _, res := range r.Resources() {
		m.Resources = append(m.Resources, res.Manifest())
	}
	for _, p := range r.Prompts() {
		m.Prompts = append(m.Prompts, p.Manifest())
	}
	return m
}

func emptyIfNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
