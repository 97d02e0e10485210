// Package process discovers and calls tools hosted by external
// executables that speak the same command-line protocol. It is the
// client side of the discovery surface: one registry aggregates the
// tools, resources and prompts of many child programs.
package process

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os/exec"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/aretw0/graft/internal/logging"
	"github.com/aretw0/graft/pkg/domain"
)

// DefaultDiscoverTimeout bounds each discovery subprocess.
const DefaultDiscoverTimeout = 5 * time.Second

// Source is one conforming executable, optionally with fixed leading
// arguments (for interpreter-launched tools).
type Source struct {
	Command string
	Args    []string
}

// key identifies the source for caching and log output.
func (s Source) key() string {
	return strings.Join(append([]string{s.Command}, s.Args...), " ")
}

func (s Source) command(ctx context.Context, extra ...string) *exec.Cmd {
	args := append(slices.Clone(s.Args), extra...)
	return exec.CommandContext(ctx, s.Command, args...)
}

type toolEntry struct {
	source  Source
	summary string
}

type resourceEntry struct {
	source   Source
	manifest domain.ResourceManifest
	re       *regexp.Regexp
}

type promptEntry struct {
	source   Source
	manifest domain.PromptManifest
}

// Registry aggregates the surfaces of external tool executables. Load
// runs discovery; sources that fail are skipped with a warning so one
// broken executable cannot take down the rest.
//
// Load must complete before the registry is shared between goroutines.
type Registry struct {
	sources []Source
	timeout time.Duration
	logger  *slog.Logger
	cache   Cache

	tools     map[string]toolEntry
	toolOrder []string
	resources []resourceEntry
	prompts   map[string]promptEntry
}

// Option configures the registry.
type Option func(*Registry)

// WithSources appends launch specs for conforming executables.
func WithSources(sources ...Source) Option {
	return func(r *Registry) {
		r.sources = append(r.sources, sources...)
	}
}

// WithPaths appends plain executable paths as sources.
func WithPaths(paths ...string) Option {
	return func(r *Registry) {
		for _, p := range paths {
			r.sources = append(r.sources, Source{Command: p})
		}
	}
}

// WithDiscoverTimeout bounds each discovery subprocess.
func WithDiscoverTimeout(d time.Duration) Option {
	return func(r *Registry) {
		r.timeout = d
	}
}

// WithLogger sets the logger used for load warnings.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Registry) {
		r.logger = logger
	}
}

// WithCache reuses discovery manifests between loads.
func WithCache(c Cache) Option {
	return func(r *Registry) {
		r.cache = c
	}
}

// New creates an empty registry. Call Load to run discovery.
func New(opts ...Option) *Registry {
	r := &Registry{
		timeout: DefaultDiscoverTimeout,
		logger:  logging.NewNop(),
		tools:   make(map[string]toolEntry),
		prompts: make(map[string]promptEntry),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Load runs --discover against every source. Sources that time out, exit
// non-zero or print an unparseable manifest are skipped with a warning.
func (r *Registry) Load(ctx context.Context) {
	for _, src := range r.sources {
		r.load(ctx, src)
	}
}

func (r *Registry) load(ctx context.Context, src Source) {
	manifest, err := r.manifest(ctx, src)
	if err != nil {
		r.logger.Warn("failed to load tool source", "source", src.key(), "err", err)
		return
	}

	for _, t := range manifest.Tools {
		if _, exists := r.tools[t.Name]; !exists {
			r.toolOrder = append(r.toolOrder, t.Name)
		}
		r.tools[t.Name] = toolEntry{source: src, summary: t.Summary}
	}
	for _, res := range manifest.Resources {
		re, err := prefixRegexp(res.URIPattern)
		if err != nil {
			r.logger.Warn("skipping resource pattern", "pattern", res.URIPattern, "err", err)
			continue
		}
		r.resources = append(r.resources, resourceEntry{source: src, manifest: res, re: re})
	}
	for _, p := range manifest.Prompts {
		r.prompts[p.Name] = promptEntry{source: src, manifest: p}
	}
}

// manifest fetches a source's discovery manifest, consulting the cache
// first. A cache entry that no longer parses is ignored and refreshed.
func (r *Registry) manifest(ctx context.Context, src Source) (*domain.Manifest, error) {
	key := src.key()
	if r.cache != nil {
		if data, ok := r.cache.Get(ctx, key); ok {
			var m domain.Manifest
			if err := json.Unmarshal(data, &m); err == nil {
				return &m, nil
			}
		}
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	out, err := src.command(ctx, "--discover").Output()
	if err != nil {
		return nil, fmt.Errorf("discover %s: %w", src.Command, err)
	}

	var m domain.Manifest
	if err := json.Unmarshal(out, &m); err != nil {
		return nil, fmt.Errorf("discover %s: %w", src.Command, err)
	}

	if r.cache != nil {
		r.cache.Set(ctx, key, out)
	}
	return &m, nil
}

// Discover returns tool summaries keyed by name, ready for context
// injection into an agent conversation.
func (r *Registry) Discover() map[string]string {
	out := make(map[string]string, len(r.tools))
	for name, e := range r.tools {
		out[name] = e.summary
	}
	return out
}

// Tools returns discovered tool names in first-seen order.
func (r *Registry) Tools() []string {
	return slices.Clone(r.toolOrder)
}

// Resources returns the discovered resource patterns in registration
// order.
func (r *Registry) Resources() []domain.ResourceManifest {
	out := make([]domain.ResourceManifest, 0, len(r.resources))
	for _, e := range r.resources {
		out = append(out, e.manifest)
	}
	return out
}

// Prompts returns the discovered prompt templates, sorted by name.
func (r *Registry) Prompts() []domain.PromptManifest {
	out := make([]domain.PromptManifest, 0, len(r.prompts))
	for _, e := range r.prompts {
		out = append(out, e.manifest)
	}
	slices.SortFunc(out, func(a, b domain.PromptManifest) int {
		return strings.Compare(a.Name, b.Name)
	})
	return out
}

// Schema fetches the full manifest document for one tool.
func (r *Registry) Schema(ctx context.Context, name string) (domain.ToolManifest, error) {
	e, ok := r.tools[name]
	if !ok {
		return domain.ToolManifest{}, fmt.Errorf("unknown tool: %s", name)
	}

	out, err := e.source.command(ctx, name, "--manifest").Output()
	if err != nil {
		return domain.ToolManifest{}, fmt.Errorf("manifest %s: %w", name, err)
	}

	var m domain.ToolManifest
	if err := json.Unmarshal(out, &m); err != nil {
		return domain.ToolManifest{}, fmt.Errorf("manifest %s: %w", name, err)
	}
	return m, nil
}

// Call executes a tool with the given parameters and returns its
// envelope. Unknown tools and unparseable replies are folded into error
// envelopes rather than Go errors, keeping the direct-mode contract:
// every call yields exactly one response value.
func (r *Registry) Call(ctx context.Context, name string, params map[string]any) domain.Response {
	e, ok := r.tools[name]
	if !ok {
		return domain.NewErrorf(domain.CodeNotFound, "Unknown tool: %s", name).Response()
	}

	payload := []byte("{}")
	if params != nil {
		data, err := json.Marshal(params)
		if err != nil {
			return domain.NewError(domain.CodeInternal, err.Error()).Response()
		}
		payload = data
	}

	// The exit code is deliberately ignored: conforming tools render
	// failures as envelopes on stdout and still exit zero.
	out, _ := e.source.command(ctx, name, string(payload)).Output()

	var resp domain.Response
	if err := json.Unmarshal(out, &resp); err != nil {
		return domain.NewErrorf(domain.CodeInternal, "Invalid response: %s", strings.TrimSpace(string(out))).Response()
	}
	return resp
}

// FetchResource routes a URI to the first source whose pattern matches
// and returns the decoded reply. Unlike the in-process router the match
// is a prefix, so a child registering "note://{id}" also serves deeper
// paths under it.
func (r *Registry) FetchResource(ctx context.Context, uri string) (any, error) {
	for _, res := range r.resources {
		if !res.re.MatchString(uri) {
			continue
		}

		out, err := res.source.command(ctx, "--resource", uri).Output()
		if err != nil && len(bytes.TrimSpace(out)) == 0 {
			return nil, fmt.Errorf("resource %s: %w", uri, err)
		}

		var v any
		if err := json.Unmarshal(out, &v); err != nil {
			return nil, fmt.Errorf("resource %s: %w", uri, err)
		}
		return v, nil
	}
	return domain.NewErrorf(domain.CodeNotFound, "No resource matches: %s", uri).Response(), nil
}

// RenderPrompt renders a named prompt with JSON arguments and returns
// the decoded reply.
func (r *Registry) RenderPrompt(ctx context.Context, name string, args map[string]any) (any, error) {
	e, ok := r.prompts[name]
	if !ok {
		return domain.NewErrorf(domain.CodeNotFound, "Unknown prompt: %s", name).Response(), nil
	}

	payload := []byte("{}")
	if args != nil {
		data, err := json.Marshal(args)
		if err != nil {
			return nil, err
		}
		payload = data
	}

	out, err := e.source.command(ctx, "--prompt", name, string(payload)).Output()
	if err != nil && len(bytes.TrimSpace(out)) == 0 {
		return nil, fmt.Errorf("prompt %s: %w", name, err)
	}

	var v any
	if err := json.Unmarshal(out, &v); err != nil {
		return nil, fmt.Errorf("prompt %s: %w", name, err)
	}
	return v, nil
}

var (
	placeholderRe = regexp.MustCompile(`\{(\w+)\}`)
	markerRe      = regexp.MustCompile("\x00(\\w+)\x00")
)

// prefixRegexp compiles a URI pattern into a start-anchored expression
// using the same marker-escape scheme as the in-process router, minus
// the end anchor and the capture groups: routing here only needs to know
// which child owns the URI.
func prefixRegexp(pattern string) (*regexp.Regexp, error) {
	marked := placeholderRe.ReplaceAllString(pattern, "\x00$1\x00")
	quoted := regexp.QuoteMeta(marked)
	expr := markerRe.ReplaceAllString(quoted, `[^/]+`)

	re, err := regexp.Compile(`\A` + expr)
	if err != nil {
		return nil, fmt.Errorf("invalid resource pattern %q: %w", pattern, err)
	}
	return re, nil
}
