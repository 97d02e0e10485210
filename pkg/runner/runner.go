package runner

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"sync"

	"github.com/aretw0/graft/internal/logging"
	"github.com/aretw0/graft/pkg/domain"
	"github.com/aretw0/graft/pkg/protocol"
	"github.com/aretw0/graft/pkg/registry"
)

// Runner dispatches process arguments against a registry using provided IO.
// This allows for easy testing and embedding in different frontends.
type Runner struct {
	// Name and Version identify the app in help and discovery output.
	Name    string
	Version string

	// Registry holds the registered tools, resources and prompts.
	Registry *registry.Registry

	// In is the input channel for session and sampling traffic.
	In io.Reader
	// Out is the primary output channel: exactly one JSON value per direct
	// invocation, one JSON line per event otherwise.
	Out io.Writer
	// Err is the secondary output channel (notifications, watchdog).
	Err io.Writer

	// Logger is used for internal debug logging. If nil, a no-op logger
	// is used.
	Logger *slog.Logger

	// Deadline implements the timeout reserved field.
	Deadline Deadline

	stdinOnce sync.Once
	stdin     *protocol.LineReader
}

// NewRunner creates a Runner bound to the standard streams.
func NewRunner(name, version string, reg *registry.Registry, opts ...Option) *Runner {
	r := &Runner{
		Name:     name,
		Version:  version,
		Registry: reg,
		In:       os.Stdin,
		Out:      os.Stdout,
		Err:      os.Stderr,
		Logger:   logging.NewNop(),
		Deadline: ContextDeadline{},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run resolves args and executes the selected surface: help, discovery,
// resource fetch, prompt render or tool dispatch. All outcomes, including
// failures, are rendered as JSON on the primary output; the returned error
// reports broken IO only.
func (r *Runner) Run(ctx context.Context, args []string) error {
	// 1. Human help: no arguments, or --help as the sole argument.
	if len(args) == 0 || (len(args) == 1 && args[0] == "--help") {
		return r.printHelp()
	}

	// 2. Discovery flags win over tool dispatch wherever they appear.
	switch {
	case slices.Contains(args, "--discover"):
		return r.printIndented(r.Registry.Manifest(r.Name, r.Version))
	case slices.Contains(args, "--tools"):
		return r.printToolList()
	case slices.Contains(args, "--resources"):
		return r.printResourceList()
	case slices.Contains(args, "--prompts"):
		return r.printPromptList()
	}

	// 3. Resource fetch. A missing URI argument is silently ignored.
	if i := slices.Index(args, "--resource"); i >= 0 {
		if i+1 < len(args) {
			return r.fetchResource(ctx, args[i+1])
		}
		return nil
	}

	// 4. Prompt render needs both a name and a JSON argument object.
	if i := slices.Index(args, "--prompt"); i >= 0 {
		if i+2 < len(args) {
			return r.renderPrompt(ctx, args[i+1], args[i+2])
		}
		return nil
	}

	// 5. Tool dispatch, with single-tool shorthand: when only one tool is
	// registered, its name may be omitted entirely.
	cmd := args[0]
	toolArgs := args[1:]

	tool, ok := r.Registry.Tool(cmd)
	if !ok {
		tools := r.Registry.Tools()
		if len(tools) == 1 {
			tool = tools[0]
			toolArgs = args
		} else {
			return r.printResponse(domain.NewErrorf(domain.CodeNotFound, "Unknown command: %s", cmd).Response())
		}
	}

	r.Logger.Debug("dispatching tool", "tool", tool.Name)
	return r.runTool(ctx, tool, toolArgs)
}

// fetchResource routes a URI through the resource table. The handler's
// result is printed raw, not wrapped in an envelope.
func (r *Runner) fetchResource(ctx context.Context, uri string) error {
	res, params, ok := r.Registry.ResolveResource(uri)
	if !ok {
		return r.printResponse(domain.NewErrorf(domain.CodeNotFound, "No resource matches URI: %s", uri).Response())
	}

	result, err := safeCall(func() (any, error) { return res.Handler(ctx, params) })
	if err != nil {
		return r.printResponse(internalResponse(err))
	}
	return r.printCompact(result)
}

// renderPrompt renders a registered prompt with JSON arguments. The
// result is printed raw.
func (r *Runner) renderPrompt(ctx context.Context, name, jsonArgs string) error {
	p, ok := r.Registry.Prompt(name)
	if !ok {
		return r.printResponse(domain.NewErrorf(domain.CodeNotFound, "Unknown prompt: %s", name).Response())
	}

	var args map[string]any
	if err := json.Unmarshal([]byte(jsonArgs), &args); err != nil {
		return r.printResponse(internalResponse(err))
	}

	result, err := safeCall(func() (any, error) { return p.Handler(ctx, args) })
	if err != nil {
		return r.printResponse(internalResponse(err))
	}
	return r.printCompact(result)
}

// reader returns the process-wide line reader for the input channel. The
// session driver and stdin sampling share it so buffered bytes are never
// split between two readers.
func (r *Runner) reader() *protocol.LineReader {
	r.stdinOnce.Do(func() {
		r.stdin = protocol.NewLineReader(r.In)
	})
	return r.stdin
}

// printCompact writes v as a single JSON line on the primary output.
func (r *Runner) printCompact(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return r.printResponse(internalResponse(err))
	}
	_, err = fmt.Fprintln(r.Out, string(data))
	return err
}

// printIndented writes v as indented JSON for discovery surfaces.
func (r *Runner) printIndented(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(r.Out, string(data))
	return err
}

// printResponse writes a response envelope on the primary output.
func (r *Runner) printResponse(resp domain.Response) error {
	return r.printCompact(resp)
}

// internalResponse renders err as an envelope: structured errors keep
// their own code, anything else becomes non-recoverable INTERNAL.
func internalResponse(err error) domain.Response {
	if serr, ok := domain.AsError(err); ok {
		return serr.Response()
	}
	return domain.NewError(domain.CodeInternal, err.Error()).Response()
}

// safeCall invokes fn, converting panics into errors so a broken handler
// still produces a structured envelope.
func safeCall(fn func() (any, error)) (result any, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("%v", p)
		}
	}()
	return fn()
}
