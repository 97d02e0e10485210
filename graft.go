package graft

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/aretw0/graft/pkg/registry"
	"github.com/aretw0/graft/pkg/runner"
)

// App is the high-level entry point for the graft library.
// It bundles a named registry of tools, resources and prompts with the
// dispatcher that exposes them on the command line.
type App struct {
	// Name is the program name shown in help and discovery output.
	Name string
	// Version is reported alongside Name. Defaults to the library release.
	Version string
	// Registry holds everything registered on this app. Exposed so hosts
	// can register entries the helper functions do not cover.
	Registry *registry.Registry

	logger   *slog.Logger
	in       io.Reader
	out      io.Writer
	errw     io.Writer
	deadline runner.Deadline
}

// Option defines a functional option for configuring the App.
type Option func(*App)

// WithVersion sets the version string reported by help and discovery.
func WithVersion(version string) Option {
	return func(a *App) {
		a.Version = version
	}
}

// WithLogger sets a custom structured logger for dispatch debugging.
func WithLogger(logger *slog.Logger) Option {
	return func(a *App) {
		a.logger = logger
	}
}

// WithIO redirects the three process channels. Nil arguments keep the
// standard streams.
func WithIO(in io.Reader, out, errw io.Writer) Option {
	return func(a *App) {
		a.in = in
		a.out = out
		a.errw = errw
	}
}

// WithDeadline overrides how the timeout reserved field is enforced.
func WithDeadline(d runner.Deadline) Option {
	return func(a *App) {
		a.deadline = d
	}
}

// New initializes a new App named name.
func New(name string, opts ...Option) *App {
	app := &App{
		Name:     name,
		Version:  strings.TrimSpace(Version),
		Registry: registry.NewRegistry(),
	}
	for _, opt := range opts {
		opt(app)
	}
	return app
}

// Run dispatches the process arguments. Every outcome, including tool
// failure, is rendered as JSON on the primary output; the returned error
// reports broken IO only.
func (a *App) Run() error {
	return a.RunContext(context.Background(), os.Args[1:])
}

// RunContext dispatches args under ctx. Cancelling ctx aborts direct,
// streaming and session execution alike.
func (a *App) RunContext(ctx context.Context, args []string) error {
	return a.runner().Run(ctx, args)
}

func (a *App) runner() *runner.Runner {
	opts := []runner.Option{runner.WithIO(a.in, a.out, a.errw)}
	if a.logger != nil {
		opts = append(opts, runner.WithLogger(a.logger))
	}
	if a.deadline != nil {
		opts = append(opts, runner.WithDeadline(a.deadline))
	}
	return runner.NewRunner(a.Name, a.Version, a.Registry, opts...)
}
