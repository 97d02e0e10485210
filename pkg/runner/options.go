package runner

import (
	"io"
	"log/slog"
)

// Option defines a functional option for configuring the Runner.
type Option func(*Runner)

// WithIO configures the three process channels. Nil arguments keep the
// standard streams.
func WithIO(in io.Reader, out, errw io.Writer) Option {
	return func(r *Runner) {
		if in != nil {
			r.In = in
		}
		if out != nil {
			r.Out = out
		}
		if errw != nil {
			r.Err = errw
		}
	}
}

// WithLogger configures the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		r.Logger = logger
	}
}

// WithDeadline configures the timeout mechanism.
func WithDeadline(d Deadline) Option {
	return func(r *Runner) {
		r.Deadline = d
	}
}
