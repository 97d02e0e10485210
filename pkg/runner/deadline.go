package runner

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/aretw0/graft/pkg/domain"
)

// MaxTimeoutSeconds caps the timeout reserved field at ten minutes.
const MaxTimeoutSeconds = 600

// Deadline aborts an in-flight invocation from outside its call stack.
// Both implementations surface the same TIMEOUT envelope; they differ in
// which channel carries it and whether the process survives.
type Deadline interface {
	// Start installs a deadline over ctx. The returned release function
	// must be called on every exit path.
	Start(ctx context.Context, seconds int) (context.Context, func())
}

// ContextDeadline cancels the invocation context when the deadline
// expires; the dispatcher then renders the TIMEOUT envelope on the
// primary output. This is the default.
type ContextDeadline struct{}

func (ContextDeadline) Start(ctx context.Context, seconds int) (context.Context, func()) {
	dctx, cancel := context.WithTimeout(ctx, time.Duration(seconds)*time.Second)
	return dctx, cancel
}

// WatchdogDeadline emits the TIMEOUT envelope on the secondary output and
// force-exits the process. It mirrors environments without in-process
// preemption, where a background timer is the only abort mechanism; the
// invocation context is left untouched.
type WatchdogDeadline struct {
	// Output receives the envelope; defaults to stderr.
	Output io.Writer
	// Exit terminates the process; defaults to os.Exit.
	Exit func(int)
}

func (w WatchdogDeadline) Start(ctx context.Context, seconds int) (context.Context, func()) {
	out := w.Output
	if out == nil {
		out = os.Stderr
	}
	exit := w.Exit
	if exit == nil {
		exit = os.Exit
	}

	timer := time.AfterFunc(time.Duration(seconds)*time.Second, func() {
		data, _ := json.Marshal(timeoutResponse())
		fmt.Fprintln(out, string(data))
		exit(1)
	})
	return ctx, func() { timer.Stop() }
}

func timeoutResponse() domain.Response {
	return domain.NewError(domain.CodeTimeout, "Operation timed out").Response()
}
