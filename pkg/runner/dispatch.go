package runner

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/aretw0/graft/pkg/domain"
	"github.com/aretw0/graft/pkg/protocol"
	"github.com/aretw0/graft/pkg/registry"
	"github.com/aretw0/graft/pkg/sampling"
)

// runTool executes one tool invocation end to end: per-tool flags, input
// assembly, reserved fields, then dispatch by declared mode.
func (r *Runner) runTool(ctx context.Context, t *registry.Tool, args []string) error {
	// Manifest and help short-circuit execution.
	if slices.Contains(args, "--manifest") {
		return r.printIndented(t.Manifest())
	}
	if slices.Contains(args, "--help") {
		return r.printToolHelp(t)
	}

	streamFlag := slices.Contains(args, "--stream")
	sessionFlag := slices.Contains(args, "--session")

	// Sampling rides on the invocation context so tool bodies reach it
	// without extra plumbing.
	if i := slices.Index(args, "--sample-via"); i >= 0 && i+1 < len(args) {
		ctx = sampling.WithSampler(ctx, sampling.New(sampling.Config{
			Via: args[i+1],
			In:  r.reader(),
			Out: r.Out,
		}))
	}

	jsonInput := firstJSONToken(args)

	// Validate-only. The argument after --validate is taken verbatim,
	// whatever it looks like.
	if i := slices.Index(args, "--validate"); i >= 0 {
		if i+1 < len(args) {
			jsonInput = args[i+1]
		}
		if jsonInput == "" {
			jsonInput = "{}"
		}
		return r.printCompact(validateOnly(t, jsonInput))
	}

	in, derr := buildInput(t, args, jsonInput)
	if derr != nil {
		return r.printResponse(derr.Response())
	}

	// Drivers rely on cancellation to unwind abandoned producers.
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	release := func() {}
	if t.Decode != nil {
		var early *domain.Response
		ctx, release, early = r.applyReserved(ctx, in)
		if early != nil {
			release()
			return r.printResponse(*early)
		}
	}
	defer release()

	switch {
	case t.Streaming:
		if !streamFlag {
			return r.printResponse(flagRequired("--stream"))
		}
		return r.runStream(ctx, t, in)
	case t.SessionMode:
		if !sessionFlag {
			return r.printResponse(flagRequired("--session"))
		}
		return r.runSession(ctx, t, in)
	default:
		return r.runDirect(ctx, t, in)
	}
}

func flagRequired(flag string) domain.Response {
	return domain.NewErrorf(domain.CodeInvalidInput, "This tool requires %s flag", flag).
		WithSuggestion(fmt.Sprintf("Add %s to the command", flag)).
		Response()
}

type outcome struct {
	result any
	err    error
}

// runDirect calls the tool body off the dispatch goroutine so a deadline
// can preempt it. The abandoned loser of the select sends into a buffered
// channel and never blocks.
func (r *Runner) runDirect(ctx context.Context, t *registry.Tool, in any) error {
	done := make(chan outcome, 1)
	go func() {
		defer func() {
			if p := recover(); p != nil {
				done <- outcome{err: fmt.Errorf("%v", p)}
			}
		}()
		result, err := t.Invoke(ctx, in)
		done <- outcome{result: result, err: err}
	}()

	select {
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return r.printResponse(timeoutResponse())
		}
		return r.printResponse(internalResponse(ctx.Err()))
	case o := <-done:
		if o.err != nil {
			return r.printResponse(internalResponse(o.err))
		}
		return r.renderResult(o.result)
	}
}

// renderResult maps a direct tool result onto the envelope protocol.
// Responses and envelope-shaped maps pass through untouched; other maps
// become the success payload; anything else is wrapped under "result".
func (r *Runner) renderResult(result any) error {
	switch v := result.(type) {
	case domain.Response:
		return r.printResponse(v)
	case *domain.Response:
		if v != nil {
			return r.printResponse(*v)
		}
	case map[string]any:
		if _, ok := v["status"]; ok {
			return r.printCompact(v)
		}
		return r.printResponse(domain.Success(v))
	}
	return r.printResponse(domain.Success(map[string]any{"result": result}))
}

// runStream drives the line-event protocol, then reconciles the shutdown
// cause. An expired deadline wins over whatever the producer reported.
func (r *Runner) runStream(ctx context.Context, t *registry.Tool, in any) error {
	_, err := protocol.RunStream(ctx, r.Out, func(ctx context.Context, s *protocol.Stream) error {
		return t.Stream(ctx, in, s)
	})
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return r.printResponse(timeoutResponse())
	}
	if err != nil {
		return r.printResponse(internalResponse(err))
	}
	return nil
}

// runSession drives the lockstep exchange over the shared line reader and
// prints the closing envelope the driver settles on.
func (r *Runner) runSession(ctx context.Context, t *registry.Tool, in any) error {
	final := protocol.RunSession(ctx, r.reader(), r.Out, func(ctx context.Context, s *protocol.Session) error {
		return t.Session(ctx, in, s)
	})
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return r.printResponse(timeoutResponse())
	}
	return r.printCompact(final)
}
