package protocol

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/aretw0/graft/pkg/domain"
)

// Session is the producer-side handle of a bidirectional session. The
// protocol is strict lockstep: every emitted event is answered by exactly
// one line of JSON input from the caller, except the terminal session_end.
type Session struct {
	ctx    context.Context
	events chan<- domain.SessionEvent
	inputs <-chan map[string]any
}

// exchange emits one event and blocks for the caller's reply. ok is false
// when the session has been torn down; the producer should return promptly.
func (s *Session) exchange(ev domain.SessionEvent) (map[string]any, bool) {
	select {
	case s.events <- ev:
	case <-s.ctx.Done():
		return nil, false
	}
	select {
	case input := <-s.inputs:
		return input, true
	case <-s.ctx.Done():
		return nil, false
	}
}

// Start opens the session with a greeting and returns the first input.
func (s *Session) Start(message string) (map[string]any, bool) {
	return s.exchange(domain.SessionStart(message))
}

// Await asks the caller for input, displaying the given prompt.
func (s *Session) Await(prompt string) (map[string]any, bool) {
	return s.exchange(domain.Awaiting(prompt))
}

// Send emits an application-defined event and returns the caller's reply.
func (s *Session) Send(fields map[string]any) (map[string]any, bool) {
	return s.exchange(domain.Opaque(fields))
}

// End emits the terminal session_end event. No input follows it.
func (s *Session) End() {
	select {
	case s.events <- domain.SessionEndEvent():
	case <-s.ctx.Done():
	}
}

// SessionProducer is the body of a session tool.
type SessionProducer func(ctx context.Context, sess *Session) error

// RunSession drives a session tool against the given input and output
// channels. Events are written one JSON line at a time; after each event
// except session_end, one line is read from in, parsed as JSON and handed
// back to the producer. EOF and blank lines synthesize an implicit
// {"action": "quit"} so a closed input channel ends the session instead of
// hanging it. Malformed JSON input is fatal to the whole session.
//
// The returned envelope is {status: success} on any normal completion,
// explicit session_end or producer exhaustion alike, and an INTERNAL error
// envelope when the producer fails or input parsing throws.
//
// The reader is taken rather than a raw io.Reader because the process may
// multiplex other line traffic (stdin sampling) over the same channel; all
// of it must go through one buffered reader.
//
// The caller must cancel ctx when done so that an abandoned producer can
// unwind.
func RunSession(ctx context.Context, in *LineReader, out io.Writer, produce SessionProducer) domain.Response {
	events := make(chan domain.SessionEvent)
	inputs := make(chan map[string]any)
	errc := make(chan error, 1)

	go func() {
		defer close(events)
		defer func() {
			if r := recover(); r != nil {
				errc <- fmt.Errorf("%v", r)
			}
		}()
		errc <- produce(ctx, &Session{ctx: ctx, events: events, inputs: inputs})
	}()

	enc := json.NewEncoder(out)

	for {
		var ev domain.SessionEvent
		var ok bool
		select {
		case ev, ok = <-events:
		case <-ctx.Done():
			return sessionError(ctx.Err())
		}
		if !ok {
			if err := <-errc; err != nil {
				return sessionError(err)
			}
			return domain.Response{Status: domain.StatusSuccess}
		}

		if err := enc.Encode(ev); err != nil {
			return sessionError(err)
		}
		flush(out)

		if ev.Kind() == domain.EventSessionEnd {
			return domain.Response{Status: domain.StatusSuccess}
		}

		input, err := readSessionInput(ctx, in)
		if err != nil {
			return sessionError(err)
		}

		select {
		case inputs <- input:
		case <-ctx.Done():
			return sessionError(ctx.Err())
		}
	}
}

func readSessionInput(ctx context.Context, reader *LineReader) (map[string]any, error) {
	line, err := reader.ReadLine(ctx)
	if err == io.EOF {
		return map[string]any{"action": "quit"}, nil
	}
	if err != nil {
		return nil, err
	}

	line = strings.TrimSpace(line)
	if line == "" {
		return map[string]any{"action": "quit"}, nil
	}

	var input map[string]any
	if err := json.Unmarshal([]byte(line), &input); err != nil {
		return nil, fmt.Errorf("invalid session input: %w", err)
	}
	return input, nil
}

func sessionError(err error) domain.Response {
	return domain.NewError(domain.CodeInternal, err.Error()).Response()
}
