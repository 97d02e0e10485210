package protocol

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/aretw0/graft/pkg/domain"
)

// Stream is the producer-side handle of a one-way event stream. Tools write
// progress, log, artifact and result events through it; the driver turns
// each one into a JSON line on the primary output.
type Stream struct {
	ctx    context.Context
	events chan<- domain.StreamEvent
}

// Emit sends one event to the driver. It returns the context error when the
// driver has stopped draining, so a long-running producer can bail out.
func (s *Stream) Emit(ev domain.StreamEvent) error {
	select {
	case s.events <- ev:
		return nil
	case <-s.ctx.Done():
		return s.ctx.Err()
	}
}

// Progress reports forward motion, optionally with a completion percentage.
func (s *Stream) Progress(message string, percent ...int) error {
	return s.Emit(domain.Progress(message, percent...))
}

// Log emits a log event at the given level.
func (s *Stream) Log(level, message string) error {
	return s.Emit(domain.Log(level, message))
}

// Artifact announces a produced artifact by name and URI.
func (s *Stream) Artifact(name, uri string) error {
	return s.Emit(domain.Artifact(name, uri))
}

// Result emits a terminal result envelope. Emitting more than one is
// allowed; the driver keeps the last.
func (s *Stream) Result(resp domain.Response) error {
	return s.Emit(domain.Result(resp))
}

// StreamProducer is the body of a streaming tool.
type StreamProducer func(ctx context.Context, st *Stream) error

// RunStream drives a streaming tool. Every event is serialized as one JSON
// line on out and flushed as soon as it is produced, so consumers reading
// line-by-line see progress in real time. It returns the envelope of the
// last result event (nil if the producer never emitted one) and the
// producer's error, untranslated.
//
// The caller must cancel ctx when done so that an abandoned producer blocked
// in Emit can unwind.
func RunStream(ctx context.Context, out io.Writer, produce StreamProducer) (*domain.Response, error) {
	events := make(chan domain.StreamEvent)
	errc := make(chan error, 1)

	go func() {
		defer close(events)
		defer func() {
			if r := recover(); r != nil {
				errc <- fmt.Errorf("%v", r)
			}
		}()
		errc <- produce(ctx, &Stream{ctx: ctx, events: events})
	}()

	enc := json.NewEncoder(out)
	var last *domain.Response
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return last, <-errc
			}
			if err := enc.Encode(ev); err != nil {
				return last, err
			}
			flush(out)
			if ev.Type == domain.EventResult {
				last = ev.Response
			}
		case <-ctx.Done():
			return last, ctx.Err()
		}
	}
}

func flush(w io.Writer) {
	if f, ok := w.(interface{ Flush() error }); ok {
		_ = f.Flush()
	}
}
