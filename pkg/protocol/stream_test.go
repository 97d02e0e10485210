package protocol

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/aretw0/graft/pkg/domain"
)

func jsonLines(t *testing.T, buf *bytes.Buffer) []string {
	t.Helper()
	out := strings.TrimSpace(buf.String())
	if out == "" {
		return nil
	}
	lines := strings.Split(out, "\n")
	for i, line := range lines {
		if !json.Valid([]byte(line)) {
			t.Fatalf("Line %d is not valid JSON: %q", i, line)
		}
	}
	return lines
}

func TestRunStream_OneLinePerEvent(t *testing.T) {
	var buf bytes.Buffer
	resp, err := RunStream(context.Background(), &buf, func(ctx context.Context, st *Stream) error {
		st.Progress("step 1", 10)
		st.Progress("step 2", 50)
		st.Progress("step 3", 90)
		st.Result(domain.Success(map[string]any{"done": true}))
		return nil
	})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	lines := jsonLines(t, &buf)
	if len(lines) != 4 {
		t.Errorf("Expected 4 JSON lines, got %d: %v", len(lines), lines)
	}

	want := `{"message":"step 1","percent":10,"type":"progress"}`
	if lines[0] != want {
		t.Errorf("Expected first line %s, got %s", want, lines[0])
	}

	if resp == nil {
		t.Fatal("Expected a final result, got nil")
	}
	if resp.Status != domain.StatusSuccess {
		t.Errorf("Expected success status, got %s", resp.Status)
	}
}

func TestRunStream_EventShapes(t *testing.T) {
	var buf bytes.Buffer
	_, err := RunStream(context.Background(), &buf, func(ctx context.Context, st *Stream) error {
		st.Progress("working")
		st.Log("warn", "careful")
		st.Artifact("report", "file:///tmp/report.txt")
		return nil
	})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	lines := jsonLines(t, &buf)
	expected := []string{
		`{"message":"working","type":"progress"}`,
		`{"level":"warn","message":"careful","type":"log"}`,
		`{"name":"report","type":"artifact","uri":"file:///tmp/report.txt"}`,
	}
	if len(lines) != len(expected) {
		t.Fatalf("Expected %d lines, got %d", len(expected), len(lines))
	}
	for i, want := range expected {
		if lines[i] != want {
			t.Errorf("Line %d: expected %s, got %s", i, want, lines[i])
		}
	}
}

func TestRunStream_LastResultWins(t *testing.T) {
	var buf bytes.Buffer
	resp, err := RunStream(context.Background(), &buf, func(ctx context.Context, st *Stream) error {
		st.Result(domain.Success(map[string]any{"attempt": 1}))
		st.Result(domain.Success(map[string]any{"attempt": 2}))
		return nil
	})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if resp == nil {
		t.Fatal("Expected a final result, got nil")
	}

	result, ok := resp.Result.(map[string]any)
	if !ok {
		t.Fatalf("Expected map result, got %T", resp.Result)
	}
	if result["attempt"] != 2 {
		t.Errorf("Expected last result to win, got %v", result["attempt"])
	}
}

func TestRunStream_NoResult(t *testing.T) {
	var buf bytes.Buffer
	resp, err := RunStream(context.Background(), &buf, func(ctx context.Context, st *Stream) error {
		st.Progress("only progress")
		return nil
	})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if resp != nil {
		t.Errorf("Expected nil result, got %+v", resp)
	}
}

func TestRunStream_ProducerErrorPropagates(t *testing.T) {
	var buf bytes.Buffer
	boom := errors.New("producer blew up")
	_, err := RunStream(context.Background(), &buf, func(ctx context.Context, st *Stream) error {
		st.Progress("before failure")
		return boom
	})
	if !errors.Is(err, boom) {
		t.Errorf("Expected producer error to propagate untranslated, got %v", err)
	}

	lines := jsonLines(t, &buf)
	if len(lines) != 1 {
		t.Errorf("Expected events before the failure to be emitted, got %d lines", len(lines))
	}
}

func TestRunStream_ProducerPanicRecovered(t *testing.T) {
	var buf bytes.Buffer
	_, err := RunStream(context.Background(), &buf, func(ctx context.Context, st *Stream) error {
		panic("unexpected state")
	})
	if err == nil {
		t.Fatal("Expected an error from a panicking producer")
	}
	if !strings.Contains(err.Error(), "unexpected state") {
		t.Errorf("Expected panic message in error, got %v", err)
	}
}

func TestRunStream_ContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var buf bytes.Buffer
	resp, err := RunStream(ctx, &buf, func(ctx context.Context, st *Stream) error {
		<-ctx.Done()
		return ctx.Err()
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
	if resp != nil {
		t.Errorf("Expected no result, got %+v", resp)
	}
}

type flushCounter struct {
	bytes.Buffer
	flushes int
}

func (f *flushCounter) Flush() error {
	f.flushes++
	return nil
}

func TestRunStream_FlushesEachEvent(t *testing.T) {
	var out flushCounter
	_, err := RunStream(context.Background(), &out, func(ctx context.Context, st *Stream) error {
		st.Progress("one")
		st.Progress("two")
		return nil
	})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if out.flushes < 2 {
		t.Errorf("Expected a flush per event, got %d", out.flushes)
	}
}
