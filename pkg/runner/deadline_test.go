package runner

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContextDeadline(t *testing.T) {
	t.Parallel()

	ctx, release := ContextDeadline{}.Start(context.Background(), 2)
	defer release()

	deadline, ok := ctx.Deadline()
	require.True(t, ok)
	remaining := time.Until(deadline)
	assert.Greater(t, remaining, time.Second)
	assert.LessOrEqual(t, remaining, 2*time.Second)

	release()
	select {
	case <-ctx.Done():
	case <-time.After(time.Second):
		t.Fatal("release must cancel the context")
	}
}

func TestWatchdogDeadline_Fires(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	exited := make(chan int, 1)
	w := WatchdogDeadline{Output: &buf, Exit: func(code int) { exited <- code }}

	ctx, release := w.Start(context.Background(), 1)
	defer release()

	// The invocation context is left untouched; only the timer aborts.
	_, hasDeadline := ctx.Deadline()
	assert.False(t, hasDeadline)

	select {
	case code := <-exited:
		assert.Equal(t, 1, code)
	case <-time.After(3 * time.Second):
		t.Fatal("watchdog did not fire")
	}

	assert.Equal(t, `{"status":"error","error":{"code":"TIMEOUT","message":"Operation timed out","recoverable":false}}`+"\n", buf.String())
}

func TestWatchdogDeadline_ReleaseStopsTimer(t *testing.T) {
	t.Parallel()

	exited := make(chan int, 1)
	w := WatchdogDeadline{Output: &bytes.Buffer{}, Exit: func(code int) { exited <- code }}

	_, release := w.Start(context.Background(), 1)
	release()

	select {
	case <-exited:
		t.Fatal("released watchdog must not fire")
	case <-time.After(1500 * time.Millisecond):
	}
}
