package protocol

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"sync"
)

var (
	// DefaultMaxLineSize is 1MB (enough for any reasonable JSON payload)
	DefaultMaxLineSize = 1 << 20
	// EnvMaxLineSize is the environment variable to override the default
	EnvMaxLineSize = "GRAFT_MAX_LINE_SIZE"
)

// ErrLineTooLarge is returned when an input line exceeds the allowed size.
var ErrLineTooLarge = errors.New("input line exceeds maximum allowed size")

type lineResult struct {
	text string
	err  error
}

// LineReader reads newline-delimited input from a background goroutine so
// that reads can be abandoned when the context is canceled. A blocked
// os.Stdin read cannot be interrupted directly; the pump decouples the
// blocking read from the caller.
type LineReader struct {
	r     *bufio.Reader
	ch    chan lineResult
	start sync.Once
}

// NewLineReader wraps r for context-aware line reading.
func NewLineReader(r io.Reader) *LineReader {
	return &LineReader{r: bufio.NewReader(r)}
}

func (lr *LineReader) pump() {
	limit := maxLineSize()
	for {
		text, err := lr.r.ReadString('\n')
		if len(text) > limit {
			lr.ch <- lineResult{err: fmt.Errorf("%w: size=%d limit=%d", ErrLineTooLarge, len(text), limit)}
			close(lr.ch)
			return
		}
		if text != "" {
			lr.ch <- lineResult{text: text}
		}
		if err != nil {
			// EOF and read failures both end the pump; callers treat a
			// closed channel as end of input.
			if err != io.EOF {
				lr.ch <- lineResult{err: err}
			}
			close(lr.ch)
			return
		}
	}
}

// ReadLine blocks until one line is available, the input is exhausted, or
// the context is canceled. It returns io.EOF when the underlying reader has
// no more data.
func (lr *LineReader) ReadLine(ctx context.Context) (string, error) {
	lr.start.Do(func() {
		lr.ch = make(chan lineResult)
		go lr.pump()
	})

	select {
	case res, ok := <-lr.ch:
		if !ok {
			return "", io.EOF
		}
		return res.text, res.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func maxLineSize() int {
	if val := os.Getenv(EnvMaxLineSize); val != "" {
		if size, err := strconv.Atoi(val); err == nil && size > 0 {
			return size
		}
	}
	return DefaultMaxLineSize
}
