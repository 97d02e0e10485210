// Package sampling lets a running tool request an LLM completion from its
// caller and block until the answer arrives.
//
// The exchange is a single round trip: a sample_request object goes out,
// a sample_response with a matching correlation id comes back. Two
// transports exist, chosen when the dispatcher configures the sampler:
// stdin-correlated (request emitted on the primary output, responses read
// from the input channel) and an HTTP callback URL.
package sampling

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/aretw0/graft/pkg/domain"
	"github.com/aretw0/graft/pkg/protocol"
)

// DefaultMaxTokens applies when a request does not set a token budget.
const DefaultMaxTokens = 1000

// Config selects the transport and binds its channels.
type Config struct {
	// Via is "stdin" or an http(s) callback URL.
	Via string
	// In is the shared line reader for stdin-correlated responses. The
	// same reader must serve session input when both are active, so
	// buffered bytes are never lost between readers.
	In *protocol.LineReader
	// Out is the primary output channel for stdin-correlated requests.
	Out io.Writer
	// Client overrides the HTTP client for callback transports.
	Client *http.Client
}

// Sampler performs sample exchanges over one configured transport.
type Sampler struct {
	cfg Config
}

// New creates a sampler for the given transport configuration.
func New(cfg Config) *Sampler {
	return &Sampler{cfg: cfg}
}

type request struct {
	maxTokens     int
	system        string
	temperature   *float64
	stopSequences []string
}

// Option adjusts a single sample request.
type Option func(*request)

// WithMaxTokens caps the completion length.
func WithMaxTokens(n int) Option {
	return func(r *request) { r.maxTokens = n }
}

// WithSystem sets the system prompt.
func WithSystem(system string) Option {
	return func(r *request) { r.system = system }
}

// WithTemperature sets the sampling temperature. Zero is a valid value and
// is still sent on the wire.
func WithTemperature(t float64) Option {
	return func(r *request) { r.temperature = &t }
}

// WithStopSequences sets the stop sequences.
func WithStopSequences(seqs ...string) Option {
	return func(r *request) { r.stopSequences = seqs }
}

// Sample sends one completion request and blocks until the response
// arrives. It returns the response's content field.
func (s *Sampler) Sample(ctx context.Context, prompt string, opts ...Option) (string, error) {
	req := request{maxTokens: DefaultMaxTokens}
	for _, opt := range opts {
		opt(&req)
	}

	id := uuid.NewString()[:8]
	payload := map[string]any{
		"type":       "sample_request",
		"id":         id,
		"prompt":     prompt,
		"max_tokens": req.maxTokens,
	}
	if req.system != "" {
		payload["system"] = req.system
	}
	if req.temperature != nil {
		payload["temperature"] = *req.temperature
	}
	if len(req.stopSequences) > 0 {
		payload["stop_sequences"] = req.stopSequences
	}

	via := s.cfg.Via
	switch {
	case via == "stdin":
		return s.sampleStdin(ctx, payload, id)
	case strings.HasPrefix(via, "http"):
		return s.sampleHTTP(ctx, payload, via)
	default:
		return "", fmt.Errorf("unknown sample transport: %s", via)
	}
}

// sampleStdin emits the request as one JSON line on the primary output and
// scans input lines for the matching response. Non-JSON lines and
// non-matching messages are skipped so sampling can interleave with other
// line traffic on the same channel.
func (s *Sampler) sampleStdin(ctx context.Context, payload map[string]any, id string) (string, error) {
	enc := json.NewEncoder(s.cfg.Out)
	if err := enc.Encode(payload); err != nil {
		return "", err
	}
	if f, ok := s.cfg.Out.(interface{ Flush() error }); ok {
		_ = f.Flush()
	}

	for {
		line, err := s.cfg.In.ReadLine(ctx)
		if err == io.EOF {
			return "", domain.NewError(domain.CodeDependency, "stdin closed while waiting for sample response")
		}
		if err != nil {
			return "", err
		}

		var resp map[string]any
		if err := json.Unmarshal([]byte(strings.TrimSpace(line)), &resp); err != nil {
			continue
		}
		if resp["type"] != "sample_response" || resp["id"] != id {
			continue
		}

		content, _ := resp["content"].(string)
		return content, nil
	}
}

// sampleHTTP posts the request to the callback URL and returns the content
// field of the JSON response body.
func (s *Sampler) sampleHTTP(ctx context.Context, payload map[string]any, url string) (string, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	client := s.cfg.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(httpReq)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("sample callback returned status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	var parsed map[string]any
	if err := json.Unmarshal(data, &parsed); err != nil {
		return "", err
	}

	content, _ := parsed["content"].(string)
	return content, nil
}

type samplerKey struct{}

// WithSampler returns a context carrying s. The dispatcher installs the
// sampler before invoking a tool that asked for --sample-via.
func WithSampler(ctx context.Context, s *Sampler) context.Context {
	return context.WithValue(ctx, samplerKey{}, s)
}

// FromContext returns the sampler carried by ctx, if any.
func FromContext(ctx context.Context) (*Sampler, bool) {
	s, ok := ctx.Value(samplerKey{}).(*Sampler)
	return s, ok
}
