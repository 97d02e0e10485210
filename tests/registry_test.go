package tests

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/graft/pkg/adapters/process"
	"github.com/aretw0/graft/pkg/domain"
)

// A binary built on the library must be loadable as an external tool
// source: the two halves of the protocol meet here.
func TestRegistry_LibraryAppAsSource(t *testing.T) {
	reg := process.New(process.WithPaths(fixtureBin["calc"]))
	reg.Load(context.Background())

	assert.Equal(t, []string{"add", "count", "chat", "ask"}, reg.Tools())

	resp := reg.Call(context.Background(), "add", map[string]any{"a": 4, "b": 5})
	assert.Equal(t, domain.StatusSuccess, resp.Status)
	assert.Equal(t, map[string]any{"sum": float64(9)}, resp.Result)
}

func TestRegistry_WedgedSourceSkipped(t *testing.T) {
	t.Parallel()

	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))

	reg := process.New(
		process.WithPaths(fixtureBin["slowpoke"], fixtureBin["calc"]),
		process.WithLogger(logger),
		process.WithDiscoverTimeout(300*time.Millisecond),
	)

	start := time.Now()
	reg.Load(context.Background())

	assert.Less(t, time.Since(start), 5*time.Second)
	assert.Contains(t, logs.String(), "failed to load tool source")
	assert.Equal(t, []string{"add", "count", "chat", "ask"}, reg.Tools())
}

func TestRegistry_ProtocolBreakingReply(t *testing.T) {
	reg := process.New(process.WithPaths(fixtureBin["noisy"]))
	reg.Load(context.Background())

	resp := reg.Call(context.Background(), "shout", nil)
	require.NotNil(t, resp.Error)
	assert.Equal(t, domain.CodeInternal, resp.Error.Code)
	assert.Equal(t, "Invalid response: LOUD NOISES not json", resp.Error.Message)
}

func TestCompanionCLI_Call(t *testing.T) {
	out := runFixture(t, "graft", "", "call", fixtureBin["calc"], "add", `{"a":2,"b":3}`)
	assert.Equal(t, `{"status":"success","result":{"sum":5}}`, strings.TrimSpace(out))
}

func TestCompanionCLI_DiscoverPiped(t *testing.T) {
	out := runFixture(t, "graft", "", "discover", fixtureBin["calc"])

	var catalog struct {
		Tools     map[string]string         `json:"tools"`
		Resources []domain.ResourceManifest `json:"resources"`
		Prompts   []domain.PromptManifest   `json:"prompts"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &catalog))
	assert.Equal(t, "Add two integers", catalog.Tools["add"])
	assert.Empty(t, catalog.Resources)
	assert.Empty(t, catalog.Prompts)
}

func TestCompanionCLI_Version(t *testing.T) {
	out := runFixture(t, "graft", "", "version")
	assert.Equal(t, "graft version 0.1.0", strings.TrimSpace(out))
}
