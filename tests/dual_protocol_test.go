package tests

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/graft/pkg/domain"
)

// runFixture executes a compiled fixture and fails the test on a non-zero
// exit. Error envelopes must not turn into exit codes.
func runFixture(t *testing.T, name, stdin string, args ...string) string {
	t.Helper()

	cmd := exec.Command(fixtureBin[name], args...)
	if stdin != "" {
		cmd.Stdin = strings.NewReader(stdin)
	}

	var out, errb bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &errb

	require.NoError(t, cmd.Run(), "stderr: %s", errb.String())
	return out.String()
}

func TestDualProtocol_SameEnvelopeBothWays(t *testing.T) {
	flags := runFixture(t, "calc", "", "add", "--a", "2", "--b", "3")
	jsonArg := runFixture(t, "calc", "", "add", `{"a":2,"b":3}`)

	assert.Equal(t, `{"status":"success","result":{"sum":5}}`, strings.TrimSpace(flags))
	assert.Equal(t, flags, jsonArg)
}

func TestErrorEnvelope_StdoutAndExitZero(t *testing.T) {
	out := runFixture(t, "calc", "", "add", `{"a":"two","b":3}`)

	var resp domain.Response
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, domain.StatusError, resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, domain.CodeInvalidInput, resp.Error.Code)
	assert.True(t, resp.Error.Recoverable)
}

func TestDiscovery_FullManifest(t *testing.T) {
	out := runFixture(t, "calc", "", "--discover")

	var m domain.Manifest
	require.NoError(t, json.Unmarshal([]byte(out), &m))
	assert.Equal(t, "calc", m.Name)
	assert.Equal(t, "9.9.9", m.Version)

	byName := map[string]domain.ToolSummary{}
	for _, tool := range m.Tools {
		byName[tool.Name] = tool
	}
	require.Len(t, byName, 4)
	assert.True(t, byName["count"].Streaming)
	assert.True(t, byName["chat"].SessionMode)
	assert.False(t, byName["add"].Streaming)
}

func TestValidateOnly_NoExecution(t *testing.T) {
	out := runFixture(t, "calc", "", "add", "--validate", `{"a":1,"b":2}`)
	assert.Equal(t, `{"valid":true}`, strings.TrimSpace(out))

	out = runFixture(t, "calc", "", "add", "--validate", `{"a":"x","b":2}`)
	assert.Contains(t, out, `"valid":false`)
}

func TestStreaming_EventSequence(t *testing.T) {
	out := runFixture(t, "calc", "", "count", "--stream", `{"to":2}`)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, `{"message":"at 1","percent":50,"type":"progress"}`, lines[0])
	assert.Equal(t, `{"message":"at 2","percent":100,"type":"progress"}`, lines[1])
	assert.Equal(t, `{"result":{"counted":2},"status":"success","type":"result"}`, lines[2])
}

func TestStreaming_RequiresFlag(t *testing.T) {
	out := runFixture(t, "calc", "", "count", `{"to":2}`)

	var resp domain.Response
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.NotNil(t, resp.Error)
	assert.Equal(t, "This tool requires --stream flag", resp.Error.Message)
	assert.Equal(t, "Add --stream to the command", resp.Error.Suggestion)
}

func TestSession_LockstepExchange(t *testing.T) {
	stdin := `{"text":"hi"}` + "\n" + `{"action":"quit"}` + "\n"
	out := runFixture(t, "calc", stdin, "chat", "--session")

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, `{"message":"ready","prompt":"> ","type":"session_start"}`, lines[0])
	assert.Equal(t, `{"text":"you said: hi","type":"echo"}`, lines[1])
	assert.Equal(t, `{"status":"success","type":"session_end"}`, lines[2])
	assert.Equal(t, `{"status":"success"}`, lines[3])
}

func TestSession_EOFQuits(t *testing.T) {
	out := runFixture(t, "calc", "\n", "chat", "--session")

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, `{"message":"ready","prompt":"> ","type":"session_start"}`, lines[0])
	assert.Equal(t, `{"status":"success","type":"session_end"}`, lines[1])
	assert.Equal(t, `{"status":"success"}`, lines[2])
}

func TestSampling_StdinRoundTrip(t *testing.T) {
	cmd := exec.Command(fixtureBin["calc"], "ask", "--sample-via", "stdin", `{"question":"meaning of life"}`)

	stdin, err := cmd.StdinPipe()
	require.NoError(t, err)
	stdout, err := cmd.StdoutPipe()
	require.NoError(t, err)
	require.NoError(t, cmd.Start())

	scanner := bufio.NewScanner(stdout)
	require.True(t, scanner.Scan(), "expected a sample request line")

	var req map[string]any
	require.NoError(t, json.Unmarshal(scanner.Bytes(), &req))
	assert.Equal(t, "sample_request", req["type"])
	assert.Equal(t, "meaning of life", req["prompt"])
	id, _ := req["id"].(string)
	require.Len(t, id, 8)

	reply := fmt.Sprintf(`{"type":"sample_response","id":%q,"content":"forty-two"}`+"\n", id)
	_, err = io.WriteString(stdin, reply)
	require.NoError(t, err)
	require.NoError(t, stdin.Close())

	require.True(t, scanner.Scan(), "expected the final envelope")
	assert.Equal(t, `{"status":"success","result":{"answer":"forty-two"}}`, scanner.Text())

	require.NoError(t, cmd.Wait())
}
