package runner

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/graft/pkg/domain"
	"github.com/aretw0/graft/pkg/registry"
	"github.com/aretw0/graft/pkg/schema"
)

type sumInput struct {
	A int `json:"a"`
	B int `json:"b"`
}

func sumTool() *registry.Tool {
	return &registry.Tool{
		Name:    "sum",
		Summary: "Add two integers",
		Schema:  schema.Generate[sumInput](),
		Decode: func(raw map[string]any) (any, error) {
			var in sumInput
			if err := schema.Decode(raw, &in); err != nil {
				return nil, err
			}
			return &in, nil
		},
		Invoke: func(_ context.Context, in any) (any, error) {
			p := in.(*sumInput)
			return map[string]any{"sum": p.A + p.B}, nil
		},
	}
}

func TestParseFlags(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want map[string]any
	}{
		{
			name: "string value",
			args: []string{"--city", "Lisbon"},
			want: map[string]any{"city": "Lisbon"},
		},
		{
			name: "numbers and booleans coerce",
			args: []string{"--count", "3", "--ratio", "0.5", "--force", "true"},
			want: map[string]any{"count": float64(3), "ratio": 0.5, "force": true},
		},
		{
			name: "negative number",
			args: []string{"--delta", "-5"},
			want: map[string]any{"delta": float64(-5)},
		},
		{
			name: "trailing flag without value is true",
			args: []string{"--verbose"},
			want: map[string]any{"verbose": true},
		},
		{
			name: "flag before another flag is true",
			args: []string{"--verbose", "--city", "Porto"},
			want: map[string]any{"verbose": true, "city": "Porto"},
		},
		{
			name: "dashes map to underscores",
			args: []string{"--dry-run", "--log-level", "debug"},
			want: map[string]any{"dry_run": true, "log_level": "debug"},
		},
		{
			name: "control flags never become parameters",
			args: []string{"--stream", "--session", "--manifest", "--sample-via", "stdin", "--city", "Faro"},
			want: map[string]any{"city": "Faro"},
		},
		{
			name: "JSON values keep their structure",
			args: []string{"--tags", `["a","b"]`, "--opts", `{"deep":1}`},
			want: map[string]any{"tags": []any{"a", "b"}, "opts": map[string]any{"deep": float64(1)}},
		},
		{
			name: "last occurrence wins",
			args: []string{"--city", "Lisbon", "--city", "Porto"},
			want: map[string]any{"city": "Porto"},
		},
		{
			name: "bare tokens are skipped",
			args: []string{"hello", "--city", "Faro", "stray"},
			want: map[string]any{"city": "Faro"},
		},
		{
			name: "no flags",
			args: []string{"hello"},
			want: map[string]any{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, parseFlags(tt.args))
		})
	}
}

func TestFirstJSONToken(t *testing.T) {
	assert.Equal(t, `{"a":1}`, firstJSONToken([]string{"--x", "1", `{"a":1}`, `{"b":2}`}))
	assert.Equal(t, "", firstJSONToken([]string{"--x", "1"}))
	assert.Equal(t, "", firstJSONToken(nil))
}

func TestBuildInput_JSONBeatsFlags(t *testing.T) {
	in, derr := buildInput(sumTool(), []string{"--a", "9"}, `{"a":5,"b":3}`)
	require.Nil(t, derr)
	assert.Equal(t, &sumInput{A: 5, B: 3}, in)
}

func TestBuildInput_Flags(t *testing.T) {
	in, derr := buildInput(sumTool(), []string{"--a", "5", "--b", "3"}, "")
	require.Nil(t, derr)
	assert.Equal(t, &sumInput{A: 5, B: 3}, in)
}

func TestBuildInput_InvalidJSON(t *testing.T) {
	_, derr := buildInput(sumTool(), nil, "{not json")
	require.NotNil(t, derr)
	assert.Equal(t, domain.CodeInvalidInput, derr.Code)
	assert.Contains(t, derr.Message, "Invalid JSON:")
	assert.True(t, derr.Recoverable)
}

func TestBuildInput_SchemaViolation(t *testing.T) {
	_, derr := buildInput(sumTool(), nil, `{"a":"nope","b":3}`)
	require.NotNil(t, derr)
	assert.Equal(t, domain.CodeInvalidInput, derr.Code)
	assert.Contains(t, derr.Message, "Invalid type")
}

func TestBuildInput_MissingRequired(t *testing.T) {
	_, derr := buildInput(sumTool(), nil, `{"a":5}`)
	require.NotNil(t, derr)
	assert.Equal(t, domain.CodeInvalidInput, derr.Code)
	assert.Contains(t, derr.Message, "b")
}

func TestBuildInput_RawToolKeepsMap(t *testing.T) {
	raw := &registry.Tool{Name: "echo"}
	in, derr := buildInput(raw, []string{"--msg", "hi"}, "")
	require.Nil(t, derr)
	assert.Equal(t, map[string]any{"msg": "hi"}, in)
}
