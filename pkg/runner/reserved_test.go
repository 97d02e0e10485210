package runner_test

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/graft/pkg/domain"
	"github.com/aretw0/graft/pkg/registry"
	"github.com/aretw0/graft/pkg/schema"
)

// reservedOnlyInput accepts the reserved fields and nothing else.
type reservedOnlyInput struct {
	schema.Reserved
}

func decodeReservedOnly(raw map[string]any) (any, error) {
	var in reservedOnlyInput
	if err := schema.Decode(raw, &in); err != nil {
		return nil, err
	}
	return &in, nil
}

// deployInput exercises every dispatcher hook: reserved fields, the
// PreValidate gate and a redacted dry-run view.
type deployInput struct {
	schema.Reserved
	Target string `json:"target"`
	APIKey string `json:"api_key,omitempty"`
}

func (d *deployInput) PreValidate() error {
	if d.Target == "frozen" {
		return domain.NewError(domain.CodePrecondition, "Target is frozen for deploys")
	}
	return nil
}

func (d *deployInput) LogSafe() map[string]any {
	view := map[string]any{"target": d.Target}
	if d.APIKey != "" {
		view["api_key"] = "***"
	}
	return view
}

func deployRegistry(executed *int) *registry.Registry {
	reg := registry.NewRegistry()
	reg.RegisterTool(&registry.Tool{
		Name:    "deploy",
		Summary: "Pretend to deploy a target",
		Schema:  schema.Generate[deployInput](),
		Decode: func(raw map[string]any) (any, error) {
			var in deployInput
			if err := schema.Decode(raw, &in); err != nil {
				return nil, err
			}
			return &in, nil
		},
		Invoke: func(_ context.Context, in any) (any, error) {
			*executed++
			p := in.(*deployInput)
			wd, _ := os.Getwd()
			return map[string]any{"target": p.Target, "cwd": wd}, nil
		},
	})
	return reg
}

func TestRun_DryRunSkipsExecution(t *testing.T) {
	executed := 0
	out := runArgs(t, deployRegistry(&executed), "",
		"deploy", `{"target":"prod","api_key":"hunter2","dry_run":true}`)
	assert.Equal(t, `{"status":"success","result":{"dry_run":true,"would_execute":{"api_key":"***","target":"prod"}}}`+"\n", out)
	assert.Zero(t, executed)
}

func TestRun_DryRunDefaultView(t *testing.T) {
	executed := 0
	reg := registry.NewRegistry()
	reg.RegisterTool(&registry.Tool{
		Name:    "noop",
		Summary: "Do nothing",
		Schema:  schema.Generate[reservedOnlyInput](),
		Decode:  decodeReservedOnly,
		Invoke: func(_ context.Context, _ any) (any, error) {
			executed++
			return map[string]any{"ran": true}, nil
		},
	})

	out := runArgs(t, reg, "", "noop", `{"dry_run":true}`)
	assert.Equal(t, `{"status":"success","result":{"dry_run":true,"would_execute":{"dry_run":true}}}`+"\n", out)
	assert.Zero(t, executed)
}

func TestRun_WorkingDirChanges(t *testing.T) {
	orig, err := os.Getwd()
	require.NoError(t, err)
	t.Cleanup(func() { _ = os.Chdir(orig) })

	dir := t.TempDir()
	executed := 0
	out := runArgs(t, deployRegistry(&executed), "",
		"deploy", fmt.Sprintf(`{"target":"prod","working_dir":%q}`, dir))

	var resp domain.Response
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	result, ok := resp.Result.(map[string]any)
	require.True(t, ok)

	got, err := filepath.EvalSymlinks(result["cwd"].(string))
	require.NoError(t, err)
	want, err := filepath.EvalSymlinks(dir)
	require.NoError(t, err)
	assert.Equal(t, want, got)
	assert.Equal(t, 1, executed)
}

func TestRun_WorkingDirNotFound(t *testing.T) {
	executed := 0
	out := runArgs(t, deployRegistry(&executed), "",
		"deploy", `{"target":"prod","working_dir":"/definitely/not/here"}`)
	assert.Equal(t, `{"status":"error","error":{"code":"INVALID_PATH","message":"Directory not found: /definitely/not/here","recoverable":true}}`+"\n", out)
	assert.Zero(t, executed)
}

func TestRun_TimeoutMustBePositive(t *testing.T) {
	executed := 0
	out := runArgs(t, deployRegistry(&executed), "", "deploy", `{"target":"prod","timeout":-5}`)
	assert.Equal(t, `{"status":"error","error":{"code":"INVALID_INPUT","message":"timeout must be positive","recoverable":true}}`+"\n", out)
	assert.Zero(t, executed)
}

func TestRun_TimeoutCapped(t *testing.T) {
	executed := 0
	out := runArgs(t, deployRegistry(&executed), "", "deploy", `{"target":"prod","timeout":601}`)
	assert.Equal(t, `{"status":"error","error":{"code":"INVALID_INPUT","message":"timeout exceeds maximum (600 seconds)","recoverable":true}}`+"\n", out)
	assert.Zero(t, executed)
}

func TestRun_TimeoutWithinBoundsExecutes(t *testing.T) {
	executed := 0
	out := runArgs(t, deployRegistry(&executed), "", "deploy", `{"target":"prod","timeout":60}`)

	var resp domain.Response
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, domain.StatusSuccess, resp.Status)
	assert.Equal(t, 1, executed)
}

func TestRun_PreValidateGate(t *testing.T) {
	executed := 0
	out := runArgs(t, deployRegistry(&executed), "", "deploy", `{"target":"frozen"}`)
	assert.Equal(t, `{"status":"error","error":{"code":"PRECONDITION","message":"Target is frozen for deploys","recoverable":true}}`+"\n", out)
	assert.Zero(t, executed)
}
