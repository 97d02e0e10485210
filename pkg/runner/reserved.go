package runner

import (
	"context"
	"encoding/json"
	"os"

	"github.com/aretw0/graft/pkg/domain"
	"github.com/aretw0/graft/pkg/schema"
)

// applyReserved interprets the reserved fields of a decoded input model:
// the PreValidate hook, then working_dir, timeout and dry_run, in that
// order. The returned release func must run on every exit path. A non-nil
// response ends the invocation before the tool body runs; inputs decoded
// to raw maps never reach this path.
func (r *Runner) applyReserved(ctx context.Context, in any) (context.Context, func(), *domain.Response) {
	release := func() {}

	if pv, ok := in.(schema.PreValidator); ok {
		if err := pv.PreValidate(); err != nil {
			resp := internalResponse(err)
			return ctx, release, &resp
		}
	}

	if h, ok := in.(schema.HasWorkingDir); ok {
		if wd := h.GetWorkingDir(); wd != "" {
			info, err := os.Stat(wd)
			if err != nil || !info.IsDir() {
				resp := domain.NewErrorf(domain.CodeInvalidPath, "Directory not found: %s", wd).Response()
				return ctx, release, &resp
			}
			// The working directory change persists for the rest of the
			// process; invocations are one process each.
			if err := os.Chdir(wd); err != nil {
				resp := domain.NewError(domain.CodeInvalidPath, err.Error()).Response()
				return ctx, release, &resp
			}
		}
	}

	if h, ok := in.(schema.HasTimeout); ok {
		if t := h.GetTimeout(); t != 0 {
			switch {
			case t < 0:
				resp := domain.NewError(domain.CodeInvalidInput, "timeout must be positive").Response()
				return ctx, release, &resp
			case t > MaxTimeoutSeconds:
				resp := domain.NewErrorf(domain.CodeInvalidInput, "timeout exceeds maximum (%d seconds)", MaxTimeoutSeconds).Response()
				return ctx, release, &resp
			default:
				ctx, release = r.Deadline.Start(ctx, t)
			}
		}
	}

	if h, ok := in.(schema.HasDryRun); ok && h.GetDryRun() {
		resp := domain.Success(map[string]any{
			"dry_run":       true,
			"would_execute": logSafeView(in),
		})
		return ctx, release, &resp
	}

	return ctx, release, nil
}

// logSafeView renders the parameter view a dry-run reports. Models mask
// secrets by implementing schema.LogSafer; everything else is shown
// through a plain JSON round trip.
func logSafeView(in any) map[string]any {
	if ls, ok := in.(schema.LogSafer); ok {
		return ls.LogSafe()
	}
	data, err := json.Marshal(in)
	if err != nil {
		return map[string]any{}
	}
	view := map[string]any{}
	if err := json.Unmarshal(data, &view); err != nil {
		return map[string]any{}
	}
	return view
}
