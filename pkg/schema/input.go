package schema

// Capability interfaces for dispatcher-interpreted input fields. The
// dispatcher probes the decoded input model by interface satisfaction;
// zero values mean "unset" and are ignored, so declaring a field without
// populating it costs nothing.

// HasWorkingDir marks models whose working_dir field moves the process to
// that directory before the tool runs.
type HasWorkingDir interface {
	GetWorkingDir() string
}

// HasTimeout marks models whose timeout field installs an execution
// deadline in seconds.
type HasTimeout interface {
	GetTimeout() int
}

// HasDryRun marks models whose dry_run field skips execution and reports
// what would have run.
type HasDryRun interface {
	GetDryRun() bool
}

// PreValidator runs after decoding and before any reserved-field handling,
// for validation that needs I/O or cross-field rules. Returning a
// *domain.Error renders that envelope; any other error renders INTERNAL.
type PreValidator interface {
	PreValidate() error
}

// LogSafer customizes the redacted parameter view used by dry-run output
// and logging. Models without it are serialized as-is.
type LogSafer interface {
	LogSafe() map[string]any
}

// Reserved bundles the three reserved fields. Embed it in an input model
// to accept all of them:
//
//	type DeployInput struct {
//	    schema.Reserved
//	    Target string `json:"target"`
//	}
type Reserved struct {
	WorkingDir string `json:"working_dir,omitempty" jsonschema:"description=Directory to run in"`
	Timeout    int    `json:"timeout,omitempty" jsonschema:"description=Execution deadline in seconds"`
	DryRun     bool   `json:"dry_run,omitempty" jsonschema:"description=Report the call without executing"`
}

func (r Reserved) GetWorkingDir() string { return r.WorkingDir }
func (r Reserved) GetTimeout() int       { return r.Timeout }
func (r Reserved) GetDryRun() bool       { return r.DryRun }
