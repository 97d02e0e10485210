package runner

import (
	"fmt"

	"github.com/aretw0/graft/pkg/domain"
	"github.com/aretw0/graft/pkg/registry"
	"github.com/aretw0/graft/pkg/schema"
)

// printHelp writes the human command index: usage patterns plus one line
// per registered tool.
func (r *Runner) printHelp() error {
	fmt.Fprintf(r.Out, "%s v%s\n", r.Name, r.Version)
	fmt.Fprintln(r.Out)
	fmt.Fprintln(r.Out, "Usage:")
	fmt.Fprintf(r.Out, "  %s --discover              Show all tools, resources, prompts\n", r.Name)
	fmt.Fprintf(r.Out, "  %s <command> --manifest    Show command schema\n", r.Name)
	fmt.Fprintf(r.Out, "  %s <command> '{}'          Execute with JSON input\n", r.Name)
	fmt.Fprintf(r.Out, "  %s <command> --flag value  Execute with CLI flags\n", r.Name)
	fmt.Fprintln(r.Out)
	fmt.Fprintln(r.Out, "Commands:")
	for _, t := range r.Registry.Tools() {
		fmt.Fprintf(r.Out, "  %-20s %s\n", t.Name, t.Summary)
	}
	return nil
}

// printToolHelp writes one tool's parameter reference in declaration
// order. Required parameters are starred.
func (r *Runner) printToolHelp(t *registry.Tool) error {
	fmt.Fprintf(r.Out, "%s - %s\n", t.Name, t.Summary)
	fmt.Fprintln(r.Out)
	if t.Description != "" {
		fmt.Fprintln(r.Out, t.Description)
		fmt.Fprintln(r.Out)
	}

	// The schema came out of Generate; a parse failure would be a broken
	// model declaration, surfaced as an empty parameter list.
	props, _ := schema.Properties(t.Schema)
	if len(props) == 0 {
		return nil
	}

	fmt.Fprintln(r.Out, "Parameters:")
	for _, p := range props {
		req := " "
		if p.Required {
			req = "*"
		}
		suffix := ""
		if p.Default != nil {
			suffix = fmt.Sprintf(" (default: %v)", p.Default)
		}
		fmt.Fprintf(r.Out, "  %s --%-15s %-10s %s%s\n", req, p.Name, p.Type, p.Description, suffix)
	}
	return nil
}

// The single-category listings mirror the discovery manifest but carry
// only their own section, still indented for human reading.

func (r *Runner) printToolList() error {
	type entry struct {
		Name    string `json:"name"`
		Summary string `json:"summary"`
	}
	tools := []entry{}
	for _, t := range r.Registry.Tools() {
		tools = append(tools, entry{Name: t.Name, Summary: t.Summary})
	}
	return r.printIndented(map[string]any{"tools": tools})
}

func (r *Runner) printResourceList() error {
	resources := []domain.ResourceManifest{}
	for _, res := range r.Registry.Resources() {
		resources = append(resources, res.Manifest())
	}
	return r.printIndented(map[string]any{"resources": resources})
}

func (r *Runner) printPromptList() error {
	prompts := []domain.PromptManifest{}
	for _, p := range r.Registry.Prompts() {
		prompts = append(prompts, p.Manifest())
	}
	return r.printIndented(map[string]any{"prompts": prompts})
}
