package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/aretw0/graft/internal/presentation/tui"
	"github.com/aretw0/graft/pkg/adapters/process"
)

// discoverCmd represents the discover command
var discoverCmd = &cobra.Command{
	Use:   "discover <executable>...",
	Short: "List the tools, resources and prompts of executables",
	Long: `Runs discovery against each executable and aggregates the catalog.
On a terminal the catalog renders as markdown; when piped it prints as
a single JSON object ready for injection into an agent conversation.`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		reg := loadRegistry(cmd, args)

		if !term.IsTerminal(int(os.Stdout.Fd())) {
			printJSON(map[string]any{
				"tools":     reg.Discover(),
				"resources": reg.Resources(),
				"prompts":   reg.Prompts(),
			})
			return
		}

		tui.PrintBanner()
		render := tui.NewRenderer()
		out, err := render(catalogMarkdown(reg))
		if err != nil {
			fmt.Printf("Error rendering catalog: %v\n", err)
			os.Exit(1)
		}
		fmt.Print(out)
	},
}

func catalogMarkdown(reg *process.Registry) string {
	var b strings.Builder

	b.WriteString("# Tool Catalog\n\n")
	summaries := reg.Discover()
	for _, name := range reg.Tools() {
		fmt.Fprintf(&b, "- **%s** %s\n", name, summaries[name])
	}

	if resources := reg.Resources(); len(resources) > 0 {
		b.WriteString("\n## Resources\n\n")
		for _, r := range resources {
			fmt.Fprintf(&b, "- `%s` %s\n", r.URIPattern, r.Summary)
		}
	}

	if prompts := reg.Prompts(); len(prompts) > 0 {
		b.WriteString("\n## Prompts\n\n")
		for _, p := range prompts {
			fmt.Fprintf(&b, "- **%s** %s\n", p.Name, p.Summary)
		}
	}

	return b.String()
}

func init() {
	rootCmd.AddCommand(discoverCmd)
}
