package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/aretw0/graft/internal/logging"
	"github.com/aretw0/graft/pkg/adapters/process"
)

var rootCmd = &cobra.Command{
	Use:   "graft",
	Short: "Graft drives tool executables built for humans and agents",
	Long: `Graft is the companion CLI for executables that speak the graft
command-line protocol. It discovers their tools, resources and prompts,
calls them directly, and can bridge a whole set of them onto MCP.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().Bool("verbose", false, "Enable debug logging on stderr")
}

func cliLogger(cmd *cobra.Command) *slog.Logger {
	level := slog.LevelInfo
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		level = slog.LevelDebug
	}
	return logging.New(level)
}

// loadRegistry discovers the executables named on the command line.
// Sources that fail discovery are reported on stderr and skipped.
func loadRegistry(cmd *cobra.Command, paths []string) *process.Registry {
	reg := process.New(
		process.WithPaths(paths...),
		process.WithLogger(cliLogger(cmd)),
	)
	reg.Load(cmd.Context())
	return reg
}

// printJSON writes v to stdout: indented on a terminal, compact when
// piped so agents get one parseable line.
func printJSON(v any) {
	var (
		data []byte
		err  error
	)
	if term.IsTerminal(int(os.Stdout.Fd())) {
		data, err = json.MarshalIndent(v, "", "  ")
	} else {
		data, err = json.Marshal(v)
	}
	if err != nil {
		fmt.Printf("Error encoding output: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(string(data))
}
