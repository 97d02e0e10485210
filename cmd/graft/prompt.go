package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// promptCmd represents the prompt command
var promptCmd = &cobra.Command{
	Use:   "prompt <executable> <name> [json]",
	Short: "Render a prompt template from an executable",
	Args:  cobra.RangeArgs(2, 3),
	Run: func(cmd *cobra.Command, args []string) {
		reg := loadRegistry(cmd, args[:1])

		promptArgs := map[string]any{}
		if len(args) == 3 {
			if err := json.Unmarshal([]byte(args[2]), &promptArgs); err != nil {
				fmt.Printf("Error parsing arguments: %v\n", err)
				os.Exit(1)
			}
		}

		v, err := reg.RenderPrompt(cmd.Context(), args[1], promptArgs)
		if err != nil {
			fmt.Printf("Error rendering prompt: %v\n", err)
			os.Exit(1)
		}
		printJSON(v)
	},
}

func init() {
	rootCmd.AddCommand(promptCmd)
}
