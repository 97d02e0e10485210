package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// callCmd represents the call command
var callCmd = &cobra.Command{
	Use:   "call <executable> <tool> [json]",
	Short: "Call a tool hosted by an executable",
	Long: `Invokes a tool with a JSON parameter object and prints the response
envelope. Tool failures are part of the envelope, not the exit code:
a call that reaches the tool always exits zero.`,
	Args: cobra.RangeArgs(2, 3),
	Run: func(cmd *cobra.Command, args []string) {
		reg := loadRegistry(cmd, args[:1])

		params := map[string]any{}
		if len(args) == 3 {
			if err := json.Unmarshal([]byte(args[2]), &params); err != nil {
				fmt.Printf("Error parsing params: %v\n", err)
				os.Exit(1)
			}
		}

		printJSON(reg.Call(cmd.Context(), args[1], params))
	},
}

func init() {
	rootCmd.AddCommand(callCmd)
}
