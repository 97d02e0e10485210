package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// resourceCmd represents the resource command
var resourceCmd = &cobra.Command{
	Use:   "resource <executable> <uri>",
	Short: "Fetch a resource by URI from an executable",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		reg := loadRegistry(cmd, args[:1])

		v, err := reg.FetchResource(cmd.Context(), args[1])
		if err != nil {
			fmt.Printf("Error fetching resource: %v\n", err)
			os.Exit(1)
		}
		printJSON(v)
	},
}

func init() {
	rootCmd.AddCommand(resourceCmd)
}
