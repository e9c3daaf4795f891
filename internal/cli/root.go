// Package cli implements the loomsched command-line interface.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "loomsched",
	Short: "Weaving-loom work-order scheduler",
	Long: `loomsched splits raw work orders into schedulable items, searches for a
low-conflict machine assignment with an evolutionary algorithm, and serves
the resulting schedules over HTTP.`,
}

// Execute runs the root command, exiting the process on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
