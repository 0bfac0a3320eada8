package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// versionCmd prints the xo version.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		_, err := fmt.Fprintf(cmd.OutOrStdout(), "xo %s\n", Version)
		return err
	},
}
