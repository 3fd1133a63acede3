package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/plotsearch/internal/version"
)

// NewVersionCmd prints build metadata.
func NewVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "plotsearch %s\n", version.String())
		},
	}
}
