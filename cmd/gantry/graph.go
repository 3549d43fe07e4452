package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/xraph/gantry/config"
)

var graphCmd = &cobra.Command{
	Use:          "graph",
	Short:        "Render the dependency graph",
	Long:         "Render the recipe file's dependency graph in graphviz dot format",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := config.Load(recipeFile)
		if err != nil {
			return fmt.Errorf("invalid recipe file: %w", err)
		}

		fmt.Fprint(cmd.OutOrStdout(), f.Graph().DOT())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
}
