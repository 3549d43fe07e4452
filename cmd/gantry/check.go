package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/xraph/gantry/config"
)

var checkCmd = &cobra.Command{
	Use:          "check",
	Short:        "Validate a recipe file",
	Long:         "Validate the shape of every recipe in the file and report dependency cycles",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := config.Load(recipeFile)
		if err != nil {
			return fmt.Errorf("invalid recipe file: %w", err)
		}

		if _, err := f.Graph().TopologicalSort(); err != nil {
			return fmt.Errorf("dependency cycle: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "%s: %d services OK\n", recipeFile, len(f.Recipes))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
}
