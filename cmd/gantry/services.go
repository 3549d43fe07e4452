package main

import (
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/xraph/gantry/config"
)

var servicesCmd = &cobra.Command{
	Use:          "services",
	Short:        "List the services in a recipe file",
	Long:         "List every service in the recipe file with its class, arguments, properties, calls and dependencies",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := config.Load(recipeFile)
		if err != nil {
			return fmt.Errorf("invalid recipe file: %w", err)
		}

		g := f.Graph()

		t := table.NewWriter()
		t.SetOutputMirror(cmd.OutOrStdout())
		t.AppendHeader(table.Row{"ID", "Class", "Args", "Properties", "Calls", "Depends On"})

		for _, r := range f.Recipes {
			props := make([]string, len(r.Properties))
			for i, p := range r.Properties {
				props[i] = p.Name
			}

			calls := make([]string, len(r.Calls))
			for i, call := range r.Calls {
				calls[i] = call.Method
			}

			t.AppendRow(table.Row{
				r.ID,
				r.Class,
				len(r.Arguments),
				strings.Join(props, ", "),
				strings.Join(calls, ", "),
				strings.Join(g.Dependencies(r.ID), ", "),
			})
		}

		t.Render()
		return nil
	},
}

func init() {
	rootCmd.AddCommand(servicesCmd)
}
