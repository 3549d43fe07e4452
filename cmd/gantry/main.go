package main

import (
	"os"

	"github.com/spf13/cobra"
)

// recipeFile is the shared --file flag value.
var recipeFile string

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "gantry",
	Short: "Inspect gantry recipe files",
	Long:  "A command line interface for validating and inspecting gantry service recipe files",
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&recipeFile, "file", "f", "services.yaml", "path to the recipe file")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
