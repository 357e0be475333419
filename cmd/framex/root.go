package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "framex",
	Short: "framex processes groups of spreadsheets with declarative transformation workflows",
	Long: `framex ingests groups of Excel files sharing a layout, applies an ordered
list of transformation actions defined in a workflow document, and exports
the results as Excel or CSV.`,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Log processing details to stderr")
}
