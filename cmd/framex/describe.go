package main

import (
	"fmt"

	"github.com/linhng/framex"
	"github.com/spf13/cobra"
)

var describeCmd = &cobra.Command{
	Use:   "describe <file.xlsx> [more.xlsx ...]",
	Short: "Ingest spreadsheet files and print a summary of the combined table",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sheet, _ := cmd.Flags().GetString("sheet")
		headerRow, _ := cmd.Flags().GetInt("header-row")
		headerCol, _ := cmd.Flags().GetInt("header-col")
		preview, _ := cmd.Flags().GetInt("preview")

		sources := make([]framex.Source, len(args))
		for i, path := range args {
			sources[i] = framex.Source{Path: path}
		}

		ingestor := framex.NewIngestor()
		table, diags, err := ingestor.Combine(sources, sheet, headerRow, headerCol)
		printDiagnostics(cmd.ErrOrStderr(), diags)
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), framex.Describe(table, preview))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(describeCmd)

	describeCmd.Flags().String("sheet", "Sheet1", "Sheet name to read")
	describeCmd.Flags().Int("header-row", 1, "1-based row where headers start")
	describeCmd.Flags().Int("header-col", 1, "1-based column where data starts")
	describeCmd.Flags().Int("preview", 5, "Number of rows to preview")
}
