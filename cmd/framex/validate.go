package main

import (
	"fmt"
	"os"

	"github.com/linhng/framex"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate <workflow.json>",
	Short: "Statically check a workflow document",
	Long: `Checks a workflow for unknown action kinds, missing parameters, invalid
enum values, and formulas that do not compile. Column and group references
are only checked at run time, since they depend on the ingested tables.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("open workflow: %w", err)
		}
		defer f.Close()

		wf, err := framex.LoadWorkflow(f)
		if err != nil {
			return err
		}

		issues := framex.ValidateWorkflow(wf)
		errors := 0
		for _, issue := range issues {
			fmt.Fprintln(cmd.OutOrStdout(), issue)
			if issue.Severity == framex.SeverityError {
				errors++
			}
		}
		if errors > 0 {
			return fmt.Errorf("%d validation error(s)", errors)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %d actions OK\n", wf.WorkflowName, len(wf.Actions))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
