package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/linhng/framex"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a workflow over groups of spreadsheet files",
	Long: `Loads a workflow document, ingests each group's files using its recorded
preset (sheet name, header row, header column), applies the workflow's
actions, and writes the processed tables next to the working directory.

Group files are passed as repeated --group flags:

  framex run --workflow wf.json \
    --group "Sales=jan.xlsx,feb.xlsx" \
    --group "Customers=customers.xlsx" \
    --format csv --out results`,
	RunE: func(cmd *cobra.Command, args []string) error {
		workflowPath, _ := cmd.Flags().GetString("workflow")
		groupSpecs, _ := cmd.Flags().GetStringArray("group")
		outDir, _ := cmd.Flags().GetString("out")
		format, _ := cmd.Flags().GetString("format")
		verbose, _ := cmd.Flags().GetBool("verbose")

		if format != "xlsx" && format != "csv" && format != "both" {
			return fmt.Errorf("--format must be xlsx, csv, or both, got %q", format)
		}

		f, err := os.Open(workflowPath)
		if err != nil {
			return fmt.Errorf("open workflow: %w", err)
		}
		defer f.Close()
		wf, err := framex.LoadWorkflow(f)
		if err != nil {
			return err
		}

		session := framex.NewSession(framex.WithLogger(newLogger(verbose)))
		session.LoadWorkflow(wf)

		for _, spec := range groupSpecs {
			name, files, err := parseGroupSpec(spec)
			if err != nil {
				return err
			}
			sheet, headerRow, headerCol := "Sheet1", 1, 1
			if p, ok := wf.GroupPresets[name]; ok {
				sheet, headerRow, headerCol = p.SheetName, p.HeaderRow, p.HeaderColumn
			}
			sources := make([]framex.Source, len(files))
			for i, path := range files {
				sources[i] = framex.Source{Path: path}
			}
			_, diags, err := session.CreateGroup(name, sources, sheet, headerRow, headerCol)
			printDiagnostics(cmd.ErrOrStderr(), diags)
			if err != nil {
				return err
			}
		}

		results, diags, err := session.ProcessAll(cmd.Context())
		printDiagnostics(cmd.ErrOrStderr(), diags)
		if err != nil {
			return err
		}

		if err := os.MkdirAll(outDir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
		for group, table := range results {
			if format == "xlsx" || format == "both" {
				if err := writeFile(filepath.Join(outDir, group+"_processed.xlsx"), func(w io.Writer) error {
					return framex.WriteExcel(w, table, "Processed_Data")
				}); err != nil {
					return err
				}
			}
			if format == "csv" || format == "both" {
				if err := writeFile(filepath.Join(outDir, group+"_processed.csv"), func(w io.Writer) error {
					return framex.WriteCSV(w, table)
				}); err != nil {
					return err
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d rows, %d columns\n", group, table.NumRows(), table.NumCols())
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().String("workflow", "", "Workflow document to run (JSON)")
	runCmd.Flags().StringArray("group", nil, `Group files as "Name=file1.xlsx,file2.xlsx" (repeatable)`)
	runCmd.Flags().String("out", ".", "Directory for exported results")
	runCmd.Flags().String("format", "both", "Export format: xlsx, csv, or both")
	_ = runCmd.MarkFlagRequired("workflow")
}

func parseGroupSpec(spec string) (string, []string, error) {
	name, list, ok := strings.Cut(spec, "=")
	if !ok || strings.TrimSpace(name) == "" {
		return "", nil, fmt.Errorf("invalid --group %q, want \"Name=file1.xlsx,file2.xlsx\"", spec)
	}
	var files []string
	for _, f := range strings.Split(list, ",") {
		f = strings.TrimSpace(f)
		if f != "" {
			files = append(files, f)
		}
	}
	if len(files) == 0 {
		return "", nil, fmt.Errorf("--group %q names no files", spec)
	}
	return strings.TrimSpace(name), files, nil
}

func printDiagnostics(w io.Writer, diags []framex.Diagnostic) {
	for _, d := range diags {
		fmt.Fprintln(w, d)
	}
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}

func newLogger(verbose bool) *slog.Logger {
	if !verbose {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
}
