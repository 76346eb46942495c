package main

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/nao1215/webcrawl/internal/config"
)

// NewExportCmd creates the export command.
// This command writes a stored run in one of the file formats.
func NewExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export RUN_ID",
		Short: "Export a crawl run stored in the database",
		Long: `Export reads a run saved with 'webcrawl crawl -f sqlite' and writes it
as text, JSON or Markdown. Use 'webcrawl runs' to see the stored run IDs.

Examples:
  # Export a run in the original text format
  webcrawl export 0f8c3a4e-5b1d-4c6e-9a2f-7d3b1e6c8a90

  # Export a run as Markdown
  webcrawl export -f markdown -o report.md 0f8c3a4e-5b1d-4c6e-9a2f-7d3b1e6c8a90`,
		Args: cobra.ExactArgs(1),
		RunE: runExportCmd,
	}

	cmd.Flags().String("db", "",
		"SQLite database path (default: webcrawl.db in the XDG data directory)")
	cmd.Flags().StringP("format", "f", config.DefaultFormat,
		"Output format: text, json or markdown")
	cmd.Flags().StringP("output", "o", config.DefaultOutputFile,
		"Output file path")

	return cmd
}

// runExportCmd executes the export command.
func runExportCmd(cmd *cobra.Command, args []string) error {
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return err
	}
	if format == config.FormatSQLite || !slices.Contains(config.Formats, format) {
		return fmt.Errorf("%w: %s", config.ErrInvalidFormat, format)
	}

	output, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}

	db, err := openDatabase(cmd)
	if err != nil {
		return err
	}
	defer db.Close()

	report, err := db.GetReport(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	if err := writeReportFile(output, format, report); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Exported %d pages of run %s to: %s\n", len(report.Pages), report.RunID, output)
	return nil
}
