package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nao1215/webcrawl/internal/config"
	"github.com/nao1215/webcrawl/internal/database"
)

// NewRunsCmd creates the runs command.
// This command lists crawl runs stored in the SQLite database.
func NewRunsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List crawl runs stored in the database",
		Long: `Runs lists the crawls saved with 'webcrawl crawl -f sqlite', most recent first.

Examples:
  # List runs in the default database
  webcrawl runs

  # List runs in a specific database
  webcrawl runs --db crawl.db`,
		Args: cobra.NoArgs,
		RunE: runRunsCmd,
	}

	cmd.Flags().String("db", "",
		"SQLite database path (default: webcrawl.db in the XDG data directory)")

	return cmd
}

// runRunsCmd executes the runs command.
func runRunsCmd(cmd *cobra.Command, _ []string) error {
	db, err := openDatabase(cmd)
	if err != nil {
		return err
	}
	defer db.Close()

	runs, err := db.ListRuns(cmd.Context())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(runs) == 0 {
		fmt.Fprintln(out, "No crawl runs found in the database.")
		fmt.Fprintln(out, "\nUse 'webcrawl crawl -f sqlite <url>' to store a run.")
		return nil
	}

	fmt.Fprintf(out, "Crawl runs (%d):\n\n", len(runs))
	fmt.Fprintf(out, "  %-36s  %-20s  %-6s  %s\n", "ID", "Started", "Pages", "Seeds")
	fmt.Fprintln(out, "  "+strings.Repeat("-", 80))

	for _, run := range runs {
		fmt.Fprintf(out, "  %-36s  %-20s  %-6d  %s\n",
			run.RunID,
			run.StartedAt.Local().Format("2006-01-02 15:04:05"),
			run.Stats.Fetched,
			strings.Join(run.Seeds, " "),
		)
	}

	fmt.Fprintln(out, "\nUse 'webcrawl export <id>' to export a run.")

	return nil
}

// openDatabase opens the database named by the --db flag. The database must
// already exist.
func openDatabase(cmd *cobra.Command) (*database.PageDB, error) {
	dbPath, err := cmd.Flags().GetString("db")
	if err != nil {
		return nil, err
	}
	if dbPath == "" {
		dbPath = config.DefaultDatabasePath()
	}

	db, err := database.Open(dbPath, database.Options{})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return db, nil
}
