package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nao1215/webcrawl/internal/model"
)

// ErrRunNotFound is returned when a run ID is not in the database.
var ErrRunNotFound = errors.New("run not found")

// PageDB stores crawl runs and their pages in SQLite.
type PageDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures PageDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates a PageDB at dbPath.
// If CreateIfNotExists is true, the parent directory and file are created.
// If CreateIfNotExists is false and the file doesn't exist, an error is returned.
func Open(dbPath string, opts Options) (*PageDB, error) {
	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else if err := os.MkdirAll(filepath.Dir(dbPath), 0750); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	// mode=rw refuses to create a missing file, mode=rwc allows it.
	dsn := dbPath + "?mode=rw"
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	pdb := &PageDB{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := pdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return pdb, nil
}

// Path returns the database file path.
func (pdb *PageDB) Path() string {
	return pdb.dbPath
}

// Close closes the database connection.
func (pdb *PageDB) Close() error {
	return pdb.db.Close()
}

// createTables creates the database schema if it doesn't exist.
func (pdb *PageDB) createTables() error {
	schema := `
	-- Runs store one crawl invocation each
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		seeds TEXT NOT NULL,
		started_at TEXT NOT NULL,
		finished_at TEXT NOT NULL,
		stats TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at);

	-- Pages store the content of a run in insertion order (seq)
	CREATE TABLE IF NOT EXISTS pages (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL REFERENCES runs(id),
		seq INTEGER NOT NULL,
		url TEXT NOT NULL,
		authority TEXT NOT NULL,
		depth INTEGER NOT NULL,
		status_code INTEGER,
		content_type TEXT,
		title TEXT,
		content TEXT NOT NULL,
		truncated INTEGER NOT NULL DEFAULT 0,
		hash TEXT,
		fetched_at TEXT,
		UNIQUE(run_id, url)
	);

	CREATE INDEX IF NOT EXISTS idx_pages_run_seq ON pages(run_id, seq);
	CREATE INDEX IF NOT EXISTS idx_pages_hash ON pages(hash);
	`

	_, err := pdb.db.ExecContext(context.Background(), schema)
	return err
}

// SaveReport stores a finished run and all of its pages in one transaction.
func (pdb *PageDB) SaveReport(ctx context.Context, report *model.CrawlReport) (err error) {
	seedsJSON, err := json.Marshal(report.Seeds)
	if err != nil {
		return fmt.Errorf("failed to serialize seeds: %w", err)
	}
	statsJSON, err := json.Marshal(report.Stats)
	if err != nil {
		return fmt.Errorf("failed to serialize stats: %w", err)
	}

	tx, err := pdb.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	_, err = tx.ExecContext(ctx, `
	INSERT INTO runs (id, seeds, started_at, finished_at, stats)
	VALUES (?, ?, ?, ?, ?)
	`,
		report.RunID,
		string(seedsJSON),
		formatTimestamp(report.StartedAt),
		formatTimestamp(report.FinishedAt),
		string(statsJSON),
	)
	if err != nil {
		return fmt.Errorf("failed to save run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
	INSERT INTO pages (run_id, seq, url, authority, depth, status_code, content_type, title, content, truncated, hash, fetched_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare page insert: %w", err)
	}
	defer stmt.Close()

	for i, p := range report.Pages {
		_, err = stmt.ExecContext(ctx,
			report.RunID,
			i,
			p.URL,
			p.Authority,
			p.Depth,
			p.StatusCode,
			p.ContentType,
			p.Title,
			p.Content,
			p.Truncated,
			p.Hash,
			formatTimestamp(p.FetchedAt),
		)
		if err != nil {
			return fmt.Errorf("failed to save page %s: %w", p.URL, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit run: %w", err)
	}
	return nil
}

// Pages returns the pages of a run in the order they were stored.
func (pdb *PageDB) Pages(ctx context.Context, runID string) ([]*model.Page, error) {
	query := `
	SELECT url, authority, depth, status_code, content_type, title, content, truncated, hash, fetched_at
	FROM pages
	WHERE run_id = ?
	ORDER BY seq
	`

	rows, err := pdb.db.QueryContext(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query pages: %w", err)
	}
	defer rows.Close()

	pages := make([]*model.Page, 0)
	for rows.Next() {
		var p model.Page
		var fetchedAt string
		err := rows.Scan(
			&p.URL,
			&p.Authority,
			&p.Depth,
			&p.StatusCode,
			&p.ContentType,
			&p.Title,
			&p.Content,
			&p.Truncated,
			&p.Hash,
			&fetchedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan page: %w", err)
		}
		p.FetchedAt = parseTimestamp(fetchedAt)
		pages = append(pages, &p)
	}

	return pages, rows.Err()
}

// RunMetadata contains summary information about a stored run.
// This is used for listing runs without loading their pages.
type RunMetadata struct {
	// RunID is the unique identifier of the run.
	RunID string

	// Seeds are the start addresses of the run.
	Seeds []string

	// StartedAt is when the run began.
	StartedAt time.Time

	// FinishedAt is when the run ended.
	FinishedAt time.Time

	// Stats holds the traversal counters.
	Stats model.Stats
}

// ListRuns returns all stored runs, most recent first.
func (pdb *PageDB) ListRuns(ctx context.Context) ([]RunMetadata, error) {
	query := `
	SELECT id, seeds, started_at, finished_at, stats
	FROM runs
	ORDER BY started_at DESC
	`

	rows, err := pdb.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var results []RunMetadata
	for rows.Next() {
		meta, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, *meta)
	}

	return results, rows.Err()
}

// GetReport loads a complete run with its pages.
// It returns ErrRunNotFound for an unknown run ID.
func (pdb *PageDB) GetReport(ctx context.Context, runID string) (*model.CrawlReport, error) {
	query := `
	SELECT id, seeds, started_at, finished_at, stats
	FROM runs
	WHERE id = ?
	`

	meta, err := scanRun(pdb.db.QueryRowContext(ctx, query, runID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	if err != nil {
		return nil, err
	}

	pages, err := pdb.Pages(ctx, runID)
	if err != nil {
		return nil, err
	}

	return &model.CrawlReport{
		RunID:      meta.RunID,
		Seeds:      meta.Seeds,
		StartedAt:  meta.StartedAt,
		FinishedAt: meta.FinishedAt,
		Stats:      meta.Stats,
		Pages:      pages,
	}, nil
}

// rowScanner is implemented by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanRun reads one row of the runs table.
func scanRun(row rowScanner) (*RunMetadata, error) {
	var meta RunMetadata
	var seedsJSON, startedAt, finishedAt, statsJSON string

	if err := row.Scan(&meta.RunID, &seedsJSON, &startedAt, &finishedAt, &statsJSON); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan run: %w", err)
	}

	if err := json.Unmarshal([]byte(seedsJSON), &meta.Seeds); err != nil {
		return nil, fmt.Errorf("failed to parse seeds: %w", err)
	}
	if err := json.Unmarshal([]byte(statsJSON), &meta.Stats); err != nil {
		return nil, fmt.Errorf("failed to parse stats: %w", err)
	}
	meta.StartedAt = parseTimestamp(startedAt)
	meta.FinishedAt = parseTimestamp(finishedAt)

	return &meta, nil
}

// storedTimeFormat is RFC 3339 with a fixed-width fraction, so that stored
// timestamps sort as text.
const storedTimeFormat = "2006-01-02T15:04:05.000000000Z07:00"

// formatTimestamp stores times as sortable text in UTC.
func formatTimestamp(t time.Time) string {
	return t.UTC().Format(storedTimeFormat)
}

// timestampFormats contains the timestamp formats that SQLite may return.
// The order matters: more specific formats should come first.
var timestampFormats = []string{
	time.RFC3339Nano,          // Written by formatTimestamp
	"2006-01-02 15:04:05",     // SQLite default datetime format
	"2006-01-02T15:04:05",     // ISO 8601 without timezone
	"2006-01-02 15:04:05.999", // SQLite with milliseconds
}

// parseTimestamp attempts to parse a timestamp string using multiple formats.
// If parsing fails with all formats, returns zero time.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
