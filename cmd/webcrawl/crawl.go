package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/nao1215/webcrawl/internal/config"
	"github.com/nao1215/webcrawl/internal/crawler"
	"github.com/nao1215/webcrawl/internal/database"
	"github.com/nao1215/webcrawl/internal/export"
	"github.com/nao1215/webcrawl/internal/log"
	"github.com/nao1215/webcrawl/internal/model"
	"github.com/nao1215/webcrawl/internal/store"
	"github.com/nao1215/webcrawl/internal/transport"
)

// NewCrawlCmd creates the crawl command.
func NewCrawlCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "crawl URL...",
		Short: "Crawl web sites starting from seed URLs",
		Long: `Crawl fetches the seed URLs and every page reachable from them on the
same host[:port], up to the maximum depth.

Pages disallowed by robots.txt are skipped. A failing page is logged and
the crawl continues. Press Ctrl+C to stop early; pages fetched so far are
still exported.

Examples:
  # Crawl a site with the defaults (depth 3, 1 second between requests)
  webcrawl crawl https://example.com

  # Crawl two sites two levels deep without delay
  webcrawl crawl -d 2 -r 0 https://example.com https://example.org

  # Export as JSON with four workers
  webcrawl crawl -w 4 -f json -o pages.json https://example.com

  # Store the run in the SQLite database under the XDG data directory
  webcrawl crawl -f sqlite https://example.com

Configuration file (.webcrawl.yaml) example:
  maxDepth: 2
  sites:
    example.com:
      cookie: "session_id=abc123"
      ignorePatterns:
        - "/logout"
        - "*.pdf"`,
		Args: cobra.ArbitraryArgs,
		RunE: runCrawlCmd,
	}

	// Traversal flags
	cmd.Flags().IntP("max-depth", "d", config.DefaultMaxDepth,
		"Maximum number of hops from a seed (0 fetches only the seeds)")
	cmd.Flags().IntP("rate-limit", "r", int(config.DefaultRateLimit/time.Second),
		"Delay in seconds before every request")
	cmd.Flags().StringP("user-agent", "u", config.DefaultUserAgent,
		"User-Agent header sent with every request")
	cmd.Flags().IntP("workers", "w", config.DefaultWorkers,
		"Number of concurrent workers (more than 1 paces requests per host)")
	cmd.Flags().Int("max-pages", 0,
		"Stop after this many pages (0 for no limit)")

	// Request flags
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout,
		"Timeout for each request")
	cmd.Flags().Int64("max-body-size", config.DefaultMaxBodySize,
		"Maximum number of bytes read from a response body")
	cmd.Flags().String("proxy", "",
		"SOCKS5 proxy address (e.g., 127.0.0.1:9050)")

	// Robots flags
	cmd.Flags().String("robots-mode", config.DefaultRobotsMode,
		"robots.txt matching: literal (Disallow prefixes) or standard (user-agent groups)")
	cmd.Flags().Duration("robots-cache-ttl", config.DefaultRobotsCacheTTL,
		"How long a robots.txt is reused per host (0 fetches it for every page)")

	// Output flags
	cmd.Flags().StringP("output", "o", config.DefaultOutputFile,
		"Output file path (for sqlite, defaults to the XDG data directory)")
	cmd.Flags().StringP("format", "f", config.DefaultFormat,
		"Output format: text, json, markdown or sqlite")
	cmd.Flags().Bool("no-banner", false,
		"Do not print the banner")

	// Configuration file
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .webcrawl.yaml in current directory or XDG config directory)")

	return cmd
}

// runCrawlCmd executes the crawl command.
func runCrawlCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := newLogger(cmd, cfg.Verbose)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	out := cmd.OutOrStdout()
	if !cfg.NoBanner {
		printBanner(out)
	}

	report, err := runCrawl(ctx, cfg, logger)
	if report == nil || (err != nil && !errors.Is(err, context.Canceled)) {
		return err
	}
	if err != nil {
		logger.Warn("crawl interrupted, exporting pages fetched so far")
	}

	// Export even after an interrupt.
	if err := exportReport(context.WithoutCancel(ctx), cfg, report); err != nil {
		return err
	}

	fmt.Fprintf(out, "Crawling finished. Results saved to: %s\n", cfg.OutputFile)
	printSummary(out, report)

	return nil
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// newLogger returns the secure logger selected by --log-json.
func newLogger(cmd *cobra.Command, verbose bool) *slog.Logger {
	jsonLogs, err := cmd.Flags().GetBool("log-json")
	if err != nil {
		jsonLogs, _ = cmd.Root().PersistentFlags().GetBool("log-json")
	}
	if jsonLogs {
		return log.NewSecureJSONLogger(cmd.ErrOrStderr(), verbose)
	}
	return log.NewSecureLogger(cmd.ErrOrStderr(), verbose)
}

// buildConfig creates a Config from defaults, the configuration file and
// the command flags, in increasing order of precedence.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()
	cfg.Verbose = getVerboseFlag(cmd)

	var err error
	cfg.ConfigFilePath, err = cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	// An explicitly given file must exist; otherwise a missing file means
	// no file settings.
	explicitConfigPath := cfg.ConfigFilePath != ""
	configPath := config.FindConfigFile(cfg.ConfigFilePath)
	switch {
	case configPath != "":
		cfg.Sites, err = config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
		cfg.ConfigFilePath = configPath
		applyFile(cfg, cfg.Sites)
	case explicitConfigPath:
		return nil, fmt.Errorf("%w: %s", config.ErrConfigNotFound, cfg.ConfigFilePath)
	}

	if err := applyFlags(cmd, cfg); err != nil {
		return nil, err
	}

	for _, arg := range args {
		seed := crawler.NormalizeSeed(arg)
		if !crawler.IsValidAddress(seed) {
			return nil, fmt.Errorf("%w: %q", config.ErrInvalidSeed, arg)
		}
		cfg.Seeds = append(cfg.Seeds, seed)
	}

	return cfg, nil
}

// applyFile copies the scalar settings present in the configuration file.
func applyFile(cfg *config.Config, file *config.File) {
	if file.MaxDepth != nil {
		cfg.MaxDepth = *file.MaxDepth
	}
	if file.RateLimit != nil {
		cfg.RateLimit = time.Duration(*file.RateLimit) * time.Second
	}
	if file.UserAgent != "" {
		cfg.UserAgent = file.UserAgent
	}
	if file.Workers != nil {
		cfg.Workers = *file.Workers
	}
	if file.Timeout != nil {
		cfg.Timeout = *file.Timeout
	}
	if file.MaxPages != nil {
		cfg.MaxPages = *file.MaxPages
	}
	if file.MaxBodySize != nil {
		cfg.MaxBodySize = *file.MaxBodySize
	}
	if file.Proxy != "" {
		cfg.ProxyAddress = file.Proxy
	}
	if file.Robots.Mode != "" {
		cfg.RobotsMode = file.Robots.Mode
	}
	if file.Robots.CacheTTL != nil {
		cfg.RobotsCacheTTL = *file.Robots.CacheTTL
	}
}

// applyFlags copies the flags that were set on the command line.
func applyFlags(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()
	var err error

	if flags.Changed("max-depth") {
		if cfg.MaxDepth, err = flags.GetInt("max-depth"); err != nil {
			return err
		}
	}
	if flags.Changed("rate-limit") {
		seconds, err := flags.GetInt("rate-limit")
		if err != nil {
			return err
		}
		cfg.RateLimit = time.Duration(seconds) * time.Second
	}
	if flags.Changed("user-agent") {
		if cfg.UserAgent, err = flags.GetString("user-agent"); err != nil {
			return err
		}
	}
	if flags.Changed("workers") {
		if cfg.Workers, err = flags.GetInt("workers"); err != nil {
			return err
		}
	}
	if flags.Changed("max-pages") {
		if cfg.MaxPages, err = flags.GetInt("max-pages"); err != nil {
			return err
		}
	}
	if flags.Changed("timeout") {
		if cfg.Timeout, err = flags.GetDuration("timeout"); err != nil {
			return err
		}
	}
	if flags.Changed("max-body-size") {
		if cfg.MaxBodySize, err = flags.GetInt64("max-body-size"); err != nil {
			return err
		}
	}
	if flags.Changed("proxy") {
		if cfg.ProxyAddress, err = flags.GetString("proxy"); err != nil {
			return err
		}
	}
	if flags.Changed("robots-mode") {
		if cfg.RobotsMode, err = flags.GetString("robots-mode"); err != nil {
			return err
		}
	}
	if flags.Changed("robots-cache-ttl") {
		if cfg.RobotsCacheTTL, err = flags.GetDuration("robots-cache-ttl"); err != nil {
			return err
		}
	}

	if cfg.Format, err = flags.GetString("format"); err != nil {
		return err
	}
	if cfg.OutputFile, err = flags.GetString("output"); err != nil {
		return err
	}
	if cfg.Format == config.FormatSQLite && !flags.Changed("output") {
		cfg.OutputFile = config.DefaultDatabasePath()
	}
	if cfg.NoBanner, err = flags.GetBool("no-banner"); err != nil {
		return err
	}

	return nil
}

// runCrawl wires the crawler from cfg and crawls every seed.
// The returned report holds the pages fetched before any cancellation.
func runCrawl(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*model.CrawlReport, error) {
	if cfg.ProxyAddress != "" {
		if err := transport.CheckProxy(ctx, cfg.ProxyAddress); err != nil {
			return nil, fmt.Errorf("proxy check failed: %w (make sure a SOCKS5 proxy is running at %s)",
				err, cfg.ProxyAddress)
		}
		logger.Info("SOCKS5 proxy verified", "address", cfg.ProxyAddress)
	}

	client, err := transport.NewClient(transport.Options{
		Timeout:      cfg.Timeout,
		ProxyAddress: cfg.ProxyAddress,
		Headers:      siteHeaders(cfg.Sites),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP client: %w", err)
	}

	memory := store.NewMemory()
	robots := crawler.NewRobotsChecker(client, cfg.UserAgent,
		crawler.WithRobotsMode(cfg.RobotsMode),
		crawler.WithRobotsCacheTTL(cfg.RobotsCacheTTL),
		crawler.WithRobotsLogger(logger),
	)
	spider := crawler.NewSpider(
		crawler.NewFetcher(client, cfg.UserAgent, cfg.MaxBodySize),
		robots,
		crawler.NewPacer(cfg.RateLimit, cfg.Workers),
		memory,
		crawler.WithMaxDepth(cfg.MaxDepth),
		crawler.WithWorkers(cfg.Workers),
		crawler.WithMaxPages(cfg.MaxPages),
		crawler.WithSites(cfg.Sites),
		crawler.WithLogger(logger),
	)

	logger.Info("starting crawl",
		"seeds", cfg.Seeds,
		"maxDepth", cfg.MaxDepth,
		"workers", cfg.Workers,
		"rateLimit", cfg.RateLimit,
	)

	report := model.NewCrawlReport(cfg.Seeds)
	stats, runErr := spider.Run(ctx, cfg.Seeds)
	report.Finish(stats, memory.Pages())

	return report, runErr
}

// siteHeaders returns the per-authority headers and cookie from the
// configuration file.
func siteHeaders(sites *config.File) transport.HeaderFunc {
	if sites == nil {
		return nil
	}
	return func(authority string) (map[string]string, string) {
		site := sites.GetSiteConfig(authority)
		return site.Headers, site.Cookie
	}
}

// exportReport writes the report to the configured sink.
func exportReport(ctx context.Context, cfg *config.Config, report *model.CrawlReport) error {
	if cfg.Format == config.FormatSQLite {
		db, err := database.Open(cfg.OutputFile, database.DefaultOptions())
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()

		if err := db.SaveReport(ctx, report); err != nil {
			return fmt.Errorf("failed to save crawl report: %w", err)
		}
		return nil
	}

	return writeReportFile(cfg.OutputFile, cfg.Format, report)
}

// writeReportFile writes report in format to path, creating parent
// directories as needed.
func writeReportFile(path, format string, report *model.CrawlReport) (err error) {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	// Crawled content may include pages behind site cookies, so the file
	// is readable only by the owner.
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600) //nolint:gosec // User-provided output path is intentional
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("failed to close output file: %w", closeErr)
		}
	}()

	writer, err := export.NewWriter(format, f)
	if err != nil {
		return err
	}
	if _, err := writer.Write(report); err != nil {
		return fmt.Errorf("failed to write %s output: %w", format, err)
	}
	return nil
}

// printSummary prints one line of run statistics.
func printSummary(w io.Writer, report *model.CrawlReport) {
	p := message.NewPrinter(language.English)
	s := report.Stats
	p.Fprintf(w, "Stored %d pages (%d bytes) in %v; %d failed, %d disallowed by robots.txt, %d links out of scope.\n",
		len(report.Pages),
		report.TotalBytes(),
		report.Duration().Round(time.Millisecond),
		s.Failed,
		s.RobotsDenied,
		s.OutOfScope,
	)
}
