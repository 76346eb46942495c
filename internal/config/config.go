package config

import (
	"path/filepath"
	"slices"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
const (
	// AppName is the application name used for XDG directory paths.
	AppName = "webcrawl"

	// DefaultMaxDepth is the number of hops followed from each seed.
	DefaultMaxDepth = 3

	// DefaultRateLimit is the pause before every page fetch.
	DefaultRateLimit = 1 * time.Second

	// DefaultUserAgent is sent as the User-Agent header on every request,
	// including robots.txt fetches.
	DefaultUserAgent = "MyCrawler"

	// DefaultOutputFile is where the text export is written.
	DefaultOutputFile = "output.txt"

	// DefaultFormat is the export format.
	DefaultFormat = FormatText

	// DefaultWorkers keeps the crawl sequential and its order deterministic.
	DefaultWorkers = 1

	// DefaultTimeout bounds a single HTTP request.
	DefaultTimeout = 30 * time.Second

	// DefaultMaxBodySize limits how much of a response body is read.
	DefaultMaxBodySize = 10 * 1024 * 1024 // 10MB

	// DefaultRobotsMode is the robots.txt matching mode.
	DefaultRobotsMode = RobotsModeLiteral

	// DefaultRobotsCacheTTL is how long a fetched robots.txt is reused.
	DefaultRobotsCacheTTL = 30 * time.Minute

	// DatabaseFileName is the SQLite file name used when no output path is given.
	DatabaseFileName = "webcrawl.db"
)

// Export formats.
const (
	FormatText     = "text"
	FormatJSON     = "json"
	FormatMarkdown = "markdown"
	FormatSQLite   = "sqlite"
)

// Robots matching modes.
const (
	// RobotsModeLiteral resolves each "Disallow: <path>" against the
	// robots.txt address and denies addresses starting with the result.
	RobotsModeLiteral = "literal"

	// RobotsModeStandard evaluates user-agent groups with allow/disallow rules.
	RobotsModeStandard = "standard"
)

// Formats lists the supported export formats.
var Formats = []string{FormatText, FormatJSON, FormatMarkdown, FormatSQLite}

// RobotsModes lists the supported robots.txt matching modes.
var RobotsModes = []string{RobotsModeLiteral, RobotsModeStandard}

// Config holds all options for a crawl run. It is populated once from flags
// and the configuration file, validated, and treated as read-only afterwards.
type Config struct {
	// Seeds are the start addresses, crawled in order.
	Seeds []string

	// MaxDepth is the maximum number of hops from a seed.
	// Depth 0 means only the seeds themselves are fetched.
	MaxDepth int

	// RateLimit is the delay before every page fetch.
	RateLimit time.Duration

	// UserAgent identifies the crawler in request headers.
	UserAgent string

	// OutputFile is the export destination.
	OutputFile string

	// Format selects the exporter (text, json, markdown, sqlite).
	Format string

	// Workers is the number of concurrent traversal workers.
	Workers int

	// Timeout bounds each HTTP request.
	Timeout time.Duration

	// MaxPages stops expansion after this many stored pages. 0 means unlimited.
	MaxPages int

	// MaxBodySize is the maximum number of response bytes read per page.
	MaxBodySize int64

	// RobotsMode selects literal or standard robots.txt matching.
	RobotsMode string

	// RobotsCacheTTL is how long a robots.txt policy is reused per authority.
	// 0 refetches the policy for every address.
	RobotsCacheTTL time.Duration

	// ProxyAddress is an optional SOCKS5 proxy in "host:port" form.
	ProxyAddress string

	// ConfigFilePath is the configuration file that was loaded, if any.
	ConfigFilePath string

	// Sites holds per-authority request settings from the configuration file.
	Sites *File

	// Verbose enables debug logging.
	Verbose bool

	// NoBanner suppresses the start-up banner.
	NoBanner bool
}

// NewConfig creates a Config with default values.
func NewConfig() *Config {
	return &Config{
		MaxDepth:       DefaultMaxDepth,
		RateLimit:      DefaultRateLimit,
		UserAgent:      DefaultUserAgent,
		OutputFile:     DefaultOutputFile,
		Format:         DefaultFormat,
		Workers:        DefaultWorkers,
		Timeout:        DefaultTimeout,
		MaxBodySize:    DefaultMaxBodySize,
		RobotsMode:     DefaultRobotsMode,
		RobotsCacheTTL: DefaultRobotsCacheTTL,
		Sites:          NewFile(),
	}
}

// XDGDataDir returns the XDG data directory for webcrawl.
// On Linux: ~/.local/share/webcrawl
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for webcrawl.
// On Linux: ~/.config/webcrawl
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// DefaultDatabasePath returns the SQLite path used when the sqlite format is
// selected without an explicit output file.
func DefaultDatabasePath() string {
	return filepath.Join(XDGDataDir(), DatabaseFileName)
}

// Validate checks the configuration and returns the first problem found.
func (c *Config) Validate() error {
	if len(c.Seeds) == 0 {
		return ErrNoSeeds
	}

	if c.MaxDepth < 0 {
		return ErrInvalidMaxDepth
	}

	if c.RateLimit < 0 {
		return ErrInvalidRateLimit
	}

	if c.Workers <= 0 {
		return ErrInvalidWorkers
	}

	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}

	if c.MaxPages < 0 {
		return ErrInvalidMaxPages
	}

	if c.MaxBodySize <= 0 {
		return ErrInvalidMaxBodySize
	}

	if !slices.Contains(Formats, c.Format) {
		return ErrInvalidFormat
	}

	if !slices.Contains(RobotsModes, c.RobotsMode) {
		return ErrInvalidRobotsMode
	}

	if c.RobotsCacheTTL < 0 {
		return ErrInvalidRobotsCacheTTL
	}

	if c.OutputFile == "" {
		return ErrNoOutput
	}

	return nil
}
