package config

import "errors"

// Configuration validation errors returned by Config.Validate.
// Callers match them with errors.Is.
var (
	// ErrNoSeeds is returned when no seed address was given.
	ErrNoSeeds = errors.New("no seed specified: provide at least one URL")

	// ErrInvalidSeed is returned when a seed lacks a scheme or host.
	ErrInvalidSeed = errors.New("invalid seed URL: scheme and host are required")

	// ErrInvalidMaxDepth is returned when the maximum depth is negative.
	ErrInvalidMaxDepth = errors.New("invalid max depth: must be non-negative")

	// ErrInvalidRateLimit is returned when the rate limit is negative.
	ErrInvalidRateLimit = errors.New("invalid rate limit: must be non-negative")

	// ErrInvalidWorkers is returned when the worker count is not positive.
	ErrInvalidWorkers = errors.New("invalid worker count: must be positive")

	// ErrInvalidTimeout is returned when the request timeout is not positive.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidMaxPages is returned when the page limit is negative.
	ErrInvalidMaxPages = errors.New("invalid max pages: must be non-negative")

	// ErrInvalidMaxBodySize is returned when the body size limit is not positive.
	ErrInvalidMaxBodySize = errors.New("invalid max body size: must be positive")

	// ErrInvalidFormat is returned for an unknown export format.
	ErrInvalidFormat = errors.New("invalid format: must be one of text, json, markdown, sqlite")

	// ErrInvalidRobotsMode is returned for an unknown robots matching mode.
	ErrInvalidRobotsMode = errors.New("invalid robots mode: must be literal or standard")

	// ErrInvalidRobotsCacheTTL is returned when the robots cache TTL is negative.
	ErrInvalidRobotsCacheTTL = errors.New("invalid robots cache TTL: must be non-negative")

	// ErrNoOutput is returned when the output path is empty.
	ErrNoOutput = errors.New("no output file specified")
)
