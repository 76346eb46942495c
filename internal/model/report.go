package model

import (
	"time"

	"github.com/google/uuid"
)

// Stats describes what the traversal did during a run.
type Stats struct {
	// Fetched is the number of pages fetched and stored.
	Fetched int `json:"fetched"`

	// Failed is the number of accepted addresses whose fetch failed.
	Failed int `json:"failed"`

	// Empty is the number of 2xx responses with an empty body. They are
	// not stored.
	Empty int `json:"empty"`

	// RobotsDenied is the number of candidates rejected by robots.txt.
	RobotsDenied int `json:"robots_denied"`

	// DepthExceeded is the number of candidates deeper than the limit.
	DepthExceeded int `json:"depth_exceeded"`

	// Duplicates is the number of candidates that were already visited.
	Duplicates int `json:"duplicates"`

	// OutOfScope is the number of extracted links that were not enqueued
	// because they belong to another authority or a filtered path.
	OutOfScope int `json:"out_of_scope"`
}

// CrawlReport is the result of a complete run.
type CrawlReport struct {
	// RunID uniquely identifies the run.
	RunID string `json:"run_id"`

	// Seeds are the start addresses in the order given.
	Seeds []string `json:"seeds"`

	// StartedAt is when the run began.
	StartedAt time.Time `json:"started_at"`

	// FinishedAt is when the run ended.
	FinishedAt time.Time `json:"finished_at"`

	// Stats holds the traversal counters.
	Stats Stats `json:"stats"`

	// Pages are the stored pages in insertion order.
	Pages []*Page `json:"pages"`
}

// NewCrawlReport creates a report for a run starting now.
func NewCrawlReport(seeds []string) *CrawlReport {
	return &CrawlReport{
		RunID:     uuid.NewString(),
		Seeds:     seeds,
		StartedAt: time.Now(),
		Pages:     make([]*Page, 0),
	}
}

// Finish records the end of the run with its counters and stored pages.
func (r *CrawlReport) Finish(stats Stats, pages []*Page) {
	r.FinishedAt = time.Now()
	r.Stats = stats
	r.Pages = pages
}

// Duration returns how long the run took.
func (r *CrawlReport) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// TotalBytes returns the total content size of all stored pages.
func (r *CrawlReport) TotalBytes() int {
	total := 0
	for _, p := range r.Pages {
		total += p.Size()
	}
	return total
}

// PagesByAuthority counts stored pages per authority.
func (r *CrawlReport) PagesByAuthority() map[string]int {
	counts := make(map[string]int)
	for _, p := range r.Pages {
		counts[p.Authority]++
	}
	return counts
}
