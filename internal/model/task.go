package model

// CrawlTask is a single pending visit.
//
// Scope is the authority of the seed this task descends from. It is copied
// from the parent task when a child is created and never recomputed, so a
// redirecting or cross-linked page cannot widen the crawl.
type CrawlTask struct {
	// URL is the absolute address to visit.
	URL string

	// Depth is the number of hops from the seed (the seed itself is 0).
	Depth int

	// Scope is the authority every descendant must share.
	Scope string
}

// Child returns the task for a link discovered while visiting t.
func (t CrawlTask) Child(url string) CrawlTask {
	return CrawlTask{URL: url, Depth: t.Depth + 1, Scope: t.Scope}
}
