// Package crawler walks the link graph of one or more sites.
//
// # Architecture
//
// The Spider type is the traversal controller. It keeps pending work on an
// explicit LIFO Frontier so that a single worker visits pages depth first,
// in the order links appear on each page. Several workers share the same
// Frontier, VisitedSet and page store.
//
// Every task popped from the frontier is a candidate. It is rejected when it
// is deeper than the depth limit, already visited, disallowed by robots.txt,
// or claimed by another worker first. An accepted task is marked visited
// before it is fetched, so a failing address is attempted once.
//
// # Components
//
//   - Spider: traversal controller
//   - Frontier: shared stack of CrawlTasks with in-flight tracking
//   - VisitedSet: atomic check-and-mark of addresses
//   - Fetcher: GET with User-Agent and charset decoding
//   - ExtractLinks: anchor extraction with goquery
//   - RobotsChecker: cached robots.txt policy per authority
//   - Pacer: FixedDelay for one worker, DomainLimiter for several
//   - PathFilter: per-site ignore and follow globs
//
// # Scope
//
// Each seed's authority (host[:port]) is the scope of everything reached from
// it. Links to other authorities are extracted but never enqueued.
//
// # Usage
//
//	client, _ := transport.NewClient(transport.Options{Timeout: 30 * time.Second})
//	spider := crawler.NewSpider(
//		crawler.NewFetcher(client, "MyCrawler", 10<<20),
//		crawler.NewRobotsChecker(client, "MyCrawler"),
//		crawler.FixedDelay(time.Second),
//		store.NewMemory(),
//		crawler.WithMaxDepth(3),
//	)
//	stats, err := spider.Run(ctx, []string{"http://example.com/"})
package crawler
