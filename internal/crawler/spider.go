package crawler

import (
	"context"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/nao1215/webcrawl/internal/config"
	"github.com/nao1215/webcrawl/internal/model"
)

// PageFetcher retrieves one address.
type PageFetcher interface {
	Fetch(ctx context.Context, addr string) (*model.Page, error)
}

// RobotsPolicy answers whether an address may be fetched.
type RobotsPolicy interface {
	Allowed(ctx context.Context, addr string) bool
}

// PageStore receives fetched pages.
type PageStore interface {
	Save(page *model.Page)
}

// Spider is the traversal controller. It walks the link graph from a set
// of seeds depth first, fetching every in-scope address at most once.
// A Spider is meant for a single Run.
type Spider struct {
	fetcher PageFetcher
	robots  RobotsPolicy
	pacer   Pacer
	store   PageStore

	// maxDepth is the deepest hop count that is still fetched.
	maxDepth int

	// workers is the number of goroutines processing the frontier.
	workers int

	// maxPages stops expansion after this many stored pages. 0 is unlimited.
	maxPages int

	// sites provides per-authority path filters. nil means no filtering.
	sites *config.File

	logger  *slog.Logger
	visited *VisitedSet

	// mu protects stats and accepted.
	mu       sync.Mutex
	stats    model.Stats
	accepted int
}

// SpiderOption configures a Spider.
type SpiderOption func(*Spider)

// WithMaxDepth sets the maximum crawl depth.
// 0 = only the seeds, 1 = seeds plus the pages they link to, etc.
func WithMaxDepth(depth int) SpiderOption {
	return func(s *Spider) {
		s.maxDepth = depth
	}
}

// WithWorkers sets the number of concurrent workers.
func WithWorkers(workers int) SpiderOption {
	return func(s *Spider) {
		if workers > 0 {
			s.workers = workers
		}
	}
}

// WithMaxPages limits the number of pages fetched in a run.
func WithMaxPages(maxPages int) SpiderOption {
	return func(s *Spider) {
		s.maxPages = maxPages
	}
}

// WithSites sets the per-authority ignore and follow patterns.
func WithSites(sites *config.File) SpiderOption {
	return func(s *Spider) {
		s.sites = sites
	}
}

// WithLogger sets the logger for crawl progress and failures.
func WithLogger(logger *slog.Logger) SpiderOption {
	return func(s *Spider) {
		s.logger = logger
	}
}

// NewSpider creates a Spider from its collaborators.
func NewSpider(fetcher PageFetcher, robots RobotsPolicy, pacer Pacer, store PageStore, opts ...SpiderOption) *Spider {
	s := &Spider{
		fetcher:  fetcher,
		robots:   robots,
		pacer:    pacer,
		store:    store,
		maxDepth: config.DefaultMaxDepth,
		workers:  config.DefaultWorkers,
		logger:   slog.Default(),
		visited:  NewVisitedSet(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Run crawls from seeds until the frontier is exhausted or ctx is done.
// Seeds are processed in the order given and each one scopes its own
// lineage to its authority. Fetch failures are logged and counted; the
// only error returned is the context's.
func (s *Spider) Run(ctx context.Context, seeds []string) (model.Stats, error) {
	frontier := NewFrontier()

	tasks := make([]model.CrawlTask, 0, len(seeds))
	for _, seed := range seeds {
		if !IsValidAddress(seed) {
			s.logger.Warn("skipping invalid seed", "url", seed)
			continue
		}
		tasks = append(tasks, model.CrawlTask{URL: seed, Depth: 0, Scope: Authority(seed)})
	}
	frontier.Push(tasks...)

	stop := context.AfterFunc(ctx, frontier.Close)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	for range s.workers {
		g.Go(func() error {
			for {
				task, ok := frontier.Pop()
				if !ok {
					return nil
				}
				s.visit(gctx, frontier, task)
				frontier.Done()
			}
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return s.Stats(), err
	}
	return s.Stats(), nil
}

// Stats returns a snapshot of the counters.
func (s *Spider) Stats() model.Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats
}

// visit processes one candidate task.
func (s *Spider) visit(ctx context.Context, frontier *Frontier, task model.CrawlTask) {
	if task.Depth > s.maxDepth {
		s.count(func(st *model.Stats) { st.DepthExceeded++ })
		return
	}
	if s.visited.Contains(task.URL) {
		s.count(func(st *model.Stats) { st.Duplicates++ })
		return
	}
	if s.limitReached() {
		s.logger.Debug("page limit reached", "url", task.URL, "max_pages", s.maxPages)
		return
	}
	if !s.robots.Allowed(ctx, task.URL) {
		s.logger.Info("disallowed by robots.txt", "url", task.URL)
		s.count(func(st *model.Stats) { st.RobotsDenied++ })
		return
	}
	if !s.visited.MarkIfAbsent(task.URL) {
		s.count(func(st *model.Stats) { st.Duplicates++ })
		return
	}
	if !s.reserve() {
		s.logger.Debug("page limit reached", "url", task.URL, "max_pages", s.maxPages)
		return
	}

	if err := s.pacer.Wait(ctx, task.Scope); err != nil {
		s.release()
		return
	}

	s.logger.Info("crawling", "url", task.URL, "depth", task.Depth)
	page, err := s.fetcher.Fetch(ctx, task.URL)
	if err != nil {
		s.release()
		if ctx.Err() != nil {
			return
		}
		s.logger.Warn("failed to fetch page", "url", task.URL, "error", err)
		s.count(func(st *model.Stats) { st.Failed++ })
		return
	}
	if page.Content == "" {
		s.release()
		s.logger.Info("empty response, nothing to store", "url", task.URL)
		s.count(func(st *model.Stats) { st.Empty++ })
		return
	}
	if page.Truncated {
		s.logger.Warn("response body truncated", "url", task.URL, "stored_bytes", page.Size())
	}
	page.Depth = task.Depth

	extraction, err := ExtractLinks(page.Content, task.URL)
	if err != nil {
		s.logger.Warn("failed to extract links", "url", task.URL, "error", err)
		extraction = &Extraction{}
	}
	page.Title = extraction.Title

	s.store.Save(page)
	s.count(func(st *model.Stats) { st.Fetched++ })

	filter := s.pathFilter(task.Scope)
	children := make([]model.CrawlTask, 0, len(extraction.Links))
	for _, link := range extraction.Links {
		if Authority(link) != task.Scope || !filter.Allows(link) {
			s.count(func(st *model.Stats) { st.OutOfScope++ })
			continue
		}
		children = append(children, task.Child(link))
	}
	frontier.Push(children...)
}

// pathFilter returns the filter configured for authority.
func (s *Spider) pathFilter(authority string) PathFilter {
	if s.sites == nil {
		return PathFilter{}
	}
	return NewPathFilter(s.sites.GetSiteConfig(authority))
}

// limitReached reports whether every page slot is taken.
func (s *Spider) limitReached() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.maxPages > 0 && s.accepted >= s.maxPages
}

// reserve claims one fetch slot under the page limit.
func (s *Spider) reserve() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.maxPages > 0 && s.accepted >= s.maxPages {
		return false
	}
	s.accepted++
	return true
}

// release returns a slot claimed by reserve whose fetch did not store a page.
func (s *Spider) release() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accepted--
}

func (s *Spider) count(update func(*model.Stats)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	update(&s.stats)
}
