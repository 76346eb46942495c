package crawler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"strings"
	"testing"

	"github.com/nao1215/webcrawl/internal/config"
	"github.com/nao1215/webcrawl/internal/model"
	"github.com/nao1215/webcrawl/internal/store"
)

// newTestSpider wires a Spider to web with no delay.
func newTestSpider(web *fakeWeb, memory *store.Memory, opts ...SpiderOption) *Spider {
	client := web.client()
	opts = append([]SpiderOption{WithLogger(slog.New(slog.DiscardHandler))}, opts...)
	return NewSpider(
		NewFetcher(client, config.DefaultUserAgent, config.DefaultMaxBodySize),
		NewRobotsChecker(client, config.DefaultUserAgent),
		FixedDelay(0),
		memory,
		opts...,
	)
}

func storedURLs(memory *store.Memory) []string {
	urls := make([]string, 0, memory.Len())
	for _, p := range memory.Pages() {
		urls = append(urls, p.URL)
	}
	return urls
}

// TestSpiderDiamond tests that a page reachable by two paths is fetched once.
func TestSpiderDiamond(t *testing.T) {
	t.Parallel()

	for _, workers := range []int{1, 4} {
		t.Run(fmt.Sprintf("%d workers", workers), func(t *testing.T) {
			t.Parallel()

			web := newFakeWeb().
				page("http://example.test/", links("/b", "/c")).
				page("http://example.test/b", links("/d")).
				page("http://example.test/c", links("/d")).
				page("http://example.test/d", links("/"))
			memory := store.NewMemory()
			spider := newTestSpider(web, memory, WithWorkers(workers), WithMaxDepth(5))

			stats, err := spider.Run(context.Background(), []string{"http://example.test/"})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			for _, path := range []string{"/", "/b", "/c", "/d"} {
				if got := web.hitCount("http://example.test" + path); got != 1 {
					t.Errorf("expected %s fetched once, got %d", path, got)
				}
			}
			if memory.Len() != 4 {
				t.Errorf("expected 4 stored pages, got %d", memory.Len())
			}
			if stats.Fetched != 4 {
				t.Errorf("expected 4 fetched, got %d", stats.Fetched)
			}
			if stats.Duplicates < 2 {
				t.Errorf("expected at least 2 duplicate rejections, got %d", stats.Duplicates)
			}
		})
	}
}

// TestSpiderOrder tests depth-first order with a single worker.
func TestSpiderOrder(t *testing.T) {
	t.Parallel()

	web := newFakeWeb().
		page("http://example.test/", links("/b", "/c")).
		page("http://example.test/b", links("/d")).
		page("http://example.test/c", links()).
		page("http://example.test/d", links())
	memory := store.NewMemory()

	if _, err := newTestSpider(web, memory).Run(context.Background(), []string{"http://example.test/"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{
		"http://example.test/",
		"http://example.test/b",
		"http://example.test/d",
		"http://example.test/c",
	}
	if got := storedURLs(memory); !slices.Equal(got, want) {
		t.Errorf("expected order %v, got %v", want, got)
	}
}

// TestSpiderScope tests that other authorities are never fetched.
func TestSpiderScope(t *testing.T) {
	t.Parallel()

	web := newFakeWeb().
		page("http://example.test/", links("/in", "http://other.test/out", "http://example.test:8080/port")).
		page("http://example.test/in", links()).
		page("http://other.test/out", links())
	memory := store.NewMemory()

	stats, err := newTestSpider(web, memory).Run(context.Background(), []string{"http://example.test/"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if web.hitCount("http://other.test/out") != 0 {
		t.Error("expected cross-authority link not to be fetched")
	}
	if web.hitCount("http://example.test:8080/port") != 0 {
		t.Error("expected link with another port not to be fetched")
	}
	if stats.OutOfScope != 2 {
		t.Errorf("expected 2 out of scope links, got %d", stats.OutOfScope)
	}
	if memory.Len() != 2 {
		t.Errorf("expected 2 stored pages, got %d", memory.Len())
	}
}

// TestSpiderDepth tests the depth boundary.
func TestSpiderDepth(t *testing.T) {
	t.Parallel()

	web := newFakeWeb().
		page("http://example.test/", links("/1")).
		page("http://example.test/1", links("/2")).
		page("http://example.test/2", links("/3")).
		page("http://example.test/3", links())
	memory := store.NewMemory()

	stats, err := newTestSpider(web, memory, WithMaxDepth(2)).Run(context.Background(), []string{"http://example.test/"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if web.hitCount("http://example.test/2") != 1 {
		t.Error("expected page at max depth to be fetched")
	}
	if web.hitCount("http://example.test/3") != 0 {
		t.Error("expected page beyond max depth not to be fetched")
	}
	if stats.DepthExceeded != 1 {
		t.Errorf("expected 1 depth rejection, got %d", stats.DepthExceeded)
	}

	page, ok := memory.Get("http://example.test/2")
	if !ok || page.Depth != 2 {
		t.Errorf("expected stored page at depth 2, got %+v", page)
	}
}

// TestSpiderDepthZero tests that max depth 0 fetches only the seed.
func TestSpiderDepthZero(t *testing.T) {
	t.Parallel()

	web := newFakeWeb().
		page("http://example.test/", links("/1")).
		page("http://example.test/1", links())
	memory := store.NewMemory()

	if _, err := newTestSpider(web, memory, WithMaxDepth(0)).Run(context.Background(), []string{"http://example.test/"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := storedURLs(memory); !slices.Equal(got, []string{"http://example.test/"}) {
		t.Errorf("expected only the seed, got %v", got)
	}
}

// TestSpiderRobots tests that disallowed paths are skipped.
func TestSpiderRobots(t *testing.T) {
	t.Parallel()

	web := newFakeWeb().
		robots("http://example.test/robots.txt", "User-agent: *\nDisallow: /private\n").
		page("http://example.test/", links("/private", "/public")).
		page("http://example.test/private", links()).
		page("http://example.test/public", links())
	memory := store.NewMemory()

	stats, err := newTestSpider(web, memory).Run(context.Background(), []string{"http://example.test/"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if web.hitCount("http://example.test/private") != 0 {
		t.Error("expected /private not to be fetched")
	}
	if web.hitCount("http://example.test/public") != 1 {
		t.Error("expected /public to be fetched")
	}
	if stats.RobotsDenied != 1 {
		t.Errorf("expected 1 robots rejection, got %d", stats.RobotsDenied)
	}
}

// TestSpiderFailure tests that a failed fetch does not stop its siblings.
func TestSpiderFailure(t *testing.T) {
	t.Parallel()

	web := newFakeWeb().
		page("http://example.test/", links("/b", "/c", "/b")).
		status("http://example.test/b", 500).
		page("http://example.test/c", links("/b"))
	memory := store.NewMemory()

	stats, err := newTestSpider(web, memory).Run(context.Background(), []string{"http://example.test/"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if web.hitCount("http://example.test/c") != 1 {
		t.Error("expected sibling of failed page to be fetched")
	}
	if web.hitCount("http://example.test/b") != 1 {
		t.Error("expected failed page to be attempted exactly once")
	}
	if _, ok := memory.Get("http://example.test/b"); ok {
		t.Error("expected no content stored for failed page")
	}
	if stats.Failed != 1 {
		t.Errorf("expected 1 failure, got %d", stats.Failed)
	}
}

// TestSpiderEndToEnd tests the robots, depth and scope rules together.
func TestSpiderEndToEnd(t *testing.T) {
	t.Parallel()

	web := newFakeWeb().
		robots("http://example.test/robots.txt", "Disallow: /a\n").
		page("http://example.test/", links("/a", "http://other.test/b")).
		page("http://example.test/a", links()).
		page("http://other.test/b", links())
	memory := store.NewMemory()

	_, err := newTestSpider(web, memory, WithMaxDepth(1)).Run(context.Background(), []string{"http://example.test/"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := storedURLs(memory); !slices.Equal(got, []string{"http://example.test/"}) {
		t.Errorf("expected only the seed to be stored, got %v", got)
	}
	if web.agent("http://example.test/") != config.DefaultUserAgent {
		t.Errorf("expected User-Agent %q, got %q", config.DefaultUserAgent, web.agent("http://example.test/"))
	}
}

// TestSpiderSeeds tests several seeds sharing visited state.
func TestSpiderSeeds(t *testing.T) {
	t.Parallel()

	web := newFakeWeb().
		page("http://one.test/", links("/shared", "http://two.test/")).
		page("http://one.test/shared", links()).
		page("http://two.test/", links("/page")).
		page("http://two.test/page", links())
	memory := store.NewMemory()

	seeds := []string{"http://one.test/", "http://two.test/", "http://one.test/shared", "not a url"}
	if _, err := newTestSpider(web, memory).Run(context.Background(), seeds); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{
		"http://one.test/",
		"http://one.test/shared",
		"http://two.test/",
		"http://two.test/page",
	}
	if got := storedURLs(memory); !slices.Equal(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
	if web.hitCount("http://one.test/shared") != 1 {
		t.Error("expected a page shared by two seeds to be fetched once")
	}
}

// TestSpiderMaxPages tests the page limit.
func TestSpiderMaxPages(t *testing.T) {
	t.Parallel()

	for _, workers := range []int{1, 3} {
		t.Run(fmt.Sprintf("%d workers", workers), func(t *testing.T) {
			t.Parallel()

			web := newFakeWeb().page("http://example.test/", links("/1", "/2", "/3", "/4"))
			for i := 1; i <= 4; i++ {
				web.page(fmt.Sprintf("http://example.test/%d", i), links())
			}
			memory := store.NewMemory()

			_, err := newTestSpider(web, memory, WithMaxPages(2), WithWorkers(workers)).
				Run(context.Background(), []string{"http://example.test/"})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if memory.Len() != 2 {
				t.Errorf("expected 2 stored pages, got %d", memory.Len())
			}
		})
	}
}

// TestSpiderSites tests per-authority ignore patterns.
func TestSpiderSites(t *testing.T) {
	t.Parallel()

	web := newFakeWeb().
		page("http://example.test/", links("/admin/panel", "/docs/a.pdf", "/about")).
		page("http://example.test/admin/panel", links()).
		page("http://example.test/docs/a.pdf", links()).
		page("http://example.test/about", links())
	memory := store.NewMemory()

	sites := config.NewFile()
	sites.Sites["example.test"] = config.SiteConfig{IgnorePatterns: []string{"/admin/*", "*.pdf"}}

	stats, err := newTestSpider(web, memory, WithSites(sites)).Run(context.Background(), []string{"http://example.test/"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{"http://example.test/", "http://example.test/about"}
	if got := storedURLs(memory); !slices.Equal(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
	if stats.OutOfScope != 2 {
		t.Errorf("expected 2 filtered links, got %d", stats.OutOfScope)
	}
}

// TestSpiderCancel tests that a cancelled context stops the run.
func TestSpiderCancel(t *testing.T) {
	t.Parallel()

	web := newFakeWeb().page("http://example.test/", links("/1"))
	memory := store.NewMemory()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestSpider(web, memory).Run(ctx, []string{"http://example.test/"})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if memory.Len() != 0 {
		t.Errorf("expected nothing stored, got %d", memory.Len())
	}
}

// TestSpiderTitle tests that extracted titles are recorded on pages.
func TestSpiderTitle(t *testing.T) {
	t.Parallel()

	web := newFakeWeb().page("http://example.test/", links())
	memory := store.NewMemory()

	if _, err := newTestSpider(web, memory).Run(context.Background(), []string{"http://example.test/"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	page, ok := memory.Get("http://example.test/")
	if !ok {
		t.Fatal("expected seed to be stored")
	}
	want := &model.Page{URL: "http://example.test/", Authority: "example.test", Title: "page", StatusCode: 200}
	if page.Title != want.Title || page.Authority != want.Authority || page.StatusCode != want.StatusCode {
		t.Errorf("expected %+v, got %+v", want, page)
	}
	if page.Hash == "" {
		t.Error("expected content hash to be set")
	}
}

// TestSpiderEmptyResponse tests that a 2xx reply without a body is not stored.
func TestSpiderEmptyResponse(t *testing.T) {
	t.Parallel()

	web := newFakeWeb().
		page("http://example.test/", links("/empty", "/x")).
		status("http://example.test/empty", http.StatusOK).
		page("http://example.test/x", links("/empty"))
	memory := store.NewMemory()

	stats, err := newTestSpider(web, memory).Run(context.Background(), []string{"http://example.test/"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{"http://example.test/", "http://example.test/x"}
	if got := storedURLs(memory); !slices.Equal(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
	if stats.Empty != 1 {
		t.Errorf("expected 1 empty response, got %d", stats.Empty)
	}
	if stats.Fetched != 2 {
		t.Errorf("expected 2 fetched pages, got %d", stats.Fetched)
	}
	if web.hitCount("http://example.test/empty") != 1 {
		t.Error("expected the empty page to be requested once")
	}
}

// TestSpiderTruncatedPage tests that an oversized page is stored with its
// beginning and flagged.
func TestSpiderTruncatedPage(t *testing.T) {
	t.Parallel()

	body := links("/a") + strings.Repeat(" ", 100)
	web := newFakeWeb().page("http://example.test/", body)
	client := web.client()
	memory := store.NewMemory()

	spider := NewSpider(
		NewFetcher(client, config.DefaultUserAgent, int64(len(body)-10)),
		NewRobotsChecker(client, config.DefaultUserAgent),
		FixedDelay(0),
		memory,
		WithMaxDepth(0),
		WithLogger(slog.New(slog.DiscardHandler)),
	)
	if _, err := spider.Run(context.Background(), []string{"http://example.test/"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	page, ok := memory.Get("http://example.test/")
	if !ok {
		t.Fatal("expected truncated page to be stored")
	}
	if !page.Truncated {
		t.Error("expected page to be flagged as truncated")
	}
	if len(page.Content) != len(body)-10 {
		t.Errorf("expected %d bytes, got %d", len(body)-10, len(page.Content))
	}
}

// TestSpiderMaxPagesSkipsRobots tests that candidates left over after the
// page limit do not cost a robots.txt request.
func TestSpiderMaxPagesSkipsRobots(t *testing.T) {
	t.Parallel()

	web := newFakeWeb().
		page("http://example.test/", links("/1", "/2", "/3")).
		robots("http://example.test/robots.txt", "User-agent: *\n")
	for i := 1; i <= 3; i++ {
		web.page(fmt.Sprintf("http://example.test/%d", i), links())
	}
	client := web.client()
	memory := store.NewMemory()

	spider := NewSpider(
		NewFetcher(client, config.DefaultUserAgent, config.DefaultMaxBodySize),
		NewRobotsChecker(client, config.DefaultUserAgent, WithRobotsCacheTTL(0)),
		FixedDelay(0),
		memory,
		WithMaxPages(1),
		WithLogger(slog.New(slog.DiscardHandler)),
	)
	if _, err := spider.Run(context.Background(), []string{"http://example.test/"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if memory.Len() != 1 {
		t.Errorf("expected 1 stored page, got %d", memory.Len())
	}
	if got := web.hitCount("http://example.test/robots.txt"); got != 1 {
		t.Errorf("expected robots.txt to be fetched once for the seed, got %d", got)
	}
}
