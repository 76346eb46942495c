package crawler

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/temoto/robotstxt"

	"github.com/nao1215/webcrawl/internal/config"
)

// maxRobotsSize is the largest robots.txt body that is read.
const maxRobotsSize = 512 * 1024

// disallowPattern matches Disallow lines anywhere in a robots.txt document.
var disallowPattern = regexp.MustCompile(`Disallow: (.+)`)

// policy decides whether an address is permitted by one robots.txt.
type policy interface {
	allows(addr string, target *url.URL) bool
}

// permitAll is the policy of an unreachable or missing robots.txt.
type permitAll struct{}

func (permitAll) allows(string, *url.URL) bool { return true }

// literalPolicy denies every address that starts with one of the
// resolved Disallow prefixes. User-agent groups and Allow lines are not
// considered.
type literalPolicy struct {
	prefixes []string
}

func newLiteralPolicy(robotsURL *url.URL, body string) literalPolicy {
	matches := disallowPattern.FindAllStringSubmatch(body, -1)
	p := literalPolicy{prefixes: make([]string, 0, len(matches))}
	for _, m := range matches {
		prefix := ResolveReference(robotsURL, m[1])
		if prefix == "" {
			continue
		}
		p.prefixes = append(p.prefixes, prefix)
	}
	return p
}

func (p literalPolicy) allows(addr string, _ *url.URL) bool {
	for _, prefix := range p.prefixes {
		if strings.HasPrefix(addr, prefix) {
			return false
		}
	}
	return true
}

// standardPolicy applies robots.txt group matching for one user agent.
type standardPolicy struct {
	group *robotstxt.Group
}

func newStandardPolicy(body []byte, userAgent string) (standardPolicy, error) {
	data, err := robotstxt.FromBytes(body)
	if err != nil {
		return standardPolicy{}, err
	}
	group := data.FindGroup(userAgent)
	if group == nil {
		group = data.FindGroup("*")
	}
	return standardPolicy{group: group}, nil
}

func (p standardPolicy) allows(_ string, target *url.URL) bool {
	if p.group == nil {
		return true
	}
	return p.group.Test(target.RequestURI())
}

type robotsEntry struct {
	fetched time.Time
	policy  policy
}

// RobotsChecker answers whether an address may be fetched according to
// the robots.txt of its authority. Policies are cached per scheme and
// authority; the checker is safe for concurrent use.
type RobotsChecker struct {
	client    *http.Client
	userAgent string
	mode      string
	ttl       time.Duration
	logger    *slog.Logger

	mu    sync.Mutex
	cache map[string]robotsEntry
}

// RobotsOption configures a RobotsChecker.
type RobotsOption func(*RobotsChecker)

// WithRobotsMode selects literal prefix matching or standard group matching.
func WithRobotsMode(mode string) RobotsOption {
	return func(c *RobotsChecker) {
		c.mode = mode
	}
}

// WithRobotsCacheTTL sets how long a fetched policy is reused.
// Zero fetches robots.txt for every check.
func WithRobotsCacheTTL(ttl time.Duration) RobotsOption {
	return func(c *RobotsChecker) {
		c.ttl = ttl
	}
}

// WithRobotsLogger sets the logger for robots.txt diagnostics.
func WithRobotsLogger(logger *slog.Logger) RobotsOption {
	return func(c *RobotsChecker) {
		c.logger = logger
	}
}

// NewRobotsChecker creates a checker that fetches robots.txt with client
// and sends userAgent.
func NewRobotsChecker(client *http.Client, userAgent string, opts ...RobotsOption) *RobotsChecker {
	c := &RobotsChecker{
		client:    client,
		userAgent: userAgent,
		mode:      config.DefaultRobotsMode,
		ttl:       config.DefaultRobotsCacheTTL,
		logger:    slog.New(slog.DiscardHandler),
		cache:     make(map[string]robotsEntry),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Allowed reports whether addr may be fetched. A robots.txt that cannot be
// fetched, or answers with a non-2xx status, permits everything.
func (c *RobotsChecker) Allowed(ctx context.Context, addr string) bool {
	target, err := url.Parse(addr)
	if err != nil || target.Host == "" {
		return true
	}

	robotsURL := &url.URL{Scheme: target.Scheme, Host: target.Host, Path: "/robots.txt"}
	return c.policyFor(ctx, robotsURL).allows(addr, target)
}

// policyFor returns the cached policy for robotsURL or fetches a new one.
func (c *RobotsChecker) policyFor(ctx context.Context, robotsURL *url.URL) policy {
	key := robotsURL.String()

	if c.ttl > 0 {
		c.mu.Lock()
		entry, ok := c.cache[key]
		c.mu.Unlock()
		if ok && time.Since(entry.fetched) < c.ttl {
			return entry.policy
		}
	}

	p, err := c.fetch(ctx, robotsURL)
	if err != nil {
		c.logger.Debug("robots.txt unavailable, permitting all",
			"url", key,
			"error", err,
		)
		p = permitAll{}
	}

	if c.ttl > 0 && ctx.Err() == nil {
		c.mu.Lock()
		c.cache[key] = robotsEntry{fetched: time.Now(), policy: p}
		c.mu.Unlock()
	}

	return p
}

// fetch downloads and parses one robots.txt.
func (c *RobotsChecker) fetch(ctx context.Context, robotsURL *url.URL) (policy, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, robotsURL.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("build robots request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch robots.txt: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("robots.txt returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxRobotsSize))
	if err != nil {
		return nil, fmt.Errorf("read robots.txt: %w", err)
	}

	if c.mode == config.RobotsModeStandard {
		p, err := newStandardPolicy(body, c.userAgent)
		if err != nil {
			return nil, fmt.Errorf("parse robots.txt: %w", err)
		}
		return p, nil
	}

	return newLiteralPolicy(robotsURL, string(body)), nil
}
