package crawler

import (
	"net/url"
	"path/filepath"
	"strings"

	"github.com/nao1215/webcrawl/internal/config"
)

// PathFilter decides from the URL path whether a discovered link is
// enqueued. It never affects seeds.
type PathFilter struct {
	// ignore are path globs that are never enqueued.
	ignore []string

	// follow, when non-empty, are the only path globs that are enqueued.
	follow []string
}

// NewPathFilter creates a filter from a site's ignore and follow patterns.
func NewPathFilter(site config.SiteConfig) PathFilter {
	return PathFilter{
		ignore: site.IgnorePatterns,
		follow: site.FollowPatterns,
	}
}

// Allows reports whether addr passes the filter.
//
// Logic:
//  1. If the path matches any ignore pattern, reject it
//  2. If follow patterns are set and the path matches none, reject it
//  3. Otherwise, accept it
func (f PathFilter) Allows(addr string) bool {
	u, err := url.Parse(addr)
	if err != nil {
		return false
	}

	path := u.Path
	if path == "" {
		path = "/"
	}

	for _, pattern := range f.ignore {
		if matchPattern(pattern, path) {
			return false
		}
	}

	if len(f.follow) == 0 {
		return true
	}
	for _, pattern := range f.follow {
		if matchPattern(pattern, path) {
			return true
		}
	}
	return false
}

// matchPattern checks if a path matches a glob pattern.
// Patterns can use:
//   - * to match any sequence of non-separator characters
//   - ? to match any single character
//   - a trailing /* to match everything below a directory
//
// Examples:
//   - "/admin/*" matches "/admin", "/admin/users/edit"
//   - "*.pdf" matches "/docs/file.pdf"
//   - "/api/v?" matches "/api/v1", "/api/v2"
func matchPattern(pattern, path string) bool {
	if prefix, ok := strings.CutSuffix(pattern, "/*"); ok {
		if strings.HasPrefix(path, prefix+"/") || path == prefix {
			return true
		}
	}

	if ext, ok := strings.CutPrefix(pattern, "*"); ok && strings.HasPrefix(ext, ".") {
		if strings.HasSuffix(path, ext) {
			return true
		}
	}

	if matched, err := filepath.Match(pattern, path); err == nil && matched {
		return true
	}

	// Bare file globs such as "report-??.txt" are matched against the
	// last path segment.
	if strings.ContainsAny(pattern, "*?") && !strings.Contains(pattern, "/") {
		matched, err := filepath.Match(pattern, filepath.Base(path))
		if err == nil && matched {
			return true
		}
	}

	return false
}
