package crawler

import (
	"testing"

	"github.com/nao1215/webcrawl/internal/config"
)

// TestMatchPattern tests glob matching against URL paths.
func TestMatchPattern(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		pattern string
		path    string
		want    bool
	}{
		{"directory prefix match", "/admin/*", "/admin/dashboard", true},
		{"directory prefix exact", "/admin/*", "/admin", true},
		{"directory prefix nested", "/admin/*", "/admin/users/edit", true},
		{"directory prefix no match", "/admin/*", "/user/profile", false},
		{"directory prefix partial name", "/admin/*", "/administrator", false},
		{"directory prefix root", "/admin/*", "/", false},
		{"extension", "*.pdf", "/docs/file.pdf", true},
		{"extension nested", "*.pdf", "/a/b/c/report.pdf", true},
		{"extension no match", "*.pdf", "/docs/file.txt", false},
		{"exact", "/logout", "/logout", true},
		{"exact no match", "/logout", "/login", false},
		{"single character", "/api/v?/users", "/api/v1/users", true},
		{"single character too long", "/api/v?/users", "/api/v10/users", false},
		{"file glob on last segment", "report-??.txt", "/files/report-01.txt", true},
		{"file glob no match", "report-??.txt", "/files/report-1.txt", false},
		{"root", "/", "/", true},
		{"malformed glob", "/[", "/[", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := matchPattern(tt.pattern, tt.path); got != tt.want {
				t.Errorf("matchPattern(%q, %q) = %v, want %v", tt.pattern, tt.path, got, tt.want)
			}
		})
	}
}

// TestPathFilter tests ignore and follow pattern precedence.
func TestPathFilter(t *testing.T) {
	t.Parallel()

	t.Run("no patterns allows all", func(t *testing.T) {
		t.Parallel()

		f := NewPathFilter(config.SiteConfig{})
		if !f.Allows("http://example.com/any/path") {
			t.Error("expected all URLs to be allowed when no patterns set")
		}
	})

	t.Run("ignore and follow", func(t *testing.T) {
		t.Parallel()

		f := NewPathFilter(config.SiteConfig{
			IgnorePatterns: []string{"/api/internal/*", "*.pdf"},
			FollowPatterns: []string{"/api/*", "/"},
		})

		tests := []struct {
			url  string
			want bool
		}{
			{"http://example.com/api/v1/users", true},
			{"http://example.com", true},
			{"http://example.com/api/internal/secret", false},
			{"http://example.com/api/doc.pdf", false},
			{"http://example.com/public/page", false},
		}

		for _, tt := range tests {
			if got := f.Allows(tt.url); got != tt.want {
				t.Errorf("Allows(%q) = %v, want %v", tt.url, got, tt.want)
			}
		}
	})

	t.Run("invalid URL is rejected", func(t *testing.T) {
		t.Parallel()

		if NewPathFilter(config.SiteConfig{}).Allows("http://[::1") {
			t.Error("expected invalid URL to be rejected")
		}
	})
}
