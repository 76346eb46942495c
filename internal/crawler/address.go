package crawler

import (
	"net/url"
	"strings"
)

// IsValidAddress reports whether s is an absolute address with both a
// scheme and an authority.
func IsValidAddress(s string) bool {
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return u.Scheme != "" && u.Host != ""
}

// Authority returns the host[:port] part of addr, or "" when addr cannot
// be parsed.
func Authority(addr string) string {
	u, err := url.Parse(addr)
	if err != nil {
		return ""
	}
	return u.Host
}

// NormalizeSeed prepends "http://" to a seed that has no scheme.
// Anything else is returned unchanged, including invalid input, which the
// caller rejects with IsValidAddress.
func NormalizeSeed(seed string) string {
	seed = strings.TrimSpace(seed)
	if seed == "" || strings.Contains(seed, "://") {
		return seed
	}
	return "http://" + seed
}

// ResolveReference resolves ref against base and returns the absolute
// address, or "" when ref cannot be parsed.
func ResolveReference(base *url.URL, ref string) string {
	u, err := url.Parse(strings.TrimSpace(ref))
	if err != nil {
		return ""
	}
	return base.ResolveReference(u).String()
}
