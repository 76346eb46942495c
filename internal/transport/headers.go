package transport

import "net/http"

// HeaderFunc returns the extra headers and cookie to send to an authority.
type HeaderFunc func(authority string) (headers map[string]string, cookie string)

// headerInjectingTransport adds per-authority headers and cookies to every
// request, including requests made while following redirects.
type headerInjectingTransport struct {
	base    http.RoundTripper
	headers HeaderFunc
}

// RoundTrip implements http.RoundTripper.
func (t *headerInjectingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	headers, cookie := t.headers(req.URL.Host)
	if len(headers) == 0 && cookie == "" {
		return t.base.RoundTrip(req)
	}

	clone := req.Clone(req.Context())

	if cookie != "" {
		if existing := clone.Header.Get("Cookie"); existing != "" {
			clone.Header.Set("Cookie", existing+"; "+cookie)
		} else {
			clone.Header.Set("Cookie", cookie)
		}
	}

	for key, value := range headers {
		clone.Header.Set(key, value)
	}

	return t.base.RoundTrip(clone)
}
