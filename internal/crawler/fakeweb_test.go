package crawler

import (
	"io"
	"net/http"
	"strings"
	"sync"
)

// fakeResponse is a canned reply of fakeWeb.
type fakeResponse struct {
	status      int
	contentType string
	body        string
}

// fakeWeb is an http.RoundTripper serving canned responses for fake hosts
// such as example.test. Unknown addresses answer 404.
type fakeWeb struct {
	mu        sync.Mutex
	responses map[string]fakeResponse
	hits      map[string]int
	agents    map[string]string
}

func newFakeWeb() *fakeWeb {
	return &fakeWeb{
		responses: make(map[string]fakeResponse),
		hits:      make(map[string]int),
		agents:    make(map[string]string),
	}
}

// page registers an HTML page.
func (w *fakeWeb) page(url, body string) *fakeWeb {
	w.responses[url] = fakeResponse{status: http.StatusOK, contentType: "text/html; charset=utf-8", body: body}
	return w
}

// status registers a bodyless reply with the given status.
func (w *fakeWeb) status(url string, status int) *fakeWeb {
	w.responses[url] = fakeResponse{status: status}
	return w
}

// robots registers a robots.txt document.
func (w *fakeWeb) robots(url, body string) *fakeWeb {
	w.responses[url] = fakeResponse{status: http.StatusOK, contentType: "text/plain", body: body}
	return w
}

func (w *fakeWeb) RoundTrip(req *http.Request) (*http.Response, error) {
	if err := req.Context().Err(); err != nil {
		return nil, err
	}

	url := req.URL.String()

	w.mu.Lock()
	w.hits[url]++
	w.agents[url] = req.Header.Get("User-Agent")
	resp, ok := w.responses[url]
	w.mu.Unlock()

	if !ok {
		resp = fakeResponse{status: http.StatusNotFound, body: "not found"}
	}

	header := make(http.Header)
	if resp.contentType != "" {
		header.Set("Content-Type", resp.contentType)
	}
	return &http.Response{
		StatusCode: resp.status,
		Status:     http.StatusText(resp.status),
		Header:     header,
		Body:       io.NopCloser(strings.NewReader(resp.body)),
		Request:    req,
	}, nil
}

// hitCount returns how many times url was requested.
func (w *fakeWeb) hitCount(url string) int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.hits[url]
}

// agent returns the User-Agent of the last request for url.
func (w *fakeWeb) agent(url string) string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.agents[url]
}

func (w *fakeWeb) client() *http.Client {
	return &http.Client{Transport: w}
}

// links renders an HTML page linking to every href.
func links(hrefs ...string) string {
	var b strings.Builder
	b.WriteString("<html><head><title>page</title></head><body>")
	for _, href := range hrefs {
		b.WriteString(`<a href="` + href + `">link</a>`)
	}
	b.WriteString("</body></html>")
	return b.String()
}
