package crawler

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/net/html/charset"

	"github.com/nao1215/webcrawl/internal/model"
)

// Fetcher performs single GET requests and turns 2xx responses into pages.
// It never retries.
type Fetcher struct {
	// client is shared with the robots checker.
	client *http.Client

	// userAgent is sent as the User-Agent header.
	userAgent string

	// maxBodySize limits how many body bytes are read.
	maxBodySize int64
}

// NewFetcher creates a Fetcher. A non-positive maxBodySize reads the whole body.
func NewFetcher(client *http.Client, userAgent string, maxBodySize int64) *Fetcher {
	return &Fetcher{
		client:      client,
		userAgent:   userAgent,
		maxBodySize: maxBodySize,
	}
}

// Fetch retrieves addr. Transport errors, timeouts and non-2xx responses
// return an error wrapping ErrFetchFailed.
func (f *Fetcher) Fetch(ctx context.Context, addr string) (*model.Page, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, addr, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrFetchFailed, addr, err)
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrFetchFailed, addr, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: %s: status %d", ErrFetchFailed, addr, resp.StatusCode)
	}

	raw, truncated, err := f.readBody(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: read body: %w", ErrFetchFailed, addr, err)
	}

	contentType := resp.Header.Get("Content-Type")
	content, err := readText(bytes.NewReader(raw), contentType)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: read body: %w", ErrFetchFailed, addr, err)
	}

	page := &model.Page{
		URL:         addr,
		Authority:   Authority(addr),
		StatusCode:  resp.StatusCode,
		ContentType: contentType,
		Content:     content,
		Truncated:   truncated,
		FetchedAt:   time.Now(),
	}
	page.ComputeHash()

	return page, nil
}

// readBody reads at most maxBodySize bytes and reports whether more were
// available.
func (f *Fetcher) readBody(body io.Reader) ([]byte, bool, error) {
	if f.maxBodySize <= 0 {
		raw, err := io.ReadAll(body)
		return raw, false, err
	}

	raw, err := io.ReadAll(io.LimitReader(body, f.maxBodySize+1))
	if err != nil {
		return nil, false, err
	}
	if int64(len(raw)) > f.maxBodySize {
		return raw[:f.maxBodySize], true, nil
	}
	return raw, false, nil
}

// readText decodes body to UTF-8 using the charset declared in the
// Content-Type header or sniffed from the content.
func readText(body io.Reader, contentType string) (string, error) {
	utf8Reader, err := charset.NewReader(body, contentType)
	if errors.Is(err, io.EOF) {
		return "", nil
	}
	if err != nil {
		return "", err
	}

	decoded, err := io.ReadAll(utf8Reader)
	if err != nil {
		return "", err
	}
	return string(decoded), nil
}
