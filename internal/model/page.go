package model

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"
)

// Page is a successfully fetched address together with its content.
// A Page is written to the content store once per address.
type Page struct {
	// URL is the absolute address the content was fetched from.
	URL string `json:"url"`

	// Authority is the host[:port] part of URL.
	Authority string `json:"authority"`

	// Depth is the number of hops from the seed that led to this page.
	Depth int `json:"depth"`

	// StatusCode is the HTTP response status code.
	StatusCode int `json:"status_code"`

	// ContentType is the Content-Type response header.
	ContentType string `json:"content_type,omitempty"`

	// Title is the text of the <title> element, if any.
	Title string `json:"title,omitempty"`

	// Content is the response body decoded to UTF-8 text.
	Content string `json:"content"`

	// Truncated is set when the body was longer than the size limit and
	// Content holds only its beginning.
	Truncated bool `json:"truncated,omitempty"`

	// Hash is the SHA-256 hash of Content.
	Hash string `json:"hash"`

	// FetchedAt is when the response was received.
	FetchedAt time.Time `json:"fetched_at"`
}

// ComputeHash calculates and sets the SHA-256 hash of the page content.
func (p *Page) ComputeHash() {
	if len(p.Content) == 0 {
		p.Hash = ""
		return
	}

	hash := sha256.Sum256([]byte(p.Content))
	p.Hash = hex.EncodeToString(hash[:])
}

// IsHTML reports whether the page content type indicates HTML.
// An empty content type is treated as HTML because many servers omit it.
func (p *Page) IsHTML() bool {
	ct := strings.ToLower(p.ContentType)
	return ct == "" ||
		strings.HasPrefix(ct, "text/html") ||
		strings.HasPrefix(ct, "application/xhtml+xml")
}

// Size returns the content length in bytes.
func (p *Page) Size() int {
	return len(p.Content)
}
