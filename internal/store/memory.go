package store

import (
	"sync"

	"github.com/nao1215/webcrawl/internal/model"
)

// Memory is an insertion-ordered page store keyed by URL.
type Memory struct {
	mu    sync.RWMutex
	order []string
	pages map[string]*model.Page
}

// NewMemory creates an empty store.
func NewMemory() *Memory {
	return &Memory{
		order: make([]string, 0),
		pages: make(map[string]*model.Page),
	}
}

// Save stores page under its URL. Saving a URL again replaces the page but
// keeps its original position.
func (m *Memory) Save(page *model.Page) {
	if page == nil {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.pages[page.URL]; !ok {
		m.order = append(m.order, page.URL)
	}
	m.pages[page.URL] = page
}

// Get returns the page stored for url.
func (m *Memory) Get(url string) (*model.Page, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	page, ok := m.pages[url]
	return page, ok
}

// Pages returns all pages in insertion order.
func (m *Memory) Pages() []*model.Page {
	m.mu.RLock()
	defer m.mu.RUnlock()

	pages := make([]*model.Page, 0, len(m.order))
	for _, url := range m.order {
		pages = append(pages, m.pages[url])
	}
	return pages
}

// Len returns the number of stored pages.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.order)
}
