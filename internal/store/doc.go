// Package store holds fetched pages in memory for the duration of a run.
//
// The Memory store keeps pages in the order they were first saved so that
// exporters write them in crawl order. It is safe for concurrent use by the
// crawler's workers.
package store
