// Package export writes the result of a crawl to an output sink.
//
// This package contains writers for the file formats:
//   - TextWriter: the plain "URL: <address>" format, readable with ReadText
//   - JSONWriter: the complete CrawlReport for tool integration
//   - MarkdownWriter: a run summary and page table for sharing
//
// The SQLite format is handled by the database package.
package export
