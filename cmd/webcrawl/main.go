// Package main provides the entry point for the webcrawl CLI.
//
// webcrawl is a depth-bounded, domain-scoped web crawler. Starting from one
// or more seed URLs it follows links within each seed's host, honours
// robots.txt, waits between requests and exports the fetched pages.
//
// Usage:
//
//	webcrawl crawl <url>...
//	webcrawl crawl --max-depth 2 --output pages.json --format json <url>
//
// See --help for all available options.
package main

// main is the entry point for webcrawl.
func main() {
	Execute()
}
