// Package transport builds the HTTP client used for every outbound request
// of a crawl: page fetches and robots.txt lookups.
//
// The client optionally routes connections through a SOCKS5 proxy
// (golang.org/x/net/proxy) and injects per-authority headers and cookies
// configured in the webcrawl configuration file.
package transport
