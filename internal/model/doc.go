// Package model defines the data structures shared by the crawler, the
// content store and the exporters.
//
// This package contains the following main types:
//   - Page: A fetched address and its content (the stored record)
//   - CrawlTask: One pending visit in the crawl frontier
//   - CrawlReport: The result of a whole run, as handed to exporters
//   - Stats: Counters describing what the traversal did
//
// Design decision: We keep models in their own package so that crawler,
// store, export and database can share them without import cycles.
package model
