// Package config provides the run configuration for webcrawl: defaults,
// validation, the optional YAML configuration file and XDG directory paths.
package config
