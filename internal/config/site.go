package config

import (
	"maps"
	"time"
)

// SiteConfig holds request settings for one authority.
type SiteConfig struct {
	// Cookie is sent as the Cookie header.
	// Format: "name=value" or "name1=value1; name2=value2"
	Cookie string `yaml:"cookie,omitempty"`

	// Headers are extra HTTP headers sent with page requests.
	Headers map[string]string `yaml:"headers,omitempty"`

	// IgnorePatterns are URL path globs that are never enqueued.
	IgnorePatterns []string `yaml:"ignorePatterns,omitempty"`

	// FollowPatterns restrict enqueued links to matching URL path globs.
	FollowPatterns []string `yaml:"followPatterns,omitempty"`
}

// RobotsSettings is the robots section of the configuration file.
type RobotsSettings struct {
	Mode     string         `yaml:"mode,omitempty"`
	CacheTTL *time.Duration `yaml:"cacheTTL,omitempty"`
}

// File is the structure of the webcrawl YAML configuration file.
// Scalar settings are pointers so that unset keys can be told apart from
// zero values; command-line flags override anything set here.
type File struct {
	MaxDepth    *int           `yaml:"maxDepth,omitempty"`
	RateLimit   *int           `yaml:"rateLimit,omitempty"`
	UserAgent   string         `yaml:"userAgent,omitempty"`
	Workers     *int           `yaml:"workers,omitempty"`
	Timeout     *time.Duration `yaml:"timeout,omitempty"`
	MaxPages    *int           `yaml:"maxPages,omitempty"`
	MaxBodySize *int64         `yaml:"maxBodySize,omitempty"`
	Proxy       string         `yaml:"proxy,omitempty"`
	Robots      RobotsSettings `yaml:"robots,omitempty"`

	// Sites maps authorities (host[:port]) to their settings.
	Sites map[string]SiteConfig `yaml:"sites,omitempty"`

	// Defaults apply to every authority unless overridden in Sites.
	Defaults SiteConfig `yaml:"defaults,omitempty"`
}

// NewFile returns an empty configuration file.
func NewFile() *File {
	return &File{Sites: make(map[string]SiteConfig)}
}

// GetSiteConfig returns the settings for an authority merged over the defaults.
func (cf *File) GetSiteConfig(authority string) SiteConfig {
	result := cf.Defaults
	if len(cf.Defaults.Headers) > 0 {
		result.Headers = maps.Clone(cf.Defaults.Headers)
	}

	siteConfig, ok := cf.Sites[authority]
	if !ok {
		return result
	}

	if siteConfig.Cookie != "" {
		result.Cookie = siteConfig.Cookie
	}
	if len(siteConfig.Headers) > 0 {
		if result.Headers == nil {
			result.Headers = make(map[string]string)
		}
		maps.Copy(result.Headers, siteConfig.Headers)
	}
	if len(siteConfig.IgnorePatterns) > 0 {
		result.IgnorePatterns = siteConfig.IgnorePatterns
	}
	if len(siteConfig.FollowPatterns) > 0 {
		result.FollowPatterns = siteConfig.FollowPatterns
	}

	return result
}
