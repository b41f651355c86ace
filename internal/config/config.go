// Package config assembles runtime settings for the agentdesk client from
// defaults, an optional JSON file and command-line flags, in that order of
// precedence.
package config

import "time"

// Config holds runtime settings for the agentdesk client.
type Config struct {
	// StoreDriver selects the snapshot persistence adapter: "file" or
	// "sqlite".
	StoreDriver string
	// StorePath is the snapshot location: a JSON file path for the file
	// driver, a sqlite DSN for the sqlite driver.
	StorePath string
	// SessionPath is where the fallback principal identifier is persisted.
	SessionPath string
	// SessionSecret signs session tokens.
	SessionSecret string
	// TokenValidity bounds how long a session token stays valid.
	TokenValidity time.Duration

	// OriginBaseURL is the application origin: shell assets are installed
	// from it and connectivity is probed against it.
	OriginBaseURL string
	// APIPrefix routes matching GETs network-first.
	APIPrefix string
	// StaticPrefixes and StaticExtensions route matching GETs cache-first.
	StaticPrefixes   []string
	StaticExtensions []string
	// ShellAssets is the fixed shell resource list precached at install
	// time; the first entry must be the root document.
	ShellAssets []string
	// CacheVersion tokens the partition names.
	CacheVersion string
	// RequestTimeout bounds every network fetch made by the cache.
	RequestTimeout time.Duration
	// SyncTag is the background-sync tag the cache reacts to.
	SyncTag string
	// OnlineCheckInterval is how often the origin is probed for
	// connectivity.
	OnlineCheckInterval time.Duration
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.StoreDriver = "file"
	c.StorePath = "agentdesk.json"
	c.SessionPath = "session.json"
	c.SessionSecret = "dev-secret"
	c.TokenValidity = 12 * time.Hour

	c.OriginBaseURL = "http://127.0.0.1:8080"
	c.APIPrefix = "/api/"
	c.StaticPrefixes = []string{"/static/", "/assets/", "/icons/"}
	c.StaticExtensions = []string{".js", ".css", ".png", ".svg", ".ico", ".webmanifest", ".woff2"}
	c.ShellAssets = []string{"/", "/manifest.webmanifest", "/icons/icon-192.png", "/icons/icon-512.png"}
	c.CacheVersion = "v1"
	c.RequestTimeout = 10 * time.Second
	c.SyncTag = "flush-offline-submissions"
	c.OnlineCheckInterval = 3 * time.Second
}

// LoadConfig constructs a Config, applies defaults, then overlays values
// from JSON (if present) and command-line flags (if present). Later sources
// take precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
