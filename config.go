package pubcard

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// SiteConfig holds all configuration for a pubcard site.
type SiteConfig struct {
	Name        string `toml:"name"`        // Site name (default "Blog")
	URL         string `toml:"url"`         // Canonical URL (default "http://localhost:3000")
	Description string `toml:"description"` // Site description for RSS
	Author      string `toml:"author"`      // Printed in the social card footer

	Addr         string `toml:"addr"`          // Listen address (default ":3000")
	DatabasePath string `toml:"database_path"` // SQLite path (default "data/blog.db")
	ContentDir   string `toml:"content_dir"`   // Markdown articles (default "articles")
	// WatchContent re-imports articles when files change. Cards already in
	// the social card cache keep their old title until evicted or restarted.
	WatchContent bool   `toml:"watch_content"`

	LogFile      string `toml:"log_file"`        // Rotating log file; empty logs to stderr
	LogLevel     string `toml:"log_level"`       // debug, info, warn or error (default "info")
	LogMaxSizeMB int    `toml:"log_max_size_mb"` // Rotation threshold (default 10)

	CardRateLimit int `toml:"card_rate_limit"` // Card requests per minute per IP; 0 disables

	ArticleCacheTTL       time.Duration `toml:"-"` // Article index TTL (default 5min)
	// ArticleCacheTTLString is the TOML form of ArticleCacheTTL, e.g. "5m".
	ArticleCacheTTLString string `toml:"article_cache_ttl"`
}

func (c *SiteConfig) setDefaults() {
	if c.Name == "" {
		c.Name = "Blog"
	}
	if c.URL == "" {
		c.URL = "http://localhost:3000"
	}
	c.URL = strings.TrimSuffix(c.URL, "/")
	if c.Addr == "" {
		c.Addr = ":3000"
	}
	if c.DatabasePath == "" {
		c.DatabasePath = "data/blog.db"
	}
	if c.ContentDir == "" {
		c.ContentDir = "articles"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.LogMaxSizeMB == 0 {
		c.LogMaxSizeMB = 10
	}
	if c.ArticleCacheTTL == 0 {
		c.ArticleCacheTTL = 5 * time.Minute
	}
}

// LoadConfig reads a TOML file at path (if non-empty) and then applies
// environment overrides. Defaults are filled in by New.
func LoadConfig(path string) (SiteConfig, error) {
	var cfg SiteConfig
	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return SiteConfig{}, fmt.Errorf("pubcard: read config %s: %w", path, err)
		}
		if cfg.ArticleCacheTTLString != "" {
			d, err := time.ParseDuration(cfg.ArticleCacheTTLString)
			if err != nil {
				return SiteConfig{}, fmt.Errorf("pubcard: article_cache_ttl: %w", err)
			}
			cfg.ArticleCacheTTL = d
		}
	}

	cfg.Name = EnvOr("SITE_NAME", cfg.Name)
	cfg.URL = EnvOr("SITE_URL", cfg.URL)
	cfg.Description = EnvOr("SITE_DESCRIPTION", cfg.Description)
	cfg.Author = EnvOr("SITE_AUTHOR", cfg.Author)
	cfg.Addr = EnvOr("ADDR", cfg.Addr)
	cfg.DatabasePath = EnvOr("DATABASE_PATH", cfg.DatabasePath)
	cfg.ContentDir = EnvOr("CONTENT_DIR", cfg.ContentDir)
	cfg.LogFile = EnvOr("LOG_FILE", cfg.LogFile)
	cfg.LogLevel = EnvOr("LOG_LEVEL", cfg.LogLevel)
	if v := EnvOr("WATCH_CONTENT", ""); v != "" {
		cfg.WatchContent = strings.EqualFold(v, "true")
	}
	if v := EnvOr("CARD_RATE_LIMIT", ""); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return SiteConfig{}, fmt.Errorf("pubcard: CARD_RATE_LIMIT: %w", err)
		}
		cfg.CardRateLimit = n
	}
	return cfg, nil
}

// Option configures additional App behavior.
type Option func(*App)

// WithCustomRoutes registers additional routes on the Echo instance.
// The callback receives the App before the server starts.
func WithCustomRoutes(fn func(*App)) Option {
	return func(a *App) {
		a.customRoutes = append(a.customRoutes, fn)
	}
}

// WithViews replaces the built-in error pages.
func WithViews(v ViewFuncs) Option {
	return func(a *App) {
		a.Views = v
	}
}

// WithLogger sets the logger instead of building one from the config.
func WithLogger(l *slog.Logger) Option {
	return func(a *App) {
		a.Logger = l
	}
}
