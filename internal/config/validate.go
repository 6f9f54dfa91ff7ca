package config

import (
	"fmt"
	"net/url"
	"strings"
)

// Validate performs business-rule validation on the loaded configuration.
// It must be called after loading; Load calls it automatically.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be in 1..65535 (got %d)", c.Server.Port)
	}
	if c.Server.MaxSearchLimit <= 0 {
		return fmt.Errorf("server.max_search_limit must be > 0 (got %d)", c.Server.MaxSearchLimit)
	}
	if c.Server.SearchRatePerMinute < 0 {
		return fmt.Errorf("server.search_rate_per_minute must be >= 0 (got %d)", c.Server.SearchRatePerMinute)
	}
	if c.Server.LookupCacheSize < 0 {
		return fmt.Errorf("server.lookup_cache_size must be >= 0 (got %d)", c.Server.LookupCacheSize)
	}

	if err := c.Import.validate(); err != nil {
		return fmt.Errorf("import: %w", err)
	}

	switch strings.ToLower(c.Log.Format) {
	case "json", "text":
	default:
		return fmt.Errorf("log.format must be json or text (got %q)", c.Log.Format)
	}

	return nil
}

func (i *ImportConfig) validate() error {
	if strings.TrimSpace(i.CacheDir) == "" {
		return fmt.Errorf("cache_dir must not be empty")
	}
	if i.BatchSize <= 0 {
		return fmt.Errorf("batch_size must be > 0 (got %d)", i.BatchSize)
	}
	if i.FetchTimeout <= 0 {
		return fmt.Errorf("fetch_timeout must be > 0 (got %s)", i.FetchTimeout)
	}

	u, err := url.Parse(i.SourceURL)
	if err != nil {
		return fmt.Errorf("source_url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("source_url must be http(s) (got %q)", i.SourceURL)
	}
	i.SourceURL = strings.TrimRight(i.SourceURL, "/")

	return nil
}
