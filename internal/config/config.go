package config

import (
	"time"
)

// Config is the root application configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Import   ImportConfig   `yaml:"import"`
	Log      LogConfig      `yaml:"log"`
	CORS     CORSConfig     `yaml:"cors"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins   string `yaml:"allowed_origins"   env:"CORS_ALLOWED_ORIGINS"   env-default:"*"`
	AllowedMethods   string `yaml:"allowed_methods"   env:"CORS_ALLOWED_METHODS"   env-default:"GET,OPTIONS"`
	AllowedHeaders   string `yaml:"allowed_headers"   env:"CORS_ALLOWED_HEADERS"   env-default:"Content-Type"`
	AllowCredentials bool   `yaml:"allow_credentials" env:"CORS_ALLOW_CREDENTIALS" env-default:"false"`
	MaxAge           int    `yaml:"max_age"           env:"CORS_MAX_AGE"           env-default:"86400"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `yaml:"host"             env:"SERVER_HOST"             env-default:"0.0.0.0"`
	Port            int           `yaml:"port"             env:"SERVER_PORT"             env-default:"8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout"     env:"SERVER_READ_TIMEOUT"     env-default:"10s"`
	WriteTimeout    time.Duration `yaml:"write_timeout"    env:"SERVER_WRITE_TIMEOUT"    env-default:"30s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"     env:"SERVER_IDLE_TIMEOUT"     env-default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT" env-default:"10s"`
	// MaxSearchLimit caps the limit parameter of substring search.
	MaxSearchLimit int `yaml:"max_search_limit" env:"SERVER_MAX_SEARCH_LIMIT" env-default:"100"`
	// SearchRatePerMinute limits substring searches per client IP. Zero disables it.
	SearchRatePerMinute int `yaml:"search_rate_per_minute" env:"SERVER_SEARCH_RATE_PER_MINUTE" env-default:"120"`
	// LookupCacheSize bounds the in-memory word lookup cache. Zero disables it.
	LookupCacheSize int `yaml:"lookup_cache_size" env:"SERVER_LOOKUP_CACHE_SIZE" env-default:"4096"`
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	DSN             string        `yaml:"dsn"                env:"DATABASE_DSN"                env-required:"true"`
	MaxConns        int32         `yaml:"max_conns"          env:"DATABASE_MAX_CONNS"          env-default:"10"`
	MinConns        int32         `yaml:"min_conns"          env:"DATABASE_MIN_CONNS"          env-default:"1"`
	MaxConnLifetime time.Duration `yaml:"max_conn_lifetime"  env:"DATABASE_MAX_CONN_LIFETIME"  env-default:"1h"`
	MaxConnIdleTime time.Duration `yaml:"max_conn_idle_time" env:"DATABASE_MAX_CONN_IDLE_TIME" env-default:"30m"`
}

// ImportConfig holds settings of the language upgrade pipeline.
type ImportConfig struct {
	CacheDir     string        `yaml:"cache_dir"     env:"IMPORT_CACHE_DIR"     env-default:"./cache"`
	SourceURL    string        `yaml:"source_url"    env:"IMPORT_SOURCE_URL"    env-default:"https://kaikki.org/dictionary"`
	UserAgent    string        `yaml:"user_agent"    env:"IMPORT_USER_AGENT"    env-default:"inflective"`
	FetchTimeout time.Duration `yaml:"fetch_timeout" env:"IMPORT_FETCH_TIMEOUT" env-default:"30m"`
	BatchSize    int           `yaml:"batch_size"    env:"IMPORT_BATCH_SIZE"    env-default:"500"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"  env:"LOG_LEVEL"  env-default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"text"`
}
