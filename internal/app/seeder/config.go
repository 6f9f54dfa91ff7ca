package seeder

import (
	"github.com/heartmarshall/inflective/internal/config"
	"github.com/heartmarshall/inflective/internal/domain"
)

// Config holds pipeline settings.
type Config struct {
	// BatchSize is the number of word rows sent per database round trip.
	BatchSize int
	// DryRun stops after parsing: nothing is written and the registry is
	// left untouched.
	DryRun bool
	// Version is stamped into the registry row of an upgraded language.
	Version domain.Version
}

// NewConfig derives pipeline settings from the import configuration.
func NewConfig(cfg config.ImportConfig, version domain.Version, dryRun bool) Config {
	return Config{
		BatchSize: cfg.BatchSize,
		DryRun:    dryRun,
		Version:   version,
	}
}
