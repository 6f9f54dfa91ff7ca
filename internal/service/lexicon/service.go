// Package lexicon is the read side of the dictionary: word lookup,
// substring search and the language listing.
package lexicon

import (
	"context"
	"encoding/json"
	"log/slog"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/heartmarshall/inflective/internal/domain"
)

type entryRepo interface {
	LookupByWord(ctx context.Context, code, word string) ([]domain.Entry, error)
	LookupBySubstring(ctx context.Context, code, pattern string, limit, offset int) ([]string, error)
}

type registryRepo interface {
	Get(ctx context.Context, code string) (domain.LanguageRecord, error)
	ListInstalled(ctx context.Context) ([]domain.LanguageRecord, error)
}

const (
	DefaultSearchLimit = 20
	defaultMaxLimit    = 100
)

// lookupKey identifies a cached lookup. installedAt changes on every
// reinstall, so entries of a replaced installation are never served.
type lookupKey struct {
	code        string
	word        string
	installedAt int64
}

// Service implements the read-side operations.
type Service struct {
	log      *slog.Logger
	entries  entryRepo
	registry registryRepo
	build    domain.Version
	maxLimit int
	cache    *lru.Cache[lookupKey, json.RawMessage] // nil when disabled
}

// NewService creates a new lexicon service. build is the version of the
// running binary; installed languages stamped with an older version are
// reported as outdated. maxLimit caps search page sizes. cacheSize bounds
// the word lookup cache; zero disables it.
func NewService(logger *slog.Logger, entries entryRepo, registry registryRepo, build domain.Version, maxLimit, cacheSize int) *Service {
	if maxLimit <= 0 {
		maxLimit = defaultMaxLimit
	}
	s := &Service{
		log:      logger.With("service", "lexicon"),
		entries:  entries,
		registry: registry,
		build:    build,
		maxLimit: maxLimit,
	}
	if cacheSize > 0 {
		// lru.New only fails for a non-positive size.
		s.cache, _ = lru.New[lookupKey, json.RawMessage](cacheSize)
	}
	return s
}
