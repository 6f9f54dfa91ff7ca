package lexicon

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/heartmarshall/inflective/internal/domain"
)

// LookupWord returns every stored payload for word as one JSON array, in
// storage order. Payloads are spliced in as stored, never re-encoded. An
// unknown word yields an empty array; a language that is not installed
// yields domain.ErrNotFound. The word is matched byte for byte.
func (s *Service) LookupWord(ctx context.Context, code, word string) (json.RawMessage, error) {
	rec, err := s.requireInstalled(ctx, code)
	if err != nil {
		return nil, err
	}

	key := lookupKey{code: code, word: word, installedAt: rec.InstalledAt.UnixNano()}
	if s.cache != nil {
		if body, ok := s.cache.Get(key); ok {
			return body, nil
		}
	}

	entries, err := s.entries.LookupByWord(ctx, code, word)
	if err != nil {
		return nil, fmt.Errorf("lookup %q: %w", word, err)
	}

	s.log.DebugContext(ctx, "word lookup",
		slog.String("language", code),
		slog.String("word", word),
		slog.Int("entries", len(entries)),
	)

	body := joinPayloads(entries)
	if s.cache != nil {
		s.cache.Add(key, body)
	}
	return body, nil
}

// Search returns distinct words of the language containing pattern,
// shortest first. limit defaults to DefaultSearchLimit when zero and must
// not exceed the configured maximum.
func (s *Service) Search(ctx context.Context, code, pattern string, limit, offset int) ([]string, error) {
	if limit == 0 {
		limit = DefaultSearchLimit
	}
	if limit < 0 || limit > s.maxLimit {
		return nil, fmt.Errorf("limit must be in 1..%d (got %d): %w", s.maxLimit, limit, domain.ErrValidation)
	}
	if offset < 0 {
		return nil, fmt.Errorf("offset must be >= 0 (got %d): %w", offset, domain.ErrValidation)
	}

	if _, err := s.requireInstalled(ctx, code); err != nil {
		return nil, err
	}

	words, err := s.entries.LookupBySubstring(ctx, code, pattern, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("search %q: %w", pattern, err)
	}
	if words == nil {
		words = []string{}
	}
	return words, nil
}

func (s *Service) requireInstalled(ctx context.Context, code string) (domain.LanguageRecord, error) {
	if err := domain.ValidateLanguageCode(code); err != nil {
		return domain.LanguageRecord{}, err
	}
	rec, err := s.registry.Get(ctx, code)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.LanguageRecord{}, fmt.Errorf("language %q is not installed: %w", code, domain.ErrNotFound)
		}
		return domain.LanguageRecord{}, err
	}
	return rec, nil
}

func joinPayloads(entries []domain.Entry) json.RawMessage {
	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, e := range entries {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.Write(e.Payload)
	}
	buf.WriteByte(']')
	return buf.Bytes()
}
