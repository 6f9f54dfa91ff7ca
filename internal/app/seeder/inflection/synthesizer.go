// Package inflection synthesizes stub entries for inflected spellings that
// appear in declension and conjugation tables but are not headwords of
// their own, so that looking such a spelling up returns a pointer back to
// the headword it belongs to.
package inflection

import (
	"bytes"
	"cmp"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/heartmarshall/inflective/internal/domain"
	"github.com/heartmarshall/inflective/internal/seeder/wiktionary"
)

// Store is the subset of the Entry Store the synthesizer needs.
// Implemented by lexicon.Repo.
type Store interface {
	// LookupExact returns domain.ErrNotFound when (word, pos) is not stored.
	LookupExact(ctx context.Context, code, word, pos string) (domain.Entry, error)
	InsertEntry(ctx context.Context, code string, e domain.Entry) error
}

// Stats summarizes one synthesizer run.
type Stats struct {
	Forms    int // table-derived forms seen
	Rejected int // malformed form elements ignored
	Groups   int // distinct (surface, part of speech) pairs
	Existing int // pairs already stored, left alone
	Inserted int // stub entries written
}

// candidate is one table-derived form together with the entry that lists it.
type candidate struct {
	surface  string
	pos      string
	headword string
	tags     []string
}

// Synthesizer writes form-of stub entries for a language.
type Synthesizer struct {
	store Store
	log   *slog.Logger
}

// New creates a Synthesizer.
func New(store Store, logger *slog.Logger) *Synthesizer {
	return &Synthesizer{store: store, log: logger.With("component", "inflection")}
}

// Run scans the forms of every entry and, for each (surface, part of speech)
// pair that is not yet stored, inserts one stub entry with a sense per
// contributing form. Pairs are processed in surface order and each is
// checked against the store right before writing, so a second run over the
// same entries inserts nothing.
func (s *Synthesizer) Run(ctx context.Context, code string, entries []domain.Entry) (Stats, error) {
	var stats Stats

	cands := make([]candidate, 0, len(entries))
	for _, e := range entries {
		forms, rejected := wiktionary.TableForms(e)
		stats.Rejected += len(rejected)
		for _, err := range rejected {
			s.log.DebugContext(ctx, "form ignored",
				slog.String("word", e.Word),
				slog.String("error", err.Error()),
			)
		}
		for _, f := range forms {
			cands = append(cands, candidate{
				surface:  f.Surface,
				pos:      e.PartOfSpeech,
				headword: e.Word,
				tags:     f.Tags,
			})
		}
	}
	stats.Forms = len(cands)

	// Stable so senses keep the order in which their forms were listed.
	slices.SortStableFunc(cands, func(a, b candidate) int {
		return cmp.Or(strings.Compare(a.surface, b.surface), strings.Compare(a.pos, b.pos))
	})

	for group := range groups(cands) {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		stats.Groups++

		surface, pos := group[0].surface, group[0].pos

		_, err := s.store.LookupExact(ctx, code, surface, pos)
		switch {
		case err == nil:
			stats.Existing++
			continue
		case !errors.Is(err, domain.ErrNotFound):
			return stats, fmt.Errorf("lookup %q (%s): %w", surface, pos, err)
		}

		payload, err := stubPayload(surface, pos, group)
		if err != nil {
			return stats, err
		}

		stub := domain.Entry{Word: surface, PartOfSpeech: pos, Payload: payload}
		if err := s.store.InsertEntry(ctx, code, stub); err != nil {
			return stats, fmt.Errorf("insert stub %q (%s): %w", surface, pos, err)
		}
		stats.Inserted++
	}

	return stats, nil
}

// groups yields runs of adjacent candidates sharing surface and part of speech.
func groups(cands []candidate) func(yield func([]candidate) bool) {
	return func(yield func([]candidate) bool) {
		for start := 0; start < len(cands); {
			end := start + 1
			for end < len(cands) && cands[end].surface == cands[start].surface && cands[end].pos == cands[start].pos {
				end++
			}
			if !yield(cands[start:end]) {
				return
			}
			start = end
		}
	}
}

// stubPayload renders the payload of a synthesized entry: one form-of sense
// per contributing form, glossed by the form's tags.
func stubPayload(surface, pos string, group []candidate) ([]byte, error) {
	stub := domain.StubPayload{
		POS:    pos,
		Word:   surface,
		Senses: make([]domain.StubSense, 0, len(group)),
	}
	for _, c := range group {
		tags := make([]string, 0, len(c.tags)+2)
		tags = append(tags, c.tags...)
		tags = append(tags, domain.TagFormOf, domain.TagAutoGenerated)

		stub.Senses = append(stub.Senses, domain.StubSense{
			FormOf:  []domain.FormOfRef{{Word: c.headword}},
			Glosses: []string{strings.Join(c.tags, " ")},
			Tags:    tags,
		})
	}

	// Export payloads are stored verbatim, so "<", ">" and "&" stay literal
	// here too instead of becoming \u003c escapes.
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(stub); err != nil {
		return nil, fmt.Errorf("marshal stub %q: %w", surface, err)
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}
