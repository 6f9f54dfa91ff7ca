package inflection

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heartmarshall/inflective/internal/domain"
)

// memStore is an in-memory Store keyed by (word, pos).
type memStore struct {
	rows      []domain.Entry
	lookupErr error
	insertErr error
}

func (m *memStore) LookupExact(_ context.Context, _, word, pos string) (domain.Entry, error) {
	if m.lookupErr != nil {
		return domain.Entry{}, m.lookupErr
	}
	for _, e := range m.rows {
		if e.Word == word && e.PartOfSpeech == pos {
			return e, nil
		}
	}
	return domain.Entry{}, domain.ErrNotFound
}

func (m *memStore) InsertEntry(_ context.Context, _ string, e domain.Entry) error {
	if m.insertErr != nil {
		return m.insertErr
	}
	m.rows = append(m.rows, e)
	return nil
}

func (m *memStore) find(word, pos string) []domain.Entry {
	var out []domain.Entry
	for _, e := range m.rows {
		if e.Word == word && e.PartOfSpeech == pos {
			out = append(out, e)
		}
	}
	return out
}

func newSynth(store Store) *Synthesizer {
	return New(store, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func mkEntry(word, pos, payload string) domain.Entry {
	return domain.Entry{Word: word, PartOfSpeech: pos, Payload: []byte(payload)}
}

var biec = mkEntry("biec", "verb", `{"word":"biec","pos":"verb","forms":[
	{"form":"biegę","tags":["first-person","singular","present"],"source":"Conjugation"},
	{"form":"biegę","tags":["first-person","singular","future"],"source":"Conjugation"},
	{"form":"bieżysz","tags":["second-person","singular","present"]},
	{"form":"biegł","tags":["masculine","past"],"source":"Conjugation"}
]}`)

func decodeStub(t *testing.T, e domain.Entry) domain.StubPayload {
	t.Helper()
	var stub domain.StubPayload
	require.NoError(t, json.Unmarshal(e.Payload, &stub))
	return stub
}

func TestRun_GroupsFormsIntoOneStub(t *testing.T) {
	t.Parallel()

	store := &memStore{rows: []domain.Entry{biec}}
	stats, err := newSynth(store).Run(context.Background(), "polish", []domain.Entry{biec})
	require.NoError(t, err)

	assert.Equal(t, 3, stats.Forms)
	assert.Equal(t, 2, stats.Groups)
	assert.Equal(t, 2, stats.Inserted)

	got := store.find("biegę", "verb")
	require.Len(t, got, 1)

	stub := decodeStub(t, got[0])
	assert.Equal(t, "verb", stub.POS)
	assert.Equal(t, "biegę", stub.Word)
	require.Len(t, stub.Senses, 2)

	assert.Equal(t, []domain.FormOfRef{{Word: "biec"}}, stub.Senses[0].FormOf)
	assert.Equal(t, []string{"first-person singular present"}, stub.Senses[0].Glosses)
	assert.Equal(t, []string{"first-person", "singular", "present", "form-of", "auto-generated"}, stub.Senses[0].Tags)
	assert.Equal(t, []string{"first-person singular future"}, stub.Senses[1].Glosses)

	assert.Empty(t, store.find("bieżysz", "verb"), "free-text forms are not synthesized")
}

func TestRun_PayloadFieldNames(t *testing.T) {
	t.Parallel()

	store := &memStore{}
	_, err := newSynth(store).Run(context.Background(), "polish", []domain.Entry{biec})
	require.NoError(t, err)

	got := store.find("biegł", "verb")
	require.Len(t, got, 1)
	assert.JSONEq(t, `{
		"pos":"verb","word":"biegł",
		"senses":[{"form_of":[{"word":"biec"}],"glosses":["masculine past"],"tags":["masculine","past","form-of","auto-generated"]}]
	}`, string(got[0].Payload))
}

func TestRun_PayloadKeepsMarkupLiteral(t *testing.T) {
	t.Parallel()

	amp := mkEntry("R&D", "noun", `{"word":"R&D","pos":"noun","forms":[
		{"form":"R&Ds","tags":["<plural>"],"source":"Declension"}
	]}`)
	store := &memStore{}
	_, err := newSynth(store).Run(context.Background(), "polish", []domain.Entry{amp})
	require.NoError(t, err)

	got := store.find("R&Ds", "noun")
	require.Len(t, got, 1)

	payload := string(got[0].Payload)
	assert.Contains(t, payload, `"word":"R&Ds"`)
	assert.Contains(t, payload, `"glosses":["<plural>"]`)
	assert.NotContains(t, payload, `\u0026`)
	assert.NotContains(t, payload, `\u003c`)
	assert.False(t, strings.HasSuffix(payload, "\n"), "no trailing newline from the encoder")
}

func TestRun_Idempotent(t *testing.T) {
	t.Parallel()

	store := &memStore{rows: []domain.Entry{biec}}
	s := newSynth(store)

	_, err := s.Run(context.Background(), "polish", []domain.Entry{biec})
	require.NoError(t, err)
	before := len(store.rows)

	stats, err := s.Run(context.Background(), "polish", []domain.Entry{biec})
	require.NoError(t, err)
	assert.Equal(t, 0, stats.Inserted)
	assert.Equal(t, stats.Groups, stats.Existing)
	assert.Len(t, store.rows, before)
}

func TestRun_ExistingHeadwordWins(t *testing.T) {
	t.Parallel()

	bieg := mkEntry("bieg", "noun", `{"word":"bieg","pos":"noun","forms":[
		{"form":"bieg","tags":["nominative","singular"],"source":"Declension"},
		{"form":"biegu","tags":["genitive","singular"],"source":"Declension"}
	]}`)
	store := &memStore{rows: []domain.Entry{bieg}}

	stats, err := newSynth(store).Run(context.Background(), "polish", []domain.Entry{bieg})
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Existing)
	assert.Equal(t, 1, stats.Inserted)

	got := store.find("bieg", "noun")
	require.Len(t, got, 1)
	assert.Equal(t, bieg.Payload, got[0].Payload, "headword must not be replaced by a stub")
}

func TestRun_GroupsPerPartOfSpeechAcrossEntries(t *testing.T) {
	t.Parallel()

	noun := mkEntry("bieg", "noun", `{"forms":[{"form":"biegi","tags":["plural"],"source":"Declension"}]}`)
	verb := mkEntry("biegać", "verb", `{"forms":[{"form":"biegi","tags":["imperative"],"source":"Conjugation"}]}`)
	noun2 := mkEntry("bieg", "noun", `{"forms":[{"form":"biegi","tags":["accusative","plural"],"source":"Declension"}]}`)

	store := &memStore{}
	stats, err := newSynth(store).Run(context.Background(), "polish", []domain.Entry{noun, verb, noun2})
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Inserted)

	nouns := store.find("biegi", "noun")
	require.Len(t, nouns, 1)
	stub := decodeStub(t, nouns[0])
	require.Len(t, stub.Senses, 2)
	assert.Equal(t, []string{"plural"}, stub.Senses[0].Glosses)
	assert.Equal(t, []string{"accusative plural"}, stub.Senses[1].Glosses)

	verbs := store.find("biegi", "verb")
	require.Len(t, verbs, 1)
	assert.Len(t, decodeStub(t, verbs[0]).Senses, 1)
}

func TestRun_FormsMissingOrMalformed(t *testing.T) {
	t.Parallel()

	entries := []domain.Entry{
		mkEntry("a", "noun", `{"word":"a","pos":"noun"}`),
		mkEntry("b", "noun", `{"word":"b","pos":"noun","forms":"not-a-list"}`),
		mkEntry("c", "noun", `{"word":"c","pos":"noun","forms":[7,{"form":"cc","tags":"x","source":"Declension"},{"form":"cd","source":"Declension"}]}`),
	}

	store := &memStore{}
	stats, err := newSynth(store).Run(context.Background(), "polish", entries)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Rejected)
	assert.Equal(t, 1, stats.Inserted)

	got := store.find("cd", "noun")
	require.Len(t, got, 1)
	stub := decodeStub(t, got[0])
	assert.Equal(t, []string{""}, stub.Senses[0].Glosses)
	assert.Equal(t, []string{"form-of", "auto-generated"}, stub.Senses[0].Tags)
}

func TestRun_StoreErrors(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")

	_, err := newSynth(&memStore{lookupErr: boom}).Run(context.Background(), "polish", []domain.Entry{biec})
	assert.ErrorIs(t, err, boom)

	_, err = newSynth(&memStore{insertErr: domain.ErrMissingPartOfSpeech}).Run(context.Background(), "polish", []domain.Entry{biec})
	assert.ErrorIs(t, err, domain.ErrMissingPartOfSpeech)
}

func TestRun_ContextCanceled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	store := &memStore{}
	_, err := newSynth(store).Run(ctx, "polish", []domain.Entry{biec})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, store.rows)
}
