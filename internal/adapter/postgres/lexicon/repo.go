// Package lexicon implements the Entry Store: for every language a catalog of
// part-of-speech tags and a table of (word, part of speech, payload) rows.
//
// Each language owns two relations, <code>_types and <code>_words, which are
// dropped and recreated wholesale by ResetLanguage. Payloads are stored as
// text exactly as they appeared in the export.
package lexicon

import (
	"context"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/heartmarshall/inflective/internal/adapter/postgres"
	"github.com/heartmarshall/inflective/internal/domain"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// Repo provides Entry Store persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
	txm  *postgres.TxManager
}

// New creates a new Entry Store repository.
func New(pool *pgxpool.Pool, txm *postgres.TxManager) *Repo {
	return &Repo{pool: pool, txm: txm}
}

// ---------------------------------------------------------------------------
// Schema
// ---------------------------------------------------------------------------

// ResetLanguage drops both relations of the language (if present) and
// recreates them empty. Calling it repeatedly yields the same empty state.
// A role without DDL rights gets domain.ErrPermissionDenied and the
// relations of other languages are left untouched.
func (r *Repo) ResetLanguage(ctx context.Context, code string) error {
	t, err := tablesFor(code)
	if err != nil {
		return err
	}

	return r.txm.RunInTx(ctx, func(txCtx context.Context) error {
		q := postgres.QuerierFromCtx(txCtx, r.pool)
		for _, stmt := range t.ddl() {
			if _, err := q.Exec(txCtx, stmt); err != nil {
				return postgres.MapError(err, "language", code)
			}
		}
		return nil
	})
}

// ---------------------------------------------------------------------------
// Write operations
// ---------------------------------------------------------------------------

// InsertTypes adds part-of-speech tags to the language catalog using
// pgx.Batch. A tag that is already present yields domain.ErrAlreadyExists.
// Returns the number of inserted tags.
func (r *Repo) InsertTypes(ctx context.Context, code string, names []string) (int, error) {
	t, err := tablesFor(code)
	if err != nil {
		return 0, err
	}
	if len(names) == 0 {
		return 0, nil
	}

	stmt := fmt.Sprintf(`INSERT INTO %s (name) VALUES ($1)`, t.types)

	batch := &pgx.Batch{}
	for _, name := range names {
		batch.Queue(stmt, name)
	}

	n, err := r.sendBatch(ctx, batch)
	if err != nil {
		return n, postgres.MapError(err, t.types, code)
	}
	return n, nil
}

// InsertEntry stores one entry, resolving its part of speech through the
// catalog. A tag missing from the catalog yields domain.ErrMissingPartOfSpeech.
func (r *Repo) InsertEntry(ctx context.Context, code string, e domain.Entry) error {
	t, err := tablesFor(code)
	if err != nil {
		return err
	}

	q := postgres.QuerierFromCtx(ctx, r.pool)
	tag, err := q.Exec(ctx, t.insertEntrySQL(), e.Word, e.PartOfSpeech, string(e.Payload))
	if err != nil {
		return postgres.MapError(err, t.words, e.Word)
	}
	if tag.RowsAffected() == 0 {
		return missingPOS(e)
	}
	return nil
}

// InsertEntries stores entries with a single pgx.Batch round trip. It stops
// at the first entry whose part of speech is not catalogued. Returns the
// number of stored rows.
func (r *Repo) InsertEntries(ctx context.Context, code string, entries []domain.Entry) (int, error) {
	t, err := tablesFor(code)
	if err != nil {
		return 0, err
	}
	if len(entries) == 0 {
		return 0, nil
	}

	stmt := t.insertEntrySQL()
	batch := &pgx.Batch{}
	for _, e := range entries {
		batch.Queue(stmt, e.Word, e.PartOfSpeech, string(e.Payload))
	}

	q := postgres.QuerierFromCtx(ctx, r.pool)
	results := q.SendBatch(ctx, batch)
	defer results.Close()

	var inserted int
	for _, e := range entries {
		tag, err := results.Exec()
		if err != nil {
			return inserted, postgres.MapError(err, t.words, e.Word)
		}
		if tag.RowsAffected() == 0 {
			return inserted, missingPOS(e)
		}
		inserted++
	}

	return inserted, nil
}

func (t tables) insertEntrySQL() string {
	return fmt.Sprintf(
		`INSERT INTO %s (word, type_id, content)
		 SELECT $1, t.id, $3 FROM %s t WHERE t.name = $2`,
		t.words, t.types,
	)
}

func missingPOS(e domain.Entry) error {
	return fmt.Errorf("word %q: part of speech %q: %w", e.Word, e.PartOfSpeech, domain.ErrMissingPartOfSpeech)
}

func (r *Repo) sendBatch(ctx context.Context, batch *pgx.Batch) (int, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)
	results := q.SendBatch(ctx, batch)
	defer results.Close()

	var inserted int
	for range batch.Len() {
		tag, err := results.Exec()
		if err != nil {
			return inserted, fmt.Errorf("batch exec: %w", err)
		}
		inserted += int(tag.RowsAffected())
	}

	return inserted, nil
}

// ---------------------------------------------------------------------------
// Read operations
// ---------------------------------------------------------------------------

// LookupExact returns the first stored entry with exactly this surface and
// part of speech. Served by the (word, type_id) index.
// Returns domain.ErrNotFound if there is none.
func (r *Repo) LookupExact(ctx context.Context, code, word, pos string) (domain.Entry, error) {
	t, err := tablesFor(code)
	if err != nil {
		return domain.Entry{}, err
	}

	query := fmt.Sprintf(
		`SELECT w.word, ty.name, w.content
		 FROM %s w JOIN %s ty ON ty.id = w.type_id
		 WHERE w.word = $1 AND ty.name = $2
		 ORDER BY w.id
		 LIMIT 1`,
		t.words, t.types,
	)

	var (
		e       domain.Entry
		content string
	)
	q := postgres.QuerierFromCtx(ctx, r.pool)
	if err := q.QueryRow(ctx, query, word, pos).Scan(&e.Word, &e.PartOfSpeech, &content); err != nil {
		return domain.Entry{}, postgres.MapError(err, t.words, word)
	}
	e.Payload = []byte(content)

	return e, nil
}

// LookupByWord returns every entry stored under the surface, across all
// parts of speech, in insertion order. Duplicate headwords come back as
// separate entries. Returns an empty slice when nothing matches.
func (r *Repo) LookupByWord(ctx context.Context, code, word string) ([]domain.Entry, error) {
	t, err := tablesFor(code)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(
		`SELECT w.word, ty.name, w.content
		 FROM %s w JOIN %s ty ON ty.id = w.type_id
		 WHERE w.word = $1
		 ORDER BY w.id`,
		t.words, t.types,
	)

	q := postgres.QuerierFromCtx(ctx, r.pool)
	rows, err := q.Query(ctx, query, word)
	if err != nil {
		return nil, postgres.MapError(err, t.words, word)
	}

	entries, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Entry, error) {
		var (
			e       domain.Entry
			content string
		)
		if err := row.Scan(&e.Word, &e.PartOfSpeech, &content); err != nil {
			return domain.Entry{}, err
		}
		e.Payload = []byte(content)
		return e, nil
	})
	if err != nil {
		return nil, postgres.MapError(err, t.words, word)
	}

	return entries, nil
}

// LookupBySubstring returns distinct stored words containing pattern,
// shortest first, ties broken by the word's byte order. The pattern is
// matched literally: LIKE metacharacters in it are escaped.
func (r *Repo) LookupBySubstring(ctx context.Context, code, pattern string, limit, offset int) ([]string, error) {
	t, err := tablesFor(code)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		return []string{}, nil
	}
	if offset < 0 {
		offset = 0
	}

	query, args, err := psql.
		Select("word").
		From(t.words).
		Where(`word LIKE ? ESCAPE '\'`, "%"+escapeLike(pattern)+"%").
		GroupBy("word").
		OrderBy("length(word)", `word COLLATE "C"`).
		Limit(uint64(limit)).
		Offset(uint64(offset)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build substring query: %w", err)
	}

	q := postgres.QuerierFromCtx(ctx, r.pool)
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, postgres.MapError(err, t.words, pattern)
	}

	words, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, postgres.MapError(err, t.words, pattern)
	}

	return words, nil
}

// CountEntries returns the number of stored rows of the language.
func (r *Repo) CountEntries(ctx context.Context, code string) (int, error) {
	t, err := tablesFor(code)
	if err != nil {
		return 0, err
	}

	var n int
	q := postgres.QuerierFromCtx(ctx, r.pool)
	if err := q.QueryRow(ctx, fmt.Sprintf(`SELECT count(*) FROM %s`, t.words)).Scan(&n); err != nil {
		return 0, postgres.MapError(err, t.words, code)
	}
	return n, nil
}

// Types returns the catalogued part-of-speech tags of the language, sorted.
func (r *Repo) Types(ctx context.Context, code string) ([]string, error) {
	t, err := tablesFor(code)
	if err != nil {
		return nil, err
	}

	q := postgres.QuerierFromCtx(ctx, r.pool)
	rows, err := q.Query(ctx, fmt.Sprintf(`SELECT name FROM %s ORDER BY name COLLATE "C"`, t.types))
	if err != nil {
		return nil, postgres.MapError(err, t.types, code)
	}

	names, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, postgres.MapError(err, t.types, code)
	}
	return names, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
