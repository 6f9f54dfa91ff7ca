// Package registry implements the Version Registry: one row per installed
// language recording the build version that imported it.
package registry

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/heartmarshall/inflective/internal/adapter/postgres"
	"github.com/heartmarshall/inflective/internal/domain"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

var columns = []string{"code", "name", "major", "minor", "patch", "installed_at"}

// Repo provides registry persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new registry repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// Get returns the registry row of the language.
// Returns domain.ErrNotFound if the language is not installed.
func (r *Repo) Get(ctx context.Context, code string) (domain.LanguageRecord, error) {
	query, args, err := psql.Select(columns...).From("langs").Where(sq.Eq{"code": code}).ToSql()
	if err != nil {
		return domain.LanguageRecord{}, fmt.Errorf("build get query: %w", err)
	}

	q := postgres.QuerierFromCtx(ctx, r.pool)
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return domain.LanguageRecord{}, postgres.MapError(err, "langs", code)
	}

	rec, err := pgx.CollectExactlyOneRow(rows, scanRecord)
	if err != nil {
		return domain.LanguageRecord{}, postgres.MapError(err, "langs", code)
	}
	return rec, nil
}

// ListInstalled returns every installed language sorted by display name.
func (r *Repo) ListInstalled(ctx context.Context) ([]domain.LanguageRecord, error) {
	query, args, err := psql.Select(columns...).From("langs").OrderBy("name", "code").ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list query: %w", err)
	}

	q := postgres.QuerierFromCtx(ctx, r.pool)
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, postgres.MapError(err, "langs", "*")
	}

	recs, err := pgx.CollectRows(rows, scanRecord)
	if err != nil {
		return nil, postgres.MapError(err, "langs", "*")
	}
	return recs, nil
}

// Insert stamps the language as installed. A zero InstalledAt means now.
// Returns domain.ErrAlreadyExists if the language already has a row.
func (r *Repo) Insert(ctx context.Context, rec domain.LanguageRecord) error {
	installedAt := rec.InstalledAt
	if installedAt.IsZero() {
		installedAt = time.Now().UTC()
	}

	query, args, err := psql.Insert("langs").
		Columns(columns...).
		Values(rec.Code, rec.Name, rec.Version.Major, rec.Version.Minor, rec.Version.Patch, installedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert query: %w", err)
	}

	q := postgres.QuerierFromCtx(ctx, r.pool)
	if _, err := q.Exec(ctx, query, args...); err != nil {
		return postgres.MapError(err, "langs", rec.Code)
	}
	return nil
}

// Delete removes the language row. Deleting a language that is not
// installed is not an error. Returns whether a row was removed.
func (r *Repo) Delete(ctx context.Context, code string) (bool, error) {
	query, args, err := psql.Delete("langs").Where(sq.Eq{"code": code}).ToSql()
	if err != nil {
		return false, fmt.Errorf("build delete query: %w", err)
	}

	q := postgres.QuerierFromCtx(ctx, r.pool)
	tag, err := q.Exec(ctx, query, args...)
	if err != nil {
		return false, postgres.MapError(err, "langs", code)
	}
	return tag.RowsAffected() > 0, nil
}

func scanRecord(row pgx.CollectableRow) (domain.LanguageRecord, error) {
	var rec domain.LanguageRecord
	err := row.Scan(
		&rec.Code, &rec.Name,
		&rec.Version.Major, &rec.Version.Minor, &rec.Version.Patch,
		&rec.InstalledAt,
	)
	return rec, err
}
