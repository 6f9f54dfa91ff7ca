// Package seeder orchestrates a language upgrade: fetch the export, parse it,
// rebuild the language's tables, synthesize inflection stubs and stamp the
// version registry.
package seeder

import (
	"context"

	"github.com/heartmarshall/inflective/internal/app/seeder/inflection"
	"github.com/heartmarshall/inflective/internal/domain"
)

// EntryStore is the Entry Store contract consumed by the pipeline.
// Implemented by lexicon.Repo.
type EntryStore interface {
	ResetLanguage(ctx context.Context, code string) error
	InsertTypes(ctx context.Context, code string, names []string) (int, error)
	InsertEntries(ctx context.Context, code string, entries []domain.Entry) (int, error)
	inflection.Store
}

// Registry is the Version Registry contract. Implemented by registry.Repo.
type Registry interface {
	Delete(ctx context.Context, code string) (bool, error)
	Insert(ctx context.Context, rec domain.LanguageRecord) error
}

// ExportSource resolves the local path of a language export, downloading it
// if needed. Implemented by kaikki.Fetcher.
type ExportSource interface {
	EnsureExport(ctx context.Context, lang domain.Language) (path string, fetched bool, err error)
}

// TxRunner runs fn inside one database transaction.
// Implemented by postgres.TxManager.
type TxRunner interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}
