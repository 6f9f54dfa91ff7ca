package seeder_test

import (
	"github.com/heartmarshall/inflective/internal/adapter/kaikki"
	"github.com/heartmarshall/inflective/internal/adapter/postgres"
	"github.com/heartmarshall/inflective/internal/adapter/postgres/lexicon"
	"github.com/heartmarshall/inflective/internal/adapter/postgres/registry"
	"github.com/heartmarshall/inflective/internal/app/seeder"
)

// Compile-time checks: the adapters must satisfy the pipeline contracts.
var (
	_ seeder.EntryStore   = (*lexicon.Repo)(nil)
	_ seeder.Registry     = (*registry.Repo)(nil)
	_ seeder.ExportSource = (*kaikki.Fetcher)(nil)
	_ seeder.TxRunner     = (*postgres.TxManager)(nil)
)
