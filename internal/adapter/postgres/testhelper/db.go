// Package testhelper starts a throwaway PostgreSQL for adapter tests.
package testhelper

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/heartmarshall/inflective/internal/adapter/postgres"
	"github.com/heartmarshall/inflective/migrations"
)

const (
	// ReadOnlyRole may connect and read but cannot create or drop relations.
	ReadOnlyRole     = "inflective_reader"
	readOnlyPassword = "readerpass"
)

var (
	once    sync.Once
	shared  dbAddr
	initErr error
)

type dbAddr struct {
	host string
	port string
}

func (a dbAddr) dsn(user, password string) string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/testdb?sslmode=disable", user, password, a.host, a.port)
}

// SetupTestDB starts a shared PostgreSQL container (once for the entire test run),
// applies goose migrations, and returns a new pgxpool.Pool connected to it as
// the owner role. The pool is closed via t.Cleanup; the container lives until
// the process exits.
func SetupTestDB(t *testing.T) *pgxpool.Pool {
	t.Helper()
	return connect(t, DSN(t))
}

// SetupReadOnlyDB returns a pool on the same database logged in as
// ReadOnlyRole. Any DDL issued through it fails with insufficient_privilege.
func SetupReadOnlyDB(t *testing.T) *pgxpool.Pool {
	t.Helper()
	ensureStarted(t)
	return connect(t, shared.dsn(ReadOnlyRole, readOnlyPassword))
}

// DSN starts the shared container if needed and returns the owner DSN, for
// tests that build their own pool from configuration.
func DSN(t *testing.T) string {
	t.Helper()
	ensureStarted(t)
	return shared.dsn("testuser", "testpass")
}

// UniqueLanguage returns a language code no other test uses, so adapter tests
// can run in parallel against the shared database.
func UniqueLanguage(prefix string) string {
	return prefix + "_" + uuid.New().String()[:8]
}

func connect(t *testing.T, dsn string) *pgxpool.Pool {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Fatalf("testhelper: failed to create pgxpool: %v", err)
	}

	t.Cleanup(func() {
		pool.Close()
	})

	return pool
}

func ensureStarted(t *testing.T) {
	t.Helper()
	once.Do(func() {
		shared, initErr = startContainerAndMigrate()
	})
	if initErr != nil {
		t.Fatalf("testhelper: failed to setup test DB: %v", initErr)
	}
}

func startContainerAndMigrate() (dbAddr, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
	defer cancel()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:17-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "testuser",
			"POSTGRES_PASSWORD": "testpass",
			"POSTGRES_DB":       "testdb",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return dbAddr{}, fmt.Errorf("start container: %w", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		return dbAddr{}, fmt.Errorf("get container host: %w", err)
	}

	port, err := container.MappedPort(ctx, "5432")
	if err != nil {
		return dbAddr{}, fmt.Errorf("get mapped port: %w", err)
	}

	addr := dbAddr{host: host, port: port.Port()}

	pool, err := pgxpool.New(ctx, addr.dsn("testuser", "testpass"))
	if err != nil {
		return dbAddr{}, fmt.Errorf("connect: %w", err)
	}
	defer pool.Close()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	if err := postgres.Migrate(ctx, pool, migrations.FS, logger); err != nil {
		return dbAddr{}, err
	}

	// PostgreSQL 15+ no longer grants CREATE on schema public to everyone,
	// so a plain login role is enough to provoke insufficient_privilege.
	stmts := []string{
		fmt.Sprintf(`CREATE ROLE %s LOGIN PASSWORD '%s'`, ReadOnlyRole, readOnlyPassword),
		fmt.Sprintf(`GRANT USAGE ON SCHEMA public TO %s`, ReadOnlyRole),
		fmt.Sprintf(`ALTER DEFAULT PRIVILEGES IN SCHEMA public GRANT SELECT ON TABLES TO %s`, ReadOnlyRole),
		fmt.Sprintf(`GRANT SELECT ON ALL TABLES IN SCHEMA public TO %s`, ReadOnlyRole),
	}
	for _, stmt := range stmts {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return dbAddr{}, fmt.Errorf("setup read-only role: %w", err)
		}
	}

	return addr, nil
}
