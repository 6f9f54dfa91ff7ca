package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/errgroup"

	"github.com/heartmarshall/inflective/internal/adapter/kaikki"
	"github.com/heartmarshall/inflective/internal/adapter/postgres"
	"github.com/heartmarshall/inflective/internal/adapter/postgres/lexicon"
	"github.com/heartmarshall/inflective/internal/adapter/postgres/registry"
	"github.com/heartmarshall/inflective/internal/app/seeder"
	"github.com/heartmarshall/inflective/internal/config"
	"github.com/heartmarshall/inflective/internal/domain"
	lexiconsvc "github.com/heartmarshall/inflective/internal/service/lexicon"
	"github.com/heartmarshall/inflective/internal/transport/middleware"
	"github.com/heartmarshall/inflective/internal/transport/rest"
	"github.com/heartmarshall/inflective/migrations"
)

// App owns the database pool and the repositories shared by every command.
type App struct {
	cfg      *config.Config
	log      *slog.Logger
	build    domain.Version
	pool     *pgxpool.Pool
	txm      *postgres.TxManager
	entries  *lexicon.Repo
	registry *registry.Repo
}

// New connects to the database and applies pending migrations.
// Call Close when done.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	build, err := SemVer()
	if err != nil {
		return nil, err
	}

	pool, err := postgres.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	if err := postgres.Migrate(ctx, pool, migrations.FS, logger); err != nil {
		pool.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	txm := postgres.NewTxManager(pool)
	return &App{
		cfg:      cfg,
		log:      logger,
		build:    build,
		pool:     pool,
		txm:      txm,
		entries:  lexicon.New(pool, txm),
		registry: registry.New(pool),
	}, nil
}

// Close releases the database pool.
func (a *App) Close() {
	a.pool.Close()
}

// Upgrade reinstalls one language and returns the per-phase results.
func (a *App) Upgrade(ctx context.Context, code string, dryRun bool) (map[string]seeder.PhaseResult, error) {
	pipeline := seeder.NewPipeline(
		a.log,
		a.entries,
		a.registry,
		kaikki.NewFetcher(a.cfg.Import, a.log),
		a.txm,
		seeder.NewConfig(a.cfg.Import, a.build, dryRun),
	)
	err := pipeline.Upgrade(ctx, code)
	return pipeline.Results(), err
}

// Lexicon returns the read-side service.
func (a *App) Lexicon() *lexiconsvc.Service {
	return lexiconsvc.NewService(a.log, a.entries, a.registry, a.build, a.cfg.Server.MaxSearchLimit, a.cfg.Server.LookupCacheSize)
}

// Handler builds the HTTP handler with every route and middleware wired.
// The returned stop function releases the search rate limiter.
func (a *App) Handler() (http.Handler, func()) {
	var limiter *middleware.RateLimiter
	stop := func() {}
	if rate := a.cfg.Server.SearchRatePerMinute; rate > 0 {
		limiter = middleware.NewRateLimiter(rate, time.Minute)
		stop = limiter.Stop
	}

	handler := rest.NewRouter(rest.RouterDeps{
		Logger:        a.log,
		Health:        rest.NewHealthHandler(a.pool, a.registry, Version, a.log),
		Lexicon:       rest.NewLexiconHandler(a.Lexicon(), a.log),
		SearchLimiter: limiter,
		CORS:          a.cfg.CORS,
	})
	return handler, stop
}

// Serve runs the HTTP server until ctx is canceled, then shuts it down
// gracefully. A non-zero port overrides the configured one.
func (a *App) Serve(ctx context.Context, port int) error {
	if port == 0 {
		port = a.cfg.Server.Port
	}

	handler, stop := a.Handler()
	defer stop()

	srv := &http.Server{
		Addr:         net.JoinHostPort(a.cfg.Server.Host, strconv.Itoa(port)),
		Handler:      handler,
		ReadTimeout:  a.cfg.Server.ReadTimeout,
		WriteTimeout: a.cfg.Server.WriteTimeout,
		IdleTimeout:  a.cfg.Server.IdleTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.log.Info("http server listening",
			slog.String("addr", srv.Addr),
			slog.String("version", BuildVersion()),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		a.log.Info("shutting down http server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	})

	return g.Wait()
}
