package seeder

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/inflective/internal/app/seeder/inflection"
	"github.com/heartmarshall/inflective/internal/domain"
	"github.com/heartmarshall/inflective/internal/seeder/wiktionary"
)

// Phase names in execution order.
const (
	PhaseFetch       = "fetch"
	PhaseParse       = "parse"
	PhaseReset       = "reset"
	PhaseTypes       = "types"
	PhaseWords       = "words"
	PhaseInflections = "inflections"
	PhaseStamp       = "stamp"
)

// AllPhases lists the phases of a full upgrade in execution order.
var AllPhases = []string{PhaseFetch, PhaseParse, PhaseReset, PhaseTypes, PhaseWords, PhaseInflections, PhaseStamp}

// PhaseResult holds the outcome of a single pipeline phase.
type PhaseResult struct {
	Inserted int
	Skipped  int
	Duration time.Duration
	Err      error
}

// Pipeline upgrades one language at a time. It is not safe for concurrent
// use: a single writer per database is assumed.
type Pipeline struct {
	log      *slog.Logger
	store    EntryStore
	registry Registry
	source   ExportSource
	txm      TxRunner
	synth    *inflection.Synthesizer
	cfg      Config
	results  map[string]PhaseResult
}

// NewPipeline creates a new Pipeline.
func NewPipeline(log *slog.Logger, store EntryStore, registry Registry, source ExportSource, txm TxRunner, cfg Config) *Pipeline {
	return &Pipeline{
		log:      log,
		store:    store,
		registry: registry,
		source:   source,
		txm:      txm,
		synth:    inflection.New(store, log),
		cfg:      cfg,
		results:  make(map[string]PhaseResult),
	}
}

// Results returns phase results of the last Upgrade.
func (p *Pipeline) Results() map[string]PhaseResult {
	return p.results
}

// Upgrade reinstalls the language identified by code.
//
// The export is fetched and fully parsed before anything is written, so a
// network or parse failure leaves the installed copy intact. From then on
// the registry row is removed first and written last: each phase commits on
// its own, and a language whose import stopped midway has tables but no
// registry row. Readers running during an upgrade may observe partial state.
func (p *Pipeline) Upgrade(ctx context.Context, code string) error {
	lang, err := domain.LookupLanguage(code)
	if err != nil {
		return err
	}

	p.results = make(map[string]PhaseResult)
	log := p.log.With(slog.String("language", lang.Code), slog.String("run_id", uuid.NewString()))
	log.Info("upgrade started", slog.String("version", p.cfg.Version.String()), slog.Bool("dry_run", p.cfg.DryRun))
	start := time.Now()

	var path string
	err = p.phase(ctx, log, PhaseFetch, func(ctx context.Context) (PhaseResult, error) {
		cached, fetched, err := p.source.EnsureExport(ctx, lang)
		if err != nil {
			return PhaseResult{}, err
		}
		path = cached
		if !fetched {
			return PhaseResult{Skipped: 1}, nil
		}
		return PhaseResult{Inserted: 1}, nil
	})
	if err != nil {
		return err
	}

	var entries []domain.Entry
	err = p.phase(ctx, log, PhaseParse, func(context.Context) (PhaseResult, error) {
		parsed, stats, err := wiktionary.ParseFile(path)
		if err != nil {
			return PhaseResult{}, fmt.Errorf("parse %s: %w", path, err)
		}
		entries = parsed
		log.Info("export parsed", slog.Int("entries", stats.Entries), slog.Int64("bytes", stats.Bytes))
		return PhaseResult{Inserted: stats.Entries}, nil
	})
	if err != nil {
		return err
	}

	types := wiktionary.ExtractTypes(entries)

	if p.cfg.DryRun {
		log.Info("dry run: nothing written",
			slog.Int("entries", len(entries)),
			slog.Int("types", len(types)),
		)
		return nil
	}

	err = p.phase(ctx, log, PhaseReset, func(ctx context.Context) (PhaseResult, error) {
		if _, err := p.registry.Delete(ctx, lang.Code); err != nil {
			return PhaseResult{}, fmt.Errorf("delete registry row: %w", err)
		}
		if err := p.store.ResetLanguage(ctx, lang.Code); err != nil {
			return PhaseResult{}, err
		}
		return PhaseResult{}, nil
	})
	if err != nil {
		return err
	}

	err = p.phase(ctx, log, PhaseTypes, func(ctx context.Context) (PhaseResult, error) {
		n, err := p.store.InsertTypes(ctx, lang.Code, types)
		return PhaseResult{Inserted: n}, err
	})
	if err != nil {
		return err
	}

	err = p.phase(ctx, log, PhaseWords, func(ctx context.Context) (PhaseResult, error) {
		n, err := batchProcess(entries, p.cfg.BatchSize, func(batch []domain.Entry) (int, error) {
			return p.store.InsertEntries(ctx, lang.Code, batch)
		})
		return PhaseResult{Inserted: n}, err
	})
	if err != nil {
		return err
	}

	err = p.phase(ctx, log, PhaseInflections, func(ctx context.Context) (PhaseResult, error) {
		var stats inflection.Stats
		err := p.txm.RunInTx(ctx, func(txCtx context.Context) error {
			var err error
			stats, err = p.synth.Run(txCtx, lang.Code, entries)
			return err
		})
		if err != nil {
			return PhaseResult{}, err
		}
		if stats.Rejected > 0 {
			log.Warn("malformed forms ignored", slog.Int("count", stats.Rejected))
		}
		return PhaseResult{Inserted: stats.Inserted, Skipped: stats.Existing}, nil
	})
	if err != nil {
		return err
	}

	err = p.phase(ctx, log, PhaseStamp, func(ctx context.Context) (PhaseResult, error) {
		err := p.registry.Insert(ctx, domain.LanguageRecord{
			Code:    lang.Code,
			Name:    lang.Name,
			Version: p.cfg.Version,
		})
		if err != nil {
			return PhaseResult{}, fmt.Errorf("stamp registry: %w", err)
		}
		return PhaseResult{Inserted: 1}, nil
	})
	if err != nil {
		return err
	}

	log.Info("upgrade completed", slog.Duration("duration", time.Since(start)))
	return nil
}

// phase runs fn, records its result and logs its outcome. A failing phase
// aborts the upgrade.
func (p *Pipeline) phase(ctx context.Context, log *slog.Logger, name string, fn func(context.Context) (PhaseResult, error)) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	start := time.Now()
	log.Info("starting phase", slog.String("phase", name))

	result, err := fn(ctx)
	result.Duration = time.Since(start)
	result.Err = err
	p.results[name] = result

	if err != nil {
		log.Error("phase failed",
			slog.String("phase", name),
			slog.String("error", err.Error()),
			slog.Duration("duration", result.Duration),
		)
		return fmt.Errorf("%s: %w", name, err)
	}

	log.Info("phase completed",
		slog.String("phase", name),
		slog.Int("inserted", result.Inserted),
		slog.Int("skipped", result.Skipped),
		slog.Duration("duration", result.Duration),
	)
	return nil
}

// batchProcess splits items into batches and processes each via fn.
func batchProcess[T any](items []T, batchSize int, fn func([]T) (int, error)) (int, error) {
	if len(items) == 0 {
		return 0, nil
	}
	if batchSize <= 0 {
		batchSize = 500
	}

	total := 0
	for i := 0; i < len(items); i += batchSize {
		end := min(i+batchSize, len(items))
		n, err := fn(items[i:end])
		if err != nil {
			return total + n, err
		}
		total += n
	}
	return total, nil
}
