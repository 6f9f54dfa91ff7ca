package seeder

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heartmarshall/inflective/internal/domain"
	"github.com/heartmarshall/inflective/internal/seeder/wiktionary"
)

// ---------------------------------------------------------------------------
// Fakes
// ---------------------------------------------------------------------------

// callLog is shared by the fakes so tests can assert cross-component order.
type callLog struct {
	mu    sync.Mutex
	calls []string
}

func (l *callLog) add(name string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls = append(l.calls, name)
}

func (l *callLog) count(name string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for _, c := range l.calls {
		if c == name {
			n++
		}
	}
	return n
}

func (l *callLog) first() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []string
	seen := map[string]bool{}
	for _, c := range l.calls {
		if !seen[c] {
			seen[c] = true
			out = append(out, c)
		}
	}
	return out
}

type mockStore struct {
	log *callLog

	types []string
	rows  []domain.Entry

	resetErr  error
	insertErr error
}

func (m *mockStore) ResetLanguage(_ context.Context, _ string) error {
	m.log.add("ResetLanguage")
	if m.resetErr != nil {
		return m.resetErr
	}
	m.types, m.rows = nil, nil
	return nil
}

func (m *mockStore) InsertTypes(_ context.Context, _ string, names []string) (int, error) {
	m.log.add("InsertTypes")
	m.types = append(m.types, names...)
	return len(names), nil
}

func (m *mockStore) InsertEntries(_ context.Context, _ string, entries []domain.Entry) (int, error) {
	m.log.add("InsertEntries")
	if m.insertErr != nil {
		return 0, m.insertErr
	}
	m.rows = append(m.rows, entries...)
	return len(entries), nil
}

func (m *mockStore) LookupExact(_ context.Context, _, word, pos string) (domain.Entry, error) {
	m.log.add("LookupExact")
	for _, e := range m.rows {
		if e.Word == word && e.PartOfSpeech == pos {
			return e, nil
		}
	}
	return domain.Entry{}, domain.ErrNotFound
}

func (m *mockStore) InsertEntry(_ context.Context, _ string, e domain.Entry) error {
	m.log.add("InsertEntry")
	m.rows = append(m.rows, e)
	return nil
}

type mockRegistry struct {
	log      *callLog
	inserted []domain.LanguageRecord
	deleted  []string
}

func (m *mockRegistry) Delete(_ context.Context, code string) (bool, error) {
	m.log.add("Registry.Delete")
	m.deleted = append(m.deleted, code)
	return true, nil
}

func (m *mockRegistry) Insert(_ context.Context, rec domain.LanguageRecord) error {
	m.log.add("Registry.Insert")
	m.inserted = append(m.inserted, rec)
	return nil
}

type mockSource struct {
	log  *callLog
	path string
	err  error
}

func (m *mockSource) EnsureExport(_ context.Context, _ domain.Language) (string, bool, error) {
	m.log.add("EnsureExport")
	return m.path, false, m.err
}

type mockTx struct{ log *callLog }

func (m *mockTx) RunInTx(ctx context.Context, fn func(context.Context) error) error {
	m.log.add("RunInTx")
	return fn(ctx)
}

type fixture struct {
	log      *callLog
	store    *mockStore
	registry *mockRegistry
	source   *mockSource
	cfg      Config
}

func newFixture(export string) *fixture {
	log := &callLog{}
	return &fixture{
		log:      log,
		store:    &mockStore{log: log},
		registry: &mockRegistry{log: log},
		source:   &mockSource{log: log, path: filepath.Join("testdata", export)},
		cfg:      Config{BatchSize: 100, Version: domain.Version{Major: 0, Minor: 3, Patch: 1}},
	}
}

func (f *fixture) pipeline() *Pipeline {
	return NewPipeline(testLogger(), f.store, f.registry, f.source, &mockTx{log: f.log}, f.cfg)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// ---------------------------------------------------------------------------
// Upgrade
// ---------------------------------------------------------------------------

func TestPipeline_Upgrade_Sample(t *testing.T) {
	f := newFixture("Polish.json")
	p := f.pipeline()

	require.NoError(t, p.Upgrade(context.Background(), "polish"))

	assert.Equal(t, []string{"adj", "noun", "verb"}, f.store.types)
	// 5 headword rows + biegę, biegł, biegu, biegi.
	assert.Len(t, f.store.rows, 9)

	require.Len(t, f.registry.inserted, 1)
	rec := f.registry.inserted[0]
	assert.Equal(t, "polish", rec.Code)
	assert.Equal(t, "Polish", rec.Name)
	assert.Equal(t, "0.3.1", rec.Version.String())

	res := p.Results()
	assert.Equal(t, 5, res[PhaseWords].Inserted)
	assert.Equal(t, 3, res[PhaseTypes].Inserted)
	assert.Equal(t, 4, res[PhaseInflections].Inserted)
	assert.Equal(t, 1, res[PhaseFetch].Skipped, "cached export")
	for _, name := range AllPhases {
		assert.NoError(t, res[name].Err, name)
	}
}

func TestPipeline_Upgrade_PhaseOrder(t *testing.T) {
	f := newFixture("Polish.json")

	require.NoError(t, f.pipeline().Upgrade(context.Background(), "polish"))

	assert.Equal(t, []string{
		"EnsureExport",
		"Registry.Delete",
		"ResetLanguage",
		"InsertTypes",
		"InsertEntries",
		"RunInTx",
		"LookupExact",
		"InsertEntry",
		"Registry.Insert",
	}, f.log.first())
}

func TestPipeline_Upgrade_Batches(t *testing.T) {
	f := newFixture("Polish.json")
	f.cfg.BatchSize = 2

	require.NoError(t, f.pipeline().Upgrade(context.Background(), "polish"))
	assert.Equal(t, 3, f.log.count("InsertEntries"))
}

func TestPipeline_Upgrade_UnknownLanguage(t *testing.T) {
	f := newFixture("Polish.json")

	err := f.pipeline().Upgrade(context.Background(), "klingon")
	require.ErrorIs(t, err, domain.ErrUnknownLanguage)
	assert.Empty(t, f.log.calls)
}

func TestPipeline_Upgrade_NetworkFailureTouchesNothing(t *testing.T) {
	f := newFixture("Polish.json")
	f.source.err = domain.ErrNetworkFailure

	err := f.pipeline().Upgrade(context.Background(), "polish")
	require.ErrorIs(t, err, domain.ErrNetworkFailure)

	assert.Zero(t, f.log.count("Registry.Delete"))
	assert.Zero(t, f.log.count("ResetLanguage"))
}

func TestPipeline_Upgrade_MalformedExportTouchesNothing(t *testing.T) {
	f := newFixture("Broken.json")
	p := f.pipeline()

	err := p.Upgrade(context.Background(), "polish")
	require.ErrorIs(t, err, domain.ErrMalformedRecord)

	var mre *domain.MalformedRecordError
	require.ErrorAs(t, err, &mre)
	assert.Equal(t, 2, mre.Line)
	assert.Equal(t, "pos", mre.Field)

	assert.Zero(t, f.log.count("Registry.Delete"))
	assert.Zero(t, f.log.count("ResetLanguage"))
	assert.Error(t, p.Results()[PhaseParse].Err)
}

func TestPipeline_Upgrade_PermissionDenied(t *testing.T) {
	f := newFixture("Polish.json")
	f.store.resetErr = domain.ErrPermissionDenied

	err := f.pipeline().Upgrade(context.Background(), "polish")
	require.ErrorIs(t, err, domain.ErrPermissionDenied)

	assert.Zero(t, f.log.count("InsertTypes"))
	assert.Empty(t, f.registry.inserted)
}

func TestPipeline_Upgrade_MissingPartOfSpeechNotStamped(t *testing.T) {
	f := newFixture("Polish.json")
	f.store.insertErr = domain.ErrMissingPartOfSpeech

	err := f.pipeline().Upgrade(context.Background(), "polish")
	require.ErrorIs(t, err, domain.ErrMissingPartOfSpeech)

	assert.Empty(t, f.registry.inserted)
	assert.Zero(t, f.log.count("RunInTx"))
}

func TestPipeline_Upgrade_DryRunNoWrites(t *testing.T) {
	f := newFixture("Polish.json")
	f.cfg.DryRun = true
	p := f.pipeline()

	require.NoError(t, p.Upgrade(context.Background(), "polish"))

	assert.Equal(t, []string{"EnsureExport"}, f.log.first())
	assert.Equal(t, 5, p.Results()[PhaseParse].Inserted)
}

func TestPipeline_Upgrade_CanceledContext(t *testing.T) {
	f := newFixture("Polish.json")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := f.pipeline().Upgrade(ctx, "polish")
	require.True(t, errors.Is(err, context.Canceled), "got %v", err)
	assert.Empty(t, f.log.calls)
}

// ---------------------------------------------------------------------------
// batchProcess
// ---------------------------------------------------------------------------

func TestBatchProcess(t *testing.T) {
	items := make([]int, 25)
	for i := range items {
		items[i] = i
	}

	var batchSizes []int
	total, err := batchProcess(items, 10, func(batch []int) (int, error) {
		batchSizes = append(batchSizes, len(batch))
		return len(batch), nil
	})
	require.NoError(t, err)
	assert.Equal(t, 25, total)
	assert.Equal(t, []int{10, 10, 5}, batchSizes)
}

func TestBatchProcess_EmptySlice(t *testing.T) {
	called := false
	total, err := batchProcess([]int{}, 10, func([]int) (int, error) {
		called = true
		return 0, nil
	})
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.False(t, called)
}

func TestBatchProcess_ErrorStops(t *testing.T) {
	boom := errors.New("boom")
	calls := 0
	total, err := batchProcess([]int{1, 2, 3, 4, 5}, 2, func(batch []int) (int, error) {
		calls++
		if calls == 2 {
			return 0, boom
		}
		return len(batch), nil
	})
	require.ErrorIs(t, err, boom)
	assert.Equal(t, 2, total)
	assert.Equal(t, 2, calls)
}

func TestBatchProcess_DefaultBatchSize(t *testing.T) {
	calls := 0
	_, err := batchProcess(make([]int, 501), 0, func([]int) (int, error) {
		calls++
		return 0, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func readSample() ([]domain.Entry, int, error) {
	entries, stats, err := wiktionary.ParseFile(filepath.Join("testdata", "Polish.json"))
	return entries, stats.Entries, err
}
