package suggest_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/nikbrunner/omnihist/internal/model"
	"github.com/nikbrunner/omnihist/internal/navigate"
	"github.com/nikbrunner/omnihist/internal/storage"
	"github.com/nikbrunner/omnihist/internal/suggest"
	"gotest.tools/v3/assert"
	is "gotest.tools/v3/assert/cmp"
)

// fakeHistory records every query and answers from results, keyed by
// whether the query was windowed.
type fakeHistory struct {
	mu       sync.Mutex
	queries  []model.Query
	windowed []model.HistoryEntry
	full     []model.HistoryEntry
	err      error
}

func (h *fakeHistory) Search(_ context.Context, q model.Query) ([]model.HistoryEntry, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.queries = append(h.queries, q)
	if h.err != nil {
		return nil, h.err
	}
	if q.Windowed() {
		return h.windowed, nil
	}
	return h.full, nil
}

func (h *fakeHistory) Queries() []model.Query {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]model.Query(nil), h.queries...)
}

// countingStorage counts writes on top of a MemoryStorage.
type countingStorage struct {
	*storage.MemoryStorage
	sets    int
	setErr  error
	removes [][]string
}

func newCountingStorage() *countingStorage {
	return &countingStorage{MemoryStorage: storage.NewMemoryStorage()}
}

func (s *countingStorage) Set(key, value string) error {
	s.sets++
	if s.setErr != nil {
		return s.setErr
	}
	return s.MemoryStorage.Set(key, value)
}

func (s *countingStorage) Remove(keys ...string) error {
	s.removes = append(s.removes, keys)
	return s.MemoryStorage.Remove(keys...)
}

type batchRecorder struct {
	batches [][]model.Suggestion
}

func (r *batchRecorder) suggest(s []model.Suggestion) {
	r.batches = append(r.batches, s)
}

func entry(url, title string, visits int, at time.Time) model.HistoryEntry {
	return model.HistoryEntry{URL: url, Title: title, VisitCount: visits, LastVisitTime: at}
}

type engineFixture struct {
	engine  *suggest.Engine
	history *fakeHistory
	store   *countingStorage
	nav     *navigate.Recorder
}

func newEngineFixture(t *testing.T, strategy suggest.Strategy) *engineFixture {
	t.Helper()
	f := &engineFixture{
		history: &fakeHistory{},
		store:   newCountingStorage(),
		nav:     &navigate.Recorder{},
	}
	f.engine = suggest.NewEngine(suggest.EngineParams{
		History:   f.history,
		Storage:   f.store,
		Navigator: f.nav,
		Strategy:  &strategy,
		Formatter: &suggest.Formatter{Now: func() time.Time { return fixedNow }, Location: time.UTC},
		Now:       func() time.Time { return fixedNow },
	})
	return f
}

func TestEngine_RepeatedInputIsDebounced(t *testing.T) {
	f := newEngineFixture(t, suggest.Windowed())
	f.history.windowed = []model.HistoryEntry{entry("https://a.test/", "A", 1, fixedNow)}
	ctx := context.Background()

	var rec batchRecorder
	assert.NilError(t, f.engine.OnInputChanged(ctx, "abc", rec.suggest))
	assert.NilError(t, f.engine.OnInputChanged(ctx, "abc", rec.suggest))
	assert.NilError(t, f.engine.OnInputChanged(ctx, "  abc ", rec.suggest))

	assert.Equal(t, f.store.sets, 1)
	assert.Equal(t, len(f.history.Queries()), 1)
	assert.Equal(t, len(rec.batches), 1)

	v, ok, err := f.store.Get(suggest.KeyText)
	assert.NilError(t, err)
	assert.Assert(t, ok)
	assert.Equal(t, v, "abc")
}

func TestEngine_SeedsFromPersistedText(t *testing.T) {
	f := newEngineFixture(t, suggest.Windowed())
	assert.NilError(t, f.store.MemoryStorage.Set(suggest.KeyText, "abc"))

	var rec batchRecorder
	assert.NilError(t, f.engine.OnInputChanged(context.Background(), "abc", rec.suggest))

	assert.Equal(t, f.store.sets, 0)
	assert.Equal(t, len(f.history.Queries()), 0)
	assert.Equal(t, len(rec.batches), 0)
}

func TestEngine_DefaultSuggestionAlwaysUpdated(t *testing.T) {
	f := newEngineFixture(t, suggest.Windowed())
	f.history.windowed = []model.HistoryEntry{entry("https://a.test/?a&b", "a&b", 1, fixedNow)}
	ctx := context.Background()

	assert.Equal(t, f.engine.DefaultSuggestion(), "Open <url>chrome://history</url>")

	assert.NilError(t, f.engine.OnInputChanged(ctx, "a&b", nil))
	assert.Equal(t, f.engine.DefaultSuggestion(), "Open <url>chrome://history/?q=a%26b</url>")

	// Repeated input is skipped but the placeholder is still refreshed.
	f.engine.OnInputStarted(ctx)
	assert.Equal(t, f.engine.DefaultSuggestion(), "Open <url>chrome://history</url>")
	assert.NilError(t, f.engine.OnInputChanged(ctx, "a&b", nil))
	assert.Equal(t, f.engine.DefaultSuggestion(), "Open <url>chrome://history/?q=a%26b</url>")
	assert.Equal(t, len(f.history.Queries()), 1)
}

func TestEngine_BlankInputQueriesNothing(t *testing.T) {
	f := newEngineFixture(t, suggest.Windowed())
	f.history.windowed = []model.HistoryEntry{entry("https://go.dev/", "Go", 1, fixedNow)}
	ctx := context.Background()

	var rec batchRecorder
	assert.NilError(t, f.engine.OnInputChanged(ctx, "go", rec.suggest))
	assert.NilError(t, f.engine.OnInputChanged(ctx, "   ", rec.suggest))

	assert.Equal(t, len(f.history.Queries()), 1)
	assert.Equal(t, len(rec.batches), 1)

	v, ok, _ := f.store.Get(suggest.KeyText)
	assert.Assert(t, ok)
	assert.Equal(t, v, "")
}

func TestEngine_WindowedFallsBackToFullHistory(t *testing.T) {
	f := newEngineFixture(t, suggest.Windowed())
	old := fixedNow.Add(-30 * 24 * time.Hour)
	f.history.full = []model.HistoryEntry{entry("https://old.test/", "Old page", 4, old)}

	var rec batchRecorder
	assert.NilError(t, f.engine.OnInputChanged(context.Background(), "old", rec.suggest))

	queries := f.history.Queries()
	assert.Equal(t, len(queries), 2)
	assert.Equal(t, queries[0].StartTime, fixedNow.Add(-7*24*time.Hour))
	assert.Equal(t, queries[0].MaxResults, 11)
	assert.Assert(t, queries[1].StartTime.IsZero())
	assert.Equal(t, queries[1].Text, "old")

	assert.Equal(t, len(rec.batches), 1)
	assert.DeepEqual(t, model.Contents(rec.batches[0]), []string{"https://old.test/"})
}

func TestEngine_WindowedSkipsFallbackWhenRecentMatches(t *testing.T) {
	f := newEngineFixture(t, suggest.Windowed())
	f.history.windowed = []model.HistoryEntry{entry("https://new.test/", "New", 1, fixedNow)}
	f.history.full = []model.HistoryEntry{entry("https://old.test/", "Old", 1, fixedNow)}

	var rec batchRecorder
	assert.NilError(t, f.engine.OnInputChanged(context.Background(), "n", rec.suggest))

	assert.Equal(t, len(f.history.Queries()), 1)
	assert.DeepEqual(t, model.Contents(rec.batches[0]), []string{"https://new.test/"})
}

func TestEngine_CapsBatchSize(t *testing.T) {
	f := newEngineFixture(t, suggest.Cached())
	for i := 0; i < 20; i++ {
		f.history.full = append(f.history.full, entry("https://x.test/"+string(rune('a'+i)), "x", 1, fixedNow))
	}

	var rec batchRecorder
	assert.NilError(t, f.engine.OnInputChanged(context.Background(), "x", rec.suggest))

	assert.Equal(t, len(rec.batches[0]), 16)
	queries := f.history.Queries()
	assert.Equal(t, len(queries), 1)
	assert.Assert(t, queries[0].StartTime.IsZero())
	assert.Equal(t, queries[0].MaxResults, 16)
}

func TestEngine_CachedPersistsCandidateURLs(t *testing.T) {
	f := newEngineFixture(t, suggest.Cached())
	f.history.full = []model.HistoryEntry{
		entry("https://x.test/", "X", 3, fixedNow),
		entry("https://y.test/?a=1&b=2", "Y", 1, fixedNow),
	}
	ctx := context.Background()

	var rec batchRecorder
	assert.NilError(t, f.engine.OnInputChanged(ctx, "test", rec.suggest))

	urls, err := f.engine.CandidateURLs()
	assert.NilError(t, err)
	assert.DeepEqual(t, urls, model.Contents(rec.batches[0]))
	assert.DeepEqual(t, urls, []string{"https://x.test/", "https://y.test/?a=1&b=2"})
}

func TestEngine_CachedClearsURLsOnNewInput(t *testing.T) {
	f := newEngineFixture(t, suggest.Cached())
	ctx := context.Background()
	f.history.full = []model.HistoryEntry{entry("https://x.test/", "X", 3, fixedNow)}
	assert.NilError(t, f.engine.OnInputChanged(ctx, "x", nil))

	// Blank input queries nothing, so no batch replaces the cleared list.
	assert.NilError(t, f.engine.OnInputChanged(ctx, "", nil))

	_, ok, err := f.store.Get(suggest.KeyURLs)
	assert.NilError(t, err)
	assert.Assert(t, !ok)
}

func TestEngine_WindowedCommitResolution(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{name: "absolute url", text: "https://example.com", want: "https://example.com"},
		{name: "custom scheme", text: "chrome://settings", want: "chrome://settings"},
		{name: "words", text: "hello world", want: "chrome://history/?q=hello+world"},
		{name: "bare host", text: "example.com", want: "chrome://history/?q=example.com"},
		{name: "scheme without host", text: "https://", want: "chrome://history/?q=https%3A%2F%2F"},
		{name: "blank", text: "  ", want: "chrome://history"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newEngineFixture(t, suggest.Windowed())

			got, err := f.engine.OnInputEntered(context.Background(), tt.text)
			assert.NilError(t, err)
			assert.Equal(t, got, tt.want)
			assert.DeepEqual(t, f.nav.URLs(), []string{tt.want})
		})
	}
}

func TestEngine_CachedCommitResolution(t *testing.T) {
	f := newEngineFixture(t, suggest.Cached())
	assert.NilError(t, f.store.MemoryStorage.Set(suggest.KeyURLs, `["https://x.test/"]`))
	ctx := context.Background()

	got, err := f.engine.OnInputEntered(ctx, "https://x.test/")
	assert.NilError(t, err)
	assert.Equal(t, got, "https://x.test/")

	// Keys were removed by the commit, so an absolute URL is no longer a candidate.
	got, err = f.engine.OnInputEntered(ctx, "https://x.test/")
	assert.NilError(t, err)
	assert.Equal(t, got, "chrome://history/?q=https%3A%2F%2Fx.test%2F")
}

func TestEngine_CachedCommitWithMalformedURLs(t *testing.T) {
	for _, raw := range []string{"not json", `{"a":1}`, "null", `[1,2]`} {
		f := newEngineFixture(t, suggest.Cached())
		assert.NilError(t, f.store.MemoryStorage.Set(suggest.KeyURLs, raw))

		urls, err := f.engine.CandidateURLs()
		assert.NilError(t, err)
		assert.Check(t, is.Len(urls, 0), "raw %q", raw)

		got, err := f.engine.OnInputEntered(context.Background(), "https://x.test/")
		assert.NilError(t, err)
		assert.Equal(t, got, "chrome://history/?q=https%3A%2F%2Fx.test%2F", "raw %q", raw)
	}
}

func TestEngine_CommitRemovesSessionKeys(t *testing.T) {
	tests := []struct {
		strategy suggest.Strategy
		want     []string
	}{
		{strategy: suggest.Windowed(), want: []string{suggest.KeyText}},
		{strategy: suggest.Cached(), want: []string{suggest.KeyText, suggest.KeyURLs}},
	}

	for _, tt := range tests {
		t.Run(tt.strategy.Name, func(t *testing.T) {
			f := newEngineFixture(t, tt.strategy)
			f.history.full = []model.HistoryEntry{entry("https://x.test/", "X", 1, fixedNow)}
			ctx := context.Background()

			assert.NilError(t, f.engine.OnInputChanged(ctx, "x", nil))
			_, err := f.engine.OnInputEntered(ctx, "x")
			assert.NilError(t, err)

			assert.DeepEqual(t, f.store.removes[len(f.store.removes)-1], tt.want)
			assert.Check(t, is.Len(f.store.Keys(), 0))
		})
	}
}

func TestEngine_CancelEndsSession(t *testing.T) {
	tests := []struct {
		strategy suggest.Strategy
		want     []string
	}{
		{strategy: suggest.Windowed(), want: []string{suggest.KeyText}},
		{strategy: suggest.Cached(), want: []string{suggest.KeyText, suggest.KeyURLs}},
	}

	for _, tt := range tests {
		t.Run(tt.strategy.Name, func(t *testing.T) {
			f := newEngineFixture(t, tt.strategy)
			f.history.windowed = []model.HistoryEntry{entry("https://x.test/", "X", 1, fixedNow)}
			ctx := context.Background()

			assert.NilError(t, f.engine.OnInputChanged(ctx, "x", nil))
			assert.NilError(t, f.engine.OnInputCancelled(ctx))

			assert.DeepEqual(t, f.store.removes[len(f.store.removes)-1], tt.want)
			assert.Check(t, is.Len(f.store.Keys(), 0))
			assert.Check(t, is.Len(f.nav.URLs(), 0))

			// The same text starts a fresh query after a cancel.
			var rec batchRecorder
			assert.NilError(t, f.engine.OnInputChanged(ctx, "x", rec.suggest))
			assert.Equal(t, len(rec.batches), 1)
			assert.Equal(t, len(f.history.Queries()), 2)
		})
	}
}

func TestEngine_CancelMakesInFlightBatchStale(t *testing.T) {
	history := &gatedHistory{
		slowText: "slow",
		started:  make(chan struct{}),
		release:  make(chan struct{}),
		entries:  []model.HistoryEntry{entry("https://x.test/", "slow", 1, fixedNow)},
	}
	store := storage.NewMemoryStorage()
	strategy := suggest.Cached()
	engine := suggest.NewEngine(suggest.EngineParams{
		History:   history,
		Storage:   store,
		Navigator: &navigate.Recorder{},
		Strategy:  &strategy,
		Now:       func() time.Time { return fixedNow },
	})
	ctx := context.Background()

	errc := make(chan error, 1)
	go func() {
		errc <- engine.OnInputChanged(ctx, "slow", nil)
	}()

	<-history.started
	assert.NilError(t, engine.OnInputCancelled(ctx))
	close(history.release)

	assert.Assert(t, errors.Is(<-errc, suggest.ErrStale))
	assert.Check(t, is.Len(store.Keys(), 0))
}

func TestEngine_HistoryErrorPropagates(t *testing.T) {
	f := newEngineFixture(t, suggest.Windowed())
	boom := errors.New("history unavailable")
	f.history.err = boom

	var rec batchRecorder
	err := f.engine.OnInputChanged(context.Background(), "x", rec.suggest)
	assert.Assert(t, errors.Is(err, boom))
	assert.Equal(t, len(rec.batches), 0)
}

func TestEngine_StorageErrorPropagates(t *testing.T) {
	f := newEngineFixture(t, suggest.Windowed())
	f.store.setErr = errors.New("disk full")

	err := f.engine.OnInputChanged(context.Background(), "x", nil)
	assert.ErrorContains(t, err, "persist text")
	assert.ErrorContains(t, err, "disk full")
}

// gatedHistory blocks queries for one text until released.
type gatedHistory struct {
	slowText string
	started  chan struct{}
	release  chan struct{}
	entries  []model.HistoryEntry
}

func (h *gatedHistory) Search(ctx context.Context, q model.Query) ([]model.HistoryEntry, error) {
	if q.Text == h.slowText {
		close(h.started)
		select {
		case <-h.release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return h.entries, nil
}

func TestEngine_StaleBatchIsDropped(t *testing.T) {
	history := &gatedHistory{
		slowText: "slow",
		started:  make(chan struct{}),
		release:  make(chan struct{}),
		entries:  []model.HistoryEntry{entry("https://x.test/", "slow fast", 1, fixedNow)},
	}
	store := storage.NewMemoryStorage()
	strategy := suggest.Cached()
	engine := suggest.NewEngine(suggest.EngineParams{
		History:   history,
		Storage:   store,
		Navigator: &navigate.Recorder{},
		Strategy:  &strategy,
		Now:       func() time.Time { return fixedNow },
	})
	ctx := context.Background()

	var mu sync.Mutex
	var delivered []string
	record := func(text string) suggest.SuggestFunc {
		return func([]model.Suggestion) {
			mu.Lock()
			defer mu.Unlock()
			delivered = append(delivered, text)
		}
	}

	errc := make(chan error, 1)
	go func() {
		errc <- engine.OnInputChanged(ctx, "slow", record("slow"))
	}()

	<-history.started
	assert.NilError(t, engine.OnInputChanged(ctx, "fast", record("fast")))
	close(history.release)

	err := <-errc
	assert.Assert(t, errors.Is(err, suggest.ErrStale))

	mu.Lock()
	defer mu.Unlock()
	assert.DeepEqual(t, delivered, []string{"fast"})

	text, _, _ := store.Get(suggest.KeyText)
	assert.Equal(t, text, "fast")
}
