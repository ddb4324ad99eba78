// Package suggest turns omnibox keystrokes into history suggestions and
// resolves committed input to a navigation target.
package suggest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/nikbrunner/omnihist/internal/logging"
	"github.com/nikbrunner/omnihist/internal/model"
)

// Persisted session keys.
const (
	KeyText = "text"
	KeyURLs = "urls"
)

// ErrStale reports a suggestion batch that was dropped because newer input
// (or a commit) arrived while its history query was in flight.
var ErrStale = errors.New("suggestion batch superseded by newer input")

// History answers ranked history lookups.
type History interface {
	Search(ctx context.Context, q model.Query) ([]model.HistoryEntry, error)
}

// Storage is the durable key/value store holding the session.
type Storage interface {
	Get(key string) (value string, ok bool, err error)
	Set(key, value string) error
	Remove(keys ...string) error
}

// Navigator sends the active tab to a URL.
type Navigator interface {
	Navigate(ctx context.Context, url string) error
}

// SuggestFunc receives one suggestion batch. It is called with the engine
// locked and must not call back into the Engine.
type SuggestFunc func([]model.Suggestion)

// EngineParams holds parameters for creating a new Engine.
type EngineParams struct {
	History   History
	Storage   Storage
	Navigator Navigator

	Strategy      *Strategy  // optional, uses Windowed if nil
	SearchBaseURL string     // optional, uses DefaultSearchBaseURL if empty
	Formatter     *Formatter // optional
	Now           func() time.Time
}

// Engine is one omnibox session owner. All entry points are safe for
// concurrent use; session state is per Engine, never global.
type Engine struct {
	history   History
	storage   Storage
	navigator Navigator
	strategy  Strategy
	baseURL   string
	formatter Formatter
	now       func() time.Time

	mu sync.Mutex
	// lastText is the last accepted input; hasLastText is false until the
	// first input-changed event, when it is seeded from storage.
	lastText    string
	hasLastText bool
	// generation increases with every accepted input and every ended session.
	generation         uint64
	defaultDescription string
}

// NewEngine creates an Engine with the given parameters.
func NewEngine(params EngineParams) *Engine {
	strategy := Windowed()
	if params.Strategy != nil {
		strategy = *params.Strategy
	}

	baseURL := params.SearchBaseURL
	if baseURL == "" {
		baseURL = DefaultSearchBaseURL
	}

	now := params.Now
	if now == nil {
		now = time.Now
	}

	formatter := Formatter{Now: now}
	if params.Formatter != nil {
		formatter = *params.Formatter
	}

	return &Engine{
		history:            params.History,
		storage:            params.Storage,
		navigator:          params.Navigator,
		strategy:           strategy,
		baseURL:            baseURL,
		formatter:          formatter,
		now:                now,
		defaultDescription: DefaultDescription(baseURL, ""),
	}
}

// DefaultSuggestion returns the current placeholder description.
func (e *Engine) DefaultSuggestion() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.defaultDescription
}

// OnInputStarted resets the placeholder for a fresh omnibox session.
func (e *Engine) OnInputStarted(ctx context.Context) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.defaultDescription = DefaultDescription(e.baseURL, "")
	logging.FromContext(ctx).Debug().Msg("omnibox input started")
}

// OnInputChanged handles one edit of the omnibox text.
//
// Unchanged text is skipped without side effects. Otherwise the text is
// remembered and persisted, history is queried, and the formatted batch is
// handed to suggest. Blank text is persisted but queries nothing.
// The placeholder is refreshed on every call.
//
// A batch overtaken by newer input or a commit is dropped and ErrStale
// returned; suggest is not called for it.
func (e *Engine) OnInputChanged(ctx context.Context, text string, suggest SuggestFunc) error {
	log := logging.FromContext(ctx)
	text = strings.TrimSpace(text)

	gen, proceed, err := e.accept(text)
	if err != nil {
		return err
	}
	if !proceed {
		log.Debug().Str("text", text).Msg("input unchanged, skipping")
		return nil
	}
	if text == "" {
		return nil
	}

	entries, err := e.query(ctx, text)
	if err != nil {
		return err
	}
	suggestions := e.formatter.FormatAll(entries, text)

	e.mu.Lock()
	defer e.mu.Unlock()

	if gen != e.generation {
		log.Debug().Str("text", text).Int("results", len(suggestions)).Msg("dropping stale suggestions")
		return ErrStale
	}

	if e.strategy.CacheCandidateURLs {
		data, err := json.Marshal(model.Contents(suggestions))
		if err != nil {
			return err
		}
		if err := e.storage.Set(KeyURLs, string(data)); err != nil {
			return fmt.Errorf("persist candidate urls: %w", err)
		}
	}

	if suggest != nil {
		suggest(suggestions)
	}
	return nil
}

// accept runs the input debouncer. It returns the generation stamped on
// the accepted input and whether processing should proceed.
func (e *Engine) accept(text string) (uint64, bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.defaultDescription = DefaultDescription(e.baseURL, text)

	if e.hasLastText && text == e.lastText {
		return 0, false, nil
	}

	if !e.hasLastText {
		persisted, ok, err := e.storage.Get(KeyText)
		if err != nil {
			return 0, false, fmt.Errorf("read persisted text: %w", err)
		}
		if ok && persisted == text {
			e.lastText = text
			e.hasLastText = true
			return 0, false, nil
		}
	}

	e.lastText = text
	e.hasLastText = true
	e.generation++

	if err := e.storage.Set(KeyText, text); err != nil {
		return 0, false, fmt.Errorf("persist text: %w", err)
	}
	if e.strategy.CacheCandidateURLs {
		if err := e.storage.Remove(KeyURLs); err != nil {
			return 0, false, fmt.Errorf("clear candidate urls: %w", err)
		}
	}

	return e.generation, true, nil
}

// query runs the strategy's history lookup: the windowed query first and,
// when allowed, one retry over full history if it found nothing.
func (e *Engine) query(ctx context.Context, text string) ([]model.HistoryEntry, error) {
	q := model.Query{
		Text:       text,
		MaxResults: e.strategy.MaxResults,
	}
	if e.strategy.Window > 0 {
		q.StartTime = e.now().Add(-e.strategy.Window)
	}

	entries, err := e.history.Search(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("search history: %w", err)
	}

	if len(entries) == 0 && q.Windowed() && e.strategy.FallbackToFullHistory {
		logging.FromContext(ctx).Debug().
			Str("text", text).
			Dur("window", e.strategy.Window).
			Msg("no recent matches, searching full history")

		q.StartTime = time.Time{}
		entries, err = e.history.Search(ctx, q)
		if err != nil {
			return nil, fmt.Errorf("search full history: %w", err)
		}
	}

	if q.MaxResults > 0 && len(entries) > q.MaxResults {
		entries = entries[:q.MaxResults]
	}
	return entries, nil
}

// OnInputEntered resolves committed text, navigates to it and ends the
// session by removing the persisted keys. It returns the URL navigated to.
// Batches still in flight for the ended session become stale.
func (e *Engine) OnInputEntered(ctx context.Context, text string) (string, error) {
	text = strings.TrimSpace(text)

	target, err := e.resolve(text)
	if err != nil {
		return "", err
	}

	logging.FromContext(ctx).Debug().
		Str("text", text).
		Str("url", logging.TruncateURL(target, 80)).
		Msg("navigating")

	if err := e.navigator.Navigate(ctx, target); err != nil {
		return "", fmt.Errorf("navigate: %w", err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.endSession(); err != nil {
		return target, err
	}
	return target, nil
}

// OnInputCancelled ends the session without navigating. The persisted keys
// are removed and the remembered text forgotten, so the next session seeds
// from an empty store and queries even for the same text.
func (e *Engine) OnInputCancelled(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	logging.FromContext(ctx).Debug().Msg("omnibox input cancelled")

	e.lastText = ""
	e.hasLastText = false
	return e.endSession()
}

// endSession makes in-flight batches stale and removes the persisted keys.
// The caller holds e.mu.
func (e *Engine) endSession() error {
	e.generation++

	keys := []string{KeyText}
	if e.strategy.CacheCandidateURLs {
		keys = append(keys, KeyURLs)
	}
	if err := e.storage.Remove(keys...); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

// resolve picks the navigation target for committed text.
func (e *Engine) resolve(text string) (string, error) {
	if !e.strategy.CacheCandidateURLs {
		if isAbsoluteURL(text) {
			return text, nil
		}
		return BuildSearchURL(e.baseURL, text), nil
	}

	urls, err := e.CandidateURLs()
	if err != nil {
		return "", err
	}
	for _, u := range urls {
		if u == text {
			return text, nil
		}
	}
	return BuildSearchURL(e.baseURL, text), nil
}

// CandidateURLs returns the persisted URLs of the latest batch.
// Absent or malformed data yields an empty list.
func (e *Engine) CandidateURLs() ([]string, error) {
	raw, ok, err := e.storage.Get(KeyURLs)
	if err != nil {
		return nil, fmt.Errorf("read candidate urls: %w", err)
	}
	if !ok {
		return []string{}, nil
	}

	var urls []string
	if err := json.Unmarshal([]byte(raw), &urls); err != nil {
		return []string{}, nil
	}
	if urls == nil {
		urls = []string{}
	}
	return urls, nil
}
