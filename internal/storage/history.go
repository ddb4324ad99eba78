package storage

import (
	"context"

	"github.com/nikbrunner/omnihist/internal/model"
	"github.com/nikbrunner/omnihist/internal/search"
)

// MemoryHistory is an in-process history store.
// It answers the same Search contract as SQLiteStorage.
// Entries are fixed at construction, so it is safe for concurrent use.
type MemoryHistory struct {
	entries []model.HistoryEntry
}

// NewMemoryHistory creates a MemoryHistory holding the given entries.
func NewMemoryHistory(entries ...model.HistoryEntry) *MemoryHistory {
	h := &MemoryHistory{}
	h.entries = append(h.entries, entries...)
	return h
}

// Search returns up to q.MaxResults entries visited at or after q.StartTime
// whose URL or title contains every query word, most relevant first.
// Words are compared with Unicode case folding, as in SQLiteStorage.
func (h *MemoryHistory) Search(ctx context.Context, q model.Query) ([]model.HistoryEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	words := model.QueryWords(q.Text)
	var candidates []model.HistoryEntry
	for _, e := range h.entries {
		if q.Windowed() && e.LastVisitTime.Before(q.StartTime) {
			continue
		}
		if e.Matches(words) {
			candidates = append(candidates, e)
		}
	}

	return capResults(search.Rank(candidates, q.Text), q.MaxResults), nil
}

func capResults(entries []model.HistoryEntry, max int) []model.HistoryEntry {
	if max > 0 && len(entries) > max {
		return entries[:max]
	}
	return entries
}
