package search

import (
	"sort"

	"github.com/nikbrunner/omnihist/internal/model"
	"github.com/sahilm/fuzzy"
)

// SearchResult represents a fuzzy search match.
type SearchResult struct {
	Entry          *model.HistoryEntry
	MatchedIndexes []int
	Score          int
}

// entryTexts implements fuzzy.Source for a history slice.
// Title and URL are searched together so either can carry the match.
type entryTexts []*model.HistoryEntry

func (et entryTexts) String(i int) string {
	return et[i].Title + " " + et[i].URL
}

func (et entryTexts) Len() int {
	return len(et)
}

// FuzzySearchHistory searches entries by title and URL using fuzzy matching.
// Returns results sorted by match score (best first).
func FuzzySearchHistory(entries []model.HistoryEntry, query string) []SearchResult {
	if query == "" {
		return nil
	}

	texts := make(entryTexts, len(entries))
	for i := range entries {
		texts[i] = &entries[i]
	}

	matches := fuzzy.FindFrom(query, texts)

	results := make([]SearchResult, len(matches))
	for i, m := range matches {
		results[i] = SearchResult{
			Entry:          texts[m.Index],
			MatchedIndexes: m.MatchedIndexes,
			Score:          m.Score,
		}
	}

	return results
}

// Rank orders history candidates by relevance to the query text.
// Fuzzy matches come first (score, then visit count, then recency);
// entries the fuzzy matcher rejects follow, ordered by visit count and recency.
// The input slice is not modified.
func Rank(entries []model.HistoryEntry, query string) []model.HistoryEntry {
	results := FuzzySearchHistory(entries, query)

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return moreRelevant(*results[i].Entry, *results[j].Entry)
	})

	ranked := make([]model.HistoryEntry, 0, len(entries))
	seen := make(map[*model.HistoryEntry]bool, len(results))
	for _, r := range results {
		ranked = append(ranked, *r.Entry)
		seen[r.Entry] = true
	}

	var rest []model.HistoryEntry
	for i := range entries {
		if !seen[&entries[i]] {
			rest = append(rest, entries[i])
		}
	}
	sort.SliceStable(rest, func(i, j int) bool {
		return moreRelevant(rest[i], rest[j])
	})

	return append(ranked, rest...)
}

// moreRelevant breaks ties between equally scored entries.
func moreRelevant(a, b model.HistoryEntry) bool {
	if a.VisitCount != b.VisitCount {
		return a.VisitCount > b.VisitCount
	}
	return a.LastVisitTime.After(b.LastVisitTime)
}
