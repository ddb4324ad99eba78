package model_test

import (
	"testing"
	"time"

	"github.com/nikbrunner/omnihist/internal/model"
	"gotest.tools/v3/assert"
)

func TestNewHistoryEntry_Defaults(t *testing.T) {
	before := time.Now()
	entry := model.NewHistoryEntry(model.NewHistoryEntryParams{
		URL:   "https://go.dev",
		Title: "The Go Programming Language",
	})

	if entry.ID == "" {
		t.Error("expected non-empty ID")
	}
	if entry.VisitCount != 1 {
		t.Errorf("expected visit count 1, got %d", entry.VisitCount)
	}
	if entry.LastVisitTime.Before(before) {
		t.Error("expected last visit time to default to now")
	}
}

func TestNewHistoryEntry_KeepsExplicitValues(t *testing.T) {
	visited := time.Date(2025, 1, 20, 14, 22, 0, 0, time.UTC)
	entry := model.NewHistoryEntry(model.NewHistoryEntryParams{
		URL:           "https://news.ycombinator.com",
		Title:         "Hacker News",
		VisitCount:    42,
		LastVisitTime: visited,
	})

	assert.Equal(t, entry.VisitCount, 42)
	assert.Assert(t, entry.LastVisitTime.Equal(visited))
}

func TestNewHistoryEntry_UniqueIDs(t *testing.T) {
	a := model.NewHistoryEntry(model.NewHistoryEntryParams{URL: "https://a.test"})
	b := model.NewHistoryEntry(model.NewHistoryEntryParams{URL: "https://a.test"})
	if a.ID == b.ID {
		t.Error("expected distinct IDs")
	}
}

func TestQueryWords(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{name: "single word", text: "golang", want: []string{"golang"}},
		{name: "punctuation runs", text: "  go--docs, std!lib ", want: []string{"go", "docs", "std", "lib"}},
		{name: "underscore is a word rune", text: "snake_case", want: []string{"snake_case"}},
		{name: "unicode letters", text: "café über", want: []string{"café", "über"}},
		{name: "only punctuation", text: "?!.", want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := model.QueryWords(tt.text)
			if len(got) == 0 && len(tt.want) == 0 {
				return
			}
			assert.DeepEqual(t, got, tt.want)
		})
	}
}

func TestHistoryEntry_Matches(t *testing.T) {
	entry := model.HistoryEntry{URL: "https://pkg.go.dev/net/url", Title: "url package - net/url"}

	if !entry.Matches([]string{"PKG", "package"}) {
		t.Error("expected case-insensitive match across url and title")
	}
	if entry.Matches([]string{"url", "rust"}) {
		t.Error("expected no match when one word is missing")
	}
	if !entry.Matches(nil) {
		t.Error("expected no words to match everything")
	}
}

func TestContents(t *testing.T) {
	suggestions := []model.Suggestion{
		{Content: "https://a.test/", Description: "a"},
		{Content: "https://b.test/", Description: "b"},
	}
	assert.DeepEqual(t, model.Contents(suggestions), []string{"https://a.test/", "https://b.test/"})
	assert.Equal(t, len(model.Contents(nil)), 0)
}

func TestQuery_Windowed(t *testing.T) {
	assert.Assert(t, !model.Query{Text: "x"}.Windowed())
	assert.Assert(t, model.Query{Text: "x", StartTime: time.Now()}.Windowed())
}
