package model

import (
	"strings"
	"time"
	"unicode"
)

// HistoryEntry is a previously visited page as reported by the history store.
type HistoryEntry struct {
	ID            string    `json:"id"`
	URL           string    `json:"url"`
	Title         string    `json:"title"`
	VisitCount    int       `json:"visitCount"`
	LastVisitTime time.Time `json:"lastVisitTime"`
}

// NewHistoryEntryParams holds parameters for creating a new HistoryEntry.
type NewHistoryEntryParams struct {
	URL           string
	Title         string
	VisitCount    int       // values below 1 are raised to 1
	LastVisitTime time.Time // zero = now
}

// NewHistoryEntry creates a HistoryEntry with generated UUID.
func NewHistoryEntry(params NewHistoryEntryParams) HistoryEntry {
	visits := params.VisitCount
	if visits < 1 {
		visits = 1
	}

	lastVisit := params.LastVisitTime
	if lastVisit.IsZero() {
		lastVisit = time.Now()
	}

	return HistoryEntry{
		ID:            GenerateUUID(),
		URL:           params.URL,
		Title:         params.Title,
		VisitCount:    visits,
		LastVisitTime: lastVisit,
	}
}

// Matches reports whether every word occurs in the entry's URL or title,
// compared case-insensitively. No words matches everything.
func (e HistoryEntry) Matches(words []string) bool {
	url := strings.ToLower(e.URL)
	title := strings.ToLower(e.Title)
	for _, w := range words {
		w = strings.ToLower(w)
		if !strings.Contains(url, w) && !strings.Contains(title, w) {
			return false
		}
	}
	return true
}

// QueryWords splits query text into the words a history lookup must match.
// Separators are runs of anything that is not a letter, digit or underscore.
func QueryWords(text string) []string {
	return strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && !unicode.IsMark(r) && r != '_'
	})
}
