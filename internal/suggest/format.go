package suggest

import (
	"fmt"
	"regexp"
	"time"

	"github.com/nikbrunner/omnihist/internal/model"
)

// visitDateLayout renders the trailing visit date: weekday, month, day,
// year and 24-hour time without seconds.
const visitDateLayout = "Mon Jan 02 2006 15:04"

// Formatter turns history entries into omnibox suggestions.
type Formatter struct {
	Now      func() time.Time // nil = time.Now
	Location *time.Location   // nil = time.Local
}

func (f Formatter) now() time.Time {
	if f.Now != nil {
		return f.Now()
	}
	return time.Now()
}

func (f Formatter) location() *time.Location {
	if f.Location != nil {
		return f.Location
	}
	return time.Local
}

// Format builds the suggestion for one entry. rx is the batch's shared
// match pattern from WordDetector and may be nil.
func (f Formatter) Format(entry model.HistoryEntry, rx *regexp.Regexp) model.Suggestion {
	loc := f.location()

	plural := ""
	if entry.VisitCount > 1 {
		plural = "s"
	}

	description := fmt.Sprintf("%d <dim>visit%s, last: %s</dim> <url>%s</url> %s &#8227; %s",
		entry.VisitCount,
		plural,
		RelativeDate(entry.LastVisitTime, f.now(), loc),
		ReescapeXML(entry.URL),
		ApplyWordDetector(entry.Title, rx),
		entry.LastVisitTime.In(loc).Format(visitDateLayout),
	)

	return model.Suggestion{
		Content:     entry.URL,
		Description: description,
	}
}

// FormatAll formats a batch, compiling the match pattern once from text.
func (f Formatter) FormatAll(entries []model.HistoryEntry, text string) []model.Suggestion {
	rx := WordDetector(text)
	suggestions := make([]model.Suggestion, len(entries))
	for i, e := range entries {
		suggestions[i] = f.Format(e, rx)
	}
	return suggestions
}

// DefaultDescription is the placeholder suggestion shown before results load.
func DefaultDescription(base, text string) string {
	return "Open <url>" + ReescapeXML(BuildSearchURL(base, text)) + "</url>"
}
