package tui

import (
	"regexp"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/net/html"
)

// markupTag matches the omnibox description tags.
var markupTag = regexp.MustCompile(`</?(url|match|dim)>`)

// markupSpan is a run of description text under a set of open tags.
type markupSpan struct {
	text  string
	url   bool
	match bool
	dim   bool
}

// parseMarkup splits an omnibox description into spans with entities
// decoded. Unknown or unbalanced tags are tolerated: a close tag without an
// opener is ignored.
func parseMarkup(description string) []markupSpan {
	var spans []markupSpan
	depth := map[string]int{}

	emit := func(raw string) {
		if raw == "" {
			return
		}
		spans = append(spans, markupSpan{
			text:  html.UnescapeString(raw),
			url:   depth["url"] > 0,
			match: depth["match"] > 0,
			dim:   depth["dim"] > 0,
		})
	}

	pos := 0
	for _, loc := range markupTag.FindAllStringSubmatchIndex(description, -1) {
		emit(description[pos:loc[0]])
		name := description[loc[2]:loc[3]]
		if description[loc[0]+1] == '/' {
			if depth[name] > 0 {
				depth[name]--
			}
		} else {
			depth[name]++
		}
		pos = loc[1]
	}
	emit(description[pos:])

	return spans
}

// PlainText strips description markup and decodes entities.
func PlainText(description string) string {
	var b strings.Builder
	for _, s := range parseMarkup(description) {
		b.WriteString(s.text)
	}
	return b.String()
}

// renderMarkup renders a description with tag styles layered over base.
func renderMarkup(description string, base lipgloss.Style, styles Styles) string {
	var b strings.Builder
	for _, s := range parseMarkup(description) {
		style := base
		switch {
		case s.match:
			style = style.Inherit(styles.Match)
		case s.url:
			style = styles.URL.Inherit(base)
		case s.dim:
			style = styles.Dim.Inherit(base)
		}
		b.WriteString(style.Render(s.text))
	}
	return b.String()
}
