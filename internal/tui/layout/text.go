package layout

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// ansiRegex matches SGR escape sequences.
var ansiRegex = regexp.MustCompile(`\x1b\[[0-9;]*m`)

const ansiReset = "\x1b[0m"

// StripANSI removes ANSI escape codes from a string.
func StripANSI(s string) string {
	return ansiRegex.ReplaceAllString(s, "")
}

// VisibleLength returns the visible length of a string (excluding ANSI codes).
func VisibleLength(s string) int {
	return utf8.RuneCountInString(StripANSI(s))
}

// TruncateText truncates plain text to maxWidth runes, ending in the
// ellipsis when it had to cut. Reports whether truncation occurred.
func TruncateText(text string, maxWidth int, cfg TextConfig) (string, bool) {
	if maxWidth <= 0 {
		return "", true
	}
	if utf8.RuneCountInString(text) <= maxWidth {
		return text, false
	}

	ellipsis := []rune(cfg.Ellipsis)
	if maxWidth <= len(ellipsis) {
		return string(ellipsis[:maxWidth]), true
	}
	return string([]rune(text)[:maxWidth-len(ellipsis)]) + cfg.Ellipsis, true
}

// TruncateANSIAware truncates styled text to maxWidth visible runes.
// Escape codes before the cut are kept so highlighted spans survive, and a
// reset is appended after the ellipsis to stop style bleed.
func TruncateANSIAware(styled string, maxWidth int, cfg TextConfig) string {
	if maxWidth <= 0 {
		return ""
	}
	if VisibleLength(styled) <= maxWidth {
		return styled
	}

	budget := maxWidth - utf8.RuneCountInString(cfg.Ellipsis)
	if budget < 0 {
		budget = 0
	}

	var b strings.Builder
	pos := 0
	for _, loc := range ansiRegex.FindAllStringIndex(styled, -1) {
		budget = writeRunes(&b, styled[pos:loc[0]], budget)
		if budget == 0 {
			break
		}
		b.WriteString(styled[loc[0]:loc[1]])
		pos = loc[1]
	}
	if budget > 0 {
		writeRunes(&b, styled[pos:], budget)
	}

	b.WriteString(cfg.Ellipsis)
	b.WriteString(ansiReset)
	return b.String()
}

// writeRunes writes up to budget runes of s and returns the budget left.
func writeRunes(b *strings.Builder, s string, budget int) int {
	for _, r := range s {
		if budget == 0 {
			break
		}
		b.WriteRune(r)
		budget--
	}
	return budget
}
