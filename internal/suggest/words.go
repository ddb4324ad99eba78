package suggest

import (
	"regexp"
	"strings"
)

// Sentinels bracket matched spans between highlighting and escaping.
// Neither is valid in XML, so they are stripped from titles up front.
const (
	matchOpen  = "\x01"
	matchClose = "\x02"
)

var (
	nonWordRun = regexp.MustCompile(`[^\p{L}\p{M}\p{N}_]+`)
	markedSpan = regexp.MustCompile(`(?s)\x01(.*?)\x02`)
	sentinels  = strings.NewReplacer(matchOpen, "", matchClose, "")
)

// WordDetector compiles the shared match pattern for one keystroke batch:
// the query's words as a case-insensitive alternation.
// It returns nil when the text has no word characters; a nil detector
// highlights nothing.
func WordDetector(text string) *regexp.Regexp {
	var words []string
	for _, w := range nonWordRun.Split(text, -1) {
		if w != "" {
			words = append(words, regexp.QuoteMeta(w))
		}
	}
	if len(words) == 0 {
		return nil
	}
	return regexp.MustCompile(`(?i)` + strings.Join(words, "|"))
}

// ApplyWordDetector escapes s for omnibox markup and wraps every span
// matched by rx in <match></match>.
//
// Spans are located on the raw text and bracketed with sentinels, the text
// is escaped, and only then are sentinels turned into tags. Escaping never
// sees the tags, and tag-like text in s stays escaped.
//
// Entity text already in s is matched as written: "Tom &amp; Jerry" with
// the word "amp" yields "Tom &amp;<match>amp</match>; Jerry", whose plain
// form is not the escaped title.
func ApplyWordDetector(s string, rx *regexp.Regexp) string {
	s = sentinels.Replace(s)
	if rx != nil {
		s = rx.ReplaceAllString(s, matchOpen+"${0}"+matchClose)
	}
	return markedSpan.ReplaceAllString(ReescapeXML(s), "<match>${1}</match>")
}
