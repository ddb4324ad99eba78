package suggest

import (
	"net/url"
	"strings"
)

// DefaultSearchBaseURL is the history page searched when committed text is
// not a direct navigation target.
const DefaultSearchBaseURL = "chrome://history"

// BuildSearchURL returns the fallback search-results URL for text: base
// itself for blank text, otherwise base with a q parameter holding the
// trimmed text.
func BuildSearchURL(base, text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return base
	}
	return base + "/?" + url.Values{"q": {text}}.Encode()
}

// hostSchemes are the schemes that are not absolute without a host.
var hostSchemes = map[string]bool{
	"http":  true,
	"https": true,
	"ftp":   true,
	"ws":    true,
	"wss":   true,
}

// isAbsoluteURL reports whether s parses as a URL with a scheme, and a host
// when the scheme needs one.
func isAbsoluteURL(s string) bool {
	u, err := url.Parse(s)
	if err != nil || u.Scheme == "" {
		return false
	}
	return !hostSchemes[u.Scheme] || u.Host != ""
}
