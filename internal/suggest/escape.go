package suggest

import "strings"

// xmlSpecials are the characters that must be entity-escaped in omnibox markup.
const xmlSpecials = `"'<>&`

var (
	xmlUnescaper = strings.NewReplacer(
		"&quot;", `"`,
		"&apos;", "'",
		"&lt;", "<",
		"&gt;", ">",
		"&amp;", "&",
	)
	xmlEscaper = strings.NewReplacer(
		"&", "&amp;",
		`"`, "&quot;",
		"'", "&apos;",
		"<", "&lt;",
		">", "&gt;",
	)
)

// ReescapeXML returns text with the five XML specials entity-escaped
// exactly once. Existing named entities are collapsed first, so text that
// is already escaped comes back unchanged instead of double-escaped.
func ReescapeXML(text string) string {
	if text == "" || !strings.ContainsAny(text, xmlSpecials) {
		return text
	}

	plain := xmlUnescaper.Replace(text)
	if !strings.ContainsAny(plain, xmlSpecials) {
		return plain
	}
	return xmlEscaper.Replace(plain)
}

// UnescapeXML collapses the named entities ReescapeXML produces.
func UnescapeXML(text string) string {
	return xmlUnescaper.Replace(text)
}
