// Package importer reads browser history exports into history entries.
package importer

import (
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/nikbrunner/omnihist/internal/model"
	"golang.org/x/net/html"
)

// ParseHTMLHistory parses a Netscape-format HTML export and returns one
// entry per link. Folder headings are ignored; history is flat.
//
// The visit time comes from LAST_VISIT, falling back to ADD_DATE (both Unix
// seconds), and links with neither are stamped with the import time.
// VISIT_COUNT defaults to 1. Links without an HREF are skipped.
func ParseHTMLHistory(r io.Reader) ([]model.HistoryEntry, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, err
	}

	var entries []model.HistoryEntry

	var parse func(*html.Node)
	parse = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch strings.ToLower(n.Data) {
			case "h3":
				return

			case "a":
				href := getAttr(n, "href")
				if href == "" {
					return
				}

				title := getTextContent(n)
				if title == "" {
					title = href
				}

				entries = append(entries, model.NewHistoryEntry(model.NewHistoryEntryParams{
					URL:           href,
					Title:         title,
					VisitCount:    parseCount(getAttr(n, "visit_count")),
					LastVisitTime: visitTime(n),
				}))
				return
			}
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			parse(c)
		}
	}

	parse(doc)
	return entries, nil
}

// visitTime reads the link's last visit, or the zero time if it has none.
func visitTime(n *html.Node) time.Time {
	for _, key := range []string{"last_visit", "add_date"} {
		if v := getAttr(n, key); v != "" {
			if ts, err := strconv.ParseInt(v, 10, 64); err == nil {
				return time.Unix(ts, 0)
			}
		}
	}
	return time.Time{}
}

func parseCount(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 1
	}
	return n
}

// getTextContent returns the text content of a node.
func getTextContent(n *html.Node) string {
	var text strings.Builder
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		if n.Type == html.TextNode {
			text.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}
	extract(n)
	return strings.TrimSpace(text.String())
}

// getAttr returns the value of an attribute, case-insensitive.
func getAttr(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if strings.EqualFold(attr.Key, key) {
			return attr.Val
		}
	}
	return ""
}
