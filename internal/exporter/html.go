// Package exporter writes history in the Netscape HTML format that the
// importer reads back.
package exporter

import (
	"fmt"
	"html"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/nikbrunner/omnihist/internal/model"
)

// DefaultExportPath returns the default export file path.
// Format: ~/Downloads/history-export-YYYY-MM-DD.html
func DefaultExportPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	filename := fmt.Sprintf("history-export-%s.html", time.Now().Format("2006-01-02"))
	return filepath.Join(home, "Downloads", filename), nil
}

// ExportHTML renders entries as a flat Netscape HTML list, one link per
// entry carrying LAST_VISIT and VISIT_COUNT.
func ExportHTML(entries []model.HistoryEntry) string {
	var b strings.Builder

	b.WriteString("<!DOCTYPE NETSCAPE-Bookmark-file-1>\n")
	b.WriteString("<META HTTP-EQUIV=\"Content-Type\" CONTENT=\"text/html; charset=UTF-8\">\n")
	b.WriteString("<TITLE>History</TITLE>\n")
	b.WriteString("<H1>History</H1>\n")
	b.WriteString("<DL><p>\n")

	for _, e := range entries {
		fmt.Fprintf(&b,
			"    <DT><A HREF=\"%s\" LAST_VISIT=\"%d\" VISIT_COUNT=\"%d\">%s</A>\n",
			html.EscapeString(e.URL),
			e.LastVisitTime.Unix(),
			e.VisitCount,
			html.EscapeString(e.Title),
		)
	}

	b.WriteString("</DL><p>\n")
	return b.String()
}
