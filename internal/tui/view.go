package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/nikbrunner/omnihist/internal/tui/layout"
)

func (a App) renderView() string {
	lines := []string{
		a.input.View(),
		a.renderRow(a.defaultDescription, a.cursor == 0),
	}
	lines = append(lines, a.renderSuggestions()...)
	lines = append(lines, "", a.renderHelpBar())

	content := a.styles.App.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))

	// Use Place to ensure exact terminal dimensions and prevent overflow
	return lipgloss.Place(a.width, a.height, lipgloss.Left, lipgloss.Top, content)
}

// renderSuggestions renders the visible window of suggestion rows.
func (a App) renderSuggestions() []string {
	if len(a.suggestions) == 0 {
		if strings.TrimSpace(a.input.Value()) == "" {
			return nil
		}
		return []string{a.styles.Empty.Render("  No matching history")}
	}

	height := layout.CalculateListHeight(a.height, a.layoutConfig.List)
	selected := a.cursor - 1
	if selected < 0 {
		selected = 0
	}
	offset := layout.CalculateViewportOffset(selected, len(a.suggestions), height)

	end := offset + height
	if end > len(a.suggestions) {
		end = len(a.suggestions)
	}

	rows := make([]string, 0, end-offset)
	for i := offset; i < end; i++ {
		rows = append(rows, a.renderRow(a.suggestions[i].Description, a.cursor == i+1))
	}
	return rows
}

// renderRow renders one description with a cursor gutter, truncated to the
// row width.
func (a App) renderRow(description string, selected bool) string {
	base := a.styles.Item
	gutter := "  "
	if selected {
		base = a.styles.ItemSelected
		gutter = a.styles.Cursor.Render("> ")
	}

	width := layout.CalculateRowWidth(a.width, a.layoutConfig.List)
	return gutter + layout.TruncateANSIAware(renderMarkup(description, base, a.styles), width, a.layoutConfig.Text)
}

// renderHelpBar renders the status message (if any) above the key hints.
// The message is cut to one row.
func (a App) renderHelpBar() string {
	hints := a.renderHints(a.helpBindings()...)
	text, _ := layout.TruncateText(a.messageText, layout.CalculateRowWidth(a.width, a.layoutConfig.List)-2, a.layoutConfig.Text)

	switch a.messageType {
	case MessageError:
		return a.styles.Error.Render("✗ "+text) + "\n" + hints
	case MessageSuccess:
		return a.styles.Success.Render("✓ "+text) + "\n" + hints
	default:
		return hints
	}
}
