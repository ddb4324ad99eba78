package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
)

// renderHints renders bindings horizontally for the bottom bar: "↑/^p:up Enter:open"
func (a App) renderHints(bindings ...key.Binding) string {
	parts := make([]string, 0, len(bindings))
	for _, b := range bindings {
		h := b.Help()
		if h.Key == "" {
			continue
		}
		parts = append(parts, a.styles.HintKey.Render(h.Key)+":"+a.styles.HintDesc.Render(h.Desc))
	}
	return strings.Join(parts, " ")
}

// helpBindings returns the bindings relevant to the current selection.
func (a App) helpBindings() []key.Binding {
	bindings := []key.Binding{a.keys.Up, a.keys.Down, a.keys.Enter}
	if a.cursor > 0 {
		bindings = append(bindings, a.keys.Yank)
	}
	return append(bindings, a.keys.Cancel)
}
