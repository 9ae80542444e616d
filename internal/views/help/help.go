// Package help renders the key reference overlay from Markdown.
package help

import (
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/mousephone/client/internal/theme"
)

// DefaultStyle is the glamour style used when none is given.
const DefaultStyle = "dark"

// Model caches the rendered help for the current width.
type Model struct {
	markdown string
	style    string
	width    int
	rendered string
}

// New creates a help overlay for markdown rendered in the given glamour
// standard style ("dark", "light", "notty", ...).
func New(markdown, style string) Model {
	if style == "" {
		style = DefaultStyle
	}
	return Model{markdown: markdown, style: style}
}

// Resize re-renders for width if it changed.
func (m Model) Resize(width int) Model {
	if width == m.width && m.rendered != "" {
		return m
	}
	m.width = width
	m.rendered = m.render(width)
	return m
}

func (m Model) render(width int) string {
	wrap := width - 8
	if wrap < 20 {
		wrap = 20
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(m.style),
		glamour.WithWordWrap(wrap),
	)
	if err != nil {
		return m.markdown
	}
	out, err := r.Render(m.markdown)
	if err != nil {
		return m.markdown
	}
	return strings.TrimRight(out, "\n")
}

// View renders the overlay panel.
func (m Model) View() string {
	body := m.rendered
	if body == "" {
		body = m.markdown
	}
	help := theme.StyleDimmed.Render("esc:close")
	return lipgloss.NewStyle().
		Padding(0, 1).
		BorderStyle(lipgloss.DoubleBorder()).
		BorderForeground(theme.ColorBorder).
		Render(lipgloss.JoinVertical(lipgloss.Left, body, help))
}
