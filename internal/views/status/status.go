package status

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/mousephone/client/internal/session"
	"github.com/mousephone/client/internal/theme"
)

// Model holds the status bar state.
type Model struct {
	Session   session.State
	Target    string
	SessionID string
	Gyro      bool
	Sent      uint64
	Dropped   uint64
	Width     int
}

// New creates a status bar model.
func New() Model {
	return Model{Session: session.IdleState()}
}

// SetCounts updates the message counters.
func (m *Model) SetCounts(sent, dropped uint64) {
	m.Sent = sent
	m.Dropped = dropped
}

// View renders the status bar.
func (m Model) View() string {
	width := m.Width
	if width < 40 {
		width = 40
	}

	kind := m.Session.Kind.String()
	label := kind
	switch m.Session.Kind {
	case session.Connected:
		label = "connected to " + m.Session.Host
	case session.Connecting:
		label = "connecting to " + m.Target + "..."
	case session.Idle:
		label = "not connected"
	}
	connStr := lipgloss.NewStyle().Foreground(theme.StateColor(kind)).
		Render(theme.StateGlyph(kind) + " " + label)

	sep := lipgloss.NewStyle().Foreground(theme.ColorBorder).Render(" | ")
	content := connStr

	if m.Gyro {
		content += sep + lipgloss.NewStyle().Foreground(theme.ColorGyro).Render("gyro on")
	}

	counts := fmt.Sprintf("%d sent", m.Sent)
	if m.Dropped > 0 {
		counts += fmt.Sprintf("  %d dropped", m.Dropped)
	}
	content += sep + counts

	if len(m.SessionID) >= 8 {
		content += sep + theme.StyleDimmed.Render("session "+m.SessionID[:8])
	}

	bar := lipgloss.NewStyle().
		Width(width).
		Padding(0, 1).
		BorderStyle(lipgloss.DoubleBorder()).
		BorderForeground(theme.ColorBorder).
		Render(content)

	return bar
}
