// Package debug renders the session log overlay: a bounded, scrollable
// list of what the client did and saw.
package debug

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/mousephone/client/internal/theme"
)

const capacity = 200

// Entry kinds.
const (
	KindSession = "sess"
	KindSend    = "tx"
	KindGyro    = "gyro"
	KindInput   = "ui"
	KindError   = "err"
)

// Entry is one logged event. Repeat counts consecutive identical events
// folded into it.
type Entry struct {
	At     time.Time
	Kind   string
	Text   string
	Repeat int
}

// Model is the session log. The zero value is usable.
type Model struct {
	entries []Entry
	hidden  int // entries scrolled off below the viewport
	now     func() time.Time
}

// New creates an empty log.
func New() Model {
	return Model{now: time.Now}
}

func (m *Model) clock() time.Time {
	if m.now == nil {
		return time.Now()
	}
	return m.now()
}

// Add records an event and jumps back to the newest entry. An event equal
// to the last one bumps its repeat count instead of taking a new line.
func (m *Model) Add(kind, text string) {
	m.hidden = 0
	at := m.clock()
	if n := len(m.entries); n > 0 {
		last := &m.entries[n-1]
		if last.Kind == kind && last.Text == text {
			last.Repeat++
			last.At = at
			return
		}
	}
	m.entries = append(m.entries, Entry{At: at, Kind: kind, Text: text, Repeat: 1})
	if over := len(m.entries) - capacity; over > 0 {
		m.entries = append(m.entries[:0], m.entries[over:]...)
	}
}

// Addf is Add with a format string.
func (m *Model) Addf(kind, format string, args ...any) {
	m.Add(kind, fmt.Sprintf(format, args...))
}

// Entries returns a copy of the log, oldest first.
func (m Model) Entries() []Entry {
	return append([]Entry(nil), m.entries...)
}

// Len is the number of entries.
func (m Model) Len() int { return len(m.entries) }

// Hidden is how many newer entries are scrolled out of view.
func (m Model) Hidden() int { return m.hidden }

// ScrollUp shows n older entries. The newest entry can scroll away but
// the oldest always stays on screen.
func (m *Model) ScrollUp(n int) { m.scrollTo(m.hidden + n) }

// ScrollDown shows n newer entries.
func (m *Model) ScrollDown(n int) { m.scrollTo(m.hidden - n) }

func (m *Model) scrollTo(h int) {
	m.hidden = max(0, min(h, len(m.entries)-1))
}

// window returns the entries that fit in rows lines.
func (m Model) window(rows int) []Entry {
	end := len(m.entries) - m.hidden
	return m.entries[max(0, end-rows):max(0, end)]
}

func panel(width int) lipgloss.Style {
	return lipgloss.NewStyle().
		Width(width).
		Padding(1, 2).
		BorderStyle(lipgloss.DoubleBorder()).
		BorderForeground(theme.ColorBorder)
}

// View renders the log inside a width x height panel.
func (m Model) View(width, height int) string {
	inner := max(20, width-4)
	rows := max(3, height-6)

	title := theme.StyleHeader.Render(" SESSION LOG ")
	footer := theme.StyleDimmed.Render(fmt.Sprintf("j/k:scroll  esc:close  %d entries", len(m.entries)))

	if len(m.entries) == 0 {
		empty := theme.StyleDimmed.Render("  No events recorded yet. Press c to connect.")
		return panel(inner).Render(lipgloss.JoinVertical(lipgloss.Left, title, "", empty, "", footer))
	}

	var b strings.Builder
	for i, e := range m.window(rows) {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(renderEntry(e, inner))
	}

	more := ""
	if m.hidden > 0 {
		more = theme.StyleDimmed.Render(fmt.Sprintf(" ↓ %d newer", m.hidden))
	}
	return panel(inner).Render(lipgloss.JoinVertical(lipgloss.Left, title, b.String(), more, footer))
}

func renderEntry(e Entry, width int) string {
	stamp := theme.StyleDimmed.Render(e.At.Format("15:04:05.000"))
	kind := lipgloss.NewStyle().Foreground(kindColor(e.Kind)).Width(5).Render(e.Kind)

	text := e.Text
	suffix := ""
	if e.Repeat > 1 {
		suffix = theme.StyleDimmed.Render(fmt.Sprintf(" ×%d", e.Repeat))
	}
	// 12 for the timestamp, 5 for the kind, and the separators.
	if room := width - 20; room > 3 && len(text) > room {
		text = text[:room-3] + "..."
	}
	return stamp + " " + kind + " " + text + suffix
}

func kindColor(kind string) lipgloss.Color {
	switch kind {
	case KindSession:
		return theme.ColorConnected
	case KindSend:
		return theme.ColorClick
	case KindGyro:
		return theme.ColorGyro
	case KindError:
		return theme.ColorFailed
	default:
		return theme.ColorDimmed
	}
}
