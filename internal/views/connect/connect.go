// Package connect renders the host/port form shown before a session.
package connect

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mousephone/client/internal/address"
	"github.com/mousephone/client/internal/theme"
)

// Field identifies the focused input.
type Field int

const (
	FieldHost Field = iota
	FieldPort
)

// Model holds the two text inputs. The inputs own the text; validation
// results come from the session machine.
type Model struct {
	Host  textinput.Model
	Port  textinput.Model
	focus Field
}

// New creates an empty, unfocused form.
func New() Model {
	host := textinput.New()
	host.Prompt = "host "
	host.Placeholder = "192.168.1.10"
	host.CharLimit = 15
	host.Width = 16

	port := textinput.New()
	port.Prompt = "port "
	port.Placeholder = "8080"
	port.CharLimit = 5
	port.Width = 6

	return Model{Host: host, Port: port}
}

// Open fills the form and focuses the host field.
func (m Model) Open(host, port string) (Model, tea.Cmd) {
	m.Host.SetValue(host)
	m.Port.SetValue(port)
	m.Host.CursorEnd()
	m.Port.CursorEnd()
	return m.setFocus(FieldHost)
}

// Focused returns the field receiving keystrokes.
func (m Model) Focused() Field {
	return m.focus
}

// Next moves focus to the other field.
func (m Model) Next() (Model, tea.Cmd) {
	if m.focus == FieldHost {
		return m.setFocus(FieldPort)
	}
	return m.setFocus(FieldHost)
}

func (m Model) setFocus(f Field) (Model, tea.Cmd) {
	m.focus = f
	if f == FieldHost {
		m.Port.Blur()
		return m, m.Host.Focus()
	}
	m.Host.Blur()
	return m, m.Port.Focus()
}

// Update forwards msg to the focused input.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd
	if m.focus == FieldHost {
		m.Host, cmd = m.Host.Update(msg)
	} else {
		m.Port, cmd = m.Port.Update(msg)
	}
	return m, cmd
}

// Values returns the raw field contents.
func (m Model) Values() (host, port string) {
	return m.Host.Value(), m.Port.Value()
}

// View renders the form with per-field validation messages.
func (m Model) View(v address.Result, loading bool, width int) string {
	innerW := width - 4
	if innerW < 30 {
		innerW = 30
	}

	title := theme.StyleHeader.Render(" CONNECT ")
	lines := []string{title, ""}
	lines = append(lines, m.Host.View(), fieldError(v.HostError), "")
	lines = append(lines, m.Port.View(), fieldError(v.PortError), "")

	submit := "enter:connect"
	switch {
	case loading:
		submit = lipgloss.NewStyle().Foreground(theme.ColorConnecting).Render("connecting...")
	case v.Submittable:
		submit = lipgloss.NewStyle().Foreground(theme.ColorHealthy).Render(submit)
	default:
		submit = theme.StyleDimmed.Render(submit)
	}
	lines = append(lines, submit+theme.StyleDimmed.Render("  tab:next field  esc:cancel"))

	return lipgloss.NewStyle().
		Width(innerW).
		Padding(1, 2).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(theme.ColorBorder).
		Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

func fieldError(msg string) string {
	if msg == "" {
		return ""
	}
	return theme.StyleError.Render("  " + msg)
}
