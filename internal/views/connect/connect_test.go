package connect

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mousephone/client/internal/address"
)

func typeText(m Model, s string) Model {
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})
	return m
}

func TestOpenFocusesHost(t *testing.T) {
	m, _ := New().Open("10.0.0.1", "9000")
	if m.Focused() != FieldHost {
		t.Fatalf("focus = %v, want host", m.Focused())
	}
	host, port := m.Values()
	if host != "10.0.0.1" || port != "9000" {
		t.Errorf("Values() = %q, %q", host, port)
	}
}

func TestTypingGoesToFocusedField(t *testing.T) {
	m, _ := New().Open("", "")
	m = typeText(m, "192.168.1.5")
	m, _ = m.Next()
	if m.Focused() != FieldPort {
		t.Fatalf("focus = %v, want port", m.Focused())
	}
	m = typeText(m, "8080")

	host, port := m.Values()
	if host != "192.168.1.5" || port != "8080" {
		t.Errorf("Values() = %q, %q", host, port)
	}

	m, _ = m.Next()
	if m.Focused() != FieldHost {
		t.Errorf("Next() from port should wrap to host")
	}
}

func TestCharLimits(t *testing.T) {
	m, _ := New().Open("", "")
	m = typeText(m, "1234567890123456789")
	m, _ = m.Next()
	m = typeText(m, "6553600")
	host, port := m.Values()
	if len(host) != 15 || len(port) != 5 {
		t.Errorf("Values() = %q, %q; want limits 15 and 5", host, port)
	}
}

func TestViewShowsValidation(t *testing.T) {
	m, _ := New().Open("256.1.1.1", "")
	v := m.View(address.Validate("256.1.1.1", ""), false, 80)
	for _, want := range []string{"CONNECT", address.ErrHostInvalid, address.ErrPortEmpty} {
		if !strings.Contains(v, want) {
			t.Errorf("view missing %q:\n%s", want, v)
		}
	}

	v = m.View(address.Validate("192.168.1.5", "8080"), true, 80)
	if strings.Contains(v, address.ErrHostInvalid) {
		t.Errorf("valid target still shows an error:\n%s", v)
	}
	if !strings.Contains(v, "connecting...") {
		t.Errorf("loading form should say so:\n%s", v)
	}
}
