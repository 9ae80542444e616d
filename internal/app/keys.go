package app

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
)

// KeyMap defines all keyboard bindings for the TUI.
type KeyMap struct {
	Quit       key.Binding
	ForceQuit  key.Binding
	Escape     key.Binding
	Connect    key.Binding
	Disconnect key.Binding
	Submit     key.Binding
	NextField  key.Binding

	LeftClick  key.Binding
	RightClick key.Binding
	Up         key.Binding
	Down       key.Binding
	Left       key.Binding
	Right      key.Binding

	Gyro      key.Binding
	TiltUp    key.Binding
	TiltDown  key.Binding
	TiltLeft  key.Binding
	TiltRight key.Binding
	Level     key.Binding

	Debug      key.Binding
	Help       key.Binding
	ScrollUp   key.Binding
	ScrollDown key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		ForceQuit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("ctrl+c", "quit from any screen"),
		),
		Escape: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "dismiss error / close overlay"),
		),
		Connect: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "connect"),
		),
		Disconnect: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "disconnect"),
		),
		Submit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "connect to the entered address"),
		),
		NextField: key.NewBinding(
			key.WithKeys("tab", "shift+tab"),
			key.WithHelp("tab", "switch between host and port"),
		),
		LeftClick: key.NewBinding(
			key.WithKeys("l"),
			key.WithHelp("l", "left click"),
		),
		RightClick: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "right click"),
		),
		Up: key.NewBinding(
			key.WithKeys("up"),
			key.WithHelp("↑", "nudge pointer up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down"),
			key.WithHelp("↓", "nudge pointer down"),
		),
		Left: key.NewBinding(
			key.WithKeys("left"),
			key.WithHelp("←", "nudge pointer left"),
		),
		Right: key.NewBinding(
			key.WithKeys("right"),
			key.WithHelp("→", "nudge pointer right"),
		),
		Gyro: key.NewBinding(
			key.WithKeys("g"),
			key.WithHelp("g", "toggle gyro mode"),
		),
		TiltUp: key.NewBinding(
			key.WithKeys("shift+up"),
			key.WithHelp("shift+↑", "tilt forward"),
		),
		TiltDown: key.NewBinding(
			key.WithKeys("shift+down"),
			key.WithHelp("shift+↓", "tilt back"),
		),
		TiltLeft: key.NewBinding(
			key.WithKeys("shift+left"),
			key.WithHelp("shift+←", "roll left"),
		),
		TiltRight: key.NewBinding(
			key.WithKeys("shift+right"),
			key.WithHelp("shift+→", "roll right"),
		),
		Level: key.NewBinding(
			key.WithKeys("0"),
			key.WithHelp("0", "level the virtual phone"),
		),
		Debug: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "session log"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "this help"),
		),
		ScrollUp: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/↑", "scroll up"),
		),
		ScrollDown: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/↓", "scroll down"),
		),
	}
}

// helpMarkdown renders the key map as the help overlay's Markdown.
func helpMarkdown(k KeyMap) string {
	sections := []struct {
		title    string
		bindings []key.Binding
	}{
		{"Session", []key.Binding{k.Connect, k.Submit, k.NextField, k.Disconnect, k.Escape}},
		{"Pointer", []key.Binding{k.LeftClick, k.RightClick, k.Up, k.Down, k.Left, k.Right}},
		{"Gyro", []key.Binding{k.Gyro, k.TiltUp, k.TiltDown, k.TiltLeft, k.TiltRight, k.Level}},
		{"Other", []key.Binding{k.Debug, k.Help, k.Quit, k.ForceQuit}},
	}

	var b strings.Builder
	b.WriteString("# mousephone\n\n")
	b.WriteString("Drag with the mouse on the trackpad to move the remote pointer. ")
	b.WriteString("A tap without movement is a left click, a right press is a right click.\n\n")
	for _, s := range sections {
		fmt.Fprintf(&b, "## %s\n\n", s.title)
		for _, bind := range s.bindings {
			h := bind.Help()
			fmt.Fprintf(&b, "- `%s` %s\n", h.Key, h.Desc)
		}
		b.WriteString("\n")
	}
	return b.String()
}
