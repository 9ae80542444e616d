// Package trackpad draws a small map of the remote pointer. The cursor
// follows sent deltas through a spring so bursts of movement read as
// motion rather than jumps.
package trackpad

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/harmonica"
	"github.com/charmbracelet/lipgloss"
	"github.com/mousephone/client/internal/motion"
	"github.com/mousephone/client/internal/theme"
)

// Pixels per cell on each axis of the map.
const (
	xScale = 4.0
	yScale = 8.0
)

// FPS is the animation frame rate the caller should tick at.
const FPS = 60

const settleEpsilon = 0.01

// Model is the trackpad state.
type Model struct {
	Width  int
	Height int

	spring harmonica.Spring
	x, y   float64 // drawn position, cells
	vx, vy float64
	tx, ty float64 // target position, cells

	Gyro      bool
	Tilt      motion.Sample
	GyroMoves uint64

	lastClick string
}

// New creates a trackpad with the cursor centred once sized.
func New() Model {
	return Model{
		spring: harmonica.NewSpring(harmonica.FPS(FPS), 8.0, 0.8),
	}
}

// SetSize resizes the map and keeps the cursor inside it.
func (m *Model) SetSize(width, height int) {
	first := m.Width == 0 || m.Height == 0
	m.Width, m.Height = width, height
	if first {
		m.tx, m.ty = m.padW()/2, m.padH()/2
		m.x, m.y = m.tx, m.ty
		return
	}
	m.clamp()
}

func (m Model) padW() float64 { return math.Max(float64(m.Width-4), 1) }
func (m Model) padH() float64 { return math.Max(float64(m.Height-2), 1) }

// Apply moves the target by a delta in pixels.
func (m *Model) Apply(d motion.Delta) {
	m.tx += d.DX / xScale
	m.ty += d.DY / yScale
	m.clamp()
}

func (m *Model) clamp() {
	m.tx = math.Max(0, math.Min(m.padW()-1, m.tx))
	m.ty = math.Max(0, math.Min(m.padH()-1, m.ty))
}

// Click records the last button pressed for display.
func (m *Model) Click(button string) {
	m.lastClick = button
}

// Step advances the animation one frame and reports whether the cursor is
// still moving.
func (m *Model) Step() bool {
	m.x, m.vx = m.spring.Update(m.x, m.vx, m.tx)
	m.y, m.vy = m.spring.Update(m.y, m.vy, m.ty)
	if !m.Animating() {
		m.x, m.y, m.vx, m.vy = m.tx, m.ty, 0, 0
		return false
	}
	return true
}

// Animating reports whether the drawn cursor has not reached the target.
func (m Model) Animating() bool {
	return math.Abs(m.x-m.tx) > settleEpsilon || math.Abs(m.y-m.ty) > settleEpsilon ||
		math.Abs(m.vx) > settleEpsilon || math.Abs(m.vy) > settleEpsilon
}

// Cursor returns the drawn cursor cell.
func (m Model) Cursor() (col, row int) {
	return int(math.Round(m.x)), int(math.Round(m.y))
}

// View renders the pad.
func (m Model) View() string {
	w, h := int(m.padW()), int(m.padH())
	col, row := m.Cursor()

	cursor := lipgloss.NewStyle().Foreground(theme.ColorCursor).Bold(true).Render("◆")
	if m.Gyro {
		cursor = lipgloss.NewStyle().Foreground(theme.ColorGyro).Bold(true).Render("◆")
	}
	dot := lipgloss.NewStyle().Foreground(theme.ColorTarget).Render("·")

	rows := make([]string, h)
	for r := 0; r < h; r++ {
		var b strings.Builder
		for c := 0; c < w; c++ {
			switch {
			case r == row && c == col:
				b.WriteString(cursor)
			case r%4 == 0 && c%8 == 0:
				b.WriteString(dot)
			default:
				b.WriteByte(' ')
			}
		}
		rows[r] = b.String()
	}

	pad := theme.StyleBorder.Render(strings.Join(rows, "\n"))
	return lipgloss.JoinVertical(lipgloss.Left, pad, m.caption())
}

func (m Model) caption() string {
	var parts []string
	if m.Gyro {
		parts = append(parts, lipgloss.NewStyle().Foreground(theme.ColorGyro).Render(
			fmt.Sprintf("gyro  roll %+.3f  pitch %+.3f  %d moves", m.Tilt.Roll, m.Tilt.Pitch, m.GyroMoves)))
	} else {
		parts = append(parts, theme.StyleDimmed.Render("drag to move"))
	}
	if m.lastClick != "" {
		parts = append(parts, lipgloss.NewStyle().Foreground(theme.ColorClick).Render(m.lastClick+" click"))
	}
	return strings.Join(parts, "  ")
}
