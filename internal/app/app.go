package app

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mousephone/client/internal/motion"
	"github.com/mousephone/client/internal/observe"
	"github.com/mousephone/client/internal/orientation"
	"github.com/mousephone/client/internal/protocol"
	"github.com/mousephone/client/internal/session"
	"github.com/mousephone/client/internal/theme"
	"github.com/mousephone/client/internal/views/connect"
	"github.com/mousephone/client/internal/views/debug"
	"github.com/mousephone/client/internal/views/help"
	"github.com/mousephone/client/internal/views/status"
	"github.com/mousephone/client/internal/views/trackpad"
	"github.com/rs/zerolog"
)

// Overlay identifies which modal is active.
type Overlay int

const (
	OverlayNone Overlay = iota
	OverlayDebug
	OverlayHelp
)

// arrowStep is the pointer nudge per arrow key, in pixels.
const arrowStep = 10.0

const defaultTiltStep = 0.002

// Deps are the engine pieces the TUI drives.
type Deps struct {
	Machine *session.Machine
	Channel *session.Channel
	Gyro    *orientation.Adapter
	// Manual is set when the virtual phone is the orientation source, so
	// the tilt keys have something to tilt.
	Manual    *orientation.Manual
	Transform motion.Transform
	TiltStep  float64
	HelpStyle string
	Log       zerolog.Logger
}

// stateMsg carries a UI state from the machine's subscription.
type stateMsg session.UIState

// stateClosedMsg means the machine was closed.
type stateClosedMsg struct{}

type frameMsg time.Time

type dragState struct {
	active bool
	moved  bool
	x, y   int
}

// Model is the root Bubble Tea model.
type Model struct {
	machine   *session.Machine
	channel   *session.Channel
	gyro      *orientation.Adapter
	manual    *orientation.Manual
	transform motion.Transform
	tiltStep  float64
	log       zerolog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	sub    *observe.Subscription[session.UIState]

	keys    KeyMap
	width   int
	height  int
	ui      session.UIState
	overlay Overlay
	drag    dragState
	ticking bool

	// Sub-views.
	statusBar status.Model
	connect   connect.Model
	pad       trackpad.Model
	debugLog  debug.Model
	help      help.Model
}

// New creates the root model and subscribes to the machine.
func New(d Deps) Model {
	ctx, cancel := context.WithCancel(context.Background())
	tilt := d.TiltStep
	if tilt <= 0 {
		tilt = defaultTiltStep
	}
	keys := DefaultKeyMap()
	m := Model{
		machine:   d.Machine,
		channel:   d.Channel,
		gyro:      d.Gyro,
		manual:    d.Manual,
		transform: d.Transform,
		tiltStep:  tilt,
		log:       d.Log.With().Str("component", "tui").Logger(),
		ctx:       ctx,
		cancel:    cancel,
		sub:       d.Machine.Subscribe(),
		keys:      keys,
		ui:        d.Machine.State(),
		statusBar: status.New(),
		connect:   connect.New(),
		pad:       trackpad.New(),
		debugLog:  debug.New(),
		help:      help.New(helpMarkdown(keys), d.HelpStyle),
	}
	m.syncStatus()
	return m
}

// Init starts following the machine's state.
func (m Model) Init() tea.Cmd {
	return waitForState(m.sub)
}

func waitForState(sub *observe.Subscription[session.UIState]) tea.Cmd {
	return func() tea.Msg {
		st, ok := <-sub.C()
		if !ok {
			return stateClosedMsg{}
		}
		return stateMsg(st)
	}
}

func frameTick() tea.Cmd {
	return tea.Tick(time.Second/trackpad.FPS, func(t time.Time) tea.Msg {
		return frameMsg(t)
	})
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.statusBar.Width = msg.Width
		m.pad.SetSize(msg.Width, msg.Height-7)
		m.help = m.help.Resize(msg.Width)
		return m, nil

	case stateMsg:
		m, cmd := m.observe(session.UIState(msg))
		return m, tea.Batch(cmd, waitForState(m.sub))

	case stateClosedMsg:
		return m, nil

	case frameMsg:
		return m.frame()

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		return m.handleMouse(msg)
	}

	// Cursor blink and similar input housekeeping.
	if m.ui.ShowConnectDialog {
		var cmd tea.Cmd
		m.connect, cmd = m.connect.Update(msg)
		return m, cmd
	}
	return m, nil
}

// observe takes st as the current UI state and reacts to what changed.
func (m Model) observe(st session.UIState) (Model, tea.Cmd) {
	prev := m.ui
	m.ui = st

	if st.Session != prev.Session {
		m.debugLog.Add(debug.KindSession, st.Session.String())
	}
	if st.LastError != "" && st.LastError != prev.LastError {
		m.debugLog.Add(debug.KindError, st.LastError)
	}

	var cmds []tea.Cmd
	if st.GyroEnabled && !st.IsConnected {
		m.setGyro(false)
		m.ui = m.machine.State()
	}
	if st.ShowConnectDialog && !prev.ShowConnectDialog {
		var cmd tea.Cmd
		m.connect, cmd = m.connect.Open(st.Host, st.Port)
		cmds = append(cmds, cmd)
	}
	if !st.IsConnected {
		m.drag = dragState{}
	}

	m.syncStatus()
	return m, tea.Batch(cmds...)
}

// refresh reads the machine's state right after driving it, so the next
// frame reflects the action without waiting for the subscription.
func (m Model) refresh() (Model, tea.Cmd) {
	return m.observe(m.machine.State())
}

func (m *Model) syncStatus() {
	m.statusBar.Session = m.ui.Session
	m.statusBar.Gyro = m.ui.GyroEnabled
	m.statusBar.Target = m.ui.Host + ":" + m.ui.Port
	m.statusBar.SessionID = m.channel.SessionID()
	m.statusBar.SetCounts(m.channel.Stats())
	m.pad.Gyro = m.ui.GyroEnabled
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.ForceQuit) {
		return m.quit()
	}
	if m.overlay != OverlayNone {
		return m.handleOverlayKey(msg)
	}
	if m.ui.ShowConnectDialog {
		return m.handleDialogKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m.quit()

	case key.Matches(msg, m.keys.Escape):
		if m.ui.LastError != "" {
			m.machine.DismissError()
			return m.refresh()
		}
		return m, nil

	case key.Matches(msg, m.keys.Connect):
		m.machine.OpenConnectDialog()
		return m.refresh()

	case key.Matches(msg, m.keys.Disconnect):
		m.setGyro(false)
		m.machine.Disconnect()
		m.debugLog.Add(debug.KindInput, "disconnect")
		return m.refresh()

	case key.Matches(msg, m.keys.Debug):
		m.overlay = OverlayDebug
		return m, nil

	case key.Matches(msg, m.keys.Help):
		m.overlay = OverlayHelp
		return m, nil
	}

	if !m.ui.IsConnected {
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.LeftClick):
		return m.click(protocol.Left)
	case key.Matches(msg, m.keys.RightClick):
		return m.click(protocol.Right)

	case key.Matches(msg, m.keys.Gyro):
		if err := m.setGyro(!m.ui.GyroEnabled); err != nil {
			m.debugLog.Add(debug.KindError, err.Error())
			m.log.Warn().Err(err).Msg("gyro toggle failed")
			return m, nil
		}
		m, cmd := m.refresh()
		if m.ui.GyroEnabled {
			frames := m.startFrames()
			return m, tea.Batch(cmd, frames)
		}
		return m, cmd

	case key.Matches(msg, m.keys.TiltUp):
		m.tilt(0, -m.tiltStep)
	case key.Matches(msg, m.keys.TiltDown):
		m.tilt(0, m.tiltStep)
	case key.Matches(msg, m.keys.TiltLeft):
		m.tilt(-m.tiltStep, 0)
	case key.Matches(msg, m.keys.TiltRight):
		m.tilt(m.tiltStep, 0)
	case key.Matches(msg, m.keys.Level):
		if m.manual != nil {
			m.manual.Level()
		}

	case key.Matches(msg, m.keys.Up):
		return m.move(m.transform.Drag(0, -arrowStep))
	case key.Matches(msg, m.keys.Down):
		return m.move(m.transform.Drag(0, arrowStep))
	case key.Matches(msg, m.keys.Left):
		return m.move(m.transform.Drag(-arrowStep, 0))
	case key.Matches(msg, m.keys.Right):
		return m.move(m.transform.Drag(arrowStep, 0))
	}

	return m, nil
}

func (m Model) handleOverlayKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Escape),
		m.overlay == OverlayDebug && key.Matches(msg, m.keys.Debug),
		m.overlay == OverlayHelp && key.Matches(msg, m.keys.Help):
		m.overlay = OverlayNone
	case m.overlay == OverlayDebug && key.Matches(msg, m.keys.ScrollUp):
		m.debugLog.ScrollUp(1)
	case m.overlay == OverlayDebug && key.Matches(msg, m.keys.ScrollDown):
		m.debugLog.ScrollDown(1)
	}
	return m, nil
}

func (m Model) handleDialogKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Escape):
		m.machine.DismissConnectDialog()
		return m.refresh()

	case key.Matches(msg, m.keys.Submit):
		host, port := m.connect.Values()
		if m.machine.Connect() {
			m.debugLog.Addf(debug.KindInput, "connect %s:%s", host, port)
		} else {
			m.debugLog.Addf(debug.KindInput, "connect refused for %q:%q", host, port)
		}
		return m.refresh()

	case key.Matches(msg, m.keys.NextField):
		var cmd tea.Cmd
		m.connect, cmd = m.connect.Next()
		return m, cmd
	}

	var cmd tea.Cmd
	m.connect, cmd = m.connect.Update(msg)
	host, port := m.connect.Values()
	m.machine.SetHost(host)
	m.machine.SetPort(port)
	m, rcmd := m.refresh()
	return m, tea.Batch(cmd, rcmd)
}

func (m Model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if m.overlay != OverlayNone || m.ui.ShowConnectDialog || !m.ui.IsConnected {
		m.drag = dragState{}
		return m, nil
	}

	switch msg.Action {
	case tea.MouseActionPress:
		switch msg.Button {
		case tea.MouseButtonLeft:
			m.drag = dragState{active: true, x: msg.X, y: msg.Y}
		case tea.MouseButtonRight:
			return m.click(protocol.Right)
		}

	case tea.MouseActionMotion:
		if !m.drag.active {
			return m, nil
		}
		dx, dy := msg.X-m.drag.x, msg.Y-m.drag.y
		m.drag.x, m.drag.y = msg.X, msg.Y
		if dx == 0 && dy == 0 {
			return m, nil
		}
		m.drag.moved = true
		// The phone is driving the pointer.
		if m.ui.GyroEnabled {
			return m, nil
		}
		return m.move(m.transform.Drag(float64(dx), float64(dy)))

	case tea.MouseActionRelease:
		tap := m.drag.active && !m.drag.moved
		m.drag = dragState{}
		if tap {
			return m.click(protocol.Left)
		}
	}
	return m, nil
}

func (m Model) click(b protocol.Button) (tea.Model, tea.Cmd) {
	m.channel.Send(protocol.Click{Button: b})
	m.pad.Click(b.String())
	m.debugLog.Addf(debug.KindSend, "click %s", b)
	m.syncStatus()
	return m, nil
}

func (m Model) move(d motion.Delta) (tea.Model, tea.Cmd) {
	m.channel.Send(protocol.Move{DX: d.DX, DY: d.DY})
	m.pad.Apply(d)
	m.syncStatus()
	frames := m.startFrames()
	return m, frames
}

func (m *Model) tilt(dRoll, dPitch float64) {
	if m.manual == nil {
		return
	}
	m.manual.Tilt(dRoll, dPitch)
}

// setGyro switches orientation control on or off and records it.
func (m *Model) setGyro(on bool) error {
	if on {
		if err := m.gyro.Enable(m.ctx); err != nil {
			return err
		}
		m.debugLog.Add(debug.KindGyro, "on")
	} else {
		if m.gyro.State() == orientation.Stopped && !m.ui.GyroEnabled {
			return nil
		}
		m.gyro.Disable()
		m.debugLog.Add(debug.KindGyro, "off")
	}
	m.machine.SetGyroEnabled(on)
	return nil
}

func (m *Model) startFrames() tea.Cmd {
	if m.ticking {
		return nil
	}
	m.ticking = true
	return frameTick()
}

func (m Model) frame() (tea.Model, tea.Cmd) {
	m.pad.Step()
	if m.ui.GyroEnabled {
		m.pad.GyroMoves = m.gyro.Moves()
		if m.manual != nil {
			m.pad.Tilt = m.manual.Current()
		}
	}
	m.syncStatus()
	if m.pad.Animating() || m.ui.GyroEnabled {
		return m, frameTick()
	}
	m.ticking = false
	return m, nil
}

// quit tears the session down before leaving.
func (m Model) quit() (tea.Model, tea.Cmd) {
	m.gyro.Disable()
	m.machine.Close()
	m.sub.Close()
	m.cancel()
	m.log.Info().Msg("quit")
	return m, tea.Quit
}

// View renders the full TUI.
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Initializing..."
	}

	var body string
	switch {
	case m.overlay == OverlayDebug:
		body = m.debugLog.View(m.width, m.height-4)
	case m.overlay == OverlayHelp:
		body = m.help.View()
	case m.ui.ShowConnectDialog:
		body = m.connect.View(m.ui.Validation, m.ui.IsLoading, m.width)
	case m.ui.IsConnected:
		body = m.pad.View()
	default:
		body = m.homeView()
	}

	sections := []string{m.statusBar.View()}
	if m.ui.LastError != "" {
		sections = append(sections,
			theme.StyleError.Render("  ✗ "+m.ui.LastError)+theme.StyleDimmed.Render("  esc:dismiss  c:retry"))
	}
	sections = append(sections, body, theme.StyleDimmed.Render(m.footer()))

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) homeView() string {
	var msg string
	switch {
	case m.ui.IsLoading:
		msg = lipgloss.NewStyle().Foreground(theme.ColorConnecting).
			Render("  Connecting to " + m.ui.Host + ":" + m.ui.Port + "...")
	default:
		msg = theme.StyleDimmed.Render("  Not connected. Press c to connect to your desktop.")
	}
	return lipgloss.JoinVertical(lipgloss.Left, "", msg, "")
}

func (m Model) footer() string {
	switch {
	case m.overlay != OverlayNone:
		return "  esc:close"
	case m.ui.ShowConnectDialog:
		return "  enter:connect  tab:field  esc:cancel"
	case m.ui.IsConnected && m.ui.GyroEnabled && m.manual != nil:
		return "  shift+arrows:tilt  0:level  g:gyro off  l/r:click  x:disconnect  ?:help  q:quit"
	case m.ui.IsConnected:
		return "  drag:move  l/r:click  g:gyro  x:disconnect  d:log  ?:help  q:quit"
	default:
		return "  c:connect  d:log  ?:help  q:quit"
	}
}
