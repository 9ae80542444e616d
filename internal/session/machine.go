package session

import (
	"context"

	"github.com/mousephone/client/internal/address"
	"github.com/mousephone/client/internal/observe"
	"github.com/rs/zerolog"
)

// Conn is the part of a Channel the Machine drives.
type Conn interface {
	Connect(host, port string)
	Disconnect()
	State() State
	Subscribe() *observe.Subscription[State]
}

// UIState is everything the presentation layer renders about the session
// and the connect form.
type UIState struct {
	Session     State
	IsConnected bool
	IsLoading   bool
	LastError   string

	Host              string
	Port              string
	Validation        address.Result
	ShowConnectDialog bool

	GyroEnabled bool
}

// Machine republishes a Conn's state as a UIState and gates connect
// attempts on address validation.
type Machine struct {
	conn Conn
	ui   *observe.Value[UIState]
	log  zerolog.Logger
}

// NewMachine creates a machine over conn. The form starts empty, so it is
// not submittable until a host and port are entered.
func NewMachine(conn Conn, logger zerolog.Logger) *Machine {
	st := conn.State()
	initial := UIState{
		Session:     st,
		IsConnected: st.Kind == Connected,
		IsLoading:   st.Kind == Connecting,
		Validation:  address.Validate("", ""),
	}
	return &Machine{
		conn: conn,
		ui:   observe.NewValue(initial),
		log:  logger.With().Str("component", "machine").Logger(),
	}
}

// Run follows the Conn's state stream until ctx is done.
func (m *Machine) Run(ctx context.Context) {
	sub := m.conn.Subscribe()
	defer sub.Close()
	for {
		select {
		case <-ctx.Done():
			return
		case st, ok := <-sub.C():
			if !ok {
				return
			}
			m.apply(st)
		}
	}
}

func (m *Machine) apply(st State) {
	m.ui.Update(func(u UIState) UIState {
		u.Session = st
		u.IsConnected = st.Kind == Connected
		u.IsLoading = st.Kind == Connecting
		switch st.Kind {
		case Failed:
			u.LastError = st.Reason
		case Connecting:
			u.LastError = ""
		}
		return u
	})
}

// SetHost records a keystroke in the host field and revalidates.
func (m *Machine) SetHost(host string) {
	m.ui.Update(func(u UIState) UIState {
		u.Host = host
		u.Validation = address.Validate(u.Host, u.Port)
		return u
	})
}

// SetPort records a keystroke in the port field and revalidates.
func (m *Machine) SetPort(port string) {
	m.ui.Update(func(u UIState) UIState {
		u.Port = port
		u.Validation = address.Validate(u.Host, u.Port)
		return u
	})
}

// SetTarget fills both fields at once, e.g. from configuration.
func (m *Machine) SetTarget(host, port string) {
	m.ui.Update(func(u UIState) UIState {
		u.Host = host
		u.Port = port
		u.Validation = address.Validate(u.Host, u.Port)
		return u
	})
}

// Connect starts a session to the entered target. It does nothing and
// returns false when the target does not validate.
func (m *Machine) Connect() bool {
	var target address.Target
	ok := false
	m.ui.Update(func(u UIState) UIState {
		u.Validation = address.Validate(u.Host, u.Port)
		if !u.Validation.Submittable {
			return u
		}
		target = address.Target{Host: u.Host, Port: u.Port}
		ok = true
		u.ShowConnectDialog = false
		u.LastError = ""
		return u
	})
	if !ok {
		m.log.Debug().Msg("connect refused: target does not validate")
		return false
	}
	m.conn.Connect(target.Host, target.Port)
	return true
}

// Disconnect closes the current session, if any.
func (m *Machine) Disconnect() {
	m.conn.Disconnect()
}

// DismissError clears LastError without touching the session state.
func (m *Machine) DismissError() {
	m.ui.Update(func(u UIState) UIState {
		u.LastError = ""
		return u
	})
}

// OpenConnectDialog shows the connect form and clears any stale error.
func (m *Machine) OpenConnectDialog() {
	m.ui.Update(func(u UIState) UIState {
		u.ShowConnectDialog = true
		u.LastError = ""
		return u
	})
}

// DismissConnectDialog hides the connect form.
func (m *Machine) DismissConnectDialog() {
	m.ui.Update(func(u UIState) UIState {
		u.ShowConnectDialog = false
		return u
	})
}

// SetGyroEnabled records whether orientation control is on.
func (m *Machine) SetGyroEnabled(on bool) {
	m.ui.Update(func(u UIState) UIState {
		u.GyroEnabled = on
		return u
	})
}

// State returns the current UI state.
func (m *Machine) State() UIState {
	return m.ui.Get()
}

// Subscribe returns a latest-value stream of UI states.
func (m *Machine) Subscribe() *observe.Subscription[UIState] {
	return m.ui.Subscribe()
}

// Close tears the session down. It always disconnects; sockets are not
// left for the garbage collector.
func (m *Machine) Close() {
	m.conn.Disconnect()
	m.ui.Close()
}
