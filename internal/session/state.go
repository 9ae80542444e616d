// Package session owns the connection to the desktop server: the single
// Channel that talks to the transport, and the Machine that turns its state
// stream into what the UI shows.
package session

import "fmt"

// Kind is the active variant of a State.
type Kind int

const (
	Idle Kind = iota
	Connecting
	Connected
	Disconnected
	Failed
)

var kindNames = map[Kind]string{
	Idle:         "idle",
	Connecting:   "connecting",
	Connected:    "connected",
	Disconnected: "disconnected",
	Failed:       "failed",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "unknown"
}

// State is the connection state. Host is only set when Kind is Connected,
// Reason only when Kind is Failed. States are comparable with ==.
type State struct {
	Kind   Kind
	Host   string
	Reason string
}

// UnknownFailure is the reason used when the transport gives none.
const UnknownFailure = "unknown connection error"

func IdleState() State         { return State{Kind: Idle} }
func ConnectingState() State   { return State{Kind: Connecting} }
func DisconnectedState() State { return State{Kind: Disconnected} }

func ConnectedState(host string) State {
	return State{Kind: Connected, Host: host}
}

func FailedState(reason string) State {
	if reason == "" {
		reason = UnknownFailure
	}
	return State{Kind: Failed, Reason: reason}
}

// IsTerminal reports whether the session has ended.
func (s State) IsTerminal() bool {
	return s.Kind == Disconnected || s.Kind == Failed
}

func (s State) String() string {
	switch s.Kind {
	case Connected:
		return fmt.Sprintf("connected(%s)", s.Host)
	case Failed:
		return fmt.Sprintf("failed(%s)", s.Reason)
	default:
		return s.Kind.String()
	}
}
