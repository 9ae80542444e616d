// Package transport is the duplex message channel boundary: it opens a
// message-framed connection to a URL and reports its lifecycle as events.
package transport

import (
	"errors"
	"fmt"
)

// CloseNormal is the websocket normal-closure status code.
const CloseNormal = 1000

// ErrClosed is returned by Handle.Send once the handle has been closed or
// has failed.
var ErrClosed = errors.New("transport: handle closed")

// EventKind identifies a lifecycle event of a handle.
type EventKind int

const (
	EventOpen EventKind = iota
	EventFailure
	EventClosing
	EventClosed
)

func (k EventKind) String() string {
	switch k {
	case EventOpen:
		return "open"
	case EventFailure:
		return "failure"
	case EventClosing:
		return "closing"
	case EventClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Event is one lifecycle notification. Host is set on EventOpen; Code and
// Reason on EventClosing and EventClosed; Reason on EventFailure.
type Event struct {
	Kind   EventKind
	Host   string
	Code   int
	Reason string
}

func (e Event) String() string {
	switch e.Kind {
	case EventOpen:
		return fmt.Sprintf("open host=%s", e.Host)
	case EventFailure:
		return fmt.Sprintf("failure reason=%q", e.Reason)
	default:
		return fmt.Sprintf("%s code=%d reason=%q", e.Kind, e.Code, e.Reason)
	}
}

// EmitFunc receives the events of one handle, in order.
type EmitFunc func(Event)

// Transport opens handles. Open must return without blocking on the
// network and must never call emit before it returns. A handle emits
// at most one EventOpen and exactly one terminal event (EventFailure or
// EventClosed).
type Transport interface {
	Open(url string, emit EmitFunc) Handle
}

// Handle is one open or opening connection.
type Handle interface {
	Send(text []byte) error
	Close(code int, reason string) error
}
