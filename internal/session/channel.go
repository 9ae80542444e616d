package session

import (
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/mousephone/client/internal/address"
	"github.com/mousephone/client/internal/observe"
	"github.com/mousephone/client/internal/protocol"
	"github.com/mousephone/client/internal/transport"
	"github.com/rs/zerolog"
)

// DefaultPath is the fixed path segment of the server endpoint.
const DefaultPath = "/ws"

const userDisconnectReason = "User disconnected"

// Channel owns at most one transport handle at a time. Construct one per
// process and share it; every state change is published through a single
// observe.Value so readers see transitions in transport order.
type Channel struct {
	transport transport.Transport
	path      string
	log       zerolog.Logger
	state     *observe.Value[State]

	mu        sync.Mutex
	handle    transport.Handle
	gen       uint64 // bumped per Connect; events from older handles are ignored
	sessionID string

	sent    atomic.Uint64
	dropped atomic.Uint64
}

// NewChannel creates an idle channel. An empty path means DefaultPath.
func NewChannel(t transport.Transport, path string, logger zerolog.Logger) *Channel {
	if path == "" {
		path = DefaultPath
	}
	return &Channel{
		transport: t,
		path:      path,
		log:       logger.With().Str("component", "session").Logger(),
		state:     observe.NewValue(IdleState()),
	}
}

// Connect moves to Connecting and starts opening a handle to host:port.
// Any handle already held is discarded first. It returns immediately;
// the outcome arrives on the state stream.
func (c *Channel) Connect(host, port string) {
	url := address.Target{Host: host, Port: port}.URL(c.path)

	c.mu.Lock()
	old := c.handle
	c.handle = nil
	c.gen++
	gen := c.gen
	c.sessionID = uuid.NewString()
	sid := c.sessionID
	c.state.Set(ConnectingState())
	c.handle = c.transport.Open(url, func(ev transport.Event) { c.apply(gen, ev) })
	c.mu.Unlock()

	c.log.Info().Str("session", sid).Str("url", url).Msg("connecting")

	if old != nil {
		if err := old.Close(transport.CloseNormal, "superseded"); err != nil {
			c.log.Debug().Err(err).Msg("closing superseded handle")
		}
	}
}

// apply is the single transition function for transport events.
func (c *Channel) apply(gen uint64, ev transport.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()

	logger := c.log.With().Str("session", c.sessionID).Logger()
	if gen != c.gen {
		logger.Debug().Stringer("event", ev).Msg("ignoring event from discarded handle")
		return
	}

	switch ev.Kind {
	case transport.EventOpen:
		c.state.Set(ConnectedState(ev.Host))
		logger.Info().Str("host", ev.Host).Msg("connected")
	case transport.EventFailure:
		c.handle = nil
		c.state.Set(FailedState(ev.Reason))
		logger.Warn().Str("reason", ev.Reason).Msg("connection failed")
	case transport.EventClosing:
		logger.Info().Int("code", ev.Code).Str("reason", ev.Reason).Msg("server closing")
	case transport.EventClosed:
		c.handle = nil
		c.state.Set(DisconnectedState())
		logger.Info().Int("code", ev.Code).Str("reason", ev.Reason).Msg("disconnected")
	}
}

// Send encodes and writes msg if the channel is connected. Otherwise the
// message is dropped: movement is continuous and a stale delta is worth
// nothing.
func (c *Channel) Send(msg protocol.Message) {
	c.mu.Lock()
	h := c.handle
	connected := c.state.Get().Kind == Connected
	c.mu.Unlock()

	if h == nil || !connected {
		c.dropped.Add(1)
		return
	}

	data, err := protocol.Encode(msg)
	if err != nil {
		c.dropped.Add(1)
		c.log.Warn().Err(err).Msg("encode failed")
		return
	}
	if err := h.Send(data); err != nil {
		c.dropped.Add(1)
		c.log.Debug().Err(err).Str("type", string(msg.Type())).Msg("send dropped")
		return
	}
	c.sent.Add(1)
}

// Disconnect asks the open handle, if any, to close normally. The
// resulting Disconnected state arrives through the same event path as a
// server-side close. With no handle it does nothing.
func (c *Channel) Disconnect() {
	c.mu.Lock()
	h := c.handle
	c.mu.Unlock()
	if h == nil {
		return
	}
	if err := h.Close(transport.CloseNormal, userDisconnectReason); err != nil {
		c.log.Debug().Err(err).Msg("close")
	}
}

// State returns the current state.
func (c *Channel) State() State {
	return c.state.Get()
}

// Subscribe returns a latest-value stream of states, starting with the
// current one.
func (c *Channel) Subscribe() *observe.Subscription[State] {
	return c.state.Subscribe()
}

// SessionID returns the id of the most recent connect attempt, or "" if
// none was made.
func (c *Channel) SessionID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sessionID
}

// Stats reports how many messages were written and how many were dropped.
func (c *Channel) Stats() (sent, dropped uint64) {
	return c.sent.Load(), c.dropped.Load()
}
