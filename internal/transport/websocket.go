package transport

import (
	"context"
	"errors"
	"net"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

// Options configures the websocket transport. Zero fields take the
// defaults below.
type Options struct {
	ConnectTimeout time.Duration
	WriteTimeout   time.Duration
	PingInterval   time.Duration
	PongTimeout    time.Duration
	CloseTimeout   time.Duration
}

const (
	defaultConnectTimeout = 10 * time.Second
	defaultWriteTimeout   = 5 * time.Second
	defaultPingInterval   = 30 * time.Second
	defaultPongTimeout    = 60 * time.Second
	defaultCloseTimeout   = 2 * time.Second

	readLimit = 1 << 20
)

func (o Options) withDefaults() Options {
	if o.ConnectTimeout <= 0 {
		o.ConnectTimeout = defaultConnectTimeout
	}
	if o.WriteTimeout <= 0 {
		o.WriteTimeout = defaultWriteTimeout
	}
	if o.PingInterval <= 0 {
		o.PingInterval = defaultPingInterval
	}
	if o.PongTimeout <= 0 {
		o.PongTimeout = defaultPongTimeout
	}
	if o.CloseTimeout <= 0 {
		o.CloseTimeout = defaultCloseTimeout
	}
	return o
}

// WebSocket is a Transport backed by gorilla/websocket.
type WebSocket struct {
	opts   Options
	dialer *websocket.Dialer
	log    zerolog.Logger
}

// NewWebSocket builds a websocket transport. The connect timeout is fixed
// here for the lifetime of the transport.
func NewWebSocket(opts Options, logger zerolog.Logger) *WebSocket {
	opts = opts.withDefaults()
	return &WebSocket{
		opts: opts,
		dialer: &websocket.Dialer{
			HandshakeTimeout: opts.ConnectTimeout,
			NetDialContext: (&net.Dialer{
				Timeout:   opts.ConnectTimeout,
				KeepAlive: 15 * time.Second,
			}).DialContext,
		},
		log: logger.With().Str("component", "transport").Logger(),
	}
}

// Open starts dialing url in the background and returns immediately.
func (w *WebSocket) Open(rawURL string, emit EmitFunc) Handle {
	ctx, cancel := context.WithCancel(context.Background())
	h := &wsHandle{
		t:      w,
		url:    rawURL,
		emit:   emit,
		cancel: cancel,
		done:   make(chan struct{}),
	}
	go h.run(ctx)
	return h
}

type wsHandle struct {
	t      *WebSocket
	url    string
	emit   EmitFunc
	cancel context.CancelFunc
	done   chan struct{}

	writeMu sync.Mutex // serialises all conn writes (data, ping, close)

	mu          sync.Mutex
	conn        *websocket.Conn
	closing     bool // Close was called locally
	closeCode   int
	closeReason string
	terminal    bool
}

// Done is closed after the handle has emitted its terminal event.
func (h *wsHandle) Done() <-chan struct{} { return h.done }

func (h *wsHandle) run(ctx context.Context) {
	conn, _, err := h.t.dialer.DialContext(ctx, h.url, nil)
	if err != nil {
		h.mu.Lock()
		closing, code, reason := h.closing, h.closeCode, h.closeReason
		h.mu.Unlock()
		if closing {
			h.finish(Event{Kind: EventClosed, Code: code, Reason: reason})
			return
		}
		h.t.log.Debug().Err(err).Str("url", h.url).Msg("dial failed")
		h.finish(Event{Kind: EventFailure, Reason: err.Error()})
		return
	}

	h.mu.Lock()
	if h.closing {
		code, reason := h.closeCode, h.closeReason
		h.mu.Unlock()
		conn.Close()
		h.finish(Event{Kind: EventClosed, Code: code, Reason: reason})
		return
	}
	h.conn = conn
	h.mu.Unlock()

	h.emit(Event{Kind: EventOpen, Host: remoteHost(conn, h.url)})

	pongWait := h.t.opts.PongTimeout
	conn.SetReadLimit(readLimit)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	conn.SetCloseHandler(func(code int, text string) error {
		h.mu.Lock()
		local := h.closing
		h.mu.Unlock()
		if local {
			return nil
		}
		h.emit(Event{Kind: EventClosing, Code: code, Reason: text})
		// Answer the peer's close so it can drop the socket.
		_ = h.writeControl(conn, websocket.CloseMessage, websocket.FormatCloseMessage(CloseNormal, ""))
		return nil
	})

	pingCtx, stopPing := context.WithCancel(ctx)
	go h.pingLoop(pingCtx, conn)

	ev := h.readLoop(conn)
	stopPing()
	conn.Close()
	h.finish(ev)
}

// readLoop drains incoming frames so control frames are processed. The
// server never sends data the client needs; payloads are discarded.
func (h *wsHandle) readLoop(conn *websocket.Conn) Event {
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return h.classify(err)
		}
	}
}

func (h *wsHandle) classify(err error) Event {
	h.mu.Lock()
	closing, code, reason := h.closing, h.closeCode, h.closeReason
	h.mu.Unlock()

	if closing {
		return Event{Kind: EventClosed, Code: code, Reason: reason}
	}
	// 1006 is never sent on the wire; gorilla reports a dropped socket
	// with it.
	var ce *websocket.CloseError
	if errors.As(err, &ce) && ce.Code != websocket.CloseAbnormalClosure {
		return Event{Kind: EventClosed, Code: ce.Code, Reason: ce.Text}
	}
	return Event{Kind: EventFailure, Reason: err.Error()}
}

func (h *wsHandle) pingLoop(ctx context.Context, conn *websocket.Conn) {
	ticker := time.NewTicker(h.t.opts.PingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := h.writeControl(conn, websocket.PingMessage, nil); err != nil {
				h.t.log.Debug().Err(err).Msg("ping failed")
				return
			}
		}
	}
}

func (h *wsHandle) writeControl(conn *websocket.Conn, kind int, data []byte) error {
	h.writeMu.Lock()
	defer h.writeMu.Unlock()
	return conn.WriteControl(kind, data, time.Now().Add(h.t.opts.WriteTimeout))
}

// Send writes one text frame.
func (h *wsHandle) Send(text []byte) error {
	h.mu.Lock()
	conn := h.conn
	unusable := conn == nil || h.closing || h.terminal
	h.mu.Unlock()
	if unusable {
		return ErrClosed
	}

	h.writeMu.Lock()
	defer h.writeMu.Unlock()
	_ = conn.SetWriteDeadline(time.Now().Add(h.t.opts.WriteTimeout))
	return conn.WriteMessage(websocket.TextMessage, text)
}

// Close asks the peer to close. The terminal EventClosed is emitted once
// the peer answers, or after the close timeout. Closing a handle that is
// still dialing cancels the dial.
func (h *wsHandle) Close(code int, reason string) error {
	h.mu.Lock()
	if h.closing || h.terminal {
		h.mu.Unlock()
		return nil
	}
	h.closing = true
	h.closeCode = code
	h.closeReason = reason
	conn := h.conn
	h.mu.Unlock()

	if conn == nil {
		h.cancel()
		return nil
	}

	err := h.writeControl(conn, websocket.CloseMessage, websocket.FormatCloseMessage(code, reason))
	if err != nil {
		conn.Close()
		return err
	}
	time.AfterFunc(h.t.opts.CloseTimeout, func() { conn.Close() })
	return nil
}

func (h *wsHandle) finish(ev Event) {
	h.mu.Lock()
	if h.terminal {
		h.mu.Unlock()
		return
	}
	h.terminal = true
	h.mu.Unlock()

	h.cancel()
	h.emit(ev)
	close(h.done)
}

// remoteHost returns the host of the socket's remote address, falling back
// to the host in the dialed URL.
func remoteHost(conn *websocket.Conn, rawURL string) string {
	if addr := conn.RemoteAddr(); addr != nil {
		if host, _, err := net.SplitHostPort(addr.String()); err == nil {
			return host
		}
	}
	if u, err := url.Parse(rawURL); err == nil {
		return u.Hostname()
	}
	return ""
}
