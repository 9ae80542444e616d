package session

import (
	"sync"
	"testing"
	"time"

	"github.com/mousephone/client/internal/observe"
	"github.com/mousephone/client/internal/transport"
)

// fakeTransport records every Open and lets the test deliver events by
// hand, from the test goroutine, after Open has returned.
type fakeTransport struct {
	mu      sync.Mutex
	handles []*fakeHandle
}

func (f *fakeTransport) Open(url string, emit transport.EmitFunc) transport.Handle {
	h := &fakeHandle{url: url, emit: emit}
	f.mu.Lock()
	f.handles = append(f.handles, h)
	f.mu.Unlock()
	return h
}

func (f *fakeTransport) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.handles)
}

func (f *fakeTransport) last(t *testing.T) *fakeHandle {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.handles) == 0 {
		t.Fatal("transport was never opened")
	}
	return f.handles[len(f.handles)-1]
}

type fakeHandle struct {
	url  string
	emit transport.EmitFunc

	mu      sync.Mutex
	sent    []string
	closes  []int
	reasons []string
	sendErr error
}

func (h *fakeHandle) Send(text []byte) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.sendErr != nil {
		return h.sendErr
	}
	h.sent = append(h.sent, string(text))
	return nil
}

func (h *fakeHandle) Close(code int, reason string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closes = append(h.closes, code)
	h.reasons = append(h.reasons, reason)
	return nil
}

func (h *fakeHandle) sentMessages() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.sent...)
}

func (h *fakeHandle) closeCalls() []int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]int(nil), h.closes...)
}

func (h *fakeHandle) open(host string) {
	h.emit(transport.Event{Kind: transport.EventOpen, Host: host})
}

func (h *fakeHandle) fail(reason string) {
	h.emit(transport.Event{Kind: transport.EventFailure, Reason: reason})
}

func (h *fakeHandle) closed(code int) {
	h.emit(transport.Event{Kind: transport.EventClosed, Code: code})
}

func next[T comparable](t *testing.T, s *observe.Subscription[T]) T {
	t.Helper()
	select {
	case v, ok := <-s.C():
		if !ok {
			t.Fatal("subscription closed")
		}
		return v
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for state")
	}
	var zero T
	return zero
}

func expectQuiet[T comparable](t *testing.T, s *observe.Subscription[T]) {
	t.Helper()
	select {
	case v := <-s.C():
		t.Errorf("unexpected state change: %v", v)
	case <-time.After(50 * time.Millisecond):
	}
}

// waitFor polls a Machine until cond holds.
func waitFor(t *testing.T, m *Machine, cond func(UIState) bool) UIState {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if u := m.State(); cond(u) {
			return u
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("condition not met; state = %+v", m.State())
	return UIState{}
}
