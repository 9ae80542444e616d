// Package observe provides a single-writer, multi-reader value with
// latest-value delivery: a slow reader only ever sees the newest value,
// never a queue of stale ones.
package observe

import "sync"

// Value holds the current value of type T and fans changes out to
// subscribers. Setting a value equal to the current one is not a change.
type Value[T comparable] struct {
	mu     sync.Mutex
	cur    T
	subs   map[*Subscription[T]]struct{}
	closed bool
}

// NewValue creates a Value holding initial.
func NewValue[T comparable](initial T) *Value[T] {
	return &Value[T]{
		cur:  initial,
		subs: make(map[*Subscription[T]]struct{}),
	}
}

// Get returns the current value.
func (v *Value[T]) Get() T {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.cur
}

// Set stores next and notifies subscribers. It reports whether the value
// changed. Notifications are made under the lock, so every subscriber sees
// changes in the order Set was called.
func (v *Value[T]) Set(next T) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed || v.cur == next {
		return false
	}
	v.cur = next
	for s := range v.subs {
		Offer(s.ch, next)
	}
	return true
}

// Update applies fn to the current value and stores the result.
func (v *Value[T]) Update(fn func(T) T) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return false
	}
	next := fn(v.cur)
	if next == v.cur {
		return false
	}
	v.cur = next
	for s := range v.subs {
		Offer(s.ch, next)
	}
	return true
}

// Subscribe registers a reader. The current value is delivered
// immediately.
func (v *Value[T]) Subscribe() *Subscription[T] {
	s := &Subscription[T]{ch: make(chan T, 1), parent: v}
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		close(s.ch)
		return s
	}
	s.ch <- v.cur
	v.subs[s] = struct{}{}
	return s
}

// Close ends every subscription. Later Sets are ignored.
func (v *Value[T]) Close() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return
	}
	v.closed = true
	for s := range v.subs {
		close(s.ch)
		delete(v.subs, s)
	}
}

func (v *Value[T]) remove(s *Subscription[T]) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if _, ok := v.subs[s]; ok {
		delete(v.subs, s)
		close(s.ch)
	}
}

// Subscription is one reader of a Value.
type Subscription[T comparable] struct {
	ch     chan T
	parent *Value[T]
	once   sync.Once
}

// C returns the delivery channel. It is closed when the subscription or
// its Value is closed.
func (s *Subscription[T]) C() <-chan T { return s.ch }

// Close unsubscribes. It is safe to call more than once.
func (s *Subscription[T]) Close() {
	s.once.Do(func() { s.parent.remove(s) })
}

// Offer puts v into a channel of capacity one, replacing any value that
// has not been received yet. It never blocks as long as the caller is the
// only sender on ch.
func Offer[T any](ch chan T, v T) {
	for {
		select {
		case ch <- v:
			return
		default:
		}
		select {
		case <-ch:
		default:
		}
	}
}
