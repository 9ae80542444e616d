package orientation

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/mousephone/client/internal/motion"
	"github.com/mousephone/client/internal/protocol"
	"github.com/rs/zerolog"
)

// Sender accepts outgoing pointer messages. *session.Channel satisfies it.
type Sender interface {
	Send(msg protocol.Message)
}

// State is the adapter's streaming state.
type State int

const (
	Stopped State = iota
	Streaming
)

func (s State) String() string {
	if s == Streaming {
		return "streaming"
	}
	return "stopped"
}

// Adapter drives pointer movement from an orientation source. Every
// Enable captures a new reference from the first sample it sees; each
// later sample is compared with that same reference, so the pointer
// follows the phone's cumulative tilt since gyro mode was switched on.
type Adapter struct {
	source    Source
	transform motion.Transform
	sender    Sender
	log       zerolog.Logger

	mu     sync.Mutex
	state  State
	gen    uint64
	cancel context.CancelFunc

	moves atomic.Uint64
}

// NewAdapter creates a stopped adapter.
func NewAdapter(source Source, transform motion.Transform, sender Sender, logger zerolog.Logger) *Adapter {
	return &Adapter{
		source:    source,
		transform: transform,
		sender:    sender,
		log:       logger.With().Str("component", "gyro").Logger(),
	}
}

// Enable (re)starts streaming with a fresh reference. Any previous
// subscription is cancelled first.
func (a *Adapter) Enable(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.stopLocked()

	sctx, cancel := context.WithCancel(ctx)
	samples, err := a.source.Subscribe(sctx)
	if err != nil {
		cancel()
		return fmt.Errorf("subscribe orientation source: %w", err)
	}
	a.cancel = cancel
	a.state = Streaming
	go a.consume(a.gen, samples)

	a.log.Info().Uint64("span", a.gen).Msg("gyro streaming")
	return nil
}

// Disable stops streaming. Once it returns no further moves are sent
// from the previous span, even for samples already in flight.
func (a *Adapter) Disable() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.state == Stopped {
		return
	}
	a.stopLocked()
	a.log.Info().Msg("gyro stopped")
}

func (a *Adapter) stopLocked() {
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}
	a.gen++
	a.state = Stopped
}

// State reports whether the adapter is streaming.
func (a *Adapter) State() State {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

// Moves returns how many move messages the adapter has produced.
func (a *Adapter) Moves() uint64 {
	return a.moves.Load()
}

func (a *Adapter) consume(gen uint64, samples <-chan Sample) {
	var (
		ref     Sample
		haveRef bool
	)
	for s := range samples {
		if !haveRef {
			ref, haveRef = s, true
			a.log.Debug().Float64("roll", s.Roll).Float64("pitch", s.Pitch).Msg("reference captured")
			continue
		}
		d, ok := a.transform.Orientation(ref, s)
		if !ok {
			continue
		}
		if !a.send(gen, protocol.Move{DX: d.DX, DY: d.DY}) {
			return
		}
	}
}

// send forwards msg unless the span it belongs to has ended.
func (a *Adapter) send(gen uint64, msg protocol.Message) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.gen != gen || a.state != Streaming {
		return false
	}
	a.sender.Send(msg)
	a.moves.Add(1)
	return true
}
