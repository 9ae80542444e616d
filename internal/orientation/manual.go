package orientation

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/mousephone/client/internal/observe"
)

// Manual is a virtual device whose attitude is set by the caller, e.g.
// from key presses. It republishes the current attitude at a fixed rate,
// so a held tilt keeps producing movement.
type Manual struct {
	interval time.Duration

	mu  sync.Mutex
	cur Sample
}

// NewManual creates a level virtual device that publishes every interval.
func NewManual(interval time.Duration) *Manual {
	if interval <= 0 {
		interval = rateInterval(0)
	}
	return &Manual{interval: interval}
}

// Tilt rotates the device by the given roll and pitch increments. Angles
// are kept within ±π/2.
func (m *Manual) Tilt(dRoll, dPitch float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cur.Roll = clampAngle(m.cur.Roll + dRoll)
	m.cur.Pitch = clampAngle(m.cur.Pitch + dPitch)
}

// Level resets the attitude to flat.
func (m *Manual) Level() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cur = Sample{}
}

// Current returns the current attitude.
func (m *Manual) Current() Sample {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cur
}

func (m *Manual) Subscribe(ctx context.Context) (<-chan Sample, error) {
	out := make(chan Sample, 1)
	go func() {
		defer close(out)
		ticker := time.NewTicker(m.interval)
		defer ticker.Stop()
		observe.Offer(out, m.Current())
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				observe.Offer(out, m.Current())
			}
		}
	}()
	return out, nil
}

func clampAngle(a float64) float64 {
	return math.Max(-math.Pi/2, math.Min(math.Pi/2, a))
}
