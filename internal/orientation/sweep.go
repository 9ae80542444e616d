package orientation

import (
	"context"
	"math"
	"time"

	"github.com/mousephone/client/internal/observe"
)

// Sweep is a synthetic device that traces a slow figure-eight: roll
// follows a sine over the period, pitch a sine at twice the frequency.
// It is meant for demos and for exercising a server without hardware.
type Sweep struct {
	amplitude float64
	period    time.Duration
	interval  time.Duration
	now       func() time.Time
}

// NewSweep creates a sweep. Non-positive arguments take defaults of
// 0.02 rad, 4s and 60 Hz.
func NewSweep(amplitude float64, period, interval time.Duration) *Sweep {
	if amplitude <= 0 {
		amplitude = 0.02
	}
	if period <= 0 {
		period = 4 * time.Second
	}
	if interval <= 0 {
		interval = rateInterval(0)
	}
	return &Sweep{amplitude: amplitude, period: period, interval: interval, now: time.Now}
}

// At returns the attitude elapsed into the sweep.
func (s *Sweep) At(elapsed time.Duration) Sample {
	phase := 2 * math.Pi * elapsed.Seconds() / s.period.Seconds()
	return Sample{
		Roll:  s.amplitude * math.Sin(phase),
		Pitch: s.amplitude / 2 * math.Sin(2*phase),
	}
}

func (s *Sweep) Subscribe(ctx context.Context) (<-chan Sample, error) {
	out := make(chan Sample, 1)
	start := s.now()
	go func() {
		defer close(out)
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				observe.Offer(out, s.At(s.now().Sub(start)))
			}
		}
	}()
	return out, nil
}
