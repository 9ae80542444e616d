// Package orientation turns a stream of device orientation samples into
// pointer movement, and provides the sample sources the client ships with.
package orientation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mousephone/client/internal/motion"
	"github.com/rs/zerolog"
)

// Sample is one orientation reading (radians).
type Sample = motion.Sample

// Source pushes orientation samples. Each Subscribe starts a fresh stream
// that ends, with the channel closed, when ctx is done. Delivery is
// latest-value: a slow reader skips stale samples instead of queueing them.
type Source interface {
	Subscribe(ctx context.Context) (<-chan Sample, error)
}

// ErrNoSource is returned for an unknown source kind.
var ErrNoSource = errors.New("orientation: unknown source")

// Source kinds accepted by Open.
const (
	KindManual = "manual"
	KindSweep  = "sweep"
	KindJSONL  = "jsonl"
)

// Settings selects and tunes a source.
type Settings struct {
	Kind           string
	Path           string
	RateHz         int
	SweepAmplitude float64
	SweepPeriod    time.Duration
}

// Open builds the source described by s.
func Open(s Settings, logger zerolog.Logger) (Source, error) {
	interval := rateInterval(s.RateHz)
	switch s.Kind {
	case "", KindManual:
		return NewManual(interval), nil
	case KindSweep:
		return NewSweep(s.SweepAmplitude, s.SweepPeriod, interval), nil
	case KindJSONL:
		if s.Path == "" {
			return nil, fmt.Errorf("orientation: jsonl source needs a path")
		}
		return NewFileStream(s.Path, logger), nil
	default:
		return nil, fmt.Errorf("%w %q", ErrNoSource, s.Kind)
	}
}

func rateInterval(hz int) time.Duration {
	if hz <= 0 {
		hz = 60
	}
	return time.Second / time.Duration(hz)
}
