package orientation

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync/atomic"
	"time"

	"github.com/mousephone/client/internal/observe"
	"github.com/rs/zerolog"
)

// maxRateGap bounds the time step used when integrating angular rate; a
// longer gap means the stream stalled and the step is discarded.
const maxRateGap = time.Second

// maxLineBytes is the longest line worth decoding. Longer lines are
// skipped like any other malformed line.
const maxLineBytes = 64 << 10

// sampleLine is one JSON line from a sensor bridge. A line carries either
// angles (yaw/pitch/roll, radians) or angular rate (x/y/z, rad/s) with an
// optional timestamp t in seconds.
type sampleLine struct {
	Yaw   *float64 `json:"yaw"`
	Pitch *float64 `json:"pitch"`
	Roll  *float64 `json:"roll"`
	X     *float64 `json:"x"`
	Y     *float64 `json:"y"`
	Z     *float64 `json:"z"`
	T     *float64 `json:"t"`
}

func (l sampleLine) isAngle() bool {
	return l.Yaw != nil || l.Pitch != nil || l.Roll != nil
}

func (l sampleLine) isRate() bool {
	return l.X != nil || l.Y != nil || l.Z != nil
}

func deref(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}

// integrator accumulates angular-rate readings into an attitude so rate
// sensors present the same Sample shape as angle sensors. Rate x maps to
// pitch, y to roll and z to yaw.
type integrator struct {
	att   Sample
	lastT float64
	have  bool
}

func (in *integrator) add(x, y, z, t float64) Sample {
	if in.have {
		dt := t - in.lastT
		if dt > 0 && dt <= maxRateGap.Seconds() {
			in.att.Pitch += x * dt
			in.att.Roll += y * dt
			in.att.Yaw += z * dt
		}
	}
	in.lastT = t
	in.have = true
	return in.att
}

// Stream reads JSON-lines samples, e.g. from a pipe fed by a sensor
// bridge on the device.
type Stream struct {
	open    func() (io.ReadCloser, error)
	log     zerolog.Logger
	now     func() time.Time
	skipped atomic.Uint64
}

// NewStream reads samples from r. r is consumed by the first
// subscription only.
func NewStream(r io.Reader, logger zerolog.Logger) *Stream {
	return &Stream{
		open: func() (io.ReadCloser, error) { return io.NopCloser(r), nil },
		log:  logger.With().Str("component", "sensor").Logger(),
		now:  time.Now,
	}
}

// NewFileStream reopens path on every subscription.
func NewFileStream(path string, logger zerolog.Logger) *Stream {
	return &Stream{
		open: func() (io.ReadCloser, error) {
			f, err := os.Open(path)
			if err != nil {
				return nil, fmt.Errorf("open sensor stream %s: %w", path, err)
			}
			return f, nil
		},
		log: logger.With().Str("component", "sensor").Str("path", path).Logger(),
		now: time.Now,
	}
}

// Skipped returns how many lines could not be parsed.
func (s *Stream) Skipped() uint64 {
	return s.skipped.Load()
}

func (s *Stream) Subscribe(ctx context.Context) (<-chan Sample, error) {
	rc, err := s.open()
	if err != nil {
		return nil, err
	}
	out := make(chan Sample, 1)

	// Closing the reader is the only way to unblock a pending read.
	stop := context.AfterFunc(ctx, func() { rc.Close() })

	go func() {
		defer close(out)
		defer stop()
		defer rc.Close()

		var in integrator
		br := bufio.NewReader(rc)
		for {
			line, err := br.ReadBytes('\n')
			if ctx.Err() != nil {
				return
			}
			if len(line) > 0 {
				if sample, ok := s.parse(bytes.TrimRight(line, "\r\n"), &in); ok {
					observe.Offer(out, sample)
				}
			}
			if err != nil {
				if err != io.EOF {
					s.log.Warn().Err(err).Msg("sensor stream read failed")
				}
				return
			}
		}
	}()
	return out, nil
}

func (s *Stream) parse(raw []byte, in *integrator) (Sample, bool) {
	if len(raw) == 0 {
		return Sample{}, false
	}
	if len(raw) > maxLineBytes {
		s.skip(fmt.Errorf("line of %d bytes exceeds %d", len(raw), maxLineBytes))
		return Sample{}, false
	}
	var l sampleLine
	if err := json.Unmarshal(raw, &l); err != nil {
		s.skip(err)
		return Sample{}, false
	}
	switch {
	case l.isAngle():
		return Sample{Yaw: deref(l.Yaw), Pitch: deref(l.Pitch), Roll: deref(l.Roll)}, true
	case l.isRate():
		t := float64(s.now().UnixNano()) / 1e9
		if l.T != nil {
			t = *l.T
		}
		return in.add(deref(l.X), deref(l.Y), deref(l.Z), t), true
	default:
		s.skip(fmt.Errorf("line has neither angles nor rates"))
		return Sample{}, false
	}
}

func (s *Stream) skip(err error) {
	n := s.skipped.Add(1)
	s.log.Debug().Err(err).Uint64("skipped", n).Msg("skipping sensor line")
}
