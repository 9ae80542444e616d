// Package motion maps touch drags and device orientation to pointer deltas.
package motion

import "math"

// Defaults for orientation control.
const (
	DefaultSensitivity = 250.0
	DefaultThreshold   = 0.1
)

// Sample is one orientation reading in radians.
type Sample struct {
	Yaw   float64 `json:"yaw"`
	Pitch float64 `json:"pitch"`
	Roll  float64 `json:"roll"`
}

// Delta is a relative pointer movement.
type Delta struct {
	DX float64
	DY float64
}

// Transform converts input increments to deltas. The zero value is not
// usable; use New or Default.
type Transform struct {
	Sensitivity float64
	Threshold   float64
}

// New returns a transform with the given sensitivity and significance
// threshold. Non-positive values fall back to the defaults.
func New(sensitivity, threshold float64) Transform {
	if sensitivity <= 0 {
		sensitivity = DefaultSensitivity
	}
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return Transform{Sensitivity: sensitivity, Threshold: threshold}
}

// Default returns New(DefaultSensitivity, DefaultThreshold).
func Default() Transform {
	return New(DefaultSensitivity, DefaultThreshold)
}

// Drag passes a drag increment through unchanged.
func (Transform) Drag(dx, dy float64) Delta {
	return Delta{DX: dx, DY: dy}
}

// Orientation maps the change from reference to current into a delta:
// roll drives x, pitch drives y. ok is false when neither axis exceeds the
// threshold, in which case nothing should be sent.
func (t Transform) Orientation(reference, current Sample) (d Delta, ok bool) {
	d = Delta{
		DX: (current.Roll - reference.Roll) * t.Sensitivity,
		DY: (current.Pitch - reference.Pitch) * t.Sensitivity,
	}
	if math.Abs(d.DX) > t.Threshold || math.Abs(d.DY) > t.Threshold {
		return d, true
	}
	return Delta{}, false
}
