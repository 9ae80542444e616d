package motion

import (
	"math"
	"testing"
)

const eps = 1e-9

func approx(a, b float64) bool { return math.Abs(a-b) < eps }

func TestDragPassThrough(t *testing.T) {
	tr := Default()
	tests := []struct{ dx, dy float64 }{
		{0, 0},
		{3.5, -2},
		{-120, 48.25},
		{0.01, 0.01},
	}
	for _, tt := range tests {
		d := tr.Drag(tt.dx, tt.dy)
		if d.DX != tt.dx || d.DY != tt.dy {
			t.Errorf("Drag(%v, %v) = %+v", tt.dx, tt.dy, d)
		}
	}
}

func TestOrientationThreshold(t *testing.T) {
	tr := Default()
	ref := Sample{}

	tests := []struct {
		name   string
		cur    Sample
		wantOK bool
		wantDX float64
		wantDY float64
	}{
		{"sub-threshold jitter", Sample{Roll: 0.0003, Pitch: 0.0001}, false, 0, 0},
		{"roll over threshold", Sample{Roll: 0.001}, true, 0.25, 0},
		{"pitch over threshold", Sample{Pitch: -0.002}, true, 0, -0.5},
		{"exactly at threshold", Sample{Roll: 0.0004}, false, 0, 0},
		{"yaw is ignored", Sample{Yaw: 1.5}, false, 0, 0},
		{"both axes", Sample{Roll: 0.01, Pitch: 0.02}, true, 2.5, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, ok := tr.Orientation(ref, tt.cur)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v (delta %+v)", ok, tt.wantOK, d)
			}
			if !approx(d.DX, tt.wantDX) || !approx(d.DY, tt.wantDY) {
				t.Errorf("delta = %+v, want (%v, %v)", d, tt.wantDX, tt.wantDY)
			}
		})
	}
}

func TestOrientationRelativeToReference(t *testing.T) {
	tr := Default()
	ref := Sample{Roll: 0.5, Pitch: -0.2}
	d, ok := tr.Orientation(ref, Sample{Roll: 0.51, Pitch: -0.2})
	if !ok {
		t.Fatal("expected a delta")
	}
	if !approx(d.DX, 2.5) || !approx(d.DY, 0) {
		t.Errorf("delta = %+v, want (2.5, 0)", d)
	}
}

func TestNewFallsBackToDefaults(t *testing.T) {
	tr := New(0, -1)
	if tr.Sensitivity != DefaultSensitivity || tr.Threshold != DefaultThreshold {
		t.Errorf("New(0, -1) = %+v", tr)
	}
	tr = New(15, 0.5)
	if tr.Sensitivity != 15 || tr.Threshold != 0.5 {
		t.Errorf("New(15, 0.5) = %+v", tr)
	}
}
