package geom

import (
	"testing"
)

func TestLerp(t *testing.T) {
	tests := []struct {
		a, b, t  float64
		expected float64
	}{
		{0, 10, 0, 0},
		{0, 10, 1, 10},
		{0, 10, 0.5, 5},
		{-4, 4, 0.25, -2},
		{2, 2, 0.7, 2},
	}

	for _, tt := range tests {
		if got := Lerp(tt.a, tt.b, tt.t); got != tt.expected {
			t.Errorf("Lerp(%v, %v, %v) = %v, expected %v", tt.a, tt.b, tt.t, got, tt.expected)
		}
	}
}

func TestClamp(t *testing.T) {
	tests := []struct {
		v, lo, hi float64
		expected  float64
	}{
		{5, 0, 10, 5},
		{-1, 0, 10, 0},
		{11, 0, 10, 10},
		{0, 0, 10, 0},
		{10, 0, 10, 10},
	}

	for _, tt := range tests {
		if got := Clamp(tt.v, tt.lo, tt.hi); got != tt.expected {
			t.Errorf("Clamp(%v, %v, %v) = %v, expected %v", tt.v, tt.lo, tt.hi, got, tt.expected)
		}
	}
}

func TestSmootherStepEndpoints(t *testing.T) {
	if got := SmootherStep(0); got != 0 {
		t.Errorf("SmootherStep(0) = %v, expected 0", got)
	}
	if got := SmootherStep(1); got != 1 {
		t.Errorf("SmootherStep(1) = %v, expected 1", got)
	}
	if got := SmootherStep(-2); got != 0 {
		t.Errorf("SmootherStep(-2) = %v, expected 0 (clamped)", got)
	}
	if got := SmootherStep(3); got != 1 {
		t.Errorf("SmootherStep(3) = %v, expected 1 (clamped)", got)
	}
}

func TestSmootherStepMonotonic(t *testing.T) {
	prev := 0.0
	for i := 1; i <= 100; i++ {
		v := SmootherStep(float64(i) / 100)
		if v < prev {
			t.Fatalf("SmootherStep not monotonic at t=%.2f: %v < %v", float64(i)/100, v, prev)
		}
		prev = v
	}
}

func TestEaseInOutCubic(t *testing.T) {
	tests := []struct {
		t        float64
		expected float64
	}{
		{0, 0},
		{0.5, 0.5},
		{1, 1},
	}

	for _, tt := range tests {
		if got := EaseInOutCubic(tt.t); abs(got-tt.expected) > 1e-9 {
			t.Errorf("EaseInOutCubic(%v) = %v, expected %v", tt.t, got, tt.expected)
		}
	}

	// Slow start, fast middle
	if EaseInOutCubic(0.1) >= 0.1 {
		t.Error("expected eased value below linear near t=0.1")
	}
	if EaseInOutCubic(0.9) <= 0.9 {
		t.Error("expected eased value above linear near t=0.9")
	}
}

func TestSearchLE(t *testing.T) {
	times := []float64{0, 100, 200, 300, 400}
	at := func(i int) float64 { return times[i] }

	tests := []struct {
		target   float64
		expected int
	}{
		{-50, -1},
		{0, 0},
		{99, 0},
		{100, 1},
		{250, 2},
		{400, 4},
		{1000, 4},
	}

	for _, tt := range tests {
		if got := SearchLE(len(times), at, tt.target); got != tt.expected {
			t.Errorf("SearchLE(%v) = %d, expected %d", tt.target, got, tt.expected)
		}
	}

	if got := SearchLE(0, at, 10); got != -1 {
		t.Errorf("SearchLE on empty input = %d, expected -1", got)
	}
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
