package analyzer

import (
	"math"

	"github.com/ivlev/followcam/internal/geom"
	"github.com/ivlev/followcam/internal/telemetry"
)

// cinematicSampleCount is how many backward-looking sample times are averaged
// per cinematic query.
const cinematicSampleCount = 8

// maxSmoothingWindowMs bounds the cinematic averaging window; a 0-100
// smoothing amount maps linearly onto it.
const maxSmoothingWindowMs = 1000.0

// SmoothingWindowMs maps a user-facing 0-100 smoothing amount to the
// cinematic averaging window in milliseconds. Non-finite amounts normalize
// to zero.
func SmoothingWindowMs(amount float64) float64 {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		amount = 0
	}
	return geom.Clamp(amount, 0, 100) / 100 * maxSmoothingWindowMs
}

// CinematicPosition returns a time-windowed average cursor position: a fixed
// number of sample times spaced evenly across windowMs back from timeMs,
// each interpolated across the recorded samples, averaged over those that
// resolve. Used as the camera attractor when no activity cluster is live, so
// the camera drifts smoothly instead of chasing every wiggle. ok is false
// when nothing resolved (before the recording starts).
func CinematicPosition(samples []telemetry.CursorSample, timeMs, windowMs float64) (geom.Point, bool) {
	if windowMs <= 0 {
		return telemetry.PositionAt(samples, timeMs)
	}

	var sum geom.Point
	valid := 0
	for i := 0; i < cinematicSampleCount; i++ {
		at := timeMs - windowMs*float64(i)/float64(cinematicSampleCount-1)
		p, ok := telemetry.PositionAt(samples, at)
		if !ok {
			continue
		}
		sum.X += p.X
		sum.Y += p.Y
		valid++
	}
	if valid == 0 {
		return geom.Point{}, false
	}
	return geom.Point{X: sum.X / float64(valid), Y: sum.Y / float64(valid)}, true
}
