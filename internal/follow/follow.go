// Package follow implements the dead-zone follow policy: given a cursor
// position and the camera's current center, it computes the next desired
// center. The policy's outputs are targets for the physics simulator, never
// camera positions directly.
package follow

import (
	"math"

	"github.com/ivlev/followcam/internal/geom"
	"github.com/ivlev/followcam/internal/viewport"
)

const (
	// MinDeadZoneRatio is the tightest tracking ratio, reached at high zoom.
	MinDeadZoneRatio = 0.18

	// DefaultMaxDeadZoneRatio is the loose-tracking ratio at low zoom.
	DefaultMaxDeadZoneRatio = 0.32

	// innerZoneFraction is the fraction of the dead-zone half-extent inside
	// which the camera does not move at all.
	innerZoneFraction = 0.6

	// adaptiveZoomLow / adaptiveZoomHigh bound the zoom range across which
	// the dead-zone ratio interpolates from max down to MinDeadZoneRatio.
	adaptiveZoomLow  = 1.1
	adaptiveZoomHigh = 2.5

	// minCroppingZoom is the scale below which the camera shows the whole
	// frame and no following applies.
	minCroppingZoom = 1.001
)

// AdaptiveDeadZoneRatio interpolates the dead-zone ratio from maxRatio at low
// zoom down to MinDeadZoneRatio at high zoom, so the camera tracks loosely at
// a wide view and tightly when magnified.
func AdaptiveDeadZoneRatio(zoomScale, maxRatio float64) float64 {
	if maxRatio < MinDeadZoneRatio {
		maxRatio = MinDeadZoneRatio
	}
	t := geom.Clamp01((zoomScale - adaptiveZoomLow) / (adaptiveZoomHigh - adaptiveZoomLow))
	return geom.Lerp(maxRatio, MinDeadZoneRatio, t)
}

// HalfWindows returns half the visible width and height of the camera's
// viewport in normalized source coordinates. At or below the cropping
// threshold the full frame is visible. Above it, the base half-window
// 0.5/zoom is expanded on the axis where the source extends past the drawn
// window, by the quotient of the source and output aspect ratios.
func HalfWindows(zoomScale, sourceW, sourceH, outputW, outputH float64) (halfX, halfY float64) {
	if zoomScale <= minCroppingZoom {
		return 0.5, 0.5
	}

	base := 0.5 / zoomScale
	if sourceW <= 0 || sourceH <= 0 || outputW <= 0 || outputH <= 0 {
		return base, base
	}

	q := (sourceW / sourceH) / (outputW / outputH)
	if q >= 1 {
		// Source wider than output: the crop window spans the full width
		// first, so the vertical half-window grows (letterbox-constrained).
		return base, base * q
	}
	// Output wider than source: horizontal half-window grows
	// (pillarbox-constrained).
	return base / q, base
}

// Target computes the next desired camera center for a cursor position.
//
// Two concentric zones surround the current center: inside the inner zone
// (60% of the dead-zone half-extent) the target stays put; in the outer band
// the target eases toward the cursor with a quintic ramp; beyond the
// dead-zone edge the center pins so the cursor sits exactly at the edge. A
// hard zone boundary would snap, 1:1 following would jitter; the band is the
// compromise.
//
// The result is clamped per axis so the visible window never reveals space
// beyond the permitted overscan.
func Target(cursor, center geom.Point, halfX, halfY, zoomScale, maxDeadZoneRatio float64, os viewport.Overscan) geom.Point {
	if zoomScale <= minCroppingZoom {
		return geom.Point{X: 0.5, Y: 0.5}
	}

	ratio := AdaptiveDeadZoneRatio(zoomScale, maxDeadZoneRatio)
	x := followAxis(cursor.X, center.X, ratio*halfX)
	y := followAxis(cursor.Y, center.Y, ratio*halfY)

	return geom.Point{
		X: clampAxis(x, halfX, os.Left, os.Right),
		Y: clampAxis(y, halfY, os.Top, os.Bottom),
	}
}

// ClampCenter restricts an arbitrary center (e.g. an authored fixed target)
// to the same bounds Target enforces.
func ClampCenter(center geom.Point, halfX, halfY float64, os viewport.Overscan) geom.Point {
	return geom.Point{
		X: clampAxis(center.X, halfX, os.Left, os.Right),
		Y: clampAxis(center.Y, halfY, os.Top, os.Bottom),
	}
}

func followAxis(cursor, center, deadZone float64) float64 {
	if deadZone <= 0 {
		return cursor
	}
	d := cursor - center
	dist := math.Abs(d)
	inner := innerZoneFraction * deadZone

	switch {
	case dist <= inner:
		return center
	case dist >= deadZone:
		// Pin the cursor to the dead-zone edge.
		return cursor - math.Copysign(deadZone, d)
	default:
		t := geom.SmootherStep((dist - inner) / (deadZone - inner))
		pinned := cursor - math.Copysign(deadZone, d)
		return geom.Lerp(center, pinned, t)
	}
}

func clampAxis(v, half, before, after float64) float64 {
	lo := half - before
	hi := 1 - half + after
	if lo > hi {
		// Window larger than the frame plus overscan; center it.
		return 0.5
	}
	return geom.Clamp(v, lo, hi)
}
