// Package timeline holds the authored side of a project: zoom blocks and the
// clip layout that maps output frames to source time. The engine treats
// everything here as read-only input.
package timeline

import "github.com/ivlev/followcam/internal/geom"

// FollowStrategy selects what a zoom block's camera aims at.
type FollowStrategy string

const (
	// FollowMouse tracks recorded cursor telemetry through the dead-zone
	// policy.
	FollowMouse FollowStrategy = "mouse"

	// FollowFixed frames the authored target point and ignores the cursor.
	FollowFixed FollowStrategy = "fixed"
)

// ZoomBlock is one span of user-authored zoom intent in source time. All
// optional authoring fields are resolved to concrete values at the project
// load boundary; the engine never re-defaults them.
type ZoomBlock struct {
	ID          string
	StartTimeMs float64
	EndTimeMs   float64

	// Scale is the block's full zoom factor, >= 1.
	Scale float64

	// TargetX/TargetY are the framed center for FollowFixed, normalized.
	TargetX float64
	TargetY float64

	// IntroMs/OutroMs are the ease-in and ease-out ramp lengths.
	IntroMs float64
	OutroMs float64

	// Smoothing (0-100) sizes the cinematic averaging window used while no
	// activity cluster is live. Distinct from the camera smoothness slider.
	Smoothing float64

	Follow FollowStrategy

	// MouseIdlePx suppresses cursor movement below this many recording
	// pixels, so micro-jitter does not wiggle a magnified camera.
	MouseIdlePx float64

	Enabled bool
}

// ActiveZoomBlock returns the block active at sourceTimeMs, with
// startTime <= t < endTime. Authoring tools are expected to prevent overlap,
// but resolution stays well-defined: the later-starting block wins. Disabled
// blocks never match.
func ActiveZoomBlock(blocks []ZoomBlock, sourceTimeMs float64) *ZoomBlock {
	var active *ZoomBlock
	for i := range blocks {
		b := &blocks[i]
		if !b.Enabled {
			continue
		}
		if sourceTimeMs < b.StartTimeMs || sourceTimeMs >= b.EndTimeMs {
			continue
		}
		if active == nil || b.StartTimeMs >= active.StartTimeMs {
			active = b
		}
	}
	return active
}

// EffectiveScale returns the block's eased zoom factor at sourceTimeMs:
// ramping from 1 to Scale across the intro, holding, and ramping back down
// across the outro. Outside the block (or for a nil block) the scale is 1.
func EffectiveScale(b *ZoomBlock, sourceTimeMs float64) float64 {
	if b == nil || sourceTimeMs < b.StartTimeMs || sourceTimeMs >= b.EndTimeMs {
		return 1
	}

	in := 1.0
	if b.IntroMs > 0 {
		in = geom.Clamp01((sourceTimeMs - b.StartTimeMs) / b.IntroMs)
	}
	out := 1.0
	if b.OutroMs > 0 {
		out = geom.Clamp01((b.EndTimeMs - sourceTimeMs) / b.OutroMs)
	}

	ramp := in
	if out < ramp {
		ramp = out
	}
	return 1 + (b.Scale-1)*geom.EaseInOutCubic(ramp)
}
