// Package engine precomputes the camera path for a timeline: one sequential
// simulation pass over every output frame, producing a dense lookup table
// the renderer reads by frame index. The renderer never re-runs physics,
// which is what keeps preview and export bit-for-bit identical.
package engine

import (
	"math"

	"github.com/ivlev/followcam/internal/analyzer"
	"github.com/ivlev/followcam/internal/follow"
	"github.com/ivlev/followcam/internal/geom"
	"github.com/ivlev/followcam/internal/physics"
	"github.com/ivlev/followcam/internal/telemetry"
	"github.com/ivlev/followcam/internal/timeline"
	"github.com/ivlev/followcam/internal/viewport"
)

// PathFrame is the engine's per-frame output: the zoom block active at that
// frame (nil outside any block) and the camera center. The renderer derives
// the drawn scale from the block; the center is the simulated position.
type PathFrame struct {
	Block  *timeline.ZoomBlock
	Center geom.Point
}

// DefaultFrame is the neutral frame used for unresolvable frames and for
// timelines with no camera work at all.
func DefaultFrame() PathFrame {
	return PathFrame{Center: geom.Point{X: 0.5, Y: 0.5}}
}

// RecordingLookup resolves recording IDs to their telemetry. A nil return
// degrades the affected frames to the default frame instead of failing the
// whole path.
type RecordingLookup interface {
	Recording(id string) *telemetry.Recording
}

// Params are the resolved engine tunables. They come out of the config layer
// once, at the boundary; nothing inside the loop re-defaults them.
type Params struct {
	// Smoothness (0-100) maps to the spring dynamics.
	Smoothness float64

	// CinematicSmoothing (0-100) sizes the idle averaging window for blocks
	// that do not carry their own smoothing value.
	CinematicSmoothing float64

	MaxDeadZoneRatio      float64
	HoldBufferMs          float64
	SourceJumpThresholdMs float64

	// DefaultScale is used for autoScale blocks that reached the engine
	// without a planner-resolved scale.
	DefaultScale float64

	Cluster analyzer.Options
}

// DefaultParams returns the engine defaults.
func DefaultParams() Params {
	return Params{
		Smoothness:            60,
		CinematicSmoothing:    50,
		MaxDeadZoneRatio:      follow.DefaultMaxDeadZoneRatio,
		HoldBufferMs:          300,
		SourceJumpThresholdMs: physics.DefaultSourceJumpThresholdMs,
		DefaultScale:          2,
		Cluster:               analyzer.DefaultOptions(),
	}
}

// Engine computes camera paths. The cluster cache is shared across runs and
// safe for concurrent use; per-run simulation state is created fresh inside
// each CalculateCameraPath call.
type Engine struct {
	params   Params
	clusters *analyzer.Cache
}

// New returns an engine with the given parameters.
func New(params Params) *Engine {
	return &Engine{
		params:   params,
		clusters: analyzer.NewCache(params.Cluster),
	}
}

// Params returns the engine's resolved tunables.
func (e *Engine) Params() Params { return e.params }

// CalculateCameraPath runs the full precompute pass and returns the dense
// per-frame path table. Two invocations over the same inputs produce
// identical output down to the floating-point bit pattern.
//
// The physics state threads strictly forward through the frame loop, so the
// loop must stay sequential; it is never chunked or parallelized.
func (e *Engine) CalculateCameraPath(layout *timeline.Layout, canvas viewport.Canvas, recordings RecordingLookup) []PathFrame {
	total := layout.TotalFrames()
	path := make([]PathFrame, total)

	// Fast path: an unedited timeline needs no simulation.
	if !layout.HasCameraWork() {
		for i := range path {
			path[i] = DefaultFrame()
		}
		return path
	}

	sim := physics.NewSimulator(physics.DynamicsForSmoothness(e.params.Smoothness))
	sim.SourceJumpThresholdMs = e.params.SourceJumpThresholdMs
	state := physics.NewState()

	var lastCursor geom.Point
	lastCursorValid := false

	for i := 0; i < total; i++ {
		frameTimeMs := layout.FrameTimeMs(i)

		fc := layout.Resolve(i)
		if fc == nil {
			path[i] = DefaultFrame()
			continue
		}
		rec := recordings.Recording(fc.Clip.RecordingID)
		if rec == nil {
			path[i] = DefaultFrame()
			continue
		}

		block := timeline.ActiveZoomBlock(fc.Effects, fc.SourceTimeMs)
		mockup := fc.Clip.Mockup
		tracking := mockup != nil && mockup.CameraTracking

		if block == nil && !tracking {
			// Ease the camera back toward center between blocks.
			sim.Step(state, geom.Point{X: 0.5, Y: 0.5}, frameTimeMs, fc.SourceTimeMs)
			path[i] = PathFrame{Center: clampState(state)}
			continue
		}

		zoom := e.zoomAt(block, mockup, fc.SourceTimeMs)
		geo := viewport.Map(canvas, float64(rec.Width), float64(rec.Height), mockup)
		halfX, halfY := follow.HalfWindows(zoom, float64(rec.Width), float64(rec.Height), geo.OutputWidth, geo.OutputHeight)

		var target geom.Point
		if block != nil && block.Follow == timeline.FollowFixed {
			target = follow.ClampCenter(geom.Point{X: block.TargetX, Y: block.TargetY}, halfX, halfY, geo.Overscan)
		} else {
			cursor, ok := e.cursorAt(rec, fc.SourceTimeMs, block)
			if ok {
				cursor = e.gateIdle(cursor, rec, block, &lastCursor, &lastCursorValid)
				center := geom.Point{X: state.X, Y: state.Y}
				target = follow.Target(cursor, center, halfX, halfY, zoom, e.params.MaxDeadZoneRatio, geo.Overscan)
			} else {
				// No telemetry resolved; hold the clamped current center.
				target = follow.ClampCenter(geom.Point{X: state.X, Y: state.Y}, halfX, halfY, geo.Overscan)
			}
		}

		sim.Step(state, target, frameTimeMs, fc.SourceTimeMs)
		path[i] = PathFrame{Block: block, Center: clampState(state)}
	}

	return path
}

// zoomAt resolves the effective zoom scale for a frame: the block's eased
// scale, or the mockup's base zoom when only tracking is active.
func (e *Engine) zoomAt(block *timeline.ZoomBlock, mockup *viewport.Mockup, sourceTimeMs float64) float64 {
	if block != nil {
		b := *block
		if b.Scale < 1 || math.IsNaN(b.Scale) {
			b.Scale = e.params.DefaultScale
		}
		return timeline.EffectiveScale(&b, sourceTimeMs)
	}
	if mockup != nil && mockup.BaseZoom > 1 {
		return mockup.BaseZoom
	}
	return e.params.DefaultScale
}

// cursorAt picks the cursor attractor for a frame: the live interpolated
// position while an activity cluster is live (plus hold buffer), the
// cinematic windowed average otherwise.
func (e *Engine) cursorAt(rec *telemetry.Recording, sourceTimeMs float64, block *timeline.ZoomBlock) (geom.Point, bool) {
	clusters := e.clusters.Clusters(rec, rec.Width, rec.Height)
	if c := analyzer.FindActiveCluster(clusters, sourceTimeMs, e.params.HoldBufferMs); c != nil {
		return telemetry.PositionAt(rec.Cursor, sourceTimeMs)
	}

	smoothing := e.params.CinematicSmoothing
	if block != nil {
		smoothing = block.Smoothing
	}
	return analyzer.CinematicPosition(rec.Cursor, sourceTimeMs, analyzer.SmoothingWindowMs(smoothing))
}

// gateIdle suppresses cursor movement below the block's idle threshold,
// measured in recording pixels. Micro-jitter at high zoom would otherwise
// leak through the dead zone's outer band.
func (e *Engine) gateIdle(cursor geom.Point, rec *telemetry.Recording, block *timeline.ZoomBlock, last *geom.Point, valid *bool) geom.Point {
	idlePx := 0.0
	if block != nil {
		idlePx = block.MouseIdlePx
	}
	if idlePx <= 0 || !*valid {
		*last = cursor
		*valid = true
		return cursor
	}

	dx := (cursor.X - last.X) * float64(rec.Width)
	dy := (cursor.Y - last.Y) * float64(rec.Height)
	if math.Hypot(dx, dy) < idlePx {
		return *last
	}
	*last = cursor
	return cursor
}

func clampState(st *physics.State) geom.Point {
	return geom.Point{X: geom.Clamp01(st.X), Y: geom.Clamp01(st.Y)}
}
