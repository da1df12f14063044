package timeline

import (
	"math"
	"sort"

	"github.com/ivlev/followcam/internal/geom"
	"github.com/ivlev/followcam/internal/viewport"
)

// Clip places a span of one recording on the output timeline.
type Clip struct {
	ID          string
	RecordingID string

	// StartMs is the clip's position on the output timeline; SourceOffsetMs
	// is where playback starts inside the recording.
	StartMs        float64
	DurationMs     float64
	SourceOffsetMs float64

	Mockup *viewport.Mockup

	// Effects are the zoom blocks scoped to this clip, in the recording's
	// source time.
	Effects []ZoomBlock
}

// FrameContext is what one output frame resolves to: the active clip and the
// source time inside its recording.
type FrameContext struct {
	Clip         *Clip
	SourceTimeMs float64
	Effects      []ZoomBlock
}

// Layout is the frame layout service: it maps output frame indices to clips.
// Immutable once built.
type Layout struct {
	clips       []Clip
	fps         int
	totalFrames int
}

// NewLayout builds a layout over the given clips at the output frame rate.
// Clips are sorted by timeline position; the total frame count covers the
// last clip's end.
func NewLayout(clips []Clip, fps int) *Layout {
	if fps <= 0 {
		fps = 30
	}
	sorted := make([]Clip, len(clips))
	copy(sorted, clips)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].StartMs < sorted[j].StartMs
	})

	endMs := 0.0
	for _, c := range sorted {
		if e := c.StartMs + c.DurationMs; e > endMs {
			endMs = e
		}
	}

	return &Layout{
		clips:       sorted,
		fps:         fps,
		totalFrames: int(math.Ceil(endMs / 1000 * float64(fps))),
	}
}

// FPS returns the output frame rate.
func (l *Layout) FPS() int { return l.fps }

// TotalFrames returns the number of output frames the layout spans.
func (l *Layout) TotalFrames() int { return l.totalFrames }

// FrameTimeMs returns the output-timeline time of a frame index.
func (l *Layout) FrameTimeMs(frame int) float64 {
	return float64(frame) * 1000 / float64(l.fps)
}

// Resolve maps an output frame index to its clip and source time, or nil in
// a gap between clips. When clips overlap the later-starting one wins, same
// rule as zoom blocks.
func (l *Layout) Resolve(frame int) *FrameContext {
	tMs := l.FrameTimeMs(frame)
	idx := geom.SearchLE(len(l.clips), func(i int) float64 { return l.clips[i].StartMs }, tMs)
	for ; idx >= 0; idx-- {
		c := &l.clips[idx]
		if tMs < c.StartMs+c.DurationMs {
			return &FrameContext{
				Clip:         c,
				SourceTimeMs: tMs - c.StartMs + c.SourceOffsetMs,
				Effects:      c.Effects,
			}
		}
	}
	return nil
}

// HasCameraWork reports whether anything in the timeline can move the
// camera: an enabled zoom block or a mockup with camera tracking. When false
// the whole path is the default centered frame and simulation is skipped.
func (l *Layout) HasCameraWork() bool {
	for i := range l.clips {
		c := &l.clips[i]
		if c.Mockup != nil && c.Mockup.CameraTracking {
			return true
		}
		for j := range c.Effects {
			if c.Effects[j].Enabled {
				return true
			}
		}
	}
	return false
}
