// Package render turns a precomputed camera path into renderer-facing
// artifacts: a sparse keyframe list, an FFmpeg zoompan filter, a YAML path
// table and a PNG preview. It only reads the path; it never re-runs physics.
package render

import (
	"math"

	"github.com/ivlev/followcam/internal/engine"
	"github.com/ivlev/followcam/internal/timeline"
)

// Keyframe is one sampled point of the camera path: normalized center and
// the effective zoom at that output frame.
type Keyframe struct {
	Frame int     `yaml:"frame"`
	CX    float64 `yaml:"cx"`
	CY    float64 `yaml:"cy"`
	Zoom  float64 `yaml:"zoom"`
}

// DefaultEpsilon is the keyframe downsampling threshold: a frame becomes a
// keyframe when its center or zoom drifts this far from the last one kept.
const DefaultEpsilon = 0.0005

// BuildKeyframes downsamples a dense path into keyframes. The first and last
// frames are always kept, as is every frame where the active zoom block
// changes, so block edges stay sharp after downsampling.
func BuildKeyframes(path []engine.PathFrame, layout *timeline.Layout, epsilon float64) []Keyframe {
	if len(path) == 0 {
		return nil
	}
	if epsilon <= 0 {
		epsilon = DefaultEpsilon
	}

	kfs := []Keyframe{frameAt(path, layout, 0)}
	for i := 1; i < len(path); i++ {
		kf := frameAt(path, layout, i)
		last := kfs[len(kfs)-1]

		blockEdge := path[i].Block != path[i-1].Block
		moved := math.Abs(kf.CX-last.CX) > epsilon ||
			math.Abs(kf.CY-last.CY) > epsilon ||
			math.Abs(kf.Zoom-last.Zoom) > epsilon

		if blockEdge || moved || i == len(path)-1 {
			kfs = append(kfs, kf)
		}
	}
	return kfs
}

func frameAt(path []engine.PathFrame, layout *timeline.Layout, i int) Keyframe {
	kf := Keyframe{
		Frame: i,
		CX:    path[i].Center.X,
		CY:    path[i].Center.Y,
		Zoom:  1,
	}
	if path[i].Block != nil {
		sourceTime := layout.FrameTimeMs(i)
		if ctx := layout.Resolve(i); ctx != nil {
			sourceTime = ctx.SourceTimeMs
		}
		kf.Zoom = timeline.EffectiveScale(path[i].Block, sourceTime)
	}
	return kf
}
