// Package director proposes zoom blocks from recorded activity: it is
// authoring-time tooling, and the engine still treats its output as
// read-only authored intent.
package director

import (
	"math"
	"sort"

	"github.com/google/uuid"

	"github.com/ivlev/followcam/internal/analyzer"
	"github.com/ivlev/followcam/internal/telemetry"
	"github.com/ivlev/followcam/internal/timeline"
)

// Planner generates zoom blocks from a recording's cursor and click
// telemetry.
type Planner struct {
	Clusters analyzer.Options

	// MinBlockMs / MaxBlockMs clamp each proposed block's dwell.
	MinBlockMs float64
	MaxBlockMs float64

	// LeadInMs starts a block slightly before its cluster so the zoom-in
	// lands as the activity begins.
	LeadInMs float64

	// MinGapMs merges blocks that would follow each other too closely; a
	// zoom-out immediately followed by a zoom-in reads as a stutter.
	MinGapMs float64

	MinScale float64
	MaxScale float64

	IntroMs   float64
	OutroMs   float64
	Smoothing float64
}

// NewPlanner returns a planner with default settings.
func NewPlanner() *Planner {
	return &Planner{
		Clusters:   analyzer.DefaultOptions(),
		MinBlockMs: 1200,
		MaxBlockMs: 8000,
		LeadInMs:   250,
		MinGapMs:   600,
		MinScale:   1.4,
		MaxScale:   3.0,
		IntroMs:    500,
		OutroMs:    500,
		Smoothing:  50,
	}
}

// Plan proposes zoom blocks for one recording. Each sufficiently long
// activity cluster becomes a mouse-follow block; the zoom level derives from
// how spread out the cluster's samples are, with clicks inside the window
// nudging it tighter.
func (p *Planner) Plan(rec *telemetry.Recording) []timeline.ZoomBlock {
	if rec == nil || len(rec.Cursor) == 0 {
		return nil
	}

	clusters := analyzer.AnalyzeMotionClusters(rec.Cursor, float64(rec.Width), float64(rec.Height), p.Clusters)
	if len(clusters) == 0 {
		return nil
	}

	blocks := make([]timeline.ZoomBlock, 0, len(clusters))
	for _, c := range clusters {
		start := c.StartTimeMs - p.LeadInMs
		if start < 0 {
			start = 0
		}
		end := c.EndTimeMs
		if end-start < p.MinBlockMs {
			end = start + p.MinBlockMs
		}
		if end-start > p.MaxBlockMs {
			end = start + p.MaxBlockMs
		}

		blocks = append(blocks, timeline.ZoomBlock{
			ID:          uuid.NewString(),
			StartTimeMs: start,
			EndTimeMs:   end,
			Scale:       p.scaleFor(rec, c),
			IntroMs:     p.IntroMs,
			OutroMs:     p.OutroMs,
			Smoothing:   p.Smoothing,
			Follow:      timeline.FollowMouse,
			Enabled:     true,
		})
	}

	return p.merge(blocks)
}

// scaleFor derives the zoom from the cluster's spatial spread: a tight dwell
// earns a close zoom, a sweeping one stays wide. Clicks inside the window
// signal focused interaction and tighten the zoom a step further.
func (p *Planner) scaleFor(rec *telemetry.Recording, c analyzer.ActivityCluster) float64 {
	diag := math.Hypot(float64(rec.Width), float64(rec.Height))

	spread := 0.0
	for _, s := range rec.Cursor {
		if s.TimestampMs < c.StartTimeMs || s.TimestampMs > c.EndTimeMs {
			continue
		}
		dx := (s.X - c.CentroidX) * float64(rec.Width)
		dy := (s.Y - c.CentroidY) * float64(rec.Height)
		if d := math.Hypot(dx, dy); d > spread {
			spread = d
		}
	}

	// spread == join radius maps to MinScale; spread == 0 to MaxScale.
	radius := p.Clusters.ClusterRadiusRatio * diag
	t := 0.0
	if radius > 0 {
		t = 1 - math.Min(spread/radius, 1)
	}
	scale := p.MinScale + t*(p.MaxScale-p.MinScale)

	for _, click := range rec.Clicks {
		if click.TimestampMs >= c.StartTimeMs && click.TimestampMs <= c.EndTimeMs {
			scale += 0.2
			break
		}
	}
	if scale > p.MaxScale {
		scale = p.MaxScale
	}
	return scale
}

// merge joins blocks separated by less than the minimum gap, keeping the
// larger scale and re-sorting by start time.
func (p *Planner) merge(blocks []timeline.ZoomBlock) []timeline.ZoomBlock {
	if len(blocks) < 2 {
		return blocks
	}
	sort.SliceStable(blocks, func(i, j int) bool {
		return blocks[i].StartTimeMs < blocks[j].StartTimeMs
	})

	out := blocks[:1]
	for _, b := range blocks[1:] {
		last := &out[len(out)-1]
		if b.StartTimeMs-last.EndTimeMs < p.MinGapMs {
			if b.EndTimeMs > last.EndTimeMs {
				last.EndTimeMs = b.EndTimeMs
			}
			if b.Scale > last.Scale {
				last.Scale = b.Scale
			}
			continue
		}
		out = append(out, b)
	}
	return out
}
