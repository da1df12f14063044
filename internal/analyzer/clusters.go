package analyzer

import (
	"math"

	"github.com/ivlev/followcam/internal/geom"
	"github.com/ivlev/followcam/internal/telemetry"
)

// ActivityCluster is a contiguous span of cursor samples that stayed within a
// bounded radius of each other for at least a minimum duration. The camera
// treats it as one region of sustained user activity.
type ActivityCluster struct {
	StartTimeMs float64
	EndTimeMs   float64
	CentroidX   float64
	CentroidY   float64
	SampleCount int
}

// Options tunes the clustering pass.
type Options struct {
	// ClusterRadiusRatio is the join radius as a fraction of the viewport
	// diagonal.
	ClusterRadiusRatio float64

	// MinClusterDurationMs is the minimum span a cluster must cover to be
	// emitted. Shorter runs are dropped as isolated moves.
	MinClusterDurationMs float64
}

// DefaultOptions returns the clustering defaults.
func DefaultOptions() Options {
	return Options{
		ClusterRadiusRatio:   0.08,
		MinClusterDurationMs: 400,
	}
}

// AnalyzeMotionClusters groups time-ordered cursor samples into activity
// clusters in one left-to-right streaming pass. A sample joins the running
// cluster when its distance to the running centroid, measured in viewport
// pixels, is within the join radius; otherwise the running cluster is closed
// and a new one starts. Clusters shorter than the minimum duration are
// dropped, which also discards a single trailing sample: an isolated move
// should not pin the camera.
func AnalyzeMotionClusters(samples []telemetry.CursorSample, viewportWidth, viewportHeight float64, opts Options) []ActivityCluster {
	if len(samples) == 0 || viewportWidth <= 0 || viewportHeight <= 0 {
		return nil
	}

	diagonal := math.Hypot(viewportWidth, viewportHeight)
	radius := opts.ClusterRadiusRatio * diagonal

	var clusters []ActivityCluster
	var run ActivityCluster

	flush := func() {
		if run.SampleCount > 0 && run.EndTimeMs-run.StartTimeMs >= opts.MinClusterDurationMs {
			clusters = append(clusters, run)
		}
		run = ActivityCluster{}
	}

	for _, s := range samples {
		if run.SampleCount > 0 {
			dx := (s.X - run.CentroidX) * viewportWidth
			dy := (s.Y - run.CentroidY) * viewportHeight
			if math.Hypot(dx, dy) > radius {
				flush()
			}
		}
		if run.SampleCount == 0 {
			run = ActivityCluster{
				StartTimeMs: s.TimestampMs,
				EndTimeMs:   s.TimestampMs,
				CentroidX:   s.X,
				CentroidY:   s.Y,
				SampleCount: 1,
			}
			continue
		}
		// Running mean keeps the join test O(1) per sample.
		n := float64(run.SampleCount)
		run.CentroidX = (run.CentroidX*n + s.X) / (n + 1)
		run.CentroidY = (run.CentroidY*n + s.Y) / (n + 1)
		run.EndTimeMs = s.TimestampMs
		run.SampleCount++
	}
	flush()

	return clusters
}

// FindActiveCluster returns the cluster active at timeMs, or nil. A cluster
// stays active for holdBufferMs past its end so the camera lingers briefly
// after activity stops instead of snapping back.
func FindActiveCluster(clusters []ActivityCluster, timeMs, holdBufferMs float64) *ActivityCluster {
	idx := geom.SearchLE(len(clusters), func(i int) float64 { return clusters[i].StartTimeMs }, timeMs)
	if idx < 0 {
		return nil
	}
	if timeMs <= clusters[idx].EndTimeMs+holdBufferMs {
		return &clusters[idx]
	}
	return nil
}
