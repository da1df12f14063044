package analyzer

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ivlev/followcam/internal/telemetry"
)

// dwell emits samples every stepMs around (x, y) from startMs for durMs.
func dwell(x, y, startMs, durMs, stepMs float64) []telemetry.CursorSample {
	var out []telemetry.CursorSample
	for t := startMs; t <= startMs+durMs; t += stepMs {
		out = append(out, telemetry.CursorSample{X: x, Y: y, TimestampMs: t})
	}
	return out
}

func TestAnalyzeMotionClusters(t *testing.T) {
	t.Parallel()

	opts := DefaultOptions()

	t.Run("two dwell regions become two clusters", func(t *testing.T) {
		t.Parallel()
		samples := append(dwell(0.2, 0.2, 0, 1000, 50), dwell(0.8, 0.8, 1050, 1000, 50)...)
		clusters := AnalyzeMotionClusters(samples, 1920, 1080, opts)
		require.Len(t, clusters, 2)
		assert.InDelta(t, 0.2, clusters[0].CentroidX, 1e-9)
		assert.InDelta(t, 0.8, clusters[1].CentroidX, 1e-9)
	})

	t.Run("clusters are time-ordered and non-overlapping", func(t *testing.T) {
		t.Parallel()
		samples := append(dwell(0.1, 0.1, 0, 900, 30), dwell(0.9, 0.2, 1000, 900, 30)...)
		samples = append(samples, dwell(0.5, 0.9, 2000, 900, 30)...)
		clusters := AnalyzeMotionClusters(samples, 1920, 1080, opts)
		require.NotEmpty(t, clusters)
		for i, c := range clusters {
			assert.Greater(t, c.EndTimeMs, c.StartTimeMs)
			if i > 0 {
				assert.GreaterOrEqual(t, c.StartTimeMs, clusters[i-1].EndTimeMs)
			}
		}
	})

	t.Run("short dwell is dropped", func(t *testing.T) {
		t.Parallel()
		samples := dwell(0.5, 0.5, 0, opts.MinClusterDurationMs-100, 50)
		clusters := AnalyzeMotionClusters(samples, 1920, 1080, opts)
		assert.Empty(t, clusters)
	})

	t.Run("single trailing sample never forms a cluster", func(t *testing.T) {
		t.Parallel()
		samples := append(dwell(0.2, 0.2, 0, 1000, 50), telemetry.CursorSample{X: 0.95, Y: 0.95, TimestampMs: 1100})
		clusters := AnalyzeMotionClusters(samples, 1920, 1080, opts)
		require.Len(t, clusters, 1)
		assert.InDelta(t, 0.2, clusters[0].CentroidX, 1e-9)
	})

	t.Run("empty input", func(t *testing.T) {
		t.Parallel()
		assert.Empty(t, AnalyzeMotionClusters(nil, 1920, 1080, opts))
	})

	t.Run("centroid is the mean of member samples", func(t *testing.T) {
		t.Parallel()
		samples := []telemetry.CursorSample{
			{X: 0.50, Y: 0.50, TimestampMs: 0},
			{X: 0.52, Y: 0.48, TimestampMs: 300},
			{X: 0.48, Y: 0.52, TimestampMs: 600},
		}
		clusters := AnalyzeMotionClusters(samples, 1920, 1080, opts)
		require.Len(t, clusters, 1)
		assert.InDelta(t, 0.5, clusters[0].CentroidX, 1e-9)
		assert.InDelta(t, 0.5, clusters[0].CentroidY, 1e-9)
		assert.Equal(t, 3, clusters[0].SampleCount)
	})
}

func TestFindActiveCluster(t *testing.T) {
	t.Parallel()

	clusters := []ActivityCluster{
		{StartTimeMs: 0, EndTimeMs: 1000, CentroidX: 0.2},
		{StartTimeMs: 2000, EndTimeMs: 3000, CentroidX: 0.8},
	}

	t.Run("inside a cluster", func(t *testing.T) {
		t.Parallel()
		c := FindActiveCluster(clusters, 500, 0)
		require.NotNil(t, c)
		assert.InDelta(t, 0.2, c.CentroidX, 1e-12)
	})

	t.Run("hold buffer extends past the end", func(t *testing.T) {
		t.Parallel()
		c := FindActiveCluster(clusters, 1200, 300)
		require.NotNil(t, c)
		assert.InDelta(t, 0.2, c.CentroidX, 1e-12)
	})

	t.Run("gap between clusters", func(t *testing.T) {
		t.Parallel()
		assert.Nil(t, FindActiveCluster(clusters, 1600, 300))
	})

	t.Run("before the first cluster", func(t *testing.T) {
		t.Parallel()
		assert.Nil(t, FindActiveCluster(clusters, -10, 300))
	})

	t.Run("after the last hold window", func(t *testing.T) {
		t.Parallel()
		assert.Nil(t, FindActiveCluster(clusters, 3500, 300))
	})

	t.Run("empty clusters", func(t *testing.T) {
		t.Parallel()
		assert.Nil(t, FindActiveCluster(nil, 100, 100))
	})
}

func TestCache(t *testing.T) {
	t.Parallel()

	rec := &telemetry.Recording{
		ID:       "rec-1",
		Width:    1920,
		Height:   1080,
		Cursor:   dwell(0.3, 0.3, 0, 1000, 50),
		Revision: 1,
	}

	t.Run("memoizes per revision and viewport", func(t *testing.T) {
		t.Parallel()
		c := NewCache(DefaultOptions())
		first := c.Clusters(rec, 1920, 1080)
		second := c.Clusters(rec, 1920, 1080)
		require.Len(t, first, 1)
		assert.Equal(t, 1, c.Len())
		assert.Equal(t, first, second)
	})

	t.Run("revision bump misses the cache", func(t *testing.T) {
		t.Parallel()
		c := NewCache(DefaultOptions())
		c.Clusters(rec, 1920, 1080)

		bumped := *rec
		bumped.Revision = 2
		c.Clusters(&bumped, 1920, 1080)
		assert.Equal(t, 2, c.Len())
	})

	t.Run("viewport change misses the cache", func(t *testing.T) {
		t.Parallel()
		c := NewCache(DefaultOptions())
		c.Clusters(rec, 1920, 1080)
		c.Clusters(rec, 1280, 720)
		assert.Equal(t, 2, c.Len())
	})
}

func TestCinematicPosition(t *testing.T) {
	t.Parallel()

	t.Run("steady cursor averages to itself", func(t *testing.T) {
		t.Parallel()
		samples := dwell(0.4, 0.6, 0, 2000, 50)
		p, ok := CinematicPosition(samples, 1500, 500)
		require.True(t, ok)
		assert.InDelta(t, 0.4, p.X, 1e-9)
		assert.InDelta(t, 0.6, p.Y, 1e-9)
	})

	t.Run("average lags a moving cursor", func(t *testing.T) {
		t.Parallel()
		var samples []telemetry.CursorSample
		for ts := 0.0; ts <= 2000; ts += 50 {
			samples = append(samples, telemetry.CursorSample{X: ts / 2000, Y: 0.5, TimestampMs: ts})
		}
		p, ok := CinematicPosition(samples, 2000, 1000)
		require.True(t, ok)
		assert.Less(t, p.X, 1.0)
		assert.Greater(t, p.X, 0.4)
	})

	t.Run("before recording start", func(t *testing.T) {
		t.Parallel()
		samples := dwell(0.5, 0.5, 1000, 1000, 50)
		_, ok := CinematicPosition(samples, 500, 400)
		assert.False(t, ok)
	})

	t.Run("partial window still resolves", func(t *testing.T) {
		t.Parallel()
		samples := dwell(0.5, 0.5, 1000, 1000, 50)
		p, ok := CinematicPosition(samples, 1100, 800)
		require.True(t, ok)
		assert.InDelta(t, 0.5, p.X, 1e-9)
	})

	t.Run("zero window degrades to direct interpolation", func(t *testing.T) {
		t.Parallel()
		samples := dwell(0.7, 0.2, 0, 1000, 50)
		p, ok := CinematicPosition(samples, 500, 0)
		require.True(t, ok)
		assert.InDelta(t, 0.7, p.X, 1e-9)
	})
}

func TestSmoothingWindowMs(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 0.0, SmoothingWindowMs(0))
	assert.Equal(t, 1000.0, SmoothingWindowMs(100))
	assert.Equal(t, 500.0, SmoothingWindowMs(50))
	assert.Equal(t, 1000.0, SmoothingWindowMs(250))
	assert.Equal(t, 0.0, SmoothingWindowMs(-5))
	assert.Equal(t, 0.0, SmoothingWindowMs(math.NaN()))
	assert.Equal(t, 0.0, SmoothingWindowMs(math.Inf(1)))
}
