package director

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ivlev/followcam/internal/telemetry"
	"github.com/ivlev/followcam/internal/timeline"
)

// dwellRecording produces a recording where the cursor sits near (x, y)
// between fromMs and toMs, sampled every 20ms.
func dwellRecording(spans ...[4]float64) *telemetry.Recording {
	rec := &telemetry.Recording{ID: "rec", Width: 1920, Height: 1080}
	for _, span := range spans {
		x, y, from, to := span[0], span[1], span[2], span[3]
		for t := from; t <= to; t += 20 {
			rec.Cursor = append(rec.Cursor, telemetry.CursorSample{X: x, Y: y, TimestampMs: t})
		}
	}
	return rec
}

func TestPlannerProposesBlockPerDwell(t *testing.T) {
	t.Parallel()

	rec := dwellRecording(
		[4]float64{0.2, 0.3, 0, 2000},
		[4]float64{0.8, 0.7, 4000, 6000},
	)

	blocks := NewPlanner().Plan(rec)
	require.Len(t, blocks, 2)

	assert.Equal(t, timeline.FollowMouse, blocks[0].Follow)
	assert.True(t, blocks[0].Enabled)
	assert.NotEmpty(t, blocks[0].ID)
	assert.Less(t, blocks[0].StartTimeMs, blocks[1].StartTimeMs)

	// Lead-in pulls the first block's start to the recording start.
	assert.Equal(t, 0.0, blocks[0].StartTimeMs)
	assert.InDelta(t, 4000-250, blocks[1].StartTimeMs, 1e-9)
}

func TestPlannerTightDwellZoomsClose(t *testing.T) {
	t.Parallel()

	rec := dwellRecording([4]float64{0.5, 0.5, 0, 3000})

	// A click inside the window nudges the scale toward the cap.
	rec.Clicks = []telemetry.ClickSample{{X: 0.5, Y: 0.5, TimestampMs: 1500}}

	p := NewPlanner()
	blocks := p.Plan(rec)
	require.Len(t, blocks, 1)
	assert.Equal(t, p.MaxScale, blocks[0].Scale)
}

func TestPlannerMergesNearbyBlocks(t *testing.T) {
	t.Parallel()

	// Two distinct dwells whose blocks land closer than the minimum gap, so
	// they fuse into one.
	rec := dwellRecording(
		[4]float64{0.2, 0.2, 0, 1500},
		[4]float64{0.8, 0.8, 2000, 3200},
	)

	blocks := NewPlanner().Plan(rec)
	require.Len(t, blocks, 1)
	assert.Equal(t, 0.0, blocks[0].StartTimeMs)
	assert.GreaterOrEqual(t, blocks[0].EndTimeMs, 3200.0)
}

func TestPlannerClampsBlockDuration(t *testing.T) {
	t.Parallel()

	p := NewPlanner()
	p.MinGapMs = 0

	rec := dwellRecording([4]float64{0.4, 0.4, 0, 20000})
	blocks := p.Plan(rec)
	require.Len(t, blocks, 1)
	assert.InDelta(t, p.MaxBlockMs, blocks[0].EndTimeMs-blocks[0].StartTimeMs, 1e-9)
}

func TestPlannerEmptyRecording(t *testing.T) {
	t.Parallel()

	assert.Nil(t, NewPlanner().Plan(nil))
	assert.Nil(t, NewPlanner().Plan(&telemetry.Recording{ID: "empty"}))
}

func TestPlanRoundTrip(t *testing.T) {
	t.Parallel()

	blocks := []timeline.ZoomBlock{
		{
			ID: "b1", StartTimeMs: 1000, EndTimeMs: 3000, Scale: 2.0,
			IntroMs: 500, OutroMs: 500, Smoothing: 50,
			Follow: timeline.FollowMouse, Enabled: true,
		},
		{
			ID: "b2", StartTimeMs: 5000, EndTimeMs: 7000, Scale: 1.6,
			TargetX: 0.3, TargetY: 0.7,
			IntroMs: 400, OutroMs: 600, Smoothing: 30,
			Follow: timeline.FollowFixed, MouseIdlePx: 4, Enabled: true,
		},
	}

	path := filepath.Join(t.TempDir(), "plan.yaml")
	require.NoError(t, WritePlan(NewPlan("clip-1", blocks), path))

	plan, err := ReadPlan(path)
	require.NoError(t, err)
	assert.Equal(t, "1.0", plan.Version)
	require.Len(t, plan.Blocks, 2)
	assert.Equal(t, "clip-1", plan.Blocks[0].ClipID)

	assert.Equal(t, blocks, plan.ZoomBlocks())
}

func TestReadPlanMissingFile(t *testing.T) {
	t.Parallel()

	_, err := ReadPlan(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}
