package project

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ivlev/followcam/internal/timeline"
)

const sampleProject = `{
  "version": "1",
  "output": {"width": 1920, "height": 1080, "fps": 30},
  "recordings": [
    {
      "id": "rec-1",
      "width": 2560,
      "height": 1440,
      "cursor": [
        {"x": 0.5, "y": 0.5, "timestampMs": 100},
        {"x": 0.2, "y": 0.2, "timestampMs": 0}
      ]
    }
  ],
  "clips": [
    {"id": "clip-1", "recordingId": "rec-1", "startMs": 0, "durationMs": 10000}
  ],
  "zoomBlocks": [
    {
      "clipId": "clip-1",
      "startTime": 1000,
      "endTime": 4000,
      "scale": 2.5,
      "followStrategy": "mouse"
    }
  ]
}`

func TestParse(t *testing.T) {
	t.Parallel()

	t.Run("valid document", func(t *testing.T) {
		t.Parallel()
		doc, err := Parse([]byte(sampleProject))
		require.NoError(t, err)
		assert.Equal(t, 30, doc.Output.FPS)
		require.Len(t, doc.ZoomBlocks, 1)
		assert.NotEmpty(t, doc.ZoomBlocks[0].ID, "missing block ID is assigned")
	})

	t.Run("inverted zoom block is rejected", func(t *testing.T) {
		t.Parallel()
		bad := `{
  "version": "1",
  "output": {"width": 1920, "height": 1080, "fps": 30},
  "recordings": [{"id": "r", "width": 100, "height": 100}],
  "clips": [{"id": "c", "recordingId": "r", "durationMs": 1000}],
  "zoomBlocks": [{"clipId": "c", "startTime": 5000, "endTime": 2000, "scale": 2}]
}`
		_, err := Parse([]byte(bad))
		assert.Error(t, err)
	})

	t.Run("zero-duration clip is rejected", func(t *testing.T) {
		t.Parallel()
		bad := `{
  "version": "1",
  "output": {"width": 1920, "height": 1080, "fps": 30},
  "recordings": [{"id": "r", "width": 100, "height": 100}],
  "clips": [{"id": "c", "recordingId": "r", "durationMs": 0}]
}`
		_, err := Parse([]byte(bad))
		assert.Error(t, err)
	})

	t.Run("missing recordings are rejected", func(t *testing.T) {
		t.Parallel()
		_, err := Parse([]byte(`{"version":"1","output":{"width":1,"height":1,"fps":30},"recordings":[],"clips":[{"recordingId":"r","durationMs":1}]}`))
		assert.Error(t, err)
	})

	t.Run("malformed JSON", func(t *testing.T) {
		t.Parallel()
		_, err := Parse([]byte(`{not json`))
		assert.Error(t, err)
	})
}

func TestLoadRoundTrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "project.json")
	doc, err := Parse([]byte(sampleProject))
	require.NoError(t, err)
	require.NoError(t, Save(doc, path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, doc.Output, loaded.Output)
	assert.Equal(t, doc.ZoomBlocks[0].ID, loaded.ZoomBlocks[0].ID)
}

func TestResolveDefaults(t *testing.T) {
	t.Parallel()

	defaults := StandardDefaults()

	t.Run("absent optionals take defaults", func(t *testing.T) {
		t.Parallel()
		b := ZoomBlockDoc{ID: "b", ClipID: "c", StartTimeMs: 0, EndTimeMs: 1000, Scale: 2}
		got := b.Resolve(defaults)
		assert.Equal(t, defaults.IntroMs, got.IntroMs)
		assert.Equal(t, defaults.OutroMs, got.OutroMs)
		assert.Equal(t, defaults.Smoothing, got.Smoothing)
		assert.Equal(t, defaults.MouseIdlePx, got.MouseIdlePx)
		assert.Equal(t, timeline.FollowMouse, got.Follow)
		assert.True(t, got.Enabled)
	})

	t.Run("present optionals win", func(t *testing.T) {
		t.Parallel()
		intro, smoothing, enabled := 120.0, 80.0, false
		tx := 0.3
		b := ZoomBlockDoc{
			ID: "b", ClipID: "c", StartTimeMs: 0, EndTimeMs: 1000, Scale: 2,
			IntroMs: &intro, Smoothing: &smoothing, Enabled: &enabled,
			TargetX: &tx, Follow: "fixed",
		}
		got := b.Resolve(defaults)
		assert.Equal(t, 120.0, got.IntroMs)
		assert.Equal(t, 80.0, got.Smoothing)
		assert.Equal(t, 0.3, got.TargetX)
		assert.Equal(t, timeline.FollowFixed, got.Follow)
		assert.False(t, got.Enabled)
	})

	t.Run("autoScale without a scale gets the default", func(t *testing.T) {
		t.Parallel()
		b := ZoomBlockDoc{ID: "b", ClipID: "c", StartTimeMs: 0, EndTimeMs: 1000, AutoScale: true}
		got := b.Resolve(defaults)
		assert.Equal(t, defaults.Scale, got.Scale)
	})
}

func TestDocumentLayout(t *testing.T) {
	t.Parallel()

	doc, err := Parse([]byte(sampleProject))
	require.NoError(t, err)

	l := doc.Layout(StandardDefaults())
	assert.Equal(t, 300, l.TotalFrames())
	assert.True(t, l.HasCameraWork())

	fc := l.Resolve(60) // 2s, inside the zoom block
	require.NotNil(t, fc)
	require.Len(t, fc.Effects, 1)
	assert.Equal(t, 2.5, fc.Effects[0].Scale)
}

func TestStore(t *testing.T) {
	t.Parallel()

	doc, err := Parse([]byte(sampleProject))
	require.NoError(t, err)
	s := NewStore(doc)

	t.Run("telemetry is normalized on the way in", func(t *testing.T) {
		t.Parallel()
		rec := s.Recording("rec-1")
		require.NotNil(t, rec)
		require.Len(t, rec.Cursor, 2)
		assert.Equal(t, 0.0, rec.Cursor[0].TimestampMs, "sorted by timestamp")
	})

	t.Run("unknown recording is nil", func(t *testing.T) {
		t.Parallel()
		assert.Nil(t, s.Recording("nope"))
	})

	t.Run("replace bumps the revision", func(t *testing.T) {
		t.Parallel()
		doc2, err := Parse([]byte(sampleProject))
		require.NoError(t, err)
		s2 := NewStore(doc2)
		was := s2.Recording("rec-1").Revision
		s2.Replace("rec-1", 2560, 1440, nil, nil)
		assert.Greater(t, s2.Recording("rec-1").Revision, was)
	})
}
