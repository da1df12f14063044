package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 60.0, cfg.Camera.Smoothness)
	assert.Equal(t, 0.32, cfg.Camera.MaxDeadZoneRatio)
	assert.Equal(t, 0.08, cfg.Cluster.RadiusRatio)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoadFileOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := []byte("camera:\n  smoothness: 25\ncluster:\n  hold_buffer_ms: 150\n")
	require.NoError(t, os.WriteFile(path, body, 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 25.0, cfg.Camera.Smoothness)
	assert.Equal(t, 150.0, cfg.Cluster.HoldBufferMs)
	// Untouched keys keep their defaults.
	assert.Equal(t, 50.0, cfg.Camera.CinematicSmoothing)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("FOLLOWCAM_CAMERA_SMOOTHNESS", "80")
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 80.0, cfg.Camera.Smoothness)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestNormalize(t *testing.T) {
	t.Parallel()

	t.Run("out-of-range smoothness clamps", func(t *testing.T) {
		t.Parallel()
		c := Default()
		c.Camera.Smoothness = 900
		c.normalize()
		assert.Equal(t, 100.0, c.Camera.Smoothness)
	})

	t.Run("negative dead zone ratio raises to the floor", func(t *testing.T) {
		t.Parallel()
		c := Default()
		c.Camera.MaxDeadZoneRatio = -3
		c.normalize()
		assert.Equal(t, 0.05, c.Camera.MaxDeadZoneRatio)
	})

	t.Run("inverted planner ranges collapse", func(t *testing.T) {
		t.Parallel()
		c := Default()
		c.Planner.MinBlockMs = 5000
		c.Planner.MaxBlockMs = 1000
		c.normalize()
		assert.Equal(t, 5000.0, c.Planner.MaxBlockMs)
	})

	t.Run("zero default zoom scale restores the default", func(t *testing.T) {
		t.Parallel()
		c := Default()
		c.Camera.DefaultZoomScale = 0
		c.normalize()
		assert.Equal(t, 2.0, c.Camera.DefaultZoomScale)
	})
}
