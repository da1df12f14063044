// Package config loads the engine's tunables with layered sources:
// built-in defaults, then an optional YAML file, then environment variables
// prefixed FOLLOWCAM_. Everything downstream receives resolved values and
// never re-defaults.
package config

import (
	"fmt"
	"math"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// envPrefix is stripped from environment variables before mapping them onto
// config paths: FOLLOWCAM_CAMERA_SMOOTHNESS -> camera.smoothness.
const envPrefix = "FOLLOWCAM_"

// Config is the full application configuration.
type Config struct {
	Camera  CameraConfig  `koanf:"camera"`
	Cluster ClusterConfig `koanf:"cluster"`
	Blocks  BlocksConfig  `koanf:"blocks"`
	Planner PlannerConfig `koanf:"planner"`
	Logging LoggingConfig `koanf:"logging"`
}

// CameraConfig tunes the follow policy and spring dynamics.
type CameraConfig struct {
	// Smoothness (0-100) maps onto the spring's stiffness and damping.
	Smoothness float64 `koanf:"smoothness"`

	// CinematicSmoothing (0-100) sizes the idle averaging window. Kept as a
	// separate dial from Smoothness on purpose.
	CinematicSmoothing float64 `koanf:"cinematic_smoothing"`

	MaxDeadZoneRatio      float64 `koanf:"max_dead_zone_ratio"`
	SourceJumpThresholdMs float64 `koanf:"source_jump_threshold_ms"`
	DefaultZoomScale      float64 `koanf:"default_zoom_scale"`
}

// ClusterConfig tunes the motion cluster analyzer.
type ClusterConfig struct {
	RadiusRatio   float64 `koanf:"radius_ratio"`
	MinDurationMs float64 `koanf:"min_duration_ms"`
	HoldBufferMs  float64 `koanf:"hold_buffer_ms"`
}

// BlocksConfig supplies the defaults optional zoom-block fields resolve to
// at the project load boundary.
type BlocksConfig struct {
	IntroMs     float64 `koanf:"intro_ms"`
	OutroMs     float64 `koanf:"outro_ms"`
	Smoothing   float64 `koanf:"smoothing"`
	MouseIdlePx float64 `koanf:"mouse_idle_px"`
}

// PlannerConfig tunes the auto-zoom planner.
type PlannerConfig struct {
	MinBlockMs float64 `koanf:"min_block_ms"`
	MaxBlockMs float64 `koanf:"max_block_ms"`
	LeadInMs   float64 `koanf:"lead_in_ms"`
	MinGapMs   float64 `koanf:"min_gap_ms"`
	MinScale   float64 `koanf:"min_scale"`
	MaxScale   float64 `koanf:"max_scale"`
}

// LoggingConfig controls the CLI logger.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Camera: CameraConfig{
			Smoothness:            60,
			CinematicSmoothing:    50,
			MaxDeadZoneRatio:      0.32,
			SourceJumpThresholdMs: 1000,
			DefaultZoomScale:      2.0,
		},
		Cluster: ClusterConfig{
			RadiusRatio:   0.08,
			MinDurationMs: 400,
			HoldBufferMs:  300,
		},
		Blocks: BlocksConfig{
			IntroMs:     500,
			OutroMs:     500,
			Smoothing:   50,
			MouseIdlePx: 4,
		},
		Planner: PlannerConfig{
			MinBlockMs: 1200,
			MaxBlockMs: 8000,
			LeadInMs:   250,
			MinGapMs:   600,
			MinScale:   1.4,
			MaxScale:   3.0,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Load builds the configuration from defaults, an optional YAML file, and
// the environment. path may be empty.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(Default(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("config file: %w", err)
		}
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	envProvider := env.Provider(envPrefix, ".", func(s string) string {
		s = strings.TrimPrefix(s, envPrefix)
		s = strings.ToLower(s)
		// First segment is the section, the rest is the key:
		// CAMERA_MAX_DEAD_ZONE_RATIO -> camera.max_dead_zone_ratio.
		return strings.Replace(s, "_", ".", 1)
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.normalize()
	return cfg, nil
}

// normalize brings malformed values back into range rather than failing:
// misconfiguration should soften camera behavior, not abort a render.
func (c *Config) normalize() {
	def := Default()

	c.Camera.Smoothness = finiteInRange(c.Camera.Smoothness, 0, 100, 0)
	c.Camera.CinematicSmoothing = finiteInRange(c.Camera.CinematicSmoothing, 0, 100, 0)
	c.Camera.MaxDeadZoneRatio = finiteInRange(c.Camera.MaxDeadZoneRatio, 0.05, 0.5, def.Camera.MaxDeadZoneRatio)
	if c.Camera.SourceJumpThresholdMs <= 0 {
		c.Camera.SourceJumpThresholdMs = def.Camera.SourceJumpThresholdMs
	}
	if c.Camera.DefaultZoomScale < 1 {
		c.Camera.DefaultZoomScale = def.Camera.DefaultZoomScale
	}
	if c.Cluster.RadiusRatio <= 0 {
		c.Cluster.RadiusRatio = def.Cluster.RadiusRatio
	}
	if c.Cluster.MinDurationMs < 0 {
		c.Cluster.MinDurationMs = def.Cluster.MinDurationMs
	}
	if c.Cluster.HoldBufferMs < 0 {
		c.Cluster.HoldBufferMs = 0
	}
	if c.Planner.MaxBlockMs < c.Planner.MinBlockMs {
		c.Planner.MaxBlockMs = c.Planner.MinBlockMs
	}
	if c.Planner.MaxScale < c.Planner.MinScale {
		c.Planner.MaxScale = c.Planner.MinScale
	}
}

func finiteInRange(v, lo, hi, fallback float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fallback
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
