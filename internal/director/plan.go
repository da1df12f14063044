package director

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ivlev/followcam/internal/timeline"
)

// Plan is a persisted set of proposed zoom blocks, one file per planning
// run, so a user can review and hand-tune before applying.
type Plan struct {
	Version string      `yaml:"version"`
	Blocks  []PlanBlock `yaml:"blocks"`
}

// PlanBlock is one zoom block in plan form.
type PlanBlock struct {
	ID          string  `yaml:"id"`
	ClipID      string  `yaml:"clip,omitempty"`
	StartTimeMs float64 `yaml:"start_ms"`
	EndTimeMs   float64 `yaml:"end_ms"`
	Scale       float64 `yaml:"scale"`
	TargetX     float64 `yaml:"target_x,omitempty"`
	TargetY     float64 `yaml:"target_y,omitempty"`
	IntroMs     float64 `yaml:"intro_ms"`
	OutroMs     float64 `yaml:"outro_ms"`
	Smoothing   float64 `yaml:"smoothing"`
	Follow      string  `yaml:"follow"`
	MouseIdlePx float64 `yaml:"mouse_idle_px,omitempty"`
	Enabled     bool    `yaml:"enabled"`
}

// NewPlan wraps planned blocks for persistence, tagged with the clip they
// belong to.
func NewPlan(clipID string, blocks []timeline.ZoomBlock) *Plan {
	p := &Plan{Version: "1.0"}
	for _, b := range blocks {
		p.Blocks = append(p.Blocks, PlanBlock{
			ID:          b.ID,
			ClipID:      clipID,
			StartTimeMs: b.StartTimeMs,
			EndTimeMs:   b.EndTimeMs,
			Scale:       b.Scale,
			TargetX:     b.TargetX,
			TargetY:     b.TargetY,
			IntroMs:     b.IntroMs,
			OutroMs:     b.OutroMs,
			Smoothing:   b.Smoothing,
			Follow:      string(b.Follow),
			MouseIdlePx: b.MouseIdlePx,
			Enabled:     b.Enabled,
		})
	}
	return p
}

// ZoomBlocks converts the plan back to the engine's representation.
func (p *Plan) ZoomBlocks() []timeline.ZoomBlock {
	out := make([]timeline.ZoomBlock, 0, len(p.Blocks))
	for _, b := range p.Blocks {
		follow := timeline.FollowMouse
		if b.Follow == string(timeline.FollowFixed) {
			follow = timeline.FollowFixed
		}
		out = append(out, timeline.ZoomBlock{
			ID:          b.ID,
			StartTimeMs: b.StartTimeMs,
			EndTimeMs:   b.EndTimeMs,
			Scale:       b.Scale,
			TargetX:     b.TargetX,
			TargetY:     b.TargetY,
			IntroMs:     b.IntroMs,
			OutroMs:     b.OutroMs,
			Smoothing:   b.Smoothing,
			Follow:      follow,
			MouseIdlePx: b.MouseIdlePx,
			Enabled:     b.Enabled,
		})
	}
	return out
}

// WritePlan writes a plan to a YAML file.
func WritePlan(plan *Plan, path string) error {
	data, err := yaml.Marshal(plan)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ReadPlan reads a plan from a YAML file.
func ReadPlan(path string) (*Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var plan Plan
	if err := yaml.Unmarshal(data, &plan); err != nil {
		return nil, err
	}
	return &plan, nil
}

// GeneratePlanPath creates a timestamped plan filename under dir.
func GeneratePlanPath(dir string) string {
	timestamp := time.Now().Format("2006-01-02_15-04-05")
	return filepath.Join(dir, fmt.Sprintf("plan_%s.yaml", timestamp))
}

// FindLatestPlan finds the most recent plan file in dir.
func FindLatestPlan(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("failed to read plans directory: %w", err)
	}

	var plans []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".yaml") {
			plans = append(plans, filepath.Join(dir, entry.Name()))
		}
	}
	if len(plans) == 0 {
		return "", fmt.Errorf("no plan files found in %s", dir)
	}

	// Sort by modification time (newest first)
	sort.Slice(plans, func(i, j int) bool {
		infoI, _ := os.Stat(plans[i])
		infoJ, _ := os.Stat(plans[j])
		return infoI.ModTime().After(infoJ.ModTime())
	})

	return plans[0], nil
}
