// Package project loads editor project documents and exposes their
// recordings to the engine. The load boundary is where authored input gets
// validated and optional fields resolve to concrete defaults; past it, the
// engine never sees a malformed block or an unsorted sample array.
package project

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/ivlev/followcam/internal/telemetry"
	"github.com/ivlev/followcam/internal/timeline"
	"github.com/ivlev/followcam/internal/viewport"
)

// Document is the persisted project file.
type Document struct {
	Version    string         `json:"version"`
	Output     OutputSettings `json:"output" validate:"required"`
	Recordings []RecordingDoc `json:"recordings" validate:"required,min=1,dive"`
	Clips      []ClipDoc      `json:"clips" validate:"required,min=1,dive"`
	ZoomBlocks []ZoomBlockDoc `json:"zoomBlocks" validate:"dive"`
}

// OutputSettings describes the output canvas and frame rate.
type OutputSettings struct {
	Width   int     `json:"width" validate:"required,gt=0"`
	Height  int     `json:"height" validate:"required,gt=0"`
	FPS     int     `json:"fps" validate:"required,gt=0,lte=240"`
	Padding float64 `json:"padding" validate:"gte=0"`
}

// RecordingDoc is one captured screen recording with its telemetry.
type RecordingDoc struct {
	ID     string                   `json:"id"`
	Width  int                      `json:"width" validate:"required,gt=0"`
	Height int                      `json:"height" validate:"required,gt=0"`
	Cursor []telemetry.CursorSample `json:"cursor"`
	Clicks []telemetry.ClickSample  `json:"clicks"`
}

// ClipDoc places a recording span on the output timeline.
type ClipDoc struct {
	ID             string     `json:"id"`
	RecordingID    string     `json:"recordingId" validate:"required"`
	StartMs        float64    `json:"startMs" validate:"gte=0"`
	DurationMs     float64    `json:"durationMs" validate:"required,gt=0"`
	SourceOffsetMs float64    `json:"sourceOffsetMs" validate:"gte=0"`
	Mockup         *MockupDoc `json:"mockup,omitempty"`
}

// MockupDoc is a device-frame inset, already resolved to canvas pixels by
// the editor's mockup geometry calculator.
type MockupDoc struct {
	ScreenX        float64 `json:"screenX"`
	ScreenY        float64 `json:"screenY"`
	ScreenWidth    float64 `json:"screenWidth" validate:"gte=0"`
	ScreenHeight   float64 `json:"screenHeight" validate:"gte=0"`
	VideoX         float64 `json:"videoX"`
	VideoY         float64 `json:"videoY"`
	VideoWidth     float64 `json:"videoWidth" validate:"gte=0"`
	VideoHeight    float64 `json:"videoHeight" validate:"gte=0"`
	CameraTracking bool    `json:"cameraTracking"`
	BaseZoom       float64 `json:"baseZoom" validate:"gte=0"`
}

// ZoomBlockDoc is an authored zoom block as persisted. Optional fields are
// pointers so absence is distinguishable from zero; Resolve turns them into
// the engine's concrete representation.
type ZoomBlockDoc struct {
	ID          string   `json:"id"`
	ClipID      string   `json:"clipId" validate:"required"`
	StartTimeMs float64  `json:"startTime" validate:"gte=0"`
	EndTimeMs   float64  `json:"endTime" validate:"required,gtfield=StartTimeMs"`
	Scale       float64  `json:"scale" validate:"omitempty,gte=1,lte=10"`
	TargetX     *float64 `json:"targetX,omitempty" validate:"omitempty,gte=0,lte=1"`
	TargetY     *float64 `json:"targetY,omitempty" validate:"omitempty,gte=0,lte=1"`
	IntroMs     *float64 `json:"introMs,omitempty" validate:"omitempty,gte=0"`
	OutroMs     *float64 `json:"outroMs,omitempty" validate:"omitempty,gte=0"`
	Smoothing   *float64 `json:"smoothing,omitempty" validate:"omitempty,gte=0,lte=100"`
	Follow      string   `json:"followStrategy" validate:"omitempty,oneof=mouse fixed"`
	AutoScale   bool     `json:"autoScale"`
	MouseIdlePx float64  `json:"mouseIdlePx" validate:"gte=0"`
	Enabled     *bool    `json:"enabled,omitempty"`
}

// Defaults supply the concrete values optional document fields resolve to.
type Defaults struct {
	IntroMs     float64
	OutroMs     float64
	Smoothing   float64
	Scale       float64
	MouseIdlePx float64
}

// StandardDefaults returns the resolution defaults used when the config
// layer does not override them.
func StandardDefaults() Defaults {
	return Defaults{
		IntroMs:     500,
		OutroMs:     500,
		Smoothing:   50,
		Scale:       2,
		MouseIdlePx: 4,
	}
}

var validate = validator.New()

// Load reads, decodes, and validates a project document. Missing IDs are
// assigned; zero-duration clips and inverted zoom blocks are rejected here
// so they can never destabilize the physics downstream.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read project: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a project document from raw JSON.
func Parse(data []byte) (*Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode project: %w", err)
	}
	if err := validate.Struct(&doc); err != nil {
		return nil, fmt.Errorf("validate project: %w", err)
	}

	for i := range doc.Recordings {
		if doc.Recordings[i].ID == "" {
			doc.Recordings[i].ID = uuid.NewString()
		}
	}
	for i := range doc.Clips {
		if doc.Clips[i].ID == "" {
			doc.Clips[i].ID = uuid.NewString()
		}
	}
	for i := range doc.ZoomBlocks {
		if doc.ZoomBlocks[i].ID == "" {
			doc.ZoomBlocks[i].ID = uuid.NewString()
		}
	}
	return &doc, nil
}

// Save writes the document back as indented JSON.
func Save(doc *Document, path string) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode project: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

// Canvas returns the output canvas described by the document.
func (d *Document) Canvas() viewport.Canvas {
	return viewport.Canvas{
		Width:   float64(d.Output.Width),
		Height:  float64(d.Output.Height),
		Padding: d.Output.Padding,
	}
}

// Layout builds the frame layout service from the document's clips, with
// each clip carrying its resolved zoom blocks.
func (d *Document) Layout(defaults Defaults) *timeline.Layout {
	byClip := make(map[string][]timeline.ZoomBlock)
	for i := range d.ZoomBlocks {
		b := d.ZoomBlocks[i].Resolve(defaults)
		byClip[d.ZoomBlocks[i].ClipID] = append(byClip[d.ZoomBlocks[i].ClipID], b)
	}

	clips := make([]timeline.Clip, 0, len(d.Clips))
	for _, c := range d.Clips {
		clip := timeline.Clip{
			ID:             c.ID,
			RecordingID:    c.RecordingID,
			StartMs:        c.StartMs,
			DurationMs:     c.DurationMs,
			SourceOffsetMs: c.SourceOffsetMs,
			Effects:        byClip[c.ID],
		}
		if c.Mockup != nil {
			clip.Mockup = &viewport.Mockup{
				ScreenX:        c.Mockup.ScreenX,
				ScreenY:        c.Mockup.ScreenY,
				ScreenWidth:    c.Mockup.ScreenWidth,
				ScreenHeight:   c.Mockup.ScreenHeight,
				VideoX:         c.Mockup.VideoX,
				VideoY:         c.Mockup.VideoY,
				VideoWidth:     c.Mockup.VideoWidth,
				VideoHeight:    c.Mockup.VideoHeight,
				CameraTracking: c.Mockup.CameraTracking,
				BaseZoom:       c.Mockup.BaseZoom,
			}
		}
		clips = append(clips, clip)
	}
	return timeline.NewLayout(clips, d.Output.FPS)
}

// Resolve turns a persisted zoom block into the engine's representation,
// filling every optional field with its documented default.
func (b *ZoomBlockDoc) Resolve(defaults Defaults) timeline.ZoomBlock {
	out := timeline.ZoomBlock{
		ID:          b.ID,
		StartTimeMs: b.StartTimeMs,
		EndTimeMs:   b.EndTimeMs,
		Scale:       b.Scale,
		TargetX:     0.5,
		TargetY:     0.5,
		IntroMs:     defaults.IntroMs,
		OutroMs:     defaults.OutroMs,
		Smoothing:   defaults.Smoothing,
		Follow:      timeline.FollowMouse,
		MouseIdlePx: b.MouseIdlePx,
		Enabled:     true,
	}
	if out.Scale < 1 {
		// AutoScale blocks persist without a scale until the planner
		// resolves one.
		out.Scale = defaults.Scale
	}
	if b.TargetX != nil {
		out.TargetX = *b.TargetX
	}
	if b.TargetY != nil {
		out.TargetY = *b.TargetY
	}
	if b.IntroMs != nil {
		out.IntroMs = *b.IntroMs
	}
	if b.OutroMs != nil {
		out.OutroMs = *b.OutroMs
	}
	if b.Smoothing != nil {
		out.Smoothing = *b.Smoothing
	}
	if b.Follow == string(timeline.FollowFixed) {
		out.Follow = timeline.FollowFixed
	}
	if b.MouseIdlePx <= 0 {
		out.MouseIdlePx = defaults.MouseIdlePx
	}
	if b.Enabled != nil {
		out.Enabled = *b.Enabled
	}
	return out
}
