package telemetry

import (
	"sort"

	"github.com/ivlev/followcam/internal/geom"
)

// CursorSample is one recorded cursor position. Coordinates are normalized
// to [0, 1] relative to the recording's own pixel size.
type CursorSample struct {
	X           float64 `json:"x"`
	Y           float64 `json:"y"`
	TimestampMs float64 `json:"timestampMs"`
}

// ClickSample is one recorded mouse click, same coordinate space as
// CursorSample.
type ClickSample struct {
	X           float64 `json:"x"`
	Y           float64 `json:"y"`
	TimestampMs float64 `json:"timestampMs"`
}

// Recording bundles one screen capture's metadata with its telemetry.
// Cursor and click arrays are kept time-sorted; Revision changes whenever
// the telemetry is replaced, so downstream caches can key on it.
type Recording struct {
	ID       string
	Width    int
	Height   int
	Cursor   []CursorSample
	Clicks   []ClickSample
	Revision uint64
}

// Normalize returns a new, time-sorted copy of samples with coordinates
// clamped to [0, 1]. Consumers downstream assume sorted input and never
// re-sort, so every sample array entering the engine goes through here.
func Normalize(samples []CursorSample) []CursorSample {
	out := make([]CursorSample, len(samples))
	copy(out, samples)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].TimestampMs < out[j].TimestampMs
	})
	for i := range out {
		out[i].X = geom.Clamp01(out[i].X)
		out[i].Y = geom.Clamp01(out[i].Y)
	}
	return out
}

// NormalizeClicks is Normalize for click telemetry.
func NormalizeClicks(samples []ClickSample) []ClickSample {
	out := make([]ClickSample, len(samples))
	copy(out, samples)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].TimestampMs < out[j].TimestampMs
	})
	for i := range out {
		out[i].X = geom.Clamp01(out[i].X)
		out[i].Y = geom.Clamp01(out[i].Y)
	}
	return out
}

// PositionAt interpolates the cursor position at tMs across time-sorted
// samples. Between two samples the position is linear; at or past the last
// sample it holds the final position. Before the first sample there is no
// data to speak of, so ok is false.
func PositionAt(samples []CursorSample, tMs float64) (geom.Point, bool) {
	if len(samples) == 0 {
		return geom.Point{}, false
	}
	idx := geom.SearchLE(len(samples), func(i int) float64 { return samples[i].TimestampMs }, tMs)
	if idx < 0 {
		return geom.Point{}, false
	}
	if idx == len(samples)-1 {
		last := samples[idx]
		return geom.Point{X: last.X, Y: last.Y}, true
	}
	a, b := samples[idx], samples[idx+1]
	span := b.TimestampMs - a.TimestampMs
	if span <= 0 {
		return geom.Point{X: a.X, Y: a.Y}, true
	}
	t := (tMs - a.TimestampMs) / span
	return geom.Point{
		X: geom.Lerp(a.X, b.X, t),
		Y: geom.Lerp(a.Y, b.Y, t),
	}, true
}
