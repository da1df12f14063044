package viewport

import "github.com/ivlev/followcam/internal/geom"

// Overscan is the permitted camera travel past the nominal frame edge on each
// side, as a ratio of the drawn video's width (left/right) or height
// (top/bottom). Zero on a side means the camera must stop exactly at that
// frame edge.
type Overscan struct {
	Left   float64
	Right  float64
	Top    float64
	Bottom float64
}

// Mockup is the resolved placement of a device frame on the canvas: the frame
// chrome rectangle and the video rectangle drawn inside it, both in canvas
// pixels. Produced by the external mockup geometry calculator.
type Mockup struct {
	ScreenX      float64
	ScreenY      float64
	ScreenWidth  float64
	ScreenHeight float64
	VideoX       float64
	VideoY       float64
	VideoWidth   float64
	VideoHeight  float64

	// CameraTracking turns on mouse-follow even without an authored zoom
	// block; BaseZoom is the scale used in that mode.
	CameraTracking bool
	BaseZoom       float64
}

// Canvas is the output surface the composition is drawn onto.
type Canvas struct {
	Width   float64
	Height  float64
	Padding float64
}

// Geometry is the per-clip output of Map, consumed by the follow policy.
type Geometry struct {
	OutputWidth  float64
	OutputHeight float64
	Overscan     Overscan
}

// Map computes the output rectangle and per-side overscan for one clip. The
// output rectangle is the canvas inset by its padding. The drawn-video
// rectangle comes from the mockup when one is active, otherwise from fitting
// the source into the output rectangle with its aspect ratio preserved.
// Overscan on a side is how far the video extends past the output rectangle
// on that side, normalized by the drawn video's size.
func Map(canvas Canvas, sourceWidth, sourceHeight float64, mockup *Mockup) Geometry {
	out := geom.Rect{
		X: canvas.Padding,
		Y: canvas.Padding,
		W: canvas.Width - 2*canvas.Padding,
		H: canvas.Height - 2*canvas.Padding,
	}
	if out.W <= 0 || out.H <= 0 {
		out = geom.Rect{W: canvas.Width, H: canvas.Height}
	}

	var video geom.Rect
	if mockup != nil {
		video = geom.Rect{X: mockup.VideoX, Y: mockup.VideoY, W: mockup.VideoWidth, H: mockup.VideoHeight}
	} else {
		video = fitRect(sourceWidth, sourceHeight, out)
	}

	g := Geometry{OutputWidth: out.W, OutputHeight: out.H}
	if video.W <= 0 || video.H <= 0 {
		return g
	}

	g.Overscan = Overscan{
		Left:   max0((out.X - video.X) / video.W),
		Right:  max0((video.X + video.W - (out.X + out.W)) / video.W),
		Top:    max0((out.Y - video.Y) / video.H),
		Bottom: max0((video.Y + video.H - (out.Y + out.H)) / video.H),
	}
	return g
}

// fitRect scales a source of the given dimensions to fit inside bounds,
// preserving aspect ratio and centering (letterbox or pillarbox).
func fitRect(srcW, srcH float64, bounds geom.Rect) geom.Rect {
	if srcW <= 0 || srcH <= 0 {
		return bounds
	}
	scale := bounds.W / srcW
	if s := bounds.H / srcH; s < scale {
		scale = s
	}
	w := srcW * scale
	h := srcH * scale
	return geom.Rect{
		X: bounds.X + (bounds.W-w)/2,
		Y: bounds.Y + (bounds.H-h)/2,
		W: w,
		H: h,
	}
}

func max0(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}
