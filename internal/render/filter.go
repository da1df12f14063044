package render

import (
	"fmt"
	"strings"
)

// ZoomPanFilter renders keyframes as an FFmpeg zoompan filter with piecewise
// linear expressions over the output frame counter `on`. The crop origin is
// derived from the normalized center, so the same expression works for any
// input resolution.
func ZoomPanFilter(kfs []Keyframe, fps, width, height int) string {
	if len(kfs) == 0 {
		return ""
	}

	zoomExpr := piecewise(kfs, func(k Keyframe) float64 { return k.Zoom })
	cxExpr := piecewise(kfs, func(k Keyframe) float64 { return k.CX })
	cyExpr := piecewise(kfs, func(k Keyframe) float64 { return k.CY })

	// zoompan's x/y is the crop's top-left corner in input pixels.
	xExpr := fmt.Sprintf("(%s)*iw-(iw/zoom)/2", cxExpr)
	yExpr := fmt.Sprintf("(%s)*ih-(ih/zoom)/2", cyExpr)

	return fmt.Sprintf("zoompan=z='%s':x='%s':y='%s':d=1:s=%dx%d:fps=%d",
		zoomExpr, xExpr, yExpr, width, height, fps)
}

// piecewise builds a nested if(lte(on,frame),...) chain interpolating the
// value linearly between consecutive keyframes.
func piecewise(kfs []Keyframe, value func(Keyframe) float64) string {
	if len(kfs) == 1 {
		return fmt.Sprintf("%.6f", value(kfs[0]))
	}

	var b strings.Builder
	for i := 0; i < len(kfs)-1; i++ {
		startFrame, endFrame := kfs[i].Frame, kfs[i+1].Frame
		start, end := value(kfs[i]), value(kfs[i+1])

		if endFrame <= startFrame {
			// Coincident keyframes at a block edge: step to the later value.
			fmt.Fprintf(&b, "if(lte(on,%d),%.6f,", startFrame, start)
			continue
		}
		fmt.Fprintf(&b, "if(lte(on,%d),%.6f+(on-%d)/%d*(%.6f-%.6f),",
			endFrame, start, startFrame, endFrame-startFrame, end, start)
	}

	fmt.Fprintf(&b, "%.6f", value(kfs[len(kfs)-1]))
	b.WriteString(strings.Repeat(")", len(kfs)-1))
	return b.String()
}
