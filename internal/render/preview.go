package render

import (
	"image"
	"image/color"
	"image/png"
	"os"

	"golang.org/x/image/draw"

	"github.com/ivlev/followcam/internal/follow"
	"github.com/ivlev/followcam/internal/system"
)

// Preview renders the camera path as a still image: the source frame (or a
// dark field when none is given) with the camera window outlined at every
// keyframe, older windows fading out so the trail reads front to back.
// The returned image comes from the shared buffer pool; callers done with it
// may hand it back via system.PutImage.
func Preview(src image.Image, kfs []Keyframe, width, height int) *image.NRGBA {
	img := system.GetImage(image.Rect(0, 0, width, height))

	if src != nil {
		draw.ApproxBiLinear.Scale(img, img.Bounds(), src, src.Bounds(), draw.Src, nil)
	} else {
		draw.Draw(img, img.Bounds(), image.NewUniform(color.NRGBA{R: 24, G: 24, B: 28, A: 255}), image.Point{}, draw.Src)
	}

	srcW, srcH := float64(width), float64(height)
	if src != nil {
		b := src.Bounds()
		srcW, srcH = float64(b.Dx()), float64(b.Dy())
	}

	for i, kf := range kfs {
		halfX, halfY := follow.HalfWindows(kf.Zoom, srcW, srcH, float64(width), float64(height))

		x0 := int((kf.CX - halfX) * float64(width))
		x1 := int((kf.CX + halfX) * float64(width))
		y0 := int((kf.CY - halfY) * float64(height))
		y1 := int((kf.CY + halfY) * float64(height))

		// Newest window is brightest.
		alpha := uint8(64 + 191*(i+1)/len(kfs))
		outlineRect(img, x0, y0, x1, y1, color.NRGBA{R: 255, G: 200, B: 40, A: alpha})
	}

	return img
}

// WritePNG writes a preview image to a PNG file.
func WritePNG(img image.Image, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return png.Encode(f, img)
}

func outlineRect(img *image.NRGBA, x0, y0, x1, y1 int, c color.NRGBA) {
	b := img.Bounds()
	for x := x0; x <= x1; x++ {
		setIn(img, b, x, y0, c)
		setIn(img, b, x, y1, c)
	}
	for y := y0; y <= y1; y++ {
		setIn(img, b, x0, y, c)
		setIn(img, b, x1, y, c)
	}
}

func setIn(img *image.NRGBA, b image.Rectangle, x, y int, c color.NRGBA) {
	if x >= b.Min.X && x < b.Max.X && y >= b.Min.Y && y < b.Max.Y {
		img.SetNRGBA(x, y, c)
	}
}
