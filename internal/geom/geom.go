package geom

// Point is a position in normalized frame coordinates (0..1 on both axes).
type Point struct {
	X float64
	Y float64
}

// Rect is an axis-aligned rectangle in pixels.
type Rect struct {
	X float64
	Y float64
	W float64
	H float64
}

// Center returns the middle point of the rectangle.
func (r Rect) Center() Point {
	return Point{X: r.X + r.W/2, Y: r.Y + r.H/2}
}

// Lerp performs linear interpolation between a and b.
func Lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

// Clamp limits v to the range [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Clamp01 limits v to the range [0, 1].
func Clamp01(v float64) float64 {
	return Clamp(v, 0, 1)
}

// SmoothStep applies cubic Hermite easing to t, clamped to [0, 1].
func SmoothStep(t float64) float64 {
	t = Clamp01(t)
	return t * t * (3 - 2*t)
}

// SmootherStep applies quintic easing to t, clamped to [0, 1]. Flat to the
// second derivative at both ends.
func SmootherStep(t float64) float64 {
	t = Clamp01(t)
	return t * t * t * (t*(t*6-15) + 10)
}

// EaseInOutCubic applies smooth cubic easing to t, clamped to [0, 1].
func EaseInOutCubic(t float64) float64 {
	t = Clamp01(t)
	if t < 0.5 {
		return 4 * t * t * t
	}
	return 1 - pow(-2*t+2, 3)/2
}

// pow calculates x^n for small integer n.
func pow(x float64, n int) float64 {
	result := 1.0
	for i := 0; i < n; i++ {
		result *= x
	}
	return result
}

// SearchLE returns the index of the last of n ascending values for which
// value(i) <= target, or -1 when target precedes all of them.
func SearchLE(n int, value func(int) float64, target float64) int {
	lo, hi := 0, n-1
	best := -1
	for lo <= hi {
		mid := lo + (hi-lo)/2
		if value(mid) <= target {
			best = mid
			lo = mid + 1
		} else {
			hi = mid - 1
		}
	}
	return best
}
