// Package trajectory supplies the animation paths the CLI's animate
// command drives the core resampler with: a pure-function mapping from
// normalized time to the source rectangle to read from, deliberately
// kept outside internal/resample so the resampler itself never knows
// about multi-frame sequencing.
package trajectory

import (
	"math"

	"github.com/AnyUserName/zoomres/internal/resample"
)

// Animation maps a normalized time t in [0,1] to the source rectangle
// the resampler should read from at that point in the sequence.
type Animation func(t float64) resample.FloatRect

// LinearPan slides at constant velocity from start to end with no
// easing — the simplest trajectory, useful as a baseline and for tests
// that need predictable, easily-checked midpoint values.
func LinearPan(start, end resample.FloatRect) Animation {
	return func(t float64) resample.FloatRect {
		t = clamp01(t)
		return lerpRect(start, end, t)
	}
}

// EaseInOutZoom holds start and end steady and eases the transition
// between them with a cubic smoothstep, so the rectangle accelerates
// into motion and decelerates into rest instead of moving uniformly.
func EaseInOutZoom(start, end resample.FloatRect) Animation {
	return func(t float64) resample.FloatRect {
		t = clamp01(t)
		eased := t * t * (3 - 2*t)
		return lerpRect(start, end, eased)
	}
}

// KenBurns is the classic slideshow pan-and-zoom: the source rectangle
// both translates and scales from start to end under the same cubic
// ease as EaseInOutZoom. It is EaseInOutZoom under a different name
// because that is exactly what the "Ken Burns effect" is — a start/end
// rect cross-fade driven by an eased parameter — kept as its own
// exported name since callers reach for it by that name, not by
// reimplementing the math.
func KenBurns(start, end resample.FloatRect) Animation {
	return EaseInOutZoom(start, end)
}

func lerpRect(a, b resample.FloatRect, t float64) resample.FloatRect {
	return resample.FloatRect{
		Left:   lerp(a.Left, b.Left, t),
		Top:    lerp(a.Top, b.Top, t),
		Right:  lerp(a.Right, b.Right, t),
		Bottom: lerp(a.Bottom, b.Bottom, t),
	}
}

func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

func clamp01(t float64) float64 {
	return math.Max(0, math.Min(1, t))
}

// Sample generates n evenly-spaced frames (t = 0, 1/(n-1), ..., 1) from
// an Animation. n must be >= 1; n == 1 samples t=0 only.
func Sample(anim Animation, n int) []resample.FloatRect {
	if n <= 0 {
		return nil
	}
	rects := make([]resample.FloatRect, n)
	if n == 1 {
		rects[0] = anim(0)
		return rects
	}
	for i := 0; i < n; i++ {
		t := float64(i) / float64(n-1)
		rects[i] = anim(t)
	}
	return rects
}
