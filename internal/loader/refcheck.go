package loader

import (
	"image"
	"image/draw"

	xdraw "golang.org/x/image/draw"

	"github.com/AnyUserName/zoomres/internal/resample"
)

// ReferenceScaler names one of x/image/draw's built-in interpolators,
// used only as an independent cross-check against this module's own
// resample package — never on the hot path.
type ReferenceScaler int

const (
	ReferenceNearestNeighbor ReferenceScaler = iota
	ReferenceApproxBiLinear
	ReferenceBiLinear
	ReferenceCatmullRom
)

func (r ReferenceScaler) interpolator() xdraw.Interpolator {
	switch r {
	case ReferenceNearestNeighbor:
		return xdraw.NearestNeighbor
	case ReferenceApproxBiLinear:
		return xdraw.ApproxBiLinear
	case ReferenceCatmullRom:
		return xdraw.CatmullRom
	default:
		return xdraw.BiLinear
	}
}

// ReferenceResize scales src to newW x newH using x/image/draw instead
// of this module's resample package. The zoom command's
// --reference-check option uses it to sanity-check that resample's
// output is in the right ballpark: it is
// not expected to match bit-for-bit (the kernels differ), only to
// confirm gross resampling behavior (no garbled rows, right dimensions,
// plausible average color).
func ReferenceResize(src *resample.Image, newW, newH int, scaler ReferenceScaler) *resample.Image {
	srcImg := ToNRGBA(src)
	dstImg := image.NewRGBA(image.Rect(0, 0, newW, newH))

	scaler.interpolator().Scale(dstImg, dstImg.Bounds(), srcImg, srcImg.Bounds(), draw.Src, nil)

	out := resample.NewImage(newW, newH)
	for y := 0; y < newH; y++ {
		srcRow := dstImg.Pix[y*dstImg.Stride : y*dstImg.Stride+newW*4]
		dstRow := out.Pix[y*out.Stride : y*out.Stride+newW*4]
		for x := 0; x < newW; x++ {
			r := srcRow[x*4+0]
			g := srcRow[x*4+1]
			b := srcRow[x*4+2]
			a := srcRow[x*4+3]
			dstRow[x*4+0] = b
			dstRow[x*4+1] = g
			dstRow[x*4+2] = r
			dstRow[x*4+3] = a
		}
	}
	return out
}

// MeanAbsDiff reports the mean per-channel absolute difference between
// two equally-sized BGRA images, used by the zoom command's
// --reference-check option to report how far resample's output drifts
// from the x/image/draw reference. It returns -1 when the sizes differ.
func MeanAbsDiff(a, b *resample.Image) float64 {
	if a.Width != b.Width || a.Height != b.Height {
		return -1
	}
	var sum, n float64
	for y := 0; y < a.Height; y++ {
		for x := 0; x < a.Width; x++ {
			pa := a.Pixel(x, y)
			pb := b.Pixel(x, y)
			for c := 0; c < 4; c++ {
				d := int(pa[c]) - int(pb[c])
				if d < 0 {
					d = -d
				}
				sum += float64(d)
				n++
			}
		}
	}
	if n == 0 {
		return 0
	}
	return sum / n
}
