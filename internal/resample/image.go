package resample

import "fmt"

// Image is a row-stride-addressed 32-bit BGRA pixel buffer descriptor.
// It is the only representation the core ever consumes: callers are
// responsible for decoding into (and encoding out of) this shape.
//
// Orientation is always top-down: row y's pixels start at
// Pix[y*Stride : y*Stride+4*Width]. Stride is always positive; there is
// no bottom-up / negative-stride variant.
type Image struct {
	Width  int
	Height int
	Stride int // bytes per row, always >= 4*Width
	Pix    []byte
}

// NewImage allocates a zeroed BGRA image with 4-byte-aligned stride.
func NewImage(width, height int) *Image {
	stride := width * 4
	return &Image{
		Width:  width,
		Height: height,
		Stride: stride,
		Pix:    make([]byte, stride*height),
	}
}

// RowOffset returns the byte offset of row y's first pixel.
func (img *Image) RowOffset(y int) int {
	return y * img.Stride
}

// PixelOffset returns the byte offset of pixel (x, y).
func (img *Image) PixelOffset(x, y int) int {
	return y*img.Stride + x*4
}

// Pixel returns the 4-byte BGRA slice for (x, y). The slice aliases the
// image's backing array; callers must not retain it past a subsequent
// mutation of Pix.
func (img *Image) Pixel(x, y int) []byte {
	o := img.PixelOffset(x, y)
	return img.Pix[o : o+4 : o+4]
}

func (img *Image) String() string {
	return fmt.Sprintf("Image(%dx%d, stride=%d)", img.Width, img.Height, img.Stride)
}

// FloatRect is a sub-region of the source image in continuous pixel
// coordinates, (left, top) inclusive and (right, bottom) exclusive.
type FloatRect struct {
	Left, Top, Right, Bottom float64
}

// Width returns Right - Left.
func (r FloatRect) Width() float64 { return r.Right - r.Left }

// Height returns Bottom - Top.
func (r FloatRect) Height() float64 { return r.Bottom - r.Top }

// Empty reports whether the rectangle has non-positive width or height.
func (r FloatRect) Empty() bool {
	return r.Width() <= 0 || r.Height() <= 0
}

// FullRect returns the FloatRect covering the entire image.
func FullRect(width, height int) FloatRect {
	return FloatRect{Left: 0, Top: 0, Right: float64(width), Bottom: float64(height)}
}
