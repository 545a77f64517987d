package encoder

import (
	"bytes"
	"image"
	"image/png"
)

// PNGEncoder encodes rendered frames to PNG using Go's standard
// library. loader.SaveReference routes a frame here when its output
// path ends in .png, whatever alpha policy the frame was resampled
// under; the pipeline names every saved frame with a .png extension.
type PNGEncoder struct{}

func (e *PNGEncoder) Format() string    { return "png" }
func (e *PNGEncoder) Extension() string { return "png" }
func (e *PNGEncoder) Available() bool   { return true }

func (e *PNGEncoder) Encode(img image.Image, _ int) ([]byte, error) {
	var buf bytes.Buffer
	buf.Grow(512 * 1024) // pre-alloc 512KB

	enc := &png.Encoder{CompressionLevel: png.BestCompression}
	err := enc.Encode(&buf, img)
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
