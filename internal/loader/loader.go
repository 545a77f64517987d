// Package loader sits at the decode/encode boundary of the CLI: it is
// where the module registers its image decoders (encoding goes through
// internal/encoder and disintegration/imaging), and its job is to
// convert decoded images into resample.Image's flat BGRA
// buffer and back again. The core resample package never imports
// image.Image or any codec.
package loader

import (
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/AnyUserName/zoomres/internal/encoder"
	"github.com/AnyUserName/zoomres/internal/resample"
)

// ErrUnsupportedFormat is returned by SaveReference for an extension
// with no registered encoder.
var ErrUnsupportedFormat = errors.New("loader: unsupported output format")

// DefaultQuality is used by SaveReference for lossy formats (jpeg,
// webp, avif) when no explicit quality is requested.
const DefaultQuality = 90

var registry = encoder.NewRegistry()

// Load decodes the file at path and converts it to a BGRA resample.Image.
func Load(path string) (*resample.Image, string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, "", fmt.Errorf("loader: open %s: %w", path, err)
	}
	defer f.Close()

	img, format, err := image.Decode(f)
	if err != nil {
		return nil, "", fmt.Errorf("loader: decode %s: %w", path, err)
	}
	return FromImage(img), format, nil
}

// FromImage converts a decoded image.Image into a freshly allocated
// BGRA resample.Image, regardless of the source's native color model.
func FromImage(img image.Image) *resample.Image {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	dst := resample.NewImage(w, h)

	if nrgba, ok := img.(*image.NRGBA); ok && nrgba.Rect == bounds {
		for y := 0; y < h; y++ {
			srcRow := nrgba.Pix[(y)*nrgba.Stride : (y)*nrgba.Stride+w*4]
			dstRow := dst.Pix[y*dst.Stride : y*dst.Stride+w*4]
			for x := 0; x < w; x++ {
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
		return dst
	}

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r, g, b, a := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			px := dst.Pixel(x, y)
			px[0] = byte(b >> 8)
			px[1] = byte(g >> 8)
			px[2] = byte(r >> 8)
			px[3] = byte(a >> 8)
		}
	}
	return dst
}

// ToNRGBA converts a BGRA resample.Image into a stdlib *image.NRGBA,
// the common currency accepted by every encoder this package wires.
func ToNRGBA(src *resample.Image) *image.NRGBA {
	out := image.NewNRGBA(image.Rect(0, 0, src.Width, src.Height))
	for y := 0; y < src.Height; y++ {
		srcRow := src.Pix[y*src.Stride : y*src.Stride+src.Width*4]
		dstRow := out.Pix[y*out.Stride : y*out.Stride+src.Width*4]
		for x := 0; x < src.Width; x++ {
			b := srcRow[x*4+0]
			g := srcRow[x*4+1]
			r := srcRow[x*4+2]
			a := srcRow[x*4+3]
			dstRow[x*4+0] = r
			dstRow[x*4+1] = g
			dstRow[x*4+2] = b
			dstRow[x*4+3] = a
		}
	}
	return out
}

// registryFormat maps a lowercased file extension to the encoder
// package's format name.
var registryFormat = map[string]string{
	"png": "png", "jpg": "jpeg", "jpeg": "jpeg", "webp": "webp", "avif": "avif",
}

// imagingExt is the set of extensions with no entry in internal/encoder
// that disintegration/imaging can still encode directly — bmp and tiff
// are reference-check formats only, never emitted on the frame-render
// hot path.
var imagingExt = map[string]bool{"bmp": true, "tif": true, "tiff": true}

// SaveReference encodes img and writes it to path, choosing format by
// file extension. PNG/JPEG/WebP/AVIF route through internal/encoder
// (falling back to whatever that registry reports available — cwebp
// and avifenc shell-outs degrade to an error if not installed); BMP
// and TIFF route through disintegration/imaging, which internal/encoder
// doesn't implement. Either way, the pixels being encoded were already
// produced by this module's own resample package.
func SaveReference(path string, img *resample.Image) error {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("loader: create output dir: %w", err)
	}

	if format, ok := registryFormat[ext]; ok {
		enc := registry.Get(format)
		if enc == nil {
			return fmt.Errorf("%w: %q (no encoder available)", ErrUnsupportedFormat, ext)
		}
		data, err := enc.Encode(ToNRGBA(img), DefaultQuality)
		if err != nil {
			return fmt.Errorf("loader: encode %s: %w", format, err)
		}
		return os.WriteFile(path, data, 0o644)
	}

	if imagingExt[ext] {
		return imaging.Save(ToNRGBA(img), path)
	}

	return fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
}
