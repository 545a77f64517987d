package encoder

import (
	"image"
)

// Encoder writes a rendered frame out in one on-disk image format.
// loader.SaveReference picks one of these by file extension whenever a
// pipeline run is configured to save its frames, not just checksum them.
type Encoder interface {
	// Format returns the output format name (e.g. "jpeg", "webp", "avif", "png").
	Format() string

	// Encode converts the image to bytes at the given quality (1-100).
	Encode(img image.Image, quality int) ([]byte, error)

	// Available returns true if the encoder is ready to use.
	// External encoders (cwebp, avifenc) may not be installed.
	Available() bool

	// Extension returns the file extension without dot.
	Extension() string
}
