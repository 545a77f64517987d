// Package resample implements a separable, filtered 2D resampler for
// 32-bit BGRA images: it maps a floating-point sub-rectangle of a
// source buffer onto a fixed-size target buffer using one of six
// reconstruction kernels, three alpha-channel policies, and an
// optional persistent worker pool for tiled parallel execution.
//
// The package is a pure function from (source buffer, source
// rectangle, filter, alpha mode) to (target buffer); it has no
// dependency on any particular image container, encoder, or UI.
package resample

import (
	"errors"
	"fmt"
)

// ErrInvalidArgument is returned for malformed dimensions or an empty
// or fully out-of-bounds source rectangle.
var ErrInvalidArgument = errors.New("resample: invalid argument")

// ErrPoolUninitialized is returned when a caller-supplied Pool has no
// workers.
var ErrPoolUninitialized = errors.New("resample: pool not initialized")

// Resample remaps the full source image onto a newW x newH target,
// using either the serial or the default parallel pool path.
func Resample(newW, newH int, src *Image, dst *Image, filter Filter, radius float32, parallel bool, alpha AlphaMode) error {
	rect := FullRect(src.Width, src.Height)
	if parallel {
		return ZoomResampleParallel(newW, newH, src, dst, rect, filter, float64(radius), alpha, nil)
	}
	return ZoomResample(newW, newH, src, dst, rect, filter, float64(radius), alpha)
}

// ZoomResample remaps srcRect of src onto a newW x newH target,
// serially on the calling goroutine.
func ZoomResample(newW, newH int, src, dst *Image, srcRect FloatRect, filter Filter, radius float64, alpha AlphaMode) error {
	colsX, rowsY, err := prepare(newW, newH, src, dst, srcRect, filter, radius, alpha)
	if err != nil {
		return err
	}

	xMinSrc := int(colsX[0].Min)
	xMaxSrc := int(colsX[newW-1].Min + colsX[newW-1].High)

	rp := newRowProcessor(alpha, src, dst, colsX, rowsY, xMinSrc, xMaxSrc)
	for y := 0; y < newH; y++ {
		rp.ProcessRow(y, 0, newW-1)
	}
	return nil
}

// ZoomResampleParallel is ZoomResample's tiled-parallel counterpart. A
// nil pool uses the lazily-initialized process-global default pool; a
// non-nil pool must already be initialized via PoolInit.
func ZoomResampleParallel(newW, newH int, src, dst *Image, srcRect FloatRect, filter Filter, radius float64, alpha AlphaMode, pool *Pool) error {
	colsX, rowsY, err := prepare(newW, newH, src, dst, srcRect, filter, radius, alpha)
	if err != nil {
		return err
	}

	if pool == nil {
		pool = globalPool()
	}
	if pool.Size() == 0 {
		return fmt.Errorf("%w: pool has no workers", ErrPoolUninitialized)
	}

	bands := partition(newW, newH, pool.Size(), colsX)

	jobs := make([]func(), len(bands))
	for i, b := range bands {
		b := b
		jobs[i] = func() {
			rp := newRowProcessor(alpha, src, dst, colsX, rowsY, b.xMinSource, b.xMaxSource)
			for y := b.yMin; y <= b.yMax; y++ {
				rp.ProcessRow(y, b.xMin, b.xMax)
			}
		}
	}
	pool.Run(jobs)
	return nil
}

// prepare validates arguments, resizes dst to (newW, newH), and builds
// the horizontal/vertical contributor tables shared by every worker.
func prepare(newW, newH int, src, dst *Image, srcRect FloatRect, filter Filter, radius float64, alpha AlphaMode) (colsX, rowsY ContributorTable, err error) {
	if newW <= 0 || newH <= 0 {
		return nil, nil, fmt.Errorf("%w: target size %dx%d", ErrInvalidArgument, newW, newH)
	}
	if src == nil || src.Width <= 0 || src.Height <= 0 {
		return nil, nil, fmt.Errorf("%w: empty source image", ErrInvalidArgument)
	}
	if srcRect.Empty() {
		return nil, nil, fmt.Errorf("%w: empty source rectangle %+v", ErrInvalidArgument, srcRect)
	}
	if srcRect.Right <= 0 || srcRect.Bottom <= 0 ||
		srcRect.Left >= float64(src.Width) || srcRect.Top >= float64(src.Height) {
		return nil, nil, fmt.Errorf("%w: source rectangle %+v outside source bounds", ErrInvalidArgument, srcRect)
	}

	resizeImage(dst, newW, newH)

	precision := policyFor(alpha).Precision()

	colsX = BuildContributors(filter, radius, src.Width, newW, srcRect.Left, srcRect.Width(), precision)
	rowsY = BuildContributors(filter, radius, src.Height, newH, srcRect.Top, srcRect.Height(), precision)
	return colsX, rowsY, nil
}

// resizeImage reallocates dst in place to (w, h) if its current
// dimensions differ.
func resizeImage(dst *Image, w, h int) {
	if dst.Width == w && dst.Height == h && len(dst.Pix) == w*h*4 {
		return
	}
	dst.Width = w
	dst.Height = h
	dst.Stride = w * 4
	dst.Pix = make([]byte, dst.Stride*h)
}
