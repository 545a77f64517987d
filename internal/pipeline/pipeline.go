// Package pipeline drives a sequence of zoom requests against one
// source image through internal/resample, fanning frames out across a
// worker-limited pool of goroutines and collecting the results into a
// manifest.
package pipeline

import (
	"encoding/base64"
	"fmt"
	"os"
	"runtime"
	"sync"
	"time"

	"github.com/AnyUserName/zoomres/internal/hasher"
	"github.com/AnyUserName/zoomres/internal/loader"
	"github.com/AnyUserName/zoomres/internal/manifest"
	"github.com/AnyUserName/zoomres/internal/resample"
	"github.com/AnyUserName/zoomres/internal/thumbhash"
)

// PoolEntryKB is the approximate size of one thumbhash work buffer
// pooled per worker: rgba(160KB) + cos(6.4KB) + ac(0.5KB) ≈ 167 KB.
const PoolEntryKB = 167

// ZoomRequest is one frame to render: the source sub-rectangle, target
// size, reconstruction filter and radius, and alpha-channel policy.
type ZoomRequest struct {
	Rect   resample.FloatRect
	Width  int
	Height int
	Filter resample.Filter
	Radius float64
	Alpha  resample.AlphaMode
}

// Config holds all parameters for a pipeline run.
type Config struct {
	SourcePath string
	Source     *resample.Image
	Requests   []ZoomRequest

	OutputDir string // if non-empty, each frame is saved under this directory
	Workers   int    // outer frame-level fan-out; 0 selects runtime.NumCPU()
	Parallel  bool   // use resample's own tiled pool per frame instead of the serial path
	Verbose   bool
}

// Pipeline orchestrates rendering a sequence of zoom requests.
type Pipeline struct {
	cfg  Config
	pool *resample.Pool
}

// New creates a configured pipeline. When cfg.Parallel is set, it
// initializes one resample.Pool shared by every frame; frames
// themselves are still dispatched one at a time per goroutine in that
// case, since a Pool must never be reentered from within its own job —
// the outer Workers fan-out covers cross-frame parallelism, and each
// frame call uses ZoomResampleParallel against the shared pool.
func New(cfg Config) *Pipeline {
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.NumCPU()
	}
	p := &Pipeline{cfg: cfg}
	if cfg.Parallel {
		p.pool = resample.PoolInit(cfg.Workers)
	}
	return p
}

// Close releases any resample.Pool the pipeline initialized. Safe to
// call on a pipeline built without Parallel.
func (p *Pipeline) Close() {
	if p.pool != nil {
		resample.PoolFinalize(p.pool)
	}
}

// Run renders every request and returns the resulting manifest.
func (p *Pipeline) Run() (*manifest.Manifest, error) {
	if p.cfg.Source == nil {
		return nil, fmt.Errorf("pipeline: no source image")
	}
	if len(p.cfg.Requests) == 0 {
		return nil, fmt.Errorf("pipeline: no zoom requests")
	}

	if p.cfg.Verbose {
		fmt.Fprintf(os.Stderr, "[zoomres] rendering %d frame(s) from %s\n", len(p.cfg.Requests), p.cfg.SourcePath)
	}

	if p.cfg.OutputDir != "" {
		if err := os.MkdirAll(p.cfg.OutputDir, 0o755); err != nil {
			return nil, fmt.Errorf("pipeline: create output dir: %w", err)
		}
	}

	start := time.Now()

	frames := make([]manifest.Frame, len(p.cfg.Requests))
	var errs []error
	var errMu sync.Mutex

	var wg sync.WaitGroup
	sem := make(chan struct{}, p.cfg.Workers)

	for i, req := range p.cfg.Requests {
		wg.Add(1)
		go func(idx int, r ZoomRequest) {
			defer wg.Done()
			sem <- struct{}{} // acquire
			defer func() { <-sem }() // release

			frame, err := p.renderFrame(idx, r)
			if err != nil {
				errMu.Lock()
				errs = append(errs, fmt.Errorf("frame %d: %w", idx, err))
				errMu.Unlock()
				return
			}
			frames[idx] = frame

			if p.cfg.Verbose {
				fmt.Fprintf(os.Stderr, "[zoomres] frame %d: %dx%d checksum=%s (%.2fms)\n",
					idx, frame.Width, frame.Height, frame.Checksum, frame.EncodeMS)
			}
		}(i, req)
	}
	wg.Wait()

	if len(errs) > 0 {
		for _, e := range errs {
			fmt.Fprintf(os.Stderr, "[zoomres] error: %v\n", e)
		}
		if len(errs) == len(p.cfg.Requests) {
			return nil, fmt.Errorf("all %d frames failed to render", len(errs))
		}
		fmt.Fprintf(os.Stderr, "[zoomres] warning: %d of %d frames had errors\n", len(errs), len(p.cfg.Requests))
	}

	m := manifest.New(p.cfg.SourcePath)
	m.Frames = frames
	m.SourceThumb = base64.StdEncoding.EncodeToString(thumbhash.Encode(loader.ToNRGBA(p.cfg.Source)))
	m.BuildInfo = &manifest.BuildInfo{
		Workers:     p.cfg.Workers,
		Parallel:    p.cfg.Parallel,
		PoolEntryKB: PoolEntryKB,
	}
	m.ComputeStats()
	m.Stats.ElapsedMS = float64(time.Since(start).Microseconds()) / 1000.0
	return m, nil
}

// renderFrame runs one zoom request through resample and, if
// cfg.OutputDir is set, saves the result as a frame image.
func (p *Pipeline) renderFrame(idx int, r ZoomRequest) (manifest.Frame, error) {
	t0 := time.Now()

	dst := resample.NewImage(1, 1)
	var err error
	if p.pool != nil {
		err = resample.ZoomResampleParallel(r.Width, r.Height, p.cfg.Source, dst, r.Rect, r.Filter, r.Radius, r.Alpha, p.pool)
	} else {
		err = resample.ZoomResample(r.Width, r.Height, p.cfg.Source, dst, r.Rect, r.Filter, r.Radius, r.Alpha)
	}
	if err != nil {
		return manifest.Frame{}, err
	}

	checksum := hasher.ContentHash(dst.Pix, 16)

	frame := manifest.Frame{
		Index: idx,
		SourceRect: manifest.Rect{
			Left: r.Rect.Left, Top: r.Rect.Top, Right: r.Rect.Right, Bottom: r.Rect.Bottom,
		},
		Width:    r.Width,
		Height:   r.Height,
		Filter:   filterName(r.Filter),
		Radius:   r.Radius,
		Alpha:    alphaName(r.Alpha),
		Checksum: checksum,
	}

	if p.cfg.OutputDir != "" {
		path := fmt.Sprintf("%s/frame-%05d.png", p.cfg.OutputDir, idx)
		if err := loader.SaveReference(path, dst); err != nil {
			return manifest.Frame{}, fmt.Errorf("save frame: %w", err)
		}
		if info, err := os.Stat(path); err == nil {
			frame.Bytes = info.Size()
		}
		frame.Path = path
	}

	frame.EncodeMS = float64(time.Since(t0).Microseconds()) / 1000.0
	return frame, nil
}

func filterName(f resample.Filter) string {
	switch f {
	case resample.FilterBox:
		return "box"
	case resample.FilterLinear:
		return "linear"
	case resample.FilterBicubic:
		return "bicubic"
	case resample.FilterMine:
		return "mine"
	case resample.FilterLanczos:
		return "lanczos"
	case resample.FilterBSpline:
		return "bspline"
	default:
		return "unknown"
	}
}

func alphaName(a resample.AlphaMode) string {
	switch a {
	case resample.Independent:
		return "independent"
	case resample.PreMultiply:
		return "premultiply"
	case resample.Ignore:
		return "ignore"
	default:
		return "unknown"
	}
}
