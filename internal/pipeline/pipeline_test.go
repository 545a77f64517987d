package pipeline

import (
	"path/filepath"
	"testing"

	"github.com/AnyUserName/zoomres/internal/resample"
)

func solidSource(w, h int, b, g, r, a byte) *resample.Image {
	img := resample.NewImage(w, h)
	for y := 0; y < h; y++ {
		row := img.Pix[y*img.Stride : y*img.Stride+4*w]
		for x := 0; x < w; x++ {
			row[x*4+0] = b
			row[x*4+1] = g
			row[x*4+2] = r
			row[x*4+3] = a
		}
	}
	return img
}

func TestPipelineRunProducesFrames(t *testing.T) {
	src := solidSource(8, 8, 10, 20, 30, 255)
	cfg := Config{
		SourcePath: "synthetic.png",
		Source:     src,
		Requests: []ZoomRequest{
			{Rect: resample.FloatRect{Left: 0, Top: 0, Right: 8, Bottom: 8}, Width: 4, Height: 4, Filter: resample.FilterLinear, Alpha: resample.Independent},
			{Rect: resample.FloatRect{Left: 1, Top: 1, Right: 6, Bottom: 6}, Width: 10, Height: 10, Filter: resample.FilterLanczos, Alpha: resample.Independent},
		},
		Workers: 2,
	}

	p := New(cfg)
	defer p.Close()

	m, err := p.Run()
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(m.Frames) != 2 {
		t.Fatalf("frames: got %d want 2", len(m.Frames))
	}
	for i, f := range m.Frames {
		if f.Index != i {
			t.Errorf("frame %d: index got %d", i, f.Index)
		}
		if f.Checksum == "" {
			t.Errorf("frame %d: empty checksum", i)
		}
	}
	if m.Frames[0].Width != 4 || m.Frames[0].Height != 4 {
		t.Errorf("frame 0 dims: got %dx%d", m.Frames[0].Width, m.Frames[0].Height)
	}
	if m.SourceThumb == "" {
		t.Error("expected non-empty source thumbhash")
	}
	if m.Stats.TotalFrames != 2 {
		t.Errorf("stats.total_frames: got %d", m.Stats.TotalFrames)
	}
}

func TestPipelineRunSavesFrames(t *testing.T) {
	src := solidSource(4, 4, 1, 2, 3, 255)
	dir := t.TempDir()
	cfg := Config{
		SourcePath: "synthetic.png",
		Source:     src,
		Requests: []ZoomRequest{
			{Rect: resample.FloatRect{Left: 0, Top: 0, Right: 4, Bottom: 4}, Width: 2, Height: 2, Filter: resample.FilterBox, Alpha: resample.Independent},
		},
		OutputDir: dir,
		Workers:   1,
	}

	m, err := New(cfg).Run()
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	f := m.Frames[0]
	if f.Path == "" {
		t.Fatal("expected frame path to be set")
	}
	if filepath.Dir(f.Path) != dir {
		t.Errorf("frame path dir: got %q want %q", filepath.Dir(f.Path), dir)
	}
	if f.Bytes == 0 {
		t.Error("expected non-zero encoded bytes")
	}
}

func TestPipelineRunParallelPool(t *testing.T) {
	src := solidSource(16, 16, 5, 6, 7, 255)
	cfg := Config{
		SourcePath: "synthetic.png",
		Source:     src,
		Requests: []ZoomRequest{
			{Rect: resample.FloatRect{Left: 0, Top: 0, Right: 16, Bottom: 16}, Width: 32, Height: 32, Filter: resample.FilterBicubic, Alpha: resample.PreMultiply},
		},
		Workers:  2,
		Parallel: true,
	}

	p := New(cfg)
	defer p.Close()

	m, err := p.Run()
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if m.BuildInfo == nil || !m.BuildInfo.Parallel {
		t.Fatal("expected build info to record parallel mode")
	}
	if m.Frames[0].Alpha != "premultiply" {
		t.Errorf("alpha: got %q", m.Frames[0].Alpha)
	}
}

func TestPipelineRunRequiresSourceAndRequests(t *testing.T) {
	if _, err := New(Config{}).Run(); err == nil {
		t.Error("expected error for missing source")
	}
	src := solidSource(2, 2, 0, 0, 0, 255)
	if _, err := New(Config{Source: src}).Run(); err == nil {
		t.Error("expected error for empty requests")
	}
}
