package manifest

import (
	"encoding/json"
	"os"
	"time"
)

// New creates an empty manifest with defaults.
func New(source string) *Manifest {
	return &Manifest{
		Version:     1,
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
		Source:      source,
		BasePath:    "./",
	}
}

// ComputeStats recalculates TotalFrames, TotalBytes, and AvgFrameMS from
// the frame list. ElapsedMS is wall-clock time measured by the caller
// (Pipeline.Run) and is left untouched here, since it reflects how long
// the run actually took, not the sum of per-frame times, which would be
// wrong for a parallel run.
func (m *Manifest) ComputeStats() {
	elapsed := m.Stats.ElapsedMS
	var s Stats
	s.TotalFrames = len(m.Frames)
	var totalMS float64
	for _, f := range m.Frames {
		totalMS += f.EncodeMS
		s.TotalBytes += f.Bytes
	}
	if s.TotalFrames > 0 {
		s.AvgFrameMS = totalMS / float64(s.TotalFrames)
	}
	s.ElapsedMS = elapsed
	m.Stats = s
}

// WriteJSON serializes the manifest to a JSON file with stable ordering.
func WriteJSON(m *Manifest, path string) error {
	m.ComputeStats()

	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0o644)
}
