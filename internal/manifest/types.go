package manifest

// Manifest is the top-level output of a zoomres run: either a single
// zoom (one Frame) or an animation (many).
type Manifest struct {
	Version     int        `json:"version"`
	GeneratedAt string     `json:"generated_at"`
	Source      string     `json:"source"`
	SourceThumb string     `json:"source_thumbhash,omitempty"` // base64 thumbhash of the source image
	BasePath    string     `json:"base_path"`
	BuildInfo   *BuildInfo `json:"build_info,omitempty"`
	Frames      []Frame    `json:"frames"`
	Stats       Stats      `json:"stats"`
}

// BuildInfo captures run-time parameters for diagnostics.
type BuildInfo struct {
	Workers     int  `json:"workers"`
	Parallel    bool `json:"parallel"`      // whether resample's own pool was used per frame
	PoolEntryKB int  `json:"pool_entry_kb"` // per-worker thumbhash pool (~167 KB for float32)
}

// Frame describes one rendered zoom sample: its source rectangle,
// target size, the filter/alpha policy it was rendered with, a content
// checksum of the output pixels, and how long it took to produce.
type Frame struct {
	Index      int     `json:"index"`
	SourceRect Rect    `json:"source_rect"`
	Width      int     `json:"width"`
	Height     int     `json:"height"`
	Filter     string  `json:"filter"`
	Radius     float64 `json:"radius"`
	Alpha      string  `json:"alpha"`
	Checksum   string  `json:"checksum"` // xxhash64 hex of the frame's BGRA pixels
	EncodeMS   float64 `json:"encode_ms"`
	Bytes      int64   `json:"bytes,omitempty"` // encoded size on disk, set when saved
	Path       string  `json:"path,omitempty"`  // set when the frame was saved to disk
}

// Rect mirrors resample.FloatRect for JSON encoding without importing
// the core package's type into the manifest's public shape.
type Rect struct {
	Left, Top, Right, Bottom float64
}

// Stats aggregates run metrics.
type Stats struct {
	TotalFrames int     `json:"total_frames"`
	TotalBytes  int64   `json:"total_bytes"`
	ElapsedMS   float64 `json:"elapsed_ms"`
	AvgFrameMS  float64 `json:"avg_frame_ms"`
}

// SupportedManifestVersion is the current schema version.
const SupportedManifestVersion = 1
