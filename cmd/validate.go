package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/AnyUserName/zoomres/internal/manifest"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate <manifest_path>",
	Short: "Validate a zoomres manifest and check referenced frame files exist",
	Args:  cobra.ExactArgs(1),
	RunE:  runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(_ *cobra.Command, args []string) error {
	manifestPath := args[0]

	data, err := os.ReadFile(manifestPath)
	if err != nil {
		return fmt.Errorf("read manifest: %w", err)
	}

	var m manifest.Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return fmt.Errorf("parse manifest: %w", err)
	}

	baseDir := filepath.Dir(manifestPath)
	errs := validateManifest(&m, baseDir)

	if len(errs) == 0 {
		fmt.Println("  ✓ Manifest is valid")
		fmt.Printf("  ✓ %d frame(s) — all referenced files present\n", m.Stats.TotalFrames)
		return nil
	}

	fmt.Printf("  ✗ Manifest has %d error(s):\n", len(errs))
	for _, e := range errs {
		fmt.Printf("    • %s\n", e)
	}
	return fmt.Errorf("validation failed with %d errors", len(errs))
}

func validateManifest(m *manifest.Manifest, baseDir string) []string {
	var errs []string

	if m.Version != manifest.SupportedManifestVersion {
		errs = append(errs, fmt.Sprintf("unsupported manifest version: %d", m.Version))
	}
	if len(m.Frames) == 0 {
		errs = append(errs, "manifest has no frames")
	}

	seenIndex := map[int]bool{}
	seenPaths := map[string]bool{}
	for i, f := range m.Frames {
		if f.Width <= 0 || f.Height <= 0 {
			errs = append(errs, fmt.Sprintf("frame[%d]: invalid dimensions %dx%d", i, f.Width, f.Height))
		}
		if f.Checksum == "" {
			errs = append(errs, fmt.Sprintf("frame[%d]: missing checksum", i))
		}
		if f.Filter == "" {
			errs = append(errs, fmt.Sprintf("frame[%d]: empty filter", i))
		}
		if seenIndex[f.Index] {
			errs = append(errs, fmt.Sprintf("frame[%d]: duplicate index %d", i, f.Index))
		}
		seenIndex[f.Index] = true

		if f.Path == "" {
			continue
		}
		if seenPaths[f.Path] {
			errs = append(errs, fmt.Sprintf("frame[%d]: duplicate path %q", i, f.Path))
		}
		seenPaths[f.Path] = true

		fullPath := filepath.Join(baseDir, f.Path)
		if _, err := os.Stat(fullPath); err != nil {
			fullPath = f.Path
			if _, err := os.Stat(fullPath); err != nil {
				errs = append(errs, fmt.Sprintf("frame[%d]: file not found: %s", i, f.Path))
				continue
			}
		}
		if info, err := os.Stat(fullPath); err == nil && f.Bytes > 0 && info.Size() != f.Bytes {
			errs = append(errs, fmt.Sprintf("frame[%d]: size mismatch: manifest=%d, disk=%d", i, f.Bytes, info.Size()))
		}
	}

	if m.Stats.TotalFrames != len(m.Frames) {
		errs = append(errs, fmt.Sprintf("stats.total_frames mismatch: %d != %d", m.Stats.TotalFrames, len(m.Frames)))
	}

	return errs
}
