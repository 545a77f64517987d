package cmd

import (
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"
)

var (
	version = "0.1.0"
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "zoomres",
	Short: "High-quality BGRA zoom/pan image resampler",
	Long: `zoomres — resamples a rectangular region of a source image into a
target-sized frame using a separable, tile-parallel BGRA resampler with
configurable reconstruction filters and alpha-channel policies.

Renders single zoom frames, multi-frame pan/zoom animations, and writes
a content-hashed manifest describing every frame produced.`,
	Version: version,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"zoomres %s (%s/%s, %s)\n",
		version, runtime.GOOS, runtime.GOARCH, runtime.Version(),
	))
}

// logVerbose prints a message only when --verbose is set.
func logVerbose(format string, args ...any) {
	if verbose {
		fmt.Fprintf(os.Stderr, "[zoomres] "+format+"\n", args...)
	}
}
