package cmd

import (
	"fmt"
	"time"

	"github.com/AnyUserName/zoomres/internal/loader"
	"github.com/AnyUserName/zoomres/internal/resample"
	"github.com/spf13/cobra"
)

var (
	benchWidth      int
	benchHeight     int
	benchFilter     string
	benchAlpha      string
	benchIterations int
	benchWorkers    int
)

var benchCmd = &cobra.Command{
	Use:   "bench <input>",
	Short: "Compare serial vs. tiled-parallel resample throughput on one image",
	Args:  cobra.ExactArgs(1),
	RunE:  runBench,
}

func init() {
	benchCmd.Flags().IntVar(&benchWidth, "width", 1920, "output width")
	benchCmd.Flags().IntVar(&benchHeight, "height", 1080, "output height")
	benchCmd.Flags().StringVar(&benchFilter, "filter", "lanczos", "reconstruction filter")
	benchCmd.Flags().StringVar(&benchAlpha, "alpha", "independent", "alpha policy")
	benchCmd.Flags().IntVar(&benchIterations, "iterations", 10, "number of resample calls to time per mode")
	benchCmd.Flags().IntVarP(&benchWorkers, "workers", "w", 0, "parallel workers (0 = NumCPU)")
	rootCmd.AddCommand(benchCmd)
}

func runBench(_ *cobra.Command, args []string) error {
	inputPath := args[0]
	if benchIterations <= 0 {
		return fmt.Errorf("--iterations must be positive")
	}

	src, format, err := loader.Load(inputPath)
	if err != nil {
		return fmt.Errorf("load %s: %w", inputPath, err)
	}
	logVerbose("loaded %s (%s, %dx%d)", inputPath, format, src.Width, src.Height)

	filter, err := parseFilter(benchFilter)
	if err != nil {
		return err
	}
	alpha, err := parseAlpha(benchAlpha)
	if err != nil {
		return err
	}
	rect := resample.FloatRect{Left: 0, Top: 0, Right: float64(src.Width), Bottom: float64(src.Height)}

	serialElapsed := timeRuns(benchIterations, func() error {
		dst := resample.NewImage(benchWidth, benchHeight)
		return resample.ZoomResample(benchWidth, benchHeight, src, dst, rect, filter, 0, alpha)
	})

	pool := resample.PoolInit(benchWorkers)
	defer resample.PoolFinalize(pool)
	parallelElapsed := timeRuns(benchIterations, func() error {
		dst := resample.NewImage(benchWidth, benchHeight)
		return resample.ZoomResampleParallel(benchWidth, benchHeight, src, dst, rect, filter, 0, alpha, pool)
	})

	fmt.Printf("  %dx%d -> %dx%d, filter=%s, alpha=%s, workers=%d, iterations=%d\n",
		src.Width, src.Height, benchWidth, benchHeight, benchFilter, benchAlpha, pool.Size(), benchIterations)
	fmt.Printf("  serial:    %s/iter\n", (serialElapsed / time.Duration(benchIterations)).Round(time.Microsecond))
	fmt.Printf("  parallel:  %s/iter\n", (parallelElapsed / time.Duration(benchIterations)).Round(time.Microsecond))
	if parallelElapsed > 0 {
		fmt.Printf("  speedup:   %.2fx\n", float64(serialElapsed)/float64(parallelElapsed))
	}
	return nil
}

func timeRuns(n int, run func() error) time.Duration {
	start := time.Now()
	for i := 0; i < n; i++ {
		if err := run(); err != nil {
			logVerbose("bench iteration failed: %v", err)
		}
	}
	return time.Since(start)
}
