package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/AnyUserName/zoomres/internal/loader"
	"github.com/AnyUserName/zoomres/internal/manifest"
	"github.com/AnyUserName/zoomres/internal/pipeline"
	"github.com/AnyUserName/zoomres/internal/trajectory"
	"github.com/spf13/cobra"
)

var (
	animateStart      string
	animateEnd        string
	animateFrames     int
	animateTrajectory string
	animateWidth      int
	animateHeight     int
	animateFilter     string
	animateRadius     float64
	animateAlpha      string
	animateOutDir     string
	animateManifest   string
	animateWorkers    int
	animateParallel   bool
)

var animateCmd = &cobra.Command{
	Use:   "animate <input>",
	Short: "Render a pan/zoom animation as a sequence of frames",
	Long: `Interpolates between --start and --end source rects over --frames
samples using the chosen --trajectory, resampling each sample to
--width x --height and writing one file per frame into --out.

The classic "Ken Burns effect" slow pan-and-zoom is --trajectory kenburns.`,
	Args: cobra.ExactArgs(1),
	RunE: runAnimate,
}

func init() {
	animateCmd.Flags().StringVar(&animateStart, "start", "", "starting source rect as left,top,right,bottom (required)")
	animateCmd.Flags().StringVar(&animateEnd, "end", "", "ending source rect as left,top,right,bottom (required)")
	animateCmd.Flags().IntVar(&animateFrames, "frames", 240, "number of frames to sample")
	animateCmd.Flags().StringVar(&animateTrajectory, "trajectory", "kenburns", "trajectory: linear, ease, kenburns")
	animateCmd.Flags().IntVar(&animateWidth, "width", 0, "output width (required)")
	animateCmd.Flags().IntVar(&animateHeight, "height", 0, "output height (required)")
	animateCmd.Flags().StringVar(&animateFilter, "filter", "lanczos", "reconstruction filter: box, linear, bicubic, mine, lanczos, bspline")
	animateCmd.Flags().Float64Var(&animateRadius, "radius", 0, "filter support radius (0 = filter default)")
	animateCmd.Flags().StringVar(&animateAlpha, "alpha", "ignore", "alpha policy: independent, premultiply, ignore")
	animateCmd.Flags().StringVarP(&animateOutDir, "out", "o", "./zoomres_frames", "output directory for frame files")
	animateCmd.Flags().StringVar(&animateManifest, "manifest", "", "write a manifest JSON to this path (default: <out>/zoomres.manifest.json)")
	animateCmd.Flags().IntVarP(&animateWorkers, "workers", "w", 0, "parallel outer-fanout workers (0 = NumCPU)")
	animateCmd.Flags().BoolVar(&animateParallel, "parallel", false, "use resample's tiled worker pool per frame in addition to outer fan-out")
	rootCmd.AddCommand(animateCmd)
}

func runAnimate(_ *cobra.Command, args []string) error {
	inputPath := args[0]
	if animateWidth <= 0 || animateHeight <= 0 {
		return fmt.Errorf("--width and --height are required and must be positive")
	}
	if animateStart == "" || animateEnd == "" {
		return fmt.Errorf("--start and --end are required")
	}
	if animateFrames <= 0 {
		return fmt.Errorf("--frames must be positive")
	}

	start, err := parseRect(animateStart)
	if err != nil {
		return err
	}
	end, err := parseRect(animateEnd)
	if err != nil {
		return err
	}
	filter, err := parseFilter(animateFilter)
	if err != nil {
		return err
	}
	alpha, err := parseAlpha(animateAlpha)
	if err != nil {
		return err
	}

	var anim trajectory.Animation
	switch animateTrajectory {
	case "linear":
		anim = trajectory.LinearPan(start, end)
	case "ease":
		anim = trajectory.EaseInOutZoom(start, end)
	case "kenburns":
		anim = trajectory.KenBurns(start, end)
	default:
		return fmt.Errorf("unknown trajectory %q (want linear, ease, kenburns)", animateTrajectory)
	}

	src, format, err := loader.Load(inputPath)
	if err != nil {
		return fmt.Errorf("load %s: %w", inputPath, err)
	}
	logVerbose("loaded %s (%s, %dx%d)", inputPath, format, src.Width, src.Height)

	rects := trajectory.Sample(anim, animateFrames)
	requests := make([]pipeline.ZoomRequest, len(rects))
	for i, r := range rects {
		requests[i] = pipeline.ZoomRequest{
			Rect: r, Width: animateWidth, Height: animateHeight,
			Filter: filter, Radius: animateRadius, Alpha: alpha,
		}
	}

	cfg := pipeline.Config{
		SourcePath: inputPath,
		Source:     src,
		Requests:   requests,
		OutputDir:  animateOutDir,
		Workers:    animateWorkers,
		Parallel:   animateParallel,
		Verbose:    verbose,
	}

	p := pipeline.New(cfg)
	defer p.Close()

	m, err := p.Run()
	if err != nil {
		return fmt.Errorf("animate: %w", err)
	}

	manifestPath := animateManifest
	if manifestPath == "" {
		manifestPath = filepath.Join(animateOutDir, "zoomres.manifest.json")
	}
	if err := manifest.WriteJSON(m, manifestPath); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}

	fmt.Printf("  rendered %d frames (%s trajectory, %s, %s alpha) into %s in %.2fms\n",
		len(m.Frames), animateTrajectory, animateFilter, animateAlpha, animateOutDir, m.Stats.ElapsedMS)
	fmt.Printf("  manifest: %s\n", manifestPath)
	return nil
}
