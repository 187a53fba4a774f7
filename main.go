package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/cheggaaa/pb/v3"
	"github.com/spf13/cobra"

	"shot-analysis/pkg/detector"
	"shot-analysis/pkg/frame"
	"shot-analysis/pkg/geometry"
	"shot-analysis/pkg/quality"
	"shot-analysis/pkg/shot"
)

var rootCmd = &cobra.Command{
	Use:   "shot-analysis",
	Short: "CLI tool for basketball shot biomechanics",
	Long:  "Fuses pose detector keypoints, locates the ball, measures shooting angles, classifies shot phases in video and filters still images for training data.",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
		if !opts.verbose {
			log.SetOutput(io.Discard)
		}
	},
}

var imageCmd = &cobra.Command{
	Use:   "image [image-path]",
	Short: "Analyze the shooting form in a still image",
	Long:  "Fuses the detections for one image, measures the shooting angles, classifies the phase and evaluates the image for the training set.",
	Args:  cobra.ExactArgs(1),
	RunE:  runImage,
}

var filterCmd = &cobra.Command{
	Use:   "filter [image-path...]",
	Short: "Accept or reject images for a shooting-form training set",
	Long:  "Evaluates every image and prints each verdict with its evidence plus an acceptance report grouped by rejection category. Keypoints are read from a sidecar JSON file next to each image.",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runFilter,
}

var videoCmd = &cobra.Command{
	Use:   "video [video-path]",
	Short: "Track shot phases through a video",
	Long:  "Analyzes every frame of a video and prints the phase transition log. Keypoints come from a per-frame JSON export and/or Rekognition.",
	Args:  cobra.ExactArgs(1),
	RunE:  runVideo,
}

var compareCmd = &cobra.Command{
	Use:   "compare [image-path-1] [image-path-2]",
	Short: "Compare the shooting form in two images",
	Long:  "Measures the shooting angles in both images and reports per-angle differences and a similarity score (0-100).",
	Args:  cobra.ExactArgs(2),
	RunE:  runCompare,
}

func init() {
	f := rootCmd.PersistentFlags()
	f.BoolVarP(&opts.verbose, "verbose", "v", false, "log progress to stderr")
	f.BoolVar(&opts.rekognition, "rekognition", false, "detect people and faces with AWS Rekognition")
	f.StringVar(&opts.region, "region", "", "AWS region for Rekognition")
	f.Float32Var(&opts.minConfidence, "min-confidence", 70, "minimum Rekognition confidence (0-100)")
	f.IntVar(&opts.maxHeight, "max-height", 1080, "downscale taller frames to this height, 0 to disable")
	f.Float64Var(&opts.visibility, "visibility", 0.5, "keypoint visibility threshold")
	f.StringVar(&opts.side, "side", "auto", "shooting side: auto, right or left")
	f.StringVar(&opts.sidecar, "sidecar", ".json", "keypoint file suffix replacing each image's extension")

	imageCmd.Flags().StringVarP(&opts.keypoints, "keypoints", "k", "", "keypoint export for the image (default: sidecar file)")
	imageCmd.Flags().StringArrayVar(&opts.anchors, "anchor", nil, "ball search anchor x,y when no wrist is detected (repeatable)")

	videoCmd.Flags().StringVarP(&opts.keypoints, "keypoints", "k", "", "per-frame keypoint export")
	videoCmd.Flags().IntVar(&opts.resetFrames, "reset-frames", 5, "consecutive SETUP frames that start a new shot")
	videoCmd.Flags().BoolVar(&opts.frames, "frames", false, "include per-frame results in the output")

	rootCmd.AddCommand(imageCmd)
	rootCmd.AddCommand(filterCmd)
	rootCmd.AddCommand(videoCmd)
	rootCmd.AddCommand(compareCmd)
}

func runImage(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	r, err := newRunner(ctx)
	if err != nil {
		return err
	}
	defer r.Close()

	hints, err := parseAnchors(opts.anchors)
	if err != nil {
		return err
	}

	res, err := r.analyzeImage(ctx, args[0], opts.keypoints, hints)
	if err != nil {
		return err
	}

	// Output results
	return printJSON(struct {
		shot.ImageResult
		Phase string `json:"phase"`
	}{res, r.analyzer.Classify(res.FrameResult).Phase.String()})
}

type filterEntry struct {
	Path    string          `json:"path"`
	Verdict quality.Verdict `json:"verdict"`
	Error   string          `json:"error,omitempty"`
}

func runFilter(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	r, err := newRunner(ctx)
	if err != nil {
		return err
	}
	defer r.Close()

	report := quality.NewReport()
	entries := make([]filterEntry, 0, len(args))

	for _, path := range args {
		res, err := r.analyzeImage(ctx, path, "", nil)
		if err != nil {
			// one unreadable image never aborts the batch
			log.Printf("[FILTER] %s: %v", path, err)
			entries = append(entries, filterEntry{Path: path, Error: err.Error()})
			continue
		}
		log.Printf("[FILTER] %s: %s", path, res.Verdict.Rejection)
		report.Add(res.Verdict)
		entries = append(entries, filterEntry{Path: path, Verdict: res.Verdict})
	}

	return printJSON(struct {
		Images []filterEntry   `json:"images"`
		Report *quality.Report `json:"report"`
		Rate   float64         `json:"acceptance_rate"`
	}{entries, report, report.AcceptanceRate()})
}

func runVideo(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	r, err := newRunner(ctx)
	if err != nil {
		return err
	}
	defer r.Close()

	video, err := frame.OpenVideo(args[0], opts.maxHeight, opts.rekognition)
	if err != nil {
		return err
	}
	defer video.Close()

	var file *detector.FileSource
	if opts.keypoints != "" {
		if file, err = detector.OpenFile(opts.keypoints); err != nil {
			return err
		}
	}
	session := r.analyzer.NewVideo()
	var frames []shot.VideoFrame

	bar := pb.StartNew(video.FrameCount())

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		f, ok, err := video.Next()
		if err != nil {
			return err
		}
		if !ok {
			break
		}

		dets := r.detectors
		if file != nil {
			file.Scale = f.Scale
			dets = append([]detector.Detector{file}, r.detectors...)
		}
		detections, err := detector.Collect(ctx, f.Input(), dets...)
		if err != nil {
			log.Printf("[VIDEO] frame %d: no detections: %v", f.Index, err)
		}

		img, err := f.Mat()
		if err != nil {
			return err
		}
		vf := session.Process(img, f.Index, f.Timestamp, detections)
		img.Close()

		if vf.Phase.Changed {
			log.Printf("[VIDEO] frame %d: %s (shot %d)", f.Index, vf.Phase.Phase, vf.Phase.Shot)
		}
		if opts.frames {
			frames = append(frames, vf)
		}
		bar.Increment()
	}
	bar.Finish()

	return printJSON(struct {
		shot.Summary
		FrameResults []shot.VideoFrame `json:"frame_results,omitempty"`
	}{session.Summary(), frames})
}

func runCompare(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	r, err := newRunner(ctx)
	if err != nil {
		return err
	}
	defer r.Close()

	// Analyze both shots
	first, err := r.analyzeImage(ctx, args[0], "", nil)
	if err != nil {
		return fmt.Errorf("failed to analyze first image: %w", err)
	}
	second, err := r.analyzeImage(ctx, args[1], "", nil)
	if err != nil {
		return fmt.Errorf("failed to analyze second image: %w", err)
	}

	// Compare the forms
	comparison := shot.CompareForm(first.Angles, second.Angles, r.analyzer.Config().Compare)

	return printJSON(comparison)
}

func printJSON(v any) error {
	output, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to format output: %w", err)
	}

	fmt.Println(string(output))
	return nil
}

func parseAnchors(values []string) ([]geometry.Point, error) {
	var out []geometry.Point
	for _, v := range values {
		xs, ys, ok := strings.Cut(v, ",")
		if !ok {
			return nil, fmt.Errorf("anchor %q: want x,y", v)
		}
		x, err := strconv.ParseFloat(strings.TrimSpace(xs), 64)
		if err != nil {
			return nil, fmt.Errorf("anchor %q: %w", v, err)
		}
		y, err := strconv.ParseFloat(strings.TrimSpace(ys), 64)
		if err != nil {
			return nil, fmt.Errorf("anchor %q: %w", v, err)
		}
		out = append(out, geometry.Point{X: x, Y: y})
	}
	return out, nil
}

// sidecarPath maps photo.jpg to photo.json.
func sidecarPath(imagePath string) string {
	return strings.TrimSuffix(imagePath, filepath.Ext(imagePath)) + opts.sidecar
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
