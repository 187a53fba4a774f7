package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"

	"shot-analysis/pkg/biomech"
	"shot-analysis/pkg/detector"
	"shot-analysis/pkg/frame"
	"shot-analysis/pkg/geometry"
	"shot-analysis/pkg/shot"
)

var opts struct {
	verbose       bool
	rekognition   bool
	region        string
	minConfidence float32
	maxHeight     int
	visibility    float64
	side          string
	sidecar       string
	keypoints     string
	anchors       []string
	resetFrames   int
	frames        bool
}

// runner holds what every command needs: the analyzer and the detectors that
// do not depend on the input file.
type runner struct {
	analyzer  *shot.Analyzer
	detectors []detector.Detector
}

func newRunner(ctx context.Context) (*runner, error) {
	cfg := shot.DefaultConfig()
	cfg.Biomech.VisibilityThreshold = opts.visibility
	cfg.Quality.VisibilityThreshold = opts.visibility
	cfg.Session.ResetFrames = opts.resetFrames

	switch opts.side {
	case "auto", "":
		cfg.Biomech.Side = biomech.SideAuto
	case "right":
		cfg.Biomech.Side = biomech.SideRight
	case "left":
		cfg.Biomech.Side = biomech.SideLeft
	default:
		return nil, fmt.Errorf("unknown side %q: want auto, right or left", opts.side)
	}

	r := &runner{}
	if opts.rekognition {
		rek, err := detector.NewRekognition(ctx, opts.region, opts.minConfidence)
		if err != nil {
			return nil, err
		}
		r.detectors = append(r.detectors, rek)
	}
	r.analyzer = shot.NewAnalyzer(cfg)
	return r, nil
}

func (r *runner) Close() {
	r.analyzer.Close()
}

// analyzeImage loads one image with its keypoints and analyzes it. An empty
// keypoints path falls back to the sidecar file, which may be absent. hints
// are in original image pixels.
func (r *runner) analyzeImage(ctx context.Context, path, keypoints string, hints []geometry.Point) (shot.ImageResult, error) {
	f, err := frame.Load(path, opts.maxHeight)
	if err != nil {
		return shot.ImageResult{}, err
	}

	dets := r.detectors
	file, err := openKeypoints(path, keypoints)
	if err != nil {
		return shot.ImageResult{}, err
	}
	if file != nil {
		file.Scale = f.Scale
		dets = append([]detector.Detector{file}, r.detectors...)
	}

	detections, err := detector.Collect(ctx, f.Input(), dets...)
	if err != nil {
		return shot.ImageResult{}, fmt.Errorf("failed to detect people: %w", err)
	}

	img, err := f.Mat()
	if err != nil {
		return shot.ImageResult{}, err
	}
	defer img.Close()

	scaled := make([]geometry.Point, len(hints))
	for i, h := range hints {
		scaled[i] = geometry.Point{X: h.X * f.Scale, Y: h.Y * f.Scale}
	}

	res := r.analyzer.AnalyzeImage(img, detections, scaled)
	log.Printf("[IMAGE] %s: %d people, ball %t, estimated %t", path, res.People, res.Ball != nil, res.Estimated)
	return res, nil
}

func openKeypoints(imagePath, keypoints string) (*detector.FileSource, error) {
	if keypoints != "" {
		return detector.OpenFile(keypoints)
	}

	sidecar := sidecarPath(imagePath)
	if _, err := os.Stat(sidecar); errors.Is(err, fs.ErrNotExist) {
		log.Printf("[IMAGE] no keypoints for %s", imagePath)
		return nil, nil
	}
	return detector.OpenFile(sidecar)
}
