// Package shot runs the full per-frame analysis: detections are grouped per
// person and fused, the ball is located near the shooter's hands, a skeleton
// is estimated from the ball when no body joints were detected, and the
// resulting angles feed either the quality filter (still images) or a phase
// session (video).
package shot

import (
	"time"

	"gocv.io/x/gocv"

	"shot-analysis/pkg/biomech"
	"shot-analysis/pkg/cv"
	"shot-analysis/pkg/estimate"
	"shot-analysis/pkg/geometry"
	"shot-analysis/pkg/phase"
	"shot-analysis/pkg/pose"
	"shot-analysis/pkg/quality"
)

// Config gathers the tuning of every stage.
type Config struct {
	Ball       cv.BallConfig
	Biomech    biomech.Config
	Estimate   estimate.Config
	Quality    quality.Config
	Thresholds phase.Thresholds
	Session    phase.SessionConfig
	Compare    CompareConfig

	// GroupOverlap is the minimum box overlap for detections from different
	// detectors to be fused as the same person.
	GroupOverlap float64
	// MinBodyJoints is the number of visible non-head joints below which the
	// skeleton is estimated from the ball instead.
	MinBodyJoints int
}

func DefaultConfig() Config {
	return Config{
		Ball:          cv.DefaultBallConfig(),
		Biomech:       biomech.DefaultConfig(),
		Estimate:      estimate.DefaultConfig(),
		Quality:       quality.DefaultConfig(),
		Thresholds:    phase.DefaultThresholds(),
		Session:       phase.DefaultSessionConfig(),
		Compare:       DefaultCompareConfig(),
		GroupOverlap:  0.5,
		MinBodyJoints: 1,
	}
}

// FrameResult is the analysis of one frame or image.
type FrameResult struct {
	Frame     int               `json:"frame"`
	Timestamp time.Duration     `json:"timestamp"`
	Width     int               `json:"width"`
	Height    int               `json:"height"`
	People    int               `json:"people"`
	Box       pose.BoundingBox  `json:"box"`
	Skeleton  pose.Skeleton     `json:"skeleton"`
	Estimated bool              `json:"estimated"`
	Ball      *cv.BallDetection `json:"ball,omitempty"`
	Side      pose.Side         `json:"shooting_side"`
	Angles    biomech.AngleSet  `json:"angles"`
	Wrist     biomech.Level     `json:"wrist_level"`

	Signals    biomech.Signals     `json:"-"`
	Candidates []quality.Candidate `json:"-"`
}

// ImageResult is a FrameResult plus the dataset-curation verdict.
type ImageResult struct {
	FrameResult
	Verdict quality.Verdict `json:"verdict"`
}

// Analyzer owns the ball localizer; call Close when done. Analysis methods
// keep no state between calls and may be used from several goroutines.
type Analyzer struct {
	config     Config
	localizer  *cv.BallLocalizer
	calc       biomech.Calculator
	filter     quality.Filter
	classifier phase.Classifier
}

func NewAnalyzer(cfg Config) *Analyzer {
	calc := biomech.NewCalculator(cfg.Biomech)
	return &Analyzer{
		config:     cfg,
		localizer:  cv.NewBallLocalizer(cfg.Ball),
		calc:       calc,
		filter:     quality.NewFilter(cfg.Quality, calc),
		classifier: phase.NewClassifier(cfg.Thresholds),
	}
}

func (a *Analyzer) Close() {
	a.localizer.Close()
}

func (a *Analyzer) Config() Config {
	return a.config
}

// AnalyzeFrame analyzes one BGR frame. hints are fallback ball anchors used
// when the subject has no wrist, typically the previous frame's hands.
func (a *Analyzer) AnalyzeFrame(img gocv.Mat, detections []pose.Detection, hints []geometry.Point) FrameResult {
	res := FrameResult{Width: img.Cols(), Height: img.Rows()}

	res.Candidates = Group(detections, a.config.GroupOverlap)
	res.People = len(res.Candidates)

	thr := a.config.Biomech.VisibilityThreshold
	subject, ok := quality.SelectSubject(res.Candidates, res.Width, thr)
	if ok {
		res.Box = subject.Box
		res.Skeleton = subject.Skeleton
	}

	if anchors := anchorsFor(res.Skeleton, hints); len(anchors) > 0 {
		if ball, found := a.localizer.Locate(img, anchors); found {
			res.Ball = &ball
		}
	}

	if res.Ball != nil && bodyJoints(res.Skeleton, thr) < a.config.MinBodyJoints {
		ecfg := a.config.Estimate
		switch a.config.Biomech.Side {
		case biomech.SideLeft:
			ecfg.Side = pose.Left
		case biomech.SideRight:
			ecfg.Side = pose.Right
		}
		res.Skeleton = estimate.FromBall(*res.Ball, res.Height, ecfg)
		res.Box = res.Skeleton.Bounds(0)
		res.Estimated = true
	}

	res.Side = a.calc.ShootingSide(res.Skeleton)
	res.Angles = a.calc.Compute(res.Skeleton)
	res.Signals = a.calc.Signals(res.Skeleton, res.Angles)
	res.Wrist = res.Signals.Wrist
	return res
}

// AnalyzeImage analyzes a still image and evaluates it for the training set.
// The verdict only considers detected people, never an estimated skeleton.
func (a *Analyzer) AnalyzeImage(img gocv.Mat, detections []pose.Detection, hints []geometry.Point) ImageResult {
	res := a.AnalyzeFrame(img, detections, hints)
	return ImageResult{
		FrameResult: res,
		Verdict:     a.filter.Evaluate(res.Candidates, res.Width, res.Height),
	}
}

// Classify classifies a single frame without any history.
func (a *Analyzer) Classify(res FrameResult) phase.Decision {
	return a.classifier.Classify(res.Signals, nil)
}

// anchorsFor returns the subject's wrists at any confidence, or hints when
// there are none.
func anchorsFor(s pose.Skeleton, hints []geometry.Point) []geometry.Point {
	var anchors []geometry.Point
	for _, j := range []pose.Joint{pose.RightWrist, pose.LeftWrist} {
		if k, ok := s.Get(j); ok {
			anchors = append(anchors, k.Point())
		}
	}
	if len(anchors) == 0 {
		return hints
	}
	return anchors
}

func bodyJoints(s pose.Skeleton, threshold float64) int {
	n := 0
	for _, k := range s.Keypoints() {
		if !k.Joint.Head() && k.Visible(threshold) {
			n++
		}
	}
	return n
}
