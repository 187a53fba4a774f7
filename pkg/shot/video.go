package shot

import (
	"time"

	"gocv.io/x/gocv"

	"shot-analysis/pkg/geometry"
	"shot-analysis/pkg/phase"
	"shot-analysis/pkg/pose"
)

// VideoFrame is the analysis of one video frame with its phase.
type VideoFrame struct {
	FrameResult
	Phase phase.Step `json:"phase"`
}

// Summary describes a processed video.
type Summary struct {
	Frames      int                `json:"frames"`
	Shots       int                `json:"shots"`
	BallFrames  int                `json:"ball_frames"`
	Estimated   int                `json:"estimated_frames"`
	Transitions []phase.Transition `json:"transitions"`
}

// Video threads the phase session and the ball anchors through the frames of
// one video. It is not safe for concurrent use; use one Video per stream.
type Video struct {
	analyzer *Analyzer
	session  *phase.Session
	anchors  []geometry.Point

	frames     int
	ballFrames int
	estimated  int
}

func (a *Analyzer) NewVideo() *Video {
	return &Video{
		analyzer: a,
		session:  phase.NewSession(a.classifier, a.config.Session),
	}
}

// Process analyzes the next frame. When the subject has no wrist, the ball is
// searched around the previous frame's hands or ball.
func (v *Video) Process(img gocv.Mat, index int, ts time.Duration, detections []pose.Detection) VideoFrame {
	res := v.analyzer.AnalyzeFrame(img, detections, v.anchors)
	res.Frame = index
	res.Timestamp = ts

	v.frames++
	if res.Ball != nil {
		v.ballFrames++
	}
	if res.Estimated {
		v.estimated++
	}
	v.carryAnchors(res)

	return VideoFrame{
		FrameResult: res,
		Phase:       v.session.Observe(index, ts, res.Signals),
	}
}

// Reset starts a new shot attempt at index, for example on a cut or a new
// possession.
func (v *Video) Reset(index int, ts time.Duration) {
	v.anchors = nil
	v.session.Reset(index, ts)
}

func (v *Video) Summary() Summary {
	return Summary{
		Frames:      v.frames,
		Shots:       v.session.Shot(),
		BallFrames:  v.ballFrames,
		Estimated:   v.estimated,
		Transitions: v.session.Log(),
	}
}

func (v *Video) carryAnchors(res FrameResult) {
	if !res.Estimated {
		if wrists := anchorsFor(res.Skeleton, nil); len(wrists) > 0 {
			v.anchors = wrists
			return
		}
	}
	if res.Ball != nil {
		v.anchors = []geometry.Point{res.Ball.Center()}
	}
}
