package quality

import (
	"fmt"
	"math"

	"shot-analysis/pkg/biomech"
	"shot-analysis/pkg/pose"
)

// Config tunes the filter.
type Config struct {
	// VisibilityThreshold applies to head, ankle and core landmarks, which
	// must be strictly above it.
	VisibilityThreshold float64
	// MinCoreVisible of shoulders, hips and knees must be visible.
	MinCoreVisible int
	// ShootingElbowMin: elbow above this with the wrist over the shoulder is a shot.
	ShootingElbowMin float64
	// DribbleElbowMax: elbow below this with the wrist under the shoulder is a dribble.
	DribbleElbowMax float64
}

func DefaultConfig() Config {
	return Config{
		VisibilityThreshold: 0.5,
		MinCoreVisible:      4,
		ShootingElbowMin:    90,
		DribbleElbowMax:     80,
	}
}

var coreJoints = []pose.Joint{
	pose.LeftShoulder, pose.RightShoulder,
	pose.LeftHip, pose.RightHip,
	pose.LeftKnee, pose.RightKnee,
}

// Candidate is one detected person in the image.
type Candidate struct {
	Box      pose.BoundingBox
	Skeleton pose.Skeleton
}

// Filter evaluates still images. It is a value and safe for concurrent use.
type Filter struct {
	config Config
	calc   biomech.Calculator
}

func NewFilter(cfg Config, calc biomech.Calculator) Filter {
	return Filter{config: cfg, calc: calc}
}

// Evaluate decides on one image of the given size. Checks run in order: a
// person is present, the full body is visible, the motion is a shot.
func (f Filter) Evaluate(candidates []Candidate, width, height int) Verdict {
	ev := Evidence{Candidates: len(candidates)}

	subject, ok := SelectSubject(candidates, width, f.config.VisibilityThreshold)
	if !ok {
		return reject(NoPerson, "no person detected", ev)
	}

	ev.SubjectBox = subject.Box
	if width > 0 && height > 0 {
		ev.BoxAreaRatio = subject.Box.Area() / float64(width*height)
		ev.CenterOffset = math.Abs(subject.Box.Center().X-float64(width)/2) / float64(width)
	}

	s := subject.Skeleton
	thr := f.config.VisibilityThreshold
	ev.HeadVisible = s.CountAbove(thr, pose.HeadJoints...) > 0
	ev.AnklesVisible = s.CountAbove(thr, pose.LeftAnkle, pose.RightAnkle)
	ev.CoreVisible = s.CountAbove(thr, coreJoints...)

	switch {
	case !ev.HeadVisible:
		return reject(PartialBody, "head not visible", ev)
	case ev.AnklesVisible == 0:
		return reject(PartialBody, "no ankle visible", ev)
	case ev.CoreVisible < f.config.MinCoreVisible:
		return reject(PartialBody, fmt.Sprintf("only %d of %d core landmarks visible", ev.CoreVisible, len(coreJoints)), ev)
	}

	angles := f.calc.Compute(s)
	ev.ElbowAngle, ev.HasElbow = angles.Get(biomech.Elbow)
	ev.WristAboveShoulder, ev.WristKnown = f.calc.WristAboveShoulder(s)

	switch {
	case !ev.HasElbow || !ev.WristKnown:
		return reject(AmbiguousMotion, "shooting arm not measurable", ev)
	case ev.ElbowAngle > f.config.ShootingElbowMin && ev.WristAboveShoulder:
		return Verdict{
			Accepted:  true,
			Rejection: Accepted,
			Reason:    fmt.Sprintf("shooting motion: elbow %.1f°, wrist above shoulder", ev.ElbowAngle),
			Evidence:  ev,
		}
	case ev.ElbowAngle < f.config.DribbleElbowMax && !ev.WristAboveShoulder:
		return reject(DribblingMotion, fmt.Sprintf("dribbling motion: elbow %.1f°, wrist below shoulder", ev.ElbowAngle), ev)
	default:
		return reject(AmbiguousMotion, fmt.Sprintf("ambiguous motion: elbow %.1f°, wrist above shoulder %t", ev.ElbowAngle, ev.WristAboveShoulder), ev)
	}
}

func reject(r Rejection, reason string, ev Evidence) Verdict {
	return Verdict{Rejection: r, Reason: reason, Evidence: ev}
}
