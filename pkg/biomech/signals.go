package biomech

import "shot-analysis/pkg/pose"

// Level is the wrist height relative to the shooter's hip and shoulder.
type Level int

const (
	LevelUnknown Level = iota
	BelowHip
	BetweenHipAndShoulder
	AboveShoulder
)

func (l Level) String() string {
	switch l {
	case BelowHip:
		return "below_hip"
	case BetweenHipAndShoulder:
		return "between_hip_and_shoulder"
	case AboveShoulder:
		return "above_shoulder"
	default:
		return "unknown"
	}
}

func (l Level) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

// Signals are the per-frame inputs of phase classification.
type Signals struct {
	Angles AngleSet `json:"angles"`
	Wrist  Level    `json:"wrist_level"`
	// WristHeight is shoulder y minus wrist y in pixels; positive means the
	// wrist is above the shoulder. Only meaningful when HasWristHeight.
	WristHeight    float64 `json:"wrist_height"`
	HasWristHeight bool    `json:"-"`
}

// Signals derives phase signals from a skeleton and its AngleSet.
func (c Calculator) Signals(s pose.Skeleton, angles AngleSet) Signals {
	sig := Signals{Angles: angles}
	limb := pose.LimbFor(c.ShootingSide(s))
	thr := c.config.VisibilityThreshold

	wrist, ok := s.Visible(limb.Wrist, thr)
	if !ok {
		return sig
	}
	shoulder, sok := s.Visible(limb.Shoulder, thr)
	hip, hok := s.Visible(limb.Hip, thr)

	if sok {
		sig.WristHeight = shoulder.Y - wrist.Y
		sig.HasWristHeight = true
	}

	// image y grows downward
	switch {
	case sok && wrist.Y < shoulder.Y:
		sig.Wrist = AboveShoulder
	case hok && wrist.Y > hip.Y:
		sig.Wrist = BelowHip
	case sok && hok:
		sig.Wrist = BetweenHipAndShoulder
	}
	return sig
}

// WristAboveShoulder reports whether the shooting wrist is higher than the
// shooting shoulder.
func (c Calculator) WristAboveShoulder(s pose.Skeleton) (above, known bool) {
	sig := c.Signals(s, nil)
	if !sig.HasWristHeight {
		return false, false
	}
	return sig.WristHeight > 0, true
}
