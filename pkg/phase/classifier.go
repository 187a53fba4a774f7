package phase

import "shot-analysis/pkg/biomech"

// Thresholds are the angle limits of the per-frame rules, in degrees.
type Thresholds struct {
	SetupKneeMax    float64 // SETUP: knee below
	DipKneeMax      float64 // DIP: knee below
	RiseElbowMax    float64 // RISE: elbow below
	RiseKneeMin     float64 // RISE: knee above
	ReleaseElbowMin float64 // RELEASE: elbow above
}

func DefaultThresholds() Thresholds {
	return Thresholds{
		SetupKneeMax:    140,
		DipKneeMax:      130,
		RiseElbowMax:    90,
		RiseKneeMin:     140,
		ReleaseElbowMin: 160,
	}
}

// Rule names reported in a Decision.
const (
	RuleRelease = "release"
	RuleRise    = "rise"
	RuleDip     = "dip"
	RuleSetup   = "setup"
	RuleHold    = "hold"
)

// Decision is the outcome for one frame. Matched is false when no rule fired
// and the previous phase was held.
type Decision struct {
	Phase   Phase  `json:"phase"`
	Matched bool   `json:"matched"`
	Rule    string `json:"rule"`
}

// Classifier applies the per-frame rules. The zero value is not useful; use
// NewClassifier or DefaultClassifier.
type Classifier struct {
	t Thresholds
}

func NewClassifier(t Thresholds) Classifier {
	return Classifier{t: t}
}

func DefaultClassifier() Classifier {
	return NewClassifier(DefaultThresholds())
}

// Classify classifies with the default thresholds.
func Classify(sig biomech.Signals, prev *Phase) Decision {
	return DefaultClassifier().Classify(sig, prev)
}

// Classify maps one frame's signals to a phase. When no rule matches, prev is
// returned unchanged, or SETUP when prev is nil. Rules needing a missing
// angle or an unknown wrist level do not match.
func (c Classifier) Classify(sig biomech.Signals, prev *Phase) Decision {
	elbow, hasElbow := sig.Angles.Get(biomech.Elbow)
	knee, hasKnee := sig.Angles.Get(biomech.Knee)
	above := sig.Wrist == biomech.AboveShoulder

	switch {
	case above && hasElbow && elbow > c.t.ReleaseElbowMin:
		return Decision{Phase: Release, Matched: true, Rule: RuleRelease}
	case above && hasElbow && hasKnee && elbow < c.t.RiseElbowMax && knee > c.t.RiseKneeMin:
		return Decision{Phase: Rise, Matched: true, Rule: RuleRise}
	// A wrist already above the shoulder with the knees still loaded is a
	// high set point and still counts as the dip.
	case (above || sig.Wrist == biomech.BetweenHipAndShoulder) && hasKnee && knee < c.t.DipKneeMax:
		return Decision{Phase: Dip, Matched: true, Rule: RuleDip}
	case sig.Wrist == biomech.BelowHip && hasKnee && knee < c.t.SetupKneeMax:
		return Decision{Phase: Setup, Matched: true, Rule: RuleSetup}
	}

	if prev == nil {
		return Decision{Phase: Setup, Rule: RuleHold}
	}
	return Decision{Phase: *prev, Rule: RuleHold}
}
