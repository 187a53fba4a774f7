package phase

import (
	"time"

	"shot-analysis/pkg/biomech"
)

// SessionConfig tunes the video-level state machine.
type SessionConfig struct {
	// ResetFrames is how many consecutive SETUP-matching frames return a
	// session that is past SETUP to SETUP and start a new shot attempt.
	ResetFrames int
	// PromoteFollowThrough moves RELEASE to FOLLOW_THROUGH on the first held
	// frame whose wrist is back below the shoulder.
	PromoteFollowThrough bool
}

func DefaultSessionConfig() SessionConfig {
	return SessionConfig{
		ResetFrames:          5,
		PromoteFollowThrough: true,
	}
}

// Transition records entry into a phase.
type Transition struct {
	Phase     Phase         `json:"phase"`
	Frame     int           `json:"frame"`
	Timestamp time.Duration `json:"timestamp"`
	Shot      int           `json:"shot"`
}

// Step is the result of feeding one frame to a Session.
type Step struct {
	Phase   Phase    `json:"phase"`
	Raw     Decision `json:"raw"`
	Changed bool     `json:"changed"`
	Shot    int      `json:"shot"`
}

// Session carries the previous phase across the frames of one video. Within a
// shot it only moves forward; raw classifications that point backwards are
// treated as flicker. A new shot starts after ResetFrames consecutive
// SETUP-matching frames or an explicit Reset.
//
// A Session is not safe for concurrent use; use one per video.
type Session struct {
	classifier Classifier
	config     SessionConfig

	current  Phase
	started  bool
	shot     int
	setupRun int
	log      []Transition
}

func NewSession(c Classifier, cfg SessionConfig) *Session {
	return &Session{classifier: c, config: cfg}
}

// Current returns the current phase; ok is false before the first frame.
func (s *Session) Current() (Phase, bool) {
	return s.current, s.started
}

// Shot returns the 1-based shot attempt number, 0 before the first frame.
func (s *Session) Shot() int {
	return s.shot
}

// Log returns a copy of the transition log. Consecutive entries never repeat
// a phase.
func (s *Session) Log() []Transition {
	return append([]Transition(nil), s.log...)
}

// Observe classifies one frame and advances the session.
func (s *Session) Observe(frame int, ts time.Duration, sig biomech.Signals) Step {
	if !s.started {
		raw := s.classifier.Classify(sig, nil)
		s.started = true
		s.shot = 1
		s.enter(raw.Phase, frame, ts)
		return Step{Phase: raw.Phase, Raw: raw, Changed: true, Shot: s.shot}
	}

	prev := s.current
	raw := s.classifier.Classify(sig, &prev)
	next := prev

	setupMatch := raw.Matched && raw.Phase == Setup
	if setupMatch {
		s.setupRun++
	} else {
		s.setupRun = 0
	}

	switch {
	case setupMatch && prev != Setup:
		if s.setupRun >= s.config.ResetFrames {
			next = Setup
			s.shot++
		}
	case raw.Matched && raw.Phase > prev:
		next = raw.Phase
	case !raw.Matched && prev == Release && s.config.PromoteFollowThrough && wristDropped(sig):
		next = FollowThrough
	}

	changed := next != prev
	if changed {
		s.enter(next, frame, ts)
	}
	return Step{Phase: next, Raw: raw, Changed: changed, Shot: s.shot}
}

// Reset is the external signal that a new shot attempt begins at frame.
func (s *Session) Reset(frame int, ts time.Duration) {
	s.setupRun = 0
	if !s.started {
		s.started = true
		s.shot = 1
		s.enter(Setup, frame, ts)
		return
	}
	s.shot++
	if s.current != Setup {
		s.enter(Setup, frame, ts)
	}
}

func (s *Session) enter(p Phase, frame int, ts time.Duration) {
	s.current = p
	s.log = append(s.log, Transition{Phase: p, Frame: frame, Timestamp: ts, Shot: s.shot})
}

func wristDropped(sig biomech.Signals) bool {
	return sig.Wrist == biomech.BetweenHipAndShoulder || sig.Wrist == biomech.BelowHip
}
