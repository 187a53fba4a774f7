// Package quality decides whether a still image of a shooter is kept for the
// curated training set. Every verdict carries its reason and the numbers that
// produced it, since curation reports group and count by rejection category.
package quality

import (
	"errors"
	"fmt"

	"shot-analysis/pkg/pose"
)

var ErrUnknownRejection = errors.New("unknown rejection category")

// Rejection is the closed set of verdict categories. Accepted means kept.
type Rejection int

const (
	Accepted Rejection = iota
	NoPerson
	PartialBody
	DribblingMotion
	AmbiguousMotion
)

var rejectionNames = [...]string{
	Accepted:        "accepted",
	NoPerson:        "no_person",
	PartialBody:     "partial_body",
	DribblingMotion: "dribbling_motion",
	AmbiguousMotion: "ambiguous_motion",
}

// Rejections lists every category in report order.
var Rejections = []Rejection{Accepted, NoPerson, PartialBody, DribblingMotion, AmbiguousMotion}

func (r Rejection) Valid() bool {
	return r >= Accepted && r <= AmbiguousMotion
}

func (r Rejection) String() string {
	if !r.Valid() {
		return fmt.Sprintf("Rejection(%d)", int(r))
	}
	return rejectionNames[r]
}

func ParseRejection(name string) (Rejection, error) {
	for i, n := range rejectionNames {
		if n == name {
			return Rejection(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownRejection, name)
}

func (r Rejection) MarshalText() ([]byte, error) {
	if !r.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownRejection, int(r))
	}
	return []byte(r.String()), nil
}

func (r *Rejection) UnmarshalText(text []byte) error {
	parsed, err := ParseRejection(string(text))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// Evidence holds the measurements behind a verdict. Fields not reached before
// the decision keep their zero values; HasElbow and WristKnown tell a
// measured 0 apart from a missing measurement.
type Evidence struct {
	Candidates    int              `json:"candidates"`
	SubjectBox    pose.BoundingBox `json:"subject_box"`
	BoxAreaRatio  float64          `json:"box_area_ratio"`
	CenterOffset  float64          `json:"center_offset"`
	HeadVisible   bool             `json:"head_visible"`
	AnklesVisible int              `json:"ankles_visible"`
	CoreVisible   int              `json:"core_visible"`

	ElbowAngle         float64 `json:"elbow_angle"`
	HasElbow           bool    `json:"has_elbow"`
	WristAboveShoulder bool    `json:"wrist_above_shoulder"`
	WristKnown         bool    `json:"wrist_known"`
}

// Verdict is produced once per image and not modified afterwards.
type Verdict struct {
	Accepted  bool      `json:"accepted"`
	Rejection Rejection `json:"category"`
	Reason    string    `json:"reason"`
	Evidence  Evidence  `json:"evidence"`
}
