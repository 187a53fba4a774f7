// Package biomech turns a skeleton into named joint and trajectory angles.
//
// An angle whose joints are missing or below the visibility threshold is left
// out of the AngleSet. It is never reported as 0.
package biomech

import (
	"encoding/json"
	"fmt"
	"sort"

	"shot-analysis/pkg/geometry"
	"shot-analysis/pkg/pose"
)

// AngleName identifies one measured angle.
type AngleName string

const (
	Elbow        AngleName = "elbow"
	Knee         AngleName = "knee"
	Hip          AngleName = "hip"
	ShoulderTilt AngleName = "shoulder_tilt"
	Wrist        AngleName = "wrist"
	Release      AngleName = "release"
)

// AngleNames lists every angle the calculator can produce, in report order.
var AngleNames = []AngleName{Elbow, Knee, Hip, ShoulderTilt, Wrist, Release}

// AngleSet maps angle names to degrees at full precision.
type AngleSet map[AngleName]float64

func (a AngleSet) Get(name AngleName) (float64, bool) {
	v, ok := a[name]
	return v, ok
}

// Rounded returns a copy rounded to one decimal for presentation.
func (a AngleSet) Rounded() AngleSet {
	out := make(AngleSet, len(a))
	for k, v := range a {
		out[k] = geometry.Round1(v)
	}
	return out
}

// Names returns the present angle names in report order.
func (a AngleSet) Names() []AngleName {
	names := make([]AngleName, 0, len(a))
	for _, n := range AngleNames {
		if _, ok := a[n]; ok {
			names = append(names, n)
		}
	}
	return names
}

// MarshalJSON writes the rounded values.
func (a AngleSet) MarshalJSON() ([]byte, error) {
	rounded := make(map[string]float64, len(a))
	for k, v := range a {
		rounded[string(k)] = geometry.Round1(v)
	}
	return json.Marshal(rounded)
}

func (a AngleSet) String() string {
	keys := make([]string, 0, len(a))
	for k := range a {
		keys = append(keys, string(k))
	}
	sort.Strings(keys)
	out := ""
	for i, k := range keys {
		if i > 0 {
			out += " "
		}
		out += fmt.Sprintf("%s=%.1f", k, a[AngleName(k)])
	}
	return out
}

// SidePolicy selects how the shooting arm is chosen.
type SidePolicy int

const (
	// SideAuto picks the arm whose visible wrist is higher.
	SideAuto SidePolicy = iota
	SideRight
	SideLeft
)

// Config tunes the calculator.
type Config struct {
	// VisibilityThreshold is the minimum keypoint confidence used in an angle.
	VisibilityThreshold float64
	Side                SidePolicy
}

func DefaultConfig() Config {
	return Config{
		VisibilityThreshold: 0.5,
		Side:                SideAuto,
	}
}

// Calculator computes AngleSets. It is a value and safe for concurrent use.
type Calculator struct {
	config Config
}

func NewCalculator(cfg Config) Calculator {
	return Calculator{config: cfg}
}

func (c Calculator) Config() Config {
	return c.config
}

// ShootingSide returns the side measured for s.
func (c Calculator) ShootingSide(s pose.Skeleton) pose.Side {
	switch c.config.Side {
	case SideRight:
		return pose.Right
	case SideLeft:
		return pose.Left
	}

	rw, rok := s.Visible(pose.RightWrist, c.config.VisibilityThreshold)
	lw, lok := s.Visible(pose.LeftWrist, c.config.VisibilityThreshold)
	switch {
	case lok && !rok:
		return pose.Left
	case lok && rok && lw.Y < rw.Y:
		return pose.Left
	default:
		return pose.Right
	}
}

// Compute measures every angle whose joints are visible on the shooting side.
func (c Calculator) Compute(s pose.Skeleton) AngleSet {
	limb := pose.LimbFor(c.ShootingSide(s))
	out := make(AngleSet, len(AngleNames))

	if v, ok := c.threePoint(s, limb.Shoulder, limb.Elbow, limb.Wrist); ok {
		out[Elbow] = v
	}
	if v, ok := c.threePoint(s, limb.Hip, limb.Knee, limb.Ankle); ok {
		out[Knee] = v
	}
	if v, ok := c.threePoint(s, limb.Shoulder, limb.Hip, limb.Knee); ok {
		out[Hip] = v
	}
	if v, ok := c.threePoint(s, limb.Elbow, limb.Wrist, limb.Index); ok {
		out[Wrist] = v
	}

	ls, lok := s.Visible(pose.LeftShoulder, c.config.VisibilityThreshold)
	rs, rok := s.Visible(pose.RightShoulder, c.config.VisibilityThreshold)
	if lok && rok && ls.Point() != rs.Point() {
		out[ShoulderTilt] = geometry.Tilt(ls.Point(), rs.Point())
	}

	e, eok := s.Visible(limb.Elbow, c.config.VisibilityThreshold)
	w, wok := s.Visible(limb.Wrist, c.config.VisibilityThreshold)
	if eok && wok && e.Point() != w.Point() {
		out[Release] = geometry.LineAngle(e.Point(), w.Point())
	}

	return out
}

// threePoint measures the angle at b. Coincident points cannot be measured and
// are reported absent.
func (c Calculator) threePoint(s pose.Skeleton, a, b, cj pose.Joint) (float64, bool) {
	pa, ok := s.Visible(a, c.config.VisibilityThreshold)
	if !ok {
		return 0, false
	}
	pb, ok := s.Visible(b, c.config.VisibilityThreshold)
	if !ok {
		return 0, false
	}
	pc, ok := s.Visible(cj, c.config.VisibilityThreshold)
	if !ok {
		return 0, false
	}
	if pa.Point() == pb.Point() || pc.Point() == pb.Point() {
		return 0, false
	}
	return geometry.Angle(pa.Point(), pb.Point(), pc.Point()), true
}
