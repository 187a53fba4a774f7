// Package pose defines the shared keypoint and skeleton value types and the
// fusion of several detectors' keypoints into one skeleton.
package pose

import (
	"encoding/json"
	"errors"
	"fmt"
)

var ErrUnknownJoint = errors.New("unknown joint")

// Joint is a canonical body landmark. Numbering follows the COCO-17 order with
// hand and foot landmarks appended.
type Joint int

const (
	Nose Joint = iota
	LeftEye
	RightEye
	LeftEar
	RightEar
	LeftShoulder
	RightShoulder
	LeftElbow
	RightElbow
	LeftWrist
	RightWrist
	LeftHip
	RightHip
	LeftKnee
	RightKnee
	LeftAnkle
	RightAnkle
	LeftIndex
	RightIndex
	LeftHeel
	RightHeel
	LeftFootIndex
	RightFootIndex
	NumJoints
)

var jointNames = [NumJoints]string{
	"nose",
	"left_eye",
	"right_eye",
	"left_ear",
	"right_ear",
	"left_shoulder",
	"right_shoulder",
	"left_elbow",
	"right_elbow",
	"left_wrist",
	"right_wrist",
	"left_hip",
	"right_hip",
	"left_knee",
	"right_knee",
	"left_ankle",
	"right_ankle",
	"left_index",
	"right_index",
	"left_heel",
	"right_heel",
	"left_foot_index",
	"right_foot_index",
}

// HeadJoints are the landmarks any one of which counts as a visible head.
var HeadJoints = []Joint{Nose, LeftEye, RightEye, LeftEar, RightEar}

func (j Joint) String() string {
	if !j.Valid() {
		return fmt.Sprintf("joint(%d)", int(j))
	}
	return jointNames[j]
}

func (j Joint) Valid() bool {
	return j >= 0 && j < NumJoints
}

// Head reports whether j is one of HeadJoints.
func (j Joint) Head() bool {
	return j >= Nose && j <= RightEar
}

// ParseJoint maps a joint name to its Joint. Unknown names are an error so a
// typo in a detector export fails at load time rather than silently dropping data.
func ParseJoint(name string) (Joint, error) {
	for i, n := range jointNames {
		if n == name {
			return Joint(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownJoint, name)
}

func (j Joint) MarshalText() ([]byte, error) {
	if !j.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownJoint, int(j))
	}
	return []byte(j.String()), nil
}

func (j *Joint) UnmarshalText(text []byte) error {
	parsed, err := ParseJoint(string(text))
	if err != nil {
		return err
	}
	*j = parsed
	return nil
}

// Side selects the left or right limb chain.
type Side int

const (
	Right Side = iota
	Left
)

func (s Side) String() string {
	if s == Left {
		return "left"
	}
	return "right"
}

func (s Side) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// Limb holds the joints of one side of the body.
type Limb struct {
	Shoulder, Elbow, Wrist, Index Joint
	Hip, Knee, Ankle              Joint
}

// LimbFor returns the joints of the given side.
func LimbFor(s Side) Limb {
	if s == Left {
		return Limb{
			Shoulder: LeftShoulder, Elbow: LeftElbow, Wrist: LeftWrist, Index: LeftIndex,
			Hip: LeftHip, Knee: LeftKnee, Ankle: LeftAnkle,
		}
	}
	return Limb{
		Shoulder: RightShoulder, Elbow: RightElbow, Wrist: RightWrist, Index: RightIndex,
		Hip: RightHip, Knee: RightKnee, Ankle: RightAnkle,
	}
}
