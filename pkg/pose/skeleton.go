package pose

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
)

var ErrDuplicateJoint = errors.New("duplicate joint in skeleton")

// Skeleton maps joints to keypoints for one subject in one frame. It holds at
// most one keypoint per joint and is read-only after construction.
type Skeleton struct {
	joints       map[Joint]Keypoint
	contributors map[Joint][]string
}

// NewSkeleton builds a skeleton, rejecting a second keypoint for the same joint.
func NewSkeleton(kps ...Keypoint) (Skeleton, error) {
	s := Skeleton{joints: make(map[Joint]Keypoint, len(kps))}
	for _, kp := range kps {
		if !kp.Joint.Valid() {
			return Skeleton{}, fmt.Errorf("%w: %d", ErrUnknownJoint, int(kp.Joint))
		}
		if _, exists := s.joints[kp.Joint]; exists {
			return Skeleton{}, fmt.Errorf("%w: %s", ErrDuplicateJoint, kp.Joint)
		}
		s.joints[kp.Joint] = kp
	}
	return s, nil
}

// Get returns the keypoint for a joint, if present at any confidence.
func (s Skeleton) Get(j Joint) (Keypoint, bool) {
	kp, ok := s.joints[j]
	return kp, ok
}

// Visible returns the keypoint only when it reaches the confidence threshold.
func (s Skeleton) Visible(j Joint, threshold float64) (Keypoint, bool) {
	kp, ok := s.joints[j]
	if !ok || !kp.Visible(threshold) {
		return Keypoint{}, false
	}
	return kp, true
}

// CountVisible counts how many of the given joints reach the threshold.
func (s Skeleton) CountVisible(threshold float64, joints ...Joint) int {
	n := 0
	for _, j := range joints {
		if _, ok := s.Visible(j, threshold); ok {
			n++
		}
	}
	return n
}

// CountAbove counts how many of the given joints are strictly above the threshold.
func (s Skeleton) CountAbove(threshold float64, joints ...Joint) int {
	n := 0
	for _, j := range joints {
		if kp, ok := s.joints[j]; ok && kp.Confidence > threshold {
			n++
		}
	}
	return n
}

func (s Skeleton) Len() int {
	return len(s.joints)
}

func (s Skeleton) Empty() bool {
	return len(s.joints) == 0
}

// Keypoints returns the keypoints ordered by joint.
func (s Skeleton) Keypoints() []Keypoint {
	out := make([]Keypoint, 0, len(s.joints))
	for _, kp := range s.joints {
		out = append(out, kp)
	}
	sort.Slice(out, func(i, k int) bool { return out[i].Joint < out[k].Joint })
	return out
}

// Contributors lists the detectors whose keypoints were fused into a joint.
func (s Skeleton) Contributors(j Joint) []string {
	return append([]string(nil), s.contributors[j]...)
}

// Estimated reports whether any keypoint was synthesized rather than observed.
func (s Skeleton) Estimated() bool {
	for _, kp := range s.joints {
		if kp.Source.Kind == SourceEstimated {
			return true
		}
	}
	return false
}

// Bounds returns the box spanned by keypoints at or above the threshold.
func (s Skeleton) Bounds(threshold float64) BoundingBox {
	box := BoundingBox{MinX: math.Inf(1), MinY: math.Inf(1), MaxX: math.Inf(-1), MaxY: math.Inf(-1)}
	found := false
	for _, kp := range s.joints {
		if !kp.Visible(threshold) {
			continue
		}
		found = true
		box.MinX = math.Min(box.MinX, kp.X)
		box.MinY = math.Min(box.MinY, kp.Y)
		box.MaxX = math.Max(box.MaxX, kp.X)
		box.MaxY = math.Max(box.MaxY, kp.Y)
	}
	if !found {
		return BoundingBox{}
	}
	return box
}

type skeletonJSON struct {
	Keypoints    []Keypoint          `json:"keypoints"`
	Contributors map[string][]string `json:"contributors,omitempty"`
}

func (s Skeleton) MarshalJSON() ([]byte, error) {
	out := skeletonJSON{Keypoints: s.Keypoints()}
	if len(s.contributors) > 0 {
		out.Contributors = make(map[string][]string, len(s.contributors))
		for j, ids := range s.contributors {
			out.Contributors[j.String()] = ids
		}
	}
	return json.Marshal(out)
}
