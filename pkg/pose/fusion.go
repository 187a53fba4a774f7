package pose

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// FuseJoint merges independent estimates of one joint. A single candidate is
// passed through unchanged. Several candidates give the confidence weighted
// centroid with the mean confidence; when every confidence is zero the first
// candidate's position is used. ok is false for no candidates.
func FuseJoint(candidates []Keypoint) (Keypoint, bool) {
	switch len(candidates) {
	case 0:
		return Keypoint{}, false
	case 1:
		return candidates[0], true
	}

	fused := Keypoint{
		Joint:  candidates[0].Joint,
		Source: Fused,
	}

	confs := make([]float64, len(candidates))
	var xs, ys, ws []float64
	for i, c := range candidates {
		confs[i] = c.Confidence
		// zero weight adds nothing to the centroid
		if c.Confidence > 0 {
			xs = append(xs, c.X)
			ys = append(ys, c.Y)
			ws = append(ws, c.Confidence)
		}
	}
	fused.Confidence = stat.Mean(confs, nil)

	switch {
	case floats.Sum(ws) == 0:
		fused.X, fused.Y = candidates[0].X, candidates[0].Y
	case len(ws) == 1:
		fused.X, fused.Y = xs[0], ys[0]
	default:
		fused.X = stat.Mean(xs, ws)
		fused.Y = stat.Mean(ys, ws)
	}
	return fused, true
}

// Fuse merges the keypoints of several detections of the same subject into a
// single skeleton. Joints no detection reported are left out.
func Fuse(detections ...Detection) Skeleton {
	candidates := make(map[Joint][]Keypoint)
	sources := make(map[Joint][]string)

	for _, d := range detections {
		seen := make(map[Joint]bool, len(d.Keypoints))
		for _, kp := range d.Keypoints {
			// a detector reporting a joint twice counts once
			if !kp.Joint.Valid() || seen[kp.Joint] {
				continue
			}
			seen[kp.Joint] = true
			candidates[kp.Joint] = append(candidates[kp.Joint], kp)
			sources[kp.Joint] = append(sources[kp.Joint], d.Detector)
		}
	}

	s := Skeleton{
		joints:       make(map[Joint]Keypoint, len(candidates)),
		contributors: make(map[Joint][]string, len(candidates)),
	}
	for j, cands := range candidates {
		fused, ok := FuseJoint(cands)
		if !ok {
			continue
		}
		s.joints[j] = fused
		s.contributors[j] = sources[j]
	}
	return s
}

// FuseBoxes returns the union of the non-empty boxes.
func FuseBoxes(detections ...Detection) BoundingBox {
	var out BoundingBox
	for _, d := range detections {
		if d.Box.Empty() {
			continue
		}
		if out.Empty() {
			out = d.Box
			continue
		}
		out.MinX = min(out.MinX, d.Box.MinX)
		out.MinY = min(out.MinY, d.Box.MinY)
		out.MaxX = max(out.MaxX, d.Box.MaxX)
		out.MaxY = max(out.MaxY, d.Box.MaxY)
	}
	return out
}
