package quality

import "math"

// SelectSubject picks the main person: the largest box, ties broken by
// closeness to the horizontal image centre. Candidates without a box use the
// extent of their visible keypoints. Candidates with no box and no keypoints
// are ignored.
func SelectSubject(candidates []Candidate, width int, threshold float64) (Candidate, bool) {
	var best Candidate
	found := false
	var bestArea, bestOffset float64
	centerX := float64(width) / 2

	for _, c := range candidates {
		if c.Box.Empty() {
			if c.Skeleton.Empty() {
				continue
			}
			c.Box = c.Skeleton.Bounds(threshold)
		}

		area := c.Box.Area()
		offset := math.Abs(c.Box.Center().X - centerX)
		if !found || area > bestArea || (area == bestArea && offset < bestOffset) {
			best, bestArea, bestOffset = c, area, offset
			found = true
		}
	}

	return best, found
}
