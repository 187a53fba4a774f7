package shot

import (
	"shot-analysis/pkg/pose"
	"shot-analysis/pkg/quality"
)

// Group assigns detections to people and fuses each person's keypoints. A
// detection joins the person whose extent it overlaps most, at least
// minOverlap, unless that person already has a detection from the same
// detector. Detections with neither a box nor keypoints are dropped.
func Group(detections []pose.Detection, minOverlap float64) []quality.Candidate {
	type person struct {
		extent pose.BoundingBox
		dets   []pose.Detection
		seen   map[string]bool
	}
	var people []*person

	for _, d := range detections {
		if d.Box.Empty() && len(d.Keypoints) == 0 {
			continue
		}
		ext := d.Extent()

		var best *person
		bestOverlap := 0.0
		for _, p := range people {
			if p.seen[d.Detector] {
				continue
			}
			if o := p.extent.Overlap(ext); o >= minOverlap && o > bestOverlap {
				best, bestOverlap = p, o
			}
		}

		if best == nil {
			people = append(people, &person{
				extent: ext,
				dets:   []pose.Detection{d},
				seen:   map[string]bool{d.Detector: true},
			})
			continue
		}
		best.dets = append(best.dets, d)
		best.seen[d.Detector] = true
		best.extent = union(best.extent, ext)
	}

	out := make([]quality.Candidate, 0, len(people))
	for _, p := range people {
		out = append(out, quality.Candidate{
			Box:      pose.FuseBoxes(p.dets...),
			Skeleton: pose.Fuse(p.dets...),
		})
	}
	return out
}

// union spans both extents; degenerate extents count as points.
func union(a, b pose.BoundingBox) pose.BoundingBox {
	return pose.BoundingBox{
		MinX: min(a.MinX, b.MinX), MinY: min(a.MinY, b.MinY),
		MaxX: max(a.MaxX, b.MaxX), MaxY: max(a.MaxY, b.MaxY),
	}
}
