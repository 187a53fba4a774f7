package pose

import (
	"fmt"
	"image"
	"math"

	"shot-analysis/pkg/geometry"
)

// SourceKind tells observed keypoints apart from derived ones.
type SourceKind int

const (
	SourceDetected SourceKind = iota
	SourceFused
	SourceEstimated
)

func (k SourceKind) String() string {
	switch k {
	case SourceFused:
		return "fused"
	case SourceEstimated:
		return "estimated"
	default:
		return "detected"
	}
}

// Source tags where a keypoint came from. Detector is set for SourceDetected only.
type Source struct {
	Kind     SourceKind
	Detector string
}

func DetectedBy(detector string) Source {
	return Source{Kind: SourceDetected, Detector: detector}
}

var (
	Fused     = Source{Kind: SourceFused}
	Estimated = Source{Kind: SourceEstimated}
)

func (s Source) String() string {
	if s.Kind == SourceDetected {
		return s.Detector
	}
	return s.Kind.String()
}

func (s Source) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Keypoint is one landmark of one subject in one frame. It is a value: copies
// never alias.
type Keypoint struct {
	Joint      Joint   `json:"joint"`
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Confidence float64 `json:"confidence"`
	Source     Source  `json:"source"`
}

// NewKeypoint validates the joint and clamps confidence into [0,1].
func NewKeypoint(j Joint, x, y, confidence float64, src Source) (Keypoint, error) {
	if !j.Valid() {
		return Keypoint{}, fmt.Errorf("%w: %d", ErrUnknownJoint, int(j))
	}
	return Keypoint{
		Joint:      j,
		X:          x,
		Y:          y,
		Confidence: clamp01(confidence),
		Source:     src,
	}, nil
}

func (k Keypoint) Point() geometry.Point {
	return geometry.Point{X: k.X, Y: k.Y}
}

// Visible reports whether the confidence reaches the threshold.
func (k Keypoint) Visible(threshold float64) bool {
	return k.Confidence >= threshold
}

// BoundingBox is an axis aligned person box in pixels.
type BoundingBox struct {
	MinX float64 `json:"min_x"`
	MinY float64 `json:"min_y"`
	MaxX float64 `json:"max_x"`
	MaxY float64 `json:"max_y"`
}

func (b BoundingBox) Width() float64  { return b.MaxX - b.MinX }
func (b BoundingBox) Height() float64 { return b.MaxY - b.MinY }

func (b BoundingBox) Area() float64 {
	if b.Empty() {
		return 0
	}
	return b.Width() * b.Height()
}

func (b BoundingBox) Empty() bool {
	return b.MaxX <= b.MinX || b.MaxY <= b.MinY
}

func (b BoundingBox) Center() geometry.Point {
	return geometry.Point{X: (b.MinX + b.MaxX) / 2, Y: (b.MinY + b.MaxY) / 2}
}

func (b BoundingBox) Rect() image.Rectangle {
	return image.Rect(int(b.MinX), int(b.MinY), int(b.MaxX), int(b.MaxY))
}

// Contains reports whether p lies inside the box, edges included.
func (b BoundingBox) Contains(p geometry.Point) bool {
	return p.X >= b.MinX && p.X <= b.MaxX && p.Y >= b.MinY && p.Y <= b.MaxY
}

// Overlap is the intersection area over the smaller of the two areas, in
// [0,1]. A degenerate box counts as fully overlapping when its centre lies
// inside the other box.
func (b BoundingBox) Overlap(o BoundingBox) float64 {
	switch {
	case b.Empty() && o.Empty():
		if b.Center() == o.Center() {
			return 1
		}
		return 0
	case b.Empty():
		if o.Contains(b.Center()) {
			return 1
		}
		return 0
	case o.Empty():
		if b.Contains(o.Center()) {
			return 1
		}
		return 0
	}

	inter := BoundingBox{
		MinX: math.Max(b.MinX, o.MinX), MinY: math.Max(b.MinY, o.MinY),
		MaxX: math.Min(b.MaxX, o.MaxX), MaxY: math.Min(b.MaxY, o.MaxY),
	}
	return inter.Area() / math.Min(b.Area(), o.Area())
}

// Detection is one person as reported by one detector. Person is the
// detector's own index and says nothing about other detectors' numbering.
type Detection struct {
	Detector  string      `json:"detector"`
	Person    int         `json:"person"`
	Box       BoundingBox `json:"box"`
	Keypoints []Keypoint  `json:"keypoints"`
}

// Extent is Box when set, otherwise the extent of all keypoints.
func (d Detection) Extent() BoundingBox {
	if !d.Box.Empty() || len(d.Keypoints) == 0 {
		return d.Box
	}
	ext := BoundingBox{MinX: d.Keypoints[0].X, MinY: d.Keypoints[0].Y, MaxX: d.Keypoints[0].X, MaxY: d.Keypoints[0].Y}
	for _, k := range d.Keypoints[1:] {
		ext.MinX = math.Min(ext.MinX, k.X)
		ext.MinY = math.Min(ext.MinY, k.Y)
		ext.MaxX = math.Max(ext.MaxX, k.X)
		ext.MaxY = math.Max(ext.MaxY, k.Y)
	}
	return ext
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func (s *Source) UnmarshalText(text []byte) error {
	switch string(text) {
	case "fused":
		*s = Fused
	case "estimated":
		*s = Estimated
	default:
		*s = DetectedBy(string(text))
	}
	return nil
}
