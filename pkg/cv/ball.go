// Package cv localizes the basketball near the shooter's hands with colour and
// shape heuristics:
//
//  1. square search window around the anchor centroid
//  2. HSV threshold of the leather band and of the seam band
//  3. morphological close then open of the leather mask
//  4. contour scoring by size, circularity and seam coverage
//  5. radius from the minimum enclosing circle, clamped to a plausible band
//
// Searching the whole frame is not supported: the colour is not distinctive
// enough without a location prior.
package cv

import (
	"image"
	"math"

	"gocv.io/x/gocv"

	"shot-analysis/pkg/geometry"
)

// Ball method tags.
const (
	MethodColorContour = "color_contour"
)

// BallDetection is a located ball in full image coordinates.
type BallDetection struct {
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Radius     float64 `json:"radius"`
	Confidence float64 `json:"confidence"`
	Method     string  `json:"method"`

	// evidence
	Area        float64 `json:"area"`
	Circularity float64 `json:"circularity"`
	SeamRatio   float64 `json:"seam_ratio"`
}

func (b BallDetection) Center() geometry.Point {
	return geometry.Point{X: b.X, Y: b.Y}
}

// BallLocalizer owns the morphology kernel; call Close when done. Locate does
// not mutate the localizer and may be called from several goroutines.
type BallLocalizer struct {
	config BallConfig
	kernel gocv.Mat
}

func NewBallLocalizer(cfg BallConfig) *BallLocalizer {
	size := cfg.KernelSize
	if size < 1 {
		size = 1
	}
	return &BallLocalizer{
		config: cfg,
		kernel: gocv.GetStructuringElement(gocv.MorphEllipse, image.Pt(size, size)),
	}
}

func (bl *BallLocalizer) Close() {
	bl.kernel.Close()
}

func (bl *BallLocalizer) Config() BallConfig {
	return bl.config
}

// Locate searches a BGR image for the ball around the anchor points. It returns
// false when there are no anchors, the window falls outside the image, or no
// contour clears the area threshold.
func (bl *BallLocalizer) Locate(img gocv.Mat, anchors []geometry.Point) (BallDetection, bool) {
	if len(anchors) == 0 || img.Empty() {
		return BallDetection{}, false
	}

	height := float64(img.Rows())
	window := bl.searchWindow(anchors, img.Cols(), img.Rows())
	if window.Empty() {
		return BallDetection{}, false
	}

	region := img.Region(window)
	defer region.Close()

	hsv := gocv.NewMat()
	defer hsv.Close()
	gocv.CvtColor(region, &hsv, gocv.ColorBGRToHSV)

	ballMask := bl.threshold(hsv, bl.config.Ball)
	defer ballMask.Close()
	seamMask := bl.threshold(hsv, bl.config.Seam)
	defer seamMask.Close()

	// Close bridges the seams, open removes speckle
	closed := gocv.NewMat()
	defer closed.Close()
	gocv.MorphologyEx(ballMask, &closed, gocv.MorphClose, bl.kernel)
	cleaned := gocv.NewMat()
	defer cleaned.Close()
	gocv.MorphologyEx(closed, &cleaned, gocv.MorphOpen, bl.kernel)

	contours := gocv.FindContours(cleaned, gocv.RetrievalExternal, gocv.ChainApproxSimple)
	defer contours.Close()

	var best BallDetection
	bestScore := -1.0
	bestIdx := -1

	for i := 0; i < contours.Size(); i++ {
		contour := contours.At(i)
		area := gocv.ContourArea(contour)
		if area < bl.config.MinArea {
			continue
		}

		perimeter := gocv.ArcLength(contour, true)
		circularity := 0.0
		if perimeter > 0 {
			circularity = math.Min(1, 4*math.Pi*area/(perimeter*perimeter))
		}

		rect := gocv.BoundingRect(contour)
		seamRatio := seamCoverage(seamMask, rect)

		score := bl.score(area, circularity, seamRatio, height)
		if score > bestScore {
			bestScore = score
			bestIdx = i
			best = BallDetection{
				Area:        area,
				Circularity: circularity,
				SeamRatio:   seamRatio,
				Confidence:  score,
				Method:      MethodColorContour,
			}
		}
	}

	if bestIdx < 0 {
		return BallDetection{}, false
	}

	cx, cy, radius := gocv.MinEnclosingCircle(contours.At(bestIdx))
	best.X = float64(cx) + float64(window.Min.X)
	best.Y = float64(cy) + float64(window.Min.Y)
	best.Radius = clamp(float64(radius), bl.config.MinRadius*height, bl.config.MaxRadius*height)

	return best, true
}

// searchWindow centres a square of side 2*SearchRadius*height on the anchor
// centroid, clipped to the image.
func (bl *BallLocalizer) searchWindow(anchors []geometry.Point, cols, rows int) image.Rectangle {
	var sx, sy float64
	for _, a := range anchors {
		sx += a.X
		sy += a.Y
	}
	cx := sx / float64(len(anchors))
	cy := sy / float64(len(anchors))

	half := bl.config.SearchRadius * float64(rows)
	window := image.Rect(
		int(math.Floor(cx-half)), int(math.Floor(cy-half)),
		int(math.Ceil(cx+half)), int(math.Ceil(cy+half)),
	)
	return window.Intersect(image.Rect(0, 0, cols, rows))
}

func (bl *BallLocalizer) threshold(hsv gocv.Mat, band HSVBand) gocv.Mat {
	mask := gocv.NewMat()
	gocv.InRangeWithScalar(hsv,
		gocv.NewScalar(band.HMin, band.SMin, band.VMin, 0),
		gocv.NewScalar(band.HMax, band.SMax, band.VMax, 0),
		&mask)
	return mask
}

func (bl *BallLocalizer) score(area, circularity, seamRatio, height float64) float64 {
	expected := bl.config.ExpectedRadius * height
	sizeScore := 0.0
	if expected > 0 {
		sizeScore = math.Min(1, area/(math.Pi*expected*expected))
	}

	seamScore := 0.0
	if bl.config.SeamCoverage > 0 {
		seamScore = math.Min(1, seamRatio/bl.config.SeamCoverage)
	}

	return bl.config.SizeWeight*sizeScore +
		bl.config.CircularityWeight*circularity +
		bl.config.SeamWeight*seamScore
}

// seamCoverage is the share of seam pixels inside rect.
func seamCoverage(seamMask gocv.Mat, rect image.Rectangle) float64 {
	rect = rect.Intersect(image.Rect(0, 0, seamMask.Cols(), seamMask.Rows()))
	if rect.Empty() {
		return 0
	}
	roi := seamMask.Region(rect)
	defer roi.Close()
	return float64(gocv.CountNonZero(roi)) / float64(rect.Dx()*rect.Dy())
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
