package cv

// HSVBand is an inclusive OpenCV HSV range (H in 0-180, S and V in 0-255).
type HSVBand struct {
	HMin, SMin, VMin float64
	HMax, SMax, VMax float64
}

// BallConfig holds the tuning parameters of the ball localizer.
//
// The colour bands were calibrated by hand against indoor gym footage under
// sodium and LED lighting. They are empirical: the ball band stops at H=18 so
// that yellow jerseys (H 22-34) and most skin tones (low saturation) fall
// outside it, and the seam band only keeps near-black pixels. Do not re-derive
// them from a colour chart.
type BallConfig struct {
	// Ball is the brown-orange leather band.
	Ball HSVBand
	// Seam is the near-black stripe band.
	Seam HSVBand

	// SearchRadius is half the side of the square search window, as a
	// fraction of image height.
	SearchRadius float64
	// MinRadius and MaxRadius bound the reported radius, as fractions of
	// image height. A ball held by the shooter stays within 3-7% of frame
	// height at typical filming distances.
	MinRadius float64
	MaxRadius float64
	// MinArea is the smallest contour area in pixels considered a candidate.
	MinArea float64
	// KernelSize is the side of the elliptical morphology kernel.
	KernelSize int

	// Score weights. Size is normalised against a ball of ExpectedRadius and capped at 1.
	SizeWeight        float64
	CircularityWeight float64
	SeamWeight        float64
	ExpectedRadius    float64
	// SeamCoverage is the seam pixel ratio inside the bounding box that earns the full seam bonus.
	SeamCoverage float64
}

// DefaultBallConfig returns the calibrated defaults.
func DefaultBallConfig() BallConfig {
	return BallConfig{
		Ball:              HSVBand{HMin: 5, SMin: 100, VMin: 60, HMax: 18, SMax: 255, VMax: 255},
		Seam:              HSVBand{HMin: 0, SMin: 0, VMin: 0, HMax: 180, SMax: 255, VMax: 50},
		SearchRadius:      0.10,
		MinRadius:         0.03,
		MaxRadius:         0.07,
		MinArea:           50,
		KernelSize:        5,
		SizeWeight:        0.4,
		CircularityWeight: 0.4,
		SeamWeight:        0.2,
		ExpectedRadius:    0.05,
		SeamCoverage:      0.05,
	}
}
