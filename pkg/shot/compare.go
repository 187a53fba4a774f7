package shot

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"shot-analysis/pkg/biomech"
)

// CompareConfig tunes form comparison.
type CompareConfig struct {
	// Tolerance is the largest per-angle difference, in degrees, that still
	// counts as matching.
	Tolerance float64
	// Falloff is the difference at which an angle stops contributing to the
	// similarity score.
	Falloff float64
	// SameFormScore is the minimum similarity for SameForm.
	SameFormScore float64
}

func DefaultCompareConfig() CompareConfig {
	return CompareConfig{
		Tolerance:     10,
		Falloff:       45,
		SameFormScore: 75,
	}
}

// AngleDelta is one angle measured in both shots.
type AngleDelta struct {
	Name  biomech.AngleName `json:"name"`
	A     float64           `json:"a"`
	B     float64           `json:"b"`
	Delta float64           `json:"delta"`
}

// Comparison describes how close two shooting forms are.
type Comparison struct {
	Similarity float64             `json:"similarity"`
	SameForm   bool                `json:"same_form"`
	Matching   int                 `json:"matching"`
	Different  int                 `json:"different"`
	MeanDelta  float64             `json:"mean_delta"`
	MaxDelta   float64             `json:"max_delta"`
	Deltas     []AngleDelta        `json:"deltas"`
	Missing    []biomech.AngleName `json:"missing,omitempty"`
}

// CompareForm compares two AngleSets angle by angle. Angles present in only one
// set are listed as missing and lower the similarity; with no shared angle the
// similarity is 0.
func CompareForm(a, b biomech.AngleSet, cfg CompareConfig) Comparison {
	var cmp Comparison
	var deltas, scores []float64

	for _, name := range biomech.AngleNames {
		va, aok := a.Get(name)
		vb, bok := b.Get(name)
		switch {
		case aok && bok:
			d := math.Abs(va - vb)
			cmp.Deltas = append(cmp.Deltas, AngleDelta{Name: name, A: va, B: vb, Delta: d})
			deltas = append(deltas, d)
			scores = append(scores, angleScore(d, cfg.Falloff))
			if d <= cfg.Tolerance {
				cmp.Matching++
			} else {
				cmp.Different++
			}
		case aok || bok:
			cmp.Missing = append(cmp.Missing, name)
		}
	}

	if len(deltas) == 0 {
		return cmp
	}

	cmp.MeanDelta = stat.Mean(deltas, nil)
	cmp.MaxDelta = floats.Max(deltas)
	cmp.Similarity = calculateSimilarity(scores, len(cmp.Missing))
	cmp.SameForm = cmp.Similarity >= cfg.SameFormScore
	return cmp
}

// angleScore falls linearly from 1 at no difference to 0 at falloff. Without
// a falloff only exact agreement scores.
func angleScore(delta, falloff float64) float64 {
	if falloff <= 0 {
		if delta == 0 {
			return 1
		}
		return 0
	}
	return math.Max(0, 1-delta/falloff)
}

func calculateSimilarity(scores []float64, missing int) float64 {
	coverage := float64(len(scores)) / float64(len(scores)+missing)
	return math.Min(100, 100*stat.Mean(scores, nil)*coverage)
}
