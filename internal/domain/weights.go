package domain

import (
	"fmt"
	"math"
)

// Weights assigns one non-negative weight to each relevance signal. The
// fields are fixed so a missing component is a compile error, not a missing
// map key at runtime.
type Weights struct {
	Similarity        float64
	TFIDF             float64
	KeywordOccurrence float64
	Position          float64
}

// DefaultWeights returns the stock signal weighting. Sums to 1.0.
func DefaultWeights() Weights {
	return Weights{
		Similarity:        0.4,
		TFIDF:             0.3,
		KeywordOccurrence: 0.2,
		Position:          0.1,
	}
}

// Sum returns the total of all four weights.
func (w Weights) Sum() float64 {
	return w.Similarity + w.TFIDF + w.KeywordOccurrence + w.Position
}

// sumTolerance bounds the float64 rounding error of summing four weights.
// The stock 0.4+0.3+0.2+0.1 does not evaluate to exactly 1.0.
const sumTolerance = 1e-9

// Normalize rescales the weights so they sum to 1.0. The second return value
// reports whether rescaling changed anything; sums already within
// sumTolerance of 1.0 are left untouched. A non-positive or non-finite sum
// cannot be normalized and yields ErrInvalidWeights.
func (w Weights) Normalize() (Weights, bool, error) {
	sum := w.Sum()
	if sum <= 0 || math.IsNaN(sum) || math.IsInf(sum, 0) {
		return Weights{}, false, fmt.Errorf("weights sum to %v: %w", sum, ErrInvalidWeights)
	}
	if math.Abs(sum-1.0) < sumTolerance {
		return w, false, nil
	}
	return Weights{
		Similarity:        w.Similarity / sum,
		TFIDF:             w.TFIDF / sum,
		KeywordOccurrence: w.KeywordOccurrence / sum,
		Position:          w.Position / sum,
	}, true, nil
}
