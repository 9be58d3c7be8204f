package domain

import (
	"errors"
	"math"
	"testing"
)

func TestDefaultWeights_SumToOne(t *testing.T) {
	w := DefaultWeights()
	if math.Abs(w.Sum()-1.0) > 1e-9 {
		t.Fatalf("default weights sum to %v, want 1.0", w.Sum())
	}

	// 0.4+0.3+0.2+0.1 evaluates to 0.9999999999999999 in float64, so the
	// defaults must count as already normalized despite the inexact sum.
	norm, changed, err := w.Normalize()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if changed {
		t.Errorf("default weights (sum %v) should not need normalization", w.Sum())
	}
	if norm != w {
		t.Errorf("normalization altered already-valid weights: %+v", norm)
	}
}

func TestNormalize_ToleratesRoundingError(t *testing.T) {
	w := Weights{Similarity: 0.5, TFIDF: 0.25, KeywordOccurrence: 0.25, Position: 1e-12}

	norm, changed, err := w.Normalize()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if changed {
		t.Errorf("sum %v is within tolerance of 1.0, should not rescale", w.Sum())
	}
	if norm != w {
		t.Errorf("weights altered: %+v", norm)
	}
}

func TestNormalize_Rescales(t *testing.T) {
	w := Weights{Similarity: 2, TFIDF: 1, KeywordOccurrence: 0.5, Position: 0.5}

	norm, changed, err := w.Normalize()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !changed {
		t.Error("expected normalization to report a change")
	}
	if math.Abs(norm.Sum()-1.0) > 1e-9 {
		t.Errorf("normalized sum = %v, want 1.0", norm.Sum())
	}
	if math.Abs(norm.Similarity-0.5) > 1e-9 {
		t.Errorf("Similarity = %v, want 0.5", norm.Similarity)
	}
}

func TestNormalize_InvalidSum(t *testing.T) {
	for name, w := range map[string]Weights{
		"all zero": {},
		"negative": {Similarity: -0.4, TFIDF: 0.2},
		"nan":      {Similarity: math.NaN()},
	} {
		t.Run(name, func(t *testing.T) {
			if _, _, err := w.Normalize(); !errors.Is(err, ErrInvalidWeights) {
				t.Fatalf("expected ErrInvalidWeights, got %v", err)
			}
		})
	}
}
