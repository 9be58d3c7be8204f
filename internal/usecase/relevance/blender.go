// Package relevance blends the per-document signals (cosine similarity,
// TF-IDF weight, keyword occurrence and keyword position) into one ranked
// relevance score. This is the scoring core.
package relevance

import (
	"fmt"
	"math"
	"strings"

	"go.uber.org/zap"

	"github.com/kailas-cloud/docrank/internal/domain"
)

// Blender combines the four relevance signals under a fixed weighting.
type Blender struct {
	weights domain.Weights
	logger  *zap.Logger
}

// NewBlender validates the weights at construction. Weights that do not sum
// to 1.0 are rescaled with a warning; a non-positive sum is fatal.
func NewBlender(weights domain.Weights, logger *zap.Logger) (*Blender, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	norm, changed, err := weights.Normalize()
	if err != nil {
		return nil, fmt.Errorf("validate weights: %w", err)
	}
	if changed {
		logger.Warn("Weights do not sum to 1.0, normalizing",
			zap.Float64("sum", weights.Sum()),
			zap.Float64("similarity", norm.Similarity),
			zap.Float64("tfidf", norm.TFIDF),
			zap.Float64("keyword_occurrence", norm.KeywordOccurrence),
			zap.Float64("position", norm.Position),
		)
	}

	return &Blender{weights: norm, logger: logger}, nil
}

// Weights returns the normalized weighting in effect.
func (b *Blender) Weights() domain.Weights { return b.weights }

// Blend produces one relevance record per document. The three input
// sequences must have equal length: a mismatch is a structural error and
// aborts immediately. A failure to compute the metrics of one document
// (non-finite inputs) zeroes that record only and tags it Degraded.
func (b *Blender) Blend(
	docs []domain.Document,
	similarities []float64,
	tfidfScores []float64,
	keyword string,
) ([]domain.RelevanceRecord, error) {
	if len(similarities) != len(docs) || len(tfidfScores) != len(docs) {
		return nil, fmt.Errorf(
			"documents=%d similarities=%d tfidf=%d: %w",
			len(docs), len(similarities), len(tfidfScores), domain.ErrLengthMismatch)
	}

	records := make([]domain.RelevanceRecord, 0, len(docs))
	for i, doc := range docs {
		record, ok := b.blendOne(doc, similarities[i], tfidfScores[i], keyword)
		if !ok {
			b.logger.Error("Failed to compute relevance, zeroing record",
				zap.String("document", doc.Name))
			record = domain.RelevanceRecord{
				Name:               doc.Name,
				AvgKeywordPosition: domain.PositionAbsent,
				Degraded:           true,
			}
		}
		records = append(records, record)
	}
	return records, nil
}

func (b *Blender) blendOne(doc domain.Document, sim, tfidf float64, keyword string) (domain.RelevanceRecord, bool) {
	count, percentage, avgPos, totalTokens := b.keywordMetrics(doc, keyword)

	// Earlier occurrence scores closer to 1; absent keyword scores 0.
	// Not clamped: both terms share one tokenization, so the ratio cannot
	// exceed 1.
	positionScore := 0.0
	if avgPos >= 0 {
		positionScore = 1 - avgPos/float64(totalTokens)
	}

	relevance := b.weights.Similarity*sim +
		b.weights.TFIDF*tfidf +
		b.weights.KeywordOccurrence*(percentage/100) +
		b.weights.Position*positionScore

	// Non-finite inputs poison the blend; degrade this record only.
	if math.IsNaN(relevance) || math.IsInf(relevance, 0) {
		return domain.RelevanceRecord{}, false
	}

	return domain.RelevanceRecord{
		Name:               doc.Name,
		Relevance:          relevance,
		Similarity:         sim,
		TFIDF:              tfidf,
		KeywordCount:       count,
		KeywordPercentage:  percentage,
		AvgKeywordPosition: avgPos,
	}, true
}

// keywordMetrics counts exact case-folded token matches and their mean
// zero-based position. A document with no tokens is anomalous but not
// fatal: zero metrics and the absent-position sentinel.
func (b *Blender) keywordMetrics(doc domain.Document, keyword string) (count int, percentage, avgPos float64, totalTokens int) {
	words := strings.Fields(strings.ToLower(doc.Text))
	totalTokens = len(words)

	if totalTokens == 0 {
		b.logger.Warn("Empty document", zap.String("document", doc.Name))
		return 0, 0, domain.PositionAbsent, 0
	}

	keyword = strings.ToLower(keyword)
	var positionSum int
	for i, word := range words {
		if word == keyword {
			count++
			positionSum += i
		}
	}

	percentage = float64(count) / float64(totalTokens) * 100
	avgPos = domain.PositionAbsent
	if count > 0 {
		avgPos = float64(positionSum) / float64(count)
	}
	return count, percentage, avgPos, totalTokens
}
