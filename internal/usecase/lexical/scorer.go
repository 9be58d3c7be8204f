// Package lexical scores documents by TF-IDF term weight. The model is
// fitted once over the full corpus at construction and read-only afterward.
package lexical

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"unicode"

	"go.uber.org/zap"

	"github.com/kailas-cloud/docrank/internal/domain"
)

// Scorer holds a fitted TF-IDF model: a vocabulary and one L2-normalized
// weight row per document.
type Scorer struct {
	vocab  map[string]int // term -> column
	terms  []string       // column -> term
	matrix [][]float64    // document rows, vocabulary columns
	logger *zap.Logger
}

// Config holds fitting settings.
type Config struct {
	// MaxFeatures caps the vocabulary to the most frequent terms across the
	// corpus. 0 means unlimited.
	MaxFeatures int
	// StopWords replaces the built-in English list when non-nil.
	StopWords []string
	Logger    *zap.Logger
}

// TermWeight is one term with its aggregate corpus weight.
type TermWeight struct {
	Term   string
	Weight float64
}

// NewScorer fits the TF-IDF model over the corpus. Fitting failure (no
// documents, or a vocabulary emptied by stop-word removal) is fatal: no
// later query could produce a meaningful lexical signal.
func NewScorer(docs []domain.Document, cfg Config) (*Scorer, error) {
	if len(docs) == 0 {
		return nil, fmt.Errorf("fit tf-idf: %w", domain.ErrEmptyCorpus)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	stop := make(map[string]struct{})
	words := cfg.StopWords
	if words == nil {
		words = DefaultStopWords
	}
	for _, w := range words {
		stop[strings.ToLower(w)] = struct{}{}
	}

	// Term counts per document plus corpus-wide totals for the
	// max-features cut.
	counts := make([]map[string]int, len(docs))
	totals := make(map[string]int)
	for i, doc := range docs {
		counts[i] = make(map[string]int)
		for _, tok := range tokenize(doc.Text) {
			if _, skip := stop[tok]; skip {
				continue
			}
			counts[i][tok]++
			totals[tok]++
		}
	}

	terms := selectVocabulary(totals, cfg.MaxFeatures)
	if len(terms) == 0 {
		return nil, fmt.Errorf("fit tf-idf: %w", domain.ErrEmptyVocabulary)
	}

	vocab := make(map[string]int, len(terms))
	for col, term := range terms {
		vocab[term] = col
	}

	// Smoothed IDF, matching the standard vectorizer formulation:
	// idf(t) = ln((1+n)/(1+df)) + 1.
	n := float64(len(docs))
	idf := make([]float64, len(terms))
	for col, term := range terms {
		df := 0.0
		for i := range docs {
			if counts[i][term] > 0 {
				df++
			}
		}
		idf[col] = math.Log((1+n)/(1+df)) + 1
	}

	matrix := make([][]float64, len(docs))
	for i := range docs {
		row := make([]float64, len(terms))
		var norm float64
		for term, count := range counts[i] {
			col, ok := vocab[term]
			if !ok {
				continue // cut by max features
			}
			w := float64(count) * idf[col]
			row[col] = w
			norm += w * w
		}
		if norm > 0 {
			norm = math.Sqrt(norm)
			for col := range row {
				row[col] /= norm
			}
		}
		matrix[i] = row
	}

	logger.Info("Fitted TF-IDF model",
		zap.Int("documents", len(docs)),
		zap.Int("vocabulary", len(terms)),
	)

	return &Scorer{
		vocab:  vocab,
		terms:  terms,
		matrix: matrix,
		logger: logger,
	}, nil
}

// ScoresFor returns the TF-IDF weight of one term for every document, in
// document order. An out-of-vocabulary term is not an error: every document
// scores zero.
func (s *Scorer) ScoresFor(term string) []float64 {
	scores := make([]float64, len(s.matrix))

	col, ok := s.vocab[strings.ToLower(term)]
	if !ok {
		s.logger.Warn("Term not in vocabulary", zap.String("term", term))
		return scores
	}

	for i, row := range s.matrix {
		scores[i] = row[col]
	}
	return scores
}

// TopTerms returns the n terms with the highest summed weight across the
// corpus, heaviest first.
func (s *Scorer) TopTerms(n int) []TermWeight {
	weights := make([]TermWeight, len(s.terms))
	for col, term := range s.terms {
		var sum float64
		for _, row := range s.matrix {
			sum += row[col]
		}
		weights[col] = TermWeight{Term: term, Weight: sum}
	}

	sort.Slice(weights, func(i, j int) bool {
		if weights[i].Weight != weights[j].Weight {
			return weights[i].Weight > weights[j].Weight
		}
		return weights[i].Term < weights[j].Term
	})

	if n < len(weights) {
		weights = weights[:n]
	}
	return weights
}

// DocumentVector returns a copy of the full weight row for one document.
func (s *Scorer) DocumentVector(i int) ([]float64, error) {
	if i < 0 || i >= len(s.matrix) {
		return nil, fmt.Errorf("document index %d out of range [0,%d)", i, len(s.matrix))
	}
	row := make([]float64, len(s.matrix[i]))
	copy(row, s.matrix[i])
	return row, nil
}

// Terms returns the vocabulary in column order.
func (s *Scorer) Terms() []string {
	terms := make([]string, len(s.terms))
	copy(terms, s.terms)
	return terms
}

// tokenize case-folds and splits on non-alphanumeric runes, dropping
// single-rune tokens the way the standard vectorizer pattern does.
func tokenize(text string) []string {
	var tokens []string
	var cur []rune
	flush := func() {
		if len(cur) >= 2 {
			tokens = append(tokens, string(cur))
		}
		cur = cur[:0]
	}
	for _, r := range strings.ToLower(text) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			cur = append(cur, r)
			continue
		}
		flush()
	}
	flush()
	return tokens
}

// selectVocabulary orders terms alphabetically, keeping only the maxFeatures
// most frequent ones when a cap is set (most frequent first for the cut,
// alphabetical for column order, deterministic either way).
func selectVocabulary(totals map[string]int, maxFeatures int) []string {
	terms := make([]string, 0, len(totals))
	for term := range totals {
		terms = append(terms, term)
	}

	if maxFeatures > 0 && len(terms) > maxFeatures {
		sort.Slice(terms, func(i, j int) bool {
			if totals[terms[i]] != totals[terms[j]] {
				return totals[terms[i]] > totals[terms[j]]
			}
			return terms[i] < terms[j]
		})
		terms = terms[:maxFeatures]
	}

	sort.Strings(terms)
	return terms
}
