// Package similarity embeds the corpus once per session and compares query
// embeddings against the cached document vectors.
package similarity

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/kailas-cloud/docrank/internal/domain"
)

// Engine caches one embedding vector per document for the session. Vectors
// are written once on first use and read-only afterward.
type Engine struct {
	embedder  domain.Embedder
	docs      []domain.Document
	batchSize int
	logger    *zap.Logger

	vectors  [][]float32
	embedded bool
}

// Result is the explicit fail-soft contract for a similarity pass: either
// computed cosine scores, or all zeros with Degraded set when embedding
// failed. Ranking degrades to neutral instead of aborting the search.
type Result struct {
	Scores   []float64
	Degraded bool
}

// NewEngine creates a similarity engine over a fixed document set. Batch
// size bounds peak memory of the one-time embedding pass and has no effect
// on output; values below 1 are clamped to 1.
func NewEngine(embedder domain.Embedder, docs []domain.Document, batchSize int, logger *zap.Logger) *Engine {
	if batchSize < 1 {
		batchSize = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		embedder:  embedder,
		docs:      docs,
		batchSize: batchSize,
		logger:    logger,
	}
}

// EmbedDocuments computes the document vectors in sequential fixed-size
// batches. Idempotent: later calls are no-ops.
func (e *Engine) EmbedDocuments(ctx context.Context) error {
	if e.embedded {
		return nil
	}

	vectors := make([][]float32, 0, len(e.docs))
	for start := 0; start < len(e.docs); start += e.batchSize {
		end := min(start+e.batchSize, len(e.docs))

		texts := make([]string, 0, end-start)
		for _, doc := range e.docs[start:end] {
			texts = append(texts, doc.Text)
		}

		batch, err := e.embedBatch(ctx, texts)
		if err != nil {
			return fmt.Errorf("embed documents [%d:%d]: %w", start, end, err)
		}
		vectors = append(vectors, batch.Embeddings...)
	}

	e.vectors = vectors
	e.embedded = true
	e.logger.Info("Calculated document embeddings", zap.Int("documents", len(e.docs)))
	return nil
}

// Similarities returns one cosine score per document, in document order,
// for the given query. Any embedding failure degrades to all-zero scores.
func (e *Engine) Similarities(ctx context.Context, query string) Result {
	if err := e.EmbedDocuments(ctx); err != nil {
		e.logger.Error("Failed to embed documents, degrading to zero similarity", zap.Error(err))
		return Result{Scores: make([]float64, len(e.docs)), Degraded: true}
	}

	q, err := e.embedder.Embed(ctx, query)
	if err != nil {
		e.logger.Error("Failed to embed query, degrading to zero similarity", zap.Error(err))
		return Result{Scores: make([]float64, len(e.docs)), Degraded: true}
	}

	scores := make([]float64, len(e.docs))
	for i, vec := range e.vectors {
		scores[i] = cosine(q.Embedding, vec)
	}
	return Result{Scores: scores}
}

func (e *Engine) embedBatch(ctx context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	if be, ok := e.embedder.(domain.BatchEmbedder); ok {
		return be.BatchEmbed(ctx, texts)
	}
	return domain.BatchFallback(ctx, e.embedder, texts)
}
