package similarity

import (
	"context"
	"errors"

	"github.com/kailas-cloud/docrank/internal/domain"
)

// mockEmbedder maps each known text to a fixed vector.
type mockEmbedder struct {
	vectors    map[string][]float32
	embedErr   error
	queryErr   error
	embedCalls int
	batchCalls int
}

func (m *mockEmbedder) vectorFor(text string) ([]float32, error) {
	vec, ok := m.vectors[text]
	if !ok {
		return nil, errors.New("no vector for text: " + text)
	}
	return vec, nil
}

func (m *mockEmbedder) Embed(_ context.Context, text string) (domain.EmbeddingResult, error) {
	m.embedCalls++
	if m.queryErr != nil {
		return domain.EmbeddingResult{}, m.queryErr
	}
	vec, err := m.vectorFor(text)
	if err != nil {
		return domain.EmbeddingResult{}, err
	}
	return domain.EmbeddingResult{Embedding: vec}, nil
}

func (m *mockEmbedder) BatchEmbed(_ context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	m.batchCalls++
	if m.embedErr != nil {
		return domain.BatchEmbeddingResult{}, m.embedErr
	}
	embeddings := make([][]float32, len(texts))
	for i, text := range texts {
		vec, err := m.vectorFor(text)
		if err != nil {
			return domain.BatchEmbeddingResult{}, err
		}
		embeddings[i] = vec
	}
	return domain.BatchEmbeddingResult{Embeddings: embeddings}, nil
}

func docs(texts ...string) []domain.Document {
	out := make([]domain.Document, len(texts))
	for i, t := range texts {
		out[i] = domain.Document{Name: string(rune('a'+i)) + ".txt", Text: t}
	}
	return out
}
