package domain

import "errors"

// Sentinel errors shared between layers.
var (
	// ErrFolderNotFound signals a missing documents folder.
	ErrFolderNotFound = errors.New("documents folder not found")
	// ErrLengthMismatch signals input sequences of contradictory lengths.
	ErrLengthMismatch = errors.New("input length mismatch")
	// ErrEmptyCorpus signals that no documents were available for fitting.
	ErrEmptyCorpus = errors.New("empty corpus")
	// ErrEmptyVocabulary signals that fitting produced no usable terms.
	ErrEmptyVocabulary = errors.New("empty vocabulary")
	// ErrInvalidWeights signals a weight configuration that cannot be normalized.
	ErrInvalidWeights = errors.New("invalid weights")
	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
)
