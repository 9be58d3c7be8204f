package domain

// Document is one corpus entry: a filename (the unique key) and its raw
// text. Immutable once loaded.
type Document struct {
	Name string
	Text string
}

// PositionAbsent is the sentinel average keyword position reported when the
// keyword does not occur in a document (or the document has no tokens).
const PositionAbsent = -1.0

// RelevanceRecord carries the blended relevance of one document for one
// query, together with every component signal that produced it. Records are
// built fresh per query and never persisted.
type RelevanceRecord struct {
	Name               string
	Relevance          float64
	Similarity         float64
	TFIDF              float64
	KeywordCount       int
	KeywordPercentage  float64
	AvgKeywordPosition float64

	// Degraded marks a record whose metrics failed to compute and was
	// zeroed instead of aborting the whole batch.
	Degraded bool
}
