package publish

import "errors"

var (
	// ErrEmbeddingCountMismatch indicates the embedding provider broke the
	// same-order, same-count response guarantee.
	ErrEmbeddingCountMismatch = errors.New("embedding count mismatch")

	// ErrDimensionInconsistent indicates embeddings of differing dimensions
	// within one publish.
	ErrDimensionInconsistent = errors.New("inconsistent embedding dimensions")
)
