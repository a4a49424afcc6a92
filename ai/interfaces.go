package ai

import (
	"context"

	"github.com/poiesic/curator/core"
)

// ChunkHints carries the token thresholds passed to the chunking model.
type ChunkHints struct {
	// MinTokens is the floor below which fragments are rejected or merged.
	MinTokens int
	// TargetTokens is the preferred chunk size.
	TargetTokens int
	// MaxTokens is the hard per-chunk ceiling.
	MaxTokens int
}

// Chunker turns one window of raw text into chunk candidates using a
// language model. Implementations must be thread-safe for concurrent use:
// the semantic chunker issues independent window calls in parallel.
type Chunker interface {
	// ChunkWindow decomposes a window of text into chunk candidates.
	// The ids assigned by the model are only unique within one window and
	// are renumbered by the caller after merging.
	// Returns ErrEmptyInput (before any call is made) for blank input.
	ChunkWindow(ctx context.Context, window string, hints ChunkHints) ([]core.ChunkCandidate, error)
}

// Embedder generates vector embeddings from text for semantic similarity
// search. Implementations must be thread-safe for concurrent use.
type Embedder interface {
	// EmbedText generates a vector embedding for a single text string.
	EmbedText(ctx context.Context, text string) ([]float32, error)

	// EmbedTexts generates vector embeddings for multiple text strings in
	// one batch. The returned slice is in the same order as the inputs.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// Provider aggregates AI services for convenient initialization and
// lifecycle management.
type Provider interface {
	// Embedder returns the text embedding service.
	Embedder() Embedder

	// Chunker returns the LLM chunking service.
	Chunker() Chunker

	// Close releases resources held by the provider and its services.
	Close() error
}
