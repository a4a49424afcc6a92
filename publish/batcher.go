// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


// Package publish orchestrates the atomic-replace sequence that moves a
// draft session's chunks into the vector store: embed, delete stale points
// for the same source, insert replacements, retire the session.
package publish

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/poiesic/curator/ai"
)

const (
	// DefaultBatchSize is the number of texts per embedding call.
	DefaultBatchSize = 64

	defaultEmbedRetries   = 3
	defaultRetryBaseDelay = 500 * time.Millisecond
)

// Batcher turns chunk texts into normalized embedding vectors in bounded
// batches with per-batch retry.
type Batcher struct {
	embedder       ai.Embedder
	batchSize      int
	maxRetries     int
	retryBaseDelay time.Duration
}

// BatcherOption configures a Batcher.
type BatcherOption func(*Batcher)

// WithBatchSize sets the texts-per-call batch size.
func WithBatchSize(size int) BatcherOption {
	return func(b *Batcher) {
		if size >= 1 {
			b.batchSize = size
		}
	}
}

// WithRetry sets the per-batch retry budget and backoff base delay.
func WithRetry(maxRetries int, baseDelay time.Duration) BatcherOption {
	return func(b *Batcher) {
		if maxRetries >= 1 {
			b.maxRetries = maxRetries
		}
		if baseDelay > 0 {
			b.retryBaseDelay = baseDelay
		}
	}
}

// NewBatcher creates an embedding batcher.
func NewBatcher(embedder ai.Embedder, opts ...BatcherOption) (*Batcher, error) {
	if embedder == nil {
		return nil, fmt.Errorf("embedder required")
	}

	b := &Batcher{
		embedder:       embedder,
		batchSize:      DefaultBatchSize,
		maxRetries:     defaultEmbedRetries,
		retryBaseDelay: defaultRetryBaseDelay,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b, nil
}

// EmbedAll embeds every text, preserving order. Each batch goes through
// RetryWithBackoff; the same-order guarantee is enforced by a count check
// and all vectors must share one dimension. Vectors come back normalized
// to unit length for cosine scoring.
func (b *Batcher) EmbedAll(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	vectors := make([][]float32, 0, len(texts))
	dim := 0

	for start := 0; start < len(texts); start += b.batchSize {
		end := start + b.batchSize
		if end > len(texts) {
			end = len(texts)
		}
		batch := texts[start:end]

		var embeddings [][]float32
		err := ai.RetryWithBackoff(ctx, func() error {
			var err error
			embeddings, err = b.embedder.EmbedTexts(ctx, batch)
			return err
		}, b.maxRetries, b.retryBaseDelay)
		if err != nil {
			return nil, fmt.Errorf("failed to generate embeddings after %d attempts: %w", b.maxRetries, err)
		}

		if len(embeddings) != len(batch) {
			return nil, fmt.Errorf("%w: expected %d, got %d", ErrEmbeddingCountMismatch, len(batch), len(embeddings))
		}

		for _, embedding := range embeddings {
			if dim == 0 {
				dim = len(embedding)
			} else if len(embedding) != dim {
				return nil, fmt.Errorf("%w: %d vs %d", ErrDimensionInconsistent, dim, len(embedding))
			}
			vectors = append(vectors, NormalizeVector(embedding))
		}
	}

	return vectors, nil
}

// NormalizeVector normalizes a vector to unit length.
// Returns a new vector. If the input is a zero vector, returns a zero vector.
func NormalizeVector(v []float32) []float32 {
	if len(v) == 0 {
		return v
	}

	var magnitude float32
	for _, val := range v {
		magnitude += val * val
	}
	magnitude = float32(math.Sqrt(float64(magnitude)))

	// Can't normalize zero vector
	if magnitude == 0 {
		result := make([]float32, len(v))
		return result
	}

	result := make([]float32, len(v))
	for i, val := range v {
		result[i] = val / magnitude
	}
	return result
}
