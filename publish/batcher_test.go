package publish

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/curator/ai"
	"github.com/poiesic/curator/ai/mock"
)

func TestEmbedAllBatches(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	batcher, err := NewBatcher(embedder, WithBatchSize(2))
	require.NoError(t, err)

	texts := []string{"a", "b", "c", "d", "e"}
	vectors, err := batcher.EmbedAll(context.Background(), texts)
	require.NoError(t, err)

	assert.Equal(t, 3, embedder.CallCount(), "5 texts at batch size 2")
	require.Len(t, vectors, 5)
	for _, v := range vectors {
		assert.Len(t, v, 384)
	}
}

func TestEmbedAllEmpty(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	batcher, err := NewBatcher(embedder)
	require.NoError(t, err)

	vectors, err := batcher.EmbedAll(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, vectors)
	assert.Zero(t, embedder.CallCount())
}

func TestEmbedAllNormalizes(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		return [][]float32{{3, 4, 0}}, nil
	}
	batcher, err := NewBatcher(embedder)
	require.NoError(t, err)

	vectors, err := batcher.EmbedAll(context.Background(), []string{"x"})
	require.NoError(t, err)
	require.Len(t, vectors, 1)

	var magnitude float64
	for _, v := range vectors[0] {
		magnitude += float64(v) * float64(v)
	}
	assert.InDelta(t, 1.0, math.Sqrt(magnitude), 1e-5)
}

func TestEmbedAllCountMismatch(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		return [][]float32{{1, 0}}, nil
	}
	batcher, err := NewBatcher(embedder)
	require.NoError(t, err)

	_, err = batcher.EmbedAll(context.Background(), []string{"a", "b"})
	assert.ErrorIs(t, err, ErrEmbeddingCountMismatch)
}

func TestEmbedAllDimensionInconsistent(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		return [][]float32{{1, 0}, {1, 0, 0}}, nil
	}
	batcher, err := NewBatcher(embedder)
	require.NoError(t, err)

	_, err = batcher.EmbedAll(context.Background(), []string{"a", "b"})
	assert.ErrorIs(t, err, ErrDimensionInconsistent)
}

func TestEmbedAllRetriesTransient(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	attempts := 0
	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		attempts++
		if attempts == 1 {
			return nil, ai.Transient(assert.AnError)
		}
		return [][]float32{{1, 0}}, nil
	}
	batcher, err := NewBatcher(embedder, WithRetry(3, time.Millisecond))
	require.NoError(t, err)

	vectors, err := batcher.EmbedAll(context.Background(), []string{"a"})
	require.NoError(t, err)
	assert.Len(t, vectors, 1)
	assert.Equal(t, 2, attempts)
}

func TestEmbedAllPermanentNotRetried(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	attempts := 0
	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		attempts++
		return nil, ai.Permanent(assert.AnError)
	}
	batcher, err := NewBatcher(embedder, WithRetry(3, time.Millisecond))
	require.NoError(t, err)

	_, err = batcher.EmbedAll(context.Background(), []string{"a"})
	require.Error(t, err)
	assert.Equal(t, 1, attempts)
}

func TestNormalizeVector(t *testing.T) {
	tests := []struct {
		name string
		in   []float32
		want []float32
	}{
		{"zero vector stays zero", []float32{0, 0}, []float32{0, 0}},
		{"empty passthrough", nil, nil},
		{"unit axis", []float32{2, 0}, []float32{1, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeVector(tt.in))
		})
	}
}
