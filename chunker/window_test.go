package chunker

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/curator/ai"
	"github.com/poiesic/curator/ai/mock"
	"github.com/poiesic/curator/core"
	"github.com/poiesic/curator/tokens"
)

// buildLines returns n distinct single-line paragraphs separated by blanks.
func buildLines(n int) string {
	var sb strings.Builder
	for i := 0; i < n; i++ {
		fmt.Fprintf(&sb, "Paragraph number %d carries its own distinct payload of words.\n\n", i)
	}
	return sb.String()
}

func TestChunkWithModelSingleCall(t *testing.T) {
	llm := mock.NewMockChunker()
	c := newTestChunker(t, WithModel(llm), WithMaxInputTokens(10_000))

	candidates, err := c.ChunkContent(context.Background(), "First paragraph here.\n\nSecond paragraph here.")
	require.NoError(t, err)
	require.Len(t, candidates, 2)

	assert.Equal(t, 1, llm.CallCount())
	assert.Equal(t, uint32(1), candidates[0].Id)
	assert.Equal(t, uint32(2), candidates[1].Id)
	assert.Positive(t, candidates[0].TokenCount)
}

func TestChunkWithModelWindowsOversizedInput(t *testing.T) {
	llm := mock.NewMockChunker()
	c := newTestChunker(t,
		WithModel(llm),
		WithMaxInputTokens(120),
		WithOverlapFraction(0.15),
		WithPoolSize(2))

	content := buildLines(40)
	candidates, err := c.ChunkContent(context.Background(), content)
	require.NoError(t, err)

	assert.Greater(t, llm.CallCount(), 1, "oversized input must be windowed")
	assert.NotEmpty(t, candidates)

	// Overlap means boundary paragraphs are presented twice, but the merge
	// must emit each distinct paragraph once, renumbered sequentially.
	seen := make(map[string]int)
	for i, cand := range candidates {
		assert.Equal(t, uint32(i+1), cand.Id)
		seen[cand.Text]++
	}
	for text, n := range seen {
		assert.Equal(t, 1, n, "duplicate chunk after merge: %q", text)
	}
}

func TestSplitWindowsOverlap(t *testing.T) {
	c := newTestChunker(t, WithMaxInputTokens(100), WithOverlapFraction(0.2))

	content := buildLines(30)
	windows := c.splitWindows(content)
	require.Greater(t, len(windows), 1)

	// Each window after the first starts with the tail of its predecessor.
	for i := 1; i < len(windows); i++ {
		prevLines := strings.Split(windows[i-1], "\n")
		firstLine := strings.Split(windows[i], "\n")[0]
		if firstLine == "" {
			continue
		}
		assert.Contains(t, prevLines, firstLine,
			"window %d must open with overlap from window %d", i, i-1)
	}

	estimator := tokens.HeuristicEstimator{}
	for i, window := range windows {
		assert.LessOrEqual(t, estimator.Estimate(window), 130,
			"window %d grossly exceeds the input budget", i)
	}
}

func TestChunkWithModelWindowFailure(t *testing.T) {
	llm := mock.NewMockChunker()
	boom := errors.New("model unreachable")
	llm.ChunkWindowFunc = func(ctx context.Context, window string, hints ai.ChunkHints) ([]core.ChunkCandidate, error) {
		return nil, boom
	}
	c := newTestChunker(t, WithModel(llm), WithMaxInputTokens(120))

	_, err := c.ChunkContent(context.Background(), buildLines(40))
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
}

func TestMergeWindowsDedup(t *testing.T) {
	c := newTestChunker(t)

	merged := c.mergeWindows([][]core.ChunkCandidate{
		{
			{Text: "Shared boundary chunk."},
			{Text: "Only in window one."},
		},
		{
			{Text: "  shared   BOUNDARY chunk. "},
			{Text: "Only in window two."},
		},
	})

	require.Len(t, merged, 3)
	assert.Equal(t, "Shared boundary chunk.", merged[0].Text)
	assert.Equal(t, "Only in window one.", merged[1].Text)
	assert.Equal(t, "Only in window two.", merged[2].Text)
}

func TestHintsPropagation(t *testing.T) {
	llm := mock.NewMockChunker()
	var got ai.ChunkHints
	llm.ChunkWindowFunc = func(ctx context.Context, window string, hints ai.ChunkHints) ([]core.ChunkCandidate, error) {
		got = hints
		return []core.ChunkCandidate{{Id: 1, Text: window}}, nil
	}

	c := newTestChunker(t, WithModel(llm), WithTokenBounds(20, 200, 400))
	_, err := c.ChunkContent(context.Background(), "Some content to chunk.")
	require.NoError(t, err)

	assert.Equal(t, ai.ChunkHints{MinTokens: 20, TargetTokens: 200, MaxTokens: 400}, got)
}
