package chunker

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/curator/core"
	"github.com/poiesic/curator/document"
	"github.com/poiesic/curator/tokens"
)

func newTestChunker(t *testing.T, opts ...Option) *Chunker {
	t.Helper()
	c, err := New(tokens.HeuristicEstimator{}, opts...)
	require.NoError(t, err)
	return c
}

func TestNew(t *testing.T) {
	t.Run("requires estimator", func(t *testing.T) {
		_, err := New(nil)
		assert.ErrorIs(t, err, ErrEstimatorRequired)
	})

	t.Run("rejects inverted bounds", func(t *testing.T) {
		_, err := New(tokens.HeuristicEstimator{}, WithTokenBounds(100, 50, 500))
		assert.ErrorIs(t, err, ErrInvalidBounds)

		_, err = New(tokens.HeuristicEstimator{}, WithTokenBounds(10, 600, 500))
		assert.ErrorIs(t, err, ErrInvalidBounds)
	})

	t.Run("defaults", func(t *testing.T) {
		c := newTestChunker(t)
		hints := c.Hints()
		assert.Equal(t, 15, hints.MinTokens)
		assert.Equal(t, 250, hints.TargetTokens)
		assert.Equal(t, 500, hints.MaxTokens)
	})
}

func TestChunkContentEmpty(t *testing.T) {
	c := newTestChunker(t)
	_, err := c.ChunkContent(context.Background(), "   \n\t ")
	assert.ErrorIs(t, err, core.ErrEmptyContent)
}

func TestChunkDocumentSections(t *testing.T) {
	c := newTestChunker(t)

	raw := "# Billing\n\nInvoices are issued monthly on the first business day.\n\n" +
		"## Refunds\n\nRefunds are processed within five business days of approval.\n"
	doc := document.Structure(raw)

	candidates := c.ChunkDocument(doc)
	require.Len(t, candidates, 2)

	assert.Equal(t, uint32(1), candidates[0].Id)
	assert.Equal(t, []string{"Billing"}, candidates[0].HeadingPath)
	assert.Contains(t, candidates[0].Text, "Invoices are issued")

	assert.Equal(t, uint32(2), candidates[1].Id)
	assert.Equal(t, []string{"Billing", "Refunds"}, candidates[1].HeadingPath)
	assert.Positive(t, candidates[1].TokenCount)
}

func TestChunkDocumentSplitsOversizedSection(t *testing.T) {
	c := newTestChunker(t, WithTokenBounds(5, 30, 60))

	var sb strings.Builder
	sb.WriteString("# Guide\n\n")
	for i := 0; i < 12; i++ {
		sb.WriteString("This paragraph describes one distinct step of the procedure in detail.\n\n")
	}
	doc := document.Structure(sb.String())

	candidates := c.ChunkDocument(doc)
	require.Greater(t, len(candidates), 1)

	estimator := tokens.HeuristicEstimator{}
	for _, cand := range candidates {
		assert.LessOrEqual(t, estimator.Estimate(cand.Text), 60)
	}

	// First fragment keeps the plain path, later ones carry a part index.
	assert.Equal(t, []string{"Guide"}, candidates[0].HeadingPath)
	require.Greater(t, len(candidates[1].HeadingPath), 1)
	assert.Contains(t, candidates[1].HeadingPath[len(candidates[1].HeadingPath)-1], "part")
}

func TestChunkDocumentDropsTinyFragments(t *testing.T) {
	c := newTestChunker(t, WithTokenBounds(10, 15, 20))

	raw := "# Notes\n\nA truly substantial paragraph holding enough words to stand on its own as a chunk.\n\nok\n"
	doc := document.Structure(raw)

	candidates := c.ChunkDocument(doc)
	for _, cand := range candidates {
		assert.NotEqual(t, "ok", cand.Text)
	}
}

func TestChunkDocumentTables(t *testing.T) {
	c := newTestChunker(t)

	raw := "# Plans\n\n| Plan | Price |\n| --- | --- |\n| Basic | $10 |\n| Pro | $25 |\n"
	doc := document.Structure(raw)
	require.Len(t, doc.Tables, 1)

	candidates := c.ChunkDocument(doc)

	var rows []core.ChunkCandidate
	for _, cand := range candidates {
		if cand.Type == core.ChunkTypeTableRow {
			rows = append(rows, cand)
		}
	}
	require.Len(t, rows, 2)

	assert.Equal(t, "Basic | $10", rows[0].Text)
	assert.Equal(t, "Pro | $25", rows[1].Text)
	assert.Equal(t, []string{"Table", "Plans", "Plan | Price"}, rows[0].HeadingPath)
}

func TestChunkDocumentCodeBlocks(t *testing.T) {
	t.Run("small block stays intact", func(t *testing.T) {
		c := newTestChunker(t)
		raw := "# API\n\n```go\nfunc Hello() string {\n\treturn \"hi\"\n}\n```\n"
		doc := document.Structure(raw)
		require.Len(t, doc.CodeBlocks, 1)

		candidates := c.ChunkDocument(doc)
		var code []core.ChunkCandidate
		for _, cand := range candidates {
			if cand.Type == core.ChunkTypeCode {
				code = append(code, cand)
			}
		}
		require.Len(t, code, 1)
		assert.Contains(t, code[0].Text, "func Hello()")
		assert.Equal(t, []string{"Code", "go"}, code[0].HeadingPath)
	})

	t.Run("oversized block splits at line boundaries", func(t *testing.T) {
		c := newTestChunker(t, WithTokenBounds(1, 10, 20))
		var sb strings.Builder
		sb.WriteString("```python\n")
		for i := 0; i < 30; i++ {
			sb.WriteString("value = compute_next(value, settings)\n")
		}
		sb.WriteString("```\n")
		doc := document.Structure(sb.String())
		require.Len(t, doc.CodeBlocks, 1)

		candidates := c.ChunkDocument(doc)
		require.Greater(t, len(candidates), 1)
		for _, cand := range candidates {
			assert.Equal(t, core.ChunkTypeCode, cand.Type)
			assert.False(t, strings.HasPrefix(cand.Text, "compute_next(value"),
				"split must not cut mid-line")
		}
	})
}

func TestFinalizeSequentialIds(t *testing.T) {
	c := newTestChunker(t)
	raw := "# A\n\nFirst section body text.\n\n# B\n\nSecond section body text.\n\n# C\n\nThird section body text.\n"
	candidates := c.ChunkDocument(document.Structure(raw))
	require.Len(t, candidates, 3)
	for i, cand := range candidates {
		assert.Equal(t, uint32(i+1), cand.Id)
		assert.Positive(t, cand.TokenCount)
	}
}
