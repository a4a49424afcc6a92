package openai

import (
	"testing"

	"github.com/poiesic/curator/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseChunkResponse(t *testing.T) {
	t.Run("valid response", func(t *testing.T) {
		candidates, err := parseChunkResponse(`{"chunks":[
			{"id":1,"text":"First unit."},
			{"id":2,"text":"Q: How? A: Like this.","type":"faq"}
		]}`)
		require.NoError(t, err)
		require.Len(t, candidates, 2)
		assert.Equal(t, uint32(1), candidates[0].Id)
		assert.Equal(t, core.ChunkTypeKnowledge, candidates[0].Type)
		assert.Equal(t, core.ChunkTypeFAQ, candidates[1].Type)
	})

	t.Run("fenced response", func(t *testing.T) {
		candidates, err := parseChunkResponse("```json\n{\"chunks\":[{\"id\":1,\"text\":\"x\"}]}\n```")
		require.NoError(t, err)
		require.Len(t, candidates, 1)
	})

	t.Run("repairable missing key quote", func(t *testing.T) {
		candidates, err := parseChunkResponse(`{"chunks":[{"id":1, text":"x"}]}`)
		require.NoError(t, err)
		require.Len(t, candidates, 1)
	})

	t.Run("non-parseable", func(t *testing.T) {
		_, err := parseChunkResponse("I cannot help with that.")
		assert.Error(t, err)
	})

	t.Run("unknown field rejected", func(t *testing.T) {
		_, err := parseChunkResponse(`{"chunks":[{"id":1,"text":"x","confidence":0.9}]}`)
		assert.Error(t, err)
	})

	t.Run("unknown type rejected not coerced", func(t *testing.T) {
		_, err := parseChunkResponse(`{"chunks":[{"id":1,"text":"x","type":"poem"}]}`)
		assert.Error(t, err)
	})

	t.Run("empty chunk text rejected", func(t *testing.T) {
		_, err := parseChunkResponse(`{"chunks":[{"id":1,"text":"  "}]}`)
		assert.Error(t, err)
	})

	t.Run("empty chunk list is valid", func(t *testing.T) {
		candidates, err := parseChunkResponse(`{"chunks":[]}`)
		require.NoError(t, err)
		assert.Empty(t, candidates)
	})
}
