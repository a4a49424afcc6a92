package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSourceIDFromContent(t *testing.T) {
	t.Run("deterministic", func(t *testing.T) {
		id1 := SourceIDFromContent("The quick brown fox")
		id2 := SourceIDFromContent("The quick brown fox")
		assert.Equal(t, id1, id2)
	})

	t.Run("different content different id", func(t *testing.T) {
		id1 := SourceIDFromContent("document one")
		id2 := SourceIDFromContent("document two")
		assert.NotEqual(t, id1, id2)
	})

	t.Run("normalization makes line endings equivalent", func(t *testing.T) {
		id1 := SourceIDFromContent("line one\r\nline two\r\n")
		id2 := SourceIDFromContent("line one\nline two")
		assert.Equal(t, id1, id2)
	})

	t.Run("manual prefix", func(t *testing.T) {
		id := SourceIDFromContent("anything")
		assert.Regexp(t, `^manual-[0-9a-f]{16}$`, id)
	})
}

func TestSourceIDFromURL(t *testing.T) {
	id1 := SourceIDFromURL(SourceTypeWeb, "https://example.com/docs")
	id2 := SourceIDFromURL(SourceTypeWeb, "https://example.com/docs")
	assert.Equal(t, id1, id2)
	assert.Regexp(t, `^web-[0-9a-f]{16}$`, id1)

	wiki := SourceIDFromURL(SourceTypeWiki, "https://example.com/docs")
	assert.NotEqual(t, id1, wiki)
}

func TestSessionFindChunk(t *testing.T) {
	session := &Session{
		Chunks: []Chunk{
			{Id: 1, Text: "a"},
			{Id: 5, Text: "b"},
			{Id: 3, Text: "c"},
		},
	}

	assert.Equal(t, 0, session.FindChunk(1))
	assert.Equal(t, 1, session.FindChunk(5))
	assert.Equal(t, 2, session.FindChunk(3))
	assert.Equal(t, -1, session.FindChunk(99))
}

func TestSessionNextChunkId(t *testing.T) {
	t.Run("empty session starts at 1", func(t *testing.T) {
		session := &Session{}
		assert.Equal(t, uint32(1), session.NextChunkId())
	})

	t.Run("one past highest id", func(t *testing.T) {
		session := &Session{Chunks: []Chunk{{Id: 2}, {Id: 7}, {Id: 4}}}
		assert.Equal(t, uint32(8), session.NextChunkId())
	})
}

func TestPointID(t *testing.T) {
	id1 := PointID("manual-abc", 1, 0)
	id2 := PointID("manual-abc", 1, 0)
	require.Equal(t, id1, id2)

	assert.NotEqual(t, id1, PointID("manual-abc", 1, 1))
	assert.NotEqual(t, id1, PointID("manual-abc", 2, 0))
	assert.NotEqual(t, id1, PointID("manual-def", 1, 0))
}

func TestChunkTypeRoundTrip(t *testing.T) {
	types := []ChunkType{
		ChunkTypeKnowledge, ChunkTypeNavigation, ChunkTypeTableRow,
		ChunkTypeCode, ChunkTypeFAQ, ChunkTypeGlossary,
	}
	for _, ct := range types {
		assert.Equal(t, ct, ChunkTypeFromString(ct.String()))
	}

	// Unknown names fall back to knowledge
	assert.Equal(t, ChunkTypeKnowledge, ChunkTypeFromString("whatever"))
}
