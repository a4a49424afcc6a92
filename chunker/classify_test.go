package chunker

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/poiesic/curator/core"
)

func TestDefaultClassifier(t *testing.T) {
	tests := []struct {
		name string
		text string
		want core.ChunkType
	}{
		{
			name: "plain prose is knowledge",
			text: "Invoices are issued monthly and payment is due within thirty days.",
			want: core.ChunkTypeKnowledge,
		},
		{
			name: "empty text is knowledge",
			text: "   ",
			want: core.ChunkTypeKnowledge,
		},
		{
			name: "navigation keywords",
			text: "Table of Contents\n1. Introduction\n2. Setup",
			want: core.ChunkTypeNavigation,
		},
		{
			name: "see also links",
			text: "See also: related articles on account management.",
			want: core.ChunkTypeNavigation,
		},
		{
			name: "question answer pair",
			text: "Q: How do I reset my password?\nA: Use the forgot password link.",
			want: core.ChunkTypeFAQ,
		},
		{
			name: "question mark with answer prefix",
			text: "How long do refunds take?\nAnswer: Five business days.",
			want: core.ChunkTypeFAQ,
		},
		{
			name: "code syntax hints",
			text: "func Connect(addr string) (*Client, error) {\n\treturn dial(addr)\n}",
			want: core.ChunkTypeCode,
		},
		{
			name: "term definition is glossary",
			text: "Idempotency - the property that repeating an operation yields the same result",
			want: core.ChunkTypeGlossary,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DefaultClassifier(tt.text))
		})
	}
}
