package openai

import (
	"fmt"

	"github.com/poiesic/curator/ai"
)

const chunkResponseSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "properties": {
    "chunks": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "id": {
            "type": "integer",
            "minimum": 1
          },
          "text": {
            "type": "string",
            "minLength": 1
          },
          "type": {
            "type": "string",
            "enum": ["knowledge", "navigation", "table_row", "code", "faq", "glossary"]
          }
        },
        "required": ["id", "text"],
        "additionalProperties": false
      }
    }
  },
  "required": ["chunks"],
  "additionalProperties": false
}`

const chunkPromptTemplate = `Split the given document text into self-contained knowledge chunks and return them as JSON.

Output ONLY valid JSON which complies with the schema given below. Do not include any preamble, explanation,
greeting, or acknowledgment. Start your response directly with the opening brace { and end with the closing
brace }. Your output must exactly follow this schema:

%s

Rules:
- Each chunk must be a semantically coherent unit that is understandable on its own.
- Prefer chunks of about %d tokens. Never produce a chunk above %d tokens; avoid fragments below %d tokens.
- Preserve the original wording. Do not summarize, rephrase, or invent text.
- Split at natural boundaries: headings, paragraphs, list items, table rows.
- Number chunks sequentially starting at 1 in document order.
- The optional type field classifies the chunk; omit it when unsure.`

// buildChunkPrompt renders the system prompt for one chunking call.
func buildChunkPrompt(hints ai.ChunkHints) string {
	return fmt.Sprintf(chunkPromptTemplate, chunkResponseSchema,
		hints.TargetTokens, hints.MaxTokens, hints.MinTokens)
}
