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


package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/poiesic/curator/ai"
	"github.com/poiesic/curator/core"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

const (
	defaultTransportRetries = 3
	defaultRetryBaseDelay   = 500 * time.Millisecond
)

// Chunker implements ai.Chunker using OpenAI-compatible chat APIs.
type Chunker struct {
	client        llms.Model
	model         string
	parseAttempts int
	callTimeout   time.Duration
	logger        *slog.Logger
}

// chunkItem is an internal type used for JSON unmarshaling.
// It matches the structure expected from the LLM.
type chunkItem struct {
	Id   int    `json:"id"`
	Text string `json:"text"`
	Type string `json:"type,omitempty"`
}

// chunkResponse is the wrapper structure for the LLM's JSON response.
type chunkResponse struct {
	Chunks []chunkItem `json:"chunks"`
}

// newChunker is an internal constructor that returns the concrete type.
// Used by Provider to manage the instance.
func newChunker(config *ai.Config) (*Chunker, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	// Create OpenAI client configured for chunking
	// Use "none" as token for local OpenAI-compatible services that don't require authentication
	client, err := openai.New(
		openai.WithBaseURL(config.ChunkerHost),
		openai.WithToken("none"),
		openai.WithModel(config.ChunkerModel),
	)
	if err != nil {
		return nil, err
	}

	return &Chunker{
		client:        client,
		model:         config.ChunkerModel,
		parseAttempts: config.ParseAttempts,
		callTimeout:   config.CallTimeout,
		logger:        slog.Default().With("component", "openai-chunker"),
	}, nil
}

// NewChunker creates a new LLM chunker using the provided configuration.
//
// Returns ai.Chunker interface to enforce abstraction.
func NewChunker(config *ai.Config) (ai.Chunker, error) {
	return newChunker(config)
}

// ChunkWindow decomposes one window of text into chunk candidates.
// Transport failures are retried with backoff when transient; malformed
// responses are re-requested up to the configured parse attempts and then
// reported as permanent.
func (c *Chunker) ChunkWindow(ctx context.Context, window string, hints ai.ChunkHints) ([]core.ChunkCandidate, error) {
	if strings.TrimSpace(window) == "" {
		return nil, ai.ErrEmptyInput
	}

	content := []llms.MessageContent{
		{
			Role: llms.ChatMessageTypeSystem,
			Parts: []llms.ContentPart{
				llms.TextPart(buildChunkPrompt(hints)),
			},
		},
		{
			Role: llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{
				llms.TextPart(window),
			},
		},
	}

	var lastParseErr error
	for attempt := 1; attempt <= c.parseAttempts; attempt++ {
		var responseText string
		err := ai.RetryWithBackoff(ctx, func() error {
			callCtx, cancel := context.WithTimeout(ctx, c.callTimeout)
			defer cancel()

			response, err := c.client.GenerateContent(callCtx, content,
				llms.WithTemperature(0.0), llms.WithJSONMode())
			if err != nil {
				return classifyTransportErr(ctx, err)
			}
			if len(response.Choices) < 1 {
				return ai.Permanent(fmt.Errorf("model %s returned no choices", c.model))
			}
			responseText = response.Choices[0].Content
			return nil
		}, defaultTransportRetries, defaultRetryBaseDelay)
		if err != nil {
			c.logger.Error("chunking call failed", "model", c.model, "err", err)
			return nil, err
		}

		candidates, err := parseChunkResponse(responseText)
		if err == nil {
			c.logger.Debug("chunked window", "model", c.model, "chunks", len(candidates), "attempt", attempt)
			return candidates, nil
		}

		lastParseErr = err
		c.logger.Warn("error parsing chunker response",
			"attempt", attempt,
			"model", c.model,
			"err", err)
	}

	return nil, ai.Permanent(fmt.Errorf("malformed chunking response after %d attempts: %w",
		c.parseAttempts, lastParseErr))
}

// parseChunkResponse validates the model output against the strict chunk
// schema. Anything that does not match is rejected, not coerced.
func parseChunkResponse(responseText string) ([]core.ChunkCandidate, error) {
	// Strip markdown code fences if present
	responseText = strings.TrimSpace(responseText)
	responseText = strings.TrimPrefix(responseText, "```json")
	responseText = strings.TrimPrefix(responseText, "```")
	responseText = strings.TrimSuffix(responseText, "```")
	responseText = strings.TrimSpace(responseText)

	// Try to repair common JSON issues
	responseText = repairJSON(responseText)

	decoder := json.NewDecoder(bytes.NewReader([]byte(responseText)))
	decoder.DisallowUnknownFields()

	var result chunkResponse
	if err := decoder.Decode(&result); err != nil {
		return nil, err
	}

	candidates := make([]core.ChunkCandidate, 0, len(result.Chunks))
	for i, item := range result.Chunks {
		if strings.TrimSpace(item.Text) == "" {
			return nil, fmt.Errorf("chunk %d has empty text", i)
		}
		chunkType := core.ChunkTypeKnowledge
		if item.Type != "" {
			if !validChunkType(item.Type) {
				return nil, fmt.Errorf("chunk %d has unknown type %q", i, item.Type)
			}
			chunkType = core.ChunkTypeFromString(item.Type)
		}
		candidates = append(candidates, core.ChunkCandidate{
			Id:   uint32(item.Id),
			Text: item.Text,
			Type: chunkType,
		})
	}
	return candidates, nil
}

func validChunkType(s string) bool {
	switch s {
	case "knowledge", "navigation", "table_row", "code", "faq", "glossary":
		return true
	}
	return false
}
