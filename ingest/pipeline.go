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


package ingest

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/poiesic/curator/core"
	"github.com/poiesic/curator/storage"
)

// Chunker produces chunk candidates from normalized content. Satisfied by
// chunker.Chunker.
type Chunker interface {
	ChunkContent(ctx context.Context, content string) ([]core.ChunkCandidate, error)
}

// Pipeline creates draft sessions from source locators.
type Pipeline struct {
	repo       storage.SessionRepository
	chunker    Chunker
	strategies map[core.SourceType]Strategy
	logger     *slog.Logger
}

// PipelineOption configures a Pipeline.
type PipelineOption func(*Pipeline)

// WithStrategy registers an ingestion strategy. The manual passthrough is
// registered by default; web/wiki strategies plug in here.
func WithStrategy(strategy Strategy) PipelineOption {
	return func(p *Pipeline) {
		p.strategies[strategy.SourceType()] = strategy
	}
}

// WithChunker enables automatic chunking on ingest. Without it, sessions
// are created without chunks and chunking is triggered later through the
// mutation engine.
func WithChunker(chunker Chunker) PipelineOption {
	return func(p *Pipeline) {
		p.chunker = chunker
	}
}

// WithLogger sets a custom logger. Default is slog.Default().
func WithLogger(logger *slog.Logger) PipelineOption {
	return func(p *Pipeline) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// NewPipeline creates an ingestion pipeline over a session repository.
func NewPipeline(repo storage.SessionRepository, opts ...PipelineOption) (*Pipeline, error) {
	if repo == nil {
		return nil, ErrRepositoryRequired
	}

	p := &Pipeline{
		repo: repo,
		strategies: map[core.SourceType]Strategy{
			core.SourceTypeManual: ManualStrategy{},
		},
		logger: slog.Default().With("component", "ingest"),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Ingest resolves the locator through the source type's strategy and
// creates a DRAFT session. When a chunker is configured the session is
// created with its chunk list already populated.
func (p *Pipeline) Ingest(ctx context.Context, sourceType core.SourceType, locator, userId string) (*core.Session, error) {
	if err := core.ValidateSourceType(sourceType); err != nil {
		return nil, err
	}

	strategy, ok := p.strategies[sourceType]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoStrategy, sourceType)
	}

	result, err := strategy.Ingest(ctx, locator)
	if err != nil {
		return nil, fmt.Errorf("ingestion failed for %s source: %w", sourceType, err)
	}

	content := core.NormalizeContent(result.Content)
	if core.IsBlank(content) {
		return nil, core.ErrEmptyContent
	}

	sourceId := p.deriveSourceId(sourceType, content, result.SourceURL)

	session := &core.Session{
		Id:         uuid.NewString(),
		SourceId:   sourceId,
		SourceType: sourceType,
		SourceURL:  result.SourceURL,
		UserId:     userId,
		Status:     core.StatusDraft,
		Content:    content,
		RawContent: result.RawContent,
	}

	if p.chunker != nil {
		candidates, err := p.chunker.ChunkContent(ctx, content)
		if err != nil {
			return nil, fmt.Errorf("chunking failed: %w", err)
		}
		session.Chunks = attachCandidates(candidates)
	}

	if err := p.repo.CreateSession(ctx, session); err != nil {
		return nil, err
	}

	p.logger.Info("session created",
		"sessionId", session.Id,
		"sourceId", session.SourceId,
		"sourceType", sourceType.String(),
		"chunks", len(session.Chunks))

	return session, nil
}

// deriveSourceId maps a source to its stable replace-on-republish key.
func (p *Pipeline) deriveSourceId(sourceType core.SourceType, content, sourceURL string) string {
	if sourceType == core.SourceTypeManual {
		return core.SourceIDFromContent(content)
	}
	return core.SourceIDFromURL(sourceType, sourceURL)
}

// attachCandidates converts chunker output into session chunks.
func attachCandidates(candidates []core.ChunkCandidate) []core.Chunk {
	chunks := make([]core.Chunk, len(candidates))
	for i, cand := range candidates {
		chunks[i] = core.Chunk{
			Id:          cand.Id,
			Text:        cand.Text,
			HeadingPath: cand.HeadingPath,
			Type:        cand.Type,
			TokenCount:  cand.TokenCount,
		}
	}
	return chunks
}
