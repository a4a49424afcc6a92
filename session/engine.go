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


// Package session implements the chunk mutation engine: user-initiated
// edit, split, merge, generation and preview over a draft session's chunk
// list. All mutations go through the store's atomic update, so concurrent
// editors of one session are serialized rather than last-write-wins.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/poiesic/curator/core"
	"github.com/poiesic/curator/storage"
	"github.com/poiesic/curator/tokens"
)

// Chunker produces chunk candidates from normalized content. Satisfied by
// chunker.Chunker.
type Chunker interface {
	ChunkContent(ctx context.Context, content string) ([]core.ChunkCandidate, error)
}

// Engine applies chunk mutations to draft sessions.
type Engine struct {
	repo      storage.SessionRepository
	chunker   Chunker
	estimator tokens.Estimator
	logger    *slog.Logger
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithChunker enables GenerateChunks.
func WithChunker(chunker Chunker) EngineOption {
	return func(e *Engine) {
		e.chunker = chunker
	}
}

// WithEstimator replaces the token estimator used to refresh counts on
// edited chunks.
func WithEstimator(estimator tokens.Estimator) EngineOption {
	return func(e *Engine) {
		if estimator != nil {
			e.estimator = estimator
		}
	}
}

// WithLogger sets a custom logger. Default is slog.Default().
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// NewEngine creates a mutation engine over a session repository.
func NewEngine(repo storage.SessionRepository, opts ...EngineOption) (*Engine, error) {
	if repo == nil {
		return nil, fmt.Errorf("session repository required")
	}

	e := &Engine{
		repo:      repo,
		estimator: tokens.HeuristicEstimator{},
		logger:    slog.Default().With("component", "session"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Get retrieves a session by id.
func (e *Engine) Get(ctx context.Context, sessionId string) (*core.Session, error) {
	return e.repo.GetSession(ctx, sessionId)
}

// Delete discards a draft session.
func (e *Engine) Delete(ctx context.Context, sessionId string) error {
	return e.repo.DeleteSession(ctx, sessionId)
}

// UpdateChunk replaces one chunk's text and marks it dirty.
func (e *Engine) UpdateChunk(ctx context.Context, sessionId string, chunkId uint32, newText string) (*core.Session, error) {
	return e.repo.UpdateSession(ctx, sessionId, func(s *core.Session) error {
		if err := requireDraft(s); err != nil {
			return err
		}
		idx := s.FindChunk(chunkId)
		if idx < 0 {
			return fmt.Errorf("%w: %d", ErrChunkNotFound, chunkId)
		}
		s.Chunks[idx].Text = newText
		s.Chunks[idx].Dirty = true
		s.Chunks[idx].TokenCount = e.estimator.Estimate(newText)
		return nil
	})
}

// MergeChunks replaces the selected chunks with a single dirty chunk whose
// text is the originals joined by a blank line, in the order given. The
// merged chunk takes the position of the earliest selected chunk; all
// unselected chunks keep their relative order.
func (e *Engine) MergeChunks(ctx context.Context, sessionId string, chunkIds []uint32) (*core.Session, error) {
	if len(chunkIds) < 2 {
		return nil, ErrMergeTooFew
	}

	return e.repo.UpdateSession(ctx, sessionId, func(s *core.Session) error {
		if err := requireDraft(s); err != nil {
			return err
		}

		selected := make(map[uint32]struct{}, len(chunkIds))
		for _, id := range chunkIds {
			if s.FindChunk(id) < 0 {
				return fmt.Errorf("%w: %d", ErrChunksNotFound, id)
			}
			if _, dup := selected[id]; dup {
				return fmt.Errorf("%w: duplicate id %d", ErrChunksNotFound, id)
			}
			selected[id] = struct{}{}
		}

		texts := make([]string, 0, len(chunkIds))
		for _, id := range chunkIds {
			texts = append(texts, s.Chunks[s.FindChunk(id)].Text)
		}
		mergedText := strings.Join(texts, "\n\n")

		first := s.Chunks[s.FindChunk(chunkIds[0])]
		merged := core.Chunk{
			Id:          first.Id,
			Text:        mergedText,
			Dirty:       true,
			HeadingPath: first.HeadingPath,
			Type:        first.Type,
			TokenCount:  e.estimator.Estimate(mergedText),
		}

		// Position of the earliest selected chunk anchors the merged one.
		insertAt := -1
		for i := range s.Chunks {
			if _, ok := selected[s.Chunks[i].Id]; ok {
				insertAt = i
				break
			}
		}

		result := make([]core.Chunk, 0, len(s.Chunks)-len(chunkIds)+1)
		for i := range s.Chunks {
			if i == insertAt {
				result = append(result, merged)
				continue
			}
			if _, ok := selected[s.Chunks[i].Id]; ok {
				continue
			}
			result = append(result, s.Chunks[i])
		}
		s.Chunks = result
		return nil
	})
}

// SplitRequest selects exactly one split mode.
type SplitRequest struct {
	// SplitPoints are character offsets into the original text, producing
	// up to len+1 substrings.
	SplitPoints []int
	// NewTextBlocks supplies the substrings directly.
	NewTextBlocks []string
}

// SplitChunk replaces one chunk with the non-blank blocks of a split, each
// a new dirty chunk in the original's position. Restricted roles may not
// split.
func (e *Engine) SplitChunk(ctx context.Context, sessionId string, chunkId uint32, role core.Role, req SplitRequest) (*core.Session, error) {
	if role != core.RoleEditor {
		return nil, fmt.Errorf("%w: %w", core.ErrForbidden, ErrSplitForbidden)
	}
	hasPoints := len(req.SplitPoints) > 0
	hasBlocks := len(req.NewTextBlocks) > 0
	if hasPoints == hasBlocks {
		return nil, ErrSplitArguments
	}

	return e.repo.UpdateSession(ctx, sessionId, func(s *core.Session) error {
		if err := requireDraft(s); err != nil {
			return err
		}
		idx := s.FindChunk(chunkId)
		if idx < 0 {
			return fmt.Errorf("%w: %d", ErrChunkNotFound, chunkId)
		}
		original := s.Chunks[idx]

		var blocks []string
		if hasPoints {
			blocks = splitAtOffsets(original.Text, req.SplitPoints)
		} else {
			blocks = req.NewTextBlocks
		}

		kept := make([]string, 0, len(blocks))
		for _, block := range blocks {
			if !core.IsBlank(block) {
				kept = append(kept, block)
			}
		}
		if len(kept) == 0 {
			return ErrSplitEmpty
		}

		nextId := s.NextChunkId()
		pieces := make([]core.Chunk, len(kept))
		for i, text := range kept {
			pieces[i] = core.Chunk{
				Id:          nextId + uint32(i),
				Text:        text,
				Dirty:       true,
				HeadingPath: original.HeadingPath,
				Type:        original.Type,
				TokenCount:  e.estimator.Estimate(text),
			}
		}

		s.Chunks = slices.Concat(s.Chunks[:idx], pieces, s.Chunks[idx+1:])
		return nil
	})
}

// GenerateChunks runs the chunker on the session's content and attaches
// the result. Valid only when the session has no chunks yet.
func (e *Engine) GenerateChunks(ctx context.Context, sessionId string) (*core.Session, error) {
	if e.chunker == nil {
		return nil, ErrChunkerRequired
	}

	// The chunking call suspends on model I/O, so it runs outside the
	// store transaction against a snapshot; the preconditions are
	// re-checked when the result is attached.
	snapshot, err := e.repo.GetSession(ctx, sessionId)
	if err != nil {
		return nil, err
	}
	if err := requireDraft(snapshot); err != nil {
		return nil, err
	}
	if len(snapshot.Chunks) > 0 {
		return nil, ErrChunksExist
	}
	if core.IsBlank(snapshot.Content) {
		return nil, core.ErrEmptyContent
	}

	candidates, err := e.chunker.ChunkContent(ctx, snapshot.Content)
	if err != nil {
		return nil, fmt.Errorf("chunk generation failed: %w", err)
	}

	return e.repo.UpdateSession(ctx, sessionId, func(s *core.Session) error {
		if err := requireDraft(s); err != nil {
			return err
		}
		if len(s.Chunks) > 0 {
			return ErrChunksExist
		}
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
		s.Chunks = chunks
		return nil
	})
}

// ValidationReport flags publish-blocking content without blocking the
// preview transition itself.
type ValidationReport struct {
	IsValid  bool
	Warnings []string
}

// Preview transitions the session to PREVIEW and reports validation
// warnings. Re-entering preview from PREVIEW is allowed.
func (e *Engine) Preview(ctx context.Context, sessionId string) (*core.Session, *ValidationReport, error) {
	var report ValidationReport

	updated, err := e.repo.UpdateSession(ctx, sessionId, func(s *core.Session) error {
		if s.Status != core.StatusDraft && s.Status != core.StatusPreview {
			return core.ErrNotDraft
		}

		report = validateForPublish(s)
		s.Status = core.StatusPreview
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	e.logger.Info("session previewed",
		"sessionId", sessionId,
		"isValid", report.IsValid,
		"warnings", len(report.Warnings))

	return updated, &report, nil
}

// Reopen returns a PREVIEW session to DRAFT so chunks can be edited again.
func (e *Engine) Reopen(ctx context.Context, sessionId string) (*core.Session, error) {
	return e.repo.UpdateSession(ctx, sessionId, func(s *core.Session) error {
		if s.Status != core.StatusPreview {
			return ErrNotPreview
		}
		s.Status = core.StatusDraft
		return nil
	})
}

// validateForPublish collects the warnings the publish step would act on.
func validateForPublish(s *core.Session) ValidationReport {
	var warnings []string
	if len(s.Chunks) == 0 {
		warnings = append(warnings, "no chunks to publish")
	} else {
		empty := 0
		for i := range s.Chunks {
			if core.IsBlank(s.Chunks[i].Text) {
				empty++
			}
		}
		if empty > 0 {
			warnings = append(warnings, fmt.Sprintf("%d empty chunks found", empty))
		}
	}
	return ValidationReport{
		IsValid:  len(warnings) == 0,
		Warnings: warnings,
	}
}

func requireDraft(s *core.Session) error {
	if s.Status != core.StatusDraft {
		return core.ErrNotDraft
	}
	return nil
}

// splitAtOffsets cuts text at the given character offsets. Offsets outside
// (0, len) are ignored; duplicates collapse.
func splitAtOffsets(text string, offsets []int) []string {
	runes := []rune(text)

	points := make([]int, 0, len(offsets))
	for _, p := range offsets {
		if p > 0 && p < len(runes) {
			points = append(points, p)
		}
	}
	slices.Sort(points)
	points = slices.Compact(points)

	blocks := make([]string, 0, len(points)+1)
	prev := 0
	for _, p := range points {
		blocks = append(blocks, string(runes[prev:p]))
		prev = p
	}
	blocks = append(blocks, string(runes[prev:]))
	return blocks
}
