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


// Package chunker decomposes structured documents into semantically coherent
// chunk candidates honoring min/target/max token thresholds, windowing
// oversized inputs across multiple LLM calls.
package chunker

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"strings"

	"github.com/poiesic/curator/ai"
	"github.com/poiesic/curator/core"
	"github.com/poiesic/curator/document"
	"github.com/poiesic/curator/tokens"
)

// Chunker produces chunk candidates from raw or structured content.
type Chunker struct {
	estimator tokens.Estimator
	classify  Classifier
	llm       ai.Chunker // optional; nil means structural chunking only

	minTokens    int
	targetTokens int
	maxTokens    int

	// windowing for oversized input
	maxInputTokens  int
	overlapFraction float64
	poolSize        int

	logger *slog.Logger
}

// Option configures a Chunker.
type Option func(*Chunker)

// WithTokenBounds sets the min/target/max chunk token thresholds.
func WithTokenBounds(min, target, max int) Option {
	return func(c *Chunker) {
		c.minTokens = min
		c.targetTokens = target
		c.maxTokens = max
	}
}

// WithModel sets the LLM chunking service. When set, ChunkContent sends
// content through the model (windowed if oversized) instead of the
// structural heuristic.
func WithModel(llm ai.Chunker) Option {
	return func(c *Chunker) {
		c.llm = llm
	}
}

// WithMaxInputTokens sets the model's per-call input budget above which
// content is windowed.
func WithMaxInputTokens(n int) Option {
	return func(c *Chunker) {
		c.maxInputTokens = n
	}
}

// WithOverlapFraction sets the share of a window repeated at the start of
// the next one, so boundary content appears in two adjacent windows.
func WithOverlapFraction(f float64) Option {
	return func(c *Chunker) {
		c.overlapFraction = f
	}
}

// WithClassifier replaces the default keyword heuristic.
func WithClassifier(classify Classifier) Option {
	return func(c *Chunker) {
		if classify != nil {
			c.classify = classify
		}
	}
}

// WithPoolSize sets the worker pool size for concurrent window calls.
func WithPoolSize(size int) Option {
	return func(c *Chunker) {
		if size >= 1 {
			c.poolSize = size
		}
	}
}

// WithLogger sets a custom logger. Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *Chunker) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New creates a Chunker with the given token estimator.
func New(estimator tokens.Estimator, opts ...Option) (*Chunker, error) {
	if estimator == nil {
		return nil, ErrEstimatorRequired
	}

	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}

	c := &Chunker{
		estimator:       estimator,
		classify:        DefaultClassifier,
		minTokens:       15,
		targetTokens:    250,
		maxTokens:       500,
		maxInputTokens:  8192,
		overlapFraction: 0.15,
		poolSize:        poolSize,
		logger:          slog.Default().With("component", "chunker"),
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.minTokens < 0 || c.minTokens > c.targetTokens || c.targetTokens > c.maxTokens {
		return nil, ErrInvalidBounds
	}
	return c, nil
}

// Hints returns the token thresholds passed to the chunking model.
func (c *Chunker) Hints() ai.ChunkHints {
	return ai.ChunkHints{
		MinTokens:    c.minTokens,
		TargetTokens: c.targetTokens,
		MaxTokens:    c.maxTokens,
	}
}

// ChunkContent turns normalized raw content into chunk candidates. With a
// model configured the content goes through the LLM (windowed when it
// exceeds the input budget); otherwise it is structured and chunked
// heuristically. Never fails on oversized input.
func (c *Chunker) ChunkContent(ctx context.Context, content string) ([]core.ChunkCandidate, error) {
	if core.IsBlank(content) {
		return nil, core.ErrEmptyContent
	}
	content = core.NormalizeContent(content)

	if c.llm != nil {
		return c.chunkWithModel(ctx, content)
	}

	return c.finalize(c.ChunkDocument(document.Structure(content))), nil
}

// ChunkDocument converts a structured document into an ordered candidate
// list: sections in tree order, then tables one row per candidate, then
// code blocks.
func (c *Chunker) ChunkDocument(doc *document.Document) []core.ChunkCandidate {
	var candidates []core.ChunkCandidate

	for _, section := range doc.Sections {
		candidates = c.walkSection(section, nil, candidates)
	}

	for _, table := range doc.Tables {
		candidates = append(candidates, c.chunkTable(table)...)
	}

	for _, block := range doc.CodeBlocks {
		candidates = append(candidates, c.chunkCode(block)...)
	}

	return c.finalize(candidates)
}

// walkSection chunks one section's own content and recurses into children,
// accumulating the heading-path breadcrumb.
func (c *Chunker) walkSection(section *document.Section, parentPath []string, candidates []core.ChunkCandidate) []core.ChunkCandidate {
	path := parentPath
	if section.Heading != "" {
		path = append(append([]string{}, parentPath...), section.Heading)
	}

	if !core.IsBlank(section.Content) {
		candidates = append(candidates, c.chunkSectionContent(section.Content, path)...)
	}

	for _, child := range section.Children {
		candidates = c.walkSection(child, path, candidates)
	}
	return candidates
}

// chunkSectionContent emits a section body as one candidate when it fits the
// target, otherwise splits it on semantic boundaries into sub-chunks no
// larger than maxTokens, dropping fragments under minTokens. Heading paths
// of all but the first fragment carry a part index.
func (c *Chunker) chunkSectionContent(content string, path []string) []core.ChunkCandidate {
	content = strings.TrimSpace(content)

	if c.estimator.Estimate(content) <= c.targetTokens {
		return []core.ChunkCandidate{{
			Text:        content,
			HeadingPath: path,
			Type:        c.classify(content),
		}}
	}

	parts := c.splitSemantic(content)
	candidates := make([]core.ChunkCandidate, 0, len(parts))
	for _, part := range parts {
		if c.estimator.Estimate(part) < c.minTokens {
			continue
		}
		partPath := path
		if len(candidates) > 0 {
			partPath = append(append([]string{}, path...), fmt.Sprintf("part %d", len(candidates)+1))
		}
		candidates = append(candidates, core.ChunkCandidate{
			Text:        part,
			HeadingPath: partPath,
			Type:        c.classify(part),
		})
	}
	return candidates
}

// splitSemantic splits content that exceeds the target into pieces of at
// most maxTokens, preferring paragraph boundaries, then sentences.
func (c *Chunker) splitSemantic(content string) []string {
	var segments []string
	for _, para := range strings.Split(content, "\n\n") {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		if c.estimator.Estimate(para) <= c.maxTokens {
			segments = append(segments, para)
			continue
		}
		segments = append(segments, c.splitSentences(para)...)
	}

	// Greedily merge adjacent segments up to the target size.
	var merged []string
	var pending string
	for _, segment := range segments {
		if pending == "" {
			pending = segment
			continue
		}
		joined := pending + "\n\n" + segment
		if c.estimator.Estimate(joined) <= c.targetTokens {
			pending = joined
			continue
		}
		merged = append(merged, pending)
		pending = segment
	}
	if pending != "" {
		merged = append(merged, pending)
	}
	return merged
}

// splitSentences accumulates sentences up to maxTokens per piece. A single
// sentence above the budget is emitted as its own piece rather than cut
// mid-word.
func (c *Chunker) splitSentences(text string) []string {
	sentences := splitAfterTerminators(text)

	var pieces []string
	var pending string
	for _, sentence := range sentences {
		if pending == "" {
			pending = sentence
			continue
		}
		joined := pending + " " + sentence
		if c.estimator.Estimate(joined) <= c.maxTokens {
			pending = joined
			continue
		}
		pieces = append(pieces, pending)
		pending = sentence
	}
	if pending != "" {
		pieces = append(pieces, pending)
	}
	return pieces
}

// splitAfterTerminators splits text after sentence-ending punctuation
// followed by whitespace, and on hard line breaks.
func splitAfterTerminators(text string) []string {
	var sentences []string
	var start int
	runes := []rune(text)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		terminal := r == '.' || r == '!' || r == '?' || r == '。' || r == '\n'
		if !terminal {
			continue
		}
		if r != '\n' && i+1 < len(runes) && runes[i+1] != ' ' && runes[i+1] != '\n' {
			continue
		}
		sentence := strings.TrimSpace(string(runes[start : i+1]))
		if sentence != "" {
			sentences = append(sentences, sentence)
		}
		start = i + 1
	}
	if tail := strings.TrimSpace(string(runes[start:])); tail != "" {
		sentences = append(sentences, tail)
	}
	return sentences
}

// chunkTable emits one candidate per table row, cells joined with a
// separator. The heading path is ["Table", caption?] plus the joined
// header row.
func (c *Chunker) chunkTable(table document.Table) []core.ChunkCandidate {
	path := []string{"Table"}
	if table.Caption != "" {
		path = append(path, table.Caption)
	}
	if len(table.Headers) > 0 {
		path = append(path, strings.Join(table.Headers, " | "))
	}

	candidates := make([]core.ChunkCandidate, 0, len(table.Rows))
	for _, row := range table.Rows {
		text := strings.Join(row, " | ")
		if core.IsBlank(text) {
			continue
		}
		candidates = append(candidates, core.ChunkCandidate{
			Text:        text,
			HeadingPath: path,
			Type:        core.ChunkTypeTableRow,
		})
	}
	return candidates
}

// chunkCode emits a code block intact when within maxTokens, else split at
// line boundaries accumulating until the budget is reached.
func (c *Chunker) chunkCode(block document.CodeBlock) []core.ChunkCandidate {
	if core.IsBlank(block.Code) {
		return nil
	}

	path := []string{"Code"}
	if block.Language != "" {
		path = append(path, block.Language)
	}

	if c.estimator.Estimate(block.Code) <= c.maxTokens {
		return []core.ChunkCandidate{{
			Text:        block.Code,
			HeadingPath: path,
			Type:        core.ChunkTypeCode,
		}}
	}

	var candidates []core.ChunkCandidate
	var pending []string
	var pendingTokens int
	flush := func() {
		if len(pending) == 0 {
			return
		}
		partPath := path
		if len(candidates) > 0 {
			partPath = append(append([]string{}, path...), fmt.Sprintf("part %d", len(candidates)+1))
		}
		candidates = append(candidates, core.ChunkCandidate{
			Text:        strings.Join(pending, "\n"),
			HeadingPath: partPath,
			Type:        core.ChunkTypeCode,
		})
		pending = nil
		pendingTokens = 0
	}

	for _, line := range strings.Split(block.Code, "\n") {
		lineTokens := c.estimator.Estimate(line) + 1
		if pendingTokens+lineTokens > c.maxTokens && len(pending) > 0 {
			flush()
		}
		pending = append(pending, line)
		pendingTokens += lineTokens
	}
	flush()
	return candidates
}

// finalize renumbers candidates sequentially and fills in token counts.
func (c *Chunker) finalize(candidates []core.ChunkCandidate) []core.ChunkCandidate {
	for i := range candidates {
		candidates[i].Id = uint32(i + 1)
		candidates[i].TokenCount = c.estimator.Estimate(candidates[i].Text)
	}
	return candidates
}
