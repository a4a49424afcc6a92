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

package chunker

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/panjf2000/ants/v2"

	"github.com/poiesic/curator/core"
)

// chunkWithModel sends content through the LLM. Content within the model's
// input budget goes in a single call; larger content is windowed with
// overlap and the per-window results merged in order with boundary
// duplicates removed.
func (c *Chunker) chunkWithModel(ctx context.Context, content string) ([]core.ChunkCandidate, error) {
	hints := c.Hints()

	if c.estimator.Estimate(content) <= c.maxInputTokens {
		candidates, err := c.llm.ChunkWindow(ctx, content, hints)
		if err != nil {
			return nil, err
		}
		return c.finalize(candidates), nil
	}

	windows := c.splitWindows(content)
	c.logger.Info("windowing oversized content",
		"windows", len(windows),
		"maxInputTokens", c.maxInputTokens)

	results := make([][]core.ChunkCandidate, len(windows))
	errs := make([]error, len(windows))

	pool, err := ants.NewPool(c.poolSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create chunking pool: %w", err)
	}
	defer pool.Release()

	var wg sync.WaitGroup
	for i, window := range windows {
		wg.Add(1)
		idx, win := i, window
		submitErr := pool.Submit(func() {
			defer wg.Done()
			results[idx], errs[idx] = c.llm.ChunkWindow(ctx, win, hints)
		})
		if submitErr != nil {
			wg.Done()
			errs[idx] = fmt.Errorf("failed to submit window %d: %w", idx, submitErr)
		}
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			return nil, fmt.Errorf("window %d of %d failed: %w", i+1, len(windows), err)
		}
	}

	return c.finalize(c.mergeWindows(results)), nil
}

// splitWindows cuts content at line boundaries into windows within the
// model's input budget. Each window after the first starts with the
// overlap tail of the previous one so chunks spanning a boundary are seen
// whole by at least one call.
func (c *Chunker) splitWindows(content string) []string {
	lines := strings.Split(content, "\n")
	overlapBudget := int(float64(c.maxInputTokens) * c.overlapFraction)

	var windows []string
	var pending []string
	var pendingTokens int

	flush := func() {
		if len(pending) == 0 {
			return
		}
		windows = append(windows, strings.Join(pending, "\n"))

		// Seed the next window with the tail of this one.
		var tail []string
		var tailTokens int
		for i := len(pending) - 1; i >= 0; i-- {
			lineTokens := c.estimator.Estimate(pending[i]) + 1
			if tailTokens+lineTokens > overlapBudget {
				break
			}
			tail = append([]string{pending[i]}, tail...)
			tailTokens += lineTokens
		}
		pending = tail
		pendingTokens = tailTokens
	}

	for _, line := range lines {
		lineTokens := c.estimator.Estimate(line) + 1
		if pendingTokens+lineTokens > c.maxInputTokens && len(pending) > 0 {
			flush()
		}
		pending = append(pending, line)
		pendingTokens += lineTokens
	}
	if len(pending) > 0 {
		windows = append(windows, strings.Join(pending, "\n"))
	}
	return windows
}

// mergeWindows concatenates per-window candidates in window order and
// removes duplicates produced by the overlap regions. Texts are compared
// case-insensitively with whitespace collapsed.
func (c *Chunker) mergeWindows(results [][]core.ChunkCandidate) []core.ChunkCandidate {
	seen := make(map[string]struct{})
	var merged []core.ChunkCandidate
	for _, window := range results {
		for _, candidate := range window {
			key := dedupKey(candidate.Text)
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			merged = append(merged, candidate)
		}
	}
	return merged
}

func dedupKey(text string) string {
	return strings.Join(strings.Fields(strings.ToLower(text)), " ")
}
