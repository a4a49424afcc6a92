package mock

import (
	"context"
	"strings"
	"sync"

	"github.com/poiesic/curator/ai"
	"github.com/poiesic/curator/core"
)

// MockChunker is a test double for ai.Chunker.
// It allows custom behavior injection via function fields.
// Safe for concurrent use: the semantic chunker calls windows in parallel.
type MockChunker struct {
	// ChunkWindowFunc is called by ChunkWindow if set.
	// If nil, uses default paragraph splitting.
	ChunkWindowFunc func(ctx context.Context, window string, hints ai.ChunkHints) ([]core.ChunkCandidate, error)

	mu        sync.Mutex
	callCount int
	windows   []string
}

// NewMockChunker creates a mock chunker with default paragraph splitting.
func NewMockChunker() *MockChunker {
	return &MockChunker{}
}

// ChunkWindow splits the window into paragraph chunks.
// Default behavior: one candidate per blank-line-separated paragraph,
// mirroring what a well-behaved chunking model would return.
func (m *MockChunker) ChunkWindow(ctx context.Context, window string, hints ai.ChunkHints) ([]core.ChunkCandidate, error) {
	m.mu.Lock()
	m.callCount++
	m.windows = append(m.windows, window)
	m.mu.Unlock()

	if m.ChunkWindowFunc != nil {
		return m.ChunkWindowFunc(ctx, window, hints)
	}

	if strings.TrimSpace(window) == "" {
		return nil, ai.ErrEmptyInput
	}

	var candidates []core.ChunkCandidate
	for _, para := range strings.Split(window, "\n\n") {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		candidates = append(candidates, core.ChunkCandidate{
			Id:   uint32(len(candidates) + 1),
			Text: para,
			Type: core.ChunkTypeKnowledge,
		})
	}
	return candidates, nil
}

// CallCount returns the number of times ChunkWindow was called.
func (m *MockChunker) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.callCount
}

// Windows returns the window inputs received, in call order.
func (m *MockChunker) Windows() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.windows...)
}

// Reset clears the call count, recorded windows, and custom functions.
func (m *MockChunker) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callCount = 0
	m.windows = nil
	m.ChunkWindowFunc = nil
}
