package mock

import "github.com/poiesic/curator/ai"

// MockProvider is a test double for ai.Provider bundling the mock services.
type MockProvider struct {
	MockEmbedder *MockEmbedder
	MockChunker  *MockChunker
}

// NewMockProvider creates a provider wrapping fresh mock services.
func NewMockProvider() *MockProvider {
	return &MockProvider{
		MockEmbedder: NewMockEmbedder(),
		MockChunker:  NewMockChunker(),
	}
}

// Embedder returns the mock embedding service.
func (p *MockProvider) Embedder() ai.Embedder {
	return p.MockEmbedder
}

// Chunker returns the mock chunking service.
func (p *MockProvider) Chunker() ai.Chunker {
	return p.MockChunker
}

// Close is a no-op.
func (p *MockProvider) Close() error {
	return nil
}
