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


package curator

import (
	"log/slog"
	"time"

	"github.com/poiesic/curator/ai"
	"github.com/poiesic/curator/ai/openai"
	"github.com/poiesic/curator/chunker"
	"github.com/poiesic/curator/ingest"
	"github.com/poiesic/curator/publish"
	"github.com/poiesic/curator/session"
	"github.com/poiesic/curator/storage"
	"github.com/poiesic/curator/storage/badger"
	"github.com/poiesic/curator/tokens"
	"github.com/poiesic/curator/vector"
	vectorbadger "github.com/poiesic/curator/vector/badger"
)

// Pipeline bundles the backend, repositories, AI provider and stage
// services behind one lifecycle.
type Pipeline struct {
	backend     *badger.Backend
	sessionRepo storage.SessionRepository
	vectorStore vector.Store
	provider    ai.Provider
	estimator   tokens.Estimator
	chunker     *chunker.Chunker
	logger      *slog.Logger
}

// PipelineOption configures a Pipeline.
type PipelineOption func(*pipelineOptions)

type pipelineOptions struct {
	aiConfig   *ai.Config
	sessionTTL time.Duration
	inMemory   bool
}

// WithAIConfig replaces the default AI configuration.
func WithAIConfig(config *ai.Config) PipelineOption {
	return func(o *pipelineOptions) {
		if config != nil {
			o.aiConfig = config
		}
	}
}

// WithSessionTTL sets the draft session lifetime.
func WithSessionTTL(ttl time.Duration) PipelineOption {
	return func(o *pipelineOptions) {
		o.sessionTTL = ttl
	}
}

// WithInMemory runs the pipeline on an in-memory backend. Used by tests
// and throwaway environments; nothing survives Close.
func WithInMemory() PipelineOption {
	return func(o *pipelineOptions) {
		o.inMemory = true
	}
}

// NewPipeline opens the backend at filePath and assembles the full
// curation pipeline around it.
func NewPipeline(filePath string, opts ...PipelineOption) (*Pipeline, error) {
	options := &pipelineOptions{
		aiConfig:   ai.DefaultConfig(),
		sessionTTL: badger.DefaultSessionTTL,
	}
	for _, opt := range opts {
		opt(options)
	}

	if err := options.aiConfig.Validate(); err != nil {
		return nil, err
	}
	options.aiConfig.Normalize()

	backend, err := badger.OpenBackend(filePath, options.inMemory)
	if err != nil {
		return nil, err
	}

	sessionRepo, err := badger.NewSessionRepository(backend, options.sessionTTL)
	if err != nil {
		backend.Close()
		return nil, err
	}

	vectorStore, err := vectorbadger.NewStore(backend)
	if err != nil {
		sessionRepo.Close()
		backend.Close()
		return nil, err
	}

	provider, err := openai.NewProvider(options.aiConfig)
	if err != nil {
		vectorStore.Close()
		sessionRepo.Close()
		backend.Close()
		return nil, err
	}

	// Fall back to the heuristic when the BPE for the model is unknown.
	var estimator tokens.Estimator
	if tiktoken, err := tokens.NewEstimator(options.aiConfig.ChunkerModel); err == nil {
		estimator = tiktoken
	} else {
		estimator = tokens.HeuristicEstimator{}
	}

	semanticChunker, err := chunker.New(estimator,
		chunker.WithModel(provider.Chunker()),
		chunker.WithMaxInputTokens(options.aiConfig.MaxInputTokens))
	if err != nil {
		provider.Close()
		vectorStore.Close()
		sessionRepo.Close()
		backend.Close()
		return nil, err
	}

	return &Pipeline{
		backend:     backend,
		sessionRepo: sessionRepo,
		vectorStore: vectorStore,
		provider:    provider,
		estimator:   estimator,
		chunker:     semanticChunker,
		logger:      slog.Default(),
	}, nil
}

// Close releases every resource the pipeline owns.
func (p *Pipeline) Close() error {
	if err := p.provider.Close(); err != nil {
		p.logger.Error("error closing AI provider", "err", err)
	}
	if err := p.vectorStore.Close(); err != nil {
		p.logger.Error("error closing vector store", "err", err)
		return err
	}
	if err := p.sessionRepo.Close(); err != nil {
		p.logger.Error("error closing session repository", "err", err)
		return err
	}
	if err := p.backend.Close(); err != nil {
		p.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}

// SessionRepository exposes the draft store.
func (p *Pipeline) SessionRepository() storage.SessionRepository {
	return p.sessionRepo
}

// VectorStore exposes the vector index.
func (p *Pipeline) VectorStore() vector.Store {
	return p.vectorStore
}

// Chunker exposes the semantic chunker.
func (p *Pipeline) Chunker() *chunker.Chunker {
	return p.chunker
}

// NewIngestPipeline builds the ingestion stage over the shared repository
// and chunker.
func (p *Pipeline) NewIngestPipeline(opts ...ingest.PipelineOption) (*ingest.Pipeline, error) {
	base := []ingest.PipelineOption{ingest.WithChunker(p.chunker)}
	return ingest.NewPipeline(p.sessionRepo, append(base, opts...)...)
}

// NewSessionEngine builds the chunk mutation engine over the shared
// repository and chunker.
func (p *Pipeline) NewSessionEngine(opts ...session.EngineOption) (*session.Engine, error) {
	base := []session.EngineOption{
		session.WithChunker(p.chunker),
		session.WithEstimator(p.estimator),
	}
	return session.NewEngine(p.sessionRepo, append(base, opts...)...)
}

// NewPublishCoordinator builds the publish stage over the shared
// repository, vector store and embedder.
func (p *Pipeline) NewPublishCoordinator(opts ...publish.BatcherOption) (*publish.Coordinator, error) {
	batcher, err := publish.NewBatcher(p.provider.Embedder(), opts...)
	if err != nil {
		return nil, err
	}
	return publish.NewCoordinator(p.sessionRepo, p.vectorStore, batcher)
}
