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


package ai

import (
	"errors"
	"strings"
	"time"
)

// Config holds configuration for AI service providers.
type Config struct {
	// EmbeddingHost is the base URL for the embedding service API.
	// Example: "http://localhost:11434/v1" for a local OpenAI-compatible server
	EmbeddingHost string

	// ChunkerHost is the base URL for the chunking model API.
	ChunkerHost string

	// EmbeddingModel is the model identifier to use for text embeddings.
	// Example: "embeddinggemma", "text-embedding-3-small"
	EmbeddingModel string

	// ChunkerModel is the model identifier to use for semantic chunking.
	// Example: "qwen2.5:3b", "gpt-4o-mini"
	ChunkerModel string

	// MaxInputTokens is the chunking model's input budget per call.
	// Documents above this are windowed by the semantic chunker.
	MaxInputTokens int

	// CallTimeout bounds each upstream call.
	CallTimeout time.Duration

	// ParseAttempts is how many times a malformed chunking response is
	// re-requested before the failure is reported as permanent.
	ParseAttempts int
}

// ConfigOption is a functional option for configuring a Config.
type ConfigOption func(*Config)

// WithEmbeddingHost sets the embedding service host URL.
func WithEmbeddingHost(host string) ConfigOption {
	return func(c *Config) {
		c.EmbeddingHost = host
	}
}

// WithChunkerHost sets the chunking model host URL.
func WithChunkerHost(host string) ConfigOption {
	return func(c *Config) {
		c.ChunkerHost = host
	}
}

// WithHost sets both embedding and chunker hosts to the same URL.
func WithHost(host string) ConfigOption {
	return func(c *Config) {
		c.EmbeddingHost = host
		c.ChunkerHost = host
	}
}

// WithEmbeddingModel sets the embedding model identifier.
func WithEmbeddingModel(model string) ConfigOption {
	return func(c *Config) {
		c.EmbeddingModel = model
	}
}

// WithChunkerModel sets the chunking model identifier.
func WithChunkerModel(model string) ConfigOption {
	return func(c *Config) {
		c.ChunkerModel = model
	}
}

// WithMaxInputTokens sets the chunking model's per-call input budget.
func WithMaxInputTokens(n int) ConfigOption {
	return func(c *Config) {
		c.MaxInputTokens = n
	}
}

// WithCallTimeout sets the per-call timeout for upstream requests.
func WithCallTimeout(d time.Duration) ConfigOption {
	return func(c *Config) {
		c.CallTimeout = d
	}
}

// DefaultConfig returns a Config with sensible defaults for local
// OpenAI-compatible services.
func DefaultConfig() *Config {
	defaultHost := "http://localhost:11434/v1"
	return &Config{
		EmbeddingHost:  defaultHost,
		ChunkerHost:    defaultHost,
		EmbeddingModel: "embeddinggemma",
		ChunkerModel:   "qwen2.5:3b",
		MaxInputTokens: 8192,
		CallTimeout:    2 * time.Minute,
		ParseAttempts:  3,
	}
}

// NewConfig creates a Config with defaults and applies the provided options.
func NewConfig(opts ...ConfigOption) *Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Normalize ensures the configuration is in a canonical form. It adds the
// /v1 suffix to hosts if missing, which is required by most OpenAI-compatible
// APIs (Ollama, LocalAI, vLLM, etc).
func (c *Config) Normalize() {
	if c.EmbeddingHost != "" && !strings.HasSuffix(c.EmbeddingHost, "/v1") {
		c.EmbeddingHost = strings.TrimSuffix(c.EmbeddingHost, "/") + "/v1"
	}
	if c.ChunkerHost != "" && !strings.HasSuffix(c.ChunkerHost, "/v1") {
		c.ChunkerHost = strings.TrimSuffix(c.ChunkerHost, "/") + "/v1"
	}
}

// Validate checks that the configuration is valid and complete.
// It automatically normalizes the configuration before validation.
func (c *Config) Validate() error {
	c.Normalize()

	if c.EmbeddingHost == "" {
		return errors.New("ai config: EmbeddingHost is required")
	}
	if c.ChunkerHost == "" {
		return errors.New("ai config: ChunkerHost is required")
	}
	if c.EmbeddingModel == "" {
		return errors.New("ai config: EmbeddingModel is required")
	}
	if c.ChunkerModel == "" {
		return errors.New("ai config: ChunkerModel is required")
	}
	if c.MaxInputTokens < 1 {
		return errors.New("ai config: MaxInputTokens must be positive")
	}
	if c.ParseAttempts < 1 {
		return errors.New("ai config: ParseAttempts must be positive")
	}
	return nil
}
