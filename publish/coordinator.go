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


package publish

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/poiesic/curator/core"
	"github.com/poiesic/curator/storage"
	"github.com/poiesic/curator/vector"
)

// Result reports the outcome of a publish.
type Result struct {
	SessionId       string
	Collection      string
	PublishedChunks int
}

// Coordinator runs the ordered publish sequence. It never partially
// commits: embedding failures abort before any vector-store mutation, and
// the session is only retired after a fully successful upsert.
type Coordinator struct {
	repo    storage.SessionRepository
	store   vector.Store
	batcher *Batcher
	logger  *slog.Logger
}

// CoordinatorOption configures a Coordinator.
type CoordinatorOption func(*Coordinator)

// WithLogger sets a custom logger. Default is slog.Default().
func WithLogger(logger *slog.Logger) CoordinatorOption {
	return func(c *Coordinator) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewCoordinator creates a publish coordinator.
func NewCoordinator(repo storage.SessionRepository, store vector.Store, batcher *Batcher, opts ...CoordinatorOption) (*Coordinator, error) {
	if repo == nil {
		return nil, fmt.Errorf("session repository required")
	}
	if store == nil {
		return nil, fmt.Errorf("vector store required")
	}
	if batcher == nil {
		return nil, fmt.Errorf("embedding batcher required")
	}

	c := &Coordinator{
		repo:    repo,
		store:   store,
		batcher: batcher,
		logger:  slog.Default().With("component", "publish"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Publish replaces the previously published content of the session's
// source with the session's current chunks, then retires the session.
//
// Step order is load, collection check, embed, delete-by-source, insert,
// session delete. Embedding is ordered before deletion so a failed embed
// can never destroy previously published content; deletion before
// insertion avoids duplicate points for one source. The window between
// delete and insert is a brief accepted inconsistency.
func (c *Coordinator) Publish(ctx context.Context, sessionId, collection, actingUserId string) (*Result, error) {
	session, err := c.repo.GetSession(ctx, sessionId)
	if err != nil {
		return nil, err
	}

	exists, err := c.store.CollectionExists(ctx, collection)
	if err != nil {
		return nil, fmt.Errorf("failed to check collection %s: %w", collection, err)
	}
	if !exists {
		return nil, fmt.Errorf("%w: %s", vector.ErrCollectionNotFound, collection)
	}

	// Empty and whitespace-only chunks never publish.
	surviving := make([]core.Chunk, 0, len(session.Chunks))
	for _, chunk := range session.Chunks {
		if !core.IsBlank(chunk.Text) {
			surviving = append(surviving, chunk)
		}
	}

	if len(surviving) == 0 {
		c.logger.Info("nothing to publish",
			"sessionId", sessionId,
			"collection", collection)
		return &Result{
			SessionId:       sessionId,
			Collection:      collection,
			PublishedChunks: 0,
		}, nil
	}

	texts := make([]string, len(surviving))
	for i, chunk := range surviving {
		texts[i] = chunk.Text
	}

	// Any failure here surfaces before the store is touched, leaving both
	// the published points and the session intact for a retry.
	vectors, err := c.batcher.EmbedAll(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("embedding failed, vector store untouched: %w", err)
	}

	points := c.buildPoints(session, surviving, vectors, actingUserId)

	if _, err := c.store.DeleteBySource(ctx, collection, session.SourceId); err != nil {
		return nil, fmt.Errorf("failed to delete stale points for %s: %w", session.SourceId, err)
	}

	if err := c.store.Upsert(ctx, collection, points); err != nil {
		return nil, fmt.Errorf("failed to insert points for %s: %w", session.SourceId, err)
	}

	// Removal is the terminal PUBLISHED transition. A failure here leaves
	// a published source with a stale session; republishing is idempotent.
	if err := c.repo.DeleteSession(ctx, sessionId); err != nil {
		return nil, fmt.Errorf("published but failed to retire session %s: %w", sessionId, err)
	}

	c.logger.Info("source published",
		"sessionId", sessionId,
		"sourceId", session.SourceId,
		"collection", collection,
		"publishedChunks", len(points))

	return &Result{
		SessionId:       sessionId,
		Collection:      collection,
		PublishedChunks: len(points),
	}, nil
}

// buildPoints pairs surviving chunks with their vectors. The revision is
// the session's version stamp, so every republish of a source yields a
// fresh deterministic point id set.
func (c *Coordinator) buildPoints(session *core.Session, chunks []core.Chunk, vectors [][]float32, actingUserId string) []*core.PublishedPoint {
	now := time.Now().UTC()
	points := make([]*core.PublishedPoint, len(chunks))
	for i, chunk := range chunks {
		points[i] = &core.PublishedPoint{
			Id:     core.PointID(session.SourceId, session.Version, i),
			Vector: vectors[i],
			Payload: core.PointPayload{
				Text:           chunk.Text,
				HeadingPath:    chunk.HeadingPath,
				Type:           chunk.Type,
				SourceType:     session.SourceType,
				SourceURL:      session.SourceURL,
				SourceId:       session.SourceId,
				Revision:       session.Version,
				LastModifiedBy: actingUserId,
				LastModifiedAt: now,
			},
		}
	}
	return points
}
