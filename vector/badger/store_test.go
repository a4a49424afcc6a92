package badger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/poiesic/curator/core"
	storagebadger "github.com/poiesic/curator/storage/badger"
	"github.com/poiesic/curator/vector"
)

func newTestStore(t *testing.T) vector.Store {
	t.Helper()
	backend, err := storagebadger.OpenBackend("", true)
	if err != nil {
		t.Fatalf("Failed to open backend: %v", err)
	}
	store, err := NewStore(backend)
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
		backend.Close()
	})
	return store
}

func testPoint(sourceId string, revision uint64, index int, vec []float32) *core.PublishedPoint {
	return &core.PublishedPoint{
		Id:     core.PointID(sourceId, revision, index),
		Vector: vec,
		Payload: core.PointPayload{
			Text:           "chunk text",
			SourceType:     core.SourceTypeManual,
			SourceId:       sourceId,
			Revision:       revision,
			LastModifiedAt: time.Now().UTC(),
		},
	}
}

func TestEnsureCollection(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	exists, err := store.CollectionExists(ctx, "kb")
	if err != nil {
		t.Fatalf("Failed to check collection: %v", err)
	}
	if exists {
		t.Fatal("Expected collection to not exist yet")
	}

	if err := store.EnsureCollection(ctx, "kb", 4); err != nil {
		t.Fatalf("Failed to ensure collection: %v", err)
	}
	// Idempotent with the same dimension.
	if err := store.EnsureCollection(ctx, "kb", 4); err != nil {
		t.Fatalf("Expected ensure to be idempotent: %v", err)
	}
	// Different dimension is rejected.
	if err := store.EnsureCollection(ctx, "kb", 8); !errors.Is(err, vector.ErrDimensionMismatch) {
		t.Fatalf("Expected ErrDimensionMismatch, got %v", err)
	}

	exists, err = store.CollectionExists(ctx, "kb")
	if err != nil {
		t.Fatalf("Failed to check collection: %v", err)
	}
	if !exists {
		t.Fatal("Expected collection to exist")
	}
}

func TestUpsertUnknownCollection(t *testing.T) {
	store := newTestStore(t)

	err := store.Upsert(context.Background(), "nope", []*core.PublishedPoint{
		testPoint("src-1", 1, 0, []float32{1, 0, 0, 0}),
	})
	if !errors.Is(err, vector.ErrCollectionNotFound) {
		t.Fatalf("Expected ErrCollectionNotFound, got %v", err)
	}
}

func TestUpsertDimensionMismatch(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if err := store.EnsureCollection(ctx, "kb", 4); err != nil {
		t.Fatalf("Failed to ensure collection: %v", err)
	}
	err := store.Upsert(ctx, "kb", []*core.PublishedPoint{
		testPoint("src-1", 1, 0, []float32{1, 0}),
	})
	if !errors.Is(err, vector.ErrDimensionMismatch) {
		t.Fatalf("Expected ErrDimensionMismatch, got %v", err)
	}
}

func TestUpsertAndSearch(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if err := store.EnsureCollection(ctx, "kb", 4); err != nil {
		t.Fatalf("Failed to ensure collection: %v", err)
	}

	points := []*core.PublishedPoint{
		testPoint("src-1", 1, 0, []float32{1, 0, 0, 0}),
		testPoint("src-1", 1, 1, []float32{0, 1, 0, 0}),
		testPoint("src-2", 1, 0, []float32{0.9, 0.1, 0, 0}),
	}
	if err := store.Upsert(ctx, "kb", points); err != nil {
		t.Fatalf("Failed to upsert: %v", err)
	}

	results, err := store.Search(ctx, "kb", []float32{1, 0, 0, 0}, 0.5, 10)
	if err != nil {
		t.Fatalf("Failed to search: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("Expected 2 hits above threshold, got %d", len(results))
	}
	if results[0].Point.Id != points[0].Id {
		t.Fatalf("Expected exact match first, got %s", results[0].Point.Id)
	}
	if results[0].Score < results[1].Score {
		t.Fatal("Expected descending score order")
	}
}

func TestSearchLimit(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if err := store.EnsureCollection(ctx, "kb", 4); err != nil {
		t.Fatalf("Failed to ensure collection: %v", err)
	}
	var points []*core.PublishedPoint
	for i := 0; i < 5; i++ {
		points = append(points, testPoint("src-1", 1, i, []float32{1, 0, 0, 0}))
	}
	if err := store.Upsert(ctx, "kb", points); err != nil {
		t.Fatalf("Failed to upsert: %v", err)
	}

	results, err := store.Search(ctx, "kb", []float32{1, 0, 0, 0}, 0, 3)
	if err != nil {
		t.Fatalf("Failed to search: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("Expected limit of 3, got %d", len(results))
	}
}

func TestUpsertOverwritesSameID(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if err := store.EnsureCollection(ctx, "kb", 4); err != nil {
		t.Fatalf("Failed to ensure collection: %v", err)
	}

	point := testPoint("src-1", 1, 0, []float32{1, 0, 0, 0})
	if err := store.Upsert(ctx, "kb", []*core.PublishedPoint{point}); err != nil {
		t.Fatalf("Failed to upsert: %v", err)
	}
	point.Payload.Text = "replaced"
	if err := store.Upsert(ctx, "kb", []*core.PublishedPoint{point}); err != nil {
		t.Fatalf("Failed to re-upsert: %v", err)
	}

	results, err := store.Search(ctx, "kb", []float32{1, 0, 0, 0}, 0.5, 10)
	if err != nil {
		t.Fatalf("Failed to search: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("Expected a single point after overwrite, got %d", len(results))
	}
	if results[0].Point.Payload.Text != "replaced" {
		t.Fatalf("Expected overwritten payload, got %q", results[0].Point.Payload.Text)
	}
}

func TestDeleteBySource(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if err := store.EnsureCollection(ctx, "kb", 4); err != nil {
		t.Fatalf("Failed to ensure collection: %v", err)
	}

	points := []*core.PublishedPoint{
		testPoint("src-1", 1, 0, []float32{1, 0, 0, 0}),
		testPoint("src-1", 1, 1, []float32{0, 1, 0, 0}),
		testPoint("src-2", 1, 0, []float32{0, 0, 1, 0}),
	}
	if err := store.Upsert(ctx, "kb", points); err != nil {
		t.Fatalf("Failed to upsert: %v", err)
	}

	deleted, err := store.DeleteBySource(ctx, "kb", "src-1")
	if err != nil {
		t.Fatalf("Failed to delete by source: %v", err)
	}
	if deleted != 2 {
		t.Fatalf("Expected 2 deletions, got %d", deleted)
	}

	results, err := store.Search(ctx, "kb", []float32{1, 1, 1, 1}, -1, 10)
	if err != nil {
		t.Fatalf("Failed to search: %v", err)
	}
	if len(results) != 1 || results[0].Point.Payload.SourceId != "src-2" {
		t.Fatalf("Expected only src-2 to survive, got %d results", len(results))
	}

	// Deleting an absent source is a no-op.
	deleted, err = store.DeleteBySource(ctx, "kb", "src-1")
	if err != nil {
		t.Fatalf("Failed on empty delete: %v", err)
	}
	if deleted != 0 {
		t.Fatalf("Expected 0 deletions, got %d", deleted)
	}
}
