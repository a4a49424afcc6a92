package vector

import (
	"context"

	"github.com/poiesic/curator/core"
)

// Store is the vector index the pipeline publishes into. Implementations
// must be thread-safe. Points are written in batches and replaced
// wholesale per source; nothing mutates a stored point in place.
type Store interface {
	// EnsureCollection creates a collection with the given vector
	// dimension if it does not exist. Idempotent; returns
	// ErrDimensionMismatch if it exists with a different dimension.
	EnsureCollection(ctx context.Context, name string, dim int) error

	// CollectionExists reports whether the collection exists.
	CollectionExists(ctx context.Context, name string) (bool, error)

	// Upsert writes points into a collection, overwriting any points with
	// the same IDs. Returns ErrCollectionNotFound for unknown collections.
	Upsert(ctx context.Context, collection string, points []*core.PublishedPoint) error

	// DeleteBySource removes every point whose payload carries the given
	// source ID. Returns the number of points removed. Deleting from a
	// source with no points is not an error.
	DeleteBySource(ctx context.Context, collection, sourceId string) (int, error)

	// Search returns points similar to the query vector with
	// score >= minScore, up to limit results, highest score first.
	Search(ctx context.Context, collection string, vector []float32, minScore float32, limit int) ([]*core.ScoredPoint, error)

	// Close releases store resources.
	Close() error
}
