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


// Package badger implements vector.Store on BadgerDB with a linear cosine
// scan. Suitable for the collection sizes a curation workflow produces;
// swapping in a dedicated vector database only requires another
// vector.Store implementation.
package badger

import (
	"context"
	"encoding/binary"
	"errors"
	"slices"

	"github.com/dgraph-io/badger/v4"

	"github.com/poiesic/curator/core"
	"github.com/poiesic/curator/storage"
	storagebadger "github.com/poiesic/curator/storage/badger"
	"github.com/poiesic/curator/vector"
)

// Store implements vector.Store.
type Store struct {
	backend *storagebadger.Backend
}

var _ vector.Store = (*Store)(nil)

// NewStore creates a vector store on top of a backend. The backend may be
// shared with the session repository; key prefixes keep the spaces apart.
func NewStore(backend *storagebadger.Backend) (vector.Store, error) {
	if backend == nil {
		return nil, errors.New("backend is required")
	}
	return &Store{backend: backend}, nil
}

// Close releases store resources. The shared backend is closed by its owner.
func (s *Store) Close() error {
	return nil
}

// EnsureCollection creates the collection metadata record if absent.
func (s *Store) EnsureCollection(ctx context.Context, name string, dim int) error {
	return s.backend.WithTx(func(tx *badger.Txn) error {
		key := makeCollectionKey(name)

		item, err := tx.Get(key)
		if err == nil {
			var existing int
			if err := item.Value(func(val []byte) error {
				existing = decodeDim(val)
				return nil
			}); err != nil {
				return err
			}
			if existing != dim {
				return vector.ErrDimensionMismatch
			}
			return nil
		}
		if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}

		if err := tx.Set(key, encodeDim(dim)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// CollectionExists reports whether the collection exists.
func (s *Store) CollectionExists(ctx context.Context, name string) (bool, error) {
	var exists bool
	err := s.backend.WithTx(func(tx *badger.Txn) error {
		_, err := tx.Get(makeCollectionKey(name))
		if err == nil {
			exists = true
			return nil
		}
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		return err
	}, false)
	return exists, err
}

// Upsert writes points, overwriting same-ID points, and maintains the
// per-source index used by DeleteBySource.
func (s *Store) Upsert(ctx context.Context, collection string, points []*core.PublishedPoint) error {
	dim, err := s.collectionDim(collection)
	if err != nil {
		return err
	}

	return s.backend.WithTx(func(tx *badger.Txn) error {
		for _, point := range points {
			if len(point.Vector) != dim {
				return vector.ErrDimensionMismatch
			}
			if err := tx.Set(makePointKey(collection, point.Id), storage.MarshalPoint(point)); err != nil {
				return err
			}
			if point.Payload.SourceId != "" {
				srcKey := makeSourceKey(collection, point.Payload.SourceId, point.Id)
				if err := tx.Set(srcKey, nil); err != nil {
					return err
				}
			}
		}
		return tx.Commit()
	}, true)
}

// DeleteBySource removes all points of one source via the source index.
func (s *Store) DeleteBySource(ctx context.Context, collection, sourceId string) (int, error) {
	if _, err := s.collectionDim(collection); err != nil {
		return 0, err
	}

	var deleted int
	err := s.backend.WithTx(func(tx *badger.Txn) error {
		prefix := makePartialSourceKey(collection, sourceId)
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		opts.PrefetchValues = false

		// Collect first: deleting while iterating invalidates the iterator.
		var indexKeys [][]byte
		iter := tx.NewIterator(opts)
		for iter.Rewind(); iter.Valid(); iter.Next() {
			indexKeys = append(indexKeys, iter.Item().KeyCopy(nil))
		}
		iter.Close()

		for _, indexKey := range indexKeys {
			pointId := string(indexKey[len(prefix):])
			if err := tx.Delete(makePointKey(collection, pointId)); err != nil {
				return err
			}
			if err := tx.Delete(indexKey); err != nil {
				return err
			}
			deleted++
		}
		return tx.Commit()
	}, true)
	if err != nil {
		return 0, err
	}
	return deleted, nil
}

// Search scans the collection and scores every point against the query.
// Cosine similarity reduces to a dot product for normalized vectors.
func (s *Store) Search(ctx context.Context, collection string, queryVec []float32, minScore float32, limit int) ([]*core.ScoredPoint, error) {
	if _, err := s.collectionDim(collection); err != nil {
		return nil, err
	}

	var results []*core.ScoredPoint
	err := s.backend.WithTx(func(tx *badger.Txn) error {
		prefix := makePartialPointKey(collection)
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix

		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			var point *core.PublishedPoint
			err := iter.Item().Value(func(val []byte) error {
				var err error
				point, err = storage.UnmarshalPoint(val)
				return err
			})
			if err != nil {
				return err
			}
			if point == nil || len(point.Vector) == 0 {
				continue
			}

			score := dotProduct(queryVec, point.Vector)
			if score >= minScore {
				results = append(results, &core.ScoredPoint{
					Point: point,
					Score: score,
				})
			}
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}

	slices.SortFunc(results, func(a, b *core.ScoredPoint) int {
		if a.Score > b.Score {
			return -1
		}
		if a.Score < b.Score {
			return 1
		}
		return 0
	})

	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

// collectionDim reads the collection's vector dimension, or reports that
// the collection does not exist.
func (s *Store) collectionDim(name string) (int, error) {
	var dim int
	err := s.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeCollectionKey(name))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return vector.ErrCollectionNotFound
			}
			return err
		}
		return item.Value(func(val []byte) error {
			dim = decodeDim(val)
			return nil
		})
	}, false)
	return dim, err
}

func encodeDim(dim int) []byte {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, uint64(dim))
	return buf
}

func decodeDim(val []byte) int {
	if len(val) < 8 {
		return 0
	}
	return int(binary.BigEndian.Uint64(val))
}

// dotProduct calculates the dot product of two vectors.
func dotProduct(a, b []float32) float32 {
	var sum float32
	minLen := len(a)
	if len(b) < minLen {
		minLen = len(b)
	}
	for i := 0; i < minLen; i++ {
		sum += a[i] * b[i]
	}
	return sum
}
