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


package badger

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/poiesic/curator/core"
	"github.com/poiesic/curator/storage"
)

const (
	// DefaultSessionTTL is the draft lifetime applied when no TTL is given.
	DefaultSessionTTL = 24 * time.Hour

	// maxConflictRetries bounds the read-mutate-commit loop under
	// concurrent writers before surfacing ErrConflict.
	maxConflictRetries = 5
)

// SessionRepository implements storage.SessionRepository for BadgerDB.
type SessionRepository struct {
	backend *Backend
	ttl     time.Duration
}

var _ storage.SessionRepository = (*SessionRepository)(nil)

// NewSessionRepository creates a session repository on top of a backend.
// A non-positive ttl selects DefaultSessionTTL.
func NewSessionRepository(backend *Backend, ttl time.Duration) (storage.SessionRepository, error) {
	if backend == nil {
		return nil, errors.New("backend is required")
	}
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &SessionRepository{
		backend: backend,
		ttl:     ttl,
	}, nil
}

// TTL returns the session lifetime applied on create and refresh.
func (r *SessionRepository) TTL() time.Duration {
	return r.ttl
}

// Close releases repository resources.
func (r *SessionRepository) Close() error {
	return nil
}

// CreateSession stores a new session and starts its TTL clock.
func (r *SessionRepository) CreateSession(ctx context.Context, session *core.Session) error {
	if session == nil || session.Id == "" {
		return core.ErrInvalidSession
	}

	return r.backend.WithTx(func(tx *badger.Txn) error {
		key := makeSessionKey(session.Id)

		_, err := tx.Get(key)
		if err == nil {
			return storage.ErrDuplicateKey
		}
		if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}

		now := time.Now().UTC()
		session.CreatedAt = now
		session.UpdatedAt = now
		if session.Version == 0 {
			session.Version = 1
		}

		if err := r.writeSession(tx, session); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// GetSession retrieves a session by ID. Expired sessions are gone.
func (r *SessionRepository) GetSession(ctx context.Context, id string) (*core.Session, error) {
	var session *core.Session
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		session, err = r.readSession(tx, id)
		return err
	}, false)
	if err != nil {
		return nil, err
	}
	return session, nil
}

// UpdateSession applies mutate to the freshest copy of the session and
// commits, retrying on transactional conflict. Every successful commit
// bumps the version stamp and refreshes the TTL.
func (r *SessionRepository) UpdateSession(ctx context.Context, id string, mutate func(session *core.Session) error) (*core.Session, error) {
	var updated *core.Session

	for attempt := 0; attempt < maxConflictRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		err := r.backend.WithTx(func(tx *badger.Txn) error {
			session, err := r.readSession(tx, id)
			if err != nil {
				return err
			}

			if err := mutate(session); err != nil {
				return err
			}

			session.Version++
			session.UpdatedAt = time.Now().UTC()

			if err := r.writeSession(tx, session); err != nil {
				return err
			}
			if err := tx.Commit(); err != nil {
				return err
			}
			updated = session
			return nil
		}, true)

		if errors.Is(err, badger.ErrConflict) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return updated, nil
	}

	return nil, storage.ErrConflict
}

// DeleteSession removes a session and its user index entry.
func (r *SessionRepository) DeleteSession(ctx context.Context, id string) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		session, err := r.readSession(tx, id)
		if err != nil {
			return err
		}

		if err := tx.Delete(makeSessionKey(id)); err != nil {
			return err
		}
		if session.UserId != "" {
			if err := tx.Delete(makeSessionUserKey(session.UserId, id)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// ListSessionsByUser returns the IDs of live sessions owned by a user.
func (r *SessionRepository) ListSessionsByUser(ctx context.Context, userId string) ([]string, error) {
	var ids []string
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		prefix := makePartialSessionUserKey(userId)
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		opts.PrefetchValues = false

		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			key := string(iter.Item().Key())
			ids = append(ids, strings.TrimPrefix(key, string(prefix)))
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// readSession loads and decodes a session inside a transaction.
func (r *SessionRepository) readSession(tx *badger.Txn, id string) (*core.Session, error) {
	item, err := tx.Get(makeSessionKey(id))
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, storage.ErrNotFound
		}
		return nil, err
	}

	var session *core.Session
	err = item.Value(func(val []byte) error {
		var err error
		session, err = storage.UnmarshalSession(val)
		return err
	})
	if err != nil {
		return nil, err
	}
	return session, nil
}

// writeSession stores the session and its user index entry, both with a
// fresh TTL so the index cannot outlive the record.
func (r *SessionRepository) writeSession(tx *badger.Txn, session *core.Session) error {
	entry := badger.NewEntry(makeSessionKey(session.Id), storage.MarshalSession(session)).WithTTL(r.ttl)
	if err := tx.SetEntry(entry); err != nil {
		return err
	}

	if session.UserId != "" {
		indexEntry := badger.NewEntry(
			makeSessionUserKey(session.UserId, session.Id),
			[]byte(session.Id),
		).WithTTL(r.ttl)
		if err := tx.SetEntry(indexEntry); err != nil {
			return err
		}
	}
	return nil
}
