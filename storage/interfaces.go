package storage

import (
	"context"
	"time"

	"github.com/poiesic/curator/core"
)

// SessionRepository provides operations for managing draft sessions.
// Implementations must be thread-safe and support concurrent access.
// Sessions are ephemeral: implementations expire them after a TTL that is
// refreshed on every write.
type SessionRepository interface {
	// CreateSession stores a new session and starts its TTL clock.
	// Sets CreatedAt/UpdatedAt and the initial version stamp.
	// Returns ErrDuplicateKey if a session with the same ID already exists.
	CreateSession(ctx context.Context, session *core.Session) error

	// GetSession retrieves a session by ID.
	// Returns ErrNotFound if the session doesn't exist or has expired.
	GetSession(ctx context.Context, id string) (*core.Session, error)

	// UpdateSession applies mutate to the stored session atomically.
	// The mutation runs against the freshest copy; concurrent writers are
	// serialized by transactional conflict detection and a bounded retry,
	// so a lost update surfaces as ErrConflict only after retries are
	// exhausted. Bumps the version stamp, refreshes UpdatedAt and the TTL.
	// Returns ErrNotFound if the session doesn't exist or has expired.
	UpdateSession(ctx context.Context, id string, mutate func(session *core.Session) error) (*core.Session, error)

	// DeleteSession removes a session by ID.
	// Returns ErrNotFound if the session doesn't exist.
	DeleteSession(ctx context.Context, id string) error

	// ListSessionsByUser returns the IDs of live sessions owned by a user.
	ListSessionsByUser(ctx context.Context, userId string) ([]string, error)

	// TTL returns the session lifetime applied on create and refresh.
	TTL() time.Duration

	// Close closes the repository and releases resources.
	Close() error
}
