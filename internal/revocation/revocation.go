package revocation

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Store keeps a denylist of revoked session ids so access tokens die with
// their session instead of living until expiry.
type Store struct {
	client    *redis.Client
	namespace string
}

// New constructs a Store.
func New(client *redis.Client, namespace string) *Store {
	return &Store{client: client, namespace: namespace}
}

func (s *Store) key(sessionID string) string {
	return fmt.Sprintf("%s:revoked:%s", s.namespace, sessionID)
}

// Revoke marks a session id as revoked for ttl.
func (s *Store) Revoke(ctx context.Context, sessionID string, ttl time.Duration) error {
	return s.client.Set(ctx, s.key(sessionID), "1", ttl).Err()
}

// IsRevoked reports whether the session id is on the denylist. Lookup errors
// fail open so a redis outage does not lock every operator out.
func (s *Store) IsRevoked(ctx context.Context, sessionID string) bool {
	res, err := s.client.Exists(ctx, s.key(sessionID)).Result()
	if err != nil {
		return false
	}
	return res > 0
}
