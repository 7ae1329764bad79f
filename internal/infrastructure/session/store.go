package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	keyPrefix   = "session:"
	userIDField = "user_id"
)

var ErrNotFound = errors.New("session not found")

// Store keeps sessions as redis hashes under session:<id>.
type Store struct {
	rdb redis.Cmdable
	ttl time.Duration
}

func NewStore(rdb redis.Cmdable, ttl time.Duration) *Store {
	return &Store{rdb: rdb, ttl: ttl}
}

func key(id string) string { return keyPrefix + id }

func (s *Store) New() *Session { return newSession() }

func (s *Store) Load(ctx context.Context, id string) (*Session, error) {
	vals, err := s.rdb.HGetAll(ctx, key(id)).Result()
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	if len(vals) == 0 {
		return nil, ErrNotFound
	}
	sess := &Session{ID: id}
	if v, ok := vals[userIDField]; ok {
		sess.userID = v
		sess.hasUserID = true
	}
	return sess, nil
}

// Save writes the session and refreshes its TTL. A session without a user id
// leaves no key behind. The key of a rotated-away id is left in place; see
// DropPrevious.
func (s *Store) Save(ctx context.Context, sess *Session) error {
	_, err := s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		k := key(sess.ID)
		if sess.hasUserID {
			pipe.HSet(ctx, k, userIDField, sess.userID)
			pipe.Expire(ctx, k, s.ttl)
		} else {
			pipe.HDel(ctx, k, userIDField)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// DropPrevious deletes the key the session had before its last Rotate.
func (s *Store) DropPrevious(ctx context.Context, sess *Session) error {
	if sess.previousID == "" {
		return nil
	}
	if err := s.Delete(ctx, sess.previousID); err != nil {
		return err
	}
	sess.previousID = ""
	return nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	if err := s.rdb.Del(ctx, key(id)).Err(); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}
