package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"easyplit/internal/auth/models"
	"easyplit/pkg/platform/sentinel"
)

const (
	// Redis key prefixes. Sessions expire via TTL; the per-user index set
	// may briefly reference expired sessions and is repaired on read.
	sessionKeyPrefix   = "sess:id:"
	userIndexKeyPrefix = "sess:user:"
)

// RedisStore is the production session store. Key expiry doubles as session
// expiry, so a vanished key means an unusable session regardless of what
// the token claims.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore constructs a Redis-backed session store.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// Create stores a session with a TTL matching its expiry and indexes it
// under its user.
func (s *RedisStore) Create(ctx context.Context, sess *models.Session) error {
	payload, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	ttl := time.Until(sess.ExpiresAt)
	if ttl <= 0 {
		return sentinel.ErrInvalidState
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, sessionKey(sess.ID), payload, ttl)
	pipe.SAdd(ctx, userIndexKey(sess.UserID), sess.ID.String())
	// Only extend the index TTL, never shorten it for longer-lived siblings.
	pipe.ExpireGT(ctx, userIndexKey(sess.UserID), ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("store session: %w", err)
	}
	return nil
}

// FindByID returns the session or sentinel.ErrNotFound once the key expired
// or was deleted.
func (s *RedisStore) FindByID(ctx context.Context, id uuid.UUID) (*models.Session, error) {
	raw, err := s.client.Get(ctx, sessionKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}

	var sess models.Session
	if err := json.Unmarshal(raw, &sess); err != nil {
		return nil, fmt.Errorf("unmarshal session: %w", err)
	}
	return &sess, nil
}

// Touch rewrites the session with an updated last-activity timestamp while
// preserving the remaining TTL.
func (s *RedisStore) Touch(ctx context.Context, sess *models.Session) error {
	payload, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	ok, err := s.client.SetXX(ctx, sessionKey(sess.ID), payload, redis.KeepTTL).Result()
	if err != nil {
		return fmt.Errorf("touch session: %w", err)
	}
	if !ok {
		return sentinel.ErrNotFound
	}
	return nil
}

// Delete removes a session and its index entry. Absent sessions are a
// no-op; logout must stay idempotent.
func (s *RedisStore) Delete(ctx context.Context, id uuid.UUID) error {
	sess, err := s.FindByID(ctx, id)
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	pipe := s.client.TxPipeline()
	pipe.Del(ctx, sessionKey(id))
	pipe.SRem(ctx, userIndexKey(sess.UserID), id.String())
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// ListByUser returns the user's live sessions, pruning index entries whose
// session keys have expired.
func (s *RedisStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.Session, error) {
	ids, err := s.client.SMembers(ctx, userIndexKey(userID)).Result()
	if err != nil {
		return nil, fmt.Errorf("list session index: %w", err)
	}
	if len(ids) == 0 {
		return nil, nil
	}

	// keys and live stay index-aligned; stale collects members to prune,
	// starting with any entries that never were session IDs.
	keys := make([]string, 0, len(ids))
	live := make([]string, 0, len(ids))
	var stale []any
	for _, raw := range ids {
		id, err := uuid.Parse(raw)
		if err != nil {
			stale = append(stale, raw)
			continue
		}
		keys = append(keys, sessionKey(id))
		live = append(live, raw)
	}

	var out []*models.Session
	if len(keys) > 0 {
		values, err := s.client.MGet(ctx, keys...).Result()
		if err != nil {
			return nil, fmt.Errorf("load sessions: %w", err)
		}
		for i, v := range values {
			raw, ok := v.(string)
			if !ok {
				stale = append(stale, live[i])
				continue
			}
			var sess models.Session
			if err := json.Unmarshal([]byte(raw), &sess); err != nil {
				continue
			}
			out = append(out, &sess)
		}
	}

	if len(stale) > 0 {
		_ = s.client.SRem(ctx, userIndexKey(userID), stale...).Err()
	}
	return out, nil
}

func sessionKey(id uuid.UUID) string {
	return sessionKeyPrefix + id.String()
}

func userIndexKey(userID uuid.UUID) string {
	return userIndexKeyPrefix + userID.String()
}
