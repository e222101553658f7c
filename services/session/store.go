// File: tripbot/services/session/store.go
package session

import (
	"context"
	"encoding/json"
	"time"

	"tripbot/models"

	"github.com/go-redis/redis/v8"
)

const sessionPrefix = "chat:sess:"

// Store persists per-user conversation state between stateless inbound
// messages. Load never fails on absence: an unknown user gets a fresh idle
// session. Save is an atomic replace, last writer wins per user.
type Store interface {
	Load(ctx context.Context, userID string) (*models.Session, error)
	Save(ctx context.Context, sess *models.Session) error
	Clear(ctx context.Context, userID string) error
}

// RedisStore keeps sessions in Redis with a TTL. Dormant sessions expire
// when the key does; every Save refreshes the deadline.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func (s *RedisStore) Load(ctx context.Context, userID string) (*models.Session, error) {
	data, err := s.client.Get(ctx, sessionPrefix+userID).Result()
	if err == redis.Nil {
		return models.NewSession(userID), nil
	}
	if err != nil {
		return nil, err
	}
	var sess models.Session
	if err := json.Unmarshal([]byte(data), &sess); err != nil {
		return nil, err
	}
	return &sess, nil
}

func (s *RedisStore) Save(ctx context.Context, sess *models.Session) error {
	sess.LastUpdatedAt = time.Now()
	b, err := json.Marshal(sess)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, sessionPrefix+sess.UserID, b, s.ttl).Err()
}

func (s *RedisStore) Clear(ctx context.Context, userID string) error {
	return s.client.Del(ctx, sessionPrefix+userID).Err()
}
