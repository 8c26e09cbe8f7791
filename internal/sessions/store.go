// Package sessions stores login sessions in Redis. A session resolves a
// token to {user id, active organization selection, expiry}; it is never the
// source of truth for membership, which is looked up per request.
package sessions

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrNotFound is returned when a session does not exist or has expired.
var ErrNotFound = errors.New("session not found")

type Session struct {
	ID                   string     `json:"id"`
	UserID               uuid.UUID  `json:"user_id"`
	ActiveOrganizationID *uuid.UUID `json:"active_organization_id,omitempty"`
	ExpiresAt            time.Time  `json:"expires_at"`
}

// Store resolves and mutates login sessions.
type Store interface {
	Create(ctx context.Context, userID uuid.UUID, ttl time.Duration) (*Session, error)
	Get(ctx context.Context, id string) (*Session, error)
	SetActiveOrganization(ctx context.Context, id string, organizationID uuid.UUID) error
	Delete(ctx context.Context, id string) error
}

type redisStore struct {
	client *redis.Client
}

// NewRedisStore connects a session store to Redis.
func NewRedisStore(addr, password string, db int) Store {
	addr = strings.TrimPrefix(strings.TrimPrefix(addr, "redis://"), "rediss://")
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return &redisStore{client: client}
}

// NewStoreWithClient wraps an existing Redis client.
func NewStoreWithClient(client *redis.Client) Store {
	return &redisStore{client: client}
}

func sessionKey(id string) string {
	return fmt.Sprintf("session:%s", id)
}

func (s *redisStore) Create(ctx context.Context, userID uuid.UUID, ttl time.Duration) (*Session, error) {
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return nil, err
	}

	session := &Session{
		ID:        base64.RawURLEncoding.EncodeToString(raw),
		UserID:    userID,
		ExpiresAt: time.Now().Add(ttl),
	}

	if err := s.save(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

func (s *redisStore) Get(ctx context.Context, id string) (*Session, error) {
	data, err := s.client.Get(ctx, sessionKey(id)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	var session Session
	if err := json.Unmarshal([]byte(data), &session); err != nil {
		return nil, err
	}
	if time.Now().After(session.ExpiresAt) {
		return nil, ErrNotFound
	}
	return &session, nil
}

func (s *redisStore) SetActiveOrganization(ctx context.Context, id string, organizationID uuid.UUID) error {
	session, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	session.ActiveOrganizationID = &organizationID
	return s.save(ctx, session)
}

func (s *redisStore) Delete(ctx context.Context, id string) error {
	return s.client.Del(ctx, sessionKey(id)).Err()
}

func (s *redisStore) save(ctx context.Context, session *Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return err
	}
	ttl := time.Until(session.ExpiresAt)
	if ttl <= 0 {
		return ErrNotFound
	}
	return s.client.Set(ctx, sessionKey(session.ID), data, ttl).Err()
}
