package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/stridelog/tracker-engine/internal/models"
)

// Key prefixes. Everything the service stores in Redis lives under tracker:.
const (
	docKeyPrefix     = "tracker:doc:"
	userKeyPrefix    = "tracker:user:"
	sessionKeyPrefix = "tracker:sess:"
)

// RedisStore implements DocumentStore and UserStore on Redis, one JSON blob
// per user. It also backs cookie sessions with TTL keys.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore creates a new Redis store
func NewRedisStore(ctx context.Context, address, password string, db int) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisStore{client: client}, nil
}

// Load reads the user's document blob. A missing key yields (nil, nil).
func (s *RedisStore) Load(ctx context.Context, userID string) (*models.Document, error) {
	data, err := s.client.Get(ctx, docKeyPrefix+userID).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load document: %w", err)
	}

	var doc models.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal document: %w", err)
	}
	doc.Normalize()
	return &doc, nil
}

// Save replaces the user's stored document wholesale.
func (s *RedisStore) Save(ctx context.Context, userID string, doc *models.Document) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal document: %w", err)
	}

	if err := s.client.Set(ctx, docKeyPrefix+userID, data, 0).Err(); err != nil {
		return fmt.Errorf("failed to save document: %w", err)
	}
	return nil
}

// Delete removes the user's stored document.
func (s *RedisStore) Delete(ctx context.Context, userID string) error {
	if err := s.client.Del(ctx, docKeyPrefix+userID).Err(); err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}
	return nil
}

// --- Users ---

// redisUser is the stored account shape. Unlike models.User it serializes the
// password hash, since the record never leaves the server.
type redisUser struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"password_hash"`
	CreatedAt    time.Time `json:"created_at"`
}

// CreateUser stores an account record keyed by email. SetNX guards against
// double registration.
func (s *RedisStore) CreateUser(ctx context.Context, email, passwordHash string) (*models.User, error) {
	rec := redisUser{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().UTC(),
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal user: %w", err)
	}

	ok, err := s.client.SetNX(ctx, userKeyPrefix+email, data, 0).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	if !ok {
		return nil, ErrEmailTaken
	}

	return &models.User{ID: rec.ID, Email: rec.Email, PasswordHash: rec.PasswordHash, CreatedAt: rec.CreatedAt}, nil
}

// GetUserByEmail retrieves an account by email
func (s *RedisStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	data, err := s.client.Get(ctx, userKeyPrefix+email).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	var rec redisUser
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("failed to unmarshal user: %w", err)
	}
	return &models.User{ID: rec.ID, Email: rec.Email, PasswordHash: rec.PasswordHash, CreatedAt: rec.CreatedAt}, nil
}

// --- Sessions ---

// PutSession stores a session ID to user ID binding with TTL.
func (s *RedisStore) PutSession(ctx context.Context, sessionID, userID string, ttl time.Duration) error {
	if err := s.client.Set(ctx, sessionKeyPrefix+sessionID, userID, ttl).Err(); err != nil {
		return fmt.Errorf("failed to store session: %w", err)
	}
	return nil
}

// GetSession resolves a session ID to a user ID. An expired or unknown session
// yields ("", nil).
func (s *RedisStore) GetSession(ctx context.Context, sessionID string) (string, error) {
	userID, err := s.client.Get(ctx, sessionKeyPrefix+sessionID).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get session: %w", err)
	}
	return userID, nil
}

// DeleteSession drops a session binding.
func (s *RedisStore) DeleteSession(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, sessionKeyPrefix+sessionID).Err(); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// Ping verifies Redis connectivity
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close closes the Redis connection
func (s *RedisStore) Close() error {
	return s.client.Close()
}
