package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

// SessionStore keeps login sessions by token.
type SessionStore interface {
	// Create opens a session for email that lives for the store's TTL.
	Create(ctx context.Context, email string) (*Session, error)

	// Get returns ErrSessionNotFound for unknown or expired tokens.
	Get(ctx context.Context, token string) (*Session, error)

	// Delete removes a session. Deleting an unknown token is not an error.
	Delete(ctx context.Context, token string) error
}

func newSession(email string, now time.Time, ttl time.Duration) *Session {
	s := &Session{
		Token:     uuid.NewString(),
		Email:     email,
		CreatedAt: now.UTC(),
	}
	if ttl > 0 {
		s.ExpiresAt = s.CreatedAt.Add(ttl)
	}
	return s
}

// MemorySessionStore keeps sessions in process memory.
//
// Thread Safety:
//   - All methods are safe for concurrent use.
type MemorySessionStore struct {
	ttl time.Duration
	now func() time.Time

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewMemorySessionStore creates an in-memory store. A ttl of zero keeps
// sessions until Delete.
func NewMemorySessionStore(ttl time.Duration) *MemorySessionStore {
	return &MemorySessionStore{
		ttl:      ttl,
		now:      time.Now,
		sessions: make(map[string]*Session),
	}
}

// Create opens a session.
func (m *MemorySessionStore) Create(_ context.Context, email string) (*Session, error) {
	s := newSession(email, m.now(), m.ttl)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.Token] = s
	cp := *s
	return &cp, nil
}

// Get returns the session for token. Expired sessions are dropped.
func (m *MemorySessionStore) Get(_ context.Context, token string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[token]
	if !ok {
		return nil, ErrSessionNotFound
	}
	if s.Expired(m.now()) {
		delete(m.sessions, token)
		return nil, ErrSessionNotFound
	}
	cp := *s
	return &cp, nil
}

// Delete removes a session.
func (m *MemorySessionStore) Delete(_ context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, token)
	return nil
}

// sessionKeyPrefix namespaces session keys in Redis.
const sessionKeyPrefix = "smarthome:session:"

// RedisSessionStore keeps sessions in Redis as JSON with a key expiry, so
// sessions survive restarts of the command line process.
type RedisSessionStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisSessionStore creates a Redis-backed store.
func NewRedisSessionStore(client *redis.Client, ttl time.Duration) *RedisSessionStore {
	return &RedisSessionStore{client: client, ttl: ttl}
}

// Create opens a session.
func (r *RedisSessionStore) Create(ctx context.Context, email string) (*Session, error) {
	s := newSession(email, time.Now(), r.ttl)
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("encoding session: %w", err)
	}
	if err := r.client.Set(ctx, sessionKeyPrefix+s.Token, data, r.ttl).Err(); err != nil {
		return nil, fmt.Errorf("storing session: %w", err)
	}
	return s, nil
}

// Get returns the session for token.
func (r *RedisSessionStore) Get(ctx context.Context, token string) (*Session, error) {
	data, err := r.client.Get(ctx, sessionKeyPrefix+token).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("reading session: %w", err)
	}
	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decoding session: %w", err)
	}
	if s.Expired(time.Now()) {
		return nil, ErrSessionNotFound
	}
	return &s, nil
}

// Delete removes a session.
func (r *RedisSessionStore) Delete(ctx context.Context, token string) error {
	if err := r.client.Del(ctx, sessionKeyPrefix+token).Err(); err != nil {
		return fmt.Errorf("deleting session: %w", err)
	}
	return nil
}
