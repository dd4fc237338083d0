package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"ari-backend/wizard"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

var ErrSessionNotFound = errors.New("wizard session not found")

// SessionStore keeps wizard sessions between requests. Update serializes
// writers of one session: fn sees the latest saved session, and whatever
// it changed is saved even when it returns an error, so a failed launch
// keeps its progress. fn's error is returned with the session.
type SessionStore interface {
	Create(ctx context.Context, s *wizard.Session) error
	Get(ctx context.Context, id uuid.UUID) (*wizard.Session, error)
	Update(ctx context.Context, id uuid.UUID, fn func(*wizard.Session) error) (*wizard.Session, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

func encodeSession(s *wizard.Session) ([]byte, error) {
	s.UpdatedAt = time.Now()
	return json.Marshal(s)
}

func decodeSession(data []byte) (*wizard.Session, error) {
	var s wizard.Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decode wizard session: %w", err)
	}
	if s.Wizard == nil {
		s.Wizard = wizard.NewController()
	}
	return &s, nil
}

// MemorySessionStore keeps encoded sessions in process memory. Sessions
// expire ttl after their last write.
type MemorySessionStore struct {
	mu       sync.Mutex
	ttl      time.Duration
	sessions map[uuid.UUID]*memorySession
	now      func() time.Time
}

type memorySession struct {
	write   sync.Mutex
	data    []byte
	expires time.Time
}

func NewMemorySessionStore(ttl time.Duration) *MemorySessionStore {
	return &MemorySessionStore{
		ttl:      ttl,
		sessions: make(map[uuid.UUID]*memorySession),
		now:      time.Now,
	}
}

func (m *MemorySessionStore) Create(_ context.Context, s *wizard.Session) error {
	data, err := encodeSession(s)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sweep()
	m.sessions[s.ID] = &memorySession{data: data, expires: m.now().Add(m.ttl)}
	return nil
}

func (m *MemorySessionStore) Get(_ context.Context, id uuid.UUID) (*wizard.Session, error) {
	m.mu.Lock()
	entry, ok := m.lookup(id)
	var data []byte
	if ok {
		data = entry.data
	}
	m.mu.Unlock()
	if !ok {
		return nil, ErrSessionNotFound
	}
	return decodeSession(data)
}

func (m *MemorySessionStore) Update(_ context.Context, id uuid.UUID, fn func(*wizard.Session) error) (*wizard.Session, error) {
	m.mu.Lock()
	entry, ok := m.lookup(id)
	m.mu.Unlock()
	if !ok {
		return nil, ErrSessionNotFound
	}

	entry.write.Lock()
	defer entry.write.Unlock()

	m.mu.Lock()
	data := entry.data
	m.mu.Unlock()

	s, err := decodeSession(data)
	if err != nil {
		return nil, err
	}
	fnErr := fn(s)
	out, err := encodeSession(s)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	entry.data = out
	entry.expires = m.now().Add(m.ttl)
	m.mu.Unlock()
	return s, fnErr
}

func (m *MemorySessionStore) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}

// lookup must be called with mu held.
func (m *MemorySessionStore) lookup(id uuid.UUID) (*memorySession, bool) {
	entry, ok := m.sessions[id]
	if !ok {
		return nil, false
	}
	if m.now().After(entry.expires) {
		delete(m.sessions, id)
		return nil, false
	}
	return entry, true
}

func (m *MemorySessionStore) sweep() {
	now := m.now()
	for id, entry := range m.sessions {
		if now.After(entry.expires) {
			delete(m.sessions, id)
		}
	}
}

const (
	redisUpdateRetries = 5
	redisLockTTL       = 2 * time.Minute
	redisLockWait      = 10 * time.Second
	redisLockPoll      = 25 * time.Millisecond
)

// ErrSessionBusy is returned when another writer holds a session for longer
// than an update is willing to wait.
var ErrSessionBusy = errors.New("wizard session is busy")

var releaseLockScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisSessionStore keeps sessions in Redis. Writers of one session take a
// lease key first, so fn never runs for one session in two processes at
// once. WATCH/MULTI still guards the write against anything that changed
// the key without the lease; fn then runs again on the fresh session.
type RedisSessionStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisSessionStore(client *redis.Client, ttl time.Duration) *RedisSessionStore {
	return &RedisSessionStore{client: client, ttl: ttl}
}

func (r *RedisSessionStore) key(id uuid.UUID) string {
	return "ari:wizard:session:" + id.String()
}

func (r *RedisSessionStore) Create(ctx context.Context, s *wizard.Session) error {
	data, err := encodeSession(s)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, r.key(s.ID), data, r.ttl).Err()
}

func (r *RedisSessionStore) Get(ctx context.Context, id uuid.UUID) (*wizard.Session, error) {
	data, err := r.client.Get(ctx, r.key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}
	return decodeSession(data)
}

func (r *RedisSessionStore) Update(ctx context.Context, id uuid.UUID, fn func(*wizard.Session) error) (*wizard.Session, error) {
	unlock, err := r.lock(ctx, id)
	if err != nil {
		return nil, err
	}
	defer unlock()

	key := r.key(id)
	var (
		s     *wizard.Session
		fnErr error
	)
	txf := func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			return ErrSessionNotFound
		}
		if err != nil {
			return err
		}
		if s, err = decodeSession(data); err != nil {
			return err
		}
		fnErr = fn(s)
		out, err := encodeSession(s)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, out, r.ttl)
			return nil
		})
		return err
	}

	for i := 0; i < redisUpdateRetries; i++ {
		err := r.client.Watch(ctx, txf, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return s, fnErr
	}
	return nil, fmt.Errorf("update wizard session %s: too much contention", id)
}

// lock takes the session's lease, waiting up to redisLockWait for the
// current holder. The returned func releases it if it is still ours.
func (r *RedisSessionStore) lock(ctx context.Context, id uuid.UUID) (func(), error) {
	key := r.key(id) + ":lock"
	token := uuid.NewString()
	deadline := time.Now().Add(redisLockWait)
	for {
		ok, err := r.client.SetNX(ctx, key, token, redisLockTTL).Result()
		if err != nil {
			return nil, err
		}
		if ok {
			break
		}
		if time.Now().After(deadline) {
			return nil, fmt.Errorf("lock wizard session %s: %w", id, ErrSessionBusy)
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(redisLockPoll):
		}
	}

	return func() {
		if err := releaseLockScript.Run(context.WithoutCancel(ctx), r.client, []string{key}, token).Err(); err != nil {
			log.Warn().Err(err).Str("session", id.String()).Msg("Failed to release wizard session lock")
		}
	}, nil
}

func (r *RedisSessionStore) Delete(ctx context.Context, id uuid.UUID) error {
	return r.client.Del(ctx, r.key(id)).Err()
}

func (r *RedisSessionStore) Close() error {
	return r.client.Close()
}
