// Package docsession keeps the context of uploaded documents (extracted text,
// analysis and chat history) keyed by document id, so follow-up requests
// address a specific upload.
package docsession

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"github.com/redis/go-redis/v9"
)

const (
	DefaultTTL = 24 * time.Hour
	keyPrefix  = "docctx:"
)

var ErrNotFound = errors.New("document context not found")

// Message is one chat turn.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Context is everything known about an uploaded document.
type Context struct {
	DocumentID string          `json:"documentId"`
	Filename   string          `json:"filename"`
	MimeType   string          `json:"mimeType"`
	Text       string          `json:"text"`
	Analysis   json.RawMessage `json:"analysis,omitempty"`
	History    []Message       `json:"history,omitempty"`
	CreatedAt  time.Time       `json:"createdAt"`
	UpdatedAt  time.Time       `json:"updatedAt"`
}

// Append adds a chat turn.
func (c *Context) Append(role, content string) {
	c.History = append(c.History, Message{Role: role, Content: content})
}

type Store interface {
	Save(ctx context.Context, c *Context) error
	Load(ctx context.Context, documentID string) (*Context, error)
	Delete(ctx context.Context, documentID string) error
}

// New returns a Redis backed store when client answers a ping, and an
// in-memory store otherwise.
func New(ctx context.Context, client *redis.Client, ttl time.Duration) Store {
	if client != nil {
		pingCtx, cancel := context.WithTimeout(ctx, time.Second)
		defer cancel()
		err := client.Ping(pingCtx).Err()
		if err == nil {
			return NewRedisStore(client, ttl)
		}
		log.Warnf("[DocSession] Redis unavailable (%v), keeping document context in memory", err)
	}
	return NewMemoryStore(ttl)
}

// RedisStore keeps contexts as JSON strings with a TTL.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisStore{client: client, ttl: ttl}
}

func (s *RedisStore) Save(ctx context.Context, c *Context) error {
	raw, err := encode(c)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, keyPrefix+c.DocumentID, raw, s.ttl).Err()
}

func (s *RedisStore) Load(ctx context.Context, documentID string) (*Context, error) {
	raw, err := s.client.Get(ctx, keyPrefix+documentID).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load document context: %w", err)
	}
	return decode(raw)
}

func (s *RedisStore) Delete(ctx context.Context, documentID string) error {
	return s.client.Del(ctx, keyPrefix+documentID).Err()
}

type memoryEntry struct {
	raw       []byte
	expiresAt time.Time
}

// MemoryStore keeps contexts in process with per-entry expiry. Values are
// stored serialized so callers never share mutable state.
type MemoryStore struct {
	mu    sync.RWMutex
	items map[string]memoryEntry
	ttl   time.Duration
	now   func() time.Time
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &MemoryStore{items: make(map[string]memoryEntry), ttl: ttl, now: time.Now}
}

func (s *MemoryStore) Save(_ context.Context, c *Context) error {
	raw, err := encode(c)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.items[c.DocumentID] = memoryEntry{raw: raw, expiresAt: s.now().Add(s.ttl)}
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Load(ctx context.Context, documentID string) (*Context, error) {
	s.mu.RLock()
	entry, ok := s.items[documentID]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	if s.now().After(entry.expiresAt) {
		_ = s.Delete(ctx, documentID)
		return nil, ErrNotFound
	}
	return decode(entry.raw)
}

func (s *MemoryStore) Delete(_ context.Context, documentID string) error {
	s.mu.Lock()
	delete(s.items, documentID)
	s.mu.Unlock()
	return nil
}

func encode(c *Context) ([]byte, error) {
	if c == nil || c.DocumentID == "" {
		return nil, errors.New("document context without id")
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	c.UpdatedAt = time.Now().UTC()
	return json.Marshal(c)
}

func decode(raw []byte) (*Context, error) {
	var c Context
	if err := json.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("decode document context: %w", err)
	}
	return &c, nil
}
