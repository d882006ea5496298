package docsession

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sample(id string) *Context {
	return &Context{
		DocumentID: id,
		Filename:   "contrato.pdf",
		Text:       "CLÁUSULA PRIMEIRA",
		Analysis:   json.RawMessage(`{"tipo":"contrato"}`),
	}
}

func exercise(t *testing.T, s Store) {
	ctx := context.Background()

	_, err := s.Load(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	a := sample("a")
	require.NoError(t, s.Save(ctx, a))
	require.NoError(t, s.Save(ctx, sample("b")))

	got, err := s.Load(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "contrato.pdf", got.Filename)
	assert.JSONEq(t, `{"tipo":"contrato"}`, string(got.Analysis))
	assert.False(t, got.CreatedAt.IsZero())

	got.Append("user", "Qual o prazo?")
	require.NoError(t, s.Save(ctx, got))

	again, err := s.Load(ctx, "a")
	require.NoError(t, err)
	require.Len(t, again.History, 1)
	assert.Equal(t, "Qual o prazo?", again.History[0].Content)

	other, err := s.Load(ctx, "b")
	require.NoError(t, err)
	assert.Empty(t, other.History)

	require.NoError(t, s.Delete(ctx, "a"))
	_, err = s.Load(ctx, "a")
	assert.ErrorIs(t, err, ErrNotFound)

	assert.Error(t, s.Save(ctx, &Context{}))
}

func TestMemoryStore(t *testing.T) {
	exercise(t, NewMemoryStore(time.Hour))
}

func TestMemoryStoreExpires(t *testing.T) {
	s := NewMemoryStore(time.Minute)
	now := time.Now()
	s.now = func() time.Time { return now }

	require.NoError(t, s.Save(context.Background(), sample("a")))
	now = now.Add(2 * time.Minute)

	_, err := s.Load(context.Background(), "a")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRedisStore(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	s := New(context.Background(), client, time.Hour)
	require.IsType(t, &RedisStore{}, s)
	exercise(t, s)

	require.NoError(t, s.Save(context.Background(), sample("ttl")))
	mr.FastForward(2 * time.Hour)
	_, err := s.Load(context.Background(), "ttl")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestNewFallsBackToMemory(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", DialTimeout: 50 * time.Millisecond})
	assert.IsType(t, &MemoryStore{}, New(context.Background(), client, 0))
	assert.IsType(t, &MemoryStore{}, New(context.Background(), nil, 0))
}
