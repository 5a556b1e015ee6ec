package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

func newClock() *fakeClock {
	return &fakeClock{t: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func TestMemoryStore_PutGet(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, "abc", `\documentclass{article}`))
	got, err := s.Get(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, `\documentclass{article}`, got)

	require.NoError(t, s.Put(ctx, "abc", "v2"))
	got, err = s.Get(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, "v2", got)
}

func TestMemoryStore_UnknownKey(t *testing.T) {
	_, err := NewMemoryStore().Get(context.Background(), "missing")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestMemoryStore_EmptyKey(t *testing.T) {
	s := NewMemoryStore()
	var keyErr *KeyError
	assert.True(t, errors.As(s.Put(context.Background(), "", "x"), &keyErr))
	_, err := s.Get(context.Background(), "")
	assert.True(t, errors.As(err, &keyErr))
}

func TestMemoryStore_ExpiresAfterTTL(t *testing.T) {
	clock := newClock()
	s := NewMemoryStore(WithClock(clock.Now))
	ctx := context.Background()
	require.NoError(t, s.Put(ctx, "k", "doc"))

	clock.Advance(DefaultTTL - time.Second)
	got, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "doc", got)

	clock.Advance(time.Second + time.Millisecond)
	_, err = s.Get(ctx, "k")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestMemoryStore_PutResetsTTL(t *testing.T) {
	clock := newClock()
	s := NewMemoryStore(WithClock(clock.Now), WithTTL(10*time.Minute))
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, "k", "v1"))
	clock.Advance(8 * time.Minute)
	require.NoError(t, s.Put(ctx, "k", "v2"))
	clock.Advance(8 * time.Minute)

	got, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v2", got)
}

func TestMemoryStore_Sweep(t *testing.T) {
	clock := newClock()
	s := NewMemoryStore(WithClock(clock.Now))
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, "old", "a"))
	clock.Advance(30 * time.Minute)
	require.NoError(t, s.Put(ctx, "new", "b"))
	clock.Advance(31 * time.Minute)

	assert.Equal(t, 2, s.Len())
	assert.Equal(t, 1, s.Sweep())
	assert.Equal(t, 1, s.Len())

	_, err := s.Get(ctx, "new")
	assert.NoError(t, err)
}

func TestMemoryStore_StartStop(t *testing.T) {
	clock := newClock()
	s := NewMemoryStore(WithClock(clock.Now), WithSweepInterval(5*time.Millisecond))
	require.NoError(t, s.Put(context.Background(), "k", "v"))
	clock.Advance(2 * DefaultTTL)

	s.Start()
	s.Start()
	assert.Eventually(t, func() bool { return s.Len() == 0 }, time.Second, 5*time.Millisecond)
	s.Stop()
	s.Stop()
}

func TestMemoryStore_Concurrent(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := fmt.Sprintf("session-%d", i%5)
			_ = s.Put(ctx, id, fmt.Sprintf("doc-%d", i))
			_, _ = s.Get(ctx, id)
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 5, s.Len())
}

func TestStoreInterface(t *testing.T) {
	var _ Store = NewMemoryStore()
	var _ Store = (*RedisStore)(nil)
}
