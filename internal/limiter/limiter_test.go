package limiter

import (
	"context"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeStore is an in-memory counterStore. It only covers the commands
// the limiter issues.
type fakeStore struct {
	mu      sync.Mutex
	counts  map[string]int64
	expires map[string]time.Duration
	failAll bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{counts: make(map[string]int64), expires: make(map[string]time.Duration)}
}

func (f *fakeStore) Incr(ctx context.Context, key string) *redis.IntCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	cmd := redis.NewIntCmd(ctx)
	if f.failAll {
		cmd.SetErr(context.DeadlineExceeded)
		return cmd
	}
	f.counts[key]++
	cmd.SetVal(f.counts[key])
	return cmd
}

func (f *fakeStore) Expire(ctx context.Context, key string, ttl time.Duration) *redis.BoolCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	cmd := redis.NewBoolCmd(ctx)
	f.expires[key] = ttl
	cmd.SetVal(true)
	return cmd
}

func (f *fakeStore) Get(ctx context.Context, key string) *redis.StringCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	cmd := redis.NewStringCmd(ctx)
	if f.failAll {
		cmd.SetErr(context.DeadlineExceeded)
		return cmd
	}
	n, ok := f.counts[key]
	if !ok {
		cmd.SetErr(redis.Nil)
		return cmd
	}
	cmd.SetVal(strconv.FormatInt(n, 10))
	return cmd
}

func (f *fakeStore) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	cmd := redis.NewIntCmd(ctx)
	for _, k := range keys {
		delete(f.counts, k)
	}
	cmd.SetVal(int64(len(keys)))
	return cmd
}

func TestAllow_FreshPair(t *testing.T) {
	l := newRedisLimiter(newFakeStore(), 3, time.Minute)

	ok, err := l.Allow(context.Background(), "a@b.com", "1.2.3.4")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestFailure_BlocksAfterMaxAttempts(t *testing.T) {
	ctx := context.Background()
	l := newRedisLimiter(newFakeStore(), 3, time.Minute)

	for i := 0; i < 3; i++ {
		ok, err := l.Allow(ctx, "a@b.com", "1.2.3.4")
		require.NoError(t, err)
		assert.True(t, ok, "attempt %d should be allowed", i)
		require.NoError(t, l.Failure(ctx, "a@b.com", "1.2.3.4"))
	}

	ok, err := l.Allow(ctx, "a@b.com", "1.2.3.4")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFailure_SetsWindowOnFirstAttempt(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	l := newRedisLimiter(store, 3, 15*time.Minute)

	require.NoError(t, l.Failure(ctx, "a@b.com", "1.2.3.4"))
	require.NoError(t, l.Failure(ctx, "a@b.com", "1.2.3.4"))

	assert.Equal(t, 15*time.Minute, store.expires[key("a@b.com", "1.2.3.4")])
}

func TestSuccess_ClearsCounter(t *testing.T) {
	ctx := context.Background()
	l := newRedisLimiter(newFakeStore(), 2, time.Minute)

	require.NoError(t, l.Failure(ctx, "a@b.com", "1.2.3.4"))
	require.NoError(t, l.Failure(ctx, "a@b.com", "1.2.3.4"))
	require.NoError(t, l.Success(ctx, "a@b.com", "1.2.3.4"))

	ok, err := l.Allow(ctx, "a@b.com", "1.2.3.4")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestAllow_IsPerPair(t *testing.T) {
	ctx := context.Background()
	l := newRedisLimiter(newFakeStore(), 1, time.Minute)

	require.NoError(t, l.Failure(ctx, "a@b.com", "1.2.3.4"))

	ok, err := l.Allow(ctx, "a@b.com", "5.6.7.8")
	require.NoError(t, err)
	assert.True(t, ok, "different ip should not be blocked")

	ok, err = l.Allow(ctx, "other@b.com", "1.2.3.4")
	require.NoError(t, err)
	assert.True(t, ok, "different email should not be blocked")
}

func TestAllow_FailsOpenOnStoreError(t *testing.T) {
	store := newFakeStore()
	store.failAll = true
	l := newRedisLimiter(store, 3, time.Minute)

	ok, err := l.Allow(context.Background(), "a@b.com", "1.2.3.4")
	assert.Error(t, err)
	assert.True(t, ok)
}
