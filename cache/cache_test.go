package cache

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func TestKey(t *testing.T) {
	assert.Equal(t, "stock:alice:/api/dashboard/overview",
		Key("stock", "alice", "/api/dashboard/overview", ""))
	assert.Equal(t, "stock:alice:/api/dashboard/recent-sales:limit=5",
		Key("stock", "alice", "/api/dashboard/recent-sales", "limit=5"))
}

func TestMemory_MissComputesThenHits(t *testing.T) {
	// GIVEN: A cold key
	// WHEN: Reading it three times within the TTL
	// THEN: The value is computed once and served from cache afterwards

	m := NewMemory("stock", time.Minute)
	ctx := context.Background()

	var calls atomic.Int32
	compute := func(ctx context.Context) ([]byte, error) {
		calls.Add(1)
		return []byte(`{"n":1}`), nil
	}

	for i := 0; i < 3; i++ {
		data, err := m.GetOrCompute(ctx, "k1", time.Minute, compute)
		require.NoError(t, err)
		assert.Equal(t, []byte(`{"n":1}`), data)
	}
	assert.Equal(t, int32(1), calls.Load())
}

func TestMemory_ServesStaleWithinWindow(t *testing.T) {
	// A hit within the TTL returns the cached bytes even though the
	// underlying data has moved on. Staleness is bounded, not zero.
	m := NewMemory("stock", time.Minute)
	ctx := context.Background()

	value := []byte("v1")
	compute := func(ctx context.Context) ([]byte, error) { return value, nil }

	first, err := m.GetOrCompute(ctx, "k1", time.Minute, compute)
	require.NoError(t, err)

	value = []byte("v2")
	second, err := m.GetOrCompute(ctx, "k1", time.Minute, compute)
	require.NoError(t, err)

	assert.Equal(t, first, second, "window not lapsed, stale value is the contract")
}

func TestMemory_TTLExpiry_Recomputes(t *testing.T) {
	m := NewMemory("stock", time.Minute)
	ctx := context.Background()

	current := time.Unix(1000, 0)
	m.now = func() time.Time { return current }

	var calls atomic.Int32
	compute := func(ctx context.Context) ([]byte, error) {
		calls.Add(1)
		return []byte("v"), nil
	}

	_, err := m.GetOrCompute(ctx, "k1", 30*time.Second, compute)
	require.NoError(t, err)

	// Just inside the window
	current = current.Add(29 * time.Second)
	_, err = m.GetOrCompute(ctx, "k1", 30*time.Second, compute)
	require.NoError(t, err)
	assert.Equal(t, int32(1), calls.Load())

	// Past the window
	current = current.Add(2 * time.Second)
	_, err = m.GetOrCompute(ctx, "k1", 30*time.Second, compute)
	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load())
}

func TestMemory_ComputeError_NotCached(t *testing.T) {
	m := NewMemory("stock", time.Minute)
	ctx := context.Background()

	boom := errors.New("boom")
	var calls atomic.Int32

	_, err := m.GetOrCompute(ctx, "k1", time.Minute, func(ctx context.Context) ([]byte, error) {
		calls.Add(1)
		return nil, boom
	})
	assert.ErrorIs(t, err, boom)

	data, err := m.GetOrCompute(ctx, "k1", time.Minute, func(ctx context.Context) ([]byte, error) {
		calls.Add(1)
		return []byte("ok"), nil
	})
	require.NoError(t, err)
	assert.Equal(t, []byte("ok"), data, "a failed computation must not poison the key")
	assert.Equal(t, int32(2), calls.Load())
}

func TestMemory_ConcurrentMisses_ComputeOnce(t *testing.T) {
	// GIVEN: Ten goroutines racing on the same cold key
	// WHEN: The computation is slow
	// THEN: It runs once; everyone gets the same bytes

	m := NewMemory("stock", time.Minute)
	ctx := context.Background()

	var calls atomic.Int32
	compute := func(ctx context.Context) ([]byte, error) {
		calls.Add(1)
		time.Sleep(20 * time.Millisecond)
		return []byte("shared"), nil
	}

	var g errgroup.Group
	for i := 0; i < 10; i++ {
		g.Go(func() error {
			data, err := m.GetOrCompute(ctx, "hot", time.Minute, compute)
			if err != nil {
				return err
			}
			if string(data) != "shared" {
				return errors.New("wrong value")
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())
	assert.Equal(t, int32(1), calls.Load())
}

func TestMemory_InvalidatePrefix(t *testing.T) {
	m := NewMemory("stock", time.Minute)
	ctx := context.Background()

	keep := func(ctx context.Context) ([]byte, error) { return []byte("x"), nil }
	for _, key := range []string{
		"stock:alice:/api/dashboard/overview",
		"stock:alice:/api/dashboard/recent-sales",
		"stock:bob:/api/dashboard/overview",
	} {
		_, err := m.GetOrCompute(ctx, key, time.Minute, keep)
		require.NoError(t, err)
	}

	removed, err := m.Invalidate(ctx, "stock:alice:")
	require.NoError(t, err)
	assert.Equal(t, 2, removed)

	info, err := m.Info(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, info.Keys, "bob's entry survives")
}

func TestMemory_Clear(t *testing.T) {
	m := NewMemory("stock", time.Minute)
	ctx := context.Background()

	for _, key := range []string{"a", "b", "c"} {
		_, err := m.GetOrCompute(ctx, key, time.Minute, func(ctx context.Context) ([]byte, error) {
			return []byte("x"), nil
		})
		require.NoError(t, err)
	}

	removed, err := m.Clear(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, removed)

	info, err := m.Info(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, info.Keys)
}

func TestMemory_Info(t *testing.T) {
	m := NewMemory("stock", 45*time.Second)
	info, err := m.Info(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "memory", info.Backend)
	assert.Equal(t, "stock", info.KeyPrefix)
	assert.Equal(t, 45*time.Second, info.DefaultTTL)
}

func TestMemory_DefaultTTLFallback(t *testing.T) {
	m := NewMemory("stock", time.Minute)
	ctx := context.Background()

	current := time.Unix(1000, 0)
	m.now = func() time.Time { return current }

	var calls atomic.Int32
	compute := func(ctx context.Context) ([]byte, error) {
		calls.Add(1)
		return []byte("v"), nil
	}

	// ttl <= 0 falls back to the default
	_, err := m.GetOrCompute(ctx, "k1", 0, compute)
	require.NoError(t, err)

	current = current.Add(59 * time.Second)
	_, err = m.GetOrCompute(ctx, "k1", 0, compute)
	require.NoError(t, err)
	assert.Equal(t, int32(1), calls.Load())

	current = current.Add(2 * time.Second)
	_, err = m.GetOrCompute(ctx, "k1", 0, compute)
	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load())
}
