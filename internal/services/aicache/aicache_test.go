package services_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/magabrotheeeer/adpilot/internal/models"
	services "github.com/magabrotheeeer/adpilot/internal/services/aicache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Хранилище кэша в памяти
type cacheRepoStub struct {
	mu      sync.Mutex
	entries map[string]*models.CacheEntry
	getErr  error
}

func newCacheRepoStub() *cacheRepoStub {
	return &cacheRepoStub{entries: make(map[string]*models.CacheEntry)}
}

func (r *cacheRepoStub) GetCachedResponse(_ context.Context, key string) (*models.CacheEntry, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.getErr != nil {
		return nil, false, r.getErr
	}
	entry, ok := r.entries[key]
	if !ok || entry.Expiration.Before(time.Now()) {
		return nil, false, nil
	}
	return entry, true, nil
}

func (r *cacheRepoStub) UpsertCachedResponse(_ context.Context, key string, response json.RawMessage, expiration time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[key] = &models.CacheEntry{Key: key, Response: response, Expiration: expiration}
	return nil
}

func TestGetOrCreate_Miss(t *testing.T) {
	repo := newCacheRepoStub()
	svc := services.NewAICacheService(repo, time.Hour)

	result, err := svc.GetOrCreate(context.Background(), "key-1", func(ctx context.Context) (json.RawMessage, error) {
		return json.RawMessage(`{"ads":[1]}`), nil
	})
	require.NoError(t, err)
	assert.False(t, result.FromCache)
	assert.JSONEq(t, `{"ads":[1]}`, string(result.Response))

	// результат должен остаться в кэше
	_, found, err := repo.GetCachedResponse(context.Background(), "key-1")
	require.NoError(t, err)
	assert.True(t, found)
}

func TestGetOrCreate_Hit(t *testing.T) {
	repo := newCacheRepoStub()
	require.NoError(t, repo.UpsertCachedResponse(context.Background(), "key-1", json.RawMessage(`{"ads":[1]}`), time.Now().Add(time.Hour)))
	svc := services.NewAICacheService(repo, time.Hour)

	result, err := svc.GetOrCreate(context.Background(), "key-1", func(ctx context.Context) (json.RawMessage, error) {
		t.Fatal("create should not be called on cache hit")
		return nil, nil
	})
	require.NoError(t, err)
	assert.True(t, result.FromCache)
}

func TestGetOrCreate_SingleFlight(t *testing.T) {
	repo := newCacheRepoStub()
	svc := services.NewAICacheService(repo, time.Hour)

	var calls int32
	started := make(chan struct{})
	release := make(chan struct{})

	create := func(ctx context.Context) (json.RawMessage, error) {
		if atomic.AddInt32(&calls, 1) == 1 {
			close(started)
		}
		<-release
		return json.RawMessage(`{"ads":[1]}`), nil
	}

	const workers = 5
	var wg sync.WaitGroup
	results := make([]*services.Result, workers)
	errs := make([]error, workers)

	wg.Add(1)
	go func() {
		defer wg.Done()
		results[0], errs[0] = svc.GetOrCreate(context.Background(), "key-1", create)
	}()
	<-started

	for i := 1; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = svc.GetOrCreate(context.Background(), "key-1", create)
		}(i)
	}

	// даём остальным горутинам встать в очередь за лидером
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	for i := 0; i < workers; i++ {
		require.NoError(t, errs[i])
		assert.JSONEq(t, `{"ads":[1]}`, string(results[i].Response))
	}
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls), "create should run once for concurrent callers")
}

func TestGetOrCreate_CreateError(t *testing.T) {
	repo := newCacheRepoStub()
	svc := services.NewAICacheService(repo, time.Hour)

	wantErr := errors.New("upstream unavailable")
	_, err := svc.GetOrCreate(context.Background(), "key-1", func(ctx context.Context) (json.RawMessage, error) {
		return nil, wantErr
	})
	assert.ErrorIs(t, err, wantErr)
}

func TestKey_OrderInsensitive(t *testing.T) {
	svc := services.NewAICacheService(newCacheRepoStub(), time.Hour)

	k1, err := svc.Key(map[string]any{"a": 1, "b": "x"})
	require.NoError(t, err)
	k2, err := svc.Key(map[string]any{"b": "x", "a": 1})
	require.NoError(t, err)
	assert.Equal(t, k1, k2)
}
