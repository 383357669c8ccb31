package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	redislib "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryStore struct {
	mu     sync.Mutex
	values map[string]string
}

func newMemoryStore() *memoryStore {
	return &memoryStore{values: map[string]string{}}
}

func (m *memoryStore) Set(_ context.Context, key string, value any, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value.(string)
	return nil
}

func (m *memoryStore) Get(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[key]
	if !ok {
		return "", redislib.Nil
	}
	return v, nil
}

func (m *memoryStore) GetDel(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[key]
	if !ok {
		return "", redislib.Nil
	}
	delete(m.values, key)
	return v, nil
}

func (m *memoryStore) Del(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.values, k)
	}
	return nil
}

type passthroughKeyer struct{}

func (passthroughKeyer) AccessSessionKey(accessID string) string {
	return "session:access:" + accessID
}

func newTestManager() (*Manager, *memoryStore) {
	store := newMemoryStore()
	return &Manager{store: store, keyer: passthroughKeyer{}, ttl: time.Hour}, store
}

func TestGenerateStoresToken(t *testing.T) {
	mgr, store := newTestManager()
	token, err := mgr.Generate(context.Background(), "access-1")
	require.NoError(t, err)
	assert.Equal(t, token, store.values["session:access:access-1"])
}

func TestRotateConsumesOldToken(t *testing.T) {
	mgr, _ := newTestManager()
	token, err := mgr.Generate(context.Background(), "access-1")
	require.NoError(t, err)

	newID, newToken, err := mgr.Rotate(context.Background(), "access-1", token)
	require.NoError(t, err)
	assert.NotEmpty(t, newID)
	assert.NotEqual(t, token, newToken)

	// A rotated token is single-use: replaying it must fail.
	_, _, err = mgr.Rotate(context.Background(), "access-1", token)
	assert.ErrorIs(t, err, ErrInvalidRefreshToken)

	ok, err := mgr.HasSession(context.Background(), newID)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRotateRejectsMismatchedToken(t *testing.T) {
	mgr, _ := newTestManager()
	_, err := mgr.Generate(context.Background(), "access-1")
	require.NoError(t, err)

	_, _, err = mgr.Rotate(context.Background(), "access-1", "forged")
	assert.ErrorIs(t, err, ErrInvalidRefreshToken)
}

func TestRotateConcurrentSingleWinner(t *testing.T) {
	mgr, _ := newTestManager()
	token, err := mgr.Generate(context.Background(), "access-1")
	require.NoError(t, err)

	const racers = 8
	results := make(chan error, racers)
	var start sync.WaitGroup
	start.Add(1)
	for i := 0; i < racers; i++ {
		go func() {
			start.Wait()
			_, _, err := mgr.Rotate(context.Background(), "access-1", token)
			results <- err
		}()
	}
	start.Done()

	var wins, rejects int
	for i := 0; i < racers; i++ {
		err := <-results
		switch {
		case err == nil:
			wins++
		case errors.Is(err, ErrInvalidRefreshToken):
			rejects++
		default:
			t.Fatalf("unexpected rotate error: %v", err)
		}
	}
	assert.Equal(t, 1, wins)
	assert.Equal(t, racers-1, rejects)
}

func TestRevokeEndsSession(t *testing.T) {
	mgr, _ := newTestManager()
	_, err := mgr.Generate(context.Background(), "access-1")
	require.NoError(t, err)

	require.NoError(t, mgr.Revoke(context.Background(), "access-1"))

	ok, err := mgr.HasSession(context.Background(), "access-1")
	require.NoError(t, err)
	assert.False(t, ok)
}
