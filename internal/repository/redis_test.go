package repository

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zamyatin-zkex/quoter/internal/event"
)

type mockPipeline struct {
	redis.Pipeliner

	mu        sync.Mutex
	execCount int
	cmds      []string
	ttl       time.Duration
}

func (m *mockPipeline) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cmds = append(m.cmds, "SET "+key)
	m.ttl = expiration
	return redis.NewStatusCmd(ctx)
}

func (m *mockPipeline) Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cmds = append(m.cmds, "PUBLISH "+channel)
	return redis.NewIntCmd(ctx)
}

func (m *mockPipeline) Exec(ctx context.Context) ([]redis.Cmder, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.execCount++
	return nil, nil
}

type mockRedis struct {
	pipe   *mockPipeline
	values map[string]interface{}
}

func (m *mockRedis) Pipeline() redis.Pipeliner {
	return m.pipe
}

func (m *mockRedis) MGet(ctx context.Context, keys ...string) *redis.SliceCmd {
	vals := make([]interface{}, len(keys))
	for i, k := range keys {
		vals[i] = m.values[k]
	}
	return redis.NewSliceResult(vals, nil)
}

func TestSnapshots_Store(t *testing.T) {
	client := &mockRedis{pipe: &mockPipeline{}}
	store := NewSnapshots(client, time.Hour)

	require.NoError(t, store.Publish(context.Background(), event.QuoteUpdated{Quote: quote("ETH", "3542.67", 4)}))

	assert.Equal(t, 1, client.pipe.execCount)
	assert.Equal(t, []string{"SET quote:ETH", "PUBLISH quotes.ETH"}, client.pipe.cmds)
	assert.Equal(t, time.Hour, client.pipe.ttl)
}

func TestSnapshots_Get(t *testing.T) {
	js, err := json.Marshal(quote("ETH", "3542.67", 4))
	require.NoError(t, err)

	client := &mockRedis{values: map[string]interface{}{Key("ETH"): string(js)}}
	store := NewSnapshots(client, time.Hour)

	quotes, err := store.Get(context.Background(), "ETH", "SOL")
	require.NoError(t, err)
	require.Len(t, quotes, 1)
	assert.Equal(t, "ETH", quotes[0].Symbol)
	assert.Equal(t, int64(4), quotes[0].Seq)

	quotes, err = store.Get(context.Background())
	require.NoError(t, err)
	assert.Empty(t, quotes)
}
