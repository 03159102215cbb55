package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/zamyatin-zkex/quoter/internal/entity"
	"github.com/zamyatin-zkex/quoter/internal/event"
)

const (
	keyPrefix     = "quote:"
	channelPrefix = "quotes."
)

// RedisClient is the subset of *redis.Client the snapshot store uses.
type RedisClient interface {
	Pipeline() redis.Pipeliner
	MGet(ctx context.Context, keys ...string) *redis.SliceCmd
}

var _ RedisClient = (*redis.Client)(nil)

// Snapshots keeps the latest quote per symbol in Redis and fans it out on
// a per-symbol channel.
type Snapshots struct {
	client RedisClient
	ttl    time.Duration
}

func NewSnapshots(client RedisClient, ttl time.Duration) *Snapshots {
	return &Snapshots{client: client, ttl: ttl}
}

func Key(symbol string) string {
	return keyPrefix + symbol
}

func Channel(symbol string) string {
	return channelPrefix + symbol
}

func (s *Snapshots) Store(ctx context.Context, quote entity.Quote) error {
	payload, err := json.Marshal(quote)
	if err != nil {
		return fmt.Errorf("json marshal quote: %w", err)
	}

	pipe := s.client.Pipeline()
	pipe.Set(ctx, Key(quote.Symbol), payload, s.ttl)
	pipe.Publish(ctx, Channel(quote.Symbol), payload)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis pipeline %s: %w", quote.Symbol, err)
	}

	return nil
}

func (s *Snapshots) Publish(ctx context.Context, e event.QuoteUpdated) error {
	return s.Store(ctx, e.Quote)
}

// Get returns stored quotes for the symbols that have one. Expired or
// unknown symbols are skipped.
func (s *Snapshots) Get(ctx context.Context, symbols ...string) ([]entity.Quote, error) {
	if len(symbols) == 0 {
		return nil, nil
	}

	keys := make([]string, len(symbols))
	for i, sym := range symbols {
		keys[i] = Key(sym)
	}

	results, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("redis mget: %w", err)
	}

	quotes := make([]entity.Quote, 0, len(results))
	for i, val := range results {
		payload, ok := val.(string)
		if !ok || payload == "" {
			continue
		}
		quote := entity.Quote{}
		if err := json.Unmarshal([]byte(payload), &quote); err != nil {
			return nil, fmt.Errorf("unmarshal %s: %w", keys[i], err)
		}
		quotes = append(quotes, quote)
	}
	return quotes, nil
}
