package feed

import (
	"context"
	"fmt"
	"sync"

	"github.com/oklog/run"
	"github.com/shopspring/decimal"
	"github.com/zamyatin-zkex/quoter/internal/entity"
	"github.com/zamyatin-zkex/quoter/internal/event"
	"go.uber.org/zap"
)

// Board runs a set of independent feeds, one per symbol. A feed whose Run
// fails is logged and left Idle, the rest keep ticking.
type Board struct {
	mx       sync.RWMutex
	feeds    []*Feed
	bySymbol map[string]*Feed
	failed   map[string]error
	logger   *zap.Logger
}

func NewBoard(logger *zap.Logger) *Board {
	return &Board{
		bySymbol: make(map[string]*Feed),
		failed:   make(map[string]error),
		logger:   logger,
	}
}

func (b *Board) Add(f *Feed) error {
	b.mx.Lock()
	defer b.mx.Unlock()

	if _, ok := b.bySymbol[f.Symbol()]; ok {
		return fmt.Errorf("feed %s already on board", f.Symbol())
	}
	b.feeds = append(b.feeds, f)
	b.bySymbol[f.Symbol()] = f
	return nil
}

func (b *Board) Run(ctx context.Context) error {
	b.mx.RLock()
	feeds := append([]*Feed(nil), b.feeds...)
	b.mx.RUnlock()

	if len(feeds) == 0 {
		<-ctx.Done()
		return ctx.Err()
	}

	var group run.Group
	for _, f := range feeds {
		ctx, cancel := context.WithCancelCause(ctx)
		group.Add(func() error {
			err := f.Run(ctx)
			if err == nil || ctx.Err() != nil {
				return err
			}

			b.fail(f.Symbol(), err)
			<-ctx.Done()
			return ctx.Err()
		}, func(err error) {
			cancel(err)
		})
	}

	return group.Run()
}

func (b *Board) fail(symbol string, err error) {
	b.logger.Error("feed failed", zap.String("symbol", symbol), zap.Error(err))

	b.mx.Lock()
	defer b.mx.Unlock()
	b.failed[symbol] = err
}

// Err is the error the symbol's last Run failed with, nil if none.
func (b *Board) Err(symbol string) error {
	b.mx.RLock()
	defer b.mx.RUnlock()
	return b.failed[symbol]
}

func (b *Board) Feed(symbol string) (*Feed, bool) {
	b.mx.RLock()
	defer b.mx.RUnlock()

	f, ok := b.bySymbol[symbol]
	return f, ok
}

func (b *Board) Snapshot(symbol string) (entity.Quote, bool) {
	f, ok := b.Feed(symbol)
	if !ok {
		return entity.Quote{}, false
	}
	return f.Snapshot()
}

// Snapshots lists quotes of started feeds in board order.
func (b *Board) Snapshots() []entity.Quote {
	b.mx.RLock()
	defer b.mx.RUnlock()

	out := make([]entity.Quote, 0, len(b.feeds))
	for _, f := range b.feeds {
		if q, ok := f.Snapshot(); ok {
			out = append(out, q)
		}
	}
	return out
}

func (b *Board) Prices() map[string]decimal.Decimal {
	prices := make(map[string]decimal.Decimal)
	for _, q := range b.Snapshots() {
		prices[q.Symbol] = q.Value
	}
	return prices
}

func (b *Board) Stats() event.BoardStats {
	b.mx.RLock()
	defer b.mx.RUnlock()

	stats := event.BoardStats{Feeds: len(b.feeds), Failed: len(b.failed)}
	for _, f := range b.feeds {
		if f.Status() == Active {
			stats.Active++
		}
		stats.Ticks += f.Ticks()
	}
	return stats
}
