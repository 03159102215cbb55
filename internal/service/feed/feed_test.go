package feed

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zamyatin-zkex/quoter/internal/entity"
	"github.com/zamyatin-zkex/quoter/internal/event"
	"github.com/zamyatin-zkex/quoter/internal/quote"
	"github.com/zamyatin-zkex/quoter/pkg/ebus"
	"go.uber.org/zap"
)

var fast = quote.Profile{
	Name:       "fast",
	Amplitude:  decimal.RequireFromString("0.5"),
	WindowSize: quote.MinWindow,
	Interval:   5 * time.Millisecond,
}

func instrument(symbol string) entity.Instrument {
	return entity.Instrument{
		Symbol:      symbol,
		DisplayName: symbol,
		Kind:        entity.KindStock,
		BasePrice:   decimal.RequireFromString("100"),
		Floor:       decimal.RequireFromString("95"),
		Precision:   2,
	}
}

func newFeed(t *testing.T, symbol string, bus *ebus.EBus) *Feed {
	t.Helper()
	gen, err := quote.NewGenerator(fast, nil, nil)
	require.NoError(t, err)
	return New(instrument(symbol), gen, bus, zap.NewNop())
}

type recorder struct {
	mx      sync.Mutex
	quotes  []entity.Quote
	started []event.FeedStarted
	stopped []event.FeedStopped
}

func (r *recorder) subscribe(bus *ebus.EBus) {
	bus.Subscribe(event.QuoteUpdated{}, ebus.Typed(func(ctx context.Context, e event.QuoteUpdated) error {
		r.mx.Lock()
		defer r.mx.Unlock()
		r.quotes = append(r.quotes, e.Quote)
		return nil
	}))
	bus.Subscribe(event.FeedStarted{}, ebus.Typed(func(ctx context.Context, e event.FeedStarted) error {
		r.mx.Lock()
		defer r.mx.Unlock()
		r.started = append(r.started, e)
		return nil
	}))
	bus.Subscribe(event.FeedStopped{}, ebus.Typed(func(ctx context.Context, e event.FeedStopped) error {
		r.mx.Lock()
		defer r.mx.Unlock()
		r.stopped = append(r.stopped, e)
		return nil
	}))
}

func (r *recorder) count() int {
	r.mx.Lock()
	defer r.mx.Unlock()
	return len(r.quotes)
}

func TestFeed_Lifecycle(t *testing.T) {
	bus := ebus.New()
	rec := &recorder{}
	rec.subscribe(bus)

	f := newFeed(t, "AAPL", bus)
	assert.Equal(t, Idle, f.Status())
	_, ok := f.Snapshot()
	assert.False(t, ok)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- f.Run(ctx) }()

	require.Eventually(t, func() bool { return rec.count() >= 5 }, time.Second, time.Millisecond)
	assert.Equal(t, Active, f.Status())

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("feed did not stop")
	}
	assert.Equal(t, Idle, f.Status())

	rec.mx.Lock()
	defer rec.mx.Unlock()

	require.Len(t, rec.started, 1)
	assert.Equal(t, "fast", rec.started[0].Profile)
	require.Len(t, rec.stopped, 1)
	assert.Equal(t, f.Ticks(), rec.stopped[0].Ticks)

	// the first quote is the seeded one, each tick moves seq by one
	assert.Equal(t, int64(0), rec.quotes[0].Seq)
	for i, q := range rec.quotes {
		assert.Equal(t, int64(i), q.Seq)
		assert.Len(t, q.Window, fast.WindowSize)
		assert.True(t, q.Value.GreaterThanOrEqual(decimal.RequireFromString("95")))
	}

	snap, ok := f.Snapshot()
	require.True(t, ok)
	assert.Equal(t, rec.quotes[len(rec.quotes)-1].Seq, snap.Seq)
}

func TestFeed_RunsWithoutListeners(t *testing.T) {
	f := newFeed(t, "MSFT", ebus.New())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- f.Run(ctx) }()

	require.Eventually(t, func() bool { return f.Ticks() >= 3 }, time.Second, time.Millisecond)
	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}

func TestFeed_RejectsInvalidInstrument(t *testing.T) {
	gen, err := quote.NewGenerator(fast, nil, nil)
	require.NoError(t, err)

	ins := instrument("BAD")
	ins.BasePrice = decimal.Zero
	f := New(ins, gen, ebus.New(), zap.NewNop())

	err = f.Run(context.Background())
	assert.ErrorIs(t, err, entity.ErrInvalidInstrument)
	assert.Equal(t, Idle, f.Status())
}

func TestFeed_RestartReseeds(t *testing.T) {
	f := newFeed(t, "NVDA", ebus.New())

	for i := 0; i < 2; i++ {
		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error, 1)
		go func() { done <- f.Run(ctx) }()

		require.Eventually(t, func() bool { return f.Ticks() >= 2 }, time.Second, time.Millisecond)
		cancel()
		<-done
	}

	snap, ok := f.Snapshot()
	require.True(t, ok)
	assert.Equal(t, f.Ticks(), snap.Seq)
}

func TestFeed_StatesDiverge(t *testing.T) {
	a := newFeed(t, "AAPL", ebus.New())
	b := newFeed(t, "AAPL", ebus.New())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go a.Run(ctx)
	go b.Run(ctx)

	require.Eventually(t, func() bool { return a.Ticks() >= 10 && b.Ticks() >= 10 }, time.Second, time.Millisecond)

	qa, _ := a.Snapshot()
	qb, _ := b.Snapshot()
	assert.NotEqual(t, qa.ID, qb.ID)
	assert.NotEqual(t, qa.Window, qb.Window)
}
