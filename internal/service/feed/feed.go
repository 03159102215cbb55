package feed

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/zamyatin-zkex/quoter/internal/entity"
	"github.com/zamyatin-zkex/quoter/internal/event"
	"github.com/zamyatin-zkex/quoter/internal/quote"
	"github.com/zamyatin-zkex/quoter/pkg/ebus"
	"go.uber.org/zap"
)

var ErrActive = errors.New("feed already active")

type Status int

const (
	Idle Status = iota
	Active
)

func (s Status) String() string {
	if s == Active {
		return "active"
	}
	return "idle"
}

// Feed drives one instrument's walk on the profile interval. Its state is
// seeded on every Run and belongs to this feed only.
type Feed struct {
	ins    entity.Instrument
	gen    *quote.Generator
	eBus   *ebus.EBus
	logger *zap.Logger

	mx     sync.RWMutex
	state  quote.State
	seeded bool
	status Status
	ticks  int64
}

func New(ins entity.Instrument, gen *quote.Generator, eBus *ebus.EBus, logger *zap.Logger) *Feed {
	return &Feed{
		ins:    ins,
		gen:    gen,
		eBus:   eBus,
		logger: logger.With(zap.String("symbol", ins.Symbol)),
	}
}

func (f *Feed) Symbol() string {
	return f.ins.Symbol
}

func (f *Feed) Instrument() entity.Instrument {
	return f.ins
}

func (f *Feed) Run(ctx context.Context) error {
	state, err := f.gen.Seed(f.ins)
	if err != nil {
		return fmt.Errorf("seed %s: %w", f.ins.Symbol, err)
	}

	f.mx.Lock()
	if f.status == Active {
		f.mx.Unlock()
		return fmt.Errorf("%w: %s", ErrActive, f.ins.Symbol)
	}
	f.state = state
	f.seeded = true
	f.status = Active
	f.ticks = 0
	f.mx.Unlock()

	defer f.idle()

	profile := f.gen.Profile()
	if !profile.Typical() {
		f.logger.Warn("unusual tick interval", zap.Duration("interval", profile.Interval))
	}

	f.emit(ctx, event.FeedStarted{Symbol: f.ins.Symbol, Profile: profile.Name})
	f.emit(ctx, event.QuoteUpdated{Quote: state.Quote()})

	ticker := time.NewTicker(profile.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			// ctx is done, the stop notice goes out on a fresh one
			f.emit(context.WithoutCancel(ctx), event.FeedStopped{
				Symbol: f.ins.Symbol,
				Ticks:  f.Ticks(),
				Reason: context.Cause(ctx).Error(),
			})
			return ctx.Err()
		case <-ticker.C:
			f.emit(ctx, event.QuoteUpdated{Quote: f.tick()})
		}
	}
}

func (f *Feed) tick() entity.Quote {
	f.mx.Lock()
	defer f.mx.Unlock()

	f.state = f.gen.Step(f.state)
	f.ticks++

	return f.state.Quote()
}

func (f *Feed) idle() {
	f.mx.Lock()
	defer f.mx.Unlock()
	f.status = Idle
}

func (f *Feed) emit(ctx context.Context, e any) {
	if err := ebus.Quiet(f.eBus.Emit(ctx, e)); err != nil {
		f.logger.Warn("emit", zap.Error(err))
	}
}

func (f *Feed) Status() Status {
	f.mx.RLock()
	defer f.mx.RUnlock()
	return f.status
}

func (f *Feed) Ticks() int64 {
	f.mx.RLock()
	defer f.mx.RUnlock()
	return f.ticks
}

// Snapshot returns the latest quote. False until the feed has been started once.
func (f *Feed) Snapshot() (entity.Quote, bool) {
	f.mx.RLock()
	defer f.mx.RUnlock()

	if !f.seeded {
		return entity.Quote{}, false
	}
	return f.state.Quote(), true
}
