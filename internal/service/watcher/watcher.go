package watcher

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"sync"
	"time"

	"github.com/zamyatin-zkex/quoter/pkg/ebus"
	"go.uber.org/zap"
)

type watch struct {
	frame  time.Duration
	getter func(ctx context.Context) (any, error)
}

// Watcher polls getters on their own tickers and emits what they return.
type Watcher struct {
	eBus   *ebus.EBus
	logger *zap.Logger
	subs   []watch
	mx     sync.Mutex
}

func NewWatcher(eBus *ebus.EBus, logger *zap.Logger) *Watcher {
	return &Watcher{
		eBus:   eBus,
		logger: logger,
	}
}

func (w *Watcher) EmitEvery(frame time.Duration, getter func(ctx context.Context) (any, error)) *Watcher {
	w.mx.Lock()
	defer w.mx.Unlock()

	w.subs = append(w.subs, watch{frame: frame, getter: getter})
	return w
}

func (w *Watcher) Run(ctx context.Context) error {
	w.mx.Lock()
	subs := append([]watch(nil), w.subs...)
	w.mx.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	errs := make(chan error)

	for _, sub := range subs {
		go func(sub watch) {
			ticker := time.NewTicker(sub.frame)
			defer ticker.Stop()

			for {
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
					ins, err := sub.getter(ctx)
					if err != nil {
						select {
						case errs <- err:
						case <-ctx.Done():
						}
						return
					}
					if err := ebus.Quiet(w.eBus.Emit(ctx, ins)); err != nil {
						w.logger.Warn("watcher emit", zap.String("event", reflect.TypeOf(ins).Name()), zap.Error(err))
					}
				}
			}
		}(sub)
	}

	select {
	case err := <-errs:
		return fmt.Errorf("watcher: %w", err)
	case <-ctx.Done():
		return ctx.Err()
	}
}

// LogAny logs any event as JSON at info level.
func LogAny[T any](logger *zap.Logger) func(ctx context.Context, event T) error {
	return func(ctx context.Context, event T) error {
		js, err := json.Marshal(event)
		if err != nil {
			return err
		}
		logger.Info(reflect.TypeOf(event).Name(), zap.ByteString("event", js))

		return nil
	}
}
