package interrupter

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

var ErrInterrupted = fmt.Errorf("got interrupt signal")

// Interrupter ends the app on SIGINT or SIGTERM.
type Interrupter struct {
	// Signals overrides the default set.
	Signals []os.Signal
}

func (i Interrupter) Run(ctx context.Context) error {
	signals := i.Signals
	if len(signals) == 0 {
		signals = []os.Signal{syscall.SIGINT, syscall.SIGTERM}
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, signals...)
	defer signal.Stop(stop)

	select {
	case sig := <-stop:
		return fmt.Errorf("%w: %s", ErrInterrupted, sig.String())
	case <-ctx.Done():
		return fmt.Errorf("interrupter: %w", ctx.Err())
	}
}
