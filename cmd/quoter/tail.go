package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"
	"github.com/zamyatin-zkex/quoter/internal/catalog"
	"github.com/zamyatin-zkex/quoter/internal/event"
	"github.com/zamyatin-zkex/quoter/internal/format"
	"github.com/zamyatin-zkex/quoter/internal/service/interrupter"
	"github.com/zamyatin-zkex/quoter/pkg/ebus"
	"go.uber.org/zap"
)

func tailCmd() *cobra.Command {
	var (
		count    int
		profile  string
		interval time.Duration
	)

	cmd := &cobra.Command{
		Use:   "tail <symbol>...",
		Short: "Print quotes of the given instruments as they tick",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := boardOptions{symbols: args, profile: profile, interval: interval}
			return tail(cmd.Context(), cmd.OutOrStdout(), opts, count)
		},
	}

	cmd.Flags().IntVarP(&count, "count", "n", 0, "stop after n quotes, 0 runs until interrupted")
	cmd.Flags().StringVarP(&profile, "profile", "p", "", "walk profile: equity, crypto, index, candle")
	cmd.Flags().DurationVar(&interval, "interval", 0, "override the profile tick interval")

	return cmd
}

func tail(ctx context.Context, out io.Writer, opts boardOptions, count int) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	eBus := ebus.New()
	board, err := buildBoard(catalog.Default(), opts, eBus, zap.NewNop())
	if err != nil {
		return err
	}

	var (
		mx      sync.Mutex
		printed int
	)
	eBus.Subscribe(event.QuoteUpdated{}, ebus.Typed(func(ctx context.Context, e event.QuoteUpdated) error {
		mx.Lock()
		defer mx.Unlock()

		if count > 0 && printed >= count {
			return nil
		}
		fmt.Fprintln(out, quoteLine(format.Quote(e.Quote)))
		printed++
		if count > 0 && printed >= count {
			cancel()
		}
		return nil
	}))

	go func() {
		_ = interrupter.Interrupter{}.Run(ctx)
		cancel()
	}()

	return exit(board.Run(ctx))
}

func quoteLine(v format.QuoteView) string {
	return strings.Join([]string{
		fmt.Sprintf("%-8s", v.Symbol),
		fmt.Sprintf("%14s", v.Price),
		fmt.Sprintf("%9s", v.Change),
		fmt.Sprintf("%12s", v.ChangeValue),
		fmt.Sprintf("#%d", v.Seq),
	}, " ")
}
