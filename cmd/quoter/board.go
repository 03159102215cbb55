package main

import (
	"fmt"
	"time"

	"github.com/zamyatin-zkex/quoter/internal/catalog"
	"github.com/zamyatin-zkex/quoter/internal/entity"
	"github.com/zamyatin-zkex/quoter/internal/quote"
	"github.com/zamyatin-zkex/quoter/internal/service/feed"
	"github.com/zamyatin-zkex/quoter/pkg/ebus"
	"go.uber.org/zap"
)

// boardOptions picks instruments and walk parameters for a board.
type boardOptions struct {
	symbols []string
	// profile replaces the per-kind profile when set
	profile string
	// interval replaces the profile tick interval when positive
	interval time.Duration
}

func instruments(cat *catalog.Catalog, symbols []string) ([]entity.Instrument, error) {
	if len(symbols) == 0 {
		return cat.All(), nil
	}

	out := make([]entity.Instrument, 0, len(symbols))
	for _, symbol := range symbols {
		ins, ok := cat.Lookup(symbol)
		if !ok {
			return nil, fmt.Errorf("unknown symbol %q", symbol)
		}
		out = append(out, ins)
	}
	return out, nil
}

func profileFor(ins entity.Instrument, opts boardOptions) (quote.Profile, error) {
	profile := catalog.ProfileFor(ins.Kind)
	if opts.profile != "" {
		p, ok := quote.ProfileByName(opts.profile)
		if !ok {
			return quote.Profile{}, fmt.Errorf("unknown profile %q", opts.profile)
		}
		profile = p
	}
	if opts.interval > 0 {
		profile.Interval = opts.interval
	}
	return profile, nil
}

// buildBoard gives every instrument its own generator and random source.
func buildBoard(cat *catalog.Catalog, opts boardOptions, eBus *ebus.EBus, logger *zap.Logger) (*feed.Board, error) {
	list, err := instruments(cat, opts.symbols)
	if err != nil {
		return nil, err
	}

	board := feed.NewBoard(logger)
	seed := time.Now().UnixNano()
	for i, ins := range list {
		profile, err := profileFor(ins, opts)
		if err != nil {
			return nil, err
		}

		noise := quote.NewUniform(profile.Amplitude, quote.NewRand(seed+int64(i)))
		gen, err := quote.NewGenerator(profile, noise, quote.SystemClock{})
		if err != nil {
			return nil, fmt.Errorf("%s: %w", ins.Symbol, err)
		}

		if err := board.Add(feed.New(ins, gen, eBus, logger)); err != nil {
			return nil, err
		}
	}

	return board, nil
}
