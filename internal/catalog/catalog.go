// Package catalog holds the reference instruments and the demo portfolio.
package catalog

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/zamyatin-zkex/quoter/internal/entity"
	"github.com/zamyatin-zkex/quoter/internal/quote"
)

// DefaultFloorRatio puts the floor at 95% of the base price and the
// ceiling at base/0.95, so every walk stays in a band around its base.
var DefaultFloorRatio = decimal.RequireFromString("0.95")

type spec struct {
	symbol    string
	name      string
	kind      entity.Kind
	base      string
	precision int32
}

var specs = []spec{
	{"SPX500", "S&P 500", entity.KindIndex, "6389.66", 2},
	{"DJ30", "Dow Jones", entity.KindIndex, "44885.75", 2},

	{"AAPL", "Apple Inc.", entity.KindStock, "195.12", 2},
	{"MSFT", "Microsoft Corp", entity.KindStock, "425.67", 2},
	{"GOOGL", "Alphabet Inc", entity.KindStock, "175.34", 2},
	{"AMZN", "Amazon.com Inc", entity.KindStock, "186.89", 2},
	{"TSLA", "Tesla Inc", entity.KindStock, "248.50", 2},
	{"NVDA", "NVIDIA Corp", entity.KindStock, "145.89", 2},
	{"META", "Meta Platforms", entity.KindStock, "485.32", 2},
	{"NFLX", "Netflix", entity.KindStock, "458.91", 2},
	{"PYPL", "PayPal", entity.KindStock, "78.45", 2},
	{"UBER", "Uber", entity.KindStock, "68.23", 2},

	{"BTC", "Bitcoin", entity.KindCrypto, "118337.31", 2},
	{"ETH", "Ethereum", entity.KindCrypto, "3776.78", 2},
	{"BNB", "Binance Coin", entity.KindCrypto, "687.89", 2},
	{"SOL", "Solana", entity.KindCrypto, "245.67", 2},
	{"ADA", "Cardano", entity.KindCrypto, "1.23", 4},

	{"EURUSD", "EUR/USD", entity.KindForex, "1.17383", 5},
	{"GBPUSD", "GBP/USD", entity.KindForex, "1.28745", 5},
	{"USDJPY", "USD/JPY", entity.KindForex, "155.420", 3},
	{"AUDUSD", "AUD/USD", entity.KindForex, "0.68321", 5},
}

type Catalog struct {
	instruments []entity.Instrument
	bySymbol    map[string]entity.Instrument
}

func Default() *Catalog {
	list := make([]entity.Instrument, 0, len(specs))
	for _, s := range specs {
		base := decimal.RequireFromString(s.base)
		list = append(list, entity.Instrument{
			Symbol:      s.symbol,
			DisplayName: s.name,
			Kind:        s.kind,
			Currency:    "USD",
			BasePrice:   base,
			Precision:   s.precision,
			Floor:       base.Mul(DefaultFloorRatio).Round(s.precision),
			Ceiling:     base.Div(DefaultFloorRatio).Round(s.precision),
		})
	}
	return New(list...)
}

func New(instruments ...entity.Instrument) *Catalog {
	c := &Catalog{
		instruments: instruments,
		bySymbol:    make(map[string]entity.Instrument, len(instruments)),
	}
	for _, ins := range instruments {
		c.bySymbol[ins.Symbol] = ins
	}
	return c
}

func (c *Catalog) Lookup(symbol string) (entity.Instrument, bool) {
	ins, ok := c.bySymbol[strings.ToUpper(strings.TrimSpace(symbol))]
	return ins, ok
}

func (c *Catalog) All() []entity.Instrument {
	out := make([]entity.Instrument, len(c.instruments))
	copy(out, c.instruments)
	return out
}

func (c *Catalog) ByKind(kind entity.Kind) []entity.Instrument {
	out := make([]entity.Instrument, 0)
	for _, ins := range c.instruments {
		if ins.Kind == kind {
			out = append(out, ins)
		}
	}
	return out
}

// Filter is the markets search box: case-insensitive match on symbol or name,
// symbol prefix matches first.
func (c *Catalog) Filter(query string) []entity.Instrument {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return c.All()
	}

	type hit struct {
		ins    entity.Instrument
		prefix bool
		order  int
	}
	hits := make([]hit, 0)
	for i, ins := range c.instruments {
		symbol := strings.ToLower(ins.Symbol)
		name := strings.ToLower(ins.DisplayName)
		switch {
		case strings.HasPrefix(symbol, q):
			hits = append(hits, hit{ins: ins, prefix: true, order: i})
		case strings.Contains(symbol, q), strings.Contains(name, q):
			hits = append(hits, hit{ins: ins, order: i})
		}
	}

	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].prefix != hits[j].prefix {
			return hits[i].prefix
		}
		return hits[i].order < hits[j].order
	})

	out := make([]entity.Instrument, len(hits))
	for i, h := range hits {
		out[i] = h.ins
	}
	return out
}

// ProfileFor picks the walk parameters a widget uses for the kind.
func ProfileFor(kind entity.Kind) quote.Profile {
	switch kind {
	case entity.KindCrypto:
		return quote.Crypto
	case entity.KindIndex, entity.KindForex:
		return quote.Index
	default:
		return quote.Equity
	}
}
