package web

import (
	"encoding/json"
	"reflect"
	"strings"
	"time"

	"github.com/zamyatin-zkex/quoter/internal/entity"
	"github.com/zamyatin-zkex/quoter/internal/format"
	"github.com/zamyatin-zkex/quoter/internal/market"
	"github.com/zamyatin-zkex/quoter/internal/portfolio"
)

type msg struct {
	mType int
	data  []byte
	err   error
}

type BaseMessage struct {
	Name    string
	Payload interface{}
}

func NewMessage(payload interface{}) BaseMessage {
	msg := BaseMessage{
		Name:    reflect.TypeOf(payload).Name(),
		Payload: payload,
	}

	return msg
}

const (
	ActionSubscribe   = "subscribe"
	ActionUnsubscribe = "unsubscribe"
)

// Command is a client frame. A bare symbol is read as a subscribe.
type Command struct {
	Action string `json:"action"`
	Symbol string `json:"symbol"`
}

func parseCommand(data []byte) Command {
	var cmd Command
	if err := json.Unmarshal(data, &cmd); err != nil || cmd.Action == "" {
		cmd = Command{Action: ActionSubscribe, Symbol: string(data)}
	}
	cmd.Symbol = strings.ToUpper(strings.TrimSpace(cmd.Symbol))
	return cmd
}

type Ack struct {
	Action string
	Symbol string
}

type Error struct {
	Message string
}

type InstrumentView struct {
	Symbol    string `json:"symbol"`
	Name      string `json:"name"`
	Kind      string `json:"kind"`
	Currency  string `json:"currency"`
	BasePrice string `json:"base_price"`
}

func instrumentView(ins entity.Instrument) InstrumentView {
	return InstrumentView{
		Symbol:    ins.Symbol,
		Name:      ins.DisplayName,
		Kind:      string(ins.Kind),
		Currency:  ins.Currency,
		BasePrice: format.Price(ins.BasePrice, ins.Precision),
	}
}

type HoldingView struct {
	Symbol       string `json:"symbol"`
	Name         string `json:"name"`
	Shares       string `json:"shares"`
	AvgPrice     string `json:"avg_price"`
	Price        string `json:"price"`
	MarketValue  string `json:"market_value"`
	Unrealized   string `json:"unrealized"`
	UnrealizedPc string `json:"unrealized_pc"`
	Allocation   string `json:"allocation"`
}

type PortfolioView struct {
	TotalValue   string        `json:"total_value"`
	Cash         string        `json:"cash"`
	Invested     string        `json:"invested"`
	Unrealized   string        `json:"unrealized"`
	UnrealizedPc string        `json:"unrealized_pc"`
	Holdings     []HoldingView `json:"holdings"`
}

// portfolioView renders a valuation, hiding money amounts unless show is set.
// Percentages stay visible.
func portfolioView(val portfolio.Valuation, show bool) PortfolioView {
	view := PortfolioView{
		TotalValue:   format.Mask(format.Currency(val.TotalValue, format.CurrencyPlaces), show),
		Cash:         format.Mask(format.Currency(val.Cash, format.CurrencyPlaces), show),
		Invested:     format.Mask(format.Currency(val.Invested, format.CurrencyPlaces), show),
		Unrealized:   format.Mask(format.SignedCurrency(val.Unrealized, format.CurrencyPlaces), show),
		UnrealizedPc: format.Percent(val.UnrealizedPc),
		Holdings:     make([]HoldingView, 0, len(val.Lines)),
	}

	for _, line := range val.Lines {
		view.Holdings = append(view.Holdings, HoldingView{
			Symbol:       line.Holding.Symbol,
			Name:         line.Holding.Name,
			Shares:       format.Mask(line.Holding.Shares.String(), show),
			AvgPrice:     format.Currency(line.Holding.AvgPrice, format.CurrencyPlaces),
			Price:        format.Currency(line.Price, format.CurrencyPlaces),
			MarketValue:  format.Mask(format.Currency(line.MarketValue, format.CurrencyPlaces), show),
			Unrealized:   format.Mask(format.SignedCurrency(line.Unrealized, format.CurrencyPlaces), show),
			UnrealizedPc: format.Percent(line.UnrealizedPc),
			Allocation:   format.Percent(line.Allocation),
		})
	}

	return view
}

type MoversView struct {
	Gainers []format.QuoteView `json:"gainers"`
	Losers  []format.QuoteView `json:"losers"`
}

func moversView(r market.Ranking) MoversView {
	views := func(quotes []entity.Quote) []format.QuoteView {
		out := make([]format.QuoteView, 0, len(quotes))
		for _, q := range quotes {
			out = append(out, format.Quote(q))
		}
		return out
	}
	return MoversView{Gainers: views(r.Gainers), Losers: views(r.Losers)}
}

type LevelView struct {
	Price    string `json:"price"`
	Quantity string `json:"quantity"`
}

type TradeView struct {
	Time     string `json:"time"`
	Price    string `json:"price"`
	Quantity string `json:"quantity"`
	Side     string `json:"side"`
}

type BookView struct {
	Symbol string      `json:"symbol"`
	Price  string      `json:"price"`
	Spread string      `json:"spread"`
	Bids   []LevelView `json:"bids"`
	Asks   []LevelView `json:"asks"`
	Trades []TradeView `json:"trades"`
}

func bookView(q entity.Quote, book market.Book, trades []market.Trade) BookView {
	levels := func(in []market.Level) []LevelView {
		out := make([]LevelView, 0, len(in))
		for _, l := range in {
			out = append(out, LevelView{
				Price:    format.Price(l.Price, q.Precision),
				Quantity: format.Price(l.Quantity, 0),
			})
		}
		return out
	}

	view := BookView{
		Symbol: q.Symbol,
		Price:  format.Price(q.Value, q.Precision),
		Spread: format.Price(book.Spread, q.Precision),
		Bids:   levels(book.Bids),
		Asks:   levels(book.Asks),
		Trades: make([]TradeView, 0, len(trades)),
	}
	for _, t := range trades {
		view.Trades = append(view.Trades, TradeView{
			Time:     t.Time.Format(time.TimeOnly),
			Price:    format.Price(t.Price, q.Precision),
			Quantity: format.Price(t.Quantity, 0),
			Side:     string(t.Side),
		})
	}
	return view
}
