package market

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/zamyatin-zkex/quoter/internal/entity"
	"github.com/zamyatin-zkex/quoter/internal/quote"
)

var basisPoint = decimal.New(1, -4)

type Level struct {
	Price    decimal.Decimal `json:"price"`
	Quantity decimal.Decimal `json:"quantity"`
}

type Trade struct {
	Time     time.Time       `json:"time"`
	Price    decimal.Decimal `json:"price"`
	Quantity decimal.Decimal `json:"quantity"`
	Side     entity.Side     `json:"side"`
}

// Book is a simulated order book around the last price. Nothing rests in it.
type Book struct {
	Symbol string          `json:"symbol"`
	Bids   []Level         `json:"bids"`
	Asks   []Level         `json:"asks"`
	Spread decimal.Decimal `json:"spread"`
}

// Tick is the smallest price step at the instrument precision.
func Tick(precision int32) decimal.Decimal {
	return decimal.New(1, -precision)
}

// Depth builds levels on each side spaced one basis point of the price
// apart, at least one tick. Bids that would reach zero are left out.
func Depth(q entity.Quote, levels int, rnd quote.Rand) Book {
	tick := Tick(q.Precision)
	step := q.Value.Mul(basisPoint).Round(q.Precision)
	if step.LessThan(tick) {
		step = tick
	}

	bid := q.Value.Sub(step).RoundFloor(q.Precision)
	ask := q.Value.Add(step).RoundCeil(q.Precision)

	book := Book{
		Symbol: q.Symbol,
		Bids:   make([]Level, 0, levels),
		Asks:   make([]Level, 0, levels),
		Spread: ask.Sub(bid),
	}
	for i := 0; i < levels; i++ {
		offset := step.Mul(decimal.NewFromInt(int64(i)))
		if p := bid.Sub(offset); p.IsPositive() {
			book.Bids = append(book.Bids, Level{Price: p, Quantity: lot(rnd, 100, 5, 50)})
		}
		book.Asks = append(book.Asks, Level{Price: ask.Add(offset), Quantity: lot(rnd, 100, 5, 50)})
	}

	return book
}

// Trades turns the newest n window moves into prints, newest first. An
// uptick prints as a buy, a downtick or flat move as a sell.
func Trades(q entity.Quote, n int, rnd quote.Rand) []Trade {
	trades := make([]Trade, 0, n)
	for i := len(q.Window) - 1; i > 0 && len(trades) < n; i-- {
		cur, prev := q.Window[i], q.Window[i-1]
		side := entity.SideSell
		if cur.Value.GreaterThan(prev.Value) {
			side = entity.SideBuy
		}
		trades = append(trades, Trade{
			Time:     cur.Time,
			Price:    cur.Value.Round(q.Precision),
			Quantity: lot(rnd, 25, 1, 13),
			Side:     side,
		})
	}
	return trades
}

// lot draws unit times a count in [lo, hi).
func lot(rnd quote.Rand, unit, lo, hi int64) decimal.Decimal {
	n := lo + int64(rnd.Float64()*float64(hi-lo))
	return decimal.NewFromInt(n * unit)
}
