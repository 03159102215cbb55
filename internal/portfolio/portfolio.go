package portfolio

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/zamyatin-zkex/quoter/internal/entity"
)

var ErrNoPrice = errors.New("no price for holding")

var hundred = decimal.NewFromInt(100)

const moneyPlaces = 2

type Line struct {
	Holding      entity.Holding
	Price        decimal.Decimal
	MarketValue  decimal.Decimal
	Cost         decimal.Decimal
	Unrealized   decimal.Decimal
	UnrealizedPc decimal.Decimal
	Allocation   decimal.Decimal
}

type Valuation struct {
	Lines        []Line
	Cash         decimal.Decimal
	Invested     decimal.Decimal
	MarketValue  decimal.Decimal
	TotalValue   decimal.Decimal
	Unrealized   decimal.Decimal
	UnrealizedPc decimal.Decimal
}

// Value marks holdings to the given prices. Money amounts are rounded per
// line and totals are sums of the rounded lines.
func Value(holdings []entity.Holding, prices map[string]decimal.Decimal, cash decimal.Decimal) (Valuation, error) {
	val := Valuation{
		Lines: make([]Line, 0, len(holdings)),
		Cash:  cash.Round(moneyPlaces),
	}

	for _, h := range holdings {
		price, ok := prices[h.Symbol]
		if !ok {
			return Valuation{}, fmt.Errorf("%w: %s", ErrNoPrice, h.Symbol)
		}

		line := Line{
			Holding:     h,
			Price:       price,
			MarketValue: h.Shares.Mul(price).Round(moneyPlaces),
			Cost:        h.Shares.Mul(h.AvgPrice).Round(moneyPlaces),
		}
		line.Unrealized = line.MarketValue.Sub(line.Cost)
		line.UnrealizedPc = percent(line.Unrealized, line.Cost)

		val.Invested = val.Invested.Add(line.Cost)
		val.MarketValue = val.MarketValue.Add(line.MarketValue)
		val.Unrealized = val.Unrealized.Add(line.Unrealized)
		val.Lines = append(val.Lines, line)
	}

	val.TotalValue = val.MarketValue.Add(val.Cash)
	val.UnrealizedPc = percent(val.Unrealized, val.Invested)
	for i := range val.Lines {
		val.Lines[i].Allocation = percent(val.Lines[i].MarketValue, val.TotalValue)
	}

	return val, nil
}

func percent(part, whole decimal.Decimal) decimal.Decimal {
	if whole.IsZero() {
		return decimal.Zero
	}
	return part.Div(whole).Mul(hundred).Round(2)
}
