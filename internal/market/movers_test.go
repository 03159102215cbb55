package market

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/zamyatin-zkex/quoter/internal/entity"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func q(symbol string, kind entity.Kind, change string) entity.Quote {
	return entity.Quote{Symbol: symbol, Kind: kind, ChangePercent: dec(change)}
}

func symbols(quotes []entity.Quote) []string {
	out := make([]string, len(quotes))
	for i, q := range quotes {
		out[i] = q.Symbol
	}
	return out
}

func TestMovers(t *testing.T) {
	quotes := []entity.Quote{
		q("META", entity.KindStock, "-4.12"),
		q("NVDA", entity.KindStock, "8.45"),
		q("AAPL", entity.KindStock, "3.87"),
		q("TSLA", entity.KindStock, "6.23"),
		q("PYPL", entity.KindStock, "-2.34"),
		q("UBER", entity.KindStock, "0"),
		q("BTC", entity.KindCrypto, "5.67"),
	}

	r := Movers(quotes, entity.KindStock, 2)
	assert.Equal(t, []string{"NVDA", "TSLA"}, symbols(r.Gainers))
	assert.Equal(t, []string{"META", "PYPL"}, symbols(r.Losers))

	all := Movers(quotes, "", 0)
	assert.Equal(t, []string{"NVDA", "TSLA", "BTC", "AAPL"}, symbols(all.Gainers))
	assert.Equal(t, []string{"META", "PYPL"}, symbols(all.Losers))
}

func TestMovers_Ties(t *testing.T) {
	quotes := []entity.Quote{
		q("MSFT", entity.KindStock, "1.5"),
		q("AMZN", entity.KindStock, "1.50"),
		q("GOOGL", entity.KindStock, "-1"),
		q("AAPL", entity.KindStock, "-1.0"),
	}

	r := Movers(quotes, entity.KindStock, 0)
	assert.Equal(t, []string{"AMZN", "MSFT"}, symbols(r.Gainers))
	assert.Equal(t, []string{"AAPL", "GOOGL"}, symbols(r.Losers))
}

func TestMovers_FewerThanN(t *testing.T) {
	quotes := []entity.Quote{q("ETH", entity.KindCrypto, "4.23")}

	r := Movers(quotes, entity.KindCrypto, 5)
	assert.Equal(t, []string{"ETH"}, symbols(r.Gainers))
	assert.Empty(t, r.Losers)

	r = Movers(nil, entity.KindForex, 3)
	assert.Empty(t, r.Gainers)
	assert.Empty(t, r.Losers)
}
