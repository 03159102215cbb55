package catalog

import (
	"github.com/shopspring/decimal"
	"github.com/zamyatin-zkex/quoter/internal/entity"
)

func Holdings() []entity.Holding {
	h := func(symbol, name, shares, avg string) entity.Holding {
		return entity.Holding{
			Symbol:   symbol,
			Name:     name,
			Shares:   decimal.RequireFromString(shares),
			AvgPrice: decimal.RequireFromString(avg),
		}
	}

	return []entity.Holding{
		h("AAPL", "Apple Inc.", "50", "180.25"),
		h("MSFT", "Microsoft Corp", "25", "415.30"),
		h("GOOGL", "Alphabet Inc", "30", "165.80"),
		h("TSLA", "Tesla Inc", "40", "235.60"),
		h("BTC", "Bitcoin", "0.25", "45000"),
		h("ETH", "Ethereum", "5", "2800"),
	}
}

// Cash is the uninvested balance of the mock account.
func Cash() decimal.Decimal {
	return decimal.RequireFromString("15420.50")
}
