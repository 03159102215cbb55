// Package market derives dashboard views from feed snapshots.
package market

import (
	"sort"

	"github.com/zamyatin-zkex/quoter/internal/entity"
)

type Ranking struct {
	Gainers []entity.Quote
	Losers  []entity.Quote
}

// Movers ranks quotes of one kind (any kind when empty) by realized change.
// Gainers go from the largest rise down, losers from the largest drop up,
// flat quotes are in neither. Ties keep symbol order. n <= 0 keeps all.
func Movers(quotes []entity.Quote, kind entity.Kind, n int) Ranking {
	gainers := make([]entity.Quote, 0)
	losers := make([]entity.Quote, 0)
	for _, q := range quotes {
		if kind != "" && q.Kind != kind {
			continue
		}
		switch q.ChangePercent.Sign() {
		case 1:
			gainers = append(gainers, q)
		case -1:
			losers = append(losers, q)
		}
	}

	sort.SliceStable(gainers, func(i, j int) bool {
		if c := gainers[i].ChangePercent.Cmp(gainers[j].ChangePercent); c != 0 {
			return c > 0
		}
		return gainers[i].Symbol < gainers[j].Symbol
	})
	sort.SliceStable(losers, func(i, j int) bool {
		if c := losers[i].ChangePercent.Cmp(losers[j].ChangePercent); c != 0 {
			return c < 0
		}
		return losers[i].Symbol < losers[j].Symbol
	})

	return Ranking{
		Gainers: top(gainers, n),
		Losers:  top(losers, n),
	}
}

func top(quotes []entity.Quote, n int) []entity.Quote {
	if n > 0 && len(quotes) > n {
		return quotes[:n]
	}
	return quotes
}
