package format

import (
	"github.com/zamyatin-zkex/quoter/internal/entity"
)

// QuoteView is what a market card shows.
type QuoteView struct {
	Symbol      string    `json:"symbol"`
	Name        string    `json:"name"`
	Price       string    `json:"price"`
	Change      string    `json:"change"`
	ChangeValue string    `json:"change_value"`
	Positive    bool      `json:"is_positive"`
	Chart       []float64 `json:"chart"`
	Seq         int64     `json:"seq"`
}

func Quote(q entity.Quote) QuoteView {
	chart := make([]float64, len(q.Window))
	for i, p := range q.Window {
		chart[i] = p.Value.Round(q.Precision).InexactFloat64()
	}

	return QuoteView{
		Symbol:      q.Symbol,
		Name:        q.Name,
		Price:       Price(q.Value, q.Precision),
		Change:      Percent(q.ChangePercent),
		ChangeValue: Signed(q.ChangeValue, q.Precision),
		Positive:    !q.ChangePercent.Round(PercentPlaces).IsNegative(),
		Chart:       chart,
		Seq:         q.Seq,
	}
}
