package quote

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/zamyatin-zkex/quoter/internal/entity"
	"github.com/zamyatin-zkex/quoter/pkg/ringbuf"
)

var hundred = decimal.NewFromInt(100)

// State is owned by exactly one feed. Step never mutates it in place.
type State struct {
	Instrument entity.Instrument
	Current    decimal.Decimal
	// LastChange is the running percent change, composed onto Current every step.
	LastChange decimal.Decimal
	Window     *ringbuf.Ring[entity.QuotePoint]
	Seq        int64
}

func (s State) Points() []entity.QuotePoint {
	if s.Window == nil {
		return nil
	}
	return s.Window.Slice()
}

func (s State) Last() entity.QuotePoint {
	return s.Window.GetN(0)
}

func (s State) Quote() entity.Quote {
	ins := s.Instrument
	last := s.Last()

	changeValue, changePercent := decimal.Zero, decimal.Zero
	if s.Window.Len() > 1 {
		prev := s.Window.GetN(1).Value
		changeValue = s.Current.Sub(prev)
		if prev.IsPositive() {
			changePercent = changeValue.Div(prev).Mul(hundred).Round(4)
		}
	}

	return entity.Quote{
		ID:            uuid.New(),
		Symbol:        ins.Symbol,
		Name:          ins.DisplayName,
		Kind:          ins.Kind,
		Precision:     ins.Precision,
		Value:         s.Current,
		ChangePercent: changePercent,
		ChangeValue:   changeValue,
		Window:        s.Points(),
		Seq:           s.Seq,
		Time:          last.Time,
	}
}
