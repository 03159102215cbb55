// Package order validates and prices order tickets. Nothing is executed.
package order

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/zamyatin-zkex/quoter/internal/entity"
)

var (
	ErrQuantityRequired  = errors.New("please enter quantity")
	ErrPriceRequired     = errors.New("please enter price")
	ErrStopPriceRequired = errors.New("please enter stop price")
	ErrUnknownType       = errors.New("unknown order type")
	ErrUnknownSide       = errors.New("unknown order side")
)

type Ticket struct {
	Symbol    string           `json:"symbol"`
	Side      entity.Side      `json:"side"`
	Type      entity.OrderType `json:"type"`
	Quantity  decimal.Decimal  `json:"quantity"`
	Price     decimal.Decimal  `json:"price"`
	StopPrice decimal.Decimal  `json:"stop_price"`
}

type Preview struct {
	ID      uuid.UUID       `json:"id"`
	Ticket  Ticket          `json:"ticket"`
	Price   decimal.Decimal `json:"price"`
	Value   decimal.Decimal `json:"value"`
	Message string          `json:"message"`
	Time    time.Time       `json:"time"`
}

func (t Ticket) Validate() error {
	switch t.Side {
	case entity.SideBuy, entity.SideSell:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownSide, t.Side)
	}

	switch t.Type {
	case entity.OrderMarket, entity.OrderLimit, entity.OrderStop, entity.OrderStopLimit:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownType, t.Type)
	}

	if !t.Quantity.IsPositive() {
		return ErrQuantityRequired
	}
	if t.Type != entity.OrderMarket && !t.Price.IsPositive() {
		return ErrPriceRequired
	}
	if (t.Type == entity.OrderStop || t.Type == entity.OrderStopLimit) && !t.StopPrice.IsPositive() {
		return ErrStopPriceRequired
	}

	return nil
}

// price is what the ticket is valued at: last for market orders, the limit otherwise.
func (t Ticket) price(last decimal.Decimal) decimal.Decimal {
	if t.Type == entity.OrderMarket {
		return last
	}
	return t.Price
}

// NewPreview values a ticket against the last traded price.
func NewPreview(t Ticket, last decimal.Decimal, now time.Time) (Preview, error) {
	if err := t.Validate(); err != nil {
		return Preview{}, err
	}

	price := t.price(last)
	return Preview{
		ID:      uuid.New(),
		Ticket:  t,
		Price:   price,
		Value:   t.Quantity.Mul(price).Round(2),
		Message: fmt.Sprintf("%s order placed for %s %s", strings.ToUpper(string(t.Side)), t.Quantity.String(), t.Symbol),
		Time:    now,
	}, nil
}
