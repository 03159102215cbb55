package entity

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

type Kind string

const (
	KindStock  Kind = "stocks"
	KindCrypto Kind = "crypto"
	KindForex  Kind = "forex"
	KindIndex  Kind = "index"
)

var ErrInvalidInstrument = errors.New("invalid instrument")

// Instrument is immutable reference data for a simulated asset.
type Instrument struct {
	Symbol      string
	DisplayName string
	Kind        Kind
	Currency    string
	BasePrice   decimal.Decimal
	Precision   int32
	Floor       decimal.Decimal
	// Ceiling is optional, zero means unbounded.
	Ceiling decimal.Decimal
}

func (i Instrument) Validate() error {
	switch {
	case i.Symbol == "":
		return fmt.Errorf("%w: empty symbol", ErrInvalidInstrument)
	case !i.BasePrice.IsPositive():
		return fmt.Errorf("%w: %s base price must be positive, got %s", ErrInvalidInstrument, i.Symbol, i.BasePrice)
	case i.Precision < 0:
		return fmt.Errorf("%w: %s negative precision %d", ErrInvalidInstrument, i.Symbol, i.Precision)
	case i.Floor.IsNegative():
		return fmt.Errorf("%w: %s negative floor %s", ErrInvalidInstrument, i.Symbol, i.Floor)
	case i.Floor.GreaterThan(i.BasePrice):
		return fmt.Errorf("%w: %s floor %s above base price %s", ErrInvalidInstrument, i.Symbol, i.Floor, i.BasePrice)
	case i.Bounded() && i.Ceiling.LessThan(i.BasePrice):
		return fmt.Errorf("%w: %s ceiling %s below base price %s", ErrInvalidInstrument, i.Symbol, i.Ceiling, i.BasePrice)
	}
	return nil
}

func (i Instrument) Bounded() bool {
	return i.Ceiling.IsPositive()
}
