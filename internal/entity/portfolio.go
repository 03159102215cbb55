package entity

import "github.com/shopspring/decimal"

type Holding struct {
	Symbol   string
	Name     string
	Shares   decimal.Decimal
	AvgPrice decimal.Decimal
}

type Side string

const (
	SideBuy  Side = "buy"
	SideSell Side = "sell"
)

type OrderType string

const (
	OrderMarket    OrderType = "market"
	OrderLimit     OrderType = "limit"
	OrderStop      OrderType = "stop"
	OrderStopLimit OrderType = "stop-limit"
)
