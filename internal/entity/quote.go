package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type QuotePoint struct {
	Time  time.Time       `json:"time"`
	Value decimal.Decimal `json:"value"`
}

// Quote is a point-in-time snapshot of a feed, safe to share.
type Quote struct {
	ID            uuid.UUID       `json:"id"`
	Symbol        string          `json:"symbol"`
	Name          string          `json:"name"`
	Kind          Kind            `json:"kind"`
	Precision     int32           `json:"precision"`
	Value         decimal.Decimal `json:"value"`
	ChangePercent decimal.Decimal `json:"change_percent"`
	ChangeValue   decimal.Decimal `json:"change_value"`
	Window        []QuotePoint    `json:"window"`
	Seq           int64           `json:"seq"`
	Time          time.Time       `json:"time"`
}
