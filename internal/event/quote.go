package event

import "github.com/zamyatin-zkex/quoter/internal/entity"

// QuoteUpdated is emitted by a feed after every step.
type QuoteUpdated struct {
	entity.Quote
}

// QuoteReceived is a quote read back from the bus topic.
type QuoteReceived struct {
	entity.Quote

	// offset in partition 0, the topic has a single partition
	Offset int64
}

type FeedStarted struct {
	Symbol  string
	Profile string
}

type FeedStopped struct {
	Symbol string
	Ticks  int64
	Reason string
}

type BoardStats struct {
	Feeds  int
	Active int
	Failed int
	Ticks  int64
}
