package web

import (
	"sync"

	"github.com/shopspring/decimal"
	"github.com/zamyatin-zkex/quoter/internal/entity"
)

// state caches the latest quote per symbol, in order of first arrival.
type state struct {
	mx     sync.RWMutex
	quotes map[string]entity.Quote
	order  []string
}

func newState() *state {
	return &state{
		quotes: make(map[string]entity.Quote),
	}
}

func (s *state) update(q entity.Quote) {
	s.mx.Lock()
	defer s.mx.Unlock()

	if _, ok := s.quotes[q.Symbol]; !ok {
		s.order = append(s.order, q.Symbol)
	}
	s.quotes[q.Symbol] = q
}

func (s *state) get(symbol string) (entity.Quote, bool) {
	s.mx.RLock()
	defer s.mx.RUnlock()

	q, ok := s.quotes[symbol]
	return q, ok
}

func (s *state) all() []entity.Quote {
	s.mx.RLock()
	defer s.mx.RUnlock()

	out := make([]entity.Quote, 0, len(s.order))
	for _, symbol := range s.order {
		out = append(out, s.quotes[symbol])
	}
	return out
}

func (s *state) prices() map[string]decimal.Decimal {
	s.mx.RLock()
	defer s.mx.RUnlock()

	prices := make(map[string]decimal.Decimal, len(s.quotes))
	for symbol, q := range s.quotes {
		prices[symbol] = q.Value
	}
	return prices
}
