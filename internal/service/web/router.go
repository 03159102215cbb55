package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/websocket"
	"github.com/zamyatin-zkex/quoter/internal/entity"
	"github.com/zamyatin-zkex/quoter/internal/format"
	"github.com/zamyatin-zkex/quoter/internal/market"
	"github.com/zamyatin-zkex/quoter/internal/order"
	"github.com/zamyatin-zkex/quoter/internal/portfolio"
	"github.com/zamyatin-zkex/quoter/internal/quote"
	"go.uber.org/zap"
)

func (s *Server) router() http.Handler {
	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool { return true },
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /ws", func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			// upgrader already replied
			s.logger.Debug("upgrade", zap.Error(err))
			return
		}

		c := s.keeper.addConn(conn)
		go s.keeper.keep(c)
	})

	mux.HandleFunc("GET /instruments", func(w http.ResponseWriter, r *http.Request) {
		instruments := s.catalog.All()
		if q := r.URL.Query().Get("q"); q != "" {
			instruments = s.catalog.Filter(q)
		}
		if kind := r.URL.Query().Get("kind"); kind != "" {
			instruments = byKind(instruments, entity.Kind(strings.ToLower(kind)))
		}

		views := make([]InstrumentView, 0, len(instruments))
		for _, ins := range instruments {
			views = append(views, instrumentView(ins))
		}
		s.writeJSON(w, http.StatusOK, views)
	})

	mux.HandleFunc("GET /quotes", func(w http.ResponseWriter, r *http.Request) {
		symbol := strings.ToUpper(strings.TrimSpace(r.URL.Query().Get("symbol")))
		if symbol == "" {
			quotes := s.state.all()
			views := make([]format.QuoteView, 0, len(quotes))
			for _, q := range quotes {
				views = append(views, format.Quote(q))
			}
			s.writeJSON(w, http.StatusOK, views)
			return
		}

		q, ok := s.state.get(symbol)
		if !ok {
			s.writeError(w, http.StatusNotFound, fmt.Errorf("no quote for %s", symbol))
			return
		}
		s.writeJSON(w, http.StatusOK, format.Quote(q))
	})

	mux.HandleFunc("GET /movers", func(w http.ResponseWriter, r *http.Request) {
		n, err := intParam(r, "n", defaultMovers)
		if err != nil {
			s.writeError(w, http.StatusBadRequest, err)
			return
		}

		kind := entity.Kind(strings.ToLower(r.URL.Query().Get("kind")))
		s.writeJSON(w, http.StatusOK, moversView(market.Movers(s.state.all(), kind, n)))
	})

	mux.HandleFunc("GET /depth", func(w http.ResponseWriter, r *http.Request) {
		levels, err := intParam(r, "levels", defaultLevels)
		if err != nil || levels > maxLevels {
			s.writeError(w, http.StatusBadRequest, fmt.Errorf("levels must be in [1, %d]", maxLevels))
			return
		}

		symbol := strings.ToUpper(strings.TrimSpace(r.URL.Query().Get("symbol")))
		q, ok := s.state.get(symbol)
		if !ok {
			s.writeError(w, http.StatusNotFound, fmt.Errorf("no quote for %q", symbol))
			return
		}

		// same tick, same book
		rnd := quote.NewRand(q.Seq)
		s.writeJSON(w, http.StatusOK, bookView(q, market.Depth(q, levels, rnd), market.Trades(q, defaultTrades, rnd)))
	})

	mux.HandleFunc("GET /portfolio", func(w http.ResponseWriter, r *http.Request) {
		val, err := portfolio.Value(s.account.Holdings, s.state.prices(), s.account.Cash)
		if errors.Is(err, portfolio.ErrNoPrice) {
			s.writeError(w, http.StatusServiceUnavailable, err)
			return
		}
		if err != nil {
			s.writeError(w, http.StatusInternalServerError, err)
			return
		}

		show := r.URL.Query().Get("hide") == ""
		s.writeJSON(w, http.StatusOK, portfolioView(val, show))
	})

	mux.HandleFunc("POST /orders/preview", func(w http.ResponseWriter, r *http.Request) {
		var ticket order.Ticket
		if err := json.NewDecoder(r.Body).Decode(&ticket); err != nil {
			s.writeError(w, http.StatusBadRequest, fmt.Errorf("decode ticket: %w", err))
			return
		}

		ins, ok := s.catalog.Lookup(ticket.Symbol)
		if !ok {
			s.writeError(w, http.StatusNotFound, fmt.Errorf("unknown symbol %q", ticket.Symbol))
			return
		}
		ticket.Symbol = ins.Symbol

		last, ok := s.state.get(ins.Symbol)
		if !ok && ticket.Type == entity.OrderMarket {
			s.writeError(w, http.StatusServiceUnavailable, fmt.Errorf("no quote for %s", ins.Symbol))
			return
		}

		preview, err := order.NewPreview(ticket, last.Value, s.now())
		if err != nil {
			s.writeError(w, http.StatusBadRequest, err)
			return
		}
		s.logger.Info("order preview",
			zap.String("symbol", ticket.Symbol),
			zap.String("side", string(ticket.Side)),
			zap.Stringer("value", preview.Value),
		)
		s.writeJSON(w, http.StatusOK, preview)
	})

	return mux
}

const (
	defaultMovers = 3
	defaultLevels = 5
	maxLevels     = 50
	defaultTrades = 5
)

// intParam reads a positive integer query parameter, def when absent.
func intParam(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%s must be a positive integer, got %q", name, raw)
	}
	return n, nil
}

func byKind(instruments []entity.Instrument, kind entity.Kind) []entity.Instrument {
	out := make([]entity.Instrument, 0, len(instruments))
	for _, ins := range instruments {
		if ins.Kind == kind {
			out = append(out, ins)
		}
	}
	return out
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	js, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		s.logger.Error("marshal json", zap.Error(err))
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(js)
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	s.writeJSON(w, status, map[string]string{"error": err.Error()})
}
