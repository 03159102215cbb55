package web

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
	"github.com/zamyatin-zkex/quoter/internal/catalog"
	"github.com/zamyatin-zkex/quoter/internal/entity"
	"github.com/zamyatin-zkex/quoter/internal/event"
	"github.com/zamyatin-zkex/quoter/internal/format"
	"go.uber.org/zap"
)

// Account is the portfolio shown on /portfolio.
type Account struct {
	Holdings []entity.Holding
	Cash     decimal.Decimal
}

type Server struct {
	web     *http.Server
	keeper  *keeper
	state   *state
	catalog *catalog.Catalog
	account Account
	logger  *zap.Logger
	now     func() time.Time
}

func New(addr string, cat *catalog.Catalog, account Account, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}

	serv := &Server{
		web: &http.Server{
			Addr:              addr,
			ReadHeaderTimeout: 5 * time.Second,
		},
		keeper:  newKeeper(logger),
		state:   newState(),
		catalog: cat,
		account: account,
		logger:  logger,
		now:     time.Now,
	}
	serv.keeper.subscribed = serv.sendSnapshot
	serv.web.Handler = serv.router()
	return serv
}

func (s *Server) Run(ctx context.Context) error {
	lis, err := net.Listen("tcp", s.web.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.web.Addr, err)
	}
	return s.Serve(ctx, lis)
}

func (s *Server) Serve(ctx context.Context, lis net.Listener) error {
	closed := make(chan error, 1)

	go func() {
		closed <- s.web.Serve(lis)
	}()
	s.logger.Info("web started", zap.String("addr", lis.Addr().String()))

	select {
	case err := <-closed:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()

		// hijacked websocket conns are not tracked by Shutdown
		s.keeper.closeAll()
		if err := s.web.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Warn("web shutdown", zap.Error(err))
		}
		return ctx.Err()
	}
}

// UpdateQuote caches a locally generated quote and pushes it to subscribers.
func (s *Server) UpdateQuote(ctx context.Context, e event.QuoteUpdated) error {
	s.publish(e.Quote)
	return nil
}

// Relay does the same for a quote read back from the topic.
func (s *Server) Relay(ctx context.Context, e event.QuoteReceived) error {
	if cached, ok := s.state.get(e.Symbol); ok && cached.ID == e.ID {
		return nil
	}
	s.publish(e.Quote)
	return nil
}

func (s *Server) publish(q entity.Quote) {
	s.state.update(q)
	s.keeper.broadcast(q.Symbol, format.Quote(q))
}

func (s *Server) sendSnapshot(c *client, symbol string) {
	q, ok := s.state.get(symbol)
	if !ok {
		return
	}
	if err := c.write(format.Quote(q)); err != nil {
		s.logger.Debug("snapshot", zap.String("symbol", symbol), zap.Error(err))
	}
}
