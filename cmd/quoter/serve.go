package main

import (
	"context"
	"fmt"

	"github.com/IBM/sarama"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"github.com/zamyatin-zkex/quoter/internal/catalog"
	"github.com/zamyatin-zkex/quoter/internal/event"
	"github.com/zamyatin-zkex/quoter/internal/repository"
	"github.com/zamyatin-zkex/quoter/internal/service/interrupter"
	"github.com/zamyatin-zkex/quoter/internal/service/watcher"
	"github.com/zamyatin-zkex/quoter/internal/service/web"
	"github.com/zamyatin-zkex/quoter/pkg/app"
	"github.com/zamyatin-zkex/quoter/pkg/ebus"
	"go.uber.org/zap"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the feed board and the web server",
		Long: `Run one feed per configured instrument and serve the quotes over
HTTP and websocket. Quotes are also published to Kafka and Redis when
KAFKA_BROKERS or REDIS_ADDR is set.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup()
			if err != nil {
				return err
			}
			defer logger.Sync()

			eBus := ebus.New()
			cat := catalog.Default()

			board, err := buildBoard(cat, boardOptions{symbols: cfg.Feed.Symbols, profile: cfg.Feed.Profile}, eBus, logger)
			if err != nil {
				return err
			}

			server := web.New(cfg.Web.Addr, cat, web.Account{Holdings: catalog.Holdings(), Cash: catalog.Cash()}, logger)
			watch := watcher.NewWatcher(eBus, logger).
				EmitEvery(cfg.Feed.Heartbeat, func(ctx context.Context) (any, error) {
					return board.Stats(), nil
				})

			eBus.
				Subscribe(event.FeedStarted{}, ebus.Typed(watcher.LogAny[event.FeedStarted](logger))).
				Subscribe(event.FeedStopped{}, ebus.Typed(watcher.LogAny[event.FeedStopped](logger))).
				Subscribe(event.BoardStats{}, ebus.Typed(watcher.LogAny[event.BoardStats](logger))).
				Subscribe(event.QuoteUpdated{}, ebus.Typed(server.UpdateQuote))

			if cfg.Kafka.Enabled() {
				prod, err := sarama.NewSyncProducer(cfg.Kafka.Brokers, cfg.Kafka.SaramaConfig())
				if err != nil {
					return fmt.Errorf("kafka producer: %w", err)
				}
				defer prod.Close()

				quotes := repository.NewQuotes(prod, cfg.Kafka.Topic)
				eBus.Subscribe(event.QuoteUpdated{}, ebus.Typed(sink("kafka", quotes.Publish, logger)))
			}

			if cfg.Redis.Enabled() {
				rdb := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr})
				defer rdb.Close()

				snapshots := repository.NewSnapshots(rdb, cfg.Redis.TTL)
				eBus.Subscribe(event.QuoteUpdated{}, ebus.Typed(sink("redis", snapshots.Publish, logger)))
			}

			logger.Info("serving",
				zap.String("addr", cfg.Web.Addr),
				zap.Int("feeds", board.Stats().Feeds),
				zap.Bool("kafka", cfg.Kafka.Enabled()),
				zap.Bool("redis", cfg.Redis.Enabled()),
			)

			err = app.NewApp(logger).
				WithService(board).
				WithService(server).
				WithService(watch).
				WithService(interrupter.Interrupter{}).
				Run(cmd.Context())

			return exit(err)
		},
	}
}

// sink keeps a failing publisher from stopping the listeners after it.
func sink(name string, publish func(context.Context, event.QuoteUpdated) error, logger *zap.Logger) func(context.Context, event.QuoteUpdated) error {
	return func(ctx context.Context, e event.QuoteUpdated) error {
		if err := publish(ctx, e); err != nil {
			logger.Warn("publish quote", zap.String("sink", name), zap.String("symbol", e.Symbol), zap.Error(err))
		}
		return nil
	}
}
