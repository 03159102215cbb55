package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/IBM/sarama"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"github.com/zamyatin-zkex/quoter/config"
	"github.com/zamyatin-zkex/quoter/internal/catalog"
	"github.com/zamyatin-zkex/quoter/internal/entity"
	"github.com/zamyatin-zkex/quoter/internal/event"
	"github.com/zamyatin-zkex/quoter/internal/repository"
	"github.com/zamyatin-zkex/quoter/internal/service/consumer"
	"github.com/zamyatin-zkex/quoter/internal/service/interrupter"
	"github.com/zamyatin-zkex/quoter/internal/service/web"
	"github.com/zamyatin-zkex/quoter/pkg/app"
	"github.com/zamyatin-zkex/quoter/pkg/ebus"
	"go.uber.org/zap"
)

const warmupTimeout = 10 * time.Second

func relayCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "relay",
		Short: "Serve quotes generated by another node",
		Long: `Consume the quotes topic and serve it over HTTP and websocket without
running any feed. The cache is warmed from Redis when REDIS_ADDR is set,
from the topic otherwise.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup()
			if err != nil {
				return err
			}
			defer logger.Sync()

			if !cfg.Kafka.Enabled() {
				return errors.New("relay needs KAFKA_BROKERS")
			}

			eBus := ebus.New()
			cat := catalog.Default()

			kafkaCl, err := sarama.NewClient(cfg.Kafka.Brokers, cfg.Kafka.SaramaConfig())
			if err != nil {
				return fmt.Errorf("kafka client: %w", err)
			}
			defer kafkaCl.Close()

			server := web.New(cfg.Web.Addr, cat, web.Account{Holdings: catalog.Holdings(), Cash: catalog.Cash()}, logger)
			cons, err := consumer.NewConsumer(kafkaCl, cfg.Kafka.Topic, cfg.Kafka.Group, eBus, logger)
			if err != nil {
				return err
			}

			eBus.Subscribe(event.QuoteReceived{}, ebus.Typed(server.Relay))

			warm, err := warmup(cmd.Context(), cfg.Redis, cfg.Kafka.Topic, kafkaCl, cat)
			if err != nil {
				// the live topic fills the cache anyway
				logger.Warn("warmup", zap.Error(err))
			}
			for _, q := range warm {
				_ = server.Relay(cmd.Context(), event.QuoteReceived{Quote: q, Offset: -1})
			}
			logger.Info("relaying", zap.String("addr", cfg.Web.Addr), zap.Int("warm", len(warm)))

			err = app.NewApp(logger).
				WithService(cons).
				WithService(server).
				WithService(interrupter.Interrupter{}).
				Run(cmd.Context())

			return exit(err)
		},
	}
}

func warmup(ctx context.Context, rc config.Redis, topic string, kafkaCl sarama.Client, cat *catalog.Catalog) ([]entity.Quote, error) {
	ctx, cancel := context.WithTimeout(ctx, warmupTimeout)
	defer cancel()

	if rc.Enabled() {
		rdb := redis.NewClient(&redis.Options{Addr: rc.Addr})
		defer rdb.Close()

		all := cat.All()
		symbols := make([]string, len(all))
		for i, ins := range all {
			symbols[i] = ins.Symbol
		}
		return repository.NewSnapshots(rdb, rc.TTL).Get(ctx, symbols...)
	}

	cons, err := sarama.NewConsumerFromClient(kafkaCl)
	if err != nil {
		return nil, fmt.Errorf("new consumer: %w", err)
	}
	defer cons.Close()

	last, _, err := repository.Last(ctx, kafkaCl, cons, topic)
	if err != nil {
		return nil, err
	}

	quotes := make([]entity.Quote, 0, len(last))
	for _, ins := range cat.All() {
		if q, ok := last[ins.Symbol]; ok {
			quotes = append(quotes, q)
		}
	}
	return quotes, nil
}
