package consumer

import (
	"context"
	"fmt"

	"github.com/IBM/sarama"
	"github.com/zamyatin-zkex/quoter/pkg/ebus"
	"go.uber.org/zap"
)

// Consumer reads quotes published by another node and re-emits them as
// event.QuoteReceived.
type Consumer struct {
	consumerGroup sarama.ConsumerGroup
	handler       Handler
	logger        *zap.Logger
}

func NewConsumer(client sarama.Client, topic string, group string, eBus *ebus.EBus, logger *zap.Logger) (*Consumer, error) {
	cons, err := sarama.NewConsumerGroupFromClient(group, client)
	if err != nil {
		return nil, fmt.Errorf("create consumer group: %w", err)
	}

	return &Consumer{
		consumerGroup: cons,
		handler: Handler{
			topic: topic,
			eBus:  eBus,
		},
		logger: logger,
	}, nil
}

func (c *Consumer) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	defer func() {
		if err := c.consumerGroup.Close(); err != nil {
			c.logger.Warn("close consumer group", zap.Error(err))
		}
	}()

	errs := make(chan error, 1)

	go func() {
		for {
			if err := c.consumerGroup.Consume(ctx, c.handler.topics(), c.handler); err != nil {
				errs <- err
				return
			}

			if ctx.Err() != nil {
				errs <- ctx.Err()
				return
			}
			c.logger.Info("consumer group rebalanced", zap.String("topic", c.handler.topic))
		}
	}()

	select {
	case err := <-errs:
		return fmt.Errorf("consumer error: %w", err)
	case err := <-c.consumerGroup.Errors():
		return fmt.Errorf("consumerGroup error: %w", err)
	case <-ctx.Done():
		return fmt.Errorf("consumer: %w", ctx.Err())
	}
}
