package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/IBM/sarama"
	"github.com/zamyatin-zkex/quoter/internal/entity"
	"github.com/zamyatin-zkex/quoter/internal/event"
)

var ErrPartitionClosed = errors.New("partition consumer closed")

// OffsetGetter is the part of sarama.Client Last needs.
type OffsetGetter interface {
	GetOffset(topic string, partitionID int32, time int64) (int64, error)
}

// Quotes publishes quotes to a topic keyed by symbol.
type Quotes struct {
	producer sarama.SyncProducer
	topic    string
}

func NewQuotes(producer sarama.SyncProducer, topic string) *Quotes {
	return &Quotes{producer: producer, topic: topic}
}

func (q *Quotes) Store(ctx context.Context, quote entity.Quote) error {
	js, err := json.Marshal(quote)
	if err != nil {
		return fmt.Errorf("json marshal quote: %w", err)
	}

	_, _, err = q.producer.SendMessage(&sarama.ProducerMessage{
		Topic: q.topic,
		Key:   sarama.StringEncoder(quote.Symbol),
		Value: sarama.ByteEncoder(js),
	})
	if err != nil {
		return fmt.Errorf("send quote to kafka: %w", err)
	}

	return nil
}

func (q *Quotes) Publish(ctx context.Context, e event.QuoteUpdated) error {
	return q.Store(ctx, e.Quote)
}

// Last replays the topic and returns the newest quote per symbol with the
// offset of the last message read. The topic must have a single partition,
// only partition 0 is read.
func Last(ctx context.Context, offsets OffsetGetter, consumer sarama.Consumer, topic string) (map[string]entity.Quote, int64, error) {
	quotes := make(map[string]entity.Quote)

	next, err := offsets.GetOffset(topic, 0, sarama.OffsetNewest)
	if err != nil {
		return quotes, 0, fmt.Errorf("get offset: %w", err)
	}
	if next <= 0 {
		// empty topic
		return quotes, 0, nil
	}

	cp, err := consumer.ConsumePartition(topic, 0, sarama.OffsetOldest)
	if err != nil {
		return quotes, 0, fmt.Errorf("consume partition: %w", err)
	}
	defer cp.Close()

	last := next - 1
	for {
		select {
		case <-ctx.Done():
			return quotes, 0, ctx.Err()
		case msg, ok := <-cp.Messages():
			if !ok {
				return quotes, 0, fmt.Errorf("%w before offset %d", ErrPartitionClosed, last)
			}
			quote := entity.Quote{}
			if err := json.Unmarshal(msg.Value, &quote); err != nil {
				return quotes, 0, fmt.Errorf("unmarshal quote at %d: %w", msg.Offset, err)
			}
			quotes[quote.Symbol] = quote

			if msg.Offset >= last {
				return quotes, msg.Offset, nil
			}
		}
	}
}
