package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/IBM/sarama"
	"github.com/zamyatin-zkex/quoter/internal/entity"
	"github.com/zamyatin-zkex/quoter/internal/event"
	"github.com/zamyatin-zkex/quoter/pkg/ebus"
)

var _ sarama.ConsumerGroupHandler = Handler{}

type Handler struct {
	topic string
	eBus  *ebus.EBus
}

func (h Handler) Setup(session sarama.ConsumerGroupSession) error {
	return nil
}

func (h Handler) Cleanup(session sarama.ConsumerGroupSession) error {
	return nil
}

// ConsumeClaim marks a message once its quote has been emitted. A message
// that fails to decode is marked too, it would fail the same way again.
func (h Handler) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for {
		select {
		case msg, ok := <-claim.Messages():
			if !ok {
				return nil
			}

			err := h.handle(session.Context(), msg)
			switch {
			case err == nil, errors.Is(err, errDecode):
				session.MarkMessage(msg, "")
			case errors.Is(err, context.Canceled):
				return nil
			default:
				return fmt.Errorf("claim handle: %w", err)
			}

		case <-session.Context().Done():
			return nil
		}
	}
}

func (h Handler) topics() []string {
	return []string{h.topic}
}

var errDecode = errors.New("decode quote")

func (h Handler) handle(ctx context.Context, message *sarama.ConsumerMessage) error {
	quote := entity.Quote{}
	if err := json.Unmarshal(message.Value, &quote); err != nil {
		return fmt.Errorf("%w at %d: %w", errDecode, message.Offset, err)
	}

	return ebus.Quiet(h.eBus.Emit(ctx, event.QuoteReceived{
		Quote:  quote,
		Offset: message.Offset,
	}))
}
