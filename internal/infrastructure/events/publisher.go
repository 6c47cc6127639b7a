package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hilthontt/embermud/internal/domain"
	"github.com/hilthontt/embermud/internal/infrastructure/contracts"
	"github.com/hilthontt/embermud/internal/infrastructure/logging"
	"github.com/hilthontt/embermud/internal/infrastructure/metrics"
	amqp "github.com/rabbitmq/amqp091-go"
)

// BrokerPublisher is the slice of the broker the publisher needs.
// *messaging.RabbitMQ satisfies it.
type BrokerPublisher interface {
	Publish(ctx context.Context, routingKey string, msg amqp.Publishing) error
}

// GameEventPublisher emits game events on the topic exchange. Transport
// failures degrade to a warning log: a messaging outage must never abort the
// domain action that triggered the publish.
type GameEventPublisher struct {
	broker BrokerPublisher
	logger logging.Logger
}

func NewGameEventPublisher(broker BrokerPublisher, logger logging.Logger) *GameEventPublisher {
	return &GameEventPublisher{
		broker: broker,
		logger: logger,
	}
}

// Publish serializes the event, computes its routing key and hands it to the
// exchange. The only error returned is a serialization failure, which is a
// programming error in the event type, not an operational condition.
func (p *GameEventPublisher) Publish(ctx context.Context, ev domain.GameEvent) error {
	meta := ev.Meta()

	body, err := json.Marshal(ev)
	if err != nil {
		p.logger.Error(logging.RabbitMQ, logging.Serialize, "failed to serialize event", map[logging.ExtraKey]any{
			logging.EventVariant: meta.Variant,
			logging.ErrorMessage: err.Error(),
		})
		return fmt.Errorf("failed to serialize %s event: %w", meta.Variant, err)
	}

	key := meta.RoutingKey()
	msg := contracts.NewPublishing(meta.Variant, meta.EventID, meta.OccurredAt, body)

	if err := p.broker.Publish(ctx, key, msg); err != nil {
		metrics.PublishFailures.Inc()
		p.logger.Warn(logging.RabbitMQ, logging.Publish, "publish failed, event dropped", map[logging.ExtraKey]any{
			logging.RoutingKey:   key,
			logging.EventVariant: meta.Variant,
			logging.ErrorMessage: err.Error(),
		})
		return nil
	}

	metrics.EventsPublished.WithLabelValues(string(meta.Category)).Inc()
	return nil
}

// PublishBatch publishes the events in input order. A failure on one event
// is logged and does not abort the rest of the batch.
func (p *GameEventPublisher) PublishBatch(ctx context.Context, events []domain.GameEvent) {
	for _, ev := range events {
		if err := p.Publish(ctx, ev); err != nil {
			// already logged; keep going
			continue
		}
	}
}
