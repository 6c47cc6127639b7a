package contracts

import (
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const ContentTypeJSON = "application/json"

// NewPublishing wraps a serialized event body in the wire envelope: the
// variant tag rides in the Type property, identity in MessageId/Timestamp,
// and DeliveryMode is persistent so in-flight messages survive a broker
// restart. Consumers select their decoder by Type alone.
func NewPublishing(variant, eventID string, occurredAt time.Time, body []byte) amqp.Publishing {
	return amqp.Publishing{
		ContentType:  ContentTypeJSON,
		DeliveryMode: amqp.Persistent,
		Type:         variant,
		MessageId:    eventID,
		Timestamp:    occurredAt,
		Body:         body,
	}
}
