package events

import (
	"context"
	"errors"
	"testing"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hilthontt/embermud/internal/domain"
	"github.com/hilthontt/embermud/internal/infrastructure/logging"
)

type fakeBroker struct {
	published []publishedMessage
	err       error
}

type publishedMessage struct {
	routingKey string
	msg        amqp.Publishing
}

func (f *fakeBroker) Publish(ctx context.Context, routingKey string, msg amqp.Publishing) error {
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, publishedMessage{routingKey: routingKey, msg: msg})
	return nil
}

func TestPublishSetsRoutingKeyAndMetadata(t *testing.T) {
	broker := &fakeBroker{}
	p := NewGameEventPublisher(broker, logging.NewNopLogger())

	ev := domain.NewChatMessage(3001, "c1", "Ayla", "hello")
	require.NoError(t, p.Publish(context.Background(), ev))

	require.Len(t, broker.published, 1)
	got := broker.published[0]

	assert.Equal(t, "chat.chatmessage.3001", got.routingKey)
	assert.Equal(t, domain.VariantChatMessage, got.msg.Type)
	assert.Equal(t, ev.EventID, got.msg.MessageId)
	assert.Equal(t, "application/json", got.msg.ContentType)

	decoded, err := DecodeEvent(got.msg.Type, got.msg.Body)
	require.NoError(t, err)
	assert.Equal(t, "hello", decoded.(*domain.ChatMessageEvent).Text)
}

func TestPublishSwallowsTransportFailure(t *testing.T) {
	broker := &fakeBroker{err: errors.New("connection reset")}
	p := NewGameEventPublisher(broker, logging.NewNopLogger())

	// a broker outage must not surface to the caller
	err := p.Publish(context.Background(), domain.NewSystemNotice("hi"))
	assert.NoError(t, err)
}

func TestPublishBatchContinuesPastFailures(t *testing.T) {
	broker := &fakeBroker{}
	p := NewGameEventPublisher(broker, logging.NewNopLogger())

	batch := []domain.GameEvent{
		domain.NewSystemNotice("one"),
		domain.NewSystemNotice("two"),
	}
	p.PublishBatch(context.Background(), batch)

	assert.Len(t, broker.published, 2)
}

func TestDecodeEventUnknownVariant(t *testing.T) {
	_, err := DecodeEvent("FutureThing", []byte(`{}`))
	assert.ErrorIs(t, err, ErrUnknownVariant)
}

func TestDecodeEventMalformedBody(t *testing.T) {
	_, err := DecodeEvent(domain.VariantChatMessage, []byte(`{not json`))
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrUnknownVariant)
}
