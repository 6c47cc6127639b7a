package events

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/hilthontt/embermud/internal/domain"
	"github.com/hilthontt/embermud/internal/infrastructure/logging"
	"github.com/hilthontt/embermud/internal/infrastructure/metrics"
	amqp "github.com/rabbitmq/amqp091-go"
)

var (
	ErrAlreadyStarted      = errors.New("subscription already started")
	ErrSubscriptionStopped = errors.New("subscription stopped")
)

// SubscriberChannel is the per-client slice of the broker a subscription
// drives: one ephemeral queue, its bindings, one consumer.
// *messaging.ClientChannel satisfies it.
type SubscriberChannel interface {
	DeclareEphemeralQueue(ctx context.Context) (string, error)
	BindQueue(queue, pattern string) error
	UnbindQueue(queue, pattern string) error
	Consume(ctx context.Context, queue, consumerTag string) (<-chan amqp.Delivery, error)
	CancelConsumer(consumerTag string) error
	Close() error
}

// EventHandler receives events that passed the local filters. Handlers run on
// the consumer goroutine, so one client's events arrive strictly in order.
type EventHandler func(ev domain.GameEvent)

type subscriptionState int

const (
	stateCreated subscriptionState = iota
	stateActive
	stateStopped
)

// ClientSubscription is one connected client's view of the event bus. It owns
// an ephemeral auto-delete queue and rebinds routing patterns incrementally
// as the client moves between rooms and zones. The binding set is always
// derived from the current location, never stored independently.
type ClientSubscription struct {
	clientID string
	channel  SubscriberChannel
	handler  EventHandler
	logger   logging.Logger

	// mu serializes room/zone transitions against delivery filtering so an
	// unbind-then-bind can never interleave with an in-flight delivery
	// decision.
	mu     sync.Mutex
	state  subscriptionState
	queue  string
	roomID *int64
	zoneID *string
	cancel context.CancelFunc
	done   chan struct{}
}

// NewClientSubscription builds a subscription in the Created state.
// initialRoom may be nil for clients that connect before entering the world.
func NewClientSubscription(clientID string, initialRoom *int64, channel SubscriberChannel, handler EventHandler, logger logging.Logger) *ClientSubscription {
	return &ClientSubscription{
		clientID: clientID,
		channel:  channel,
		handler:  handler,
		logger:   logger,
		roomID:   initialRoom,
	}
}

func (s *ClientSubscription) consumerTag() string {
	return "sub-" + s.clientID
}

// Start declares the queue, binds the permanent global patterns plus the
// current room/zone patterns, and attaches the consumer.
func (s *ClientSubscription) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.state {
	case stateActive:
		return ErrAlreadyStarted
	case stateStopped:
		return ErrSubscriptionStopped
	}

	queue, err := s.channel.DeclareEphemeralQueue(ctx)
	if err != nil {
		return err
	}
	s.queue = queue

	patterns := globalPatterns()
	if s.roomID != nil {
		patterns = append(patterns, roomPatterns(*s.roomID)...)
	}
	if s.zoneID != nil {
		patterns = append(patterns, zonePatterns(*s.zoneID)...)
	}

	for _, p := range patterns {
		if err := s.channel.BindQueue(queue, p); err != nil {
			return err
		}
	}

	consumeCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	deliveries, err := s.channel.Consume(consumeCtx, queue, s.consumerTag())
	if err != nil {
		cancel()
		return err
	}

	s.cancel = cancel
	s.done = make(chan struct{})
	s.state = stateActive

	go s.consumeLoop(deliveries)

	s.logger.Info(logging.RabbitMQ, logging.Consume, "subscription started", map[logging.ExtraKey]any{
		logging.ClientID:  s.clientID,
		logging.QueueName: queue,
	})

	return nil
}

// UpdateRoom rebinds the room-scoped pattern family to a new room. No-op when
// the room is unchanged or the subscription is not active. Unbinding the old
// room is best-effort: a stale binding is harmless (the old room id no longer
// matches anything sent to this client's room), but skipping the new bind
// would lose events, so bind-new always runs.
func (s *ClientSubscription) UpdateRoom(ctx context.Context, newRoomID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != stateActive {
		return nil
	}
	if s.roomID != nil && *s.roomID == newRoomID {
		return nil
	}

	if s.roomID != nil {
		s.unbindAllLocked(roomPatterns(*s.roomID))
	}

	err := s.bindAllLocked(roomPatterns(newRoomID))
	s.roomID = &newRoomID
	return err
}

// UpdateZone is the symmetric operation for the zone-scoped pattern family.
func (s *ClientSubscription) UpdateZone(ctx context.Context, newZoneID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != stateActive {
		return nil
	}
	if s.zoneID != nil && *s.zoneID == newZoneID {
		return nil
	}

	if s.zoneID != nil {
		s.unbindAllLocked(zonePatterns(*s.zoneID))
	}

	err := s.bindAllLocked(zonePatterns(newZoneID))
	s.zoneID = &newZoneID
	return err
}

func (s *ClientSubscription) unbindAllLocked(patterns []string) {
	for _, p := range patterns {
		if err := s.channel.UnbindQueue(s.queue, p); err != nil {
			s.logger.Warn(logging.RabbitMQ, logging.Binding, "failed to unbind pattern", map[logging.ExtraKey]any{
				logging.ClientID:     s.clientID,
				logging.RoutingKey:   p,
				logging.ErrorMessage: err.Error(),
			})
		}
	}
}

func (s *ClientSubscription) bindAllLocked(patterns []string) error {
	var errs []error
	for _, p := range patterns {
		if err := s.channel.BindQueue(s.queue, p); err != nil {
			s.logger.Error(logging.RabbitMQ, logging.Binding, "failed to bind pattern", map[logging.ExtraKey]any{
				logging.ClientID:     s.clientID,
				logging.RoutingKey:   p,
				logging.ErrorMessage: err.Error(),
			})
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Stop detaches the consumer and drains the loop. Queue teardown is left to
// the broker: the queue is exclusive and auto-delete, so it dies with the
// connection.
func (s *ClientSubscription) Stop(ctx context.Context) error {
	s.mu.Lock()
	if s.state != stateActive {
		s.mu.Unlock()
		return nil
	}
	s.state = stateStopped
	cancel, done := s.cancel, s.done
	s.mu.Unlock()

	err := s.channel.CancelConsumer(s.consumerTag())
	cancel()

	select {
	case <-done:
	case <-ctx.Done():
		return ctx.Err()
	}

	return err
}

// Close releases the underlying broker channel. Call after Stop.
func (s *ClientSubscription) Close() error {
	return s.channel.Close()
}

func (s *ClientSubscription) consumeLoop(deliveries <-chan amqp.Delivery) {
	defer close(s.done)

	for d := range deliveries {
		s.handleDelivery(d)
	}
}

func (s *ClientSubscription) handleDelivery(d amqp.Delivery) {
	ev, err := DecodeEvent(d.Type, d.Body)
	if err != nil {
		if errors.Is(err, ErrUnknownVariant) {
			// A newer publisher's variant: drop quietly, ack so the queue
			// keeps moving.
			metrics.EventsDropped.WithLabelValues(metrics.DropUnknownVariant).Inc()
			s.logger.Debug(logging.RabbitMQ, logging.Deserialize, "dropping unknown event variant", map[logging.ExtraKey]any{
				logging.ClientID:     s.clientID,
				logging.EventVariant: d.Type,
			})
			_ = d.Ack(false)
			return
		}

		metrics.EventsDropped.WithLabelValues(metrics.DropMalformed).Inc()
		s.logger.Warn(logging.RabbitMQ, logging.Deserialize, "failed to decode event", map[logging.ExtraKey]any{
			logging.ClientID:     s.clientID,
			logging.EventVariant: d.Type,
			logging.ErrorMessage: err.Error(),
		})
		_ = d.Nack(false, false)
		return
	}

	meta := ev.Meta()

	s.mu.Lock()
	deliver, reason := s.shouldDeliverLocked(meta)
	s.mu.Unlock()

	if !deliver {
		metrics.EventsDropped.WithLabelValues(reason).Inc()
		_ = d.Ack(false)
		return
	}

	if err := s.invokeHandler(ev); err != nil {
		metrics.EventsDropped.WithLabelValues(metrics.DropHandlerError).Inc()
		s.logger.Error(logging.RabbitMQ, logging.Consume, "event handler failed", map[logging.ExtraKey]any{
			logging.ClientID:     s.clientID,
			logging.EventVariant: meta.Variant,
			logging.ErrorMessage: err.Error(),
		})
		_ = d.Nack(false, false)
		return
	}

	metrics.EventsDelivered.WithLabelValues(string(meta.Category)).Inc()
	_ = d.Ack(false)
}

// shouldDeliverLocked applies the filters the broker's pattern matching
// cannot express. The room check is load-bearing, not redundant: the local
// room can change between bind and delivery.
func (s *ClientSubscription) shouldDeliverLocked(m *domain.EventMeta) (bool, string) {
	if m.Targeted() {
		if slices.Contains(m.Targets, s.clientID) {
			return true, ""
		}
		return false, metrics.DropRecipientFilter
	}

	if m.RoomID != nil {
		if s.roomID != nil && *s.roomID == *m.RoomID {
			return true, ""
		}
		return false, metrics.DropScopeFilter
	}

	if m.ZoneID != nil {
		if s.zoneID != nil && *s.zoneID == *m.ZoneID {
			return true, ""
		}
		return false, metrics.DropScopeFilter
	}

	return true, ""
}

// invokeHandler shields the consumer loop from a misbehaving handler.
func (s *ClientSubscription) invokeHandler(ev domain.GameEvent) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panicked: %v", r)
		}
	}()

	s.handler(ev)
	return nil
}
