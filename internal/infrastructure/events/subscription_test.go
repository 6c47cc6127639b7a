package events

import (
	"context"
	"encoding/json"
	"slices"
	"sync"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hilthontt/embermud/internal/domain"
	"github.com/hilthontt/embermud/internal/infrastructure/logging"
)

// fakeChannel records queue and binding operations and feeds deliveries to
// the consumer loop.
type fakeChannel struct {
	mu         sync.Mutex
	bindings   []string
	unbindings []string
	deliveries chan amqp.Delivery
	closed     bool
	canceled   []string
}

func newFakeChannel() *fakeChannel {
	return &fakeChannel{deliveries: make(chan amqp.Delivery)}
}

func (f *fakeChannel) DeclareEphemeralQueue(ctx context.Context) (string, error) {
	return "amq.gen-test", nil
}

func (f *fakeChannel) BindQueue(queue, pattern string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.bindings = append(f.bindings, pattern)
	return nil
}

func (f *fakeChannel) UnbindQueue(queue, pattern string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.unbindings = append(f.unbindings, pattern)
	f.bindings = slices.DeleteFunc(f.bindings, func(p string) bool { return p == pattern })
	return nil
}

func (f *fakeChannel) Consume(ctx context.Context, queue, consumerTag string) (<-chan amqp.Delivery, error) {
	return f.deliveries, nil
}

func (f *fakeChannel) CancelConsumer(consumerTag string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.canceled = append(f.canceled, consumerTag)
	close(f.deliveries)
	return nil
}

func (f *fakeChannel) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakeChannel) boundPatterns() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.bindings)
}

// fakeAcker records the terminal disposition of one delivery.
type fakeAcker struct {
	mu     sync.Mutex
	acked  bool
	nacked bool
}

func (f *fakeAcker) Ack(tag uint64, multiple bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.acked = true
	return nil
}

func (f *fakeAcker) Nack(tag uint64, multiple, requeue bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nacked = true
	return nil
}

func (f *fakeAcker) Reject(tag uint64, requeue bool) error {
	return f.Nack(tag, false, requeue)
}

func delivery(t *testing.T, ev domain.GameEvent) (amqp.Delivery, *fakeAcker) {
	t.Helper()

	body, err := json.Marshal(ev)
	require.NoError(t, err)

	acker := &fakeAcker{}
	return amqp.Delivery{
		Acknowledger: acker,
		Type:         ev.Meta().Variant,
		Body:         body,
	}, acker
}

func int64Ptr(v int64) *int64 { return &v }

func newStartedSubscription(t *testing.T, initialRoom *int64, handler EventHandler) (*ClientSubscription, *fakeChannel) {
	t.Helper()

	ch := newFakeChannel()
	sub := NewClientSubscription("client-1", initialRoom, ch, handler, logging.NewNopLogger())
	require.NoError(t, sub.Start(context.Background()))

	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = sub.Stop(ctx)
		_ = sub.Close()
	})

	return sub, ch
}

func TestStartBindsGlobalAndRoomPatterns(t *testing.T) {
	_, ch := newStartedSubscription(t, int64Ptr(3001), func(domain.GameEvent) {})

	bound := ch.boundPatterns()
	assert.Contains(t, bound, "*.*.global")
	assert.Contains(t, bound, "system.#")
	assert.Contains(t, bound, "chat.*.3001")
	assert.Contains(t, bound, "environment.*.3001")
	assert.Len(t, bound, 2+len(roomPatterns(3001)))
}

func TestStartWithoutRoomBindsOnlyGlobal(t *testing.T) {
	_, ch := newStartedSubscription(t, nil, func(domain.GameEvent) {})

	assert.Equal(t, globalPatterns(), ch.boundPatterns())
}

func TestStartTwiceFails(t *testing.T) {
	sub, _ := newStartedSubscription(t, nil, func(domain.GameEvent) {})

	assert.ErrorIs(t, sub.Start(context.Background()), ErrAlreadyStarted)
}

func TestUpdateRoomRebinds(t *testing.T) {
	sub, ch := newStartedSubscription(t, int64Ptr(3001), func(domain.GameEvent) {})

	require.NoError(t, sub.UpdateRoom(context.Background(), 3002))

	bound := ch.boundPatterns()
	assert.Contains(t, bound, "chat.*.3002")
	assert.NotContains(t, bound, "chat.*.3001")

	// global bindings survive every move
	assert.Contains(t, bound, "*.*.global")
	assert.Contains(t, bound, "system.#")
}

func TestUpdateRoomSameRoomIsNoop(t *testing.T) {
	sub, ch := newStartedSubscription(t, int64Ptr(3001), func(domain.GameEvent) {})
	before := len(ch.boundPatterns())

	require.NoError(t, sub.UpdateRoom(context.Background(), 3001))

	assert.Len(t, ch.boundPatterns(), before)
	assert.Empty(t, ch.unbindings)
}

func TestUpdateZoneRebinds(t *testing.T) {
	sub, ch := newStartedSubscription(t, int64Ptr(3001), func(domain.GameEvent) {})

	require.NoError(t, sub.UpdateZone(context.Background(), "midgaard"))
	require.NoError(t, sub.UpdateZone(context.Background(), "thalos"))

	bound := ch.boundPatterns()
	assert.Contains(t, bound, "chat.*.zone-thalos")
	assert.NotContains(t, bound, "chat.*.zone-midgaard")
}

func TestHandleDeliveryRoomScoped(t *testing.T) {
	var (
		mu       sync.Mutex
		received []domain.GameEvent
	)
	sub, _ := newStartedSubscription(t, int64Ptr(3001), func(ev domain.GameEvent) {
		mu.Lock()
		defer mu.Unlock()
		received = append(received, ev)
	})

	d, acker := delivery(t, domain.NewChatMessage(3001, "c2", "Brom", "hello"))
	sub.handleDelivery(d)

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, received, 1)
	assert.Equal(t, "hello", received[0].(*domain.ChatMessageEvent).Text)
	assert.True(t, acker.acked)
}

func TestHandleDeliveryWrongRoomDropped(t *testing.T) {
	sub, _ := newStartedSubscription(t, int64Ptr(3001), func(domain.GameEvent) {
		t.Error("handler must not run for another room's event")
	})

	// stale binding scenario: the queue still had an old room's message
	d, acker := delivery(t, domain.NewChatMessage(9999, "c2", "Brom", "hello"))
	sub.handleDelivery(d)

	assert.True(t, acker.acked)
}

func TestHandleDeliveryTargetedToThisClient(t *testing.T) {
	var got domain.GameEvent
	sub, _ := newStartedSubscription(t, nil, func(ev domain.GameEvent) { got = ev })

	d, acker := delivery(t, domain.NewTell("c2", "Brom", "psst", "client-1"))
	sub.handleDelivery(d)

	require.NotNil(t, got)
	assert.Equal(t, "psst", got.(*domain.TellEvent).Text)
	assert.True(t, acker.acked)
}

func TestHandleDeliveryTargetedToOtherClient(t *testing.T) {
	sub, _ := newStartedSubscription(t, nil, func(domain.GameEvent) {
		t.Error("handler must not run for another recipient's tell")
	})

	d, acker := delivery(t, domain.NewTell("c2", "Brom", "psst", "someone-else"))
	sub.handleDelivery(d)

	assert.True(t, acker.acked)
}

func TestHandleDeliveryRoomTaggedTellFollowsRecipients(t *testing.T) {
	// recipient filtering wins over room scope: a tell tagged with a room
	// still reaches its recipient in another room
	var got domain.GameEvent
	sub, _ := newStartedSubscription(t, int64Ptr(3001), func(ev domain.GameEvent) { got = ev })

	tell := domain.NewTell("c2", "Brom", "psst", "client-1")
	tell.TagRoom(9999)
	d, acker := delivery(t, tell)
	sub.handleDelivery(d)

	require.NotNil(t, got)
	assert.Equal(t, "psst", got.(*domain.TellEvent).Text)
	assert.True(t, acker.acked)
}

func TestHandleDeliveryRoomTaggedTellSkipsBystander(t *testing.T) {
	// a non-recipient sharing the tagged room must not overhear the tell
	sub, _ := newStartedSubscription(t, int64Ptr(3001), func(domain.GameEvent) {
		t.Error("handler must not run for another recipient's tell")
	})

	tell := domain.NewTell("c2", "Brom", "psst", "someone-else")
	tell.TagRoom(3001)
	d, acker := delivery(t, tell)
	sub.handleDelivery(d)

	assert.True(t, acker.acked)
}

func TestHandleDeliveryGlobalAlwaysDelivered(t *testing.T) {
	var got domain.GameEvent
	sub, _ := newStartedSubscription(t, int64Ptr(3001), func(ev domain.GameEvent) { got = ev })

	d, acker := delivery(t, domain.NewSystemNotice("reboot soon"))
	sub.handleDelivery(d)

	require.NotNil(t, got)
	assert.True(t, acker.acked)
}

func TestHandleDeliveryRoomTaggedSystemNoticeFiltered(t *testing.T) {
	// system.# routes room-tagged system events into every queue, but the
	// local room filter still decides who hears them
	sub, _ := newStartedSubscription(t, int64Ptr(3001), func(domain.GameEvent) {
		t.Error("handler must not run for another room's system notice")
	})

	notice := domain.NewSystemNotice("grate opens")
	notice.TagRoom(9999)
	d, acker := delivery(t, notice)
	sub.handleDelivery(d)

	assert.True(t, acker.acked)
}

func TestHandleDeliveryUnknownVariantAcked(t *testing.T) {
	sub, _ := newStartedSubscription(t, nil, func(domain.GameEvent) {
		t.Error("handler must not run for an unknown variant")
	})

	acker := &fakeAcker{}
	sub.handleDelivery(amqp.Delivery{
		Acknowledger: acker,
		Type:         "FutureThing",
		Body:         []byte(`{}`),
	})

	assert.True(t, acker.acked)
	assert.False(t, acker.nacked)
}

func TestHandleDeliveryMalformedNacked(t *testing.T) {
	sub, _ := newStartedSubscription(t, nil, func(domain.GameEvent) {})

	acker := &fakeAcker{}
	sub.handleDelivery(amqp.Delivery{
		Acknowledger: acker,
		Type:         domain.VariantChatMessage,
		Body:         []byte(`{broken`),
	})

	assert.True(t, acker.nacked)
	assert.False(t, acker.acked)
}

func TestHandleDeliveryHandlerPanicNacked(t *testing.T) {
	sub, _ := newStartedSubscription(t, nil, func(domain.GameEvent) {
		panic("boom")
	})

	d, acker := delivery(t, domain.NewSystemNotice("hi"))
	sub.handleDelivery(d)

	assert.True(t, acker.nacked)
}

func TestStopDrainsConsumer(t *testing.T) {
	ch := newFakeChannel()
	sub := NewClientSubscription("client-1", nil, ch, func(domain.GameEvent) {}, logging.NewNopLogger())
	require.NoError(t, sub.Start(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, sub.Stop(ctx))

	assert.Equal(t, []string{"sub-client-1"}, ch.canceled)

	// stopped subscriptions refuse to restart
	assert.ErrorIs(t, sub.Start(context.Background()), ErrSubscriptionStopped)

	require.NoError(t, sub.Close())
	assert.True(t, ch.closed)
}

func TestUpdateRoomAfterStopIsNoop(t *testing.T) {
	ch := newFakeChannel()
	sub := NewClientSubscription("client-1", int64Ptr(1), ch, func(domain.GameEvent) {}, logging.NewNopLogger())
	require.NoError(t, sub.Start(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, sub.Stop(ctx))

	before := ch.boundPatterns()
	require.NoError(t, sub.UpdateRoom(context.Background(), 2))
	assert.Equal(t, before, ch.boundPatterns())
}
