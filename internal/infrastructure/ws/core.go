package ws

import (
	"context"
	"sync"
	"time"

	"github.com/hilthontt/embermud/internal/domain"
	"github.com/hilthontt/embermud/internal/infrastructure/events"
	"github.com/hilthontt/embermud/internal/infrastructure/logging"
	"github.com/hilthontt/embermud/internal/infrastructure/metrics"
	"github.com/hilthontt/embermud/internal/infrastructure/profanity"
	"github.com/hilthontt/embermud/internal/world"
)

const stopTimeout = 5 * time.Second

// ChannelFactory opens a fresh broker channel for one client subscription.
type ChannelFactory func() (events.SubscriberChannel, error)

// Core owns the connected clients. Each registered client gets its own
// ClientSubscription on the bus; delivered events are forwarded as frames,
// and movement commands feed back into the subscription's room bindings.
type Core struct {
	channels   ChannelFactory
	publisher  *events.GameEventPublisher
	propagator *world.Propagator
	filter     *profanity.ProfanityFilter
	logger     logging.Logger

	register   chan *Client
	unregister chan *Client

	mu   sync.RWMutex // subs is read from client goroutines in HandleCommand
	subs map[*Client]*events.ClientSubscription
}

func NewCore(channels ChannelFactory, publisher *events.GameEventPublisher, propagator *world.Propagator, logger logging.Logger) *Core {
	return &Core{
		channels:   channels,
		publisher:  publisher,
		propagator: propagator,
		filter:     profanity.NewProfanityFilter(),
		logger:     logger,
		register:   make(chan *Client),
		unregister: make(chan *Client),
		subs:       make(map[*Client]*events.ClientSubscription),
	}
}

func (c *Core) Register() chan<- *Client {
	return c.register
}

func (c *Core) Unregister() chan<- *Client {
	return c.unregister
}

// Run processes client lifecycle until ctx is canceled.
func (c *Core) Run(ctx context.Context) {
	for {
		select {
		case cl := <-c.register:
			c.attach(ctx, cl)

		case cl := <-c.unregister:
			c.detach(cl)

		case <-ctx.Done():
			c.mu.RLock()
			clients := make([]*Client, 0, len(c.subs))
			for cl := range c.subs {
				clients = append(clients, cl)
			}
			c.mu.RUnlock()
			for _, cl := range clients {
				c.detach(cl)
			}
			return
		}
	}
}

func (c *Core) attach(ctx context.Context, cl *Client) {
	channel, err := c.channels()
	if err != nil {
		c.logger.Error(logging.WebSocket, logging.ExternalService, "failed to open client channel", map[logging.ExtraKey]any{
			logging.ClientID:     cl.ID,
			logging.ErrorMessage: err.Error(),
		})
		cl.trySend(NewErrorFrame("BUS_UNAVAILABLE", "event delivery unavailable"))
		c.trackDead(cl)
		return
	}

	sub := events.NewClientSubscription(cl.ID, cl.RoomID, channel, func(ev domain.GameEvent) {
		if !cl.trySend(NewEventFrame(ev)) {
			c.logger.Warn(logging.WebSocket, logging.ExternalService, "client buffer full, frame dropped", map[logging.ExtraKey]any{
				logging.ClientID: cl.ID,
			})
		}
	}, c.logger)

	if err := sub.Start(ctx); err != nil {
		c.logger.Error(logging.WebSocket, logging.ExternalService, "failed to start subscription", map[logging.ExtraKey]any{
			logging.ClientID:     cl.ID,
			logging.ErrorMessage: err.Error(),
		})
		_ = sub.Close()
		cl.trySend(NewErrorFrame("BUS_UNAVAILABLE", "event delivery unavailable"))
		c.trackDead(cl)
		return
	}

	c.mu.Lock()
	c.subs[cl] = sub
	c.mu.Unlock()
	metrics.ConnectedClients.Inc()

	cl.trySend(NewWelcome(cl.ID, cl.Name, cl.RoomID))
}

// trackDead keeps a client whose attach failed in the map with no
// subscription, so the eventual detach still closes its Send channel and the
// write pump can exit.
func (c *Core) trackDead(cl *Client) {
	c.mu.Lock()
	c.subs[cl] = nil
	c.mu.Unlock()
}

func (c *Core) detach(cl *Client) {
	c.mu.Lock()
	sub, ok := c.subs[cl]
	if ok {
		delete(c.subs, cl)
	}
	c.mu.Unlock()
	if !ok {
		return
	}

	if sub == nil {
		close(cl.Send)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), stopTimeout)
	defer cancel()

	if err := sub.Stop(ctx); err != nil {
		c.logger.Warn(logging.WebSocket, logging.Shutdown, "subscription stop failed", map[logging.ExtraKey]any{
			logging.ClientID:     cl.ID,
			logging.ErrorMessage: err.Error(),
		})
	}
	_ = sub.Close()
	close(cl.Send)
	metrics.ConnectedClients.Dec()
}

// HandleCommand runs on the client's read goroutine.
func (c *Core) HandleCommand(cl *Client, frame ClientFrame) {
	ctx, cancel := context.WithTimeout(context.Background(), stopTimeout)
	defer cancel()

	switch frame.Type {
	case CommandMove:
		c.handleMove(ctx, cl, frame.RoomID)
	case CommandSay:
		c.handleSpeech(ctx, cl, frame.Text, world.Normal)
	case CommandYell:
		c.handleSpeech(ctx, cl, frame.Text, world.Loud)
	default:
		cl.trySend(NewErrorFrame("UNKNOWN_COMMAND", "unknown command: "+frame.Type))
	}
}

func (c *Core) handleMove(ctx context.Context, cl *Client, roomID int64) {
	sub, ok := c.lookup(cl)
	if !ok {
		return
	}

	if err := sub.UpdateRoom(ctx, roomID); err != nil {
		c.logger.Error(logging.WebSocket, logging.Binding, "room rebind failed", map[logging.ExtraKey]any{
			logging.ClientID:     cl.ID,
			logging.RoomID:       roomID,
			logging.ErrorMessage: err.Error(),
		})
		cl.trySend(NewErrorFrame("MOVE_FAILED", "could not enter room"))
		return
	}

	var from int64
	if cl.RoomID != nil {
		from = *cl.RoomID
	}
	cl.RoomID = &roomID

	_ = c.publisher.Publish(ctx, domain.NewPlayerMoved(roomID, cl.ID, cl.Name, from, roomID, domain.Nearby))

	c.propagator.Propagate(ctx, world.PropagationRequest{
		SourceRoomID: roomID,
		Level:        world.Quiet,
		Type:         world.SoundMovement,
	})
}

func (c *Core) handleSpeech(ctx context.Context, cl *Client, text string, level world.SoundLevel) {
	if cl.RoomID == nil {
		cl.trySend(NewErrorFrame("NOT_IN_ROOM", "you are nowhere; no one hears you"))
		return
	}
	if text == "" {
		return
	}
	if c.filter.ContainsProfanity(text) {
		cl.trySend(NewErrorFrame("FILTERED", "watch your language"))
		return
	}

	roomID := *cl.RoomID
	_ = c.publisher.Publish(ctx, domain.NewChatMessage(roomID, cl.ID, cl.Name, text))

	req := world.PropagationRequest{
		SourceRoomID: roomID,
		Level:        level,
		Type:         world.SoundSpeech,
		Description:  "voices",
	}
	if level == world.Loud {
		req.CharacterName = cl.Name
		req.DetailedMessage = text
		req.Description = ""
	}
	c.propagator.Propagate(ctx, req)
}

func (c *Core) lookup(cl *Client) (*events.ClientSubscription, bool) {
	c.mu.RLock()
	sub, ok := c.subs[cl]
	c.mu.RUnlock()
	if !ok || sub == nil {
		cl.trySend(NewErrorFrame("NOT_ATTACHED", "not attached to the event bus"))
		return nil, false
	}
	return sub, true
}
