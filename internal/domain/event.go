package domain

import (
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// EventCategory is the coarse routing family of a game event.
type EventCategory string

const (
	CategoryMovement    EventCategory = "Movement"
	CategoryChat        EventCategory = "Chat"
	CategoryCombat      EventCategory = "Combat"
	CategorySkill       EventCategory = "Skill"
	CategorySystem      EventCategory = "System"
	CategoryEnvironment EventCategory = "Environment"
)

// RoomScopedCategories lists the categories a subscription binds per room.
// Extending the set here extends every client's room bindings.
func RoomScopedCategories() []EventCategory {
	return []EventCategory{
		CategoryMovement,
		CategoryChat,
		CategoryCombat,
		CategorySkill,
		CategoryEnvironment,
	}
}

// GameEvent is the unit published on the bus. Concrete variants embed
// EventMeta; constructors stamp the category and variant tag so an event
// without them cannot be built.
type GameEvent interface {
	Meta() *EventMeta
}

// EventMeta carries the routing-relevant fields shared by every variant.
type EventMeta struct {
	EventID    string        `json:"eventId"`
	OccurredAt time.Time     `json:"occurredAt"`
	Category   EventCategory `json:"category"`
	Variant    string        `json:"variant"`

	// RoomID scopes delivery to a single room. ZoneID is the parallel,
	// forward-looking zone scope; it only affects routing when RoomID is
	// absent. Targets narrows delivery to an explicit recipient set and
	// always wins over scope at the consumer.
	RoomID  *int64   `json:"roomId,omitempty"`
	ZoneID  *string  `json:"zoneId,omitempty"`
	Targets []string `json:"targets,omitempty"`
}

func (m *EventMeta) Meta() *EventMeta { return m }

// TagRoom scopes the event to a room. Returns the meta for chaining.
func (m *EventMeta) TagRoom(roomID int64) *EventMeta {
	m.RoomID = &roomID
	return m
}

// TagZone scopes the event to a zone.
func (m *EventMeta) TagZone(zoneID string) *EventMeta {
	m.ZoneID = &zoneID
	return m
}

// Targeted reports whether delivery is restricted to an explicit set.
func (m *EventMeta) Targeted() bool {
	return len(m.Targets) > 0
}

// scopeToken is "global" for unscoped events, the decimal room id for
// room-scoped ones and "zone-<id>" when only a zone scope is set. Decimal ids
// and "global" can never collide with the zone prefix.
func (m *EventMeta) scopeToken() string {
	switch {
	case m.RoomID != nil:
		return strconv.FormatInt(*m.RoomID, 10)
	case m.ZoneID != nil:
		return "zone-" + *m.ZoneID
	default:
		return "global"
	}
}

// RoutingKey is the broker routing key: category.variant.scope, all
// lowercase. Pure over the event: identity fields (EventID, OccurredAt)
// never participate. Subscribers bind literal and wildcard patterns of this
// exact shape, so the format is a wire contract.
func (m *EventMeta) RoutingKey() string {
	return strings.ToLower(string(m.Category)) + "." +
		strings.ToLower(m.Variant) + "." +
		m.scopeToken()
}

func newMeta(cat EventCategory, variant string) EventMeta {
	return EventMeta{
		EventID:    uuid.NewString(),
		OccurredAt: time.Now().UTC(),
		Category:   cat,
		Variant:    variant,
	}
}
