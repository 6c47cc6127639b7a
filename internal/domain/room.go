package domain

import (
	"context"
	"errors"
)

var (
	ErrRoomNotFound = errors.New("room not found")
	ErrExitNotFound = errors.New("exit not found")
)

// DoorState is the authoritative door enumeration for an exit. Anything that
// exists and is not explicitly open muffles sound the same way a closed door
// does.
type DoorState string

const (
	DoorNone   DoorState = "none"
	DoorOpen   DoorState = "open"
	DoorClosed DoorState = "closed"
	DoorLocked DoorState = "locked"
	DoorBarred DoorState = "barred"
)

// Muffles reports whether the door obstructs sound passing through the exit.
func (s DoorState) Muffles() bool {
	return s != DoorNone && s != DoorOpen
}

// Exit is one directed connection out of a room.
type Exit struct {
	Direction Direction `json:"direction" bson:"direction"`
	ToRoomID  int64     `json:"toRoomId" bson:"to_room_id"`
	Hidden    bool      `json:"hidden,omitempty" bson:"hidden,omitempty"`
	Door      DoorState `json:"door" bson:"door"`
}

// Room is a node in the world connectivity graph. Only the fields the
// messaging layer needs are modeled here; descriptions, contents and combat
// state live with their own services.
type Room struct {
	ID     int64  `json:"id" bson:"_id"`
	ZoneID string `json:"zoneId,omitempty" bson:"zone_id,omitempty"`
	Name   string `json:"name" bson:"name"`
	Exits  []Exit `json:"exits" bson:"exits"`
}

// ActiveExits returns the exits sound and movement may traverse, in stored
// order. Hidden exits never participate.
func (r *Room) ActiveExits() []Exit {
	exits := make([]Exit, 0, len(r.Exits))
	for _, e := range r.Exits {
		if e.Hidden {
			continue
		}
		exits = append(exits, e)
	}
	return exits
}

// RoomRepository is the room-connectivity data source consumed by the
// adjacency resolver. The world service owns the data; this layer only reads.
type RoomRepository interface {
	GetByID(ctx context.Context, id int64) (*Room, error)
}
