package world

import (
	"context"
	"errors"
	"slices"

	"github.com/hilthontt/embermud/internal/domain"
	"github.com/hilthontt/embermud/internal/infrastructure/logging"
)

// DefaultMufflingCost is the traversal budget a present-but-not-open door
// consumes. An open exit or one with no door costs 1.
const DefaultMufflingCost = 2

// AdjacentRoom describes one room reachable from a propagation source.
// Distance is the hop count of the winning path, never the traversal cost:
// a closed door eats range without pretending the room behind it is farther
// away, and the description logic depends on that.
type AdjacentRoom struct {
	RoomID                int64
	Distance              int
	DirectionFromSource   domain.Direction
	DirectionFromListener domain.Direction
	PathDirections        []domain.Direction
}

// Resolver walks the room connectivity graph with door-state-aware costs.
type Resolver struct {
	rooms        domain.RoomRepository
	logger       logging.Logger
	mufflingCost int
}

func NewResolver(rooms domain.RoomRepository, logger logging.Logger, mufflingCost int) *Resolver {
	if mufflingCost < 1 {
		mufflingCost = DefaultMufflingCost
	}

	return &Resolver{
		rooms:        rooms,
		logger:       logger,
		mufflingCost: mufflingCost,
	}
}

type frontierNode struct {
	roomID int64
	cost   int
	hops   int
	path   []domain.Direction
}

// AdjacentRooms returns every room reachable from sourceRoomID through
// active, non-hidden exits without the cumulative edge cost exceeding
// maxBudget. The source room is never included. Each room appears once: a
// strictly cheaper path replaces an earlier entry, equal-cost ties go to the
// first path the frontier discovered.
func (r *Resolver) AdjacentRooms(ctx context.Context, sourceRoomID int64, maxBudget int) ([]AdjacentRoom, error) {
	if maxBudget <= 0 {
		return nil, nil
	}

	visited := map[int64]int{sourceRoomID: 0} // best known cost per room
	found := make(map[int64]*AdjacentRoom)
	order := make([]int64, 0)

	queue := []frontierNode{{roomID: sourceRoomID}}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		room, err := r.rooms.GetByID(ctx, cur.roomID)
		if err != nil {
			if cur.roomID == sourceRoomID {
				return nil, err
			}
			if errors.Is(err, domain.ErrRoomNotFound) {
				// dangling exit in world data; skip, don't fail the walk
				r.logger.Warn(logging.World, logging.ExternalService, "exit leads to missing room", map[logging.ExtraKey]any{
					logging.RoomID: cur.roomID,
				})
				continue
			}
			return nil, err
		}

		for _, exit := range room.ActiveExits() {
			edgeCost := 1
			if exit.Door.Muffles() {
				edgeCost = r.mufflingCost
			}

			newCost := cur.cost + edgeCost
			if newCost > maxBudget {
				continue
			}
			if prev, ok := visited[exit.ToRoomID]; ok && prev <= newCost {
				continue
			}
			visited[exit.ToRoomID] = newCost

			path := append(slices.Clone(cur.path), exit.Direction)
			info := &AdjacentRoom{
				RoomID:                exit.ToRoomID,
				Distance:              cur.hops + 1,
				DirectionFromSource:   path[0],
				DirectionFromListener: exit.Direction.Opposite(),
				PathDirections:        path,
			}

			if _, seen := found[exit.ToRoomID]; !seen {
				order = append(order, exit.ToRoomID)
			}
			found[exit.ToRoomID] = info

			queue = append(queue, frontierNode{
				roomID: exit.ToRoomID,
				cost:   newCost,
				hops:   cur.hops + 1,
				path:   path,
			})
		}
	}

	result := make([]AdjacentRoom, 0, len(order))
	for _, id := range order {
		result = append(result, *found[id])
	}

	return result, nil
}
