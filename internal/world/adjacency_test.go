package world

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hilthontt/embermud/internal/domain"
	"github.com/hilthontt/embermud/internal/infrastructure/logging"
	"github.com/hilthontt/embermud/internal/persistence/repository"
)

func room(id int64, exits ...domain.Exit) *domain.Room {
	return &domain.Room{ID: id, Exits: exits}
}

func exit(dir domain.Direction, to int64) domain.Exit {
	return domain.Exit{Direction: dir, ToRoomID: to}
}

func doorExit(dir domain.Direction, to int64, door domain.DoorState) domain.Exit {
	return domain.Exit{Direction: dir, ToRoomID: to, Door: door}
}

func newTestResolver(mufflingCost int, rooms ...*domain.Room) *Resolver {
	repo := repository.NewInMemoryRoomRepository(rooms...)
	return NewResolver(repo, logging.NewNopLogger(), mufflingCost)
}

func TestAdjacentRoomsLinearCorridor(t *testing.T) {
	// 1 -north- 2 -north- 3 -north- 4, all open
	r := newTestResolver(DefaultMufflingCost,
		room(1, exit(domain.North, 2)),
		room(2, exit(domain.South, 1), exit(domain.North, 3)),
		room(3, exit(domain.South, 2), exit(domain.North, 4)),
		room(4, exit(domain.South, 3)),
	)

	got, err := r.AdjacentRooms(context.Background(), 1, 2)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, int64(2), got[0].RoomID)
	assert.Equal(t, 1, got[0].Distance)
	assert.Equal(t, domain.North, got[0].DirectionFromSource)
	assert.Equal(t, domain.South, got[0].DirectionFromListener)

	assert.Equal(t, int64(3), got[1].RoomID)
	assert.Equal(t, 2, got[1].Distance)
	assert.Equal(t, []domain.Direction{domain.North, domain.North}, got[1].PathDirections)
}

func TestAdjacentRoomsExcludesSource(t *testing.T) {
	r := newTestResolver(DefaultMufflingCost,
		room(1, exit(domain.North, 2)),
		room(2, exit(domain.South, 1)),
	)

	got, err := r.AdjacentRooms(context.Background(), 1, 4)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, int64(2), got[0].RoomID)
}

func TestAdjacentRoomsClosedDoorEatsBudget(t *testing.T) {
	r := newTestResolver(DefaultMufflingCost,
		room(1, doorExit(domain.North, 2, domain.DoorClosed)),
		room(2, doorExit(domain.South, 1, domain.DoorClosed), exit(domain.North, 3)),
		room(3, exit(domain.South, 2)),
	)

	// budget 1 cannot cross the closed door at all
	got, err := r.AdjacentRooms(context.Background(), 1, 1)
	require.NoError(t, err)
	assert.Empty(t, got)

	// budget 2 reaches the room behind the door, at hop distance 1
	got, err = r.AdjacentRooms(context.Background(), 1, 2)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, int64(2), got[0].RoomID)
	assert.Equal(t, 1, got[0].Distance)

	// the door consumed range: room 3 needs cost 3
	got, err = r.AdjacentRooms(context.Background(), 1, 3)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, int64(3), got[1].RoomID)
	assert.Equal(t, 2, got[1].Distance)
}

func TestAdjacentRoomsLockedAndBarredMuffleToo(t *testing.T) {
	r := newTestResolver(DefaultMufflingCost,
		room(1, doorExit(domain.North, 2, domain.DoorLocked), doorExit(domain.East, 3, domain.DoorBarred)),
		room(2), room(3),
	)

	got, err := r.AdjacentRooms(context.Background(), 1, 1)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestAdjacentRoomsOpenDoorCostsOne(t *testing.T) {
	r := newTestResolver(DefaultMufflingCost,
		room(1, doorExit(domain.North, 2, domain.DoorOpen)),
		room(2),
	)

	got, err := r.AdjacentRooms(context.Background(), 1, 1)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, int64(2), got[0].RoomID)
}

func TestAdjacentRoomsCheaperPathReplaces(t *testing.T) {
	// Direct exit behind a heavy door (cost 3) versus an open detour (cost 2).
	rooms := []*domain.Room{
		room(1, doorExit(domain.North, 2, domain.DoorClosed), exit(domain.East, 3)),
		room(2),
		room(3, exit(domain.North, 2)),
	}

	r := newTestResolver(3, rooms...)
	got, err := r.AdjacentRooms(context.Background(), 1, 4)
	require.NoError(t, err)
	require.Len(t, got, 2)

	var viaDetour *AdjacentRoom
	for i := range got {
		if got[i].RoomID == 2 {
			viaDetour = &got[i]
		}
	}
	require.NotNil(t, viaDetour)
	assert.Equal(t, 2, viaDetour.Distance)
	assert.Equal(t, []domain.Direction{domain.East, domain.North}, viaDetour.PathDirections)
}

func TestAdjacentRoomsEqualCostKeepsFirstPath(t *testing.T) {
	// With the default muffling cost both paths to room 2 cost 2; the direct
	// door, discovered first, wins.
	r := newTestResolver(DefaultMufflingCost,
		room(1, doorExit(domain.North, 2, domain.DoorClosed), exit(domain.East, 3)),
		room(2),
		room(3, exit(domain.North, 2)),
	)

	got, err := r.AdjacentRooms(context.Background(), 1, 4)
	require.NoError(t, err)

	for _, adj := range got {
		if adj.RoomID == 2 {
			assert.Equal(t, 1, adj.Distance)
			assert.Equal(t, []domain.Direction{domain.North}, adj.PathDirections)
			return
		}
	}
	t.Fatal("room 2 not found in results")
}

func TestAdjacentRoomsSkipsHiddenExits(t *testing.T) {
	r := newTestResolver(DefaultMufflingCost,
		room(1, domain.Exit{Direction: domain.North, ToRoomID: 2, Hidden: true}, exit(domain.East, 3)),
		room(2), room(3),
	)

	got, err := r.AdjacentRooms(context.Background(), 1, 2)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, int64(3), got[0].RoomID)
}

func TestAdjacentRoomsDanglingExitSkipped(t *testing.T) {
	r := newTestResolver(DefaultMufflingCost,
		room(1, exit(domain.North, 99), exit(domain.East, 3)),
		room(3),
	)

	got, err := r.AdjacentRooms(context.Background(), 1, 2)
	require.NoError(t, err)

	ids := make([]int64, 0, len(got))
	for _, adj := range got {
		ids = append(ids, adj.RoomID)
	}
	assert.Contains(t, ids, int64(99)) // still in earshot, just has no onward exits
	assert.Contains(t, ids, int64(3))
}

func TestAdjacentRoomsMissingSourceErrors(t *testing.T) {
	r := newTestResolver(DefaultMufflingCost)

	_, err := r.AdjacentRooms(context.Background(), 1, 2)
	assert.ErrorIs(t, err, domain.ErrRoomNotFound)
}

func TestAdjacentRoomsZeroBudget(t *testing.T) {
	r := newTestResolver(DefaultMufflingCost, room(1, exit(domain.North, 2)), room(2))

	got, err := r.AdjacentRooms(context.Background(), 1, 0)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestAdjacentRoomsCycleTerminates(t *testing.T) {
	r := newTestResolver(DefaultMufflingCost,
		room(1, exit(domain.North, 2)),
		room(2, exit(domain.South, 1), exit(domain.North, 3)),
		room(3, exit(domain.South, 2), exit(domain.West, 1)),
	)

	got, err := r.AdjacentRooms(context.Background(), 1, 10)
	require.NoError(t, err)
	assert.Len(t, got, 2)
}
