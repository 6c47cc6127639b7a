package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/hilthontt/embermud/internal/domain"
	"github.com/hilthontt/embermud/internal/persistence/db"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// MongoRoomRepository reads room connectivity from the world database. The
// world-building pipeline owns writes; the messaging service only resolves
// exits, so the surface is read-only.
type MongoRoomRepository struct {
	collection *mongo.Collection
}

func NewMongoRoomRepository(database *mongo.Database) *MongoRoomRepository {
	return &MongoRoomRepository{
		collection: database.Collection(db.RoomsCollection),
	}
}

func (r *MongoRoomRepository) GetByID(ctx context.Context, id int64) (*domain.Room, error) {
	var room domain.Room

	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&room)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrRoomNotFound
		}
		return nil, fmt.Errorf("failed to load room %d: %w", id, err)
	}

	return &room, nil
}

// InMemoryRoomRepository holds a fixed world map. Used by tests and by
// standalone runs without a world database.
type InMemoryRoomRepository struct {
	rooms map[int64]*domain.Room
}

func NewInMemoryRoomRepository(rooms ...*domain.Room) *InMemoryRoomRepository {
	m := make(map[int64]*domain.Room, len(rooms))
	for _, room := range rooms {
		m[room.ID] = room
	}
	return &InMemoryRoomRepository{rooms: m}
}

func (r *InMemoryRoomRepository) GetByID(ctx context.Context, id int64) (*domain.Room, error) {
	room, ok := r.rooms[id]
	if !ok {
		return nil, domain.ErrRoomNotFound
	}
	return room, nil
}
