package db

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/hilthontt/embermud/internal/infrastructure/env"
)

const (
	// RoomsCollection holds the world connectivity graph. The world service
	// writes it; this service only reads.
	RoomsCollection = "rooms"

	DefaultDatabase          = "embermud"
	DefaultConnectionTimeout = 20 * time.Second

	appName = "embermud-events"
)

type MongoConfig struct {
	URI               string
	Database          string
	ConnectionTimeout time.Duration
}

func NewMongoDefaultConfig() *MongoConfig {
	return &MongoConfig{
		URI:               env.GetString("MONGODB_URI", "mongodb://localhost:27017"),
		Database:          env.GetString("MONGODB_DATABASE", DefaultDatabase),
		ConnectionTimeout: DefaultConnectionTimeout,
	}
}

// NewMongoClient connects and verifies the server is reachable. Reads prefer
// secondaries: room data is written elsewhere and slightly stale connectivity
// is harmless to sound propagation.
func NewMongoClient(ctx context.Context, cfg *MongoConfig) (*mongo.Client, error) {
	if cfg == nil {
		return nil, fmt.Errorf("mongodb config is required")
	}
	if cfg.URI == "" {
		return nil, fmt.Errorf("mongodb URI is required")
	}
	if cfg.Database == "" {
		return nil, fmt.Errorf("mongodb database is required")
	}

	connectCtx, cancel := context.WithTimeout(ctx, cfg.ConnectionTimeout)
	defer cancel()

	clientOpts := options.Client().
		ApplyURI(cfg.URI).
		SetAppName(appName).
		SetReadPreference(readpref.SecondaryPreferred()).
		SetServerSelectionTimeout(cfg.ConnectionTimeout).
		SetConnectTimeout(cfg.ConnectionTimeout)

	client, err := mongo.Connect(connectCtx, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	pingCtx, pingCancel := context.WithTimeout(ctx, cfg.ConnectionTimeout)
	defer pingCancel()

	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	return client, nil
}

func GetDatabase(client *mongo.Client, cfg *MongoConfig) *mongo.Database {
	if client == nil || cfg == nil {
		return nil
	}
	return client.Database(cfg.Database)
}

// EnsureRoomIndexes creates the indexes room lookups depend on. Safe to call
// on every startup; Mongo treats existing indexes as a no-op.
func EnsureRoomIndexes(ctx context.Context, database *mongo.Database) error {
	if database == nil {
		return nil
	}

	_, err := database.Collection(RoomsCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "zone_id", Value: 1}},
	})
	if err != nil {
		return fmt.Errorf("failed to ensure room indexes: %w", err)
	}

	return nil
}

func DisconnectMongo(ctx context.Context, client *mongo.Client) error {
	if client == nil {
		return nil
	}

	disconnectCtx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	if err := client.Disconnect(disconnectCtx); err != nil {
		return fmt.Errorf("failed to disconnect from mongodb: %w", err)
	}

	return nil
}
