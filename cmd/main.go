package main

import (
	"context"
	"expvar"
	"log"
	"runtime"
	"time"

	"github.com/hilthontt/embermud/internal/domain"
	"github.com/hilthontt/embermud/internal/infrastructure/configs"
	"github.com/hilthontt/embermud/internal/infrastructure/events"
	"github.com/hilthontt/embermud/internal/infrastructure/logging"
	"github.com/hilthontt/embermud/internal/infrastructure/messaging"
	"github.com/hilthontt/embermud/internal/infrastructure/ratelimiter"
	"github.com/hilthontt/embermud/internal/infrastructure/tracing"
	"github.com/hilthontt/embermud/internal/infrastructure/ws"
	"github.com/hilthontt/embermud/internal/persistence/db"
	"github.com/hilthontt/embermud/internal/persistence/repository"
	"github.com/hilthontt/embermud/internal/presentation/api"
	"github.com/hilthontt/embermud/internal/presentation/handler/gateway"
	"github.com/hilthontt/embermud/internal/presentation/handler/health"
	"github.com/hilthontt/embermud/internal/presentation/handler/notices"
	"github.com/hilthontt/embermud/internal/presentation/handler/rooms"
	"github.com/hilthontt/embermud/internal/world"
)

const (
	serviceName = "embermud-events"

	mongoConnectTimeout = 10 * time.Second
)

func main() {
	tracerCfg := tracing.NewDefaultConfig(serviceName)

	sh, err := tracing.InitTracer(tracerCfg)
	if err != nil {
		log.Fatalf("Failed to initialize the tracer: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	defer sh(ctx)

	logger := logging.NewLogger(logging.NewDefaultConfig())
	logger.Init()

	configPath := configs.DetermineConfigPath()
	cfg, err := configs.Load(configPath)
	if err != nil {
		log.Fatal(err)
	}

	roomRepository := newRoomRepository(ctx, cfg, logger)

	rabbitmq, err := messaging.NewRabbitMQ(&messaging.Config{
		URI:      cfg.RabbitMQ.URI,
		Exchange: cfg.RabbitMQ.Exchange,
	})
	if err != nil {
		log.Fatal(err)
	}
	defer rabbitmq.Close()

	logger.Info(logging.RabbitMQ, logging.Startup, "broker connected", map[logging.ExtraKey]any{
		"exchange": cfg.RabbitMQ.Exchange,
	})

	publisher := events.NewGameEventPublisher(rabbitmq, logger)
	resolver := world.NewResolver(roomRepository, logger, cfg.Sound.MufflingCost)
	propagator := world.NewPropagator(resolver, publisher, logger)

	wsCore := ws.NewCore(func() (events.SubscriberChannel, error) {
		return rabbitmq.ClientChannel()
	}, publisher, propagator, logger)
	go wsCore.Run(ctx)

	roomHandler := rooms.NewHandler(resolver)
	healthHandler := health.NewHandler().WithProbe("rabbitmq", rabbitmq.Connected)
	noticesHandler := notices.NewHandler(publisher)
	gatewayHandler := gateway.NewHandler(wsCore, logger)

	rl := ratelimiter.New(ratelimiter.Options{
		MaxRatePerSecond: cfg.RateLimiter.MaxRatePerSecond,
		MaxBurst:         cfg.RateLimiter.MaxBurst,
		SourceHeaderKey:  cfg.RateLimiter.SourceHeaderKey,
	})
	app := api.NewApplication(*cfg, *roomHandler, *healthHandler, *noticesHandler, *gatewayHandler, logger, rl)

	expvar.Publish("goroutines", expvar.Func(func() any {
		return runtime.NumGoroutine()
	}))

	mux := app.Mount()
	if err := app.Run(mux); err != nil {
		logger.Fatal(logging.General, logging.Shutdown, "server exited", map[logging.ExtraKey]any{
			logging.ErrorMessage: err.Error(),
		})
	}
}

// newRoomRepository connects to the world store, falling back to an empty
// in-memory repository so the event bus still runs without Mongo.
func newRoomRepository(ctx context.Context, cfg *configs.Config, logger logging.Logger) domain.RoomRepository {
	mongoCfg := &db.MongoConfig{
		URI:               cfg.World.MongoURI,
		Database:          cfg.World.MongoDatabase,
		ConnectionTimeout: mongoConnectTimeout,
	}

	client, err := db.NewMongoClient(ctx, mongoCfg)
	if err != nil {
		logger.Warn(logging.World, logging.ExternalService, "world store unavailable, using in-memory rooms", map[logging.ExtraKey]any{
			logging.ErrorMessage: err.Error(),
		})
		return repository.NewInMemoryRoomRepository()
	}

	database := db.GetDatabase(client, mongoCfg)
	if err := db.EnsureRoomIndexes(ctx, database); err != nil {
		logger.Warn(logging.World, logging.ExternalService, "failed to ensure room indexes", map[logging.ExtraKey]any{
			logging.ErrorMessage: err.Error(),
		})
	}

	return repository.NewMongoRoomRepository(database)
}
