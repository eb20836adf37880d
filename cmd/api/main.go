// @title                       QuickOrder Storefront API
// @version                     1.0
// @description                 Multi-tenant storefront: stores, catalog, orders and UPI payment links.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/quickorder/storefront/internal/api"
	"github.com/quickorder/storefront/internal/api/handler"
	"github.com/quickorder/storefront/internal/core/ports"
	"github.com/quickorder/storefront/internal/core/service"
	mongodb "github.com/quickorder/storefront/internal/infrastructure/db/mongo"
	redisdb "github.com/quickorder/storefront/internal/infrastructure/db/redis"
	"github.com/quickorder/storefront/internal/infrastructure/messaging/kafka"
	"github.com/quickorder/storefront/internal/infrastructure/queue"
	"github.com/quickorder/storefront/internal/pkg/config"
	"github.com/quickorder/storefront/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	envErr := godotenv.Load()

	cfg := config.Load()
	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "storefront",
	})
	if envErr != nil {
		log.Debug().Msg("no .env file found, using process environment")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	mongoClient, db, err := mongodb.Connect(ctx, mongodb.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to mongo")
	}
	if err := mongodb.EnsureIndexes(ctx, db); err != nil {
		log.Fatal().Err(err).Msg("failed to create mongo indexes")
	}

	rdb, err := redisdb.Connect(ctx, redisdb.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}

	var publisher ports.EventPublisher
	if len(cfg.Kafka.Brokers) > 0 {
		publisher = kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic, logger.For("kafka"))
	} else {
		log.Warn().Msg("KAFKA_BROKERS not set, order events will only be logged")
		publisher = kafka.NewLogPublisher(logger.For("events"))
	}

	// The dispatcher outlives the HTTP server so in-flight events drain.
	dispatchCtx, stopDispatch := context.WithCancel(context.Background())
	dispatcher := queue.NewDispatcher(cfg.Dispatcher.Workers, publisher, logger.For("dispatcher"))
	dispatcher.Start(dispatchCtx)

	// --- Repositories ---
	storeRepo := mongodb.NewStoreRepository(db)
	productRepo := mongodb.NewProductRepository(db, logger.For("products"))
	orderRepo := mongodb.NewOrderRepository(db, logger.For("orders"))
	identities := mongodb.NewIdentityProvider(db, cfg.Auth.MinPasswordLength)
	sessions := redisdb.NewSessionStore(rdb)
	idem := redisdb.NewIdempotencyStore(rdb, cfg.Redis.IdempotencyTTL)

	// --- Services ---
	resolver := service.NewIdentityResolver(storeRepo, service.RootAllowlist{
		Emails: cfg.Auth.RootEmails,
		Phones: cfg.Auth.RootPhones,
	}, logger.For("identity"))
	authService := service.NewAuthService(identities, sessions, resolver, service.AuthConfig{
		JWTSecret:         cfg.Auth.JWTSecret,
		SessionTTL:        cfg.Auth.SessionTTL,
		AuthorizedOrigins: cfg.Auth.AuthorizedOrigins,
	}, logger.For("auth"))

	e := api.NewRouter(api.Dependencies{
		Auth:       authService,
		Stores:     service.NewStoreService(storeRepo, logger.For("stores")),
		Catalog:    service.NewCatalogService(productRepo, logger.For("catalog")),
		Orders:     service.NewOrderService(orderRepo, productRepo, storeRepo, dispatcher, idem, logger.For("orders")),
		Navigation: service.NewNavigationService(storeRepo, logger.For("navigation")),
		Probes: []handler.Pinger{
			mongodb.NewPinger(mongoClient),
			redisdb.NewPinger(rdb),
		},
		AllowedOrigins: cfg.Auth.AuthorizedOrigins,
		Logger:         logger.For("http"),
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Str("port", cfg.Port).Msg("starting HTTP server")
		if err := e.Start(net.JoinHostPort("", cfg.Port)); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return e.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error().Err(err).Msg("server stopped with error")
	}

	stopDispatch()
	dispatcher.Wait()

	closeCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := publisher.Close(); err != nil {
		log.Error().Err(err).Msg("failed to close event publisher")
	}
	if err := rdb.Close(); err != nil {
		log.Error().Err(err).Msg("failed to close redis")
	}
	if err := mongoClient.Disconnect(closeCtx); err != nil {
		log.Error().Err(err).Msg("failed to disconnect mongo")
	}
	log.Info().Msg("server exited")
}
