package newspaperbackend

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/newspaper-backend/internal/cache"
	"github.com/magabrotheeeer/newspaper-backend/internal/config"
	"github.com/magabrotheeeer/newspaper-backend/internal/migrations"
	"github.com/magabrotheeeer/newspaper-backend/internal/paymentprovider"
	"github.com/magabrotheeeer/newspaper-backend/internal/rabbitmq"
	articleservice "github.com/magabrotheeeer/newspaper-backend/internal/services/article"
	entitlementservice "github.com/magabrotheeeer/newspaper-backend/internal/services/entitlement"
	notificationservice "github.com/magabrotheeeer/newspaper-backend/internal/services/notification"
	sweeperservice "github.com/magabrotheeeer/newspaper-backend/internal/services/sweeper"
	userservice "github.com/magabrotheeeer/newspaper-backend/internal/services/user"
	"github.com/magabrotheeeer/newspaper-backend/internal/storage/repository"
	"github.com/magabrotheeeer/newspaper-backend/internal/ws"
)

type App struct {
	server  *http.Server
	logger  *slog.Logger
	db      *repository.Storage
	hub     *ws.Hub
	sweeper *sweeperservice.Service
	amqp    *amqp.Connection
	amqpCh  *amqp.Channel
}

func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, err
	}
	if err = migrations.Run(db.DB, cfg.MigrationsPath); err != nil {
		return nil, err
	}

	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		return nil, err
	}

	conn, err := rabbitmq.Connect(cfg.RabbitMQURL, cfg.RabbitMQMaxRetries, cfg.RabbitMQRetryDelay)
	if err != nil {
		return nil, err
	}
	ch, err := rabbitmq.SetupChannel(conn)
	if err != nil {
		_ = conn.Close()
		return nil, err
	}

	hub := ws.NewHub(logger)

	entitlementService := entitlementservice.NewService(db, logger)
	notificationService := notificationservice.New(db, hub, logger)
	userService := userservice.New(db, notificationService, logger)
	articleService := articleservice.New(db, cacheRedis, logger)
	sweeperService := sweeperservice.New(db, rabbitmq.ChannelPublisher{Ch: ch}, logger, cfg.SweepInterval)
	providerClient := paymentprovider.NewClient(cfg.PaymentSecretKey)

	router := chi.NewRouter()
	RegisterRoutes(router, logger, hub, db,
		userService, entitlementService, articleService, notificationService,
		providerClient, cfg.PaymentCurrency)

	srv := &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &App{
		server:  srv,
		logger:  logger,
		db:      db,
		hub:     hub,
		sweeper: sweeperService,
		amqp:    conn,
		amqpCh:  ch,
	}, nil
}

func (a *App) Run(ctx context.Context) error {
	go a.hub.Run(ctx)
	go a.sweeper.Run(ctx)

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		if closeErr := a.amqpCh.Close(); closeErr != nil {
			a.logger.Error("failed to close RabbitMQ channel", slog.Any("err", closeErr))
		}
		if closeErr := a.amqp.Close(); closeErr != nil {
			a.logger.Error("failed to close RabbitMQ connection", slog.Any("err", closeErr))
		}
		_ = a.db.DB.Close()
		return err
	}
}
