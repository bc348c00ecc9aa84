package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"

	"violet-client/internal/app"
	"violet-client/internal/backend"
	"violet-client/internal/cache"
	"violet-client/internal/config"
	"violet-client/internal/events"
	"violet-client/internal/notify"
	rabbitmqClient "violet-client/internal/platform/rabbitmq"
	redisClient "violet-client/internal/platform/redis"
	"violet-client/internal/pkg/logger"
	"violet-client/internal/storage"
	"violet-client/internal/tracer"
)

type App struct {
	Config       *config.Config
	Logger       logger.ILogger
	Notifier     *notify.Queue
	Backend      *backend.Client
	Slots        storage.Slots
	Orchestrator *app.Orchestrator
	Redis        *redis.Client
	MQConn       *amqp.Connection
	Relay        *events.Relay

	shutdownTracer func(context.Context) error
	StartedAt      time.Time
}

func New(ctx context.Context) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config failed: %w", err)
	}
	return NewWithConfig(ctx, cfg)
}

// NewWithConfig wires every component from cfg. Resources opened before a
// failure are released.
func NewWithConfig(ctx context.Context, cfg *config.Config) (*App, error) {
	log := logger.NewZapLogger(logger.Options{
		FilePath: cfg.Log.FilePath,
		Console:  cfg.Log.Console,
		Debug:    cfg.Log.Debug,
	})
	a := &App{
		Config:    cfg,
		Logger:    log,
		StartedAt: time.Now(),
	}
	a.shutdownTracer = tracer.Init(cfg.Tracing, log)

	slots, redisCli, err := openSlots(ctx, cfg)
	if err != nil {
		_ = a.Close()
		return nil, err
	}
	a.Slots = slots
	a.Redis = redisCli

	a.Notifier = notify.NewQueue(cfg.UI.NotificationTTL.Duration)
	a.Backend = backend.NewClient(backend.Options{
		BaseURL: cfg.Backend.BaseURL,
		Timeout: cfg.Backend.Timeout.Duration,
		Logger:  log,
	})

	orchestrator, err := app.New(app.Options{
		Backend:           a.Backend,
		Slots:             slots,
		Notifier:          a.Notifier,
		Logger:            log,
		Lookup:            cache.NewLookup(cfg.UI.CacheTTL.Duration),
		LLMProvider:       cfg.Upload.LLMProvider,
		LLMModel:          cfg.Upload.LLMModel,
		Extension:         cfg.Upload.Extension,
		OpenUploadOnLogin: cfg.UI.OpenUploadOnLogin,
	})
	if err != nil {
		_ = a.Close()
		return nil, err
	}
	a.Orchestrator = orchestrator

	if cfg.RabbitMQ.Enabled {
		mqConn, err := rabbitmqClient.New(ctx, cfg.RabbitMQ.URL)
		if err != nil {
			_ = a.Close()
			return nil, err
		}
		a.MQConn = mqConn
		publisher := events.NewAMQPPublisher(mqConn, cfg.RabbitMQ.NotificationQueue, orchestrator.Username)
		a.Relay = events.NewRelay(publisher, 64, log)
		a.Relay.Start(context.Background())
		a.Notifier.Subscribe(a.Relay.Observe)
	}

	log.Info("Bootstrap", "client initialized", map[string]interface{}{
		"backend":  cfg.Backend.BaseURL,
		"storage":  cfg.Storage.Driver,
		"rabbitmq": cfg.RabbitMQ.Enabled,
	})
	return a, nil
}

func openSlots(ctx context.Context, cfg *config.Config) (storage.Slots, *redis.Client, error) {
	keys := storage.Keys{Token: cfg.Storage.TokenKey, Username: cfg.Storage.UsernameKey}
	switch cfg.Storage.Driver {
	case "memory":
		return storage.NewMemorySlots(keys), nil, nil
	case "redis":
		client, err := redisClient.New(ctx, cfg.Redis)
		if err != nil {
			return nil, nil, err
		}
		return storage.NewRedisSlots(client, cfg.Redis.Prefix, keys), client, nil
	default:
		slots, err := storage.NewBadgerSlots(cfg.Storage.Dir, keys)
		if err != nil {
			return nil, nil, err
		}
		return slots, nil, nil
	}
}

func (a *App) Close() error {
	var closeErr error
	if a.Notifier != nil {
		a.Notifier.Dismiss()
	}
	if a.Relay != nil {
		a.Relay.Close()
	}
	if a.MQConn != nil {
		if err := a.MQConn.Close(); err != nil && !errors.Is(err, amqp.ErrClosed) {
			closeErr = err
		}
	}
	if a.Slots != nil {
		if err := a.Slots.Close(); err != nil {
			closeErr = err
		}
	}
	if a.shutdownTracer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := a.shutdownTracer(ctx); err != nil {
			closeErr = err
		}
	}
	if a.Logger != nil {
		_ = a.Logger.Sync()
	}
	return closeErr
}
