// Package app wires configuration, storage and messaging shared by the
// server, scheduler and worker binaries.
package app

import (
	"context"
	"fmt"

	"github.com/segyhp/pledge-callcenter/internal/cache"
	"github.com/segyhp/pledge-callcenter/internal/config"
	"github.com/segyhp/pledge-callcenter/internal/messaging"
	"github.com/segyhp/pledge-callcenter/internal/repository"
	"github.com/segyhp/pledge-callcenter/internal/service"
	"github.com/segyhp/pledge-callcenter/pkg/logger"
	"github.com/segyhp/pledge-callcenter/pkg/metrics"
	"github.com/segyhp/pledge-callcenter/pkg/rabbitmq"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const templateCachePrefix = "callcenter:template:"

type App struct {
	Config     *config.Config
	Log        *logger.Logger
	DB         *sqlx.DB
	Redis      *redis.Client
	Metrics    *metrics.Metrics
	Producer   *rabbitmq.EventProducer
	Repos      service.Repositories
	Dispatcher *messaging.TemplateDispatcher
}

// New loads configuration and opens every connection the binaries share.
// Redis is optional: with REDIS_HOST empty templates are cached in memory.
func New(serviceName string) (*App, error) {
	if err := godotenv.Load(); err != nil {
		logrus.WithError(err).Debug(".env file not loaded")
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}

	a := &App{
		Config:  cfg,
		Log:     logger.New(serviceName, cfg.Logging.Level, cfg.Logging.Format),
		Metrics: metrics.New(prometheus.DefaultRegisterer),
	}

	if a.DB, err = initDB(cfg); err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	var templateCache cache.Cache = cache.NewInMemoryCache()
	if cfg.Redis.Host != "" {
		a.Redis = initRedis(cfg)
		if err := a.Redis.Ping(context.Background()).Err(); err != nil {
			a.Close()
			return nil, fmt.Errorf("connecting to redis: %w", err)
		}
		templateCache = cache.NewRedisCache(a.Redis, templateCachePrefix)
	}

	var publisher messaging.Publisher
	if cfg.QueuingEnabled() {
		a.Producer, err = rabbitmq.NewEventProducer(cfg.RabbitMQ.URL, a.Log.WithField("component", "producer"))
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("connecting to rabbitmq: %w", err)
		}
		publisher = a.Producer
	}

	donors := repository.NewDonorRepository(a.DB)
	templates := repository.NewCachedTemplateRepository(
		repository.NewTemplateRepository(a.DB),
		templateCache,
		cfg.Redis.TemplateTTL,
		a.Log.WithField("component", "template_cache"),
	)

	a.Repos = service.Repositories{
		Donors:      donors,
		Plans:       repository.NewPlanRepository(a.DB),
		Templates:   templates,
		CallQueue:   repository.NewCallQueueRepository(a.DB),
		MessageLogs: repository.NewMessageLogRepository(a.DB),
	}

	sms, whatsapp := messaging.NewTransports(cfg.Messaging)
	if !sms.Available() && !cfg.IsDevelopment() {
		a.Log.Warn("SMS gateway not configured; notifications will fail")
	}
	a.Dispatcher = messaging.NewTemplateDispatcher(
		templates,
		donors,
		sms,
		whatsapp,
		publisher,
		cfg.RabbitMQ.Exchange,
		a.Log.WithField("component", "dispatcher"),
	)

	a.Log.WithFields(logrus.Fields{
		"env":      cfg.Server.Env,
		"redis":    a.Redis != nil,
		"queueing": cfg.QueuingEnabled(),
		"whatsapp": a.Dispatcher.IsWhatsAppAvailable(),
	}).Info("dependencies initialized")

	return a, nil
}

// Close releases every open connection.
func (a *App) Close() {
	if a.Producer != nil {
		a.Producer.Close()
	}
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			a.Log.WithError(err).Warn("closing redis")
		}
	}
	if a.DB != nil {
		if err := a.DB.Close(); err != nil {
			a.Log.WithError(err).Warn("closing database")
		}
	}
}

func initDB(cfg *config.Config) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", cfg.Database.DSN())
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)

	return db, nil
}

func initRedis(cfg *config.Config) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
}
