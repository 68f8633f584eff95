package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	notifyhub "github.com/dmitrymomot/notifyhub"
	"github.com/dmitrymomot/notifyhub/modules/notify"
	"github.com/dmitrymomot/notifyhub/pkg/config"
	"github.com/dmitrymomot/notifyhub/pkg/httpserver"
	"github.com/dmitrymomot/notifyhub/pkg/logger"
	"github.com/dmitrymomot/notifyhub/pkg/mailer"
	"github.com/dmitrymomot/notifyhub/pkg/mongo"
	"github.com/dmitrymomot/notifyhub/pkg/pg"
	"github.com/dmitrymomot/notifyhub/pkg/pubsub"
	"github.com/dmitrymomot/notifyhub/pkg/queue"
	"github.com/dmitrymomot/notifyhub/pkg/redis"
	"github.com/dmitrymomot/notifyhub/pkg/sessiontrack"
)

const serviceName = "notifyd"

type appConfig struct {
	Env           string `env:"APP_ENV" envDefault:"development"`
	StorageDriver string `env:"STORAGE_DRIVER" envDefault:"memory"` // memory, postgres, mongo
	RedisEnabled  bool   `env:"REDIS_ENABLED" envDefault:"false"`

	HTTP   httpserver.Config
	Queue  queue.Config
	Notify notify.Config
	Mailer mailer.Config
}

func main() {
	if err := run(); err != nil {
		slog.Error("service terminated", logger.Error(err))
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var cfg appConfig
	config.MustLoad(&cfg)

	log := logger.New(logger.WithEnvironment(cfg.Env, serviceName))
	logger.SetAsDefault(log)

	registry := sessiontrack.NewRegistry()
	lifecycle := sessiontrack.NewEventHandler(registry, sessiontrack.WithLogger(log))
	hub := pubsub.NewHub()
	defer hub.Close()

	var publisher pubsub.Publisher = hub
	var readiness []func(context.Context) error

	if cfg.RedisEnabled {
		var redisCfg redis.Config
		config.MustLoad(&redisCfg)
		redisClient, err := redis.Connect(ctx, redisCfg)
		if err != nil {
			return fmt.Errorf("connect redis: %w", err)
		}
		defer redisClient.Close()
		publisher = pubsub.NewMultiPublisher(
			[]pubsub.Publisher{hub, pubsub.NewRedisPublisher(redisClient)},
			pubsub.WithMultiPublisherLogger(log),
		)
		readiness = append(readiness, redis.Healthcheck(redisClient))
	}

	var (
		store     notify.Storage
		directory notify.Directory
		queueRepo interface {
			queue.EnqueuerRepository
			queue.WorkerRepository
		}
	)

	switch cfg.StorageDriver {
	case "memory":
		mem := notify.NewMemoryStorage()
		mem.AddRole(notify.Role{Name: notify.AdminRoleName})
		mem.AddRole(notify.Role{Name: "ROLE_USER"})
		store, directory = mem, mem
		queueRepo = queue.NewMemoryStorage()

	case "postgres", "mongo":
		var pgCfg pg.Config
		config.MustLoad(&pgCfg)
		pool, err := pg.Connect(ctx, pgCfg)
		if err != nil {
			return fmt.Errorf("connect postgres: %w", err)
		}
		defer pool.Close()
		if err := pg.Migrate(ctx, pool, notifyhub.Migrations, pgCfg, log); err != nil {
			return fmt.Errorf("apply migrations: %w", err)
		}
		readiness = append(readiness, pg.Healthcheck(pool))

		pgStore := notify.NewPGStorage(pool)
		store, directory = pgStore, pgStore
		queueRepo, err = queue.NewPGStorage(pool)
		if err != nil {
			return fmt.Errorf("create queue storage: %w", err)
		}

		// The mongo driver keeps members, roles, and the task queue
		// relational; only notification records move to MongoDB.
		if cfg.StorageDriver == "mongo" {
			var mongoCfg mongo.Config
			config.MustLoad(&mongoCfg)
			db, err := mongo.NewWithDatabase(ctx, mongoCfg)
			if err != nil {
				return fmt.Errorf("connect mongo: %w", err)
			}
			defer db.Client().Disconnect(context.Background())
			readiness = append(readiness, mongo.Healthcheck(db.Client()))
			store = notify.NewMongoStorage(db)
		}

	default:
		return fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}

	enqueuer, err := queue.NewEnqueuer(queueRepo, queue.WithDefaultQueue(cfg.Notify.EmailQueueName))
	if err != nil {
		return fmt.Errorf("create enqueuer: %w", err)
	}

	svc := notify.NewService(store, directory, registry, publisher,
		notify.WithLogger(log),
		notify.WithSummaryLength(cfg.Notify.SummaryLength),
	)
	producer := notify.NewProducer(enqueuer, cfg.Notify.EmailQueueName)

	var sender mailer.EmailSender
	if cfg.Mailer.PostmarkServerToken != "" {
		sender, err = mailer.NewPostmarkClient(cfg.Mailer)
		if err != nil {
			return fmt.Errorf("create postmark client: %w", err)
		}
	} else {
		log.Info("postmark not configured, writing emails to disk",
			slog.String("dir", cfg.Mailer.DevOutputDir))
		sender = mailer.NewDevSender(cfg.Mailer.DevOutputDir)
	}

	consumer := notify.NewConsumer(svc, sender, notify.WithConsumerLogger(log))

	worker, err := queue.NewWorker(queueRepo,
		queue.WithQueues(cfg.Notify.EmailQueueName),
		queue.WithPullInterval(cfg.Queue.PollInterval),
		queue.WithLockTimeout(cfg.Queue.LockTimeout),
		queue.WithMaxConcurrentTasks(cfg.Queue.MaxConcurrentTasks),
		queue.WithWorkerLogger(log),
	)
	if err != nil {
		return fmt.Errorf("create worker: %w", err)
	}
	worker.RegisterHandlers(consumer.Handler())

	handler := notify.NewHandler(svc, producer, log)
	wsHandler := notify.NewWSHandler(hub, lifecycle, log)

	r := chi.NewRouter()
	r.Use(middleware.RealIP, middleware.Recoverer)
	r.Get("/healthz", httpserver.HealthCheckHandler(ctx, log))
	r.Get("/readyz", httpserver.HealthCheckHandler(ctx, log, readiness...))
	r.Mount("/", notify.Router(handler, wsHandler))

	srv := httpserver.NewFromConfig(cfg.HTTP,
		httpserver.WithLogger(log),
		httpserver.WithStartHook(func(l *slog.Logger) {
			l.Info("server listening", slog.String("addr", cfg.HTTP.Addr))
		}),
		httpserver.WithStopHook(func(l *slog.Logger) {
			l.Info("server stopped")
		}),
	)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(worker.Run(ctx))
	g.Go(func() error { return srv.Run(ctx, r) })

	return g.Wait()
}
