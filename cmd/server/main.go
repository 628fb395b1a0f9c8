package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/stampkit/modules/billing"
	"github.com/dmitrymomot/stampkit/modules/loyalty"
	"github.com/dmitrymomot/stampkit/pkg/blob"
	"github.com/dmitrymomot/stampkit/pkg/config"
	"github.com/dmitrymomot/stampkit/pkg/email"
	"github.com/dmitrymomot/stampkit/pkg/environment"
	"github.com/dmitrymomot/stampkit/pkg/httpserver"
	"github.com/dmitrymomot/stampkit/pkg/locker"
	"github.com/dmitrymomot/stampkit/pkg/logger"
	"github.com/dmitrymomot/stampkit/pkg/mongo"
	"github.com/dmitrymomot/stampkit/pkg/redis"
	"github.com/dmitrymomot/stampkit/pkg/requestid"
	"github.com/dmitrymomot/stampkit/storage/logos"
	"github.com/dmitrymomot/stampkit/storage/mongodb"
	billingsvc "github.com/dmitrymomot/stampkit/svc/billing"
	loyaltysvc "github.com/dmitrymomot/stampkit/svc/loyalty"
	"github.com/dmitrymomot/stampkit/svc/notification"
)

type appConfig struct {
	AppEnv      string `env:"APP_ENV" envDefault:"development"`
	ServiceName string `env:"SERVICE_NAME" envDefault:"stampkit"`
	Database    string `env:"MONGODB_DATABASE" envDefault:"stampkit"`
	PlansFile   string `env:"PLANS_FILE" envDefault:"plans.yaml"`
	UpgradeURL  string `env:"UPGRADE_URL"`
	// EmailDevDir, when set, writes outgoing emails to disk instead of Postmark.
	EmailDevDir string `env:"EMAIL_DEV_DIR"`
	LockPrefix  string `env:"LOCK_PREFIX" envDefault:"stampkit"`
}

func main() {
	ctx := context.Background()

	var cfg appConfig
	config.MustLoad(&cfg)

	log := logger.New(
		logger.WithEnvironment(cfg.AppEnv, cfg.ServiceName),
		logger.WithContextExtractors(
			requestid.LoggerExtractor(),
			environment.LoggerExtractor(),
		),
	)
	logger.SetAsDefault(log)

	var mongoCfg mongo.Config
	config.MustLoad(&mongoCfg)
	db, err := mongo.NewWithDatabase(ctx, mongoCfg, cfg.Database)
	if err != nil {
		log.Error("failed to connect to mongodb", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() { _ = db.Client().Disconnect(context.Background()) }()

	store := mongodb.New(db)
	if err := store.EnsureIndexes(ctx); err != nil {
		log.Error("failed to ensure mongodb indexes", slog.Any("error", err))
		os.Exit(1)
	}

	var redisCfg redis.Config
	config.MustLoad(&redisCfg)
	redisClient, err := redis.Connect(ctx, redisCfg)
	if err != nil {
		log.Error("failed to connect to redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() { _ = redisClient.Close() }()

	locks, err := locker.NewRedisLocker(redisClient, cfg.LockPrefix)
	if err != nil {
		log.Error("failed to create redis locker", slog.Any("error", err))
		os.Exit(1)
	}

	var blobCfg blob.Config
	config.MustLoad(&blobCfg)
	blobs, err := blob.New(ctx, blobCfg)
	if err != nil {
		log.Error("failed to create blob storage", slog.Any("error", err))
		os.Exit(1)
	}

	var emailCfg email.Config
	config.MustLoad(&emailCfg)
	var sender email.EmailSender
	if cfg.EmailDevDir != "" {
		sender = email.NewDevSender(cfg.EmailDevDir)
	} else {
		sender = email.MustNewPostmarkClient(emailCfg)
	}
	notifier := notification.NewUsageNotifier(sender, cfg.UpgradeURL, log)

	loyaltySvc := loyaltysvc.NewService(store, store, store, store, store, locks,
		loyaltysvc.WithUsageNotifier(notifier),
		loyaltysvc.WithLogoStorage(logos.New(blobs)),
		loyaltysvc.WithLogger(log),
	)

	var paddleCfg billingsvc.PaddleConfig
	config.MustLoad(&paddleCfg)
	provider, err := billingsvc.NewPaddleProvider(paddleCfg)
	if err != nil {
		log.Error("failed to create billing provider", slog.Any("error", err))
		os.Exit(1)
	}

	plans := billingsvc.NewFileSource(cfg.PlansFile)
	if _, err := plans.Load(ctx); err != nil {
		log.Error("failed to load plan catalog", slog.Any("error", err))
		os.Exit(1)
	}

	billingSvc := billingsvc.NewService(provider, plans, store)
	reconciler := billingsvc.NewReconciler(store, locks,
		billingsvc.WithPlanSource(plans),
		billingsvc.WithReconcilerLogger(log),
	)

	r := chi.NewRouter()
	r.Use(requestid.Middleware)
	r.Use(environment.Middleware(environment.Environment(cfg.AppEnv)))

	r.Get("/health", httpserver.HealthCheckHandler(ctx, log,
		mongo.Healthcheck(db.Client()),
		redis.Healthcheck(redisClient),
	))
	r.Mount("/api/loyalty", loyalty.NewModule(loyaltySvc, log).Handle())
	r.Mount("/api/billing", billing.NewModule(billingSvc, provider, reconciler, log).Handle())

	var httpCfg httpserver.Config
	config.MustLoad(&httpCfg)
	srv := httpserver.NewFromConfig(httpCfg,
		httpserver.WithLogger(log),
		httpserver.WithStartHook(func(l *slog.Logger) {
			l.Info("server started", slog.String("addr", httpCfg.Addr))
		}),
		httpserver.WithStopHook(func(l *slog.Logger) {
			l.Info("server stopped")
		}),
	)

	if err := srv.Run(ctx, r); err != nil {
		log.Error("server exited with error", slog.Any("error", err))
		os.Exit(1)
	}
}
