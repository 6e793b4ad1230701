package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/hibiken/asynq"
	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"geo_feedback/internal/config"
	"geo_feedback/internal/domain/service/market"
	"geo_feedback/internal/domain/service/postal"
	"geo_feedback/internal/infrastructure/cache"
	"geo_feedback/internal/infrastructure/notifier"
	"geo_feedback/internal/infrastructure/persistence"
	"geo_feedback/internal/infrastructure/postalcsv"
	"geo_feedback/internal/infrastructure/tasks"
	"geo_feedback/internal/metrics"
	"geo_feedback/internal/server"
	"geo_feedback/internal/transport/bot"
	"geo_feedback/internal/transport/bot/handler"
	"geo_feedback/internal/worker"
	"geo_feedback/pkg/application/connectors"
	"geo_feedback/pkg/application/modules"
	"geo_feedback/pkg/contextx"
	"geo_feedback/pkg/dbtest"
	"geo_feedback/pkg/logx"
	"geo_feedback/pkg/probe"
)

var logger = contextx.LoggerFromContextOrDefault //nolint:gochecknoglobals

// Run поднимает все модули приложения и ждёт отмены контекста.
// Redis и Telegram подключаются, только если заданы в конфигурации.
func Run(ctx context.Context, cfg config.Config) error {
	ctx = contextx.WithLogger(ctx, logger(ctx).With(
		slog.String(logx.FieldAppName, cfg.App.Name),
		slog.String(logx.FieldAppVersion, cfg.App.Version),
	))

	// 1. Database
	db, closeDB, err := OpenDatabase(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer closeDB()

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("db ping: %w", err)
	}
	logger(ctx).Info("database connection OK", slog.String("driver", cfg.Database.Driver))

	// 2. Metrics
	collectors := metrics.New(prometheus.DefaultRegisterer)

	// 3. Services
	marketService := market.NewService(
		persistence.NewMarketRepository(db),
		persistence.NewFeedbackRepository(db),
		persistence.NewMutationSink(db),
	).
		WithSnapshotTTL(cfg.Cache.SnapshotTTL).
		WithRecorder(collectors)

	if cfg.Comments.StrictAuth {
		marketService = marketService.WithStrictAuth()
	}

	loader := postalcsv.NewLoader(cfg.Postal.CSVPath)
	if cfg.Postal.Windows1251 {
		loader = loader.WithWindows1251()
	}

	postalService, err := postal.LoadService(ctx, loader)
	if err != nil {
		return fmt.Errorf("postal service: %w", err)
	}
	postalService = postalService.WithRecorder(collectors)

	g, ctx := errgroup.WithContext(ctx)

	checks := []probe.Check{{Name: "database", Probe: db.PingContext}}

	// 4. Redis: кеш поиска и очередь инвалидации
	if cfg.Redis.Enabled() {
		rc := &connectors.Redis{
			Address:            cfg.Redis.Address,
			Username:           cfg.Redis.Username,
			Password:           cfg.Redis.Password,
			DatabaseNumber:     cfg.Redis.DatabaseNumber,
			PoolSize:           cfg.Redis.PoolSize,
			MinIdleConnections: cfg.Redis.MinIdleConns,
			MaxIdleConnections: cfg.Redis.MaxIdleConns,
		}
		defer rc.Close(ctx)

		checks = append(checks, probe.Check{Name: "redis", Probe: rc.Ping})

		closeTasks := runRedis(ctx, g, rc, cfg.Redis, cfg.Cache, marketService)
		defer closeTasks()
	}

	// 5. Telegram
	if cfg.Bot.Enabled() {
		if err := runTelegram(ctx, g, cfg.Bot, cfg.App, marketService, postalService); err != nil {
			return err
		}
	}

	// 6. Workers
	refresher := worker.NewSnapshotRefresher(marketService).WithSpec(cfg.Worker.RefreshSpec)
	g.Go(func() error {
		return ignoreCanceled(refresher.Run(ctx))
	})

	// 7. HTTP
	router := server.NewRouter(
		server.NewServer(
			server.NewMarketServer(marketService),
			server.NewPostalServer(postalService),
		),
		server.RouterOptions{
			SensitiveDataMasker: logx.NewSensitiveDataMasker(),
			LogFieldMaxLen:      cfg.HTTP.LogFieldMaxLen,
			Middlewares:         []func(http.Handler) http.Handler{collectors.RequestDuration},
		},
	)

	modules.HTTPServer{ShutdownTimeout: cfg.HTTP.ShutdownTimeout}.Run(ctx, g, &http.Server{
		//nolint:exhaustruct
		Addr:              cfg.HTTP.ListenAddress,
		Handler:           router,
		ReadHeaderTimeout: cfg.HTTP.ReadTimeout,
	})
	modules.ProbeServer{
		Name:          cfg.App.Name,
		Version:       cfg.App.Version,
		ListenAddress: cfg.Probe.ListenAddress,
		Checks:        checks,
	}.Run(ctx, g)
	modules.MetricServer{ListenAddress: cfg.Metrics.ListenAddress}.Run(ctx, g)

	if err := g.Wait(); err != nil {
		return fmt.Errorf("application: %w", err)
	}

	logger(ctx).Info("application stopping...")
	return nil
}

// OpenDatabase подключается к базе выбранного драйвера и применяет миграции из конфигурации.
func OpenDatabase(ctx context.Context, cfg config.Database) (*sqlx.DB, func(), error) {
	var (
		db      *sqlx.DB
		closeDB func()
	)

	switch cfg.Driver {
	case config.DriverPostgres:
		pg := &connectors.Postgres{
			DSN:             cfg.DSN,
			MaxOpenConns:    cfg.MaxOpenConns,
			MaxIdleConns:    cfg.MaxIdleConns,
			ConnMaxLifetime: cfg.ConnMaxLifetime,
		}
		db, closeDB = pg.Client(ctx), func() { pg.Close(ctx) }
	case config.DriverSQLite:
		lite := &connectors.SQLite{Path: cfg.DSN}
		db, closeDB = lite.Client(ctx), func() { lite.Close(ctx) }
	default:
		return nil, nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
	}

	if len(cfg.Migrations) > 0 {
		if err := dbtest.MigrateFromFile(ctx, db, cfg.Migrations...); err != nil {
			closeDB()
			return nil, nil, fmt.Errorf("migrate: %w", err)
		}
		logger(ctx).Info("migrations applied", slog.Int("count", len(cfg.Migrations)))
	}

	return db, closeDB, nil
}

func runRedis(
	ctx context.Context,
	g *errgroup.Group,
	rc *connectors.Redis,
	cfg config.Redis,
	cacheCfg config.Cache,
	marketService *market.Service,
) func() {
	nearbyCache := cache.NewNearbyCache(rc.Client(ctx))
	marketService.WithNearbyCache(nearbyCache, cacheCfg.NearbyTTL)

	// без очереди кеш сбрасывается прямо в запросе
	if !cfg.Tasks {
		marketService.WithInvalidator(nearbyCache)
		return func() {}
	}

	asynqClient := asynq.NewClient(asynq.RedisClientOpt{
		Addr:     cfg.Address,
		Username: cfg.Username,
		Password: cfg.Password,
		DB:       cfg.DatabaseNumber,
	})

	marketService.WithInvalidator(tasks.NewClient(asynqClient).WithQueue(cfg.Queue))

	modules.AsynqServer{
		RedisUsername: cfg.Username,
		RedisPassword: cfg.Password,
		RedisAddress:  cfg.Address,
		RedisDB:       cfg.DatabaseNumber,
	}.Run(ctx, g, modules.AsynqQueues{cfg.Queue: 1}, tasks.NewHandler(nearbyCache).Handlers()...)

	return func() {
		if err := asynqClient.Close(); err != nil {
			logger(ctx).Error("asynqClient.Close", logx.Error(err))
		}
	}
}

func runTelegram(
	ctx context.Context,
	g *errgroup.Group,
	cfg config.Bot,
	app config.App,
	marketService *market.Service,
	postalService *postal.Service,
) error {
	if cfg.ChatID != 0 {
		alertBot, err := notifier.NewTelegramBot(cfg.Token, cfg.ChatID)
		if err != nil {
			return fmt.Errorf("notifier bot: %w", err)
		}

		alertBot.WithStartupMessage(fmt.Sprintf("%s %s запущен", app.Name, app.Version))
		marketService.WithNotifier(alertBot)

		g.Go(func() error {
			return ignoreCanceled(alertBot.Run(ctx))
		})
	}

	postalBot, err := bot.New(cfg.Token, handler.New(postalService))
	if err != nil {
		return fmt.Errorf("postal bot: %w", err)
	}
	postalBot.WithAllowedChats(cfg.AllowedChats...)

	g.Go(func() error {
		return ignoreCanceled(postalBot.Run(ctx))
	})

	return nil
}

// ignoreCanceled штатная остановка по отмене контекста не считается ошибкой.
func ignoreCanceled(err error) error {
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
