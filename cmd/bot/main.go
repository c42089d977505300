package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"golang.org/x/time/rate"

	"github.com/central-university-dev/go-remu/internal/bot/cache"
	"github.com/central-university-dev/go-remu/internal/bot/clients/kafka"
	"github.com/central-university-dev/go-remu/internal/bot/engine"
	bothandler "github.com/central-university-dev/go-remu/internal/bot/handler"
	"github.com/central-university-dev/go-remu/internal/bot/repository"
	botservice "github.com/central-university-dev/go-remu/internal/bot/service"
	"github.com/central-university-dev/go-remu/internal/bot/telegram"
	"github.com/central-university-dev/go-remu/internal/clock"
	"github.com/central-university-dev/go-remu/internal/common/metrics"
	"github.com/central-university-dev/go-remu/internal/common/middleware"
	"github.com/central-university-dev/go-remu/internal/config"
	"github.com/central-university-dev/go-remu/internal/database"
	"github.com/central-university-dev/go-remu/internal/notify"
	"github.com/central-university-dev/go-remu/internal/scheduler"
	"github.com/central-university-dev/go-remu/pkg"
)

const outboundQueueSize = 256

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Ошибка запуска сервиса: %v\n", err)
		os.Exit(1)
	}
}

//nolint:funlen // Длина функции обусловлена необходимостью последовательной инициализации всех компонентов.
func run() error {
	appLogger := pkg.NewLogger(os.Stdout)

	cfg := config.LoadConfig()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := openStore(ctx, cfg, appLogger)
	if err != nil {
		return err
	}
	defer closeStore()

	eng := engine.NewEngine(store, cfg.WakeupDefault, appLogger)
	if err := eng.Restore(ctx); err != nil {
		return fmt.Errorf("ошибка восстановления состояний диалогов: %w", err)
	}

	notifier, err := notify.NewNotifierFactory(cfg, appLogger).CreateNotifier()
	if err != nil {
		return fmt.Errorf("ошибка создания нотификатора: %w", err)
	}

	var actorNotifier engine.Notifier
	if notifier != nil {
		actorNotifier = notifier

		defer func() {
			if err := notifier.Close(); err != nil {
				appLogger.Error("Ошибка при закрытии нотификатора", "error", err)
			}
		}()
	}

	outbound := make(chan engine.Outbound, outboundQueueSize)
	actor := engine.NewActor(eng, clock.NewReal(), cfg.InboundQueueSize, outbound, actorNotifier, appLogger)

	actorDone := make(chan error, 1)

	go func() {
		actorDone <- actor.Run(ctx)
	}()

	tickScheduler := scheduler.NewScheduler(actor, cfg.SchedulerCheckInterval, appLogger)
	tickScheduler.Start()

	defer tickScheduler.Stop()

	if cfg.TelegramBotToken != "" {
		if err := startTelegram(ctx, cfg, actor, outbound, appLogger); err != nil {
			return err
		}
	} else {
		appLogger.Warn("Токен Telegram не задан, ответы пишутся только в журнал")

		go logOutbound(ctx, outbound, appLogger)
	}

	if cfg.InboundKafkaEnabled {
		kafkaConsumer := kafka.NewConsumer(
			strings.Split(cfg.KafkaBrokers, ","),
			"remu-bot",
			cfg.TopicInboundCommands,
			cfg.TopicDeadLetterQueue,
			cfg.DefaultUTCOffset,
			actor,
			appLogger,
		)

		kafkaConsumer.Start(ctx)
		appLogger.Info("Kafka консьюмер успешно запущен")

		defer func() {
			if err := kafkaConsumer.Close(); err != nil {
				appLogger.Error("Ошибка при закрытии Kafka консьюмера", "error", err)
			}
		}()
	}

	metricsServer := metrics.NewServer(cfg.BotMetricsPort, func() error {
		select {
		case <-actor.Done():
			return engine.ErrActorStopped
		default:
			return nil
		}
	}, appLogger)

	go func() {
		if err := metricsServer.Start(ctx); err != nil {
			appLogger.Error("Ошибка сервера метрик", "error", err)
		}
	}()

	httpServer := &http.Server{
		Addr: ":" + strconv.Itoa(cfg.BotServerPort),
		Handler: bothandler.NewRouter(
			bothandler.NewBotHandler(actor, cfg.DefaultUTCOffset, appLogger),
			middleware.NewMetricsMiddleware("bot").Middleware,
			middleware.NewRateLimiterMiddleware(ctx, cfg.RateLimitRequests, cfg.RateLimitWindow, appLogger).Middleware,
		),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		appLogger.Info("Запуск HTTP сервера бота", "port", cfg.BotServerPort)

		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Error("Ошибка при запуске HTTP сервера", "error", err)
			stop()
		}
	}()

	var runErr error

	select {
	case <-ctx.Done():
		appLogger.Info("Получен сигнал завершения")
	case runErr = <-actorDone:
		appLogger.Error("Актор завершился раньше времени", "error", runErr)
		stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("Ошибка при остановке HTTP сервера", "error", err)
	}

	if runErr == nil {
		select {
		case <-actor.Done():
		case <-shutdownCtx.Done():
			appLogger.Warn("Актор не успел остановиться")
		}
	}

	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		return fmt.Errorf("актор остановлен с ошибкой: %w", runErr)
	}

	appLogger.Info("Сервис успешно остановлен")

	return nil
}

// openStore builds the event store on the configured backend and wraps it in
// the Redis listing cache when enabled.
func openStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (engine.Store, func(), error) {
	var (
		postgresDB *database.PostgresDB
		sqliteDB   *database.SQLiteDB
		closers    []func()
	)

	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	switch cfg.StorageBackend {
	case config.PostgresStorage:
		if cfg.MigrationsAutoApply {
			if err := database.ApplyMigrations(cfg.DatabaseURL, cfg.MigrationsPath, logger); err != nil {
				return nil, nil, fmt.Errorf("ошибка применения миграций: %w", err)
			}
		}

		db, err := database.NewPostgresDB(ctx, cfg, logger)
		if err != nil {
			logger.Error("Ошибка при подключении к базе данных", "error", err)
			return nil, nil, fmt.Errorf("ошибка подключения к базе данных: %w", err)
		}

		postgresDB = db
		closers = append(closers, db.Close)
	case config.SQLiteStorage:
		db, err := database.NewSQLiteDB(cfg.SQLitePath, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("ошибка открытия SQLite: %w", err)
		}

		sqliteDB = db
		closers = append(closers, func() {
			if err := db.Close(); err != nil {
				logger.Error("Ошибка при закрытии SQLite", "error", err)
			}
		})
	}

	repos, err := repository.NewFactory(postgresDB, sqliteDB, cfg, logger).CreateRepositories()
	if err != nil {
		closeAll()
		return nil, nil, fmt.Errorf("ошибка создания репозиториев: %w", err)
	}

	eventStore := botservice.NewEventStore(repos.Users, repos.Active, repos.Templates, repos.TxManager, logger)

	if !cfg.RedisEnabled {
		return eventStore, closeAll, nil
	}

	listingCache, err := cache.NewRedisListingCache(cfg.RedisURL, cfg.RedisPassword, cfg.RedisDB, cfg.RedisCacheTTL, logger)
	if err != nil {
		logger.Error("Ошибка при подключении к Redis, кэш отключён", "error", err)
		return eventStore, closeAll, nil
	}

	closers = append(closers, func() {
		if err := listingCache.Close(); err != nil {
			logger.Error("Ошибка при закрытии соединения с Redis", "error", err)
		}
	})

	logger.Info("Кэш Redis успешно инициализирован")

	return botservice.NewCachedEventStore(eventStore, listingCache, logger), closeAll, nil
}

func startTelegram(
	ctx context.Context,
	cfg *config.Config,
	actor *engine.Actor,
	outbound <-chan engine.Outbound,
	logger *slog.Logger,
) error {
	bot, err := telegram.NewBotAPI(cfg.TelegramBotToken, "")
	if err != nil {
		return err
	}

	client := telegram.NewClient(bot, logger)
	if err := client.SetMyCommands(telegram.DefaultCommands); err != nil {
		logger.Error("Ошибка при регистрации команд бота", "error", err)
	}

	userLimiter := middleware.NewKeyedLimiter(ctx, rate.Limit(cfg.UserRateLimit), cfg.UserRateBurst)
	poller := telegram.NewPoller(client, actor, userLimiter, cfg.DefaultUTCOffset, logger)

	go telegram.NewRenderer(client, logger).Run(ctx, outbound)
	go poller.Run(ctx)

	return nil
}

func logOutbound(ctx context.Context, outbound <-chan engine.Outbound, logger *slog.Logger) {
	for {
		select {
		case <-ctx.Done():
			return
		case out := <-outbound:
			for _, cmd := range out.Commands {
				logger.Info("Исходящая команда",
					"uid", out.UID,
					"chat_id", out.ChatID,
					"kind", cmd.Kind,
					"text", cmd.Text,
				)
			}
		}
	}
}
