package serve

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/set-night/postrelay"
	"github.com/set-night/postrelay/internal/classify"
	"github.com/set-night/postrelay/internal/config"
	"github.com/set-night/postrelay/internal/directory"
	"github.com/set-night/postrelay/internal/handler"
	"github.com/set-night/postrelay/internal/middleware"
	"github.com/set-night/postrelay/internal/repository"
	"github.com/set-night/postrelay/internal/service"
	"github.com/set-night/postrelay/internal/telegram"
)

func run(parent context.Context, cfg *config.Config) error {
	// Setup structured logging
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	}))
	slog.SetDefault(logger)

	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Directory store
	rdb, err := directory.NewRedisClient(ctx, cfg.RedisURL)
	if err != nil {
		return err
	}
	defer rdb.Close()
	store := directory.NewRedisStore(rdb)
	dir := directory.New(store)

	// Proposal ledger
	var ledger service.ProposalLedger
	if cfg.DatabaseURL != "" {
		pool, err := repository.NewPool(ctx, cfg.DatabaseURL, repository.PoolOptions{
			MaxConns: int32(cfg.FanoutConcurrency + 2),
		})
		if err != nil {
			return fmt.Errorf("connect to database: %w", err)
		}
		defer pool.Close()

		migrationsFS, err := fs.Sub(postrelay.MigrationsFS, "migrations")
		if err != nil {
			return fmt.Errorf("load embedded migrations: %w", err)
		}
		if err := repository.RunMigrations(cfg.DatabaseURL, migrationsFS); err != nil {
			return err
		}
		ledger = repository.NewProposalRepository(pool)
	} else {
		slog.Warn("DATABASE_URL is not set, proposals are kept in memory")
		ledger = repository.NewMemoryProposals()
	}

	// Sessions
	var sessions service.SessionStore
	var memSessions *repository.MemorySessions
	switch cfg.SessionBackend {
	case "redis":
		sessions = repository.NewRedisSessions(rdb, cfg.SessionTTL)
	default:
		memSessions = repository.NewMemorySessions(cfg.SessionTTL)
		sessions = memSessions
	}

	classifier, err := classify.New(classify.Config{
		Backend:         cfg.Classifier,
		OpenRouterKey:   cfg.OpenRouterKey,
		OpenRouterModel: cfg.OpenRouterModel,
		AnthropicKey:    cfg.AnthropicKey,
		AnthropicModel:  cfg.AnthropicModel,
		AnthropicURL:    cfg.AnthropicBaseURL,
	})
	if err != nil {
		return fmt.Errorf("create classifier: %w", err)
	}

	var tgLogger *telegram.TelegramLogger

	opts := botOptions(
		repository.NewRateCounter(rdb),
		cfg.RateLimitPerMinute,
		func(err error) { tgLogger.LogError(err, "handler panic") },
	)

	b, err := bot.New(cfg.BotToken, opts...)
	if err != nil {
		return fmt.Errorf("create bot: %w", err)
	}

	// Get bot info
	me, err := b.GetMe(ctx)
	if err != nil {
		return fmt.Errorf("get bot info: %w", err)
	}
	slog.Info("bot info retrieved", "id", me.ID, "username", me.Username)

	if cfg.DropPendingUpdates {
		if _, err := b.DeleteWebhook(ctx, &bot.DeleteWebhookParams{DropPendingUpdates: true}); err != nil {
			slog.Warn("failed to drop pending updates", "error", err)
		}
	}

	tgLogger = telegram.NewTelegramLogger(b, telegram.LogChat{
		ChatID:       cfg.LogTelegramChatID,
		TopicError:   cfg.LogTopicError,
		TopicPublish: cfg.LogTopicPublish,
	})

	messenger := telegram.NewMessenger(b)
	dispatcher := service.NewDispatcher(dir, classifier, messenger, ledger, service.DispatcherOptions{
		Concurrency:     cfg.FanoutConcurrency,
		ClassifyTimeout: cfg.ClassifyTimeout,
	})

	h := handler.New(handler.Deps{
		Bot: b,
		Conversation: service.NewConversation(
			sessions,
			service.NewPermissionResolver(dir, messenger),
			dir,
			dispatcher,
		),
		Publisher: service.NewPublisher(dir, messenger, ledger),
		TgLogger:  tgLogger,
	})
	h.Register()

	go (&janitor{ledger: ledger, retention: cfg.ProposalRetention, sessions: memSessions}).run(ctx)

	slog.Info("starting bot", "username", me.Username, "id", me.ID)
	b.Start(ctx)

	slog.Info("bot stopped gracefully")
	return nil
}

// botOptions configures update processing. Handlers run one at a time in
// the order updates arrive, so a user's transitions never overlap or
// reorder.
func botOptions(counter middleware.RateCounter, rateLimit int, onPanic func(error)) []bot.Option {
	return []bot.Option{
		bot.WithNotAsyncHandlers(),
		bot.WithMiddlewares(
			middleware.Recover(onPanic),
			middleware.Logging(),
			middleware.RateLimit(counter, rateLimit),
		),
		bot.WithDefaultHandler(func(_ context.Context, _ *bot.Bot, update *models.Update) {
			slog.Debug("unhandled update", "update_id", update.ID)
		}),
	}
}

// janitor drops ledger entries older than retention and expired in-memory
// sessions. sessions is nil when they live in Redis.
type janitor struct {
	ledger    service.ProposalLedger
	retention time.Duration
	sessions  *repository.MemorySessions
}

func (j *janitor) run(ctx context.Context) {
	ticker := time.NewTicker(config.ProposalCleanup)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			j.once(time.Now())
		}
	}
}

func (j *janitor) once(now time.Time) {
	if j.sessions != nil {
		if n := j.sessions.Purge(); n > 0 {
			slog.Info("purged expired sessions", "count", n)
		}
	}
	if j.retention <= 0 {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), config.RequestTimeout)
	defer cancel()

	n, err := j.ledger.PurgeBefore(ctx, now.Add(-j.retention))
	if err != nil {
		slog.Error("purge proposals", "error", err)
		return
	}
	if n > 0 {
		slog.Info("purged proposals", "count", n)
	}
}
