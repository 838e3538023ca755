package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mymmrac/telego"
	"github.com/spf13/cobra"

	"savbot/pkg/action"
	"savbot/pkg/bot"
	"savbot/pkg/chat"
	"savbot/pkg/config"
	"savbot/pkg/logger"
	"savbot/pkg/plugins"
	"savbot/pkg/reconciler"
	"savbot/pkg/store"
	"savbot/pkg/strategy"
	"savbot/pkg/tasks"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the bot",
	Long:  "Starts Telegram long polling, the action dispatcher, and the lifecycle reconciler.",
	Run: func(cmd *cobra.Command, args []string) {
		_ = args

		cfg, err := config.LoadConfig()
		if err != nil {
			fmt.Printf("failed to load config: %v\n", err)
			return
		}

		appLogger, err := logger.New(cfg.Logging)
		if err != nil {
			fmt.Printf("failed to initialize logger: %v\n", err)
			return
		}
		slog.SetDefault(appLogger)
		log := slog.Default().With("component", "cmd.serve")

		token := strings.TrimSpace(cfg.Telegram.Token)
		if token == "" {
			log.Error("telegram.token is required")
			return
		}

		runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		tgBot, err := telego.NewBot(token)
		if err != nil {
			log.Error("Failed to initialize telegram bot", "error", err)
			return
		}

		messageStore, runner, cleanup, err := buildStorage(runCtx, cfg, log)
		if err != nil {
			log.Error("Failed to initialize storage", "error", err)
			return
		}
		defer cleanup()

		catalog, err := buildCatalog(cfg)
		if err != nil {
			log.Error("Failed to build action catalog", "error", err)
			return
		}

		repo := store.NewRepository(messageStore, log)
		ch := chat.NewTelegram(tgBot, cfg.Lifecycle.DataDirectory(), cfg.Lifecycle.MaxDownloadSize(), log)
		dispatcher := strategy.New(repo, ch, runner, catalog, cfg.Lifecycle, log)
		service := bot.New(tgBot, dispatcher, repo, ch, cfg.Telegram, log)
		lifecycle := reconciler.New(repo, dispatcher, ch, cfg.Lifecycle, log)

		go func() {
			if err := lifecycle.Run(runCtx); err != nil {
				log.Error("Reconciler stopped", "error", err)
			}
		}()

		if err := service.Run(runCtx); err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			log.Error("Bot runtime failed", "error", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

// buildStorage selects the store backend. With a database URL the bot gets
// Postgres persistence and the task queue; without one it degrades to the
// in-memory store and plugin actions answer that the queue is unavailable.
func buildStorage(ctx context.Context, cfg *config.Config, log *slog.Logger) (store.Store, tasks.Runner, func(), error) {
	url := strings.TrimSpace(cfg.Storage.DatabaseURL)
	if url == "" {
		log.Warn("No database configured, using in-memory storage without task queue")
		return store.NewMemoryStore(), nil, func() {}, nil
	}

	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("create connection pool: %w", err)
	}

	pgStore := store.NewPostgresStore(pool)
	if err := pgStore.Migrate(ctx); err != nil {
		pool.Close()
		return nil, nil, nil, err
	}

	runner, err := tasks.NewRiverRunner(pool, cfg.Tasks.Queue)
	if err != nil {
		pool.Close()
		return nil, nil, nil, err
	}

	return pgStore, runner, pool.Close, nil
}

// buildCatalog registers the built-in actions plus every plugin-declared one.
func buildCatalog(cfg *config.Config) (*action.Catalog, error) {
	catalog := action.NewCatalog(strategy.HandlerNames())
	if err := catalog.Register(action.Builtin(cfg.Lifecycle)...); err != nil {
		return nil, err
	}

	if manifest := strings.TrimSpace(cfg.Plugins.Manifest); manifest != "" {
		defs, err := plugins.Load(manifest)
		if err != nil {
			return nil, err
		}
		if err := catalog.Register(defs...); err != nil {
			return nil, err
		}
	}
	return catalog, nil
}
