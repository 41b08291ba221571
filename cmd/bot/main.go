package main

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/joho/godotenv"
	chatpilotroot "github.com/pale-fire/chatpilot"
	"github.com/pale-fire/chatpilot/internal/config"
	"github.com/pale-fire/chatpilot/internal/handler"
	"github.com/pale-fire/chatpilot/internal/middleware"
	"github.com/pale-fire/chatpilot/internal/ops"
	"github.com/pale-fire/chatpilot/internal/repository"
	"github.com/pale-fire/chatpilot/internal/service"
	"github.com/pale-fire/chatpilot/internal/speech"
)

func main() {
	// Setup structured logging
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// Load configuration (.env is optional)
	_ = godotenv.Load()
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Setup context with graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Connect to database
	pool, err := repository.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	// Run migrations
	migrationsFS, err := fs.Sub(chatpilotroot.MigrationsFS, "migrations")
	if err != nil {
		slog.Error("failed to load embedded migrations", "error", err)
		os.Exit(1)
	}
	if err := repository.RunMigrations(cfg.DatabaseURL, migrationsFS); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	// Load the model/persona catalog
	catalog, err := service.LoadCatalog(cfg.PersonasPath)
	if err != nil {
		slog.Error("failed to load catalog", "error", err, "path", cfg.PersonasPath)
		os.Exit(1)
	}

	// Initialize services
	kv := repository.NewKV(pool)
	conversations := service.NewConversationService(kv)
	prefs := service.NewPrefsService(kv)
	input := service.NewInputService()
	attachments := service.NewAttachmentPreparer()
	chatClient := service.NewChatClient(cfg.ChatServiceURL)

	// Handler pointer for use in default handler closure
	var h *handler.Handler

	// Create bot
	opts := []bot.Option{
		bot.WithMiddlewares(
			middleware.Recover(),
			middleware.Logging(),
			middleware.RateLimit(),
			middleware.PrefsLoader(prefs),
		),
		bot.WithDefaultHandler(func(ctx context.Context, b *bot.Bot, update *models.Update) {
			if h == nil {
				return
			}
			h.RouteMessage(ctx, b, update)
		}),
	}

	b, err := bot.New(cfg.BotToken, opts...)
	if err != nil {
		slog.Error("failed to create bot", "error", err)
		os.Exit(1)
	}

	// Renderer and dispatch pipeline
	renderer := handler.NewTelegramRenderer(b)
	dispatcher := service.NewDispatcher(conversations, input, attachments, chatClient, prefs, renderer)

	// Dictation: unavailable unless a transcriber endpoint is configured
	var engine speech.Engine
	if cfg.TranscriberURL != "" {
		engine = speech.NewWSEngine(cfg.TranscriberURL)
	} else {
		slog.Info("voice dictation disabled: no transcriber configured")
	}
	dictation := speech.NewController(engine, input, renderer, renderer)
	defer dictation.Close()

	// Initialize handler
	h = handler.New(handler.Deps{
		Bot:           b,
		Conversations: conversations,
		Dispatcher:    dispatcher,
		Input:         input,
		Attachments:   attachments,
		Prefs:         prefs,
		Catalog:       catalog,
		Dictation:     dictation,
	})

	// Register all handlers
	h.Register()

	// Ops endpoint (healthz, metrics)
	opsSrv := ops.NewServer(cfg.OpsAddr)
	go func() {
		slog.Info("ops server listening", "addr", cfg.OpsAddr)
		if err := opsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("ops server", "error", err)
		}
	}()

	// Start bot
	slog.Info("starting bot")
	b.Start(ctx)

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := opsSrv.Shutdown(shutdownCtx); err != nil {
		slog.Error("ops server shutdown", "error", err)
	}

	slog.Info("bot stopped gracefully")
}
