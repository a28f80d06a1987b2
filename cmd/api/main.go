package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jwebster45206/house-engine/internal/config"
	"github.com/jwebster45206/house-engine/internal/director"
	"github.com/jwebster45206/house-engine/internal/handlers"
	"github.com/jwebster45206/house-engine/internal/logger"
	"github.com/jwebster45206/house-engine/internal/middleware"
	"github.com/jwebster45206/house-engine/internal/services"
	"github.com/jwebster45206/house-engine/internal/services/events"
	"github.com/jwebster45206/house-engine/internal/services/queue"
	"github.com/jwebster45206/house-engine/pkg/game"
	"github.com/jwebster45206/house-engine/pkg/session"
)

func main() {
	cfg := config.Load()
	log := logger.Setup(cfg)

	log.Info("Starting House Engine API",
		"port", cfg.Port,
		"environment", cfg.Environment,
		"llm_provider", cfg.LLMProvider,
		"model_name", cfg.ModelName)

	var generator services.DialogueGenerator
	switch strings.ToLower(cfg.LLMProvider) {
	case "anthropic":
		if cfg.AnthropicAPIKey == "" {
			log.Error("Anthropic API key is required when using anthropic provider")
			os.Exit(1)
		}
		generator = services.NewAnthropicService(cfg.AnthropicAPIKey, cfg.ModelName, log)
		log.Info("Using Anthropic LLM provider")
	case "ollama":
		generator = services.NewOllamaService(cfg.OllamaURL, cfg.ModelName, log)
		log.Info("Using Ollama LLM provider")
	default:
		log.Error("Invalid LLM provider specified", "provider", cfg.LLMProvider, "supported", []string{"anthropic", "ollama"})
		os.Exit(1)
	}

	storage, err := services.NewRedisStorage(cfg.RedisURL, log)
	if err != nil {
		log.Error("Failed to configure storage", "error", err)
		os.Exit(1)
	}
	storageCtx, storageCancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer storageCancel()

	if err := storage.Ping(storageCtx); err != nil {
		log.Error("Failed to connect to storage", "error", err)
		os.Exit(1)
	}
	log.Info("Storage connection established successfully")

	// Initialize the model on startup
	initCtx, initCancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer initCancel()
	if err := generator.InitModel(initCtx, cfg.ModelName); err != nil {
		log.Error("Failed to initialize LLM model", "error", err, "model", cfg.ModelName)
		os.Exit(1)
	}

	queueClient, err := queue.NewClient(cfg.RedisURL, log)
	if err != nil {
		log.Error("Failed to create queue client", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := queueClient.Close(); err != nil {
			log.Error("Error closing queue client", "error", err)
		}
	}()
	confessionals := queue.NewConfessionalQueue(queueClient)
	broadcaster := events.NewBroadcaster(queueClient.Redis(), log)

	autosaver := services.NewAutosaver(storage, cfg.AutosaveInterval, log)
	autosaver.OnFailure = func(gs *game.GameState, err error) {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		broadcaster.PublishAutosaveFailed(ctx, gs.ID, err.Error())
	}
	defer autosaver.Stop()

	// AI houseguests decide through the director, bounded by the
	// configured per-decision timeout.
	aiDirector := director.NewEngine(generator, cfg.AIDecisionTimeout, log)

	rules := game.DefaultRules()
	rules.JuryStartSize = cfg.JuryStartSize

	hub := handlers.NewHub(func() *session.Controller {
		ctrl := session.NewController(session.Config{
			Rules:          rules,
			ActionsPerDay:  cfg.ActionsPerDay,
			ReadyCountdown: cfg.ReadyCountdown,
			Logger:         log,
		})
		ctrl.OnPhaseChange(func(gs *game.GameState) {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			autosaver.SaveNow(ctx, gs)
			broadcaster.PublishPhaseAdvanced(ctx, gs.ID, gs.Week, string(gs.Phase), gs.StatusMessage)
			enqueueConfessionals(ctx, confessionals, gs, log)
		})
		return ctrl
	})

	// Interval snapshots of every playing session, on top of the
	// phase-completion saves above.
	autosaver.Start(context.Background(), hub.LiveGames)

	mux := http.NewServeMux()

	healthHandler := handlers.NewHealthHandler(storage, log)
	mux.Handle("/health", healthHandler)

	gamesHandler := handlers.NewGamesHandler(hub, storage, log)
	mux.Handle("/v1/games", gamesHandler)
	mux.Handle("/v1/games/", newGamesMux(gamesHandler, handlers.NewActionsHandler(hub, storage, aiDirector, log)))

	handler := middleware.Logger(mux)
	server := &http.Server{
		Addr:        ":" + cfg.Port,
		Handler:     handler,
		ReadTimeout: 15 * time.Second,
		IdleTimeout: 60 * time.Second,
	}

	go func() {
		log.Info("Server starting", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Server is shutting down...")

	if err := storage.Close(); err != nil {
		log.Error("Error closing storage connection", "error", err)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	log.Info("Server exited")
}

// enqueueConfessionals queues diary-room reactions for a couple of AI
// houseguests after each phase change. Failures are logged only.
func enqueueConfessionals(ctx context.Context, q *queue.ConfessionalQueue, gs *game.GameState, log *slog.Logger) {
	if gs.Roster == nil {
		return
	}
	queued := 0
	for _, p := range gs.Roster.InHouse() {
		if p.IsHuman || queued >= 2 {
			continue
		}
		err := q.Enqueue(ctx, queue.ConfessionalRequest{
			GameID:   gs.ID,
			PlayerID: p.ID,
			Phase:    string(gs.Phase),
			Prompt:   "React to the latest events in the house. " + gs.StatusMessage,
		})
		if err != nil {
			log.Error("Failed to enqueue confessional", "game_id", gs.ID, "player_id", p.ID, "error", err)
			return
		}
		queued++
	}
}

// newGamesMux routes /v1/games/{id}/... subpaths to the actions handler
// and everything else under /v1/games/ to the games handler.
func newGamesMux(games *handlers.GamesHandler, actions *handlers.ActionsHandler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := strings.Trim(strings.TrimPrefix(r.URL.Path, "/v1/games"), "/")
		_, rest, _ := strings.Cut(path, "/")
		switch rest {
		case "actions", "advance", "ready", "progress":
			actions.ServeHTTP(w, r)
		default:
			games.ServeHTTP(w, r)
		}
	})
}
