package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/acuellar/atiende/internal/api"
	"github.com/acuellar/atiende/internal/config"
	"github.com/acuellar/atiende/internal/knowledge"
	"github.com/acuellar/atiende/internal/llm"
	"github.com/acuellar/atiende/internal/repository"
	"github.com/acuellar/atiende/internal/service"
)

var configPath = flag.String("config", "", "Path to config file")

func main() {
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	if cfg.UsedDefaults {
		if cfg.LoadWarning != "" {
			logger.Warn(cfg.LoadWarning)
		} else {
			logger.Warn("no config file found, using built-in defaults")
		}
	}

	db, err := repository.NewDB(cfg.Database.Path)
	if err != nil {
		logger.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer db.Close()

	sessionRepo := repository.NewSessionRepository(db)

	// The model client is created once per process and shared read-only. A
	// failure to reach the backend surfaces per query and is recovered there;
	// with IA disabled the lexical/direct path runs alone.
	var (
		provider llm.Provider
		embedder knowledge.Embedder
	)
	if cfg.IA.Habilitada {
		client := llm.NewClient(cfg.LLM.BaseURL, cfg.LLM.APIKey, cfg.LLM.LLMModel, cfg.LLM.EmbeddingModel)
		provider = client
		embedder = client
		logger.Info("generative backend configured",
			zap.String("base_url", cfg.LLM.BaseURL),
			zap.String("modo", cfg.IA.Modo))
	}

	profiles := service.NewProfileStore(cfg.Profile())
	knowledgeService := service.NewKnowledgeService(embedder, logger)
	composer := service.NewComposer(cfg.IA.Modo, provider, logger)
	chatService := service.NewChatService(profiles, sessionRepo, knowledgeService, composer, logger)
	widgetService := service.NewWidgetService(profiles, chatService, logger)
	adminService := service.NewAdminService(profiles, knowledgeService, sessionRepo, logger)

	router := api.SetupRouter(adminService, widgetService, api.RouterConfig{
		APIKey:       cfg.Admin.APIKey,
		AllowOrigins: []string{"*"},
	})

	srv := &http.Server{
		Addr:         cfg.Address(),
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Info("Starting Atiende server",
			zap.String("address", cfg.Address()),
			zap.String("base_url", cfg.Server.BaseURL),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}
