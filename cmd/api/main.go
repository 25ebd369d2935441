package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/dhruvbhatia/bizdesk-backend/api/routes"
	"github.com/dhruvbhatia/bizdesk-backend/internal/auth"
	"github.com/dhruvbhatia/bizdesk-backend/internal/chat"
	"github.com/dhruvbhatia/bizdesk-backend/internal/documents"
	"github.com/dhruvbhatia/bizdesk-backend/internal/inventory"
	"github.com/dhruvbhatia/bizdesk-backend/internal/rag"
	"github.com/dhruvbhatia/bizdesk-backend/pkg/auth/session"
	"github.com/dhruvbhatia/bizdesk-backend/pkg/config"
	"github.com/dhruvbhatia/bizdesk-backend/pkg/db"
	"github.com/dhruvbhatia/bizdesk-backend/pkg/gemini"
	"github.com/dhruvbhatia/bizdesk-backend/pkg/logger"
	"github.com/dhruvbhatia/bizdesk-backend/pkg/metrics"
	"github.com/dhruvbhatia/bizdesk-backend/pkg/migrate"
	"github.com/dhruvbhatia/bizdesk-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	authService, err := auth.NewService(cfg.Auth, cfg.JWT, sessionManager)
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	modelMetrics := metrics.NewModelCallMetrics(registry)

	geminiClient, err := gemini.New(context.Background(), cfg.Gemini, modelMetrics)
	if err != nil {
		logg.Error(context.Background(), "failed to create gemini client", err)
		os.Exit(1)
	}

	indexStore, err := rag.NewStore(cfg.RAG.IndexDir, cfg.Gemini.EmbeddingDim)
	if err != nil {
		logg.Error(context.Background(), "failed to load vector indices", err)
		os.Exit(1)
	}

	documentService, err := documents.NewService(documents.ServiceParams{
		Repo:         documents.NewRepository(dbClient.DB()),
		Index:        indexStore,
		Embedder:     geminiClient,
		ChunkSize:    cfg.RAG.ChunkSize,
		ChunkOverlap: cfg.RAG.ChunkOverlap,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create document service", err)
		os.Exit(1)
	}

	inventoryService := inventory.NewService(inventory.NewRepository(dbClient.DB()), dbClient, logg)
	chatService := chat.NewService(geminiClient, documentService, inventoryService, cfg.RAG.TopK)

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.Deps{
			Config:         cfg,
			Logger:         logg,
			DB:             dbClient,
			Redis:          redisClient,
			Sessions:       sessionManager,
			Registry:       registry,
			AuthService:    authService,
			Inventory:      inventoryService,
			Documents:      documentService,
			Chat:           chatService,
			MaxUploadBytes: int64(cfg.RAG.MaxUploadMB) << 20,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
