package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/Shuvo1998/ThesisManagementSystem/internal/config"
	"github.com/Shuvo1998/ThesisManagementSystem/internal/db"
	dbRedis "github.com/Shuvo1998/ThesisManagementSystem/internal/db/redis"
	"github.com/Shuvo1998/ThesisManagementSystem/internal/domain"
	logpkg "github.com/Shuvo1998/ThesisManagementSystem/internal/logger"
	"github.com/Shuvo1998/ThesisManagementSystem/internal/metrics"
	"github.com/Shuvo1998/ThesisManagementSystem/internal/repository/embcache"
	thesisrepo "github.com/Shuvo1998/ThesisManagementSystem/internal/repository/thesis"
	userrepo "github.com/Shuvo1998/ThesisManagementSystem/internal/repository/user"
	"github.com/Shuvo1998/ThesisManagementSystem/internal/storage"
	"github.com/Shuvo1998/ThesisManagementSystem/internal/transport/aiclient"
	chiTransport "github.com/Shuvo1998/ThesisManagementSystem/internal/transport/chi"
	openaiEmb "github.com/Shuvo1998/ThesisManagementSystem/internal/transport/openai"
	authuc "github.com/Shuvo1998/ThesisManagementSystem/internal/usecase/auth"
	healthuc "github.com/Shuvo1998/ThesisManagementSystem/internal/usecase/health"
	searchuc "github.com/Shuvo1998/ThesisManagementSystem/internal/usecase/search"
	thesisuc "github.com/Shuvo1998/ThesisManagementSystem/internal/usecase/thesis"
	useruc "github.com/Shuvo1998/ThesisManagementSystem/internal/usecase/user"
)

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting thesis repository API server",
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.Strings("db_addrs", cfg.Database.Addrs),
		zap.String("ai_provider", cfg.AI.Provider),
		zap.String("storage_driver", cfg.Storage.Driver),
	)

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Database.Addrs,
		Username: cfg.Database.Username,
		Password: cfg.Database.Password,
	})
	if err != nil {
		logger.Fatal("Failed to create database store", zap.Error(err))
	}
	defer store.Close()

	ctx := context.Background()
	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Database not ready", zap.Error(err))
	}
	logger.Info("Connected to database")

	// Register AI metrics explicitly (no init())
	metrics.RegisterAIMetrics()

	files, err := buildFileStore(ctx, cfg.Storage)
	if err != nil {
		logger.Fatal("Failed to create file store", zap.Error(err))
	}

	embedder, scorer, aiChecker := buildAIProvider(cfg.AI, store, logger)
	logger.Info("AI provider created", zap.String("provider", cfg.AI.Provider))

	thesisRepo := thesisrepo.New(store)
	userRepo := userrepo.New(store)

	authSvc := authuc.New(userRepo, cfg.Auth.JWTSecret, time.Duration(cfg.Auth.TokenTTLHrs)*time.Hour)
	thesisSvc := thesisuc.New(thesisRepo, files, embedder, logger).
		WithMaxFileSize(int64(cfg.Search.MaxUploadMB) << 20)
	searchSvc := searchuc.New(thesisRepo, scorer).
		WithThreshold(cfg.Search.ScoreThreshold)
	userSvc := useruc.New(userRepo)
	healthSvc := healthuc.New(store, aiChecker)

	server := chiTransport.NewServer(authSvc, thesisSvc, searchSvc, userSvc, healthSvc, files, logger).
		WithMaxUpload(int64(cfg.Search.MaxUploadMB) << 20)
	if cfg.Storage.Driver == "local" {
		server = server.WithUploadsDir(cfg.Storage.Local.Dir)
	}

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      server.Router(),
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// buildFileStore creates the PDF store for the configured driver.
func buildFileStore(ctx context.Context, cfg config.StorageConfig) (storage.FileStore, error) {
	switch cfg.Driver {
	case "minio":
		return storage.NewMinioStore(ctx, storage.MinioConfig{
			Endpoint:  cfg.Minio.Endpoint,
			AccessKey: cfg.Minio.AccessKey,
			SecretKey: cfg.Minio.SecretKey,
			Bucket:    cfg.Minio.Bucket,
			UseSSL:    cfg.Minio.UseSSL,
		})
	default:
		return storage.NewLocalStore(cfg.Local.Dir)
	}
}

// buildAIProvider assembles the embedder chain and the similarity
// scorer. Provider "service" delegates both to the AI microservice;
// "openai" embeds via an OpenAI-compatible API and scores locally.
// Embeddings are cached in the database in both cases.
func buildAIProvider(
	cfg config.AIConfig,
	store db.Store,
	logger *zap.Logger,
) (domain.Embedder, domain.Scorer, healthuc.AIChecker) {
	switch cfg.Provider {
	case "openai":
		base := openaiEmb.NewEmbedder(&openaiEmb.Config{
			APIKey:     cfg.OpenAI.APIKey,
			BaseURL:    cfg.OpenAI.BaseURL,
			Model:      cfg.OpenAI.Model,
			Dimensions: cfg.OpenAI.Dimensions,
			Logger:     logger,
		})
		cached := embcache.New(base, store, metrics.EmbeddingCacheTotal, logger)
		return cached, openaiEmb.NewLocalScorer(cached), base
	default:
		client := aiclient.New(aiclient.Config{
			BaseURL: cfg.BaseURL,
			Timeout: time.Duration(cfg.TimeoutSec) * time.Second,
			Retries: cfg.Retries,
			Logger:  logger,
		})
		cached := embcache.New(client, store, metrics.EmbeddingCacheTotal, logger)
		return cached, client, client
	}
}
