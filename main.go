// main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/TayyabArif/Firtz/internal/api"
	"github.com/TayyabArif/Firtz/internal/config"
	"github.com/TayyabArif/Firtz/internal/providers"
	"github.com/TayyabArif/Firtz/internal/repo"
	"github.com/TayyabArif/Firtz/internal/scheduler"
	"github.com/TayyabArif/Firtz/services"
)

// connectDatabase builds the connection from our config structure and
// verifies it before anything else starts.
func connectDatabase(ctx context.Context, cfg config.DatabaseConfig) (*sqlx.DB, error) {
	connStr := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Name, cfg.SSLMode,
	)

	db, err := sqlx.ConnectContext(ctx, "postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetime) * time.Second)

	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

func newLogger(environment string) (*zap.Logger, error) {
	if environment == "development" {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func main() {
	if err := godotenv.Load(); err != nil {
		if err := godotenv.Load("dev.env"); err != nil {
			log.Printf("Note: No .env or dev.env file loaded: %v", err)
		} else {
			log.Printf("Loaded dev.env file for local development")
		}
	} else {
		log.Printf("Loaded .env file")
	}

	cfg := config.Load()

	logger, err := newLogger(cfg.Environment)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer logger.Sync()

	logger.Info("starting brand visibility service",
		zap.String("environment", cfg.Environment),
		zap.String("port", cfg.Port),
		zap.String("database_host", cfg.Database.Host),
		zap.String("database_name", cfg.Database.Name))

	if cfg.AzureOpenAIKey == "" {
		logger.Warn("Azure OpenAI API key not loaded")
	}
	if cfg.GoogleAIAPIKey == "" {
		logger.Warn("Google AI API key not loaded")
	}
	if cfg.PerplexityAPIKey == "" {
		logger.Warn("Perplexity API key not loaded")
	}

	ctx := context.Background()
	db, err := connectDatabase(ctx, cfg.Database)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer db.Close()
	logger.Info("connected to database")

	if err := repo.EnsureSchema(ctx, db); err != nil {
		logger.Fatal("failed to ensure database schema", zap.Error(err))
	}

	repos := repo.NewManager(db)

	adapters, err := providers.NewSet(cfg, logger)
	if err != nil {
		logger.Fatal("failed to initialize providers", zap.Error(err))
	}
	logger.Info("providers initialized", zap.Int("count", len(adapters)))

	dispatcher := services.NewDispatcher(adapters, logger)
	runner := services.NewRunner(logger)
	orch := services.NewOrchestrator(cfg, repos, dispatcher, runner, logger)

	sched := scheduler.New(repos, orch, logger)
	if err := sched.Start(ctx); err != nil {
		logger.Fatal("failed to start scheduler", zap.Error(err))
	}

	server := api.NewServer(cfg, repos, orch, logger)
	httpServer := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: server.Engine(),
	}

	go func() {
		logger.Info("http server listening", zap.String("addr", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("http server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	logger.Info("shutting down", zap.String("signal", sig.String()))

	// Stop taking new work first, then wait for running jobs to finish
	// their current step.
	sched.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown failed", zap.Error(err))
	}
	if err := runner.Shutdown(shutdownCtx); err != nil {
		logger.Error("job runner shutdown incomplete", zap.Error(err))
	}

	logger.Info("shutdown complete")
}
