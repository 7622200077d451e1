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

	"github.com/SherClockHolmes/webpush-go"
	"github.com/getsentry/sentry-go"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"massage-board-backend/config"
	"massage-board-backend/internal/api"
	"massage-board-backend/internal/board"
	"massage-board-backend/internal/db"
	"massage-board-backend/internal/events"
	"massage-board-backend/internal/monitoring"
	"massage-board-backend/internal/mw"
	"massage-board-backend/internal/notification"
	"massage-board-backend/internal/store"
)

func main() {
	// Setup logger
	logger := log.New(os.Stdout, "board-backend ", log.LstdFlags)

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		logger.Printf("failed to read .env: %v", err)
	}

	// Load configuration
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./config/config.yaml" // Default path for local development
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		logger.Fatalf("failed to load configuration from %s: %v", configPath, err)
	}
	logger.Printf("configuration loaded successfully from %s", configPath)

	sentryEnabled, err := monitoring.InitSentry(cfg.Sentry)
	if err != nil {
		logger.Printf("error reporting disabled: %v", err)
	} else if sentryEnabled {
		defer sentry.Flush(2 * time.Second)
		logger.Println("sentry error reporting enabled")
	}

	// Initialize database
	gormDB, err := db.Init(&cfg.Database)
	if err != nil {
		logger.Fatalf("failed to initialize database: %v", err)
	}
	defer db.Close(gormDB)
	logger.Println("database initialized successfully")

	// Create a context that can be cancelled
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	appStore := store.NewGormStore(gormDB)
	if err := appStore.EnsureWorkers(ctx, cfg.Board.Workers); err != nil {
		logger.Fatalf("failed to seed worker roster: %v", err)
	}
	logger.Println("data store initialized")

	responses, err := newResponseCache(ctx, cfg)
	if err != nil {
		logger.Fatalf("failed to initialize response cache: %v", err)
	}

	var webpushOptions *webpush.Options
	if cfg.Push.Enabled() {
		webpushOptions = &webpush.Options{
			VAPIDPublicKey:  cfg.Push.PublicKey,
			VAPIDPrivateKey: cfg.Push.PrivateKey,
			Subscriber:      cfg.Push.Subject,
			TTL:             cfg.Push.TTL,
		}
	}
	handler := api.NewHandler(appStore, board.NewLayout(cfg.Board), webpushOptions)

	if webpushOptions != nil {
		workerPool := notification.NewWorkerPool(cfg.WorkerPool.Size, appStore, webpushOptions)
		workerPool.Start(ctx)
		handler.WithNotifier(workerPool)
		logger.Printf("push notifications enabled with %d workers", cfg.WorkerPool.Size)
	} else {
		logger.Println("VAPID keys not configured; push notifications disabled")
	}

	if cfg.Events.Enabled {
		publisher := events.NewKafkaPublisher(cfg.Events.Brokers, cfg.Events.Topic)
		defer publisher.Close()
		handler.WithEvents(publisher)
		logger.Printf("publishing appointment events to %s", cfg.Events.Topic)
	}

	// Initialize router
	router := api.NewRouter(handler, cfg.Server, responses)
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	// Start the server in a goroutine
	go func() {
		logger.Printf("HTTP server starting on port %d", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("HTTP server ListenAndServe: %v", err)
		}
	}()

	// Setup signal handling for graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	// Block until a signal is received.
	<-stop
	logger.Println("Shutdown signal received, stopping services...")

	// Create a deadline to wait for.
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Printf("HTTP server Shutdown: %v", err)
	}

	logger.Println("Server gracefully stopped")
}

func newResponseCache(ctx context.Context, cfg *config.Config) (mw.ResponseCache, error) {
	if cfg.Cache.Backend != config.CacheRedis {
		return mw.NewMemoryCache(cfg.Server.CacheTTL), nil
	}
	cache, err := mw.NewRedisCache(ctx, &redis.Options{
		Addr:     cfg.Cache.RedisAddr,
		Password: cfg.Cache.RedisPassword,
		DB:       cfg.Cache.RedisDB,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Cache.RedisAddr, err)
	}
	log.Printf("Using Redis response cache at %s", cfg.Cache.RedisAddr)
	return cache, nil
}
