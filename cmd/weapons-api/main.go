package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/XavierBriggs/fortuna/services/weapons-api/internal/cache"
	"github.com/XavierBriggs/fortuna/services/weapons-api/internal/config"
	"github.com/XavierBriggs/fortuna/services/weapons-api/internal/db"
	"github.com/XavierBriggs/fortuna/services/weapons-api/internal/handlers"
	"github.com/XavierBriggs/fortuna/services/weapons-api/internal/loader"
	"github.com/XavierBriggs/fortuna/services/weapons-api/internal/middleware"
	"github.com/XavierBriggs/fortuna/services/weapons-api/internal/publisher"
	"github.com/XavierBriggs/fortuna/services/weapons-api/internal/repository"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
)

func main() {
	fmt.Println("=== Freedom Libraries Weapons API ===")

	// .env is optional; real environment variables take precedence
	if err := godotenv.Load(); err == nil {
		fmt.Println("✓ Loaded .env")
	}

	// Load configuration
	cfg := config.LoadConfig()

	// Optional Redis catalog mirror and load events
	var listeners []repository.LoadListener
	if cfg.Redis.URL != "" {
		redisClient, err := connectRedis(cfg.Redis.URL)
		if err != nil {
			fmt.Printf("❌ Failed to connect to Redis: %v\n", err)
			os.Exit(1)
		}
		defer redisClient.Close()

		listeners = append(listeners,
			cache.NewRedisWriter(redisClient),
			publisher.NewStreamPublisher(redisClient, cfg.Redis.Stream),
		)
		fmt.Println("✓ Connected to Redis")
	}

	// Optional Postgres query log
	var queryLog handlers.QueryRecorder
	if cfg.QueryLog.DSN != "" {
		logger, err := db.NewQueryLogger(cfg.QueryLog.DSN)
		if err != nil {
			fmt.Printf("❌ Failed to connect to query log database: %v\n", err)
			os.Exit(1)
		}
		defer logger.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err = logger.EnsureSchema(ctx)
		cancel()
		if err != nil {
			fmt.Printf("❌ Failed to prepare query log: %v\n", err)
			os.Exit(1)
		}

		queryLog = logger
		fmt.Println("✓ Connected to query log database")
	}

	repo := repository.New(loader.New(cfg.Store.Dir), listeners...)

	if cfg.Store.Preload {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		err := repo.Load(ctx)
		cancel()
		if err != nil {
			fmt.Printf("❌ Failed to preload weapons: %v\n", err)
			os.Exit(1)
		}
	}

	handler := handlers.NewHandler(repo, cfg.Server, queryLog)

	// Setup router
	r := chi.NewRouter()

	// Middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	if cfg.Server.LogRequests() {
		r.Use(middleware.Logger)
	}
	r.Use(middleware.Recover(cfg.Server.IsProduction()))
	r.Use(middleware.SecurityHeaders)
	r.Use(chimiddleware.Timeout(30 * time.Second))

	// CORS configuration
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.Server.CORSOrigins,
		AllowedMethods:   []string{"GET", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Routes
	handler.Mount(r)

	// Start server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	serverErrors := make(chan error, 1)
	go func() {
		fmt.Printf("✓ Weapons API listening on %s\n", srv.Addr)
		fmt.Printf("  Environment: %s\n", cfg.Server.Environment)
		fmt.Printf("  Weapons dir: %s\n", cfg.Store.Dir)
		fmt.Println("  Endpoints:")
		for _, e := range handler.Endpoints() {
			fmt.Printf("    %s\n", e)
		}

		serverErrors <- srv.ListenAndServe()
	}()

	// Wait for interrupt signal
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		fmt.Printf("❌ Server error: %v\n", err)
		os.Exit(1)

	case sig := <-shutdown:
		fmt.Printf("\n⚠️  Received signal: %v\n", sig)

		// Give outstanding requests a deadline for completion
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			fmt.Printf("⚠️  Graceful shutdown failed: %v\n", err)
			if err := srv.Close(); err != nil {
				fmt.Printf("❌ Could not stop server: %v\n", err)
			}
		}

		// Let an in-flight catalog mirror finish before Redis closes
		repo.Wait()
	}

	fmt.Println("✓ Shutdown complete")
}

// connectRedis parses the URL and verifies the connection
func connectRedis(url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping Redis: %w", err)
	}

	return client, nil
}
