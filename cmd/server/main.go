/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the inventory engine server. Handles configuration,
  dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Parse command-line flags, load config (file + STOCK_* environment)
  2. Initialize SQLite store
  3. Initialize cache backend (memory or redis)
  4. Configure HTTP router
  5. Start server with graceful shutdown

COMMAND-LINE FLAGS:
  -config  Optional config file path (YAML)
  -db      SQLite database path override
           Use ":memory:" for an in-memory database
  -addr    Listen address override

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (configured timeout)
  3. Close database connection
  4. Exit

EXAMPLES:
  # Run with defaults (./data/stock.db, in-process cache)
  ./server

  # Run with a shared redis cache
  STOCK_CACHE_BACKEND=redis STOCK_CACHE_REDIS_ADDR=localhost:6379 ./server

SEE ALSO:
  - config/config.go: Configuration keys and defaults
  - api/server.go: Router configuration
  - store/sqlite/sqlite.go: Database implementation
*/
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

	"github.com/redis/go-redis/v9"

	"github.com/warp/inventory-engine/api"
	"github.com/warp/inventory-engine/cache"
	"github.com/warp/inventory-engine/config"
	"github.com/warp/inventory-engine/store/sqlite"
)

func main() {
	// Flags
	configPath := flag.String("config", "", "config file path (optional)")
	dbPath := flag.String("db", "", "SQLite database path override")
	addr := flag.String("addr", "", "listen address override")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *dbPath != "" {
		cfg.DB.Path = *dbPath
	}
	if *addr != "" {
		cfg.Server.Addr = *addr
	}

	// Initialize store
	store, err := sqlite.New(cfg.DB.Path)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer store.Close()

	// Initialize cache backend
	c, err := newCache(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize cache: %v", err)
	}

	// Create router
	handler := api.NewHandler(store, c, cfg.Cache.KeyPrefix)
	router := api.NewRouter(handler)

	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Printf("Server starting on %s (db=%s, cache=%s)",
			cfg.Server.Addr, cfg.DB.Path, cfg.Cache.Backend)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server stopped")
}

func newCache(cfg *config.Config) (cache.Cache, error) {
	switch cfg.Cache.Backend {
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Cache.RedisAddr,
			Password: cfg.Cache.RedisPassword,
			DB:       cfg.Cache.RedisDB,
		})
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return cache.NewRedis(ctx, client, cfg.Cache.KeyPrefix, cfg.Cache.DefaultTTL)
	default:
		return cache.NewMemory(cfg.Cache.KeyPrefix, cfg.Cache.DefaultTTL), nil
	}
}
