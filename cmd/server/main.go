package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ledgertools/api/internal/access"
	"github.com/ledgertools/api/internal/cache"
	"github.com/ledgertools/api/internal/config"
	"github.com/ledgertools/api/internal/database"
	apihandlers "github.com/ledgertools/api/internal/handlers/api"
	"github.com/ledgertools/api/internal/middleware"
	"github.com/ledgertools/api/internal/services/charcount"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg := config.Load()

	// Grant store. Without a database every tool is open, which is only
	// acceptable for local development.
	var checker access.Checker = access.AllowAll{}
	if cfg.DatabaseURL != "" {
		pool, err := database.Connect(context.Background(), cfg.DatabaseURL)
		if err != nil {
			slog.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer pool.Close()

		slog.Info("database connected")

		if err := database.Migrate(cfg.DatabaseURL); err != nil {
			slog.Error("failed to run migrations", "error", err)
			os.Exit(1)
		}

		slog.Info("migrations complete")

		checker = access.NewStore(pool, logger)
	} else {
		slog.Warn("no DATABASE_URL configured, all tools are open to every caller")
	}

	// Optional Redis-backed response cache.
	var calcCache *cache.Calculations
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			slog.Error("invalid REDIS_URL", "error", err)
			os.Exit(1)
		}
		client := redis.NewClient(opts)
		defer client.Close()

		calcCache = cache.NewCalculations(client, cfg.CacheTTL, logger)
		slog.Info("calculation cache enabled", "ttl", cfg.CacheTTL.String())
	}

	taxHandler := apihandlers.NewTaxHandler(calcCache, logger)
	toolsHandler := apihandlers.NewToolsHandler(charcount.NewService(logger), logger)

	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintln(w, `{"status":"ok"}`)
	})

	// Each tool gets its own mux wrapped by the access gate, so a grant for
	// one tool never opens another.
	taxMux := http.NewServeMux()
	taxHandler.RegisterRoutes(taxMux)
	taxGate := middleware.RequireToolAccess(checker, access.ToolTaxCalculator, logger)
	mux.Handle("/api/v1/tax/", taxGate(taxMux))

	toolsMux := http.NewServeMux()
	toolsHandler.RegisterRoutes(toolsMux)
	charcountGate := middleware.RequireToolAccess(checker, access.ToolCharacterCounter, logger)
	mux.Handle("/api/v1/tools/", charcountGate(toolsMux))

	var chain http.Handler = mux
	chain = middleware.SecurityHeaders(chain)
	chain = middleware.Recover(logger)(chain)
	chain = middleware.RequestLogger(logger)(chain)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      chain,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server starting", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("server: %w", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		slog.Info("shutting down", "signal", sig)
	case err := <-errCh:
		slog.Error("server error", "error", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	slog.Info("server stopped")
}
