package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/Strob0t/AgentRelay/internal/adapter/anthropic"
	"github.com/Strob0t/AgentRelay/internal/adapter/fallback"
	arhttp "github.com/Strob0t/AgentRelay/internal/adapter/http"
	arnats "github.com/Strob0t/AgentRelay/internal/adapter/nats"
	arotel "github.com/Strob0t/AgentRelay/internal/adapter/otel"
	"github.com/Strob0t/AgentRelay/internal/adapter/postgres"
	"github.com/Strob0t/AgentRelay/internal/adapter/ristretto"
	"github.com/Strob0t/AgentRelay/internal/adapter/ws"
	"github.com/Strob0t/AgentRelay/internal/config"
	"github.com/Strob0t/AgentRelay/internal/logger"
	"github.com/Strob0t/AgentRelay/internal/port/messagequeue"
	"github.com/Strob0t/AgentRelay/internal/resilience"
	"github.com/Strob0t/AgentRelay/internal/service"
)

func main() {
	if err := run(); err != nil {
		slog.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	log, logCloser := logger.New(cfg.Logging)
	slog.SetDefault(log)
	defer logCloser.Close()

	slog.Info("config loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Logging.Level,
		"queue_enabled", cfg.NATS.URL != "",
		"anthropic_model", cfg.Anthropic.Model,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Telemetry ---
	metricsShutdown, err := arotel.InitMetrics(ctx, cfg.Logging.Service, cfg.Telemetry.OTLPEndpoint)
	if err != nil {
		return fmt.Errorf("telemetry: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = metricsShutdown(shutdownCtx)
	}()

	metrics, err := arotel.NewMetrics()
	if err != nil {
		return fmt.Errorf("metrics: %w", err)
	}

	// --- Infrastructure ---
	pool, err := postgres.NewPool(ctx, cfg.Postgres)
	if err != nil {
		return fmt.Errorf("postgres: %w", err)
	}
	defer pool.Close()
	slog.Info("postgres connected")

	if err := postgres.RunMigrations(ctx, cfg.Postgres.DSN); err != nil {
		return fmt.Errorf("migrations: %w", err)
	}
	slog.Info("migrations applied")

	sessionCache, err := ristretto.New(cfg.Cache.MaxSizeMB << 20)
	if err != nil {
		return fmt.Errorf("cache: %w", err)
	}
	defer sessionCache.Close()

	var queue messagequeue.Queue
	if cfg.NATS.URL != "" {
		q, err := arnats.Connect(ctx, cfg.NATS.URL)
		if err != nil {
			return fmt.Errorf("nats: %w", err)
		}
		defer func() { _ = q.Drain() }()
		queue = q
	}

	// --- Generators ---
	primary := anthropic.NewClient(cfg.Anthropic)
	primary.SetBreaker(resilience.NewBreaker(cfg.Breaker.MaxFailures, cfg.Breaker.Timeout))
	offline := fallback.NewResponder(cfg.Fallback)

	// --- Services ---
	hub := ws.NewHub()
	store := postgres.NewStore(pool)
	gateway := service.NewGateway(primary, offline, metrics, log)
	sessionSvc := service.NewSessionService(store, sessionCache, cfg.Cache.SessionTTL, log)
	chatSvc := service.NewChatService(store, hub, gateway, metrics, log)
	dispatch := service.NewDispatcher(chatSvc, hub, queue, log)

	if err := dispatch.Start(ctx); err != nil {
		return fmt.Errorf("dispatch: %w", err)
	}

	// --- HTTP ---
	handlers := arhttp.NewHandlers(sessionSvc, dispatch)

	r := chi.NewRouter()
	r.Use(arhttp.CORS(cfg.Server.CORSOrigin))
	r.Use(arhttp.SecurityHeaders)
	r.Use(arhttp.RequestID)
	r.Use(chimw.RealIP)
	r.Use(arhttp.Logger)
	r.Use(chimw.Recoverer)
	r.Use(arotel.HTTPMiddleware(cfg.Logging.Service))

	r.Get("/health", healthHandler(hub, primary))
	r.Get("/ws/{id}", hub.HandleWS)
	arhttp.MountRoutes(r, handlers)

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		slog.Info("starting server", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("server shutdown", "error", err)
		}
		if err := dispatch.Shutdown(shutdownCtx); err != nil {
			slog.Error("dispatch shutdown", "error", err)
		}
		return nil
	})

	return g.Wait()
}

// healthHandler reports liveness plus generator and fanout status.
func healthHandler(hub *ws.Hub, primary *anthropic.Client) http.HandlerFunc {
	type healthStatus struct {
		Status          string `json:"status"`
		PrimaryProvider bool   `json:"primary_provider"`
		ActiveSessions  int    `json:"active_sessions"`
	}

	return func(w http.ResponseWriter, _ *http.Request) {
		status := healthStatus{
			Status:          "ok",
			PrimaryProvider: primary.Available(),
			ActiveSessions:  len(hub.Sessions()),
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(status)
	}
}
