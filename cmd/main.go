package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Vovarama1992/go-utils/logger"
	"github.com/Vovarama1992/sightings/internal/config"
	"github.com/Vovarama1992/sightings/internal/delivery"
	ws "github.com/Vovarama1992/sightings/internal/delivery/ws"
	"github.com/Vovarama1992/sightings/internal/domain"
	"github.com/Vovarama1992/sightings/internal/infra"
	"github.com/Vovarama1992/sightings/internal/metrics"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func main() {

	// LOGGER
	zcore, _ := zap.NewProduction()
	defer func() { _ = zcore.Sync() }()
	zl := logger.NewZapLogger(zcore.Sugar())

	// ENV
	cfg, err := config.Load()
	if err != nil {
		zl.Log(logger.LogEntry{
			Level:   "error",
			Message: "invalid configuration",
			Error:   err,
		})
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// POSTGRES
	pool, err := infra.NewPgxPool(ctx, cfg)
	if err != nil {
		zl.Log(logger.LogEntry{
			Level:   "error",
			Message: "cannot build pgxpool",
			Error:   err,
		})
		os.Exit(1)
	}
	defer pool.Close()

	// SCHEMA: a failure is logged and the server starts anyway
	ctxSchema, cancel := context.WithTimeout(ctx, 10*time.Second)
	if err := infra.EnsureSchema(ctxSchema, pool); err != nil {
		zl.Log(logger.LogEntry{
			Level:   "error",
			Message: "error initializing database",
			Error:   err,
		})
	} else {
		zl.Log(logger.LogEntry{
			Level:   "info",
			Message: "database table initialized",
		})
	}
	cancel()

	// METRICS
	m := metrics.New()
	m.RegisterPool(pool)

	// SERVICES
	repo := infra.NewPostgresSightingRepo(pool, cfg.DBQueryTimeout)
	sightings := domain.NewSightingService(repo)

	// WS HUB
	hub := ws.NewHub(zl)

	// BROADCAST LISTENER
	broadcastDone := make(chan struct{})
	go func() {
		defer close(broadcastDone)
		ws.Forward(sightings.Events(), hub, m.FeedBroadcasts, zl)
	}()

	// HANDLERS
	hSightings := delivery.NewSightingHandler(sightings, zl, m.SightingsCreated)
	hHealth := delivery.NewHealthHandler(sightings, zl)

	// ROUTER
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(m.Middleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type"},
	}))

	delivery.RegisterRoutes(r, hSightings, hHealth, ws.WSHandler(hub, zl))
	r.Handle("/metrics", m.Handler())

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		zl.Log(logger.LogEntry{
			Level:   "info",
			Message: "wildlife sighting api running",
			Fields: map[string]any{
				"port":       cfg.Port,
				"deployment": cfg.Deployment(),
			},
		})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()

		ctxShutdown, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()

		errShutdown := srv.Shutdown(ctxShutdown)

		// Shutdown does not track hijacked websocket connections; the hub
		// rejects any that register after this point.
		if err := hub.Close(); err != nil {
			zl.Log(logger.LogEntry{
				Level:   "warn",
				Message: "feed hub close",
				Error:   err,
			})
		}
		return errShutdown
	})

	exitCode := 0
	if err := g.Wait(); err != nil {
		zl.Log(logger.LogEntry{
			Level:   "error",
			Message: "server crashed",
			Error:   err,
		})
		exitCode = 1
	}

	sightings.Close()
	<-broadcastDone

	zl.Log(logger.LogEntry{
		Level:   "info",
		Message: "server stopped",
	})

	if exitCode != 0 {
		pool.Close()
		_ = zcore.Sync()
		os.Exit(exitCode)
	}
}
