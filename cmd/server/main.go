package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/oggyb/trio-connect/internal/app"
	"github.com/oggyb/trio-connect/internal/cache"
	"github.com/oggyb/trio-connect/internal/config"
	"github.com/oggyb/trio-connect/internal/db"
	"github.com/oggyb/trio-connect/internal/events"
	"github.com/oggyb/trio-connect/internal/geocode"
	"github.com/oggyb/trio-connect/internal/httpapi"
	"github.com/oggyb/trio-connect/internal/logger"
	"github.com/oggyb/trio-connect/internal/server"
	"github.com/oggyb/trio-connect/internal/service/matchmaking"
)

func main() {
	cfg := config.New()

	// Init logger (global singleton)
	logger.InitFromConfig(cfg)
	log := logger.L()

	// Init DB
	database, err := db.NewDB(cfg)
	if err != nil {
		log.Error("failed to init db", "err", err)
		os.Exit(1)
	}

	// Init Redis
	redisCache := cache.NewRedisCache(cfg)
	if err := redisCache.Ping(context.Background()); err != nil {
		log.Error("failed to connect to redis", "err", err)
		os.Exit(1)
	}
	defer redisCache.Close()

	opts := []app.Option{
		app.WithGeocoder(geocode.NewNominatim(cfg.Geocode.URL, cfg.Geocode.UserAgent)),
	}

	// Events go to NATS. Without it every delivery fails and is counted, and
	// paid unlocks are refused because no invoice can leave the process.
	if nats, err := events.NewNatsPublisher(cfg.NATS.URL, cfg.NATS.SubjectPrefix); err != nil {
		log.Warn("nats unavailable, events are disabled", "url", cfg.NATS.URL, "err", err)
	} else {
		defer nats.Close()
		opts = append(opts, app.WithPublisher(nats))
	}

	appCtx := app.New(cfg, database, redisCache, log, opts...)
	core := app.NewCore(appCtx)

	if cfg.App.ENV == "development" {
		if err := db.SeedDemoData(database); err != nil {
			log.Error("failed to seed", "err", err)
		}
	}

	grpcServer := server.NewGRPCServer(log, matchmaking.NewRegistrar(appCtx, core))
	httpServer := server.NewHTTPServer(cfg, httpapi.NewRouter(appCtx, core))

	errCh := make(chan error, 2)
	go func() {
		log.Info("starting gRPC server", "addr", cfg.GRPC.Host+":"+cfg.GRPC.Port)
		errCh <- server.StartGRPCServer(cfg, grpcServer)
	}()
	go func() {
		log.Info("starting HTTP server", "addr", cfg.HTTP.Addr)
		if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-stop:
		log.Info("shutting down", "signal", sig.String())
	case err := <-errCh:
		log.Error("server failed", "err", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		log.Warn("http shutdown", "err", err)
	}
	grpcServer.GracefulStop()
}
