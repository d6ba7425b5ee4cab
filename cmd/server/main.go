package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	grpclib "google.golang.org/grpc"
	"google.golang.org/grpc/reflection"

	"github.com/simaogato/portfoliosim-backend/internal/adapter/feed"
	grpcadapter "github.com/simaogato/portfoliosim-backend/internal/adapter/grpc"
	"github.com/simaogato/portfoliosim-backend/internal/adapter/scheduler"
	"github.com/simaogato/portfoliosim-backend/internal/config"
	"github.com/simaogato/portfoliosim-backend/internal/usecase/simulation"
	"github.com/simaogato/portfoliosim-backend/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// 1. Configuration and logging
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}

	logr := logger.New(logger.Config{Level: cfg.LogLevel, Pretty: cfg.LogPretty})
	logger.SetGlobalLogger(logr)

	// 2. Simulation engine
	manager := simulation.NewManager(simulation.ManagerConfig{
		Scheduler:   scheduler.NewCron(logr),
		Interval:    cfg.TickInterval,
		MaxSessions: cfg.MaxSessions,
		Seed:        cfg.Seed,
		Logger:      logr,
	})

	// 3. Start gRPC Server
	grpcServer := grpclib.NewServer(
		grpclib.ChainUnaryInterceptor(
			grpcadapter.RecoveryInterceptor(logr),
			grpcadapter.LoggingInterceptor(logr),
			grpcadapter.AuthInterceptor(cfg.APIToken),
		),
	)
	grpcadapter.RegisterSimulationServiceServer(grpcServer, grpcadapter.NewServer(manager))
	reflection.Register(grpcServer)

	lis, err := net.Listen("tcp", cfg.GRPCAddr)
	if err != nil {
		logr.Fatal().Err(err).Str("addr", cfg.GRPCAddr).Msg("Failed to listen")
	}

	go func() {
		logr.Info().Str("addr", cfg.GRPCAddr).Msg("gRPC server listening")
		if err := grpcServer.Serve(lis); err != nil {
			logr.Fatal().Err(err).Msg("Failed to serve gRPC server")
		}
	}()

	// 4. Start the read-only HTTP feed
	feedServer := feed.New(feed.Config{Addr: cfg.HTTPAddr, Sessions: manager, Log: logr})
	go func() {
		if err := feedServer.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Fatal().Err(err).Msg("Failed to serve HTTP feed")
		}
	}()

	logr.Info().
		Dur("tick_interval", cfg.TickInterval).
		Int("max_sessions", cfg.MaxSessions).
		Bool("seeded", cfg.Seed != 0).
		Msg("Portfolio simulation server started")

	// Graceful shutdown
	waitForShutdown(logr, grpcServer, feedServer, manager)
}

// waitForShutdown waits for SIGTERM or SIGINT and gracefully shuts down
// the servers, then tears down every session so no timer outlives them
func waitForShutdown(logr zerolog.Logger, grpcServer *grpclib.Server, feedServer *feed.Server, manager *simulation.Manager) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

	sig := <-sigChan
	logr.Info().Str("signal", sig.String()).Msg("Shutting down gracefully")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := feedServer.Shutdown(ctx); err != nil {
		logr.Error().Err(err).Msg("HTTP feed shutdown failed")
	}

	grpcServer.GracefulStop()
	logr.Info().Msg("gRPC server stopped")

	manager.Shutdown()
}
