package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/wostup/pitchit-api/shared/discovery"
	"github.com/wostup/pitchit-api/shared/utilities"
)

const shutdownTimeout = 15 * time.Second

// Config describes one service process.
type Config struct {
	Name           string
	Host           string
	Port           int
	GRPCHealthPort int
	ConsulAddr     string
	Handler        http.Handler
}

// Run serves HTTP (plus gRPC health and Consul registration when configured)
// until ctx is cancelled, then shuts everything down.
func Run(ctx context.Context, logger *zerolog.Logger, cfg Config) error {
	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           cfg.Handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	var healthServer *utilities.HealthServer
	if cfg.GRPCHealthPort > 0 {
		healthServer = utilities.NewHealthServer(logger)
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info().Int("port", cfg.Port).Str("service", cfg.Name).Msg("HTTP server starting")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	if healthServer != nil {
		g.Go(func() error {
			return healthServer.Serve(cfg.GRPCHealthPort)
		})
		healthServer.SetServing(true)
	}

	reg := discovery.Registration{
		Name:           cfg.Name,
		Host:           cfg.Host,
		HTTPPort:       cfg.Port,
		GRPCHealthPort: cfg.GRPCHealthPort,
	}
	var registry *discovery.Registry
	if cfg.ConsulAddr != "" {
		r, err := discovery.NewRegistry(cfg.ConsulAddr, logger)
		if err != nil {
			logger.Error().Err(err).Msg("failed to create consul client")
		} else if err := r.Register(reg); err != nil {
			logger.Error().Err(err).Msg("failed to register with consul")
		} else {
			registry = r
		}
	}

	g.Go(func() error {
		<-gctx.Done()
		logger.Info().Str("service", cfg.Name).Msg("shutting down")

		if registry != nil {
			registry.Deregister(reg)
		}
		if healthServer != nil {
			healthServer.Stop()
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		return httpServer.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
