package utilities

import (
	"fmt"
	"net"

	"github.com/rs/zerolog"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
)

// HealthServer exposes the standard gRPC health protocol for orchestrators and Consul.
type HealthServer struct {
	grpcServer *grpc.Server
	health     *health.Server
	logger     *zerolog.Logger
}

// NewHealthServer creates a gRPC server with only the health service registered.
func NewHealthServer(logger *zerolog.Logger) *HealthServer {
	grpcServer := grpc.NewServer()
	healthServer := health.NewServer()
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_NOT_SERVING)
	grpc_health_v1.RegisterHealthServer(grpcServer, healthServer)

	return &HealthServer{
		grpcServer: grpcServer,
		health:     healthServer,
		logger:     logger,
	}
}

// SetServing flips the overall serving status.
func (s *HealthServer) SetServing(serving bool) {
	status := grpc_health_v1.HealthCheckResponse_NOT_SERVING
	if serving {
		status = grpc_health_v1.HealthCheckResponse_SERVING
	}
	s.health.SetServingStatus("", status)
}

// Serve listens on port and blocks until the server stops.
func (s *HealthServer) Serve(port int) error {
	lis, err := net.Listen("tcp", fmt.Sprintf(":%d", port))
	if err != nil {
		return err
	}

	s.logger.Info().Int("port", port).Msg("gRPC health server starting")
	return s.ServeListener(lis)
}

// ServeListener serves on an existing listener.
func (s *HealthServer) ServeListener(lis net.Listener) error {
	return s.grpcServer.Serve(lis)
}

// Stop marks the service NOT_SERVING and stops the server gracefully.
func (s *HealthServer) Stop() {
	s.health.Shutdown()
	s.grpcServer.GracefulStop()
}
