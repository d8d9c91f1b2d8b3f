// Package server hosts the gRPC side of the service: the standard health
// service, reflecting provider connectivity, plus reflection for tooling.
package server

import (
	"context"
	"net"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/keepalive"
	"google.golang.org/grpc/reflection"

	"jobscout/internal/grpc/interceptors"
	"jobscout/internal/logging"
)

type Server struct {
	grpc   *grpc.Server
	health *health.Server
	logger logging.Logger
}

func NewServer(logger logging.Logger) *Server {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	logger = logger.WithField("component", "grpc")

	grpcServer := grpc.NewServer(
		grpc.KeepaliveParams(keepalive.ServerParameters{
			Time:    30 * time.Second,
			Timeout: 5 * time.Second,
		}),
		grpc.KeepaliveEnforcementPolicy(keepalive.EnforcementPolicy{
			MinTime:             5 * time.Second,
			PermitWithoutStream: true,
		}),
		grpc.ChainUnaryInterceptor(
			interceptors.RecoveryInterceptor(logger),
			interceptors.LoggingInterceptor(logger),
		),
		grpc.ChainStreamInterceptor(
			interceptors.StreamRecoveryInterceptor(logger),
			interceptors.StreamLoggingInterceptor(logger),
		),
	)

	hs := health.NewServer()
	// provider state is unknown until the first probe
	hs.SetServingStatus(ProviderService, healthpb.HealthCheckResponse_UNKNOWN)
	healthpb.RegisterHealthServer(grpcServer, hs)

	reflection.Register(grpcServer)

	return &Server{grpc: grpcServer, health: hs, logger: logger}
}

// Serve blocks serving lis until Stop
func (s *Server) Serve(lis net.Listener) error {
	s.logger.Info("Starting gRPC server", map[string]interface{}{
		"address": lis.Addr().String(),
	})
	return s.grpc.Serve(lis)
}

// Stop drains in-flight calls, forcing a stop once ctx expires
func (s *Server) Stop(ctx context.Context) {
	s.logger.Info("Shutting down gRPC server...", map[string]interface{}{})
	s.health.Shutdown()

	done := make(chan struct{})
	go func() {
		s.grpc.GracefulStop()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		s.logger.Warn("gRPC graceful stop timed out, forcing", map[string]interface{}{})
		s.grpc.Stop()
	}
}
