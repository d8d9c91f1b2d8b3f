package server

import (
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"jobscout/internal/provider"
)

// ProviderService is the health service name tracking the job search provider.
// The empty name reports the process itself and is always SERVING.
const ProviderService = "jobscout.v1.Provider"

// SetProviderStatus publishes a connectivity probe result
func (s *Server) SetProviderStatus(status provider.ConnectionStatus) {
	serving := healthpb.HealthCheckResponse_NOT_SERVING
	if status.OK {
		serving = healthpb.HealthCheckResponse_SERVING
	}
	s.health.SetServingStatus(ProviderService, serving)

	s.logger.Debug("Provider health updated", map[string]interface{}{
		"serving":     status.OK,
		"status_code": status.StatusCode,
		"message":     status.Message,
	})
}
