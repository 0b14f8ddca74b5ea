package grpc

import (
	"github.com/lcalzada-xor/factmap/internal/core/domain"
	"github.com/lcalzada-xor/factmap/internal/core/ports"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

// Health service names reported alongside the overall "" entry
const (
	FactsServiceName = "factmap.Facts"
	MapServiceName   = "factmap.Map"
)

// HealthReporter mirrors screen state into the gRPC health service.
// The facts entry is NOT_SERVING while the last sequence ended in error.
type HealthReporter struct {
	health *health.Server
}

// NewGrpcServer builds a server exposing grpc.health.v1 and reflection.
func NewGrpcServer() (*grpc.Server, *HealthReporter) {
	s := grpc.NewServer()
	hs := health.NewServer()
	healthpb.RegisterHealthServer(s, hs)
	reflection.Register(s)

	hs.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	hs.SetServingStatus(FactsServiceName, healthpb.HealthCheckResponse_SERVING)
	hs.SetServingStatus(MapServiceName, healthpb.HealthCheckResponse_SERVING)

	return s, &HealthReporter{health: hs}
}

func (h *HealthReporter) NotifyFacts(state domain.FactsState) {
	status := healthpb.HealthCheckResponse_SERVING
	if state.Status == domain.FactsError {
		status = healthpb.HealthCheckResponse_NOT_SERVING
	}
	h.health.SetServingStatus(FactsServiceName, status)
}

func (h *HealthReporter) NotifyMap(domain.MapState) {}

func (h *HealthReporter) NotifyNav(domain.NavState) {}

// Shutdown flips every entry to NOT_SERVING ahead of GracefulStop.
func (h *HealthReporter) Shutdown() {
	h.health.Shutdown()
}

var _ ports.StateNotifier = (*HealthReporter)(nil)
