package grpc

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/lcalzada-xor/factmap/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/test/bufconn"
)

func dialHealth(t *testing.T) (healthpb.HealthClient, *HealthReporter) {
	t.Helper()
	lis := bufconn.Listen(1 << 20)
	srv, reporter := NewGrpcServer()
	go srv.Serve(lis)
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	return healthpb.NewHealthClient(conn), reporter
}

func check(t *testing.T, client healthpb.HealthClient, service string) healthpb.HealthCheckResponse_ServingStatus {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	resp, err := client.Check(ctx, &healthpb.HealthCheckRequest{Service: service})
	require.NoError(t, err)
	return resp.GetStatus()
}

func TestHealth_ServingOnStart(t *testing.T) {
	client, _ := dialHealth(t)

	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, check(t, client, ""))
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, check(t, client, FactsServiceName))
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, check(t, client, MapServiceName))
}

func TestHealth_FollowsFactsState(t *testing.T) {
	client, reporter := dialHealth(t)

	reporter.NotifyFacts(domain.FactsState{Status: domain.FactsError, Error: "Failed to load facts: boom"})
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, check(t, client, FactsServiceName))
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, check(t, client, ""))

	reporter.NotifyFacts(domain.NewLoadingState())
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, check(t, client, FactsServiceName))
}

func TestHealth_Shutdown(t *testing.T) {
	client, reporter := dialHealth(t)

	reporter.Shutdown()
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, check(t, client, ""))
}
