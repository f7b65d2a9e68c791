package server

import (
	"log/slog"

	grpclogs "github.com/mama165/sdk-go/grpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

// StoreService is the health service name reflecting message store availability.
// The empty service name reports the process as a whole.
const StoreService = "safespace.MessageStore"

// NewGRPCServer builds the gRPC server: standard health checking plus
// reflection so grpcurl and grpc-health-probe work without stubs.
func NewGRPCServer(log *slog.Logger, healthServer *health.Server) *grpc.Server {
	s := grpc.NewServer(
		grpc.ChainUnaryInterceptor(
			grpclogs.UnaryLoggingInterceptor(log),
		))
	healthpb.RegisterHealthServer(s, healthServer)
	reflection.Register(s)
	return s
}

// NewHealthServer starts with the store reported as NOT_SERVING until the
// health worker has probed it once.
func NewHealthServer() *health.Server {
	healthServer := health.NewServer()
	healthServer.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	healthServer.SetServingStatus(StoreService, healthpb.HealthCheckResponse_NOT_SERVING)
	return healthServer
}
