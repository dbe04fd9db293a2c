package grpc

import (
	"context"
	"time"

	"google.golang.org/grpc"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
)

const healthCheckMethod = "/grpc.health.v1.Health/Check"

// pingTimeout bounds the database probe made for each health check.
const pingTimeout = 2 * time.Second

func (s *GRPCServer) loggingInterceptor(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
	start := time.Now()

	resp, err := handler(ctx, req)

	s.logger.Debug(ctx, "grpc call",
		"method", info.FullMethod,
		"code", status.Code(err).String(),
		"duration_ms", time.Since(start).Milliseconds(),
	)

	return resp, err
}

// readinessInterceptor refreshes the serving status from a database ping
// before each Check is answered. After shutdown the health server ignores
// the update and keeps reporting NOT_SERVING.
func (s *GRPCServer) readinessInterceptor(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {

	if info.FullMethod == healthCheckMethod && s.db != nil {
		pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
		err := s.db.PingContext(pingCtx)
		cancel()

		if err != nil {
			s.logger.Warn(ctx, "database ping failed", "error", err)
			s.setStatus(healthpb.HealthCheckResponse_NOT_SERVING)
		} else {
			s.setStatus(healthpb.HealthCheckResponse_SERVING)
		}
	}

	return handler(ctx, req)
}
