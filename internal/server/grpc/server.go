// Package grpc exposes the standard gRPC health service so orchestrators
// can probe the process over gRPC as well as over /healthz and /readyz.
package grpc

import (
	"context"
	"net"
	"time"

	"github.com/dmitrijs2005/profilekeeper/internal/logging"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// ServiceName is the health service entry tracking readiness. The empty
// name reports the same status, for probes that do not pass a service.
const ServiceName = "profilekeeper"

// DefaultRefreshInterval is how often readiness is re-evaluated.
const DefaultRefreshInterval = 10 * time.Second

// Readiness is satisfied by health.Service.
type Readiness interface {
	Ready(ctx context.Context) error
}

type HealthServer struct {
	address  string
	ready    Readiness
	interval time.Duration
	logger   logging.Logger
	health   *health.Server
}

func NewHealthServer(a string, l logging.Logger, r Readiness) *HealthServer {
	return &HealthServer{
		address:  a,
		ready:    r,
		interval: DefaultRefreshInterval,
		logger:   l.With("module", "grpc_health"),
		health:   health.NewServer(),
	}
}

func (s *HealthServer) setStatus(st healthpb.HealthCheckResponse_ServingStatus) {
	s.health.SetServingStatus("", st)
	s.health.SetServingStatus(ServiceName, st)
}

func (s *HealthServer) refresh(ctx context.Context) {
	if err := s.ready.Ready(ctx); err != nil {
		s.logger.Warn(ctx, "not ready", "error", err)
		s.setStatus(healthpb.HealthCheckResponse_NOT_SERVING)
		return
	}
	s.setStatus(healthpb.HealthCheckResponse_SERVING)
}

func (s *HealthServer) watch(ctx context.Context) {
	t := time.NewTicker(s.interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			s.refresh(ctx)
		}
	}
}

func (s *HealthServer) Run(ctx context.Context) error {

	// announces address
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(s.requestLogInterceptor))
	healthpb.RegisterHealthServer(srv, s.health)

	s.refresh(ctx)
	go s.watch(ctx)

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC health server...")
		s.health.Shutdown()
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC health server", "address", s.address)

	if err := srv.Serve(listen); err != nil {
		return err
	}

	return nil
}
