// Package health serves the standard gRPC health protocol for the API.
package health

import (
	"context"
	"net"

	"github.com/boulin/eventverse/internal/common"
	"github.com/boulin/eventverse/internal/logging"
	"google.golang.org/grpc"
	grpchealth "google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// Server reports whether the HTTP API is serving. It starts NOT_SERVING.
type Server struct {
	address string
	logger  logging.Logger
	status  *grpchealth.Server
	srv     *grpc.Server
}

func NewServer(address string, l logging.Logger) *Server {
	status := grpchealth.NewServer()
	status.SetServingStatus(common.HealthServiceName, healthpb.HealthCheckResponse_NOT_SERVING)

	srv := grpc.NewServer()
	healthpb.RegisterHealthServer(srv, status)

	return &Server{
		address: address,
		logger:  l.With("module", "health_server"),
		status:  status,
		srv:     srv,
	}
}

func (s *Server) SetServing() {
	s.status.SetServingStatus(common.HealthServiceName, healthpb.HealthCheckResponse_SERVING)
}

func (s *Server) SetNotServing() {
	s.status.SetServingStatus(common.HealthServiceName, healthpb.HealthCheckResponse_NOT_SERVING)
}

// Run listens on the configured address until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, listen)
}

// Serve accepts health checks on lis until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, lis net.Listener) error {
	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping health server...")
		s.status.Shutdown()
		s.srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting health server", "address", lis.Addr().String())

	if err := s.srv.Serve(lis); err != nil {
		return err
	}
	return nil
}
