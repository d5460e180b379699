package server

import (
	"context"
	"fmt"
	"net"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

const defaultPort = 50051

// Option configures New.
type Option func(*settings)

type settings struct {
	port         int
	listener     net.Listener
	logger       *zap.Logger
	reflection   bool
	logging      bool
	recovery     bool
	interceptors []grpc.UnaryServerInterceptor
}

// WithPort sets the TCP port to listen on. Defaults to 50051.
func WithPort(port int) Option {
	return func(s *settings) { s.port = port }
}

// WithListener serves on lis instead of opening a TCP port; the port is
// then ignored.
func WithListener(lis net.Listener) Option {
	return func(s *settings) { s.listener = lis }
}

func WithLogger(logger *zap.Logger) Option {
	return func(s *settings) { s.logger = logger }
}

// WithReflection exposes the reflection service for grpcurl and similar clients.
func WithReflection(enabled bool) Option {
	return func(s *settings) { s.reflection = enabled }
}

// WithLogging logs every unary call with its status and latency.
func WithLogging(enabled bool) Option {
	return func(s *settings) { s.logging = enabled }
}

// WithRecovery turns handler panics into codes.Internal errors.
func WithRecovery(enabled bool) Option {
	return func(s *settings) { s.recovery = enabled }
}

// WithUnaryInterceptors appends interceptors after the built-in ones.
func WithUnaryInterceptors(interceptors ...grpc.UnaryServerInterceptor) Option {
	return func(s *settings) { s.interceptors = append(s.interceptors, interceptors...) }
}

// Server is a grpc.Server with a health service and a bound listener.
type Server struct {
	grpcServer   *grpc.Server
	lis          net.Listener
	logger       *zap.Logger
	healthServer *health.Server
}

func (s *settings) listen() (net.Listener, error) {
	if s.listener != nil {
		return s.listener, nil
	}
	if s.port < 1 || s.port > 65535 {
		return nil, fmt.Errorf("grpc port %d out of range 1-65535", s.port)
	}
	lis, err := net.Listen("tcp", fmt.Sprintf(":%d", s.port))
	if err != nil {
		return nil, fmt.Errorf("listen on :%d: %w", s.port, err)
	}
	return lis, nil
}

// chain lists interceptors outermost first. Recovery is always outermost.
func (s *settings) chain() []grpc.UnaryServerInterceptor {
	var out []grpc.UnaryServerInterceptor
	if s.recovery {
		out = append(out, RecoveryInterceptor(s.logger))
	}
	if s.logging {
		out = append(out, LoggingInterceptor(s.logger))
	}
	return append(out, s.interceptors...)
}

// New builds a server and binds its listener. The health service reports
// SERVING for the empty service name until Shutdown.
func New(opts ...Option) (*Server, error) {
	s := &settings{port: defaultPort}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}

	lis, err := s.listen()
	if err != nil {
		return nil, err
	}

	var serverOpts []grpc.ServerOption
	if chain := s.chain(); len(chain) > 0 {
		serverOpts = append(serverOpts, grpc.ChainUnaryInterceptor(chain...))
	}
	grpcServer := grpc.NewServer(serverOpts...)

	if s.reflection {
		reflection.Register(grpcServer)
	}

	healthServer := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthServer)
	healthServer.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)

	return &Server{
		grpcServer:   grpcServer,
		lis:          lis,
		logger:       s.logger.Named("grpc-server"),
		healthServer: healthServer,
	}, nil
}

// RegisterServiceWithHealth calls register with the underlying server and
// marks serviceName SERVING.
func (s *Server) RegisterServiceWithHealth(serviceName string, register func(s *grpc.Server)) {
	register(s.grpcServer)
	if serviceName == "" {
		return
	}
	s.healthServer.SetServingStatus(serviceName, healthpb.HealthCheckResponse_SERVING)
	s.logger.Info("service registered", zap.String("service", serviceName))
}

func (s *Server) SetServiceHealth(serviceName string, status healthpb.HealthCheckResponse_ServingStatus) {
	s.healthServer.SetServingStatus(serviceName, status)
	s.logger.Info("service health changed",
		zap.String("service", serviceName),
		zap.Stringer("status", status))
}

// Start serves in the background.
func (s *Server) Start() {
	addr := s.lis.Addr().String()
	s.logger.Info("serving gRPC", zap.String("addr", addr))

	go func() {
		if err := s.grpcServer.Serve(s.lis); err != nil {
			s.logger.Error("gRPC serve stopped", zap.String("addr", addr), zap.Error(err))
		}
	}()
}

// Shutdown drains in-flight calls. When ctx expires first the remaining
// calls are cut off and ctx.Err is returned.
func (s *Server) Shutdown(ctx context.Context) error {
	s.healthServer.Shutdown()

	stopped := make(chan struct{})
	go func() {
		s.grpcServer.GracefulStop()
		close(stopped)
	}()

	select {
	case <-stopped:
		s.logger.Info("gRPC server drained")
		return nil
	case <-ctx.Done():
		s.grpcServer.Stop()
		s.logger.Warn("gRPC drain timed out, connections closed", zap.Error(ctx.Err()))
		return ctx.Err()
	}
}

func (s *Server) Addr() net.Addr {
	return s.lis.Addr()
}
