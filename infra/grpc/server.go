package grpc

import (
	"fmt"
	"net"

	"github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/logging"
	"github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/recovery"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
)

type Server struct {
	server   *grpc.Server
	health   *health.Server
	listener net.Listener
}

// NewServer listens on port and registers the item and health services.
func NewServer(port string, items ItemServiceServer) (*Server, error) {
	lis, err := net.Listen("tcp", fmt.Sprintf(":%s", port))
	if err != nil {
		return nil, fmt.Errorf("failed to listen: %w", err)
	}

	return NewServerWithListener(lis, items), nil
}

func NewServerWithListener(lis net.Listener, items ItemServiceServer) *Server {
	grpcServer := grpc.NewServer(
		grpc.ChainUnaryInterceptor(
			recovery.UnaryServerInterceptor(recoveryOptions()...),
			logging.UnaryServerInterceptor(InterceptorLogger(zap.L()), loggingOptions()...),
		),
	)

	healthServer := health.NewServer()
	grpc_health_v1.RegisterHealthServer(grpcServer, healthServer)
	RegisterItemServiceServer(grpcServer, items)
	healthServer.SetServingStatus(ItemServiceName, grpc_health_v1.HealthCheckResponse_SERVING)

	return &Server{
		server:   grpcServer,
		health:   healthServer,
		listener: lis,
	}
}

func (s *Server) Start() error {
	zap.L().Info("gRPC server started successfully",
		zap.String("address", s.listener.Addr().String()))
	return s.server.Serve(s.listener)
}

func (s *Server) GracefulStop() {
	s.health.Shutdown()
	s.server.GracefulStop()
}
