// Package grpc serves the account operations as xbackend.v1.AuthService.
package grpc

import (
	"context"
	"net"

	"github.com/dmitrijs2005/xbackend/internal/logging"
	"github.com/dmitrijs2005/xbackend/internal/server/auth"
	"github.com/dmitrijs2005/xbackend/internal/server/requests"
	"github.com/dmitrijs2005/xbackend/internal/server/services"
	"google.golang.org/grpc"
)

type GRPCServer struct {
	address  string
	users    *services.UserService
	profiles *services.ProfileService
	avatars  *services.AvatarService
	gate     *auth.Gate
	policy   requests.Policy
	logger   logging.Logger
}

var _ AuthServiceServer = (*GRPCServer)(nil)

func NewGRPCServer(a string, l logging.Logger, us *services.UserService, ps *services.ProfileService,
	as *services.AvatarService, gate *auth.Gate, policy requests.Policy) *GRPCServer {
	return &GRPCServer{
		address:  a,
		logger:   l.With("module", "grpc_server"),
		users:    us,
		profiles: ps,
		avatars:  as,
		gate:     gate,
		policy:   policy,
	}
}

// NewServer returns a grpc.Server with the gate interceptor installed and
// the AuthService registered.
func (s *GRPCServer) NewServer(opts ...grpc.ServerOption) *grpc.Server {
	opts = append(opts, grpc.ChainUnaryInterceptor(s.accessTokenInterceptor))
	srv := grpc.NewServer(opts...)
	srv.RegisterService(&AuthServiceDesc, s)
	return srv
}

func (s *GRPCServer) Run(ctx context.Context) error {

	// announces address
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	srv := s.NewServer()

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", s.address)

	// starts accepting incoming connections
	if err := srv.Serve(listen); err != nil {
		return err
	}

	return nil
}
