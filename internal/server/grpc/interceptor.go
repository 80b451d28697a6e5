package grpc

import (
	"context"

	"github.com/dmitrijs2005/xbackend/internal/common"
	"github.com/dmitrijs2005/xbackend/internal/server/auth"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

// methods that need an access token
var protectedMethods = map[string]bool{
	common.AuthServiceMethod("Logout"):            true,
	common.AuthServiceMethod("ResendVerifyEmail"): true,
	common.AuthServiceMethod("GetMe"):             true,
	common.AuthServiceMethod("ChangePassword"):    true,
	common.AuthServiceMethod("UpdateMe"):          true,
	common.AuthServiceMethod("PresignAvatar"):     true,
}

// methods that additionally need a verified account
var verifiedMethods = map[string]bool{
	common.AuthServiceMethod("ChangePassword"): true,
	common.AuthServiceMethod("UpdateMe"):       true,
	common.AuthServiceMethod("PresignAvatar"):  true,
}

func (s *GRPCServer) accessTokenInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	if !protectedMethods[info.FullMethod] {
		return handler(ctx, req)
	}

	var header string
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if values := md.Get(common.AuthorizationHeaderName); len(values) > 0 {
			header = values[0]
		}
	}

	claims, err := s.gate.Authenticate(header)
	if err != nil {
		return nil, status.Error(codes.Unauthenticated, err.Error())
	}

	if verifiedMethods[info.FullMethod] {
		if err := auth.RequireVerified(claims); err != nil {
			return nil, status.Error(codes.PermissionDenied, "email not verified")
		}
	}

	return handler(auth.WithClaims(ctx, claims), req)
}
