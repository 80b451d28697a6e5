package grpc

import (
	"context"

	"github.com/dmitrijs2005/xbackend/internal/common"
	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// AuthServiceServer is the account API. Requests and replies are
// google.protobuf.Struct values using the same field names as the JSON API.
type AuthServiceServer interface {
	Register(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Login(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Logout(context.Context, *structpb.Struct) (*structpb.Struct, error)
	RefreshToken(context.Context, *structpb.Struct) (*structpb.Struct, error)
	VerifyEmail(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ResendVerifyEmail(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ForgotPassword(context.Context, *structpb.Struct) (*structpb.Struct, error)
	VerifyForgotPassword(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ResetPassword(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ChangePassword(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetMe(context.Context, *structpb.Struct) (*structpb.Struct, error)
	UpdateMe(context.Context, *structpb.Struct) (*structpb.Struct, error)
	PresignAvatar(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

type unaryCall func(AuthServiceServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func method(name string, call unaryCall) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(structpb.Struct)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(AuthServiceServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{
				Server:     srv,
				FullMethod: common.AuthServiceMethod(name),
			}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(AuthServiceServer), ctx, req.(*structpb.Struct))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

// AuthServiceDesc describes the service for grpc.Server.RegisterService.
var AuthServiceDesc = grpc.ServiceDesc{
	ServiceName: common.AuthServiceName,
	HandlerType: (*AuthServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		method("Register", AuthServiceServer.Register),
		method("Login", AuthServiceServer.Login),
		method("Logout", AuthServiceServer.Logout),
		method("RefreshToken", AuthServiceServer.RefreshToken),
		method("VerifyEmail", AuthServiceServer.VerifyEmail),
		method("ResendVerifyEmail", AuthServiceServer.ResendVerifyEmail),
		method("ForgotPassword", AuthServiceServer.ForgotPassword),
		method("VerifyForgotPassword", AuthServiceServer.VerifyForgotPassword),
		method("ResetPassword", AuthServiceServer.ResetPassword),
		method("ChangePassword", AuthServiceServer.ChangePassword),
		method("GetMe", AuthServiceServer.GetMe),
		method("UpdateMe", AuthServiceServer.UpdateMe),
		method("PresignAvatar", AuthServiceServer.PresignAvatar),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "xbackend/v1/auth.proto",
}
