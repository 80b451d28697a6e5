package grpc

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/dmitrijs2005/xbackend/internal/common"
	"github.com/dmitrijs2005/xbackend/internal/server/auth"
	"github.com/dmitrijs2005/xbackend/internal/server/requests"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

// decode copies the Struct fields into a request DTO via their JSON names.
func decode(in *structpb.Struct, dst any) error {
	b, err := protojson.Marshal(in)
	if err != nil {
		return status.Error(codes.InvalidArgument, "malformed request")
	}
	if err := json.Unmarshal(b, dst); err != nil {
		return status.Error(codes.InvalidArgument, "malformed request")
	}
	return nil
}

// reply wraps result in the {"message", "result"} envelope.
func reply(msg string, result any) (*structpb.Struct, error) {
	env := map[string]any{"message": msg}
	if result != nil {
		env["result"] = result
	}
	b, err := json.Marshal(env)
	if err != nil {
		return nil, status.Error(codes.Internal, "internal error")
	}
	out := &structpb.Struct{}
	if err := protojson.Unmarshal(b, out); err != nil {
		return nil, status.Error(codes.Internal, "internal error")
	}
	return out, nil
}

// toStatus maps service errors to gRPC status codes.
func (s *GRPCServer) toStatus(ctx context.Context, err error) error {
	switch {
	case errors.Is(err, common.ErrValidation):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, common.ErrDuplicateEmail), errors.Is(err, common.ErrConflict):
		return status.Error(codes.AlreadyExists, err.Error())
	case errors.Is(err, common.ErrInvalidCredentials), errors.Is(err, common.ErrorUnauthorized):
		return status.Error(codes.Unauthenticated, err.Error())
	case errors.Is(err, common.ErrForbidden):
		return status.Error(codes.PermissionDenied, err.Error())
	case errors.Is(err, common.ErrorNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, common.ErrInvalidOperation):
		return status.Error(codes.FailedPrecondition, err.Error())
	default:
		s.logger.Error(ctx, "internal error", "error", err)
		return status.Error(codes.Internal, "internal error")
	}
}

func callerID(ctx context.Context) (string, error) {
	claims, ok := auth.ClaimsFromContext(ctx)
	if !ok {
		return "", status.Error(codes.Unauthenticated, "unauthorized")
	}
	return claims.UserID, nil
}

func (s *GRPCServer) Register(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	s.logger.Info(ctx, "Registration request")

	var req requests.RegisterRequest
	if err := decode(in, &req); err != nil {
		return nil, err
	}
	if err := req.Validate(s.policy); err != nil {
		return nil, s.toStatus(ctx, err)
	}

	pair, err := s.users.Register(ctx, req.Email, req.Password, req.Name, req.BirthDate())
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return reply("register success", pair)
}

func (s *GRPCServer) Login(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req requests.LoginRequest
	if err := decode(in, &req); err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, s.toStatus(ctx, err)
	}

	pair, err := s.users.Login(ctx, req.Email, req.Password)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return reply("login success", pair)
}

func (s *GRPCServer) Logout(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req requests.RefreshTokenRequest
	if err := decode(in, &req); err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, s.toStatus(ctx, err)
	}

	if err := s.users.Logout(ctx, req.RefreshToken); err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return reply("logout success", nil)
}

func (s *GRPCServer) RefreshToken(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req requests.RefreshTokenRequest
	if err := decode(in, &req); err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, s.toStatus(ctx, err)
	}

	pair, err := s.users.RefreshToken(ctx, req.RefreshToken)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return reply("refresh token success", pair)
}

func (s *GRPCServer) VerifyEmail(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req requests.VerifyEmailRequest
	if err := decode(in, &req); err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, s.toStatus(ctx, err)
	}

	pair, err := s.users.VerifyEmail(ctx, req.EmailVerifyToken)
	if errors.Is(err, common.ErrAlreadyVerified) {
		return reply(common.ErrAlreadyVerified.Error(), nil)
	}
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return reply("email verify success", pair)
}

func (s *GRPCServer) ResendVerifyEmail(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	id, err := callerID(ctx)
	if err != nil {
		return nil, err
	}

	err = s.users.ResendEmailVerify(ctx, id)
	if errors.Is(err, common.ErrAlreadyVerified) {
		return reply(common.ErrAlreadyVerified.Error(), nil)
	}
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return reply("resend verify email success", nil)
}

func (s *GRPCServer) ForgotPassword(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req requests.ForgotPasswordRequest
	if err := decode(in, &req); err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, s.toStatus(ctx, err)
	}

	if err := s.users.ForgotPassword(ctx, req.Email); err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return reply("check email to reset password", nil)
}

func (s *GRPCServer) VerifyForgotPassword(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req requests.VerifyForgotPasswordRequest
	if err := decode(in, &req); err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, s.toStatus(ctx, err)
	}

	if err := s.users.VerifyForgotPassword(ctx, req.ForgotPasswordToken); err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return reply("verify forgot password success", nil)
}

func (s *GRPCServer) ResetPassword(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req requests.ResetPasswordRequest
	if err := decode(in, &req); err != nil {
		return nil, err
	}
	if err := req.Validate(s.policy); err != nil {
		return nil, s.toStatus(ctx, err)
	}

	if err := s.users.ResetPassword(ctx, req.ForgotPasswordToken, req.Password); err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return reply("reset password success", nil)
}

func (s *GRPCServer) ChangePassword(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	id, err := callerID(ctx)
	if err != nil {
		return nil, err
	}

	var req requests.ChangePasswordRequest
	if err := decode(in, &req); err != nil {
		return nil, err
	}
	if err := req.Validate(s.policy); err != nil {
		return nil, s.toStatus(ctx, err)
	}

	if err := s.users.ChangePassword(ctx, id, req.OldPassword, req.Password); err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return reply("change password success", nil)
}

func (s *GRPCServer) GetMe(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	id, err := callerID(ctx)
	if err != nil {
		return nil, err
	}

	p, err := s.profiles.GetMe(ctx, id)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return reply("get my profile success", p)
}

func (s *GRPCServer) UpdateMe(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	id, err := callerID(ctx)
	if err != nil {
		return nil, err
	}

	var req requests.UpdateMeRequest
	if err := decode(in, &req); err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, s.toStatus(ctx, err)
	}

	p, err := s.profiles.UpdateMe(ctx, id, req.Patch())
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return reply("update my profile success", p)
}

func (s *GRPCServer) PresignAvatar(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	id, err := callerID(ctx)
	if err != nil {
		return nil, err
	}

	up, err := s.avatars.PresignUpload(ctx, id)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return reply("upload the avatar to upload_url", up)
}
