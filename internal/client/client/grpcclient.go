package client

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/dmitrijs2005/xbackend/internal/common"
	"github.com/dmitrijs2005/xbackend/internal/netx"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

// upload is a test seam for the object storage PUT.
var upload = netx.UploadToPresignedURL

// invoker is the part of *grpc.ClientConn the client uses.
type invoker interface {
	Invoke(ctx context.Context, method string, args, reply any, opts ...grpc.CallOption) error
}

type GRPCClient struct {
	endpointURL string
	conn        *grpc.ClientConn
	cc          invoker

	mu           sync.Mutex
	accessToken  string
	refreshToken string
}

var _ Client = (*GRPCClient)(nil)

func withAccessToken(ctx context.Context, token string) context.Context {
	md, _ := metadata.FromOutgoingContext(ctx)
	md = md.Copy()
	if md == nil {
		md = metadata.MD{}
	}
	md.Set(common.AuthorizationHeaderName, common.BearerScheme+" "+token)

	return metadata.NewOutgoingContext(ctx, md)
}

func (s *GRPCClient) tokens() (string, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.accessToken, s.refreshToken
}

func (s *GRPCClient) setTokens(access, refresh string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accessToken = access
	s.refreshToken = refresh
}

func isTokenExpired(err error) bool {
	st, ok := status.FromError(err)
	return ok && st.Code() == codes.Unauthenticated && strings.Contains(st.Message(), common.ErrTokenExpired.Error())
}

// accessTokenInterceptor attaches the access token and retries once after a
// refresh when the server reports it expired.
func (s *GRPCClient) accessTokenInterceptor(
	ctx context.Context,
	method string,
	req, reply any,
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {

	access, refresh := s.tokens()
	if access == "" {
		return invoker(ctx, method, req, reply, cc, opts...)
	}

	err := invoker(withAccessToken(ctx, access), method, req, reply, cc, opts...)
	if err == nil || !isTokenExpired(err) || refresh == "" || method == common.AuthServiceMethod("RefreshToken") {
		return err
	}

	if err := s.Refresh(ctx); err != nil {
		return err
	}

	// tokens refreshed, retry with the new access token
	access, _ = s.tokens()
	return invoker(withAccessToken(ctx, access), method, req, reply, cc, opts...)
}

func NewGRPCClient(endpointURL string) (*GRPCClient, error) {
	c := &GRPCClient{endpointURL: endpointURL}
	if err := c.InitGRPCClient(); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *GRPCClient) InitGRPCClient() error {

	conn, err := grpc.NewClient(s.endpointURL, grpc.WithTransportCredentials(insecure.NewCredentials()), grpc.WithUnaryInterceptor(s.accessTokenInterceptor))
	if err != nil {
		return err
	}
	s.conn = conn
	s.cc = conn
	return nil
}

func (s *GRPCClient) Close() error {
	if s.conn == nil {
		return nil
	}
	return s.conn.Close()
}

func (s *GRPCClient) LoggedIn() bool {
	access, _ := s.tokens()
	return access != ""
}

// call sends in to method and returns the reply envelope.
func (s *GRPCClient) call(ctx context.Context, method string, in map[string]any) (*structpb.Struct, error) {
	req, err := structpb.NewStruct(in)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	out := &structpb.Struct{}
	if err := s.cc.Invoke(ctx, common.AuthServiceMethod(method), req, out); err != nil {
		return nil, s.mapError(err)
	}
	return out, nil
}

func message(out *structpb.Struct) string {
	return out.GetFields()["message"].GetStringValue()
}

func result(out *structpb.Struct) map[string]any {
	r := out.GetFields()["result"].GetStructValue()
	if r == nil {
		return nil
	}
	return r.AsMap()
}

// storePair keeps the token pair from a reply, if it carries one.
func (s *GRPCClient) storePair(out *structpb.Struct) {
	r := result(out)
	access, _ := r["access_token"].(string)
	refresh, _ := r["refresh_token"].(string)
	if access != "" && refresh != "" {
		s.setTokens(access, refresh)
	}
}

func (s *GRPCClient) Register(ctx context.Context, name, email, password, dateOfBirth string) error {
	out, err := s.call(ctx, "Register", map[string]any{
		"name":             name,
		"email":            email,
		"password":         password,
		"confirm_password": password,
		"date_of_birth":    dateOfBirth,
	})
	if err != nil {
		return err
	}
	s.storePair(out)
	return nil
}

func (s *GRPCClient) Login(ctx context.Context, email, password string) error {
	out, err := s.call(ctx, "Login", map[string]any{"email": email, "password": password})
	if err != nil {
		return err
	}
	s.storePair(out)
	return nil
}

func (s *GRPCClient) Logout(ctx context.Context) error {
	_, refresh := s.tokens()
	if refresh == "" {
		return ErrNotLoggedIn
	}
	if _, err := s.call(ctx, "Logout", map[string]any{"refresh_token": refresh}); err != nil {
		return err
	}
	s.setTokens("", "")
	return nil
}

func (s *GRPCClient) Refresh(ctx context.Context) error {
	_, refresh := s.tokens()
	if refresh == "" {
		return ErrNotLoggedIn
	}
	out, err := s.call(ctx, "RefreshToken", map[string]any{"refresh_token": refresh})
	if err != nil {
		return err
	}
	s.storePair(out)
	return nil
}

func (s *GRPCClient) Me(ctx context.Context) (map[string]any, error) {
	out, err := s.call(ctx, "GetMe", nil)
	if err != nil {
		return nil, err
	}
	return result(out), nil
}

// VerifyEmail returns the server message. A successful verification also
// replaces the stored pair with one carrying the verified status.
func (s *GRPCClient) VerifyEmail(ctx context.Context, token string) (string, error) {
	out, err := s.call(ctx, "VerifyEmail", map[string]any{"email_verify_token": token})
	if err != nil {
		return "", err
	}
	s.storePair(out)
	return message(out), nil
}

func (s *GRPCClient) ResendVerifyEmail(ctx context.Context) (string, error) {
	out, err := s.call(ctx, "ResendVerifyEmail", nil)
	if err != nil {
		return "", err
	}
	return message(out), nil
}

func (s *GRPCClient) ForgotPassword(ctx context.Context, email string) error {
	_, err := s.call(ctx, "ForgotPassword", map[string]any{"email": email})
	return err
}

func (s *GRPCClient) ResetPassword(ctx context.Context, token, password string) error {
	_, err := s.call(ctx, "ResetPassword", map[string]any{
		"forgot_password_token": token,
		"password":              password,
		"confirm_password":      password,
	})
	return err
}

func (s *GRPCClient) ChangePassword(ctx context.Context, oldPassword, newPassword string) error {
	_, err := s.call(ctx, "ChangePassword", map[string]any{
		"old_password":     oldPassword,
		"password":         newPassword,
		"confirm_password": newPassword,
	})
	return err
}

// UploadAvatar asks the server for a presigned URL, uploads image there and
// sets the public URL as the profile avatar.
func (s *GRPCClient) UploadAvatar(ctx context.Context, image []byte, contentType string) (string, error) {
	out, err := s.call(ctx, "PresignAvatar", nil)
	if err != nil {
		return "", err
	}
	r := result(out)
	uploadURL, _ := r["upload_url"].(string)
	publicURL, _ := r["public_url"].(string)
	if uploadURL == "" || publicURL == "" {
		return "", fmt.Errorf("presign avatar: empty reply")
	}

	if err := upload(ctx, uploadURL, contentType, image); err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	if _, err := s.call(ctx, "UpdateMe", map[string]any{"avatar": publicURL}); err != nil {
		return "", err
	}
	return publicURL, nil
}

func (s *GRPCClient) mapError(err error) error {
	if err == nil {
		return nil
	}
	st, _ := status.FromError(err)
	switch st.Code() {
	case codes.Unauthenticated, codes.PermissionDenied:
		return fmt.Errorf("%w: %s", ErrUnauthorized, st.Message())
	case codes.InvalidArgument, codes.FailedPrecondition:
		return fmt.Errorf("%w: %s", ErrInvalidInput, st.Message())
	case codes.AlreadyExists:
		return fmt.Errorf("%w: %s", ErrAlreadyExists, st.Message())
	case codes.NotFound:
		return ErrNotFound
	case codes.Unavailable, codes.DeadlineExceeded:
		return ErrUnavailable
	default:
		return fmt.Errorf("rpc error: %w", err)
	}
}
