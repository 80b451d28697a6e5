package client

import "context"

// Client is the account API as seen by the CLI.
type Client interface {
	Close() error
	LoggedIn() bool

	Register(ctx context.Context, name, email, password, dateOfBirth string) error
	Login(ctx context.Context, email, password string) error
	Logout(ctx context.Context) error
	Refresh(ctx context.Context) error
	Me(ctx context.Context) (map[string]any, error)

	VerifyEmail(ctx context.Context, token string) (string, error)
	ResendVerifyEmail(ctx context.Context) (string, error)
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, password string) error
	ChangePassword(ctx context.Context, oldPassword, newPassword string) error

	UploadAvatar(ctx context.Context, image []byte, contentType string) (string, error)
}
