// Package http exposes the account operations as a JSON API on echo.
package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/dmitrijs2005/xbackend/internal/logging"
	"github.com/dmitrijs2005/xbackend/internal/server/auth"
	"github.com/dmitrijs2005/xbackend/internal/server/requests"
	"github.com/dmitrijs2005/xbackend/internal/server/services"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

const shutdownTimeout = 10 * time.Second

type HTTPServer struct {
	address  string
	users    *services.UserService
	profiles *services.ProfileService
	avatars  *services.AvatarService
	gate     *auth.Gate
	policy   requests.Policy
	limiter  middleware.RateLimiterStore
	logger   logging.Logger
}

// Option configures optional parts of the server.
type Option func(*HTTPServer)

// WithRateLimiter throttles the unauthenticated /users endpoints per
// client IP using store.
func WithRateLimiter(store middleware.RateLimiterStore) Option {
	return func(s *HTTPServer) { s.limiter = store }
}

func NewHTTPServer(address string, l logging.Logger, us *services.UserService, ps *services.ProfileService,
	as *services.AvatarService, gate *auth.Gate, policy requests.Policy, opts ...Option) *HTTPServer {

	s := &HTTPServer{
		address:  address,
		users:    us,
		profiles: ps,
		avatars:  as,
		gate:     gate,
		policy:   policy,
		logger:   l.With("module", "http_server"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Router builds the echo instance with every route registered.
func (s *HTTPServer) Router() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = s.errorHandler

	e.Use(middleware.Recover())
	e.Use(s.requestLogger())

	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
	})

	g := e.Group("/users")

	var public []echo.MiddlewareFunc
	if s.limiter != nil {
		public = append(public, s.rateLimiter())
	}

	access := s.requireAccessToken
	verified := s.requireVerified

	g.POST("/register", s.register, public...)
	g.POST("/login", s.login, public...)
	g.POST("/refresh-token", s.refreshToken, public...)
	g.POST("/verify-email", s.verifyEmail, public...)
	g.POST("/forgot-password", s.forgotPassword, public...)
	g.POST("/verify-forgot-password", s.verifyForgotPassword, public...)
	g.POST("/reset-password", s.resetPassword, public...)

	g.POST("/logout", s.logout, access)
	g.POST("/resend-verify-email", s.resendVerifyEmail, access)
	g.GET("/me", s.getMe, access)
	g.PATCH("/me", s.updateMe, access, verified)
	g.POST("/me/avatar", s.presignAvatar, access, verified)
	g.POST("/follow", s.follow, access, verified)
	g.DELETE("/follow/:user_id", s.unfollow, access, verified)
	g.PUT("/change-password", s.changePassword, access, verified)

	g.GET("/:username", s.getByUsername)

	return e
}

func (s *HTTPServer) Run(ctx context.Context) error {
	e := s.Router()

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := e.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(shutdownCtx, "http shutdown", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	if err := e.Start(s.address); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
