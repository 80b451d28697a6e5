package http

import (
	"github.com/dmitrijs2005/xbackend/internal/common"
	"github.com/dmitrijs2005/xbackend/internal/server/auth"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// requireAccessToken authenticates the bearer token and stores its claims
// in the request context. It runs before the body is read.
func (s *HTTPServer) requireAccessToken(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		claims, err := s.gate.Authenticate(c.Request().Header.Get(echo.HeaderAuthorization))
		if err != nil {
			return err
		}
		req := c.Request()
		c.SetRequest(req.WithContext(auth.WithClaims(req.Context(), claims)))
		return next(c)
	}
}

// requireVerified must be chained after requireAccessToken.
func (s *HTTPServer) requireVerified(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		claims, _ := auth.ClaimsFromContext(c.Request().Context())
		if err := auth.RequireVerified(claims); err != nil {
			return err
		}
		return next(c)
	}
}

func (s *HTTPServer) rateLimiter() echo.MiddlewareFunc {
	return middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		Store: s.limiter,
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.RealIP(), nil
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return common.ErrorInternal
		},
		DenyHandler: func(c echo.Context, identifier string, err error) error {
			if err != nil {
				s.logger.Error(c.Request().Context(), "rate limit store", "error", err)
				return common.ErrorInternal
			}
			return common.ErrTooManyRequests
		},
	})
}

// requestLogger writes one line per request into the service logger. Only
// the path is logged; query strings may carry tokens.
func (s *HTTPServer) requestLogger() echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:   true,
		LogMethod:   true,
		LogURIPath:  true,
		LogLatency:  true,
		LogRemoteIP: true,
		LogError:    true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			ctx := c.Request().Context()
			args := []any{
				"method", v.Method,
				"path", v.URIPath,
				"status", v.Status,
				"latency", v.Latency,
				"remote_ip", v.RemoteIP,
			}
			if claims, ok := auth.ClaimsFromContext(ctx); ok {
				args = append(args, "user_id", claims.UserID)
			}
			if v.Status >= 500 && v.Error != nil {
				s.logger.Error(ctx, "request failed", append(args, "error", v.Error)...)
				return nil
			}
			s.logger.Info(ctx, "request", args...)
			return nil
		},
	})
}
