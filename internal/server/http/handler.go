package http

import (
	"errors"
	"net/http"

	"github.com/dmitrijs2005/xbackend/internal/common"
	"github.com/dmitrijs2005/xbackend/internal/server/auth"
	"github.com/dmitrijs2005/xbackend/internal/server/requests"
	"github.com/labstack/echo/v4"
)

type response struct {
	Message string `json:"message"`
	Result  any    `json:"result,omitempty"`
}

func reply(c echo.Context, code int, msg string, result any) error {
	return c.JSON(code, response{Message: msg, Result: result})
}

// callerID returns the user id put in the context by requireAccessToken.
func callerID(c echo.Context) (string, error) {
	claims, ok := auth.ClaimsFromContext(c.Request().Context())
	if !ok {
		return "", common.ErrorUnauthorized
	}
	return claims.UserID, nil
}

func (s *HTTPServer) register(c echo.Context) error {
	var req requests.RegisterRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	if err := req.Validate(s.policy); err != nil {
		return err
	}

	pair, err := s.users.Register(c.Request().Context(), req.Email, req.Password, req.Name, req.BirthDate())
	if err != nil {
		return err
	}
	return reply(c, http.StatusCreated, "register success", pair)
}

func (s *HTTPServer) login(c echo.Context) error {
	var req requests.LoginRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	if err := req.Validate(); err != nil {
		return err
	}

	pair, err := s.users.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return reply(c, http.StatusOK, "login success", pair)
}

func (s *HTTPServer) logout(c echo.Context) error {
	var req requests.RefreshTokenRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	if err := req.Validate(); err != nil {
		return err
	}

	if err := s.users.Logout(c.Request().Context(), req.RefreshToken); err != nil {
		return err
	}
	return reply(c, http.StatusOK, "logout success", nil)
}

func (s *HTTPServer) refreshToken(c echo.Context) error {
	var req requests.RefreshTokenRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	if err := req.Validate(); err != nil {
		return err
	}

	pair, err := s.users.RefreshToken(c.Request().Context(), req.RefreshToken)
	if err != nil {
		return err
	}
	return reply(c, http.StatusOK, "refresh token success", pair)
}

func (s *HTTPServer) verifyEmail(c echo.Context) error {
	var req requests.VerifyEmailRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	if err := req.Validate(); err != nil {
		return err
	}

	pair, err := s.users.VerifyEmail(c.Request().Context(), req.EmailVerifyToken)
	if errors.Is(err, common.ErrAlreadyVerified) {
		return reply(c, http.StatusOK, common.ErrAlreadyVerified.Error(), nil)
	}
	if err != nil {
		return err
	}
	return reply(c, http.StatusOK, "email verify success", pair)
}

func (s *HTTPServer) resendVerifyEmail(c echo.Context) error {
	id, err := callerID(c)
	if err != nil {
		return err
	}

	err = s.users.ResendEmailVerify(c.Request().Context(), id)
	if errors.Is(err, common.ErrAlreadyVerified) {
		return reply(c, http.StatusOK, common.ErrAlreadyVerified.Error(), nil)
	}
	if err != nil {
		return err
	}
	return reply(c, http.StatusOK, "resend verify email success", nil)
}

func (s *HTTPServer) forgotPassword(c echo.Context) error {
	var req requests.ForgotPasswordRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	if err := req.Validate(); err != nil {
		return err
	}

	if err := s.users.ForgotPassword(c.Request().Context(), req.Email); err != nil {
		return err
	}
	return reply(c, http.StatusOK, "check email to reset password", nil)
}

func (s *HTTPServer) verifyForgotPassword(c echo.Context) error {
	var req requests.VerifyForgotPasswordRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	if err := req.Validate(); err != nil {
		return err
	}

	if err := s.users.VerifyForgotPassword(c.Request().Context(), req.ForgotPasswordToken); err != nil {
		return err
	}
	return reply(c, http.StatusOK, "verify forgot password success", nil)
}

func (s *HTTPServer) resetPassword(c echo.Context) error {
	var req requests.ResetPasswordRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	if err := req.Validate(s.policy); err != nil {
		return err
	}

	if err := s.users.ResetPassword(c.Request().Context(), req.ForgotPasswordToken, req.Password); err != nil {
		return err
	}
	return reply(c, http.StatusOK, "reset password success", nil)
}

func (s *HTTPServer) changePassword(c echo.Context) error {
	id, err := callerID(c)
	if err != nil {
		return err
	}

	var req requests.ChangePasswordRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	if err := req.Validate(s.policy); err != nil {
		return err
	}

	if err := s.users.ChangePassword(c.Request().Context(), id, req.OldPassword, req.Password); err != nil {
		return err
	}
	return reply(c, http.StatusOK, "change password success", nil)
}

func (s *HTTPServer) getMe(c echo.Context) error {
	id, err := callerID(c)
	if err != nil {
		return err
	}

	p, err := s.profiles.GetMe(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return reply(c, http.StatusOK, "get my profile success", p)
}

func (s *HTTPServer) updateMe(c echo.Context) error {
	id, err := callerID(c)
	if err != nil {
		return err
	}

	var req requests.UpdateMeRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	if err := req.Validate(); err != nil {
		return err
	}

	p, err := s.profiles.UpdateMe(c.Request().Context(), id, req.Patch())
	if err != nil {
		return err
	}
	return reply(c, http.StatusOK, "update my profile success", p)
}

func (s *HTTPServer) presignAvatar(c echo.Context) error {
	id, err := callerID(c)
	if err != nil {
		return err
	}

	up, err := s.avatars.PresignUpload(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return reply(c, http.StatusOK, "upload the avatar to upload_url", up)
}

func (s *HTTPServer) getByUsername(c echo.Context) error {
	p, err := s.profiles.GetByUsername(c.Request().Context(), c.Param("username"))
	if err != nil {
		return err
	}
	return reply(c, http.StatusOK, "get profile success", p)
}

func (s *HTTPServer) follow(c echo.Context) error {
	id, err := callerID(c)
	if err != nil {
		return err
	}

	var req requests.FollowRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	if err := req.Validate(); err != nil {
		return err
	}

	already, err := s.profiles.Follow(c.Request().Context(), id, req.FollowedUserID)
	if err != nil {
		return err
	}
	if already {
		return reply(c, http.StatusOK, "already followed", nil)
	}
	return reply(c, http.StatusOK, "follow success", nil)
}

func (s *HTTPServer) unfollow(c echo.Context) error {
	id, err := callerID(c)
	if err != nil {
		return err
	}

	req := requests.FollowRequest{FollowedUserID: c.Param("user_id")}
	if err := req.Validate(); err != nil {
		return err
	}

	already, err := s.profiles.Unfollow(c.Request().Context(), id, req.FollowedUserID)
	if err != nil {
		return err
	}
	if already {
		return reply(c, http.StatusOK, "already unfollowed", nil)
	}
	return reply(c, http.StatusOK, "unfollow success", nil)
}
