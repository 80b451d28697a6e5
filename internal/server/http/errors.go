package http

import (
	"errors"
	"net/http"

	"github.com/dmitrijs2005/xbackend/internal/common"
	"github.com/labstack/echo/v4"
)

type errorResponse struct {
	Message string            `json:"message"`
	Errors  map[string]string `json:"errors,omitempty"`
}

// statusFor maps a service error to its HTTP status and the message shown
// to the client. Unknown errors become 500 without detail.
func statusFor(err error) (int, string) {
	var he *echo.HTTPError
	switch {
	case errors.Is(err, common.ErrValidation):
		return http.StatusUnprocessableEntity, common.ErrValidation.Error()
	case errors.Is(err, common.ErrDuplicateEmail):
		return http.StatusConflict, common.ErrDuplicateEmail.Error()
	case errors.Is(err, common.ErrConflict):
		return http.StatusConflict, common.ErrConflict.Error()
	case errors.Is(err, common.ErrInvalidCredentials):
		return http.StatusUnauthorized, common.ErrInvalidCredentials.Error()
	case errors.Is(err, common.ErrorUnauthorized):
		return http.StatusUnauthorized, err.Error()
	case errors.Is(err, common.ErrForbidden):
		return http.StatusForbidden, "email not verified"
	case errors.Is(err, common.ErrorNotFound):
		return http.StatusNotFound, common.ErrorNotFound.Error()
	case errors.Is(err, common.ErrInvalidOperation):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, common.ErrTooManyRequests):
		return http.StatusTooManyRequests, common.ErrTooManyRequests.Error()
	case errors.As(err, &he):
		if msg, ok := he.Message.(string); ok {
			return he.Code, msg
		}
		return he.Code, http.StatusText(he.Code)
	default:
		return http.StatusInternalServerError, common.ErrorInternal.Error()
	}
}

func (s *HTTPServer) errorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code, msg := statusFor(err)
	resp := errorResponse{Message: msg}

	var ve *common.ValidationError
	if errors.As(err, &ve) {
		resp.Errors = ve.Fields
	}

	if code >= http.StatusInternalServerError {
		s.logger.Error(c.Request().Context(), "internal error", "error", err)
	}

	var werr error
	if c.Request().Method == http.MethodHead {
		werr = c.NoContent(code)
	} else {
		werr = c.JSON(code, resp)
	}
	if werr != nil {
		s.logger.Error(c.Request().Context(), "write error response", "error", werr)
	}
}
