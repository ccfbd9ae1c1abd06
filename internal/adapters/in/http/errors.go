package http

import (
	"errors"
	"net/http"

	"courierhub/internal/pkg/errs"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// CodeUnauthenticated is returned when the caller did not identify itself.
const CodeUnauthenticated = "unauthenticated"

var ErrUnauthenticated = errors.New("missing or malformed actor headers")

// Error is the JSON body of every failed request.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

var statusByCode = map[errs.Code]int{
	errs.CodeValidation:          http.StatusBadRequest,
	errs.CodeState:               http.StatusUnprocessableEntity,
	errs.CodeForbidden:           http.StatusForbidden,
	errs.CodeConflict:            http.StatusConflict,
	errs.CodeInsufficientBalance: http.StatusPaymentRequired,
	errs.CodeExternal:            http.StatusUnauthorized,
	errs.CodeNotFound:            http.StatusNotFound,
	errs.CodeSystem:              http.StatusInternalServerError,
}

// errorResponse classifies err into a status and a body. System errors get a generic
// message so that internals do not leak.
func errorResponse(err error) (int, Error) {
	if errors.Is(err, ErrUnauthenticated) {
		return http.StatusUnauthorized, Error{Code: CodeUnauthenticated, Message: err.Error()}
	}

	var he *echo.HTTPError
	if errors.As(err, &he) {
		return httpErrorResponse(he)
	}

	code := errs.CodeOf(err)
	status, ok := statusByCode[code]
	if !ok || code == errs.CodeSystem {
		return http.StatusInternalServerError, Error{Code: string(errs.CodeSystem), Message: "internal server error"}
	}
	return status, Error{Code: string(code), Message: err.Error()}
}

// httpErrorResponse covers errors raised by echo itself and by parameter binding.
func httpErrorResponse(he *echo.HTTPError) (int, Error) {
	message := http.StatusText(he.Code)
	if m, ok := he.Message.(string); ok && m != "" {
		message = m
	}

	switch he.Code {
	case http.StatusBadRequest, http.StatusUnsupportedMediaType, http.StatusRequestEntityTooLarge:
		return he.Code, Error{Code: string(errs.CodeValidation), Message: message}
	case http.StatusNotFound, http.StatusMethodNotAllowed:
		return he.Code, Error{Code: string(errs.CodeNotFound), Message: message}
	case http.StatusUnauthorized:
		return he.Code, Error{Code: CodeUnauthenticated, Message: message}
	case http.StatusForbidden:
		return he.Code, Error{Code: string(errs.CodeForbidden), Message: message}
	default:
		if he.Code < http.StatusInternalServerError {
			return he.Code, Error{Code: string(errs.CodeValidation), Message: message}
		}
		return he.Code, Error{Code: string(errs.CodeSystem), Message: "internal server error"}
	}
}

// NewErrorHandler returns the echo HTTPErrorHandler writing Error bodies. Server side
// failures are logged with the request route.
func NewErrorHandler(log *zap.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status, body := errorResponse(err)
		if status >= http.StatusInternalServerError {
			log.Error("request failed",
				zap.String("method", c.Request().Method),
				zap.String("route", c.Path()),
				zap.Error(err))
		}

		var writeErr error
		if c.Request().Method == http.MethodHead {
			writeErr = c.NoContent(status)
		} else {
			writeErr = c.JSON(status, body)
		}
		if writeErr != nil {
			log.Warn("failed to write error response", zap.Error(writeErr))
		}
	}
}
