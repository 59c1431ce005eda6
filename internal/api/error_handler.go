package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/taskhub/taskmanager-api/internal/api/handler"
	"github.com/taskhub/taskmanager-api/internal/core/domain"
)

// errorStatus maps domain errors to HTTP status codes. The sentinel's own
// text is sent to the client, never the wrapped chain.
var errorStatus = []struct {
	target error
	code   int
}{
	{domain.ErrInvalidEmail, http.StatusUnauthorized},
	{domain.ErrInvalidPassword, http.StatusUnauthorized},
	{domain.ErrCurrentPasswordIncorrect, http.StatusUnauthorized},
	{domain.ErrUnauthorized, http.StatusUnauthorized},

	{domain.ErrForbidden, http.StatusForbidden},

	{domain.ErrUserNotFound, http.StatusNotFound},
	{domain.ErrTaskNotFound, http.StatusNotFound},

	{domain.ErrEmailExists, http.StatusConflict},

	{domain.ErrInvalidID, http.StatusBadRequest},
	{domain.ErrInvalidDateRange, http.StatusBadRequest},
	{domain.ErrInvalidDate, http.StatusBadRequest},
	{domain.ErrInvalidStatus, http.StatusBadRequest},
	{domain.ErrTitleRequired, http.StatusBadRequest},
	{domain.ErrInvalidRegistration, http.StatusBadRequest},
	{domain.ErrMissingFields, http.StatusBadRequest},
	{domain.ErrPasswordMismatch, http.StatusBadRequest},
	{domain.ErrPasswordUnchanged, http.StatusBadRequest},
	{domain.ErrWeakPassword, http.StatusBadRequest},
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps known domain errors to their HTTP status codes.
//   - Logs unexpected errors internally without leaking details to the client.
//   - Renders {"statusCode": <int>, "message": "<text>", "error": "<status text>"}.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, msg := resolveError(err, log, c)
		body := handler.ErrorResponse{
			StatusCode: code,
			Message:    msg,
			Error:      http.StatusText(code),
		}

		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		_ = c.JSON(code, body)
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, string) {
	// Echo's own errors (bind failures, 404 from router, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		if he.Internal != nil {
			log.Debug().Err(he.Internal).Str("path", c.Path()).Msg("http error")
		}
		return he.Code, fmt.Sprintf("%v", he.Message)
	}

	for _, m := range errorStatus {
		if errors.Is(err, m.target) {
			return m.code, m.target.Error()
		}
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Str("request_id", c.Response().Header().Get(echo.HeaderXRequestID)).
		Msg("unhandled error")

	return http.StatusInternalServerError, "Internal server error"
}
