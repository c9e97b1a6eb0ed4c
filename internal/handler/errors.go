package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/zizouhuweidi/trivia/internal/domain"
)

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   int    `json:"error"`
	Message string `json:"message"`
}

// MessageResponse is the body of successful mutations
type MessageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// NewHTTPErrorHandler renders every error returned by a handler or middleware as an
// ErrorResponse
func NewHTTPErrorHandler(logger *zap.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		var he *echo.HTTPError
		if !errors.As(err, &he) {
			logger.Error("unhandled error", zap.String("path", c.Path()), zap.Error(err))
			he = echo.NewHTTPError(http.StatusInternalServerError)
		}

		message := http.StatusText(he.Code)
		if m, ok := he.Message.(string); ok && m != "" {
			message = m
		}

		var writeErr error
		if c.Request().Method == http.MethodHead {
			writeErr = c.NoContent(he.Code)
		} else {
			writeErr = c.JSON(he.Code, ErrorResponse{
				Success: false,
				Error:   he.Code,
				Message: message,
			})
		}
		if writeErr != nil {
			logger.Warn("failed to write error response", zap.Error(writeErr))
		}
	}
}

// failure maps a service error to an HTTP error. Not found and invalid input keep
// their own status; anything else is logged and reported with fallback.
func failure(c echo.Context, logger *zap.Logger, err error, fallback int) error {
	status := fallback
	switch {
	case errors.Is(err, domain.ErrQuestionNotFound), errors.Is(err, domain.ErrCategoryNotFound):
		status = http.StatusNotFound
		logger.Debug("not found", zap.String("path", c.Path()), zap.Error(err))
	case errors.Is(err, domain.ErrInvalidInput):
		status = http.StatusUnprocessableEntity
		logger.Debug("invalid input", zap.String("path", c.Path()), zap.Error(err))
	default:
		logger.Error("request failed",
			zap.String("path", c.Path()),
			zap.Int("status", fallback),
			zap.Error(err),
		)
	}
	return echo.NewHTTPError(status).SetInternal(err)
}
