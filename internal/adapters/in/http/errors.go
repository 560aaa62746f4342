package http

import (
	"errors"
	"log/slog"
	"net/http"

	"delivery-tracker/internal/core/domain/model/order"
	"delivery-tracker/internal/core/ports"
	"delivery-tracker/internal/pkg/errs"

	"github.com/labstack/echo/v4"
)

// statusFor maps a use case error to an HTTP status code.
//
// An unknown status value wraps both errs.ErrValueIsInvalid and
// order.ErrInvalidTransition, so invalid values are checked first and answer 400;
// a change from a terminal status, or one that kept losing to concurrent writers,
// answers 409.
func statusFor(err error) int {
	switch {
	case errors.Is(err, errs.ErrObjectNotFound):
		return http.StatusNotFound
	case errors.Is(err, errs.ErrValueIsInvalid),
		errors.Is(err, errs.ErrValueIsRequired),
		errors.Is(err, errs.ErrValueIsOutOfRange):
		return http.StatusBadRequest
	case errors.Is(err, order.ErrInvalidTransition),
		errors.Is(err, ports.ErrStatusConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes err as an Error body. Internal errors are logged and their
// details withheld from the client.
func respondError(ctx echo.Context, logger *slog.Logger, err error, message string) error {
	code := statusFor(err)
	if code == http.StatusInternalServerError {
		logger.ErrorContext(ctx.Request().Context(), message,
			"method", ctx.Request().Method, "path", ctx.Path(), "error", err)
		return ctx.JSON(code, Error{Code: code, Message: message})
	}

	return ctx.JSON(code, Error{Code: code, Message: message + ": " + err.Error()})
}

// errorHandler renders echo.HTTPError values, raised by routing, binding and
// request validation, as Error bodies.
func errorHandler(logger *slog.Logger) echo.HTTPErrorHandler {
	return func(err error, ctx echo.Context) {
		if ctx.Response().Committed {
			return
		}

		code := http.StatusInternalServerError
		message := http.StatusText(code)

		var httpErr *echo.HTTPError
		if errors.As(err, &httpErr) {
			code = httpErr.Code
			if m, ok := httpErr.Message.(string); ok {
				message = m
			} else {
				message = http.StatusText(code)
			}
		} else {
			logger.ErrorContext(ctx.Request().Context(), "unhandled error", "path", ctx.Path(), "error", err)
		}

		if ctx.Request().Method == http.MethodHead {
			err = ctx.NoContent(code)
		} else {
			err = ctx.JSON(code, Error{Code: code, Message: message})
		}
		if err != nil {
			logger.ErrorContext(ctx.Request().Context(), "write error response", "error", err)
		}
	}
}
