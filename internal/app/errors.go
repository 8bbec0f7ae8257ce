package app

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/lanyardhq/lanyard/internal/storage"
)

// Fallback message for unexpected failures. The real error text is only
// exposed in dev mode.
const genericErrorMessage = "Something went wrong"

// normalizeError is the echo HTTPErrorHandler: it maps the storage error
// taxonomy and handler-thrown [echo.HTTPError] values onto a status code and
// message, then responds in the style the route speaks: the JSON envelope
// for API consumers, a rendered error page for browser navigation. A given
// route never mixes the two.
func (h handler) normalizeError(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	message := genericErrorMessage

	var httpErr *echo.HTTPError
	switch {
	case errors.As(err, &httpErr):
		code = httpErr.Code
		if msg, ok := httpErr.Message.(string); ok {
			message = msg
		} else {
			message = http.StatusText(code)
		}
	case errors.Is(err, storage.ErrNotFound):
		code = http.StatusNotFound
		message = "Record not found"
	case errors.Is(err, storage.ErrAlreadyExists):
		code = http.StatusConflict
		message = "Record already exists"
	default:
		h.logger.ErrorContext(c.Request().Context(), "unhandled error",
			slog.String("method", c.Request().Method),
			slog.String("uri", c.Request().RequestURI),
			slog.Any("error", err),
		)
		if h.cfg.DevMode {
			message = err.Error()
		}
	}

	var respErr error
	if wantsJSON(c) {
		respErr = c.JSON(code, response{Success: false, Message: message})
	} else {
		respErr = c.Render(code, "error.html", errorPage(c, message))
	}
	if respErr != nil {
		h.logger.ErrorContext(c.Request().Context(), "failed to write error response",
			slog.Any("error", respErr),
		)
	}
}

// wantsJSON decides the response style for an error. API routes and XHR
// mutations get the envelope; browser page navigation gets a rendered page.
func wantsJSON(c echo.Context) bool {
	if strings.HasPrefix(c.Path(), "/api/") || strings.HasPrefix(c.Request().URL.Path, "/api/") {
		return true
	}
	return c.Request().Method != http.MethodGet
}
