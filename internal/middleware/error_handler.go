package middleware

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"billing_app_echo/internal/services"
)

// JSONErrorHandler translates classified service errors and echo HTTP errors
// into the JSON error contract: {error[, message]} with the matching status.
func JSONErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	message := "internal server error"

	var appErr *services.AppError
	var httpErr *echo.HTTPError

	switch {
	case errors.As(err, &appErr):
		code = appErr.HTTPStatus()
		message = appErr.Message
	case errors.As(err, &httpErr):
		code = httpErr.Code
		if msg, ok := httpErr.Message.(string); ok && msg != "" {
			message = msg
		} else {
			message = http.StatusText(code)
		}
	}

	c.Logger().Error(err)

	if jsonErr := c.JSON(code, map[string]string{"error": message}); jsonErr != nil {
		c.Logger().Error(jsonErr)
	}
}
