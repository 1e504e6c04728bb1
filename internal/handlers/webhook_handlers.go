package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"billing_app_echo/internal/services"
)

// WebhookHandler receives asynchronous payment notifications from the
// provider
type WebhookHandler struct {
	payments *services.PaymentService
}

func NewWebhookHandler(payments *services.PaymentService) *WebhookHandler {
	return &WebhookHandler{payments: payments}
}

// HandleMercadoPago processes one webhook delivery. Deliveries are
// at-least-once; any non-2xx response makes the provider redeliver later, so
// transient failures deliberately answer with a server error.
func (h *WebhookHandler) HandleMercadoPago(c echo.Context) error {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "failed to read request body")
	}

	var notif services.WebhookNotification
	if err := json.Unmarshal(body, &notif); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed notification body")
	}

	result, err := h.payments.ProcessNotification(c.Request().Context(), &notif, body)
	if err != nil {
		return err
	}

	if !result.Processed {
		return c.JSON(http.StatusOK, map[string]interface{}{"received": true})
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"success": true})
}
