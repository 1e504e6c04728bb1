package handlers

import (
	"log"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"billing_app_echo/internal/middleware"
	"billing_app_echo/internal/models"
	"billing_app_echo/internal/repositories"
	"billing_app_echo/internal/services"
)

// PaymentHandler exposes the administrative payment endpoints
type PaymentHandler struct {
	retry  *services.RetryService
	stores *repositories.Stores
}

func NewPaymentHandler(retry *services.RetryService, stores *repositories.Stores) *PaymentHandler {
	return &PaymentHandler{retry: retry, stores: stores}
}

// RetryPaymentLink regenerates the provider payment link for a stalled
// pending payment
func (h *PaymentHandler) RetryPaymentLink(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payment id")
	}

	actor := actorFromContext(c)
	if actor == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	result, err := h.retry.RetryPaymentLink(c.Request().Context(), uint(id), actor)
	if err != nil {
		return err
	}

	for _, warning := range result.Warnings {
		log.Printf("Retry for payment %d completed with warning: %s", result.PaymentID, warning)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"success":           true,
		"message":           "payment link regenerated successfully",
		"paymentLink":       result.PaymentLink,
		"providerPaymentId": result.ProviderPaymentID,
		"paymentId":         result.PaymentID,
	})
}

// GetSubscription returns a user's subscription with its latest ledger entry
func (h *PaymentHandler) GetSubscription(c echo.Context) error {
	userID, err := strconv.ParseUint(c.Param("userId"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid user id")
	}

	sub, err := h.stores.Subscriptions.FindByUserID(c.Request().Context(), uint(userID))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to load subscription")
	}
	if sub == nil {
		return echo.NewHTTPError(http.StatusNotFound, "subscription not found")
	}

	latest, err := h.stores.Payments.LatestForSubscription(c.Request().Context(), sub.ID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to load latest payment")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"subscription":   sub,
		"latest_payment": latest,
	})
}

func actorFromContext(c echo.Context) *models.User {
	val := c.Get(middleware.ActorKey)
	if val == nil {
		return nil
	}
	actor, ok := val.(*models.User)
	if !ok {
		return nil
	}
	return actor
}
