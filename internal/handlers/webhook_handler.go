package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stem-for-society/enquiry-api/internal/services"
	apperrors "github.com/stem-for-society/enquiry-api/pkg/errors"
)

// WebhookHandler receives payment gateway server-to-server notifications.
type WebhookHandler struct {
	payments services.PaymentServiceInterface
}

func NewWebhookHandler(payments services.PaymentServiceInterface) *WebhookHandler {
	return &WebhookHandler{payments: payments}
}

// HandlePaymentWebhook verifies the gateway signature over the raw body and
// dispatches the event. Duplicate deliveries are acknowledged with 200 so the
// gateway stops retrying.
func (h *WebhookHandler) HandlePaymentWebhook(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		respondError(c, http.StatusBadRequest, "Failed to read request body", err)
		return
	}

	signature := c.GetHeader("X-Razorpay-Signature")

	if err := h.payments.ProcessWebhook(c.Request.Context(), body, signature); err != nil {
		switch {
		case errors.Is(err, apperrors.ErrUnauthorized):
			respondError(c, http.StatusUnauthorized, "Invalid webhook signature", err)
		case errors.Is(err, apperrors.ErrInvalidInput):
			respondError(c, http.StatusBadRequest, "Malformed webhook payload", err)
		default:
			// Transient failure: non-2xx makes the gateway redeliver
			respondError(c, http.StatusInternalServerError, "Webhook processing failed", err)
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
