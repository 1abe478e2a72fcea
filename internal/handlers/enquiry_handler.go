package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stem-for-society/enquiry-api/internal/enquiry"
	"github.com/stem-for-society/enquiry-api/internal/models"
	"github.com/stem-for-society/enquiry-api/internal/services"
	apperrors "github.com/stem-for-society/enquiry-api/pkg/errors"
	"github.com/stem-for-society/enquiry-api/pkg/metrics"
)

// EnquiryHandler exposes the enquiry popup lifecycle over HTTP. Each open
// popup maps to a server-side draft keyed by id; the state machine behind it
// enforces the open/submitting/closed rules.
type EnquiryHandler struct {
	store    *enquiry.Store
	orders   enquiry.OrderCreator
	payments services.PaymentServiceInterface
}

func NewEnquiryHandler(store *enquiry.Store, orders enquiry.OrderCreator, payments services.PaymentServiceInterface) *EnquiryHandler {
	return &EnquiryHandler{
		store:    store,
		orders:   orders,
		payments: payments,
	}
}

type openEnquiryRequest struct {
	Mode    string `json:"mode"`
	Service string `json:"service"`
}

type enquiryStateResponse struct {
	ID    string               `json:"id"`
	State enquiry.State        `json:"state"`
	Draft *models.EnquiryDraft `json:"draft,omitempty"`
}

// Open creates a new draft. Unknown modes fall back to individual; a
// preselected service is applied only when it belongs to the mode.
func (h *EnquiryHandler) Open(c *gin.Context) {
	// An empty or malformed body opens an individual enquiry with no
	// preselection rather than failing the popup.
	var req openEnquiryRequest
	_ = c.ShouldBindJSON(&req)

	mode := models.ParseEnquiryMode(req.Mode)
	id := uuid.New().String()

	flow := enquiry.NewFlow(h.orders, enquiry.WithPricing(services.PriceFor))
	if err := flow.Open(id, mode, models.ServiceType(req.Service)); err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to open enquiry", err)
		return
	}
	h.store.Put(id, flow)

	metrics.EnquiryDraftsOpened.WithLabelValues(string(mode)).Inc()

	c.JSON(http.StatusCreated, enquiryStateResponse{
		ID:    id,
		State: flow.State(),
		Draft: flow.Draft(),
	})
}

// Get returns the draft and lifecycle state.
func (h *EnquiryHandler) Get(c *gin.Context) {
	flow, ok := h.store.Get(c.Param("id"))
	if !ok {
		respondError(c, http.StatusNotFound, "Enquiry not found", nil)
		return
	}
	c.JSON(http.StatusOK, enquiryStateResponse{
		ID:    c.Param("id"),
		State: flow.State(),
		Draft: flow.Draft(),
	})
}

// Update applies a partial field update to an open draft.
func (h *EnquiryHandler) Update(c *gin.Context) {
	flow, ok := h.store.Get(c.Param("id"))
	if !ok {
		respondError(c, http.StatusNotFound, "Enquiry not found", nil)
		return
	}

	var update models.EnquiryUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	if err := flow.Apply(update); err != nil {
		var verrs enquiry.ValidationErrors
		switch {
		case errors.As(err, &verrs):
			respondErrorWithDetails(c, http.StatusUnprocessableEntity, "Validation failed", verrs, err)
		case errors.Is(err, enquiry.ErrClosed):
			respondError(c, http.StatusConflict, "Enquiry is not open", err)
		default:
			respondError(c, http.StatusInternalServerError, "Failed to update enquiry", err)
		}
		return
	}

	c.JSON(http.StatusOK, enquiryStateResponse{
		ID:    c.Param("id"),
		State: flow.State(),
		Draft: flow.Draft(),
	})
}

type switchModeRequest struct {
	Mode string `json:"mode" binding:"required"`
}

// SwitchMode changes the draft's audience, keeping common fields.
func (h *EnquiryHandler) SwitchMode(c *gin.Context) {
	flow, ok := h.store.Get(c.Param("id"))
	if !ok {
		respondError(c, http.StatusNotFound, "Enquiry not found", nil)
		return
	}

	var req switchModeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondErrorWithDetails(c, http.StatusBadRequest, "Invalid request body", ParseValidationErrors(err), err)
		return
	}

	if !models.IsValidEnquiryMode(req.Mode) {
		respondError(c, http.StatusBadRequest, "Unknown enquiry mode", nil)
		return
	}

	if err := flow.SwitchMode(models.ParseEnquiryMode(req.Mode)); err != nil {
		respondError(c, http.StatusConflict, "Enquiry is not open", err)
		return
	}

	c.JSON(http.StatusOK, enquiryStateResponse{
		ID:    c.Param("id"),
		State: flow.State(),
		Draft: flow.Draft(),
	})
}

// Submit validates the draft and creates a payment order. Repeat submits
// while an order creation is in flight are rejected without a second call.
func (h *EnquiryHandler) Submit(c *gin.Context) {
	flow, ok := h.store.Get(c.Param("id"))
	if !ok {
		respondError(c, http.StatusNotFound, "Enquiry not found", nil)
		return
	}

	checkout, err := flow.Submit(c.Request.Context())
	if err != nil {
		var verrs enquiry.ValidationErrors
		switch {
		case errors.As(err, &verrs):
			respondErrorWithDetails(c, http.StatusUnprocessableEntity, "Validation failed", verrs, err)
		case errors.Is(err, enquiry.ErrNotOpen):
			respondError(c, http.StatusConflict, "Submission already in progress", err)
		case errors.Is(err, apperrors.ErrStale):
			respondError(c, http.StatusConflict, "Enquiry was closed during submission", err)
		default:
			respondError(c, http.StatusBadGateway, "Could not initiate payment, please try again", err)
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "checkout": checkout})
}

// VerifyPayment handles the payment widget success callback: the gateway
// signature is checked server-side before the enquiry is settled.
func (h *EnquiryHandler) VerifyPayment(c *gin.Context) {
	flow, ok := h.store.Get(c.Param("id"))
	if !ok {
		respondError(c, http.StatusNotFound, "Enquiry not found", nil)
		return
	}

	var v models.PaymentVerification
	if err := c.ShouldBindJSON(&v); err != nil {
		respondErrorWithDetails(c, http.StatusBadRequest, "Invalid request body", ParseValidationErrors(err), err)
		return
	}

	// The callback must settle the order this draft's submission created; a
	// signature for some other order cannot close this flow.
	checkout := flow.Checkout()
	if checkout == nil || checkout.OrderID != v.OrderID {
		respondError(c, http.StatusConflict, "Order does not belong to this enquiry", nil)
		return
	}

	record, err := h.payments.VerifyPayment(c.Request.Context(), &v)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrInvalidInput):
			respondError(c, http.StatusBadRequest, "Payment verification failed", err)
		case errors.Is(err, apperrors.ErrNotFound):
			respondError(c, http.StatusNotFound, "Order not found", err)
		default:
			respondError(c, http.StatusInternalServerError, "Payment verification failed", err)
		}
		return
	}

	if err := flow.OnPaymentSuccess(); err != nil {
		// The payment is settled either way; a stale flow just means the
		// popup already went away.
		attachError(c, err)
	}
	h.store.Delete(c.Param("id"))

	c.JSON(http.StatusOK, gin.H{"success": true, "enquiry": record})
}

// PaymentFailed handles the widget failure/dismiss callback: the flow
// returns to open with all entered data preserved.
func (h *EnquiryHandler) PaymentFailed(c *gin.Context) {
	flow, ok := h.store.Get(c.Param("id"))
	if !ok {
		respondError(c, http.StatusNotFound, "Enquiry not found", nil)
		return
	}

	if err := flow.OnPaymentFailure(); err != nil {
		respondError(c, http.StatusConflict, "No submission in progress", err)
		return
	}

	c.JSON(http.StatusOK, enquiryStateResponse{
		ID:    c.Param("id"),
		State: flow.State(),
		Draft: flow.Draft(),
	})
}

// Close discards the draft. With force=true the draft is abandoned even
// mid-submission; a late order-creation result is then discarded as stale.
func (h *EnquiryHandler) Close(c *gin.Context) {
	id := c.Param("id")
	flow, ok := h.store.Get(id)
	if !ok {
		respondError(c, http.StatusNotFound, "Enquiry not found", nil)
		return
	}

	if c.Query("force") == "true" {
		flow.Abandon()
		h.store.Delete(id)
		c.Status(http.StatusNoContent)
		return
	}

	if err := flow.Close(); err != nil {
		respondError(c, http.StatusConflict, "Submission in progress", err)
		return
	}
	h.store.Delete(id)

	c.Status(http.StatusNoContent)
}
