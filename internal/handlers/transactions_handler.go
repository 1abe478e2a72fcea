package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/stem-for-society/enquiry-api/internal/services"
)

// TransactionsHandler serves the back-office payment transactions screen.
type TransactionsHandler struct {
	payments services.PaymentServiceInterface
}

func NewTransactionsHandler(payments services.PaymentServiceInterface) *TransactionsHandler {
	return &TransactionsHandler{payments: payments}
}

// List returns a page of payment transactions, newest first, optionally
// filtered by status.
func (h *TransactionsHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("perPage", "20"))
	status := c.Query("status")

	result, err := h.payments.ListTransactions(c.Request.Context(), page, perPage, status)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to fetch transactions", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    result,
	})
}
