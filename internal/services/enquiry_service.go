package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/stem-for-society/enquiry-api/internal/events"
	"github.com/stem-for-society/enquiry-api/internal/models"
	"github.com/stem-for-society/enquiry-api/pkg/logger"
	"github.com/stem-for-society/enquiry-api/pkg/metrics"
	"go.uber.org/zap"
)

// EnquiryStore persists submitted enquiries.
type EnquiryStore interface {
	Create(ctx context.Context, e *models.Enquiry) error
	GetByOrderID(ctx context.Context, orderID string) (*models.Enquiry, error)
	MarkPaid(ctx context.Context, orderID, paymentID string) (*models.Enquiry, error)
	MarkFailed(ctx context.Context, orderID, paymentID, reason string) error
	ListTransactions(ctx context.Context, page, perPage int, status string) (*models.TransactionsPage, error)
	LogWebhook(ctx context.Context, webhookID, event string, payload []byte, signatureValid bool) error
	UpdateWebhookStatus(ctx context.Context, webhookID, status, errorMsg string) error
}

// OrderGateway is the payment gateway surface the enquiry flow needs.
type OrderGateway interface {
	CreateOrder(ctx context.Context, enquiryID string, amountPaise int64, p *models.EnquiryPayload) (*models.CheckoutConfig, error)
	VerifyPaymentSignature(orderID, paymentID, signature string) bool
	VerifyWebhookSignature(body []byte, signature string) bool
	Currency() string
}

// EventPublisher publishes lifecycle events, best-effort.
type EventPublisher interface {
	Publish(ctx context.Context, event, enquiryID string, payload map[string]interface{})
}

// EnquiryService turns a validated enquiry payload into a persisted record
// with a payment order attached. It is the order creator behind the enquiry
// state machine.
type EnquiryService struct {
	enquiryRepo EnquiryStore
	gateway     OrderGateway
	publisher   EventPublisher
}

// NewEnquiryService creates a new enquiry service
func NewEnquiryService(enquiryRepo EnquiryStore, gateway OrderGateway, publisher EventPublisher) *EnquiryService {
	return &EnquiryService{
		enquiryRepo: enquiryRepo,
		gateway:     gateway,
		publisher:   publisher,
	}
}

// CreateOrder creates a gateway order for the payload and persists the
// enquiry in PENDING. The returned checkout configuration is handed to the
// payment widget.
func (s *EnquiryService) CreateOrder(ctx context.Context, payload *models.EnquiryPayload) (*models.CheckoutConfig, error) {
	enquiryID := uuid.New().String()

	checkout, err := s.gateway.CreateOrder(ctx, enquiryID, payload.AmountPaise, payload)
	if err != nil {
		metrics.EnquirySubmissions.WithLabelValues(string(payload.Mode), "gateway_error").Inc()
		return nil, fmt.Errorf("failed to create payment order: %w", err)
	}

	record := &models.Enquiry{
		ID:              enquiryID,
		Mode:            payload.Mode,
		Name:            payload.Name,
		Mobile:          payload.Mobile,
		Email:           payload.Email,
		ServiceInterest: payload.ServiceInterest,
		SelectedDate:    payload.SelectedDate,
		SelectedTime:    payload.SelectedTime,
		Organization:    payload.Organization,
		Requirements:    payload.Requirements,
		AmountPaise:     payload.AmountPaise,
		OrderID:         checkout.OrderID,
		Status:          models.OrderStatusPending,
	}

	if err := s.enquiryRepo.Create(ctx, record); err != nil {
		// The gateway order exists but has no record; surface the failure so
		// the flow returns to open and the user can retry.
		metrics.EnquirySubmissions.WithLabelValues(string(payload.Mode), "db_error").Inc()
		logger.Error("Order created but enquiry persistence failed",
			zap.String("order_id", checkout.OrderID),
			zap.Error(err))
		return nil, fmt.Errorf("failed to save enquiry: %w", err)
	}

	metrics.EnquirySubmissions.WithLabelValues(string(payload.Mode), "success").Inc()

	go s.publisher.Publish(context.Background(), events.EventEnquirySubmitted, enquiryID, map[string]interface{}{
		"order_id": checkout.OrderID,
		"mode":     string(payload.Mode),
		"service":  string(payload.ServiceInterest),
		"amount":   payload.AmountPaise,
	})

	return checkout, nil
}
