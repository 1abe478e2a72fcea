package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/stem-for-society/enquiry-api/internal/events"
	"github.com/stem-for-society/enquiry-api/internal/models"
	apperrors "github.com/stem-for-society/enquiry-api/pkg/errors"
	"github.com/stem-for-society/enquiry-api/pkg/logger"
	"github.com/stem-for-society/enquiry-api/pkg/metrics"
	"go.uber.org/zap"
)

// ConfirmationMailer acknowledges paid enquiries by email, best-effort.
type ConfirmationMailer interface {
	SendEnquiryConfirmation(p *models.EnquiryPayload, orderID string)
}

// PaymentService settles enquiries: it verifies widget callbacks and
// processes gateway webhooks. Both paths converge on marking the enquiry
// paid, idempotently.
type PaymentService struct {
	enquiryRepo EnquiryStore
	gateway     OrderGateway
	publisher   EventPublisher
	mailer      ConfirmationMailer
}

// NewPaymentService creates a new payment service
func NewPaymentService(enquiryRepo EnquiryStore, gateway OrderGateway, publisher EventPublisher, mailer ConfirmationMailer) *PaymentService {
	return &PaymentService{
		enquiryRepo: enquiryRepo,
		gateway:     gateway,
		publisher:   publisher,
		mailer:      mailer,
	}
}

// VerifyPayment handles the widget success callback: checks the gateway
// signature and marks the enquiry paid.
func (s *PaymentService) VerifyPayment(ctx context.Context, v *models.PaymentVerification) (*models.Enquiry, error) {
	if !s.gateway.VerifyPaymentSignature(v.OrderID, v.PaymentID, v.Signature) {
		metrics.PaymentVerifications.WithLabelValues("invalid_signature").Inc()
		logger.Warn("Payment signature verification failed",
			zap.String("order_id", v.OrderID),
			zap.String("payment_id", v.PaymentID))
		return nil, apperrors.InvalidInputError("razorpay_signature", "signature mismatch")
	}

	enquiry, err := s.enquiryRepo.MarkPaid(ctx, v.OrderID, v.PaymentID)
	if err != nil {
		metrics.PaymentVerifications.WithLabelValues("error").Inc()
		return nil, err
	}

	metrics.PaymentVerifications.WithLabelValues("success").Inc()

	s.afterCapture(enquiry, v.PaymentID, "widget")
	return enquiry, nil
}

// ProcessWebhook handles a gateway webhook delivery. The raw body is needed
// for signature verification, so the handler passes it through unparsed.
// Unhandled event types are acknowledged without action.
func (s *PaymentService) ProcessWebhook(ctx context.Context, body []byte, signature string) error {
	valid := s.gateway.VerifyWebhookSignature(body, signature)

	var payload models.WebhookPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		metrics.WebhookEvents.WithLabelValues("unparseable", "error").Inc()
		return apperrors.InvalidInputError("payload", "invalid webhook body")
	}

	webhookID := payload.ID
	if webhookID == "" {
		webhookID = fmt.Sprintf("webhook_%d_%s", time.Now().UnixNano(), payload.Event)
	}

	if err := s.enquiryRepo.LogWebhook(ctx, webhookID, payload.Event, body, valid); err != nil {
		logger.Error("Failed to log webhook", zap.Error(err))
		// Audit failure does not block processing
	}

	if !valid {
		metrics.WebhookEvents.WithLabelValues(payload.Event, "invalid_signature").Inc()
		logger.Warn("Webhook signature verification failed",
			zap.String("event", payload.Event),
			zap.String("webhook_id", webhookID))
		return apperrors.ErrUnauthorized
	}

	var err error
	switch payload.Event {
	case "payment.captured", "order.paid":
		err = s.handleCaptured(ctx, &payload)
	case "payment.failed":
		err = s.handleFailed(ctx, &payload)
	default:
		metrics.WebhookEvents.WithLabelValues(payload.Event, "ignored").Inc()
		logger.Debug("Unhandled webhook event acknowledged",
			zap.String("event", payload.Event))
		return nil
	}

	status := "PROCESSED"
	errMsg := ""
	if err != nil {
		status = "FAILED"
		errMsg = err.Error()
		metrics.WebhookEvents.WithLabelValues(payload.Event, "error").Inc()
	} else {
		metrics.WebhookEvents.WithLabelValues(payload.Event, "success").Inc()
	}

	if updateErr := s.enquiryRepo.UpdateWebhookStatus(ctx, webhookID, status, errMsg); updateErr != nil {
		logger.Error("Failed to update webhook status", zap.Error(updateErr))
	}

	return err
}

// ListTransactions returns a page of transactions for the admin screen.
func (s *PaymentService) ListTransactions(ctx context.Context, page, perPage int, status string) (*models.TransactionsPage, error) {
	return s.enquiryRepo.ListTransactions(ctx, page, perPage, status)
}

func (s *PaymentService) handleCaptured(ctx context.Context, payload *models.WebhookPayload) error {
	orderID, paymentID, _, err := extractPaymentEntity(payload)
	if err != nil {
		return err
	}

	enquiry, err := s.enquiryRepo.MarkPaid(ctx, orderID, paymentID)
	if err != nil {
		return err
	}

	logger.Info("Payment captured via webhook",
		zap.String("order_id", orderID),
		zap.String("payment_id", paymentID))

	s.afterCapture(enquiry, paymentID, "webhook")
	return nil
}

func (s *PaymentService) handleFailed(ctx context.Context, payload *models.WebhookPayload) error {
	orderID, paymentID, reason, err := extractPaymentEntity(payload)
	if err != nil {
		return err
	}

	if err := s.enquiryRepo.MarkFailed(ctx, orderID, paymentID, reason); err != nil {
		return err
	}

	go s.publisher.Publish(context.Background(), events.EventPaymentFailed, orderID, map[string]interface{}{
		"order_id":   orderID,
		"payment_id": paymentID,
		"reason":     reason,
	})

	return nil
}

// afterCapture runs the post-payment side effects: event publishing and the
// confirmation email. Both are asynchronous and best-effort.
func (s *PaymentService) afterCapture(enquiry *models.Enquiry, paymentID, source string) {
	go s.publisher.Publish(context.Background(), events.EventPaymentVerified, enquiry.ID, map[string]interface{}{
		"order_id":   enquiry.OrderID,
		"payment_id": paymentID,
		"amount":     enquiry.AmountPaise,
		"source":     source,
	})

	go s.mailer.SendEnquiryConfirmation(&models.EnquiryPayload{
		Mode:            enquiry.Mode,
		Name:            enquiry.Name,
		Mobile:          enquiry.Mobile,
		Email:           enquiry.Email,
		ServiceInterest: enquiry.ServiceInterest,
		SelectedDate:    enquiry.SelectedDate,
		SelectedTime:    enquiry.SelectedTime,
		Organization:    enquiry.Organization,
		Requirements:    enquiry.Requirements,
		AmountPaise:     enquiry.AmountPaise,
	}, enquiry.OrderID)
}

// extractPaymentEntity pulls order id, payment id and the failure reason (if
// any) out of a webhook payload.
func extractPaymentEntity(payload *models.WebhookPayload) (orderID, paymentID, reason string, err error) {
	paymentMap, ok := payload.Payload["payment"].(map[string]interface{})
	if !ok {
		return "", "", "", apperrors.InvalidInputError("payload", "missing payment entity")
	}
	entity, ok := paymentMap["entity"].(map[string]interface{})
	if !ok {
		return "", "", "", apperrors.InvalidInputError("payload", "missing entity")
	}

	paymentID, _ = entity["id"].(string)
	orderID, _ = entity["order_id"].(string)
	if orderID == "" {
		return "", "", "", apperrors.InvalidInputError("payload", "missing order_id")
	}

	if errMap, ok := entity["error"].(map[string]interface{}); ok {
		code, _ := errMap["code"].(string)
		desc, _ := errMap["description"].(string)
		if code != "" || desc != "" {
			reason = fmt.Sprintf("%s: %s", code, desc)
		}
	}

	return orderID, paymentID, reason, nil
}
