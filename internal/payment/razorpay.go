// Package payment wraps the Razorpay gateway: order creation for validated
// enquiries and signature verification for widget callbacks and webhooks.
package payment

import (
	"context"
	"fmt"
	"time"

	"github.com/razorpay/razorpay-go"
	"github.com/sony/gobreaker"
	"github.com/stem-for-society/enquiry-api/internal/models"
	"github.com/stem-for-society/enquiry-api/pkg/circuitbreaker"
	"github.com/stem-for-society/enquiry-api/pkg/logger"
	"github.com/stem-for-society/enquiry-api/pkg/metrics"
	"go.uber.org/zap"
)

const merchantName = "STEM for Society"

// Gateway creates payment orders and verifies gateway signatures. A circuit
// breaker shields the API from a misbehaving gateway.
type Gateway struct {
	client        *razorpay.Client
	keyID         string
	keySecret     string
	webhookSecret string
	currency      string
	breaker       *gobreaker.CircuitBreaker
}

// NewGateway creates a Gateway from credentials. The currency defaults to INR
// when empty.
func NewGateway(keyID, keySecret, webhookSecret, currency string) *Gateway {
	if currency == "" {
		currency = "INR"
	}
	return &Gateway{
		client:        razorpay.NewClient(keyID, keySecret),
		keyID:         keyID,
		keySecret:     keySecret,
		webhookSecret: webhookSecret,
		currency:      currency,
		breaker:       circuitbreaker.NewCircuitBreaker(circuitbreaker.DefaultConfig("razorpay")),
	}
}

// CreateOrder creates a gateway order for the given amount and returns the
// checkout configuration the payment widget needs. Amounts are in the
// smallest currency unit.
func (g *Gateway) CreateOrder(ctx context.Context, enquiryID string, amountPaise int64, p *models.EnquiryPayload) (*models.CheckoutConfig, error) {
	start := time.Now()

	data := map[string]interface{}{
		"amount":   amountPaise,
		"currency": g.currency,
		"receipt":  fmt.Sprintf("enq_%s", enquiryID),
		"notes": map[string]interface{}{
			"mode":    string(p.Mode),
			"service": string(p.ServiceInterest),
		},
	}

	order, err := circuitbreaker.Execute(g.breaker, func() (map[string]interface{}, error) {
		type result struct {
			order map[string]interface{}
			err   error
		}
		done := make(chan result, 1)
		go func() {
			o, callErr := g.client.Order.Create(data, nil)
			done <- result{o, callErr}
		}()
		select {
		case r := <-done:
			return r.order, r.err
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	})

	status := "success"
	if err != nil {
		status = "error"
	}
	duration := metrics.MeasureDuration(start)
	metrics.GatewayRequestDuration.WithLabelValues("order_create", status).Observe(duration)
	metrics.GatewayRequestTotal.WithLabelValues("order_create", status).Inc()
	metrics.OrdersCreated.WithLabelValues(status).Inc()

	if err != nil {
		logger.Error("Failed to create payment order",
			zap.String("enquiry_id", enquiryID),
			zap.Int64("amount", amountPaise),
			zap.Error(err))
		return nil, circuitbreaker.FormatError("payment gateway", err)
	}

	orderID, ok := order["id"].(string)
	if !ok || orderID == "" {
		return nil, fmt.Errorf("payment gateway returned no order id")
	}

	logger.Info("Payment order created",
		zap.String("enquiry_id", enquiryID),
		zap.String("order_id", orderID),
		zap.Int64("amount", amountPaise),
		zap.Duration("duration", time.Since(start)))

	return &models.CheckoutConfig{
		KeyID:       g.keyID,
		OrderID:     orderID,
		AmountPaise: amountPaise,
		Currency:    g.currency,
		Name:        merchantName,
		Description: string(p.ServiceInterest),
		PrefillName: p.Name,
		PrefillMail: p.Email,
		PrefillTel:  p.Mobile,
	}, nil
}

// Currency returns the configured settlement currency.
func (g *Gateway) Currency() string {
	return g.currency
}
