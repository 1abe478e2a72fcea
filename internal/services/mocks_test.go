package services_test

import (
	"context"

	"github.com/stem-for-society/enquiry-api/internal/models"
	"github.com/stretchr/testify/mock"
)

// MockEnquiryStore is a mock implementation of EnquiryStore
type MockEnquiryStore struct {
	mock.Mock
}

func (m *MockEnquiryStore) Create(ctx context.Context, e *models.Enquiry) error {
	args := m.Called(ctx, e)
	return args.Error(0)
}

func (m *MockEnquiryStore) GetByOrderID(ctx context.Context, orderID string) (*models.Enquiry, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Enquiry), args.Error(1)
}

func (m *MockEnquiryStore) MarkPaid(ctx context.Context, orderID, paymentID string) (*models.Enquiry, error) {
	args := m.Called(ctx, orderID, paymentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Enquiry), args.Error(1)
}

func (m *MockEnquiryStore) MarkFailed(ctx context.Context, orderID, paymentID, reason string) error {
	args := m.Called(ctx, orderID, paymentID, reason)
	return args.Error(0)
}

func (m *MockEnquiryStore) ListTransactions(ctx context.Context, page, perPage int, status string) (*models.TransactionsPage, error) {
	args := m.Called(ctx, page, perPage, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.TransactionsPage), args.Error(1)
}

func (m *MockEnquiryStore) LogWebhook(ctx context.Context, webhookID, event string, payload []byte, signatureValid bool) error {
	args := m.Called(ctx, webhookID, event, payload, signatureValid)
	return args.Error(0)
}

func (m *MockEnquiryStore) UpdateWebhookStatus(ctx context.Context, webhookID, status, errorMsg string) error {
	args := m.Called(ctx, webhookID, status, errorMsg)
	return args.Error(0)
}

// MockOrderGateway is a mock implementation of OrderGateway
type MockOrderGateway struct {
	mock.Mock
}

func (m *MockOrderGateway) CreateOrder(ctx context.Context, enquiryID string, amountPaise int64, p *models.EnquiryPayload) (*models.CheckoutConfig, error) {
	args := m.Called(ctx, enquiryID, amountPaise, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.CheckoutConfig), args.Error(1)
}

func (m *MockOrderGateway) VerifyPaymentSignature(orderID, paymentID, signature string) bool {
	args := m.Called(orderID, paymentID, signature)
	return args.Bool(0)
}

func (m *MockOrderGateway) VerifyWebhookSignature(body []byte, signature string) bool {
	args := m.Called(body, signature)
	return args.Bool(0)
}

func (m *MockOrderGateway) Currency() string {
	args := m.Called()
	return args.String(0)
}

// MockEventPublisher is a mock implementation of EventPublisher
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, event, enquiryID string, payload map[string]interface{}) {
	m.Called(ctx, event, enquiryID, payload)
}

// MockMailer is a mock implementation of ConfirmationMailer
type MockMailer struct {
	mock.Mock
}

func (m *MockMailer) SendEnquiryConfirmation(p *models.EnquiryPayload, orderID string) {
	m.Called(p, orderID)
}

// MockAdminStore is a mock implementation of AdminStore
type MockAdminStore struct {
	mock.Mock
}

func (m *MockAdminStore) GetByEmail(ctx context.Context, email string) (*models.AdminUser, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.AdminUser), args.Error(1)
}
