package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stem-for-society/enquiry-api/internal/models"
	"github.com/stem-for-society/enquiry-api/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func validPayload() *models.EnquiryPayload {
	return &models.EnquiryPayload{
		Mode:            models.ModeIndividual,
		Name:            "Priya Sharma",
		Mobile:          "9876543210",
		Email:           "priya@example.com",
		ServiceInterest: models.ServiceCareerCounselling,
		AmountPaise:     99900,
	}
}

func TestEnquiryService_CreateOrder(t *testing.T) {
	mockRepo := new(MockEnquiryStore)
	mockGateway := new(MockOrderGateway)
	mockPublisher := new(MockEventPublisher)
	service := services.NewEnquiryService(mockRepo, mockGateway, mockPublisher)
	ctx := context.Background()

	payload := validPayload()
	checkout := &models.CheckoutConfig{
		KeyID:       "rzp_test_key",
		OrderID:     "order_123",
		AmountPaise: 99900,
		Currency:    "INR",
	}

	mockGateway.On("CreateOrder", ctx, mock.AnythingOfType("string"), int64(99900), payload).Return(checkout, nil).Once()
	mockRepo.On("Create", ctx, mock.MatchedBy(func(e *models.Enquiry) bool {
		return e.OrderID == "order_123" &&
			e.Mode == models.ModeIndividual &&
			e.Status == models.OrderStatusPending &&
			e.ID != ""
	})).Return(nil).Once()
	mockPublisher.On("Publish", mock.Anything, "enquiry.submitted", mock.AnythingOfType("string"), mock.Anything).Maybe()

	result, err := service.CreateOrder(ctx, payload)

	require.NoError(t, err)
	assert.Equal(t, checkout, result)
	mockGateway.AssertExpectations(t)
	mockRepo.AssertExpectations(t)
}

func TestEnquiryService_CreateOrder_GatewayError(t *testing.T) {
	mockRepo := new(MockEnquiryStore)
	mockGateway := new(MockOrderGateway)
	mockPublisher := new(MockEventPublisher)
	service := services.NewEnquiryService(mockRepo, mockGateway, mockPublisher)
	ctx := context.Background()

	payload := validPayload()
	mockGateway.On("CreateOrder", ctx, mock.AnythingOfType("string"), int64(99900), payload).
		Return(nil, errors.New("gateway unavailable")).Once()

	result, err := service.CreateOrder(ctx, payload)

	assert.Nil(t, result)
	assert.Error(t, err)
	mockRepo.AssertNotCalled(t, "Create")
	mockPublisher.AssertNotCalled(t, "Publish")
}

func TestEnquiryService_CreateOrder_PersistenceError(t *testing.T) {
	mockRepo := new(MockEnquiryStore)
	mockGateway := new(MockOrderGateway)
	mockPublisher := new(MockEventPublisher)
	service := services.NewEnquiryService(mockRepo, mockGateway, mockPublisher)
	ctx := context.Background()

	payload := validPayload()
	checkout := &models.CheckoutConfig{OrderID: "order_123"}

	mockGateway.On("CreateOrder", ctx, mock.AnythingOfType("string"), int64(99900), payload).Return(checkout, nil).Once()
	mockRepo.On("Create", ctx, mock.Anything).Return(errors.New("db down")).Once()

	result, err := service.CreateOrder(ctx, payload)

	assert.Nil(t, result)
	assert.Error(t, err)
	mockPublisher.AssertNotCalled(t, "Publish")
}

func TestPricing(t *testing.T) {
	assert.Equal(t, int64(99900), services.PriceFor(models.ModeIndividual, models.ServiceCareerCounselling))
	assert.Equal(t, int64(499900), services.PriceFor(models.ModeInstitutional, models.ServiceCampusWorkshops))
	// Unknown services fall back to the default consultation fee
	assert.Equal(t, int64(99900), services.PriceFor(models.ModeIndividual, models.ServiceType("Unknown")))
}
