package services

import (
	"context"

	"github.com/stem-for-society/enquiry-api/internal/enquiry"
	"github.com/stem-for-society/enquiry-api/internal/models"
	"github.com/stem-for-society/enquiry-api/pkg/jwt"
)

// TrainingServiceInterface defines the interface for training catalog operations
type TrainingServiceInterface interface {
	GetAllTrainings(ctx context.Context) ([]*models.Training, error)
	GetTrainingByID(ctx context.Context, id string) (*models.Training, error)
	UpcomingSessions(ctx context.Context) ([]models.UpcomingSession, error)
	RefreshCatalog(ctx context.Context) ([]*models.Training, error)
}

// PaymentServiceInterface defines the interface for payment settlement operations
type PaymentServiceInterface interface {
	VerifyPayment(ctx context.Context, v *models.PaymentVerification) (*models.Enquiry, error)
	ProcessWebhook(ctx context.Context, body []byte, signature string) error
	ListTransactions(ctx context.Context, page, perPage int, status string) (*models.TransactionsPage, error)
}

// AdminAuthServiceInterface defines the back-office login flow
type AdminAuthServiceInterface interface {
	Login(ctx context.Context, req *models.AdminLoginRequest) (*models.AdminLoginResponse, error)
	GetSessionTTL() int
	GetCookieDomain() string
	GetCookieSecure() bool
	GetTokenManager() *jwt.TokenManager
}

// Ensure services implement their interfaces
var _ TrainingServiceInterface = (*TrainingService)(nil)
var _ PaymentServiceInterface = (*PaymentService)(nil)
var _ AdminAuthServiceInterface = (*AdminAuthService)(nil)
var _ enquiry.OrderCreator = (*EnquiryService)(nil)
