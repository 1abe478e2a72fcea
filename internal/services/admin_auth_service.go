package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/stem-for-society/enquiry-api/config"
	"github.com/stem-for-society/enquiry-api/internal/models"
	"github.com/stem-for-society/enquiry-api/pkg/jwt"
	"github.com/stem-for-society/enquiry-api/pkg/logger"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials   = errors.New("invalid email or password")
	ErrAdminJWTSecretNotSet = errors.New("JWT secret not configured")
)

// AdminStore reads back-office accounts.
type AdminStore interface {
	GetByEmail(ctx context.Context, email string) (*models.AdminUser, error)
}

// AdminAuthService handles back-office password login and session issuance.
type AdminAuthService struct {
	adminRepo    AdminStore
	config       *config.Config
	tokenManager *jwt.TokenManager
}

// NewAdminAuthService creates a new admin auth service
func NewAdminAuthService(adminRepo AdminStore, cfg *config.Config) *AdminAuthService {
	var tokenManager *jwt.TokenManager
	if cfg.AdminSession.JWTSecret != "" {
		tokenManager = jwt.NewTokenManager(
			cfg.AdminSession.JWTSecret,
			cfg.AdminSession.JWTIssuer,
			cfg.AdminSession.SessionTTLHours,
		)
	}

	return &AdminAuthService{
		adminRepo:    adminRepo,
		config:       cfg,
		tokenManager: tokenManager,
	}
}

// Login checks credentials and issues a session token. Unknown email and
// wrong password are indistinguishable to the caller.
func (s *AdminAuthService) Login(ctx context.Context, req *models.AdminLoginRequest) (*models.AdminLoginResponse, error) {
	if s.tokenManager == nil {
		return nil, ErrAdminJWTSecretNotSet
	}

	admin, err := s.adminRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		logger.Warn("Admin login for unknown email", zap.String("email", req.Email))
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(req.Password)); err != nil {
		logger.Warn("Admin login with wrong password", zap.String("admin_id", admin.ID))
		return nil, ErrInvalidCredentials
	}

	token, err := s.tokenManager.GenerateToken(admin.ID, admin.Email, admin.Name, admin.Role)
	if err != nil {
		return nil, fmt.Errorf("failed to generate session token: %w", err)
	}

	logger.Info("Admin signed in",
		zap.String("admin_id", admin.ID),
		zap.String("role", admin.Role))

	return &models.AdminLoginResponse{
		Token:     token,
		ExpiresAt: time.Now().Add(s.tokenManager.GetExpirationTime()),
		Name:      admin.Name,
		Email:     admin.Email,
	}, nil
}

// GetSessionTTL returns the session lifetime in seconds, for cookie max-age.
func (s *AdminAuthService) GetSessionTTL() int {
	return s.config.AdminSession.SessionTTLHours * 3600
}

// GetCookieDomain returns the configured session cookie domain.
func (s *AdminAuthService) GetCookieDomain() string {
	return s.config.AdminSession.CookieDomain
}

// GetCookieSecure reports whether session cookies require HTTPS.
func (s *AdminAuthService) GetCookieSecure() bool {
	return s.config.AdminSession.CookieSecure
}

// GetTokenManager exposes the token manager for session middleware.
func (s *AdminAuthService) GetTokenManager() *jwt.TokenManager {
	return s.tokenManager
}
