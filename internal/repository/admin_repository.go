package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stem-for-society/enquiry-api/internal/models"
	apperrors "github.com/stem-for-society/enquiry-api/pkg/errors"
	"github.com/stem-for-society/enquiry-api/pkg/metrics"
)

// AdminRepository reads back-office accounts.
type AdminRepository struct {
	pool *pgxpool.Pool
}

// NewAdminRepository creates a new admin repository
func NewAdminRepository(pool *pgxpool.Pool) *AdminRepository {
	return &AdminRepository{pool: pool}
}

// GetByEmail fetches an admin account by email.
func (r *AdminRepository) GetByEmail(ctx context.Context, email string) (*models.AdminUser, error) {
	start := time.Now()
	operation := "getAdminByEmail"

	query := `
		SELECT id, email, name, password_hash, role, created_at
		FROM admin_users
		WHERE LOWER(email) = LOWER($1)
	`

	var admin models.AdminUser
	err := r.pool.QueryRow(ctx, query, email).Scan(
		&admin.ID, &admin.Email, &admin.Name, &admin.PasswordHash,
		&admin.Role, &admin.CreatedAt,
	)

	duration := metrics.MeasureDuration(start)

	if errors.Is(err, pgx.ErrNoRows) {
		recordMetrics(operation, "not_found", duration)
		return nil, apperrors.NotFoundError("admin user")
	}
	if err != nil {
		recordMetrics(operation, "error", duration)
		return nil, fmt.Errorf("failed to get admin user: %w", err)
	}

	recordMetrics(operation, "success", duration)
	return &admin, nil
}
