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
	"github.com/stem-for-society/enquiry-api/pkg/logger"
	"github.com/stem-for-society/enquiry-api/pkg/metrics"
	"go.uber.org/zap"
)

// EnquiryRepository persists submitted enquiries and their payment state.
type EnquiryRepository struct {
	pool *pgxpool.Pool
}

// NewEnquiryRepository creates a new enquiry repository
func NewEnquiryRepository(pool *pgxpool.Pool) *EnquiryRepository {
	return &EnquiryRepository{pool: pool}
}

// Create inserts a submitted enquiry with its gateway order id. The record
// starts in PENDING until the payment is captured.
func (r *EnquiryRepository) Create(ctx context.Context, e *models.Enquiry) error {
	start := time.Now()
	operation := "createEnquiry"

	query := `
		INSERT INTO enquiries (
			id, mode, name, mobile, email, service_interest,
			selected_date, selected_time, organization, requirements,
			amount_paise, order_id, status
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	_, err := r.pool.Exec(ctx, query,
		e.ID,
		e.Mode,
		e.Name,
		e.Mobile,
		e.Email,
		e.ServiceInterest,
		e.SelectedDate,
		e.SelectedTime,
		nilIfEmpty(e.Organization),
		nilIfEmpty(e.Requirements),
		e.AmountPaise,
		e.OrderID,
		models.OrderStatusPending,
	)

	duration := metrics.MeasureDuration(start)

	if err != nil {
		recordMetrics(operation, "error", duration)
		logger.Error("Failed to create enquiry",
			zap.String("enquiry_id", e.ID),
			zap.Error(err))
		return fmt.Errorf("failed to create enquiry: %w", err)
	}

	recordMetrics(operation, "success", duration)
	logger.Info("Enquiry created",
		zap.String("enquiry_id", e.ID),
		zap.String("order_id", e.OrderID),
		zap.String("mode", string(e.Mode)))

	return nil
}

// GetByOrderID fetches the enquiry a gateway order belongs to.
func (r *EnquiryRepository) GetByOrderID(ctx context.Context, orderID string) (*models.Enquiry, error) {
	start := time.Now()
	operation := "getEnquiryByOrderID"

	query := `
		SELECT id, mode, name, mobile, email, service_interest,
		       selected_date, selected_time, organization, requirements,
		       amount_paise, order_id, status, created_at, updated_at
		FROM enquiries
		WHERE order_id = $1
	`

	var e models.Enquiry
	var organization, requirements *string

	err := r.pool.QueryRow(ctx, query, orderID).Scan(
		&e.ID, &e.Mode, &e.Name, &e.Mobile, &e.Email, &e.ServiceInterest,
		&e.SelectedDate, &e.SelectedTime, &organization, &requirements,
		&e.AmountPaise, &e.OrderID, &e.Status, &e.CreatedAt, &e.UpdatedAt,
	)

	duration := metrics.MeasureDuration(start)

	if errors.Is(err, pgx.ErrNoRows) {
		recordMetrics(operation, "not_found", duration)
		return nil, apperrors.NotFoundError("enquiry")
	}
	if err != nil {
		recordMetrics(operation, "error", duration)
		return nil, fmt.Errorf("failed to get enquiry: %w", err)
	}

	e.Organization = derefString(organization)
	e.Requirements = derefString(requirements)

	recordMetrics(operation, "success", duration)
	return &e, nil
}

// MarkPaid records a captured payment against its order. Marking an already
// paid enquiry is a no-op so duplicate webhook deliveries stay idempotent.
func (r *EnquiryRepository) MarkPaid(ctx context.Context, orderID, paymentID string) (*models.Enquiry, error) {
	start := time.Now()
	operation := "markEnquiryPaid"

	query := `
		UPDATE enquiries
		SET status = $1, payment_id = $2, updated_at = NOW()
		WHERE order_id = $3 AND status <> $1
	`

	result, err := r.pool.Exec(ctx, query, models.OrderStatusPaid, paymentID, orderID)
	if err != nil {
		recordMetrics(operation, "error", metrics.MeasureDuration(start))
		return nil, fmt.Errorf("failed to mark enquiry paid: %w", err)
	}

	if result.RowsAffected() == 0 {
		// Either unknown order or already paid; disambiguate for the caller
		existing, getErr := r.GetByOrderID(ctx, orderID)
		if getErr != nil {
			recordMetrics(operation, "not_found", metrics.MeasureDuration(start))
			return nil, getErr
		}
		recordMetrics(operation, "duplicate", metrics.MeasureDuration(start))
		logger.Info("Duplicate payment capture ignored",
			zap.String("order_id", orderID),
			zap.String("payment_id", paymentID))
		return existing, nil
	}

	recordMetrics(operation, "success", metrics.MeasureDuration(start))
	logger.Info("Enquiry marked paid",
		zap.String("order_id", orderID),
		zap.String("payment_id", paymentID))

	return r.GetByOrderID(ctx, orderID)
}

// MarkFailed records a failed payment. Paid enquiries are never downgraded.
func (r *EnquiryRepository) MarkFailed(ctx context.Context, orderID, paymentID, reason string) error {
	start := time.Now()
	operation := "markEnquiryFailed"

	query := `
		UPDATE enquiries
		SET status = $1, payment_id = $2, failure_reason = $3, updated_at = NOW()
		WHERE order_id = $4 AND status <> $5
	`

	result, err := r.pool.Exec(ctx, query,
		models.OrderStatusFailed, nilIfEmpty(paymentID), nilIfEmpty(reason),
		orderID, models.OrderStatusPaid)

	duration := metrics.MeasureDuration(start)

	if err != nil {
		recordMetrics(operation, "error", duration)
		return fmt.Errorf("failed to mark enquiry failed: %w", err)
	}
	if result.RowsAffected() == 0 {
		recordMetrics(operation, "not_found", duration)
		return apperrors.NotFoundError("enquiry")
	}

	recordMetrics(operation, "success", duration)
	logger.Info("Enquiry marked failed",
		zap.String("order_id", orderID),
		zap.String("reason", reason))

	return nil
}

// ListTransactions returns a page of transactions for the admin screen,
// newest first. An empty status returns all statuses.
func (r *EnquiryRepository) ListTransactions(ctx context.Context, page, perPage int, status string) (*models.TransactionsPage, error) {
	start := time.Now()
	operation := "listTransactions"

	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}
	offset := (page - 1) * perPage

	var total int
	countQuery := `SELECT COUNT(*) FROM enquiries WHERE ($1 = '' OR status = $1)`
	if err := r.pool.QueryRow(ctx, countQuery, status).Scan(&total); err != nil {
		recordMetrics(operation, "error", metrics.MeasureDuration(start))
		return nil, fmt.Errorf("failed to count transactions: %w", err)
	}

	query := `
		SELECT id, order_id, payment_id, mode, name, email, service_interest,
		       amount_paise, status, created_at, updated_at
		FROM enquiries
		WHERE ($1 = '' OR status = $1)
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.pool.Query(ctx, query, status, perPage, offset)
	if err != nil {
		recordMetrics(operation, "error", metrics.MeasureDuration(start))
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer rows.Close()

	transactions := make([]models.Transaction, 0, perPage)
	for rows.Next() {
		var t models.Transaction
		err := rows.Scan(
			&t.ID, &t.OrderID, &t.PaymentID, &t.Mode, &t.Name, &t.Email,
			&t.ServiceInterest, &t.AmountPaise, &t.Status, &t.CreatedAt, &t.UpdatedAt,
		)
		if err != nil {
			recordMetrics(operation, "error", metrics.MeasureDuration(start))
			return nil, fmt.Errorf("failed to scan transaction row: %w", err)
		}
		t.EnquiryID = t.ID
		t.Currency = "INR"
		transactions = append(transactions, t)
	}
	if err := rows.Err(); err != nil {
		recordMetrics(operation, "error", metrics.MeasureDuration(start))
		return nil, fmt.Errorf("failed to read transactions: %w", err)
	}

	recordMetrics(operation, "success", metrics.MeasureDuration(start))

	return &models.TransactionsPage{
		Transactions: transactions,
		Total:        total,
		Page:         page,
		PerPage:      perPage,
	}, nil
}

// LogWebhook records a webhook delivery for audit. Duplicate deliveries of
// the same webhook bump the retry counter instead of inserting a second row.
func (r *EnquiryRepository) LogWebhook(ctx context.Context, webhookID, event string, payload []byte, signatureValid bool) error {
	start := time.Now()
	operation := "logWebhook"

	query := `
		INSERT INTO webhook_events (webhook_id, event_type, payload, status, retry_count, signature_valid)
		VALUES ($1, $2, $3, 'RECEIVED', 0, $4)
		ON CONFLICT (webhook_id) DO UPDATE
		SET updated_at = NOW(),
		    retry_count = webhook_events.retry_count + 1,
		    signature_valid = EXCLUDED.signature_valid
	`

	_, err := r.pool.Exec(ctx, query, webhookID, event, payload, signatureValid)

	duration := metrics.MeasureDuration(start)

	if err != nil {
		recordMetrics(operation, "error", duration)
		return fmt.Errorf("failed to log webhook: %w", err)
	}

	recordMetrics(operation, "success", duration)
	return nil
}

// UpdateWebhookStatus marks a logged webhook processed or failed.
func (r *EnquiryRepository) UpdateWebhookStatus(ctx context.Context, webhookID, status, errorMsg string) error {
	start := time.Now()
	operation := "updateWebhookStatus"

	if len(errorMsg) > 500 {
		errorMsg = errorMsg[:500]
	}

	query := `
		UPDATE webhook_events
		SET status = $1, processed_at = NOW(), error_message = $2
		WHERE webhook_id = $3
	`

	_, err := r.pool.Exec(ctx, query, status, nilIfEmpty(errorMsg), webhookID)

	duration := metrics.MeasureDuration(start)

	if err != nil {
		recordMetrics(operation, "error", duration)
		return fmt.Errorf("failed to update webhook status: %w", err)
	}

	recordMetrics(operation, "success", duration)
	return nil
}
