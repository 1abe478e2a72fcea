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

const trainingColumns = `
	id, title, cover_image_url, start_date, end_date, description,
	instructor_first_name, instructor_last_name, delivery_type,
	created_at, updated_at`

// TrainingRepository reads the training catalog. It backs the in-memory
// cache; request paths never hit it directly.
type TrainingRepository struct {
	pool *pgxpool.Pool
}

// NewTrainingRepository creates a new training repository
func NewTrainingRepository(pool *pgxpool.Pool) *TrainingRepository {
	return &TrainingRepository{pool: pool}
}

// GetAllTrainings fetches the whole catalog ordered by start date.
func (r *TrainingRepository) GetAllTrainings(ctx context.Context) ([]*models.Training, error) {
	start := time.Now()
	operation := "getAllTrainings"

	query := fmt.Sprintf(`SELECT %s FROM trainings ORDER BY start_date ASC`, trainingColumns)

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		recordMetrics(operation, "error", metrics.MeasureDuration(start))
		return nil, fmt.Errorf("failed to query trainings: %w", err)
	}
	defer rows.Close()

	trainings := make([]*models.Training, 0)
	for rows.Next() {
		t, scanErr := scanTraining(rows)
		if scanErr != nil {
			recordMetrics(operation, "error", metrics.MeasureDuration(start))
			return nil, scanErr
		}
		trainings = append(trainings, t)
	}
	if err := rows.Err(); err != nil {
		recordMetrics(operation, "error", metrics.MeasureDuration(start))
		return nil, fmt.Errorf("failed to read trainings: %w", err)
	}

	recordMetrics(operation, "success", metrics.MeasureDuration(start))
	logger.Debug("Fetched training catalog", zap.Int("count", len(trainings)))

	return trainings, nil
}

// GetTrainingByID fetches a single training.
func (r *TrainingRepository) GetTrainingByID(ctx context.Context, id string) (*models.Training, error) {
	start := time.Now()
	operation := "getTrainingByID"

	query := fmt.Sprintf(`SELECT %s FROM trainings WHERE id = $1`, trainingColumns)

	row := r.pool.QueryRow(ctx, query, id)
	t, err := scanTrainingRow(row)

	duration := metrics.MeasureDuration(start)

	if errors.Is(err, pgx.ErrNoRows) {
		recordMetrics(operation, "not_found", duration)
		return nil, apperrors.NotFoundError("training")
	}
	if err != nil {
		recordMetrics(operation, "error", duration)
		return nil, err
	}

	recordMetrics(operation, "success", duration)
	return t, nil
}

func scanTraining(rows pgx.Rows) (*models.Training, error) {
	t, err := scanTrainingRow(rows)
	if err != nil {
		return nil, fmt.Errorf("failed to scan training row: %w", err)
	}
	return t, nil
}

func scanTrainingRow(row pgx.Row) (*models.Training, error) {
	var t models.Training
	var coverImage, lastName *string

	err := row.Scan(
		&t.ID, &t.Title, &coverImage, &t.StartDate, &t.EndDate, &t.Description,
		&t.Instructor.FirstName, &lastName, &t.DeliveryType,
		&t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	t.CoverImageURL = derefString(coverImage)
	t.Instructor.LastName = derefString(lastName)
	return &t, nil
}
