package services

import (
	"context"
	"fmt"
	"time"

	"github.com/stem-for-society/enquiry-api/internal/cache"
	"github.com/stem-for-society/enquiry-api/internal/feed"
	"github.com/stem-for-society/enquiry-api/internal/models"
	"github.com/stem-for-society/enquiry-api/pkg/logger"
	"go.uber.org/zap"
)

// TrainingCatalog is the slice of the training cache this service needs.
type TrainingCatalog interface {
	Get() ([]*models.Training, error)
	GetByID(id string) (*models.Training, error)
	ForceRefresh() ([]*models.Training, error)
	IsReady() bool
}

// TrainingService serves the catalog and the upcoming-sessions feed.
type TrainingService struct {
	catalog TrainingCatalog
	memo    *feed.Memo
}

// NewTrainingService creates a new training service
func NewTrainingService(catalog TrainingCatalog) *TrainingService {
	return &TrainingService{
		catalog: catalog,
		memo:    feed.NewMemo(),
	}
}

// GetAllTrainings returns the full catalog.
func (s *TrainingService) GetAllTrainings(ctx context.Context) ([]*models.Training, error) {
	trainings, err := s.catalog.Get()
	if err != nil {
		return nil, fmt.Errorf("failed to get trainings: %w", err)
	}
	return trainings, nil
}

// GetTrainingByID returns one catalog entry.
func (s *TrainingService) GetTrainingByID(ctx context.Context, id string) (*models.Training, error) {
	return s.catalog.GetByID(id)
}

// UpcomingSessions returns at most three display-ready upcoming sessions.
// The result is memoized against the catalog contents and the current date,
// so repeated requests on an unchanged catalog reuse the same slice.
func (s *TrainingService) UpcomingSessions(ctx context.Context) ([]models.UpcomingSession, error) {
	trainings, err := s.catalog.Get()
	if err != nil {
		return nil, fmt.Errorf("failed to get trainings: %w", err)
	}

	flat := make([]models.Training, 0, len(trainings))
	for _, t := range trainings {
		flat = append(flat, *t)
	}

	sessions := s.memo.Upcoming(flat, time.Now())

	logger.Debug("Upcoming sessions computed",
		zap.Int("catalog_size", len(flat)),
		zap.Int("upcoming", len(sessions)))

	return sessions, nil
}

// RefreshCatalog triggers a background catalog refresh.
func (s *TrainingService) RefreshCatalog(ctx context.Context) ([]*models.Training, error) {
	return s.catalog.ForceRefresh()
}

var _ TrainingCatalog = (*cache.TrainingCache)(nil)
