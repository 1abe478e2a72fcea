package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/stem-for-society/enquiry-api/internal/models"
	"github.com/stem-for-society/enquiry-api/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubCatalog struct {
	trainings []*models.Training
}

func (s *stubCatalog) Get() ([]*models.Training, error)          { return s.trainings, nil }
func (s *stubCatalog) ForceRefresh() ([]*models.Training, error) { return s.trainings, nil }
func (s *stubCatalog) IsReady() bool                             { return true }
func (s *stubCatalog) GetByID(id string) (*models.Training, error) {
	for _, t := range s.trainings {
		if t.ID == id {
			return t, nil
		}
	}
	return nil, assert.AnError
}

func TestTrainingService_UpcomingSessions(t *testing.T) {
	now := time.Now()
	catalog := &stubCatalog{trainings: []*models.Training{
		{ID: "past", Title: "Old Course", StartDate: now.AddDate(0, 0, -30)},
		{ID: "t1", Title: "Genomics Bootcamp", StartDate: now.AddDate(0, 0, 7), DeliveryType: models.DeliveryOnline},
		{ID: "t2", Title: "Lab Skills", StartDate: now.AddDate(0, 0, 14), DeliveryType: models.DeliveryHybrid},
		{ID: "t3", Title: "Bioinformatics", StartDate: now.AddDate(0, 0, 21), DeliveryType: models.DeliveryOffline},
		{ID: "t4", Title: "Overflow", StartDate: now.AddDate(0, 0, 28)},
	}}
	svc := services.NewTrainingService(catalog)

	sessions, err := svc.UpcomingSessions(context.Background())

	require.NoError(t, err)
	require.Len(t, sessions, 3, "feed is capped at three sessions")
	assert.Equal(t, "t1", sessions[0].ID)
	assert.Equal(t, "t3", sessions[2].ID)
}

func TestTrainingService_GetAllTrainings(t *testing.T) {
	catalog := &stubCatalog{trainings: []*models.Training{
		{ID: "t1", Title: "Genomics Bootcamp"},
	}}
	svc := services.NewTrainingService(catalog)

	all, err := svc.GetAllTrainings(context.Background())
	require.NoError(t, err)
	assert.Len(t, all, 1)

	one, err := svc.GetTrainingByID(context.Background(), "t1")
	require.NoError(t, err)
	assert.Equal(t, "Genomics Bootcamp", one.Title)
}
