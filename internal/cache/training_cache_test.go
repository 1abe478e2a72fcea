package cache

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stem-for-society/enquiry-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubDataSource struct {
	mu        sync.Mutex
	trainings []*models.Training
	fetchErr  error
	calls     int
}

func (s *stubDataSource) GetAllTrainings(ctx context.Context) ([]*models.Training, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.fetchErr != nil {
		return nil, s.fetchErr
	}
	return s.trainings, nil
}

func (s *stubDataSource) GetTrainingByID(ctx context.Context, id string) (*models.Training, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.trainings {
		if t.ID == id {
			return t, nil
		}
	}
	return nil, errors.New("not found")
}

func sampleTrainings() []*models.Training {
	return []*models.Training{
		{ID: "t1", Title: "Genomics Bootcamp", StartDate: time.Now().AddDate(0, 0, 7), DeliveryType: models.DeliveryOnline},
		{ID: "t2", Title: "Lab Safety 101", StartDate: time.Now().AddDate(0, 0, 14), DeliveryType: models.DeliveryHybrid},
	}
}

func TestTrainingCache_InitializeAndGet(t *testing.T) {
	ds := &stubDataSource{trainings: sampleTrainings()}
	tc := NewTrainingCache(ds, 300)

	require.False(t, tc.IsReady())
	require.NoError(t, tc.Initialize(context.Background()))
	require.True(t, tc.IsReady())

	all, err := tc.Get()
	require.NoError(t, err)
	assert.Len(t, all, 2)

	got, err := tc.GetByID("t1")
	require.NoError(t, err)
	assert.Equal(t, "Genomics Bootcamp", got.Title)

	_, err = tc.GetByID("missing")
	assert.Error(t, err)
}

func TestTrainingCache_NotReadyBeforeInitialize(t *testing.T) {
	tc := NewTrainingCache(&stubDataSource{}, 300)

	_, err := tc.Get()
	assert.Error(t, err)
	_, err = tc.GetByID("t1")
	assert.Error(t, err)
}

func TestTrainingCache_VersionChangesOnRefresh(t *testing.T) {
	ds := &stubDataSource{trainings: sampleTrainings()}
	tc := NewTrainingCache(ds, 300)
	require.NoError(t, tc.Initialize(context.Background()))

	v1 := tc.Version()
	require.NotZero(t, v1)

	require.NoError(t, tc.refreshInBackground())
	assert.NotEqual(t, v1, tc.Version())
}

func TestTrainingCache_UpdateTrainingAddsToCatalog(t *testing.T) {
	ds := &stubDataSource{trainings: sampleTrainings()}
	tc := NewTrainingCache(ds, 300)
	require.NoError(t, tc.Initialize(context.Background()))

	ds.mu.Lock()
	ds.trainings = append(ds.trainings, &models.Training{ID: "t3", Title: "CRISPR Workshop"})
	ds.mu.Unlock()

	require.NoError(t, tc.UpdateTraining(context.Background(), "t3"))

	all, err := tc.Get()
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestTrainingCache_Metadata(t *testing.T) {
	ds := &stubDataSource{trainings: sampleTrainings()}
	tc := NewTrainingCache(ds, 300)
	require.NoError(t, tc.Initialize(context.Background()))

	md, err := tc.GetMetadata()
	require.NoError(t, err)
	assert.Equal(t, 2, md.TrainingCount)
	assert.False(t, md.LastRefreshTime.IsZero())
}
