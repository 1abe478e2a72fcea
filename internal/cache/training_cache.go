// Package cache holds the in-memory training catalog. The catalog is small
// and read-heavy, so everything is served from memory and refreshed from the
// database in the background.
package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/stem-for-society/enquiry-api/internal/models"
	"github.com/stem-for-society/enquiry-api/pkg/logger"
	"github.com/stem-for-society/enquiry-api/pkg/metrics"
	"github.com/stem-for-society/enquiry-api/pkg/retry"
	"go.uber.org/zap"
)

// TrainingDataSource fetches the training catalog from its backing store.
type TrainingDataSource interface {
	GetAllTrainings(ctx context.Context) ([]*models.Training, error)
	GetTrainingByID(ctx context.Context, id string) (*models.Training, error)
}

const (
	trainingKeyPrefix = "training:id:"
	allTrainingsKey   = "training:all"
	metadataKey       = "training:metadata"
	cacheCheckPeriod  = 10 * time.Second
)

// Metadata stores cache-wide information. Version changes on every refresh
// and lets the upcoming-sessions feed memoize against catalog identity.
type Metadata struct {
	LastRefreshTime time.Time
	TrainingCount   int
	Version         int64
}

// TrainingCache serves the catalog from memory. Reads never block on the
// database; staleness is bounded by the refresh interval.
type TrainingCache struct {
	cache      *gocache.Cache
	dataSource TrainingDataSource
	mu         sync.RWMutex
	refreshing bool
	ready      bool
	ttl        time.Duration
	version    int64
}

// NewTrainingCache creates a cache that refreshes every ttlSeconds.
func NewTrainingCache(dataSource TrainingDataSource, ttlSeconds int) *TrainingCache {
	return &TrainingCache{
		cache:      gocache.New(gocache.NoExpiration, cacheCheckPeriod),
		dataSource: dataSource,
		ttl:        time.Duration(ttlSeconds) * time.Second,
	}
}

// Initialize populates the cache synchronously and starts the background
// refresh loop. Call during startup before accepting requests.
func (tc *TrainingCache) Initialize(ctx context.Context) error {
	logger.Info("Initializing training cache...")
	start := time.Now()

	err := retry.Do(ctx, retry.DatabaseConfig(), "training_cache_init", func() error {
		trainings, fetchErr := tc.dataSource.GetAllTrainings(ctx)
		if fetchErr != nil {
			return fetchErr
		}
		tc.populate(trainings)
		return nil
	})
	if err != nil {
		logger.Error("Failed to initialize training cache", zap.Error(err))
		return err
	}

	tc.mu.Lock()
	tc.ready = true
	tc.mu.Unlock()

	logger.Info("Training cache initialized",
		zap.Duration("duration", time.Since(start)))

	go tc.schedulePeriodicRefresh()
	return nil
}

// IsReady reports whether the initial population succeeded.
func (tc *TrainingCache) IsReady() bool {
	tc.mu.RLock()
	defer tc.mu.RUnlock()
	return tc.ready
}

// Version returns the catalog version, bumped on every refresh.
func (tc *TrainingCache) Version() int64 {
	tc.mu.RLock()
	defer tc.mu.RUnlock()
	return tc.version
}

// GetByID retrieves a single training. Never blocks on the database.
func (tc *TrainingCache) GetByID(id string) (*models.Training, error) {
	if !tc.IsReady() {
		return nil, fmt.Errorf("cache not initialized")
	}

	data, found := tc.cache.Get(trainingKeyPrefix + id)
	if !found {
		metrics.CacheMisses.WithLabelValues("training_by_id").Inc()
		return nil, fmt.Errorf("training not found")
	}
	metrics.CacheHits.WithLabelValues("training_by_id").Inc()

	training, ok := data.(*models.Training)
	if !ok {
		tc.cache.Delete(trainingKeyPrefix + id)
		return nil, fmt.Errorf("invalid cache data")
	}
	return training, nil
}

// Get returns the full catalog. An expired list yields empty rather than
// blocking a request on the database.
func (tc *TrainingCache) Get() ([]*models.Training, error) {
	if !tc.IsReady() {
		return nil, fmt.Errorf("cache not initialized")
	}

	idsData, found := tc.cache.Get(allTrainingsKey)
	if !found {
		metrics.CacheMisses.WithLabelValues("training_all").Inc()
		logger.Warn("Catalog list not in cache (expired), returning empty")
		return []*models.Training{}, nil
	}
	metrics.CacheHits.WithLabelValues("training_all").Inc()

	ids, ok := idsData.([]string)
	if !ok {
		logger.Error("Invalid cache data type for catalog list")
		return []*models.Training{}, nil
	}

	trainings := make([]*models.Training, 0, len(ids))
	for _, id := range ids {
		t, err := tc.GetByID(id)
		if err != nil {
			continue
		}
		trainings = append(trainings, t)
	}
	return trainings, nil
}

// UpdateTraining refreshes one catalog entry from the data source. Used by
// the admin surface after an edit.
func (tc *TrainingCache) UpdateTraining(ctx context.Context, id string) error {
	if !tc.IsReady() {
		return fmt.Errorf("cache not initialized")
	}

	training, err := tc.dataSource.GetTrainingByID(ctx, id)
	if err != nil {
		logger.Error("Failed to fetch training",
			zap.String("id", id),
			zap.Error(err))
		return err
	}

	tc.mu.Lock()
	defer tc.mu.Unlock()

	tc.cache.Set(trainingKeyPrefix+id, training, gocache.NoExpiration)
	tc.ensureInListLocked(id)
	tc.version = time.Now().UnixNano()

	logger.Info("Training updated in cache", zap.String("id", id))
	return nil
}

// ForceRefresh triggers a background refresh and returns the current data
// immediately.
func (tc *TrainingCache) ForceRefresh() ([]*models.Training, error) {
	go func() {
		if err := tc.refreshInBackground(); err != nil {
			logger.Error("Background refresh failed", zap.Error(err))
		}
	}()
	return tc.Get()
}

func (tc *TrainingCache) schedulePeriodicRefresh() {
	ticker := time.NewTicker(tc.ttl)
	defer ticker.Stop()

	for range ticker.C {
		if err := tc.refreshInBackground(); err != nil {
			logger.Error("Scheduled cache refresh failed", zap.Error(err))
		}
	}
}

func (tc *TrainingCache) refreshInBackground() error {
	tc.mu.Lock()
	if tc.refreshing {
		tc.mu.Unlock()
		logger.Debug("Refresh already in progress, skipping")
		return nil
	}
	tc.refreshing = true
	tc.mu.Unlock()

	defer func() {
		tc.mu.Lock()
		tc.refreshing = false
		tc.mu.Unlock()
	}()

	start := time.Now()
	trainings, err := tc.dataSource.GetAllTrainings(context.Background())
	if err != nil {
		return err
	}

	tc.populate(trainings)

	logger.Info("Training cache refreshed",
		zap.Int("count", len(trainings)),
		zap.Duration("duration", time.Since(start)))
	return nil
}

func (tc *TrainingCache) populate(trainings []*models.Training) {
	ids := make([]string, 0, len(trainings))
	for _, t := range trainings {
		tc.cache.Set(trainingKeyPrefix+t.ID, t, gocache.NoExpiration)
		ids = append(ids, t.ID)
	}

	// The id list carries the TTL; entries themselves never expire
	tc.cache.Set(allTrainingsKey, ids, tc.ttl)

	now := time.Now()
	tc.cache.Set(metadataKey, &Metadata{
		LastRefreshTime: now,
		TrainingCount:   len(trainings),
		Version:         now.UnixNano(),
	}, gocache.NoExpiration)

	tc.mu.Lock()
	tc.version = now.UnixNano()
	tc.mu.Unlock()

	metrics.CacheSize.WithLabelValues("trainings").Set(float64(len(trainings)))
}

// ensureInListLocked adds id to the catalog list. Caller holds tc.mu.
func (tc *TrainingCache) ensureInListLocked(id string) {
	idsData, found := tc.cache.Get(allTrainingsKey)
	if !found {
		return
	}
	ids, ok := idsData.([]string)
	if !ok {
		return
	}
	for _, existing := range ids {
		if existing == id {
			return
		}
	}
	tc.cache.Set(allTrainingsKey, append(ids, id), tc.ttl)
}

// GetMetadata returns refresh metadata for the health endpoint.
func (tc *TrainingCache) GetMetadata() (*Metadata, error) {
	data, found := tc.cache.Get(metadataKey)
	if !found {
		return nil, fmt.Errorf("metadata not found")
	}
	md, ok := data.(*Metadata)
	if !ok {
		return nil, fmt.Errorf("invalid metadata type")
	}
	return md, nil
}
