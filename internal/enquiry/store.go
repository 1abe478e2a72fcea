package enquiry

import (
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/stem-for-society/enquiry-api/pkg/metrics"
)

const storeCacheName = "enquiry_drafts"

// Store keeps live enquiry flows keyed by draft id. Drafts are popup-lifetime
// state with no durable counterpart, so abandoned ones simply expire.
type Store struct {
	cache *gocache.Cache
}

// NewStore creates a draft store with the given lifetime in minutes.
func NewStore(ttlMinutes int) *Store {
	ttl := time.Duration(ttlMinutes) * time.Minute
	return &Store{
		cache: gocache.New(ttl, 2*ttl),
	}
}

// Put registers a flow under the given draft id.
func (s *Store) Put(id string, f *Flow) {
	s.cache.SetDefault(id, f)
	metrics.CacheSize.WithLabelValues(storeCacheName).Set(float64(s.cache.ItemCount()))
}

// Get retrieves the flow for a draft id.
func (s *Store) Get(id string) (*Flow, bool) {
	v, found := s.cache.Get(id)
	if !found {
		metrics.CacheMisses.WithLabelValues(storeCacheName).Inc()
		return nil, false
	}
	metrics.CacheHits.WithLabelValues(storeCacheName).Inc()
	f, ok := v.(*Flow)
	return f, ok
}

// Delete removes a draft once its flow is closed.
func (s *Store) Delete(id string) {
	s.cache.Delete(id)
	metrics.CacheSize.WithLabelValues(storeCacheName).Set(float64(s.cache.ItemCount()))
}
