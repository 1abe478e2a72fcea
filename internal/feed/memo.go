package feed

import (
	"hash/fnv"
	"strconv"
	"sync"
	"time"

	"github.com/stem-for-society/enquiry-api/internal/models"
	"github.com/stem-for-society/enquiry-api/pkg/metrics"
)

// Memo caches the last computed upcoming-sessions strip, keyed on the source
// training list content and the reference day. The strip is recomputed when
// the list changes (or the day rolls over) and reused otherwise.
type Memo struct {
	mu     sync.Mutex
	key    uint64
	cached []models.UpcomingSession
}

// NewMemo returns an empty memoizing formatter.
func NewMemo() *Memo {
	return &Memo{}
}

// Upcoming returns the formatted strip for trainings, recomputing only when
// the inputs differ from the previous call.
func (m *Memo) Upcoming(trainings []models.Training, today time.Time) []models.UpcomingSession {
	key := fingerprint(trainings, today)

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.cached != nil && m.key == key {
		metrics.FeedComputations.WithLabelValues("memoized").Inc()
		return m.cached
	}

	sessions := Upcoming(trainings, today)
	m.key = key
	m.cached = sessions
	metrics.FeedComputations.WithLabelValues("computed").Inc()
	return sessions
}

// fingerprint hashes the fields the formatter depends on. Day granularity
// for "today" matches the filter's comparison granularity.
func fingerprint(trainings []models.Training, today time.Time) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(today.Format("2006-01-02")))
	for _, t := range trainings {
		_, _ = h.Write([]byte(t.ID))
		_, _ = h.Write([]byte{0})
		_, _ = h.Write([]byte(t.Title))
		_, _ = h.Write([]byte{0})
		_, _ = h.Write([]byte(t.Description))
		_, _ = h.Write([]byte{0})
		_, _ = h.Write([]byte(t.CoverImageURL))
		_, _ = h.Write([]byte{0})
		_, _ = h.Write([]byte(strconv.FormatInt(t.StartDate.Unix(), 10)))
		_, _ = h.Write([]byte{0})
		_, _ = h.Write([]byte(t.DeliveryType))
		_, _ = h.Write([]byte{0})
		_, _ = h.Write([]byte(t.Instructor.FirstName))
		_, _ = h.Write([]byte{0})
		_, _ = h.Write([]byte(t.Instructor.LastName))
		_, _ = h.Write([]byte{0})
	}
	return h.Sum64()
}
