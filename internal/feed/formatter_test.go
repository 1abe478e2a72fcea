package feed_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/stem-for-society/enquiry-api/internal/feed"
	"github.com/stem-for-society/enquiry-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var today = time.Date(2025, time.September, 10, 15, 30, 0, 0, time.UTC)

func training(id string, start time.Time) models.Training {
	return models.Training{
		ID:           id,
		Title:        "Training " + id,
		StartDate:    start,
		DeliveryType: models.DeliveryOnline,
		Instructor:   models.Instructor{FirstName: "Asha", LastName: "Iyer"},
	}
}

func TestUpcoming_FiltersPastTrainings(t *testing.T) {
	trainings := []models.Training{
		training("past", today.AddDate(0, 0, -5)),
		training("future", today.AddDate(0, 0, 5)),
	}

	sessions := feed.Upcoming(trainings, today)

	require.Len(t, sessions, 1)
	assert.Equal(t, "future", sessions[0].ID)
}

func TestUpcoming_TodayIsIncluded(t *testing.T) {
	// Starts earlier in the day than "now": day-granularity comparison keeps it
	start := time.Date(2025, time.September, 10, 8, 0, 0, 0, time.UTC)
	sessions := feed.Upcoming([]models.Training{training("today", start)}, today)

	require.Len(t, sessions, 1)
	assert.Equal(t, "today", sessions[0].ID)
}

func TestUpcoming_CapsAtThree(t *testing.T) {
	var trainings []models.Training
	for i := 5; i >= 1; i-- {
		trainings = append(trainings, training(fmt.Sprintf("t%d", i), today.AddDate(0, 0, i)))
	}

	sessions := feed.Upcoming(trainings, today)

	require.Len(t, sessions, 3)
	assert.Equal(t, "t1", sessions[0].ID)
	assert.Equal(t, "t2", sessions[1].ID)
	assert.Equal(t, "t3", sessions[2].ID)
}

func TestUpcoming_StableOnEqualDates(t *testing.T) {
	start := today.AddDate(0, 0, 2)
	trainings := []models.Training{
		training("first", start),
		training("second", start),
		training("third", start),
	}

	sessions := feed.Upcoming(trainings, today)

	require.Len(t, sessions, 3)
	assert.Equal(t, "first", sessions[0].ID)
	assert.Equal(t, "second", sessions[1].ID)
	assert.Equal(t, "third", sessions[2].ID)
}

func TestUpcoming_EmptyInputs(t *testing.T) {
	assert.Empty(t, feed.Upcoming(nil, today))
	assert.Empty(t, feed.Upcoming([]models.Training{}, today))

	allPast := []models.Training{
		training("a", today.AddDate(0, 0, -1)),
		training("b", today.AddDate(-1, 0, 0)),
	}
	assert.Empty(t, feed.Upcoming(allPast, today))
}

func TestStartsLabel(t *testing.T) {
	tests := []struct {
		day      int
		expected string
	}{
		{1, "Starts 1st Sep'25"},
		{2, "Starts 2nd Sep'25"},
		{3, "Starts 3rd Sep'25"},
		{4, "Starts 4th Sep'25"},
		{11, "Starts 11th Sep'25"},
		{21, "Starts 21st Sep'25"},
		{22, "Starts 22nd Sep'25"},
		{23, "Starts 23rd Sep'25"},
	}

	for _, tt := range tests {
		start := time.Date(2025, time.September, tt.day, 0, 0, 0, 0, time.UTC)
		assert.Equal(t, tt.expected, feed.StartsLabel(start))
	}

	// 31st needs a 31-day month
	oct31 := time.Date(2025, time.October, 31, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "Starts 31st Oct'25", feed.StartsLabel(oct31))
}

func TestDeliveryLabel(t *testing.T) {
	assert.Equal(t, "Hybrid(Online + Inperson)", feed.DeliveryLabel(models.DeliveryHybrid))
	assert.Equal(t, "Online", feed.DeliveryLabel(models.DeliveryOnline))
	assert.Equal(t, "In-person", feed.DeliveryLabel(models.DeliveryOffline))
	// Unknown values pass through unchanged
	assert.Equal(t, "RESIDENTIAL", feed.DeliveryLabel(models.DeliveryType("RESIDENTIAL")))
}

func TestCollaboratorLabel(t *testing.T) {
	assert.Equal(t, "In collaboration with Asha Iyer",
		feed.CollaboratorLabel(models.Instructor{FirstName: "Asha", LastName: "Iyer"}))
	// Missing last name leaves no trailing space
	assert.Equal(t, "In collaboration with Asha",
		feed.CollaboratorLabel(models.Instructor{FirstName: "Asha"}))
	// Fully missing instructor name
	assert.Equal(t, "In collaboration with",
		feed.CollaboratorLabel(models.Instructor{}))
}

func TestMemo_RecomputesOnlyWhenListChanges(t *testing.T) {
	memo := feed.NewMemo()

	first := []models.Training{training("a", today.AddDate(0, 0, 1))}

	s1 := memo.Upcoming(first, today)
	s2 := memo.Upcoming(first, today)
	// Same underlying slice: the memoized result is returned as is
	require.Len(t, s1, 1)
	assert.Same(t, &s1[0], &s2[0])

	// Changed content forces a recompute
	second := []models.Training{
		training("a", today.AddDate(0, 0, 1)),
		training("b", today.AddDate(0, 0, 2)),
	}
	s3 := memo.Upcoming(second, today)
	require.Len(t, s3, 2)
}

func TestMemo_ContentOnlyChangeRecomputes(t *testing.T) {
	memo := feed.NewMemo()

	base := training("a", today.AddDate(0, 0, 1))
	base.Description = "old text"
	base.CoverImageURL = "https://cdn.example.com/old.jpg"

	s1 := memo.Upcoming([]models.Training{base}, today)
	require.Len(t, s1, 1)
	require.Equal(t, "old text", s1[0].Description)

	// A catalog refresh that touches only display content (same id, title
	// and dates) must still invalidate the memo
	updated := base
	updated.Description = "new text"
	s2 := memo.Upcoming([]models.Training{updated}, today)
	require.Len(t, s2, 1)
	assert.Equal(t, "new text", s2[0].Description)

	updated.CoverImageURL = "https://cdn.example.com/new.jpg"
	s3 := memo.Upcoming([]models.Training{updated}, today)
	require.Len(t, s3, 1)
	assert.Equal(t, "https://cdn.example.com/new.jpg", s3[0].CoverImageURL)
}
