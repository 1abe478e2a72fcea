// Package feed turns raw training records into the display-ready
// upcoming-sessions strip shown on the landing page.
package feed

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/stem-for-society/enquiry-api/internal/models"
)

// maxUpcoming caps the strip at three cards.
const maxUpcoming = 3

// Upcoming filters, orders and truncates trainings into at most three
// UpcomingSession view models.
//
// Trainings starting before the start of "today" (day granularity, time of
// day ignored) are dropped. Survivors are ordered ascending by start date
// with ties kept in original list order, then capped and mapped. An empty or
// all-past input yields an empty slice, not an error.
func Upcoming(trainings []models.Training, today time.Time) []models.UpcomingSession {
	todayStart := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, today.Location())

	upcoming := make([]models.Training, 0, len(trainings))
	for _, t := range trainings {
		s := t.StartDate
		startDay := time.Date(s.Year(), s.Month(), s.Day(), 0, 0, 0, 0, today.Location())
		if !startDay.Before(todayStart) {
			upcoming = append(upcoming, t)
		}
	}

	// Stable: equal start dates keep their original relative order
	sort.SliceStable(upcoming, func(i, j int) bool {
		return upcoming[i].StartDate.Before(upcoming[j].StartDate)
	})

	if len(upcoming) > maxUpcoming {
		upcoming = upcoming[:maxUpcoming]
	}

	sessions := make([]models.UpcomingSession, 0, len(upcoming))
	for _, t := range upcoming {
		sessions = append(sessions, models.UpcomingSession{
			ID:                t.ID,
			Title:             t.Title,
			Description:       t.Description,
			StartsLabel:       StartsLabel(t.StartDate),
			ModeLabel:         DeliveryLabel(t.DeliveryType),
			CollaboratorLabel: CollaboratorLabel(t.Instructor),
			CoverImageURL:     t.CoverImageURL,
		})
	}
	return sessions
}

// StartsLabel formats a start date as "Starts {day}{suffix} {Mon}'{YY}",
// e.g. "Starts 21st Sep'25".
func StartsLabel(start time.Time) string {
	return fmt.Sprintf("Starts %d%s %s", start.Day(), ordinalSuffix(start.Day()), start.Format("Jan'06"))
}

// ordinalSuffix returns the English ordinal suffix for a day of month.
func ordinalSuffix(day int) string {
	switch day {
	case 1, 21, 31:
		return "st"
	case 2, 22:
		return "nd"
	case 3, 23:
		return "rd"
	default:
		return "th"
	}
}

// DeliveryLabel maps a delivery type to its display label. Unknown values
// pass through unchanged.
func DeliveryLabel(dt models.DeliveryType) string {
	switch dt {
	case models.DeliveryHybrid:
		return "Hybrid(Online + Inperson)"
	case models.DeliveryOnline:
		return "Online"
	case models.DeliveryOffline:
		return "In-person"
	default:
		return string(dt)
	}
}

// CollaboratorLabel composes "In collaboration with {first} {last}". A
// missing last name (or a fully missing instructor name) leaves no trailing
// space.
func CollaboratorLabel(i models.Instructor) string {
	return strings.TrimRight(fmt.Sprintf("In collaboration with %s %s", i.FirstName, i.LastName), " ")
}
