package models

import "time"

// DeliveryType is how a training is delivered.
type DeliveryType string

const (
	DeliveryOnline  DeliveryType = "ONLINE"
	DeliveryOffline DeliveryType = "OFFLINE"
	DeliveryHybrid  DeliveryType = "HYBRID"
)

// Instructor is the person a training runs in collaboration with.
// LastName may be absent.
type Instructor struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName,omitempty"`
}

// Training is a scheduled course/session record. It is owned by the catalog
// and read-only from the enquiry flow's perspective.
type Training struct {
	ID            string       `json:"id"`
	Title         string       `json:"title"`
	CoverImageURL string       `json:"coverImage"`
	StartDate     time.Time    `json:"startDate"`
	EndDate       time.Time    `json:"endDate"`
	Description   string       `json:"description"`
	Instructor    Instructor   `json:"instructor"`
	DeliveryType  DeliveryType `json:"type"`
	CreatedAt     time.Time    `json:"createdAt"`
	UpdatedAt     time.Time    `json:"updatedAt"`
}

// UpcomingSession is the display-ready view model derived from a Training.
// It is recomputed whenever the underlying training list changes and never
// mutated in place.
type UpcomingSession struct {
	ID                string `json:"id"`
	Title             string `json:"title"`
	Description       string `json:"description"`
	StartsLabel       string `json:"startsLabel"` // e.g. "Starts 2nd Sep'25"
	ModeLabel         string `json:"modeLabel"`   // e.g. "Hybrid(Online + Inperson)"
	CollaboratorLabel string `json:"collaboratorLabel"`
	CoverImageURL     string `json:"coverImage"`
}

// TrainingsResponse is the list envelope returned by GET /trainings.
type TrainingsResponse struct {
	Data    []Training `json:"data"`
	Message string     `json:"message"`
	Success bool       `json:"success"`
}
