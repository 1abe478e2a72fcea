package models

import (
	"regexp"
	"strings"
	"time"
)

// EnquiryMode selects the audience view and the service taxonomy. The legacy
// frontend used "institution" in the URL and "institutional" in the service
// discriminator; "institutional" is canonical here and the alias is accepted
// on input only.
type EnquiryMode string

const (
	ModeIndividual    EnquiryMode = "individual"
	ModeInstitutional EnquiryMode = "institutional"

	// legacyInstitutionAlias is still accepted in URLs and request bodies
	legacyInstitutionAlias = "institution"
)

// ParseEnquiryMode normalizes a raw mode value. Unknown or empty values
// default to individual, matching the URL contract.
func ParseEnquiryMode(raw string) EnquiryMode {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case string(ModeInstitutional), legacyInstitutionAlias:
		return ModeInstitutional
	default:
		return ModeIndividual
	}
}

// IsValidEnquiryMode reports whether raw names a known mode (canonical or alias)
func IsValidEnquiryMode(raw string) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case string(ModeIndividual), string(ModeInstitutional), legacyInstitutionAlias:
		return true
	default:
		return false
	}
}

// ServiceType is an offering from one of the two mode-scoped taxonomies.
type ServiceType string

// Individual services
const (
	ServiceCareerCounselling  ServiceType = "Career Counselling"
	ServicePsychologyCounsel  ServiceType = "Psychology Counselling"
	ServiceStudyAbroad        ServiceType = "Study Abroad Guidance"
	ServiceSkillDevelopment   ServiceType = "Skill Development Training"
	ServiceInternshipGuidance ServiceType = "Internship Guidance"
	ServiceResearchMentorship ServiceType = "Research Mentorship"
	ServiceAdmissionSupport   ServiceType = "Admission Assistance"
)

// Institutional services
const (
	ServiceCampusWorkshops    ServiceType = "Campus Workshops"
	ServiceFacultyDevelopment ServiceType = "Faculty Development Programme"
	ServiceCounsellingCell    ServiceType = "Student Counselling Cell"
	ServiceCurriculumConsult  ServiceType = "Curriculum Consulting"
	ServicePlacementTraining  ServiceType = "Placement Training"
	ServiceResearchCollab     ServiceType = "Research Collaboration"
	ServiceLabSetupConsulting ServiceType = "Lab Setup Consulting"
	ServiceOutreachProgrammes ServiceType = "Outreach Programmes"
)

var individualServices = []ServiceType{
	ServiceCareerCounselling,
	ServicePsychologyCounsel,
	ServiceStudyAbroad,
	ServiceSkillDevelopment,
	ServiceInternshipGuidance,
	ServiceResearchMentorship,
	ServiceAdmissionSupport,
}

var institutionalServices = []ServiceType{
	ServiceCampusWorkshops,
	ServiceFacultyDevelopment,
	ServiceCounsellingCell,
	ServiceCurriculumConsult,
	ServicePlacementTraining,
	ServiceResearchCollab,
	ServiceLabSetupConsulting,
	ServiceOutreachProgrammes,
}

// Services returns the taxonomy valid for the mode.
func (m EnquiryMode) Services() []ServiceType {
	if m == ModeInstitutional {
		return append([]ServiceType(nil), institutionalServices...)
	}
	return append([]ServiceType(nil), individualServices...)
}

// HasService reports whether s belongs to the mode's taxonomy. A service
// from the other mode's set must never pass this check.
func (m EnquiryMode) HasService(s ServiceType) bool {
	for _, svc := range m.Services() {
		if svc == s {
			return true
		}
	}
	return false
}

// mobilePattern accepts Indian mobile numbers only: exactly 10 digits with a
// leading digit in 6-9.
var mobilePattern = regexp.MustCompile(`^[6-9][0-9]{9}$`)

// ValidMobile reports whether s is an acceptable contact number.
func ValidMobile(s string) bool {
	return mobilePattern.MatchString(s)
}

// IndividualDetails is the extension populated when the enquiry mode is individual.
type IndividualDetails struct {
	Gender      string `json:"gender"`
	Profession  string `json:"profession"`
	Institution string `json:"institution"`
	Concern     string `json:"concern"`
}

// InstitutionalDetails is the extension populated when the enquiry mode is institutional.
type InstitutionalDetails struct {
	Designation  string `json:"designation"`
	Department   string `json:"department"`
	Institution  string `json:"institution"`
	Requirements string `json:"requirements"`
}

// EnquiryDraft holds the state of one open enquiry popup. Exactly one of the
// two detail extensions is non-nil, matching Mode for the draft's lifetime.
type EnquiryDraft struct {
	ID              string      `json:"id"`
	Mode            EnquiryMode `json:"mode"`
	FullName        string      `json:"fullName"`
	ContactNumber   string      `json:"contactNumber"`
	Email           string      `json:"email"`
	Address         string      `json:"address"`
	City            string      `json:"city"`
	State           string      `json:"state"`
	ServiceInterest ServiceType `json:"serviceInterest"`
	PreferredDate   *time.Time  `json:"preferredDate,omitempty"`
	PreferredTime   string      `json:"preferredTime,omitempty"`

	Individual    *IndividualDetails    `json:"individual,omitempty"`
	Institutional *InstitutionalDetails `json:"institutional,omitempty"`
}

// NewEnquiryDraft creates an empty draft for the given mode with the matching
// detail extension allocated.
func NewEnquiryDraft(id string, mode EnquiryMode) *EnquiryDraft {
	d := &EnquiryDraft{ID: id, Mode: mode}
	if mode == ModeInstitutional {
		d.Institutional = &InstitutionalDetails{}
	} else {
		d.Individual = &IndividualDetails{}
	}
	return d
}

// EnquiryUpdate carries a partial field update. Nil pointers mean "leave as is";
// each update call mutates exactly the fields the client sent, nothing else.
type EnquiryUpdate struct {
	FullName        *string `json:"fullName,omitempty"`
	ContactNumber   *string `json:"contactNumber,omitempty"`
	Email           *string `json:"email,omitempty"`
	Address         *string `json:"address,omitempty"`
	City            *string `json:"city,omitempty"`
	State           *string `json:"state,omitempty"`
	ServiceInterest *string `json:"serviceInterest,omitempty"`
	PreferredDate   *string `json:"preferredDate,omitempty"` // ISO date, empty clears
	PreferredTime   *string `json:"preferredTime,omitempty"`

	// Individual extension
	Gender     *string `json:"gender,omitempty"`
	Profession *string `json:"profession,omitempty"`
	Concern    *string `json:"concern,omitempty"`

	// Institutional extension
	Designation  *string `json:"designation,omitempty"`
	Department   *string `json:"department,omitempty"`
	Requirements *string `json:"requirements,omitempty"`

	// Shared between extensions (organization / institute name)
	Institution *string `json:"institution,omitempty"`
}

// EnquiryPayload is the wire shape submitted to order creation. It is derived
// from a fully validated draft and never persisted on the client side.
type EnquiryPayload struct {
	Mode            EnquiryMode `json:"mode"`
	Name            string      `json:"name"`
	Mobile          string      `json:"mobile"`
	Email           string      `json:"email"`
	ServiceInterest ServiceType `json:"serviceInterest"`
	SelectedDate    *string     `json:"selectedDate"` // ISO date or null
	SelectedTime    *string     `json:"selectedTime"` // or null
	Organization    string      `json:"organization"` // organization or designation, mode-dependent
	Requirements    string      `json:"requirements"` // requirements or concerns, mode-dependent
	AmountPaise     int64       `json:"amount"`       // smallest currency unit, non-negative
}

// BuildPayload derives the backend wire shape from the draft. Callers must
// validate the draft first; this function only shapes data.
func (d *EnquiryDraft) BuildPayload(amountPaise int64) *EnquiryPayload {
	p := &EnquiryPayload{
		Mode:            d.Mode,
		Name:            d.FullName,
		Mobile:          d.ContactNumber,
		Email:           d.Email,
		ServiceInterest: d.ServiceInterest,
		AmountPaise:     amountPaise,
	}
	if d.PreferredDate != nil {
		iso := d.PreferredDate.Format("2006-01-02")
		p.SelectedDate = &iso
	}
	if d.PreferredTime != "" {
		t := d.PreferredTime
		p.SelectedTime = &t
	}

	switch {
	case d.Institutional != nil:
		p.Organization = strings.TrimSpace(d.Institutional.Institution + " / " + d.Institutional.Designation)
		p.Requirements = d.Institutional.Requirements
	case d.Individual != nil:
		p.Organization = d.Individual.Institution
		p.Requirements = d.Individual.Concern
	}
	return p
}

// Enquiry is the persisted record created at submission time.
type Enquiry struct {
	ID              string      `json:"id"`
	Mode            EnquiryMode `json:"mode"`
	Name            string      `json:"name"`
	Mobile          string      `json:"mobile"`
	Email           string      `json:"email"`
	ServiceInterest ServiceType `json:"serviceInterest"`
	SelectedDate    *string     `json:"selectedDate"`
	SelectedTime    *string     `json:"selectedTime"`
	Organization    string      `json:"organization"`
	Requirements    string      `json:"requirements"`
	AmountPaise     int64       `json:"amount"`
	OrderID         string      `json:"orderId"`
	Status          string      `json:"status"`
	CreatedAt       time.Time   `json:"createdAt"`
	UpdatedAt       time.Time   `json:"updatedAt"`
}
