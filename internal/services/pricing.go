package services

import "github.com/stem-for-society/enquiry-api/internal/models"

// Consultation fees per service, in paise. Institutional engagements are
// priced per consultation call, not per programme.
var servicePricing = map[models.ServiceType]int64{
	// Individual
	models.ServiceCareerCounselling:  99900,
	models.ServicePsychologyCounsel:  99900,
	models.ServiceStudyAbroad:        149900,
	models.ServiceSkillDevelopment:   99900,
	models.ServiceInternshipGuidance: 99900,
	models.ServiceResearchMentorship: 149900,
	models.ServiceAdmissionSupport:   149900,

	// Institutional
	models.ServiceCampusWorkshops:    499900,
	models.ServiceFacultyDevelopment: 499900,
	models.ServiceCounsellingCell:    499900,
	models.ServiceCurriculumConsult:  499900,
	models.ServicePlacementTraining:  499900,
	models.ServiceResearchCollab:     499900,
	models.ServiceLabSetupConsulting: 499900,
	models.ServiceOutreachProgrammes: 499900,
}

// defaultFeePaise is charged when a service has no explicit price.
const defaultFeePaise = 99900

// PriceFor returns the consultation fee for a service in paise.
func PriceFor(mode models.EnquiryMode, service models.ServiceType) int64 {
	if amount, ok := servicePricing[service]; ok {
		return amount
	}
	return defaultFeePaise
}
