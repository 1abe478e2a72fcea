package navstate_test

import (
	"net/url"
	"testing"

	"github.com/stem-for-society/enquiry-api/internal/models"
	"github.com/stem-for-society/enquiry-api/internal/navstate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveMode(t *testing.T) {
	tests := []struct {
		query string
		want  models.EnquiryMode
	}{
		{"mode=individual", models.ModeIndividual},
		{"mode=institutional", models.ModeInstitutional},
		{"mode=institution", models.ModeInstitutional}, // legacy alias
		{"mode=banana", models.ModeIndividual},
		{"", models.ModeIndividual},
		{"other=1", models.ModeIndividual},
	}

	for _, tt := range tests {
		q, err := url.ParseQuery(tt.query)
		require.NoError(t, err)
		assert.Equal(t, tt.want, navstate.ResolveMode(q), tt.query)
	}
}

func TestRewriteModeURL(t *testing.T) {
	u, err := url.Parse("/services?mode=individual&utm_source=mail#pricing")
	require.NoError(t, err)

	out := navstate.RewriteModeURL(u, models.ModeInstitutional)

	assert.Equal(t, "institutional", out.Query().Get("mode"))
	assert.Equal(t, "mail", out.Query().Get("utm_source"))
	assert.Equal(t, "/services", out.Path)
	assert.Equal(t, "pricing", out.Fragment)
	// Original is untouched
	assert.Equal(t, "individual", u.Query().Get("mode"))
}

func TestRewriteModeURL_CanonicalizesLegacyAlias(t *testing.T) {
	u, err := url.Parse("/?mode=institution")
	require.NoError(t, err)

	out := navstate.RewriteModeURL(u, navstate.ResolveMode(u.Query()))

	assert.Equal(t, "institutional", out.Query().Get("mode"))
}

func newTracker() *navstate.SectionTracker {
	tr := navstate.NewSectionTracker()
	tr.Register("hero", 0, 800)
	tr.Register("services", 800, 1200)
	tr.Register("trainings", 2000, 900)
	tr.Register("contact", 2900, 600)
	return tr
}

func TestSectionTracker_BandSelection(t *testing.T) {
	tr := newTracker()

	// Viewport 1000px: band covers scrollTop+400 .. scrollTop+600
	assert.Equal(t, "hero", tr.Observe(0, 1000))
	assert.Equal(t, "services", tr.Observe(600, 1000))
	assert.Equal(t, "trainings", tr.Observe(1700, 1000))
	assert.Equal(t, "contact", tr.Observe(2600, 1000))
}

func TestSectionTracker_LaterSectionWinsAtBoundary(t *testing.T) {
	tr := newTracker()

	// Band 1750..1950 straddles the services/trainings boundary at 2000?
	// No: services ends at 2000, so only services overlaps here.
	assert.Equal(t, "services", tr.Observe(1350, 1000))

	// Band 1950..2150 overlaps both services (to 2000) and trainings (from
	// 2000); the lower section takes over.
	assert.Equal(t, "trainings", tr.Observe(1550, 1000))
}

func TestSectionTracker_StickyInGaps(t *testing.T) {
	tr := navstate.NewSectionTracker()
	tr.Register("hero", 0, 500)
	tr.Register("contact", 3000, 500)

	assert.Equal(t, "hero", tr.Observe(0, 1000))
	// Band lands in the gap between sections: previous answer holds
	assert.Equal(t, "hero", tr.Observe(1500, 1000))
	assert.Equal(t, "contact", tr.Observe(2800, 1000))
}

func TestSectionTracker_RegisterUpdatesBounds(t *testing.T) {
	tr := navstate.NewSectionTracker()
	tr.Register("hero", 0, 500)
	assert.Equal(t, "hero", tr.Observe(0, 1000))

	// Section collapses after a layout change
	tr.Register("hero", 0, 100)
	tr.Register("services", 100, 900)
	assert.Equal(t, "services", tr.Observe(0, 1000))
}

func TestSectionTracker_Unregister(t *testing.T) {
	tr := newTracker()
	require.Equal(t, "hero", tr.Observe(0, 1000))

	tr.Unregister("hero")
	assert.Empty(t, tr.Active())

	assert.Equal(t, "services", tr.Observe(600, 1000))
}
