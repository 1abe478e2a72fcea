package handlers

import (
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	"github.com/stem-for-society/enquiry-api/internal/navstate"
)

// NavHandler backs the frontend's mode switcher and scroll-spy: the page
// reports its URL and section geometry and gets back canonical navigation
// state.
type NavHandler struct{}

func NewNavHandler() *NavHandler {
	return &NavHandler{}
}

// ResolveMode canonicalizes the audience mode carried in a page URL. The
// response URL always spells the mode canonically so the client can replace
// its location without growing history.
func (h *NavHandler) ResolveMode(c *gin.Context) {
	raw := c.Query("url")
	if raw == "" {
		respondError(c, http.StatusBadRequest, "Missing url parameter", nil)
		return
	}

	pageURL, err := url.Parse(raw)
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid url parameter", err)
		return
	}

	mode := navstate.ResolveMode(pageURL.Query())

	c.JSON(http.StatusOK, gin.H{
		"mode": mode,
		"url":  navstate.RewriteModeURL(pageURL, mode).String(),
	})
}

type sectionInput struct {
	ID     string  `json:"id" binding:"required"`
	Top    float64 `json:"top"`
	Height float64 `json:"height"`
}

type activeSectionRequest struct {
	Sections       []sectionInput `json:"sections" binding:"required,min=1,dive"`
	ScrollTop      float64        `json:"scrollTop"`
	ViewportHeight float64        `json:"viewportHeight" binding:"required,gt=0"`
	// Active carries the client's previous highlight so it survives gaps
	// between sections.
	Active string `json:"active"`
}

// ActiveSection reports which section overlaps the middle band of the
// viewport for the given scroll position. Sections must be listed in
// document order.
func (h *NavHandler) ActiveSection(c *gin.Context) {
	var req activeSectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondErrorWithDetails(c, http.StatusBadRequest, "Invalid request body", ParseValidationErrors(err), err)
		return
	}

	tracker := navstate.NewSectionTracker()
	for _, s := range req.Sections {
		tracker.Register(s.ID, s.Top, s.Height)
	}

	active := tracker.Observe(req.ScrollTop, req.ViewportHeight)
	if active == "" {
		active = req.Active
	}

	c.JSON(http.StatusOK, gin.H{"active": active})
}
