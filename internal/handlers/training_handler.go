package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stem-for-society/enquiry-api/internal/models"
	"github.com/stem-for-society/enquiry-api/internal/services"
)

type TrainingHandler struct {
	service services.TrainingServiceInterface
}

func NewTrainingHandler(service services.TrainingServiceInterface) *TrainingHandler {
	return &TrainingHandler{service: service}
}

// ListTrainings returns the full catalog in the list envelope the frontend
// consumes.
func (h *TrainingHandler) ListTrainings(c *gin.Context) {
	trainings, err := h.service.GetAllTrainings(c.Request.Context())
	if err != nil {
		respondError(c, http.StatusServiceUnavailable, "Training catalog unavailable", err)
		return
	}

	flat := make([]models.Training, 0, len(trainings))
	for _, t := range trainings {
		flat = append(flat, *t)
	}

	c.JSON(http.StatusOK, models.TrainingsResponse{
		Data:    flat,
		Message: "trainings fetched",
		Success: true,
	})
}

// GetTraining returns one catalog entry.
func (h *TrainingHandler) GetTraining(c *gin.Context) {
	training, err := h.service.GetTrainingByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, http.StatusNotFound, "Training not found", err)
		return
	}
	c.JSON(http.StatusOK, training)
}

// UpcomingSessions returns at most three display-ready upcoming sessions.
func (h *TrainingHandler) UpcomingSessions(c *gin.Context) {
	sessions, err := h.service.UpcomingSessions(c.Request.Context())
	if err != nil {
		respondError(c, http.StatusServiceUnavailable, "Training catalog unavailable", err)
		return
	}

	c.Header("Cache-Control", "public, max-age=60")
	c.JSON(http.StatusOK, gin.H{"data": sessions, "success": true})
}

// RefreshCatalog triggers a background catalog refresh. Admin only.
func (h *TrainingHandler) RefreshCatalog(c *gin.Context) {
	trainings, err := h.service.RefreshCatalog(c.Request.Context())
	if err != nil {
		respondError(c, http.StatusServiceUnavailable, "Training catalog unavailable", err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"success": true, "count": len(trainings)})
}
