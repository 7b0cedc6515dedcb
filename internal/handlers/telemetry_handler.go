package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/matelog-ae/course-service/internal/services"
	"github.com/matelog-ae/course-service/internal/utils"
)

type TelemetryHandler struct {
	BaseHandler
	telemetryService services.TelemetryService
}

func NewTelemetryHandler(telemetryService services.TelemetryService, logger utils.Logger) *TelemetryHandler {
	return &TelemetryHandler{
		BaseHandler:      NewBaseHandler(logger),
		telemetryService: telemetryService,
	}
}

// RecordScreenTime stores a screen time measurement
// @Summary Record screen time
// @Description Appends a screen time event for a topic screen
// @Tags telemetry
// @Accept json
// @Produce json
// @Param event body services.ScreenTimeRequest true "Screen time event"
// @Success 201 {object} SuccessResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /telemetry/screen-time [post]
func (h *TelemetryHandler) RecordScreenTime(c *gin.Context) {
	userID, ok := CurrentUserID(c)
	if !ok {
		return
	}

	var req services.ScreenTimeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid request payload", nil, err.Error())
		return
	}

	if err := h.telemetryService.RecordScreenTime(c.Request.Context(), &req, userID); err != nil {
		h.RespondWithServiceError(c, err)
		return
	}

	h.RespondWithSuccess(c, http.StatusCreated, "Screen time recorded", nil,
		"topic_id", req.TopicID, "kind", req.Kind)
}

// RecordButtonClick stores a button click event
// @Summary Record button click
// @Description Appends a button click event for a topic
// @Tags telemetry
// @Accept json
// @Produce json
// @Param event body services.ButtonClickRequest true "Button click event"
// @Success 201 {object} SuccessResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /telemetry/clicks [post]
func (h *TelemetryHandler) RecordButtonClick(c *gin.Context) {
	userID, ok := CurrentUserID(c)
	if !ok {
		return
	}

	var req services.ButtonClickRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid request payload", nil, err.Error())
		return
	}

	if err := h.telemetryService.RecordButtonClick(c.Request.Context(), &req, userID); err != nil {
		h.RespondWithServiceError(c, err)
		return
	}

	h.RespondWithSuccess(c, http.StatusCreated, "Button click recorded", nil,
		"topic_id", req.TopicID, "button", req.Button)
}

// GetTopicSummary aggregates the user's telemetry for a topic
// @Summary Topic telemetry summary
// @Description Returns per-screen time totals and button click counts for the current user
// @Tags telemetry
// @Produce json
// @Param id path uint true "Topic ID"
// @Success 200 {object} SuccessResponse{data=models.TopicTelemetrySummary}
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /telemetry/topics/{id}/summary [get]
func (h *TelemetryHandler) GetTopicSummary(c *gin.Context) {
	topicID, ok := ParseUintParam(c, "id")
	if !ok {
		return
	}
	userID, ok := CurrentUserID(c)
	if !ok {
		return
	}

	summary, err := h.telemetryService.TopicSummary(c.Request.Context(), topicID, userID)
	if err != nil {
		h.RespondWithServiceError(c, err)
		return
	}

	h.RespondWithSuccess(c, http.StatusOK, "Topic telemetry retrieved", summary, "topic_id", topicID)
}
