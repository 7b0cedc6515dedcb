package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/matelog-ae/course-service/internal/services"
	"github.com/matelog-ae/course-service/internal/utils"
)

type TopicHandler struct {
	BaseHandler
	progressService services.ProgressService
}

func NewTopicHandler(progressService services.ProgressService, logger utils.Logger) *TopicHandler {
	return &TopicHandler{
		BaseHandler:     NewBaseHandler(logger),
		progressService: progressService,
	}
}

// GetTopic returns the topic detail for the current user
// @Summary Get topic detail
// @Description Returns topic content, the user's resolved exercise set and progress state
// @Tags topics
// @Produce json
// @Param id path uint true "Topic ID"
// @Success 200 {object} SuccessResponse{data=services.TopicDetailResponse}
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /topics/{id} [get]
func (h *TopicHandler) GetTopic(c *gin.Context) {
	topicID, ok := ParseUintParam(c, "id")
	if !ok {
		return
	}
	userID, ok := CurrentUserID(c)
	if !ok {
		return
	}

	detail, err := h.progressService.GetTopicDetail(c.Request.Context(), topicID, userID)
	if err != nil {
		h.RespondWithServiceError(c, err)
		return
	}

	h.RespondWithSuccess(c, http.StatusOK, "Topic retrieved", detail, "topic_id", topicID)
}

// FinalizeTopic evaluates the current answer epoch and closes the attempt
// @Summary Finalize topic
// @Description Computes accuracy over the resolved set, records the attempt and unlocks the next topic on a pass
// @Tags topics
// @Produce json
// @Param id path uint true "Topic ID"
// @Success 200 {object} SuccessResponse{data=services.FinalizeResponse}
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /topics/{id}/finalize [post]
func (h *TopicHandler) FinalizeTopic(c *gin.Context) {
	topicID, ok := ParseUintParam(c, "id")
	if !ok {
		return
	}
	userID, ok := CurrentUserID(c)
	if !ok {
		return
	}

	result, err := h.progressService.Finalize(c.Request.Context(), topicID, userID)
	if err != nil {
		h.RespondWithServiceError(c, err)
		return
	}

	h.RespondWithSuccess(c, http.StatusOK, "Topic finalized", result,
		"topic_id", topicID, "passed", result.Passed, "accuracy", result.AccuracyPercent)
}

// RetryTopic clears the current answer epoch so the user can try again
// @Summary Retry topic
// @Description Deletes the answers of the current epoch and reopens the topic
// @Tags topics
// @Produce json
// @Param id path uint true "Topic ID"
// @Success 200 {object} SuccessResponse{data=services.RetryResponse}
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /topics/{id}/retry [post]
func (h *TopicHandler) RetryTopic(c *gin.Context) {
	topicID, ok := ParseUintParam(c, "id")
	if !ok {
		return
	}
	userID, ok := CurrentUserID(c)
	if !ok {
		return
	}

	result, err := h.progressService.Retry(c.Request.Context(), topicID, userID)
	if err != nil {
		h.RespondWithServiceError(c, err)
		return
	}

	h.RespondWithSuccess(c, http.StatusOK, "Topic reset for retry", result, "topic_id", topicID)
}

// ReturnToContent records that the user navigated back to the topic content
// @Summary Return to content
// @Description Acknowledges a back-to-content navigation, recorded as a button click
// @Tags topics
// @Produce json
// @Param id path uint true "Topic ID"
// @Success 200 {object} SuccessResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /topics/{id}/return [post]
func (h *TopicHandler) ReturnToContent(c *gin.Context) {
	topicID, ok := ParseUintParam(c, "id")
	if !ok {
		return
	}
	userID, ok := CurrentUserID(c)
	if !ok {
		return
	}

	if err := h.progressService.ReturnToContent(c.Request.Context(), topicID, userID); err != nil {
		h.RespondWithServiceError(c, err)
		return
	}

	h.RespondWithSuccess(c, http.StatusOK, "Return registered", nil, "topic_id", topicID)
}

// ContentViewed marks a content block as viewed by the current user
// @Summary Mark content viewed
// @Description Registers a viewed content block and bumps the topic progress state
// @Tags topics
// @Produce json
// @Param id path uint true "Content ID"
// @Success 200 {object} SuccessResponse{data=services.ContentViewedResponse}
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /contents/{id}/viewed [post]
func (h *TopicHandler) ContentViewed(c *gin.Context) {
	contentID, ok := ParseUintParam(c, "id")
	if !ok {
		return
	}
	userID, ok := CurrentUserID(c)
	if !ok {
		return
	}

	result, err := h.progressService.RegisterContentViewed(c.Request.Context(), contentID, userID)
	if err != nil {
		h.RespondWithServiceError(c, err)
		return
	}

	h.RespondWithSuccess(c, http.StatusOK, "Content view registered", result, "content_id", contentID)
}
