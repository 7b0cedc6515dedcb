package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/matelog-ae/course-service/internal/services"
	"github.com/matelog-ae/course-service/internal/utils"
)

type LessonHandler struct {
	BaseHandler
	lessonService services.LessonService
}

func NewLessonHandler(lessonService services.LessonService, logger utils.Logger) *LessonHandler {
	return &LessonHandler{
		BaseHandler:   NewBaseHandler(logger),
		lessonService: lessonService,
	}
}

// ListLessons returns all active lessons with the user's progress
// @Summary List lessons
// @Description Returns the active lessons ordered by position, with per-user completion state
// @Tags lessons
// @Produce json
// @Success 200 {object} SuccessResponse{data=[]services.LessonSummary}
// @Failure 401 {object} ErrorResponse
// @Router /lessons [get]
func (h *LessonHandler) ListLessons(c *gin.Context) {
	userID, ok := CurrentUserID(c)
	if !ok {
		return
	}

	lessons, err := h.lessonService.List(c.Request.Context(), userID)
	if err != nil {
		h.RespondWithServiceError(c, err)
		return
	}

	h.RespondWithSuccess(c, http.StatusOK, "Lessons retrieved", lessons, "count", len(lessons))
}

// GetLesson returns a single lesson with its topics and the user's progress
// @Summary Get lesson detail
// @Description Returns the lesson topics with unlock state and resolved exercise counts for the user
// @Tags lessons
// @Produce json
// @Param id path uint true "Lesson ID"
// @Success 200 {object} SuccessResponse{data=services.LessonDetail}
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /lessons/{id} [get]
func (h *LessonHandler) GetLesson(c *gin.Context) {
	lessonID, ok := ParseUintParam(c, "id")
	if !ok {
		return
	}
	userID, ok := CurrentUserID(c)
	if !ok {
		return
	}

	detail, err := h.lessonService.GetDetail(c.Request.Context(), lessonID, userID)
	if err != nil {
		h.RespondWithServiceError(c, err)
		return
	}

	h.RespondWithSuccess(c, http.StatusOK, "Lesson retrieved", detail, "lesson_id", lessonID)
}
