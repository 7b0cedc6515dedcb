package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/matelog-ae/course-service/internal/services"
	"github.com/matelog-ae/course-service/internal/utils"
)

type ExerciseHandler struct {
	BaseHandler
	exerciseService services.ExerciseService
}

func NewExerciseHandler(exerciseService services.ExerciseService, logger utils.Logger) *ExerciseHandler {
	return &ExerciseHandler{
		BaseHandler:     NewBaseHandler(logger),
		exerciseService: exerciseService,
	}
}

// ValidateAnswer checks a submitted answer against the exercise key
// @Summary Validate answer
// @Description Normalizes and checks an answer, stores the verdict and returns feedback
// @Tags exercises
// @Accept json
// @Produce json
// @Param answer body services.SubmitAnswerRequest true "Answer payload"
// @Success 200 {object} SuccessResponse{data=services.SubmitAnswerResponse}
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 429 {object} ErrorResponse
// @Router /exercises/validate [post]
func (h *ExerciseHandler) ValidateAnswer(c *gin.Context) {
	userID, ok := CurrentUserID(c)
	if !ok {
		return
	}

	var req services.SubmitAnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid request payload", nil, err.Error())
		return
	}

	result, err := h.exerciseService.SubmitAnswer(c.Request.Context(), &req, userID)
	if err != nil {
		h.RespondWithServiceError(c, err)
		return
	}

	h.RespondWithSuccess(c, http.StatusOK, "Answer validated", result,
		"exercise_id", req.ExerciseID, "correct", result.Correct, "duplicate", result.Duplicate)
}

// CreateExercise creates an exercise with its answer key
// @Summary Create exercise
// @Description Saves a new exercise, normalizing and validating the answer key
// @Tags admin
// @Accept json
// @Produce json
// @Param exercise body services.SaveExerciseRequest true "Exercise data"
// @Success 201 {object} SuccessResponse{data=models.Exercise}
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /admin/exercises [post]
func (h *ExerciseHandler) CreateExercise(c *gin.Context) {
	var req services.SaveExerciseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid request payload", nil, err.Error())
		return
	}

	exercise, err := h.exerciseService.Save(c.Request.Context(), &req)
	if err != nil {
		h.RespondWithServiceError(c, err)
		return
	}

	h.RespondWithSuccess(c, http.StatusCreated, "Exercise created", exercise,
		"exercise_id", exercise.ID, "topic_id", exercise.TopicID)
}

// UpdateExercise replaces an existing exercise and its options
// @Summary Update exercise
// @Description Updates an exercise in place, re-validating the answer key
// @Tags admin
// @Accept json
// @Produce json
// @Param id path uint true "Exercise ID"
// @Param exercise body services.SaveExerciseRequest true "Exercise data"
// @Success 200 {object} SuccessResponse{data=models.Exercise}
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /admin/exercises/{id} [put]
func (h *ExerciseHandler) UpdateExercise(c *gin.Context) {
	exerciseID, ok := ParseUintParam(c, "id")
	if !ok {
		return
	}

	var req services.SaveExerciseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid request payload", nil, err.Error())
		return
	}

	exercise, err := h.exerciseService.Update(c.Request.Context(), exerciseID, &req)
	if err != nil {
		h.RespondWithServiceError(c, err)
		return
	}

	h.RespondWithSuccess(c, http.StatusOK, "Exercise updated", exercise, "exercise_id", exerciseID)
}
