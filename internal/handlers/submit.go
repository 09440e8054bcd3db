package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"rental-inspection-backend/internal/compress"
	"rental-inspection-backend/internal/models"
	"rental-inspection-backend/internal/questionnaire"
	"rental-inspection-backend/internal/submission"
)

// Submit runs the submission of the session with the questionnaire answers
// in the body. The submission is not cancelled when the client disconnects.
func (h *SessionsHandler) Submit(c *gin.Context) {
	s, ok := h.lookup(c)
	if !ok {
		return
	}

	var answers questionnaire.Answers
	if err := c.ShouldBindJSON(&answers); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid request",
			Message: err.Error(),
		})
		return
	}
	if err := answers.Validate(); err != nil {
		c.JSON(http.StatusUnprocessableEntity, models.ErrorResponse{
			Error:   "invalid answers",
			Message: err.Error(),
		})
		return
	}

	res := s.Submit(context.WithoutCancel(c.Request.Context()), answers)

	c.JSON(submitStatus(res), submissionResponse(res))
}

func submitStatus(res submission.Result) int {
	switch {
	case res.Skipped:
		return http.StatusConflict
	case errors.Is(res.Err, submission.ErrNoPhotos):
		return http.StatusUnprocessableEntity
	case res.State == submission.StateCompleted:
		return http.StatusOK
	case errors.Is(res.Err, compress.ErrInvalidInput), errors.Is(res.Err, compress.ErrInputTooLarge):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusBadGateway
	}
}
