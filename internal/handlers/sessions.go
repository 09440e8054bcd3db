package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"rental-inspection-backend/internal/models"
	"rental-inspection-backend/internal/questionnaire"
	"rental-inspection-backend/internal/session"
	"rental-inspection-backend/internal/submission"
)

// SessionsHandler serves the inspection wizard: session setup, photo intake
// and submission.
type SessionsHandler struct {
	registry *session.Registry
	logger   zerolog.Logger
}

func NewSessionsHandler(registry *session.Registry, logger zerolog.Logger) *SessionsHandler {
	return &SessionsHandler{
		registry: registry,
		logger:   logger,
	}
}

// CreateSession starts a session from the id, mid, stid and lang query
// parameters.
func (h *SessionsHandler) CreateSession(c *gin.Context) {
	ctx := session.FromQuery(c.Request.URL.Query(), h.registry.Now())
	s := h.registry.Create(ctx)

	c.JSON(http.StatusCreated, sessionResponse(s))
}

func (h *SessionsHandler) GetSession(c *gin.Context) {
	s, ok := h.lookup(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, sessionResponse(s))
}

func (h *SessionsHandler) SetLanguage(c *gin.Context) {
	s, ok := h.lookup(c)
	if !ok {
		return
	}

	var req models.LanguageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid request",
			Message: err.Error(),
		})
		return
	}

	s.SetLanguage(questionnaire.Language(req.Language))
	c.JSON(http.StatusOK, sessionResponse(s))
}

// ResetSession starts a new order in the session after a finished submission.
func (h *SessionsHandler) ResetSession(c *gin.Context) {
	s, ok := h.lookup(c)
	if !ok {
		return
	}

	var req models.ResetRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{
				Error:   "invalid request",
				Message: err.Error(),
			})
			return
		}
	}

	if err := s.Reset(req.OrderID, h.registry.Now()); err != nil {
		c.JSON(http.StatusConflict, models.ErrorResponse{
			Error:   "session cannot be reset",
			Message: err.Error(),
		})
		return
	}

	h.logger.Info().Str("session_id", s.ID).Str("order_id", s.Context().OrderID).Msg("session reset")
	c.JSON(http.StatusOK, sessionResponse(s))
}

func (h *SessionsHandler) lookup(c *gin.Context) (*session.Session, bool) {
	s, err := h.registry.Get(c.Param("session_id"))
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, session.ErrNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, models.ErrorResponse{Error: err.Error()})
		return nil, false
	}
	return s, true
}

func sessionResponse(s *session.Session) models.SessionResponse {
	ctx := s.Context()
	photos := s.Photos()

	response := models.SessionResponse{
		SessionID:  s.ID,
		OrderID:    ctx.OrderID,
		MerchantID: ctx.MerchantID,
		StoreID:    ctx.StoreID,
		Language:   string(ctx.Language()),
		MaxPhotos:  s.MaxPhotos(),
		Photos:     photoInfos(photos, 0),
		State:      s.Submission.State().String(),
		CreatedAt:  s.CreatedAt,
	}
	if res, ok := s.Submission.LastResult(); ok {
		response.LastSubmission = submissionResponse(res)
	}
	return response
}

func photoInfos(photos []models.RawPhoto, offset int) []models.PhotoInfo {
	infos := make([]models.PhotoInfo, len(photos))
	for i, p := range photos {
		infos[i] = models.PhotoInfo{
			Index:     offset + i,
			Filename:  p.FileName,
			MediaType: p.MediaType,
			Size:      p.OriginalSize,
		}
	}
	return infos
}

func submissionResponse(res submission.Result) *models.SubmissionResponse {
	response := &models.SubmissionResponse{
		State:    res.State.String(),
		Skipped:  res.Skipped,
		Report:   res.Report,
		Notified: res.Notified,
		Message:  res.Message,
	}
	for _, p := range res.Photos {
		file := models.SubmittedFile{
			Index:            p.Index,
			SourceName:       p.SourceName,
			FileName:         p.FileName,
			FilePath:         p.FilePath,
			Size:             p.Size,
			CompressionRatio: p.CompressionRatio,
			Preset:           p.Preset,
			FailedStage:      string(p.Stage),
		}
		if p.Err != nil {
			file.Error = p.Err.Error()
		}
		response.Photos = append(response.Photos, file)
	}
	return response
}
