package handlers

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"rental-inspection-backend/internal/models"
	"rental-inspection-backend/internal/session"
)

const maxMultipartMemory = 32 << 20

var photoFieldNames = []string{"photos", "photo", "images", "image", "files", "file"}

// AddPhotos takes a multipart upload of one or more photos. Files that cannot
// be read or are not images are reported in the response and skipped.
func (h *SessionsHandler) AddPhotos(c *gin.Context) {
	s, ok := h.lookup(c)
	if !ok {
		return
	}

	if err := c.Request.ParseMultipartForm(maxMultipartMemory); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "failed to parse multipart form",
			Message: err.Error(),
		})
		return
	}
	form := c.Request.MultipartForm
	if form == nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "failed to parse multipart form",
			Message: "multipart form is nil",
		})
		return
	}

	var files []*multipart.FileHeader
	for _, fieldName := range photoFieldNames {
		if f := form.File[fieldName]; len(f) > 0 {
			files = f
			break
		}
	}
	if len(files) == 0 {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "no files uploaded",
			Message: fmt.Sprintf("please provide files with one of these field names: %v", photoFieldNames),
		})
		return
	}

	photos := make([]models.RawPhoto, 0, len(files))
	var uploadErrors []string
	for _, file := range files {
		photo, err := readPhoto(file)
		if err != nil {
			uploadErrors = append(uploadErrors, fmt.Sprintf("%s: %v", file.Filename, err))
			continue
		}
		photos = append(photos, photo)
	}

	before := len(s.Photos())
	rejected, err := s.AddPhotos(photos...)
	if err != nil {
		status := http.StatusInternalServerError
		switch {
		case errors.Is(err, session.ErrTooManyPhotos):
			status = http.StatusUnprocessableEntity
		case errors.Is(err, session.ErrLocked):
			status = http.StatusConflict
		}
		c.JSON(status, models.ErrorResponse{
			Error:   "photos not added",
			Message: err.Error(),
		})
		return
	}
	for _, r := range rejected {
		uploadErrors = append(uploadErrors, r.Error())
	}

	all := s.Photos()
	added := all[min(before, len(all)):]

	h.logger.Debug().
		Str("session_id", s.ID).
		Int("added", len(added)).
		Int("rejected", len(uploadErrors)).
		Msg("photos received")

	status := http.StatusOK
	if len(added) == 0 {
		status = http.StatusUnprocessableEntity
	}
	c.JSON(status, models.UploadResponse{
		SessionID: s.ID,
		Files:     photoInfos(added, before),
		Total:     len(all),
		Errors:    uploadErrors,
	})
}

func (h *SessionsHandler) RemovePhoto(c *gin.Context) {
	s, ok := h.lookup(c)
	if !ok {
		return
	}

	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid photo index"})
		return
	}

	if err := s.RemovePhoto(index); err != nil {
		status := http.StatusInternalServerError
		switch {
		case errors.Is(err, session.ErrPhotoNotFound):
			status = http.StatusNotFound
		case errors.Is(err, session.ErrLocked):
			status = http.StatusConflict
		}
		c.JSON(status, models.ErrorResponse{Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, sessionResponse(s))
}

// readPhoto loads one uploaded file. The media type comes from the part
// header and falls back to content sniffing.
func readPhoto(file *multipart.FileHeader) (models.RawPhoto, error) {
	src, err := file.Open()
	if err != nil {
		return models.RawPhoto{}, fmt.Errorf("failed to open file: %w", err)
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		return models.RawPhoto{}, fmt.Errorf("failed to read file data: %w", err)
	}

	mediaType := file.Header.Get("Content-Type")
	if mediaType == "" || mediaType == "application/octet-stream" {
		mediaType = http.DetectContentType(data)
	}

	return models.RawPhoto{
		Data:         data,
		MediaType:    mediaType,
		OriginalSize: int64(len(data)),
		FileName:     file.Filename,
	}, nil
}
