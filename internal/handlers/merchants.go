package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"rental-inspection-backend/internal/middleware"
	"rental-inspection-backend/internal/models"
	"rental-inspection-backend/internal/reports"
)

type MerchantConfigSource interface {
	GetMerchantConfig(ctx context.Context, merchantID string) (*models.MerchantConfig, error)
}

type ReportReader interface {
	FindReport(ctx context.Context, orderID, merchantID string) (*models.Report, error)
	ListPhotoRecords(ctx context.Context, orderID, merchantID string) ([]models.UploadedPhotoRecord, error)
}

type MerchantsHandler struct {
	configs   MerchantConfigSource
	reports   ReportReader
	publicURL func(path string) string
	logger    zerolog.Logger
}

func NewMerchantsHandler(configs MerchantConfigSource, reports ReportReader, publicURL func(path string) string, logger zerolog.Logger) *MerchantsHandler {
	return &MerchantsHandler{
		configs:   configs,
		reports:   reports,
		publicURL: publicURL,
		logger:    logger,
	}
}

// GetConfig returns the thank-you page configuration of a merchant. Lookup
// failures are answered like a missing configuration so the page falls back
// to its defaults.
func (h *MerchantsHandler) GetConfig(c *gin.Context) {
	merchantID := c.Param("merchant_id")
	response := models.MerchantConfigResponse{MerchantID: merchantID}

	cfg, err := h.configs.GetMerchantConfig(c.Request.Context(), merchantID)
	if err != nil {
		h.logger.Warn().Err(err).Str("merchant_id", merchantID).Msg("merchant config lookup failed, using defaults")
	}
	if cfg != nil {
		response.Configured = true
		response.Config = cfg
	}

	c.JSON(http.StatusOK, response)
}

// GetReport returns the inspection report of an order with its photos. Only
// tokens bound to the merchant in the path may read it.
func (h *MerchantsHandler) GetReport(c *gin.Context) {
	merchantID := c.Param("merchant_id")
	orderID := c.Param("order_id")

	if bound := c.GetString(middleware.MerchantIDKey); bound == "" || bound != merchantID {
		c.JSON(http.StatusForbidden, models.ErrorResponse{Error: "merchant not accessible"})
		return
	}

	report, err := h.reports.FindReport(c.Request.Context(), orderID, merchantID)
	if errors.Is(err, reports.ErrNotFound) {
		c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "report not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to get report",
			Message: err.Error(),
		})
		return
	}

	records, err := h.reports.ListPhotoRecords(c.Request.Context(), orderID, merchantID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to get photos",
			Message: err.Error(),
		})
		return
	}

	photos := make([]models.StoredFileInfo, len(records))
	for i, r := range records {
		photos[i] = models.StoredFileInfo{
			FileName:  r.FileName,
			FilePath:  r.FilePath,
			URL:       h.publicURL(r.FilePath),
			CreatedAt: r.CreatedAt,
		}
	}

	c.JSON(http.StatusOK, models.ReportResponse{Report: *report, Photos: photos})
}
