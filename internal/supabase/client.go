package supabase

import (
	"context"
	"fmt"
	"time"

	"github.com/supabase-community/supabase-go"
	"rental-inspection-backend/internal/models"
	"rental-inspection-backend/internal/reports"
)

const (
	reportsTable  = "return_reports"
	photosTable   = "return_photos"
	merchantTable = "merchant_configurations"
)

// RestClient reaches the same tables as DatabaseClient through the Supabase
// REST API. It is used when no direct database connection is configured.
type RestClient struct {
	Supabase *supabase.Client
}

func NewRestClient(supabaseURL, apiKey string) (*RestClient, error) {
	client, err := supabase.NewClient(supabaseURL, apiKey, nil)
	if err != nil {
		return nil, err
	}

	return &RestClient{Supabase: client}, nil
}

type reportRow struct {
	OrderID         string              `json:"order_id"`
	MerchantID      string              `json:"merchant_id"`
	Status          models.ReportStatus `json:"status"`
	Description     string              `json:"description"`
	SubmissionID    string              `json:"submission_id"`
	CreatedAtVienna string              `json:"created_at_vienna,omitempty"`
	CreatedAt       *time.Time          `json:"created_at,omitempty"`
}

func (r *RestClient) FindReport(ctx context.Context, orderID, merchantID string) (*models.Report, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var rows []models.Report
	_, err := r.Supabase.From(reportsTable).
		Select("*", "", false).
		Eq("order_id", orderID).
		Eq("merchant_id", merchantID).
		ExecuteTo(&rows)
	if err != nil {
		return nil, fmt.Errorf("failed to get report: %w", err)
	}
	if len(rows) == 0 {
		return nil, reports.ErrNotFound
	}
	return &rows[0], nil
}

func (r *RestClient) InsertReport(ctx context.Context, report *models.Report) (*models.Report, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	row := reportRow{
		OrderID:         report.OrderID,
		MerchantID:      report.MerchantID,
		Status:          report.Status,
		Description:     report.Description,
		SubmissionID:    report.SubmissionID,
		CreatedAtVienna: report.CreatedAtVienna,
	}
	if !report.CreatedAt.IsZero() {
		createdAt := report.CreatedAt
		row.CreatedAt = &createdAt
	}

	var rows []models.Report
	_, err := r.Supabase.From(reportsTable).
		Insert(row, false, "", "representation", "").
		ExecuteTo(&rows)
	if err != nil {
		return nil, classifyInsertError(err)
	}
	if len(rows) == 0 {
		// Row level security can hide the inserted row from the response.
		stored := *report
		return &stored, nil
	}
	return &rows[0], nil
}

func (r *RestClient) InsertPhotoRecord(ctx context.Context, record models.UploadedPhotoRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	row := map[string]string{
		"order_id":    record.OrderID,
		"merchant_id": record.MerchantID,
		"file_name":   record.FileName,
		"file_path":   record.FilePath,
	}
	_, _, err := r.Supabase.From(photosTable).
		Insert(row, true, "file_path", "minimal", "").
		Execute()
	if err != nil {
		return fmt.Errorf("failed to create photo record: %w", err)
	}
	return nil
}

func (r *RestClient) ListPhotoRecords(ctx context.Context, orderID, merchantID string) ([]models.UploadedPhotoRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var records []models.UploadedPhotoRecord
	_, err := r.Supabase.From(photosTable).
		Select("order_id,merchant_id,file_name,file_path,created_at", "", false).
		Eq("order_id", orderID).
		Eq("merchant_id", merchantID).
		ExecuteTo(&records)
	if err != nil {
		return nil, fmt.Errorf("failed to list photo records: %w", err)
	}
	return records, nil
}

// GetMerchantConfig returns nil without error when the merchant has no configuration.
func (r *RestClient) GetMerchantConfig(ctx context.Context, merchantID string) (*models.MerchantConfig, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var rows []models.MerchantConfig
	_, err := r.Supabase.From(merchantTable).
		Select("*", "", false).
		Eq("merchant_id", merchantID).
		ExecuteTo(&rows)
	if err != nil {
		return nil, fmt.Errorf("failed to get merchant config: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}
