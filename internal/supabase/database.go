package supabase

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	_ "github.com/lib/pq"
	"rental-inspection-backend/internal/models"
	"rental-inspection-backend/internal/reports"
)

// DatabaseClient talks to the Supabase Postgres instance directly.
type DatabaseClient struct {
	db *sql.DB
}

func NewDatabaseClient(connectionString string) (*DatabaseClient, error) {
	db, err := sql.Open("postgres", connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DatabaseClient{db: db}, nil
}

// NewDatabaseClientFromDB wraps an existing handle.
func NewDatabaseClientFromDB(db *sql.DB) *DatabaseClient {
	return &DatabaseClient{db: db}
}

const reportColumns = `order_id, merchant_id, status, description, submission_id, created_at_vienna, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanReport(row rowScanner) (*models.Report, error) {
	var report models.Report
	var description, vienna sql.NullString
	err := row.Scan(
		&report.OrderID, &report.MerchantID, &report.Status,
		&description, &report.SubmissionID, &vienna, &report.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	report.Description = description.String
	report.CreatedAtVienna = vienna.String
	return &report, nil
}

func (d *DatabaseClient) FindReport(ctx context.Context, orderID, merchantID string) (*models.Report, error) {
	row := d.db.QueryRowContext(ctx, `
		SELECT `+reportColumns+`
		FROM return_reports
		WHERE order_id = $1 AND merchant_id = $2
	`, orderID, merchantID)

	report, err := scanReport(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, reports.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get report: %w", err)
	}
	return report, nil
}

func (d *DatabaseClient) InsertReport(ctx context.Context, report *models.Report) (*models.Report, error) {
	row := d.db.QueryRowContext(ctx, `
		INSERT INTO return_reports (order_id, merchant_id, status, description, submission_id, created_at_vienna, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+reportColumns,
		report.OrderID, report.MerchantID, report.Status, report.Description,
		report.SubmissionID, report.CreatedAtVienna, report.CreatedAt,
	)

	created, err := scanReport(row)
	if err != nil {
		return nil, classifyInsertError(err)
	}
	return created, nil
}

// InsertPhotoRecord is idempotent per file path so a retried upload does not
// record the same object twice.
func (d *DatabaseClient) InsertPhotoRecord(ctx context.Context, record models.UploadedPhotoRecord) error {
	_, err := d.db.ExecContext(ctx, `
		INSERT INTO return_photos (order_id, merchant_id, file_name, file_path)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (file_path) DO NOTHING
	`, record.OrderID, record.MerchantID, record.FileName, record.FilePath)
	if err != nil {
		return fmt.Errorf("failed to create photo record: %w", err)
	}
	return nil
}

func (d *DatabaseClient) ListPhotoRecords(ctx context.Context, orderID, merchantID string) ([]models.UploadedPhotoRecord, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT order_id, merchant_id, file_name, file_path, created_at
		FROM return_photos
		WHERE order_id = $1 AND merchant_id = $2
		ORDER BY created_at ASC
	`, orderID, merchantID)
	if err != nil {
		return nil, fmt.Errorf("failed to list photo records: %w", err)
	}
	defer rows.Close()

	var records []models.UploadedPhotoRecord
	for rows.Next() {
		var record models.UploadedPhotoRecord
		if err := rows.Scan(&record.OrderID, &record.MerchantID, &record.FileName, &record.FilePath, &record.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan photo record: %w", err)
		}
		records = append(records, record)
	}

	return records, rows.Err()
}

// GetMerchantConfig returns nil without error when the merchant has no configuration.
func (d *DatabaseClient) GetMerchantConfig(ctx context.Context, merchantID string) (*models.MerchantConfig, error) {
	var cfg models.MerchantConfig
	var displayName, thankYou sql.NullString
	var instructions, metadata []byte

	err := d.db.QueryRowContext(ctx, `
		SELECT merchant_id, display_name, thank_you_text, instructions, metadata
		FROM merchant_configurations
		WHERE merchant_id = $1
	`, merchantID).Scan(&cfg.MerchantID, &displayName, &thankYou, &instructions, &metadata)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get merchant config: %w", err)
	}

	cfg.DisplayName = displayName.String
	cfg.ThankYouText = thankYou.String
	if len(instructions) > 0 {
		if err := json.Unmarshal(instructions, &cfg.Instructions); err != nil {
			return nil, fmt.Errorf("failed to decode merchant instructions: %w", err)
		}
	}
	if len(metadata) > 0 {
		if err := json.Unmarshal(metadata, &cfg.Metadata); err != nil {
			return nil, fmt.Errorf("failed to decode merchant metadata: %w", err)
		}
	}

	return &cfg, nil
}

func (d *DatabaseClient) Ping(ctx context.Context) error {
	return d.db.PingContext(ctx)
}

func (d *DatabaseClient) Close() error {
	return d.db.Close()
}
