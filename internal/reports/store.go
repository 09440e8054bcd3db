package reports

import (
	"context"
	"errors"
	"fmt"
	"time"
	_ "time/tzdata"

	"github.com/rs/zerolog"
	"rental-inspection-backend/internal/models"
)

var (
	// ErrUniqueViolation is returned by a RecordStore when an insert hits the
	// (order_id, merchant_id) uniqueness constraint.
	ErrUniqueViolation = errors.New("unique violation")
	// ErrNotFound is returned by a RecordStore when no report exists for a key.
	ErrNotFound = errors.New("report not found")

	ErrReportCreationFailed = errors.New("report creation failed")
)

const viennaLayout = "2006-01-02 15:04:05"

// RecordStore is the relational collaborator holding reports. It must
// enforce uniqueness of (order_id, merchant_id) at insert time.
type RecordStore interface {
	FindReport(ctx context.Context, orderID, merchantID string) (*models.Report, error)
	InsertReport(ctx context.Context, report *models.Report) (*models.Report, error)
}

type Store struct {
	records RecordStore
	now     func() time.Time
	vienna  *time.Location
	logger  zerolog.Logger
}

func NewStore(records RecordStore, logger zerolog.Logger) *Store {
	vienna, err := time.LoadLocation("Europe/Vienna")
	if err != nil {
		logger.Warn().Err(err).Msg("Europe/Vienna zone unavailable, using UTC for created_at_vienna")
		vienna = time.UTC
	}
	return &Store{
		records: records,
		now:     time.Now,
		vienna:  vienna,
		logger:  logger.With().Str("component", "report_store").Logger(),
	}
}

// WithClock replaces the time source. Used by tests.
func (s *Store) WithClock(now func() time.Time) *Store {
	s.now = now
	return s
}

// CreateOrGet returns the report for (orderID, merchantID), creating it if it
// does not exist yet. Concurrent callers for the same key all get the report
// of whichever insert won.
func (s *Store) CreateOrGet(ctx context.Context, orderID, merchantID string, status models.ReportStatus, description string) (*models.Report, error) {
	log := s.logger.With().Str("order_id", orderID).Str("merchant_id", merchantID).Logger()

	existing, err := s.records.FindReport(ctx, orderID, merchantID)
	switch {
	case err == nil && existing != nil:
		log.Info().Str("submission_id", existing.SubmissionID).Msg("Report already exists")
		return existing, nil
	case err != nil && !errors.Is(err, ErrNotFound):
		// The insert below still runs; uniqueness is enforced by the store.
		log.Warn().Err(err).Msg("Failed to check for existing report")
	}

	now := s.now()
	report := &models.Report{
		OrderID:         orderID,
		MerchantID:      merchantID,
		Status:          status,
		Description:     description,
		SubmissionID:    SubmissionID(orderID, merchantID, now),
		CreatedAtVienna: now.In(s.vienna).Format(viennaLayout),
		CreatedAt:       now.UTC(),
	}

	created, err := s.records.InsertReport(ctx, report)
	if err == nil {
		log.Info().Str("submission_id", created.SubmissionID).Msg("Report created")
		return created, nil
	}

	if !errors.Is(err, ErrUniqueViolation) {
		return nil, fmt.Errorf("%w: %w", ErrReportCreationFailed, err)
	}

	log.Info().Msg("Report inserted concurrently, fetching existing report")
	winner, err := s.records.FindReport(ctx, orderID, merchantID)
	if err != nil {
		return nil, fmt.Errorf("%w: fetch after unique violation: %w", ErrReportCreationFailed, err)
	}
	if winner == nil {
		return nil, fmt.Errorf("%w: report vanished after unique violation", ErrReportCreationFailed)
	}
	return winner, nil
}

// SubmissionID derives the submission identifier of a creating attempt.
func SubmissionID(orderID, merchantID string, at time.Time) string {
	return fmt.Sprintf("%s_%s_%d", orderID, merchantID, at.UnixMilli())
}
