package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"rental-inspection-backend/internal/models"
	"rental-inspection-backend/internal/retry"
)

// ErrUploadFailed marks a photo that could not be stored after all retries.
var ErrUploadFailed = errors.New("upload failed")

type ObjectStore interface {
	PutObject(ctx context.Context, path string, data []byte, contentType string) error
}

type PhotoRecorder interface {
	InsertPhotoRecord(ctx context.Context, record models.UploadedPhotoRecord) error
}

// StorageService puts compressed photos into the bucket and links them to
// their order.
type StorageService struct {
	objects ObjectStore
	records PhotoRecorder
	policy  retry.Policy
	logger  zerolog.Logger
}

func NewStorageService(objects ObjectStore, records PhotoRecorder, policy retry.Policy, logger zerolog.Logger) *StorageService {
	return &StorageService{
		objects: objects,
		records: records,
		policy:  policy,
		logger:  logger,
	}
}

// UploadPhoto stores the photo at target.FilePath and inserts the photo
// record. Both steps form one attempt of the retrier; the object is written
// with upsert so a retried attempt overwrites the same path.
func (s *StorageService) UploadPhoto(ctx context.Context, target models.UploadedPhotoRecord, photo *models.CompressedPhoto) error {
	if photo == nil || photo.Released() {
		return fmt.Errorf("%w: %s: photo data already released", ErrUploadFailed, target.FileName)
	}

	log := s.logger.With().
		Str("order_id", target.OrderID).
		Str("merchant_id", target.MerchantID).
		Str("path", target.FilePath).
		Logger()

	policy := s.policy
	if policy.OnRetry == nil {
		policy.OnRetry = func(attempt int, err error, delay time.Duration) {
			log.Warn().Err(err).Int("attempt", attempt).Dur("backoff", delay).Msg("photo upload attempt failed, retrying")
		}
	}

	data := photo.Data
	contentType := photo.ContentType
	_, err := retry.Do(ctx, policy, func(ctx context.Context) (struct{}, error) {
		if err := s.objects.PutObject(ctx, target.FilePath, data, contentType); err != nil {
			return struct{}{}, err
		}
		return struct{}{}, s.records.InsertPhotoRecord(ctx, target)
	})
	if err != nil {
		log.Error().Err(err).Msg("photo upload failed")
		return fmt.Errorf("%w: %s: %w", ErrUploadFailed, target.FileName, err)
	}

	log.Debug().Int64("size", photo.Size).Msg("photo uploaded")
	return nil
}
