package submission

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"rental-inspection-backend/internal/compress"
	"rental-inspection-backend/internal/models"
	"rental-inspection-backend/internal/questionnaire"
)

type ReportCreator interface {
	CreateOrGet(ctx context.Context, orderID, merchantID string, status models.ReportStatus, description string) (*models.Report, error)
}

type Compressor interface {
	Compress(ctx context.Context, raw models.RawPhoto) (*models.CompressedPhoto, error)
}

type PhotoUploader interface {
	UploadPhoto(ctx context.Context, target models.UploadedPhotoRecord, photo *models.CompressedPhoto) error
}

type Notifier interface {
	Notify(ctx context.Context, orderID, storeID string) error
}

// Request is everything one submission needs.
type Request struct {
	OrderID    string
	MerchantID string
	StoreID    string
	Language   questionnaire.Language
	Photos     []models.RawPhoto
	Answers    questionnaire.Answers
}

// Orchestrator runs the submission of one inspection session: it creates the
// report, uploads the photos one after another and notifies the merchant.
// At most one submission runs at a time, and a completed submission is final
// until Reset.
type Orchestrator struct {
	reports    ReportCreator
	compressor Compressor
	uploader   PhotoUploader
	notifier   Notifier
	logger     zerolog.Logger
	now        func() time.Time

	mu        sync.Mutex
	state     State
	last      *Result
	lastStamp int64
}

func NewOrchestrator(reports ReportCreator, compressor Compressor, uploader PhotoUploader, notifier Notifier, logger zerolog.Logger) *Orchestrator {
	return &Orchestrator{
		reports:    reports,
		compressor: compressor,
		uploader:   uploader,
		notifier:   notifier,
		logger:     logger,
		now:        time.Now,
	}
}

// WithClock replaces the clock used for photo file names.
func (o *Orchestrator) WithClock(now func() time.Time) *Orchestrator {
	o.now = now
	return o
}

func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// LastResult returns the outcome of the most recent finished submission.
func (o *Orchestrator) LastResult() (Result, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.last == nil {
		return Result{}, false
	}
	return *o.last, true
}

// Reset returns a finished orchestrator to Idle so a new order can be
// submitted. It refuses while a submission is running.
func (o *Orchestrator) Reset() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.state == StateInFlight {
		return ErrSubmissionInFlight
	}
	o.state = StateIdle
	o.last = nil
	return nil
}

// Submit runs one submission. A call made while another is in flight, or
// after a completed one, returns a skipped result without side effects.
func (o *Orchestrator) Submit(ctx context.Context, req Request) Result {
	run, res := o.Claim(len(req.Photos))
	if run == nil {
		return res
	}
	return run(ctx, req)
}

// Claim takes the submission guard for a request with photoCount photos and
// returns the function that performs it. When no submission may start, run
// is nil and res says why. The guard is held from the moment Claim returns,
// so callers can snapshot their input and claim under one lock.
func (o *Orchestrator) Claim(photoCount int) (run func(ctx context.Context, req Request) Result, res Result) {
	if photoCount == 0 {
		return nil, Result{State: o.State(), Message: ErrNoPhotos.Error(), Err: ErrNoPhotos}
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	if o.state.locked() {
		err := ErrSubmissionInFlight
		if o.state == StateCompleted {
			err = ErrAlreadySubmitted
		}
		return nil, Result{State: o.state, Skipped: true, Message: err.Error(), Err: err}
	}
	o.state = StateInFlight
	o.last = nil

	return o.finish, Result{State: StateInFlight}
}

func (o *Orchestrator) finish(ctx context.Context, req Request) Result {
	res := o.run(ctx, req)

	o.mu.Lock()
	o.state = res.State
	o.last = &res
	o.mu.Unlock()

	return res
}

func (o *Orchestrator) run(ctx context.Context, req Request) Result {
	log := o.logger.With().
		Str("order_id", req.OrderID).
		Str("merchant_id", req.MerchantID).
		Logger()

	res := Result{State: StateInFlight}

	status, description := req.Answers.Derive(req.Language)
	report, err := o.reports.CreateOrGet(ctx, req.OrderID, req.MerchantID, status, description)
	if err != nil {
		log.Error().Err(err).Msg("report creation failed")
		return failed(res, err, "The report could not be saved")
	}
	res.Report = report
	log.Info().Str("submission_id", report.SubmissionID).Str("status", string(report.Status)).Msg("report ready")

	res.Photos = make([]PhotoOutcome, 0, len(req.Photos))
	for i, raw := range req.Photos {
		outcome, err := o.processPhoto(ctx, req, i, raw)
		res.Photos = append(res.Photos, outcome)
		if err != nil {
			log.Error().Err(err).Int("photo", i+1).Str("stage", string(outcome.Stage)).Msg("photo failed, aborting submission")
			return failed(res, err, fmt.Sprintf("Photo %d could not be processed", i+1))
		}
	}

	if o.notifier != nil {
		if err := o.notifier.Notify(ctx, req.OrderID, req.StoreID); err != nil {
			log.Warn().Err(err).Msg("notification failed")
		} else {
			res.Notified = true
		}
	}

	res.State = StateCompleted
	log.Info().Int("photos", len(res.Photos)).Bool("notified", res.Notified).Msg("submission completed")
	return res
}

func (o *Orchestrator) processPhoto(ctx context.Context, req Request, index int, raw models.RawPhoto) (PhotoOutcome, error) {
	outcome := PhotoOutcome{Index: index, SourceName: raw.FileName}

	photo, err := o.compressor.Compress(ctx, raw)
	if err != nil {
		outcome.Stage = StageCompress
		outcome.Err = err
		return outcome, err
	}
	defer photo.Release()

	outcome.Size = photo.Size
	outcome.CompressionRatio = photo.CompressionRatio
	outcome.Preset = photo.Preset

	fileName, filePath := PhotoPath(req.MerchantID, req.OrderID, o.nextStamp())
	target := models.UploadedPhotoRecord{
		OrderID:    req.OrderID,
		MerchantID: req.MerchantID,
		FileName:   fileName,
		FilePath:   filePath,
	}
	if err := o.uploader.UploadPhoto(ctx, target, photo); err != nil {
		outcome.Stage = StageUpload
		outcome.Err = err
		return outcome, err
	}

	outcome.FileName = fileName
	outcome.FilePath = filePath
	return outcome, nil
}

// nextStamp returns a millisecond timestamp that is strictly greater than
// every stamp handed out before, so photo paths never collide.
func (o *Orchestrator) nextStamp() int64 {
	ms := o.now().UnixMilli()

	o.mu.Lock()
	defer o.mu.Unlock()
	if ms <= o.lastStamp {
		ms = o.lastStamp + 1
	}
	o.lastStamp = ms
	return ms
}

// PhotoPath builds the stored file name and the bucket path of a photo.
func PhotoPath(merchantID, orderID string, stamp int64) (fileName, filePath string) {
	fileName = fmt.Sprintf("%s_%d%s", orderID, stamp, compress.OutputExtension)
	return fileName, merchantID + "/" + orderID + "/" + fileName
}

func failed(res Result, err error, message string) Result {
	res.State = StateFailed
	res.Err = err
	res.Message = message + ": " + err.Error()
	return res
}
