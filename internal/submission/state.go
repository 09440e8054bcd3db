package submission

import (
	"errors"

	"rental-inspection-backend/internal/models"
)

// State of the submission of one session.
type State int

const (
	StateIdle State = iota
	StateInFlight
	StateCompleted
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateInFlight:
		return "in_flight"
	case StateCompleted:
		return "completed"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// locked reports whether a new submission must be refused.
func (s State) locked() bool {
	return s == StateInFlight || s == StateCompleted
}

var (
	ErrSubmissionInFlight = errors.New("submission already in progress")
	ErrAlreadySubmitted   = errors.New("inspection already submitted")
	ErrNoPhotos           = errors.New("at least one photo is required")
)

// Stage names the step a photo failed in.
type Stage string

const (
	StageCompress Stage = "compress"
	StageUpload   Stage = "upload"
)

// PhotoOutcome is the result of processing one photo of a submission.
type PhotoOutcome struct {
	Index            int     `json:"index"`
	SourceName       string  `json:"source_name"`
	FileName         string  `json:"file_name,omitempty"`
	FilePath         string  `json:"file_path,omitempty"`
	Size             int64   `json:"size,omitempty"`
	CompressionRatio float64 `json:"compression_ratio,omitempty"`
	Preset           int     `json:"preset,omitempty"`
	Stage            Stage   `json:"failed_stage,omitempty"`
	Err              error   `json:"-"`
}

func (p PhotoOutcome) Succeeded() bool {
	return p.Err == nil && p.FilePath != ""
}

// Result is the outcome of one Submit call.
type Result struct {
	State    State          `json:"state"`
	Skipped  bool           `json:"skipped,omitempty"`
	Report   *models.Report `json:"report,omitempty"`
	Photos   []PhotoOutcome `json:"photos,omitempty"`
	Notified bool           `json:"notified"`
	Message  string         `json:"message,omitempty"`
	Err      error          `json:"-"`
}
