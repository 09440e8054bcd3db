package models

import "time"

type SessionResponse struct {
	SessionID      string              `json:"session_id"`
	OrderID        string              `json:"order_id"`
	MerchantID     string              `json:"merchant_id"`
	StoreID        string              `json:"store_id"`
	Language       string              `json:"language"`
	MaxPhotos      int                 `json:"max_photos"`
	Photos         []PhotoInfo         `json:"photos"`
	State          string              `json:"state"`
	LastSubmission *SubmissionResponse `json:"last_submission,omitempty"`
	CreatedAt      time.Time           `json:"created_at"`
}

type PhotoInfo struct {
	Index     int    `json:"index"`
	Filename  string `json:"filename"`
	MediaType string `json:"media_type"`
	Size      int64  `json:"size"`
}

type UploadResponse struct {
	SessionID string      `json:"session_id"`
	Files     []PhotoInfo `json:"files"`
	Total     int         `json:"total"`
	Errors    []string    `json:"errors,omitempty"`
}

type SubmissionResponse struct {
	State    string          `json:"state"`
	Skipped  bool            `json:"skipped,omitempty"`
	Report   *Report         `json:"report,omitempty"`
	Photos   []SubmittedFile `json:"photos,omitempty"`
	Notified bool            `json:"notified"`
	Message  string          `json:"message,omitempty"`
}

type SubmittedFile struct {
	Index            int     `json:"index"`
	SourceName       string  `json:"source_name"`
	FileName         string  `json:"file_name,omitempty"`
	FilePath         string  `json:"file_path,omitempty"`
	Size             int64   `json:"size,omitempty"`
	CompressionRatio float64 `json:"compression_ratio,omitempty"`
	Preset           int     `json:"preset,omitempty"`
	FailedStage      string  `json:"failed_stage,omitempty"`
	Error            string  `json:"error,omitempty"`
}

type ReportResponse struct {
	Report Report           `json:"report"`
	Photos []StoredFileInfo `json:"photos"`
}

type StoredFileInfo struct {
	FileName  string    `json:"file_name"`
	FilePath  string    `json:"file_path"`
	URL       string    `json:"url"`
	CreatedAt time.Time `json:"created_at,omitempty"`
}

type MerchantConfigResponse struct {
	MerchantID string          `json:"merchant_id"`
	Configured bool            `json:"configured"`
	Config     *MerchantConfig `json:"config,omitempty"`
}

type HealthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database,omitempty"`
}
