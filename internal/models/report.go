package models

import "time"

// ReportStatus is the outcome of the condition questionnaire.
type ReportStatus string

const (
	StatusNoDamage    ReportStatus = "no_damage"
	StatusDamageFound ReportStatus = "damage_found"
)

func (s ReportStatus) Valid() bool {
	return s == StatusNoDamage || s == StatusDamageFound
}

// Report is the single inspection record per (order, merchant) pair.
// It is written once and never updated.
type Report struct {
	OrderID         string       `json:"order_id"`
	MerchantID      string       `json:"merchant_id"`
	Status          ReportStatus `json:"status"`
	Description     string       `json:"description"`
	SubmissionID    string       `json:"submission_id"`
	CreatedAtVienna string       `json:"created_at_vienna,omitempty"`
	CreatedAt       time.Time    `json:"created_at"`
}

// UploadedPhotoRecord links a stored photo object to its order.
type UploadedPhotoRecord struct {
	OrderID    string    `json:"order_id"`
	MerchantID string    `json:"merchant_id"`
	FileName   string    `json:"file_name"`
	FilePath   string    `json:"file_path"`
	CreatedAt  time.Time `json:"created_at,omitempty"`
}

// MerchantConfig drives the merchant specific thank-you page.
type MerchantConfig struct {
	MerchantID   string         `json:"merchant_id"`
	DisplayName  string         `json:"display_name,omitempty"`
	ThankYouText string         `json:"thank_you_text,omitempty"`
	Instructions []Instruction  `json:"instructions,omitempty"`
	Metadata     map[string]any `json:"metadata,omitempty"`
}

type Instruction struct {
	Icon string `json:"icon"`
	Text string `json:"text"`
}
