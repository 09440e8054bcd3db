package models

type LanguageRequest struct {
	Language string `json:"language" binding:"required,oneof=de en"`
}

type ResetRequest struct {
	// OrderID of the next inspection. Empty generates one.
	OrderID string `json:"order_id,omitempty"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
