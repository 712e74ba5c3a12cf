package models

// OutboundMessageRequest represents requests to send a WhatsApp message manually via the API.
type OutboundMessageRequest struct {
	To         string `json:"to" binding:"required"`
	Message    string `json:"message" binding:"required"`
	PreviewURL bool   `json:"preview_url"`
}

// ReminderResult summarizes one reminder run.
type ReminderResult struct {
	Month   string   `json:"month"`
	Sent    int      `json:"sent"`
	Skipped int      `json:"skipped"`
	Failed  []string `json:"failed,omitempty"`
}
