package models

// ClipboardResponse is the body of GET /clipboard.
type ClipboardResponse struct {
	History []string `json:"history"` // Newest first
}
