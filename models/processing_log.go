// models/processing_log.go
package models

import (
	"encoding/json"
	"time"
)

// Log entry outcome states
const (
	LogStatusSuccess = "success"
	LogStatusError   = "error"
	LogStatusSkipped = "skipped"
)

// ProcessingLogEntry is an append-only audit record of one pipeline action.
// Write-only from the pipeline's perspective; the admin surface reads the
// feed for diagnosis.
type ProcessingLogEntry struct {
	ID        string    `json:"id" gorm:"primaryKey"`
	Action    string    `json:"action" gorm:"index;not null"`
	Status    string    `json:"status" gorm:"not null"` // success | error | skipped
	Details   string    `json:"details" gorm:"type:text"` // free-form JSON, diagnostic only
	ErrorText string    `json:"error_text,omitempty" gorm:"type:text"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime;index"`
}

// NewLogEntry builds an entry, marshalling details into the JSON blob.
// Details stay a free-form map — the field is diagnostic, never read back.
func NewLogEntry(action, status string, details map[string]any, errText string) ProcessingLogEntry {
	detailJSON := ""
	if len(details) > 0 {
		if b, err := json.Marshal(details); err == nil {
			detailJSON = string(b)
		}
	}
	return ProcessingLogEntry{
		Action:    action,
		Status:    status,
		Details:   detailJSON,
		ErrorText: errText,
	}
}
