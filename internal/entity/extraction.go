package entity

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Extraction represents one pipeline run over a document for data transfer
// between layers.
type Extraction struct {
	ID           uuid.UUID       `json:"id"`
	DocumentID   uuid.UUID       `json:"document_id"`
	Tier         string          `json:"tier"`
	PlanPresent  bool            `json:"plan_present"`
	PlanType     string          `json:"plan_type"`
	EntryCount   int             `json:"entry_count"`
	TotalHours   *float64        `json:"total_hours,omitempty"`
	Artifact     json.RawMessage `json:"artifact,omitempty"`
	StartedAt    time.Time       `json:"started_at"`
	FinishedAt   *time.Time      `json:"finished_at,omitempty"`
	ErrorMessage *string         `json:"error_message,omitempty"`
}

// StaffingRow is the relational projection of one staffing entry.
type StaffingRow struct {
	ID           uuid.UUID `json:"id"`
	ExtractionID uuid.UUID `json:"extraction_id"`
	Name         string    `json:"name"`
	Role         string    `json:"role"`
	Level        string    `json:"level"`
	Workstream   string    `json:"workstream"`
	Location     string    `json:"location"`
	Percentage   *float64  `json:"percentage,omitempty"`
	Hours        *float64  `json:"hours,omitempty"`
	Months       *float64  `json:"months,omitempty"`
	Page         int       `json:"page"`
	TableIndex   int       `json:"table_index"`
	RowIndex     int       `json:"row_index"`
}
