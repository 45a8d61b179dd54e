package models

import (
	"time"

	"github.com/google/uuid"
)

// SweepReport summarizes one alert sweep execution.
type SweepReport struct {
	ProcessedSearches  int            `json:"processedSearches"`
	NewPropertiesFound int            `json:"newPropertiesFound"`
	EmailsSent         int            `json:"emailsSent"` // notification intents emitted
	Failures           []SweepFailure `json:"failures,omitempty"`
	HighWaterMark      time.Time      `json:"highWaterMark"`
	DurationMs         int64          `json:"durationMs"`
}

// SweepFailure records one saved search the sweep could not notify.
// Failures never abort the sweep; they are surfaced here instead.
type SweepFailure struct {
	SearchID uuid.UUID `json:"searchId"`
	UserID   string    `json:"userId"`
	Reason   string    `json:"reason"`
}

// Sweep run status
const (
	SweepStatusRunning   = "running"
	SweepStatusCompleted = "completed"
	SweepStatusFailed    = "failed"
)

// SweepRun is the persisted execution record of one sweep.
type SweepRun struct {
	ID                 int64      `json:"id" db:"id"`
	StartedAt          time.Time  `json:"started_at" db:"started_at"`
	FinishedAt         *time.Time `json:"finished_at" db:"finished_at"`
	Status             string     `json:"status" db:"status"` // running, completed, failed
	WindowStart        time.Time  `json:"window_start" db:"window_start"`
	ProcessedSearches  int        `json:"processed_searches" db:"processed_searches"`
	NewPropertiesFound int        `json:"new_properties_found" db:"new_properties_found"`
	EmailsSent         int        `json:"emails_sent" db:"emails_sent"`
	ErrorsCount        int        `json:"errors_count" db:"errors_count"`
	ErrorMessage       string     `json:"error_message" db:"error_message"`
}

// Notification is a persisted notification intent awaiting the
// external delivery collaborator. Delivery transport is not our
// concern; we only write the outbox row.
type Notification struct {
	ID         uuid.UUID         `json:"id" db:"id"`
	UserID     string            `json:"user_id" db:"user_id"`
	SearchID   uuid.UUID         `json:"search_id" db:"search_id"`
	SearchName string            `json:"search_name" db:"search_name"`
	Message    string            `json:"message" db:"message"`
	Properties []PropertySummary `json:"properties" db:"properties"`
	CreatedAt  time.Time         `json:"created_at" db:"created_at"`
}
