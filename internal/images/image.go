// Package images implements the image submission domain for Prism.
// It provides types, data access, and business logic for image upload,
// job dispatch to the classification worker, and reconciliation of
// classification results into persistent state and the result cache.
package images

import (
	"fmt"
	"time"
)

// Status is the lifecycle state of an image submission.
//
// Transitions: pending is the initial state; a worker acknowledgement moves
// pending to processing; a classification result or error moves pending or
// processing to the terminal completed or failed state. Terminal states accept
// idempotent overwrites from duplicate or reordered deliveries but are never
// regressed to an earlier state.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// ParseStatus validates and converts a raw string into a Status.
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusPending, StatusProcessing, StatusCompleted, StatusFailed:
		return Status(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
}

// Terminal reports whether the status is a final state.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Image represents a tracked image submission and its classification lifecycle.
// ClassificationResult and ConfidenceScore are populated iff the status is
// completed; ErrorMessage is populated iff the status is failed. A submission
// never carries a result and an error at the same time.
type Image struct {
	ID                   int64     `json:"id"`
	StorageKey           string    `json:"storage_key"`
	ImageURL             string    `json:"image_url"`
	Status               Status    `json:"status"`
	ClassificationResult *string   `json:"classification_result,omitempty"`
	ConfidenceScore      *float64  `json:"confidence_score,omitempty"`
	ErrorMessage         *string   `json:"error_message,omitempty"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`
}

// CreateCommand carries the data needed to register a new image submission.
// Data holds the raw file bytes; Filename is the client-supplied original name.
type CreateCommand struct {
	Data     []byte
	Filename string
}

// StatusCount reports how many submissions currently hold a given status.
type StatusCount struct {
	Status Status `json:"status"`
	Count  int64  `json:"count"`
}
