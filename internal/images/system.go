package images

import (
	"context"
)

// System defines the public contract for image submission operations.
// It is the sole writer of submission state: the HTTP layer invokes it
// synchronously and the reconciler invokes it for every queue delivery.
type System interface {
	Handler(maxUploadSize int64) *Handler

	// Create persists a new pending submission for the uploaded file and
	// publishes a classification job keyed by the submission id. A job publish
	// failure does not undo the write: the persisted record is returned
	// together with an error wrapping ErrJobDispatch, and the record stays
	// pending for an out-of-band sweep.
	Create(ctx context.Context, cmd CreateCommand) (*Image, error)

	// Find returns the authoritative store record.
	Find(ctx context.Context, id int64) (*Image, error)

	// FindCached consults the result cache before the store. A hit still
	// re-reads the authoritative record; a miss populates the cache when the
	// submission has completed.
	FindCached(ctx context.Context, id int64) (*Image, error)

	// List returns submissions, optionally restricted to a single status,
	// newest first.
	List(ctx context.Context, status *Status) ([]Image, error)

	// Stats returns per-status submission counts.
	Stats(ctx context.Context) ([]StatusCount, error)

	// ApplyResult transitions a submission to completed with the given
	// classification and confidence, clearing any prior error. Idempotent;
	// duplicate or reordered deliveries overwrite (last write wins).
	ApplyResult(ctx context.Context, id int64, result string, confidence float64) error

	// ApplyFailure transitions a submission to failed with the given error
	// message, clearing any prior result. The cache is left untouched.
	ApplyFailure(ctx context.Context, id int64, message string) error

	// MarkProcessing records a worker acknowledgement. Only a pending
	// submission is moved to processing; any later state is left as is.
	MarkProcessing(ctx context.Context, id int64) error

	// ClearCache drops every cached snapshot. Administrative operation.
	ClearCache(ctx context.Context) error
}
