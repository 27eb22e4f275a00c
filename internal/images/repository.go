package images

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/mwhitlock/prism/pkg/broker"
	"github.com/mwhitlock/prism/pkg/cache"
	"github.com/mwhitlock/prism/pkg/metrics"
	"github.com/mwhitlock/prism/pkg/repository"
)

type repo struct {
	db      *sql.DB
	broker  broker.System
	cache   cache.System
	metrics metrics.System
	logger  *slog.Logger
	urlBase string

	// fetch is the authoritative store read behind FindCached. It defaults to
	// Find and exists as a seam for exercising the cache-aside path.
	fetch func(ctx context.Context, id int64) (*Image, error)
}

// New creates an image repository implementing the System interface.
// urlBase is the public location prefix derived storage URLs are built from.
func New(
	db *sql.DB,
	br broker.System,
	ch cache.System,
	m metrics.System,
	logger *slog.Logger,
	urlBase string,
) System {
	r := &repo{
		db:      db,
		broker:  br,
		cache:   ch,
		metrics: m,
		logger:  logger.With("system", "images"),
		urlBase: strings.TrimSuffix(urlBase, "/"),
	}
	r.fetch = r.Find
	return r
}

func (r *repo) Handler(maxUploadSize int64) *Handler {
	return NewHandler(r, r.logger, maxUploadSize)
}

func (r *repo) Create(ctx context.Context, cmd CreateCommand) (*Image, error) {
	if len(cmd.Data) == 0 {
		return nil, ErrEmptyFile
	}

	key := buildStorageKey(sanitizeFilename(cmd.Filename))
	location := r.urlBase + "/" + key

	q := `
		INSERT INTO images(s3_key, image_url, status, created_at, updated_at)
		VALUES ($1, $2, $3, NOW(), NOW())
		RETURNING ` + imageColumns

	img, err := repository.QueryOne(ctx, r.db, q, []any{key, location, StatusPending}, scanImage)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.metrics.RecordUpload()
	r.logger.Info("image created", "id", img.ID, "storage_key", key)

	// The record is persisted either way; a failed dispatch is returned
	// alongside it so the caller observes the dependency failure.
	if err := r.publishJob(ctx, img.ID, key); err != nil {
		return &img, err
	}

	return &img, nil
}

// publishJob dispatches a job descriptor keyed by the submission id so that
// every message for the same submission lands on the same partition. A publish
// failure leaves the persisted record pending; an out-of-band sweep handles
// redelivery. Publish errors are not processing failures and never feed the
// processing metrics.
func (r *repo) publishJob(ctx context.Context, id int64, storageKey string) error {
	key := []byte(strconv.FormatInt(id, 10))
	value := fmt.Appendf(nil, "%d:%s", id, storageKey)

	if err := r.broker.PublishJob(ctx, key, value); err != nil {
		r.logger.Error("job publish failed, record remains pending", "id", id, "error", err)
		return fmt.Errorf("%w: %v", ErrJobDispatch, err)
	}

	r.logger.Info("job published", "id", id, "storage_key", storageKey)
	return nil
}

func (r *repo) Find(ctx context.Context, id int64) (*Image, error) {
	q := `SELECT ` + imageColumns + ` FROM images WHERE id = $1`

	img, err := repository.QueryOne(ctx, r.db, q, []any{id}, scanImage)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &img, nil
}

func (r *repo) FindCached(ctx context.Context, id int64) (*Image, error) {
	if _, ok := r.cache.Get(ctx, r.cache.Key(id)); ok {
		r.metrics.RecordCacheHit()
		// The cached snapshot only proves a fresh terminal entry exists; the
		// served payload is always the authoritative store record.
		return r.fetch(ctx, id)
	}

	r.metrics.RecordCacheMiss()

	img, err := r.fetch(ctx, id)
	if err != nil {
		return nil, err
	}

	if img.Status == StatusCompleted {
		r.cacheSnapshot(ctx, img)
	}

	return img, nil
}

func (r *repo) List(ctx context.Context, status *Status) ([]Image, error) {
	q := `SELECT ` + imageColumns + ` FROM images`
	args := []any{}

	if status != nil {
		q += ` WHERE status = $1`
		args = append(args, *status)
	}
	q += ` ORDER BY created_at DESC`

	items, err := repository.QueryMany(ctx, r.db, q, args, scanImage)
	if err != nil {
		return nil, fmt.Errorf("query images: %w", err)
	}
	return items, nil
}

func (r *repo) Stats(ctx context.Context) ([]StatusCount, error) {
	q := `SELECT status, COUNT(*) FROM images GROUP BY status ORDER BY status`

	counts, err := repository.QueryMany(ctx, r.db, q, nil, scanStatusCount)
	if err != nil {
		return nil, fmt.Errorf("count images by status: %w", err)
	}
	return counts, nil
}

func (r *repo) ApplyResult(ctx context.Context, id int64, result string, confidence float64) error {
	q := `
		UPDATE images
		SET status = $2, classification_result = $3, confidence_score = $4,
			error_message = NULL, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + imageColumns

	img, err := repository.QueryOne(ctx, r.db, q,
		[]any{id, StatusCompleted, result, confidence},
		scanImage,
	)
	if err != nil {
		return repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.cacheSnapshot(ctx, &img)
	r.metrics.RecordProcessingSuccess()
	r.metrics.ObserveProcessingDuration(img.UpdatedAt.Sub(img.CreatedAt))

	r.logger.Info("classification result applied",
		"id", id,
		"result", result,
		"confidence", confidence,
	)
	return nil
}

func (r *repo) ApplyFailure(ctx context.Context, id int64, message string) error {
	q := `
		UPDATE images
		SET status = $2, error_message = $3,
			classification_result = NULL, confidence_score = NULL, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + imageColumns

	_, err := repository.QueryOne(ctx, r.db, q, []any{id, StatusFailed, message}, scanImage)
	if err != nil {
		return repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.metrics.RecordProcessingFailure()

	r.logger.Warn("image marked failed", "id", id, "error_message", message)
	return nil
}

func (r *repo) MarkProcessing(ctx context.Context, id int64) error {
	q := `
		UPDATE images
		SET status = $2, updated_at = NOW()
		WHERE id = $1 AND status = $3`

	res, err := r.db.ExecContext(ctx, q, id, StatusProcessing, StatusPending)
	if err != nil {
		return fmt.Errorf("mark image %d processing: %w", id, err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("mark image %d processing: %w", id, err)
	}

	// No rows means the submission either does not exist or has already moved
	// past pending; the latter is a no-op, never a regression.
	if rows == 0 {
		if _, err := r.Find(ctx, id); err != nil {
			return err
		}
		return nil
	}

	r.logger.Debug("image marked processing", "id", id)
	return nil
}

func (r *repo) ClearCache(ctx context.Context) error {
	return r.cache.ClearAll(ctx)
}

// cacheSnapshot stores a serialized copy of a completed submission.
// Best-effort: serialization failure is logged, never propagated.
func (r *repo) cacheSnapshot(ctx context.Context, img *Image) {
	snapshot, err := json.Marshal(img)
	if err != nil {
		r.logger.Warn("snapshot marshal failed", "id", img.ID, "error", err)
		return
	}
	r.cache.Put(ctx, r.cache.Key(img.ID), snapshot)
}

func buildStorageKey(filename string) string {
	return fmt.Sprintf("images/%s-%s", uuid.New(), filename)
}

func sanitizeFilename(name string) string {
	name = filepath.Base(name)
	if name == "." || name == "" {
		name = "image"
	}
	return url.PathEscape(name)
}
