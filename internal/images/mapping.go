package images

import (
	"time"

	"github.com/mwhitlock/prism/pkg/repository"
)

const imageColumns = `id, s3_key, image_url, status, classification_result,
	confidence_score, error_message, created_at, updated_at`

// UploadResponse is the trimmed payload returned for a successful upload.
type UploadResponse struct {
	ID        int64     `json:"id"`
	ImageURL  string    `json:"image_url"`
	Status    Status    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// NewUploadResponse builds the upload response from a persisted submission.
func NewUploadResponse(img *Image) UploadResponse {
	return UploadResponse{
		ID:        img.ID,
		ImageURL:  img.ImageURL,
		Status:    img.Status,
		CreatedAt: img.CreatedAt,
	}
}

func scanImage(s repository.Scanner) (Image, error) {
	var img Image
	err := s.Scan(
		&img.ID,
		&img.StorageKey,
		&img.ImageURL,
		&img.Status,
		&img.ClassificationResult,
		&img.ConfidenceScore,
		&img.ErrorMessage,
		&img.CreatedAt,
		&img.UpdatedAt,
	)
	return img, err
}

func scanStatusCount(s repository.Scanner) (StatusCount, error) {
	var sc StatusCount
	err := s.Scan(&sc.Status, &sc.Count)
	return sc, err
}
