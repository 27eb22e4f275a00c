package images_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/mwhitlock/prism/internal/images"
)

func TestMapHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"not found", images.ErrNotFound, http.StatusNotFound},
		{"duplicate", images.ErrDuplicate, http.StatusConflict},
		{"empty file", images.ErrEmptyFile, http.StatusBadRequest},
		{"invalid file", images.ErrInvalidFile, http.StatusBadRequest},
		{"invalid id", images.ErrInvalidID, http.StatusBadRequest},
		{"invalid status", images.ErrInvalidStatus, http.StatusBadRequest},
		{"job dispatch", images.ErrJobDispatch, http.StatusInternalServerError},
		{"unknown error", errors.New("something else"), http.StatusInternalServerError},
		{"wrapped not found", fmt.Errorf("find failed: %w", images.ErrNotFound), http.StatusNotFound},
		{"wrapped empty file", fmt.Errorf("create failed: %w", images.ErrEmptyFile), http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := images.MapHTTPStatus(tt.err)
			if got != tt.want {
				t.Errorf("MapHTTPStatus(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}
