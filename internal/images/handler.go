package images

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/mwhitlock/prism/pkg/handlers"
	"github.com/mwhitlock/prism/pkg/routes"
)

// Handler provides HTTP endpoints for image submission operations.
type Handler struct {
	sys           System
	logger        *slog.Logger
	maxUploadSize int64
}

// NewHandler creates a Handler with the given system, logger, and upload size limit.
func NewHandler(sys System, logger *slog.Logger, maxUploadSize int64) *Handler {
	return &Handler{
		sys:           sys,
		logger:        logger.With("handler", "images"),
		maxUploadSize: maxUploadSize,
	}
}

// Routes returns the route group definition for image endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/images",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Handler: h.List},
			{Method: "GET", Pattern: "/stats", Handler: h.Stats},
			{Method: "GET", Pattern: "/{id}", Handler: h.Find},
			{Method: "POST", Pattern: "", Handler: h.Upload},
			{Method: "DELETE", Pattern: "/cache", Handler: h.ClearCache},
		},
	}
}

// Upload processes a multipart form upload containing an image file and queues
// it for classification. Returns 201 with the pending submission on success.
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		handlers.RespondError(w, h.logger, http.StatusRequestEntityTooLarge, ErrInvalidFile)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidFile)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidFile)
		return
	}

	cmd := CreateCommand{
		Data:     data,
		Filename: header.Filename,
	}

	img, err := h.sys.Create(r.Context(), cmd)
	if err != nil {
		// A failed job dispatch still carries the persisted record; the
		// submission is stored and pending, so the upload itself succeeded.
		if img != nil && errors.Is(err, ErrJobDispatch) {
			h.logger.Warn("submission stored but job dispatch failed", "id", img.ID, "error", err)
			handlers.RespondJSON(w, http.StatusCreated, NewUploadResponse(img))
			return
		}
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusCreated, NewUploadResponse(img))
}

// Find returns a single submission by its numeric path parameter, serving
// reads through the result cache.
func (h *Handler) Find(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidID)
		return
	}

	img, err := h.sys.FindCached(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, img)
}

// List returns submissions, optionally filtered by a status query parameter.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	var status *Status
	if s := r.URL.Query().Get("status"); s != "" {
		parsed, err := ParseStatus(s)
		if err != nil {
			handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
			return
		}
		status = &parsed
	}

	items, err := h.sys.List(r.Context(), status)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, items)
}

// Stats returns per-status submission counts.
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	counts, err := h.sys.Stats(r.Context())
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, counts)
}

// ClearCache drops all cached snapshots. Administrative endpoint.
func (h *Handler) ClearCache(w http.ResponseWriter, r *http.Request) {
	if err := h.sys.ClearCache(r.Context()); err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
