package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"time"

	"photoframe/internal/filesystem"
	"photoframe/internal/frame"
	"photoframe/internal/indexer"
	"photoframe/internal/logging"
	"photoframe/internal/relocation"
)

// TextResponse is the text shown with a photo.
type TextResponse struct {
	Content string  `json:"content"`
	Type    string  `json:"type"`
	Author  *string `json:"author"`
}

// NextResponse is the body of GET /api/next.
type NextResponse struct {
	Path     string       `json:"path"`
	Name     string       `json:"name"`
	Created  time.Time    `json:"created"`
	ImageURL string       `json:"imageUrl"`
	Tier     string       `json:"tier"`
	Text     TextResponse `json:"text"`
	Fallback bool         `json:"fallback"`
}

// PathRequest carries a single photo path.
type PathRequest struct {
	Path string `json:"path"`
}

// RelocateRequest moves a photo into a bucket.
type RelocateRequest struct {
	Path   string `json:"path"`
	Bucket string `json:"bucket"`
}

// ReindexRequest starts a scan. Full clears the library first.
type ReindexRequest struct {
	Full bool `json:"full"`
}

// GetNext selects the next photo and its text.
func (h *Handlers) GetNext(w http.ResponseWriter, r *http.Request) {
	res, err := h.frame.SelectNext(r.Context())
	if err != nil {
		switch {
		case errors.Is(err, context.Canceled):
			return
		case errors.Is(err, frame.ErrStorageUnavailable):
			writeJSONError(w, "Photo storage unavailable", http.StatusServiceUnavailable)
		case errors.Is(err, frame.ErrEmptyLibrary):
			writeJSONError(w, "No photos available", http.StatusNotFound)
		default:
			logging.Error("Failed to select photo: %v", err)
			writeJSONError(w, "Failed to select photo", http.StatusInternalServerError)
		}
		return
	}

	writeJSON(w, http.StatusOK, NextResponse{
		Path:     res.Photo.Path,
		Name:     res.Photo.Name(),
		Created:  res.Photo.CreatedAt,
		ImageURL: "/api/photo?path=" + url.QueryEscape(res.Photo.Path),
		Tier:     string(res.Tier),
		Text: TextResponse{
			Content: res.Text.Content,
			Type:    string(res.Text.Kind),
			Author:  res.Text.Author,
		},
		Fallback: res.Fallback,
	})
}

// GetPhoto streams the bytes of an indexed photo. Paths not in the library
// are refused so the endpoint cannot read arbitrary files.
func (h *Handlers) GetPhoto(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Query().Get("path")
	if path == "" {
		writeJSONError(w, "Path is required", http.StatusBadRequest)
		return
	}
	if !h.library.Contains(path) {
		writeJSONError(w, "Photo not found", http.StatusNotFound)
		return
	}

	f, err := filesystem.OpenWithRetry(path, filesystem.DefaultRetryConfig())
	if err != nil {
		logging.Warn("Failed to open photo %s: %v", path, err)
		writeJSONError(w, "Photo not found", http.StatusNotFound)
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil || info.IsDir() {
		writeJSONError(w, "Photo not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Cache-Control", "private, max-age=3600")
	http.ServeContent(w, r, info.Name(), info.ModTime(), f)
}

// Relocate moves a photo into a bucket folder.
func (h *Handlers) Relocate(w http.ResponseWriter, r *http.Request) {
	var req RelocateRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Path == "" {
		writeJSONError(w, "Path is required", http.StatusBadRequest)
		return
	}

	bucket, err := relocation.ParseBucket(req.Bucket)
	if err != nil {
		writeJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	newPath, err := h.frame.Relocate(req.Path, bucket)
	if err != nil {
		writeRelocationError(w, "relocate", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "path": newPath})
}

// Omit moves a photo out of rotation.
func (h *Handlers) Omit(w http.ResponseWriter, r *http.Request) {
	h.pathAction(w, r, "omit", h.frame.Omit)
}

// Delete removes a photo from disk.
func (h *Handlers) Delete(w http.ResponseWriter, r *http.Request) {
	h.pathAction(w, r, "delete", h.frame.Delete)
}

func (h *Handlers) pathAction(w http.ResponseWriter, r *http.Request, op string, fn func(string) error) {
	var req PathRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Path == "" {
		writeJSONError(w, "Path is required", http.StatusBadRequest)
		return
	}

	if err := fn(req.Path); err != nil {
		writeRelocationError(w, op, err)
		return
	}
	writeJSONStatus(w, "ok")
}

func writeRelocationError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, relocation.ErrInvalidBucket):
		writeJSONError(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, relocation.ErrNotIndexed), errors.Is(err, relocation.ErrSourceMissing):
		writeJSONError(w, "Photo not found", http.StatusNotFound)
	default:
		logging.Error("Failed to %s photo: %v", op, err)
		writeJSONError(w, "Failed to "+op+" photo", http.StatusInternalServerError)
	}
}

// Reindex starts a background scan of the photo root.
func (h *Handlers) Reindex(w http.ResponseWriter, r *http.Request) {
	var req ReindexRequest
	if r.ContentLength != 0 && !decodeJSON(w, r, &req) {
		return
	}

	err := h.frame.Reindex(req.Full)
	switch {
	case err == nil:
		writeJSON(w, http.StatusAccepted, map[string]any{"status": "started", "full": req.Full})
	case errors.Is(err, indexer.ErrIndexInProgress):
		writeJSONError(w, "Indexing already in progress", http.StatusConflict)
	case errors.Is(err, frame.ErrStorageUnavailable):
		writeJSONError(w, "Photo storage unavailable", http.StatusServiceUnavailable)
	default:
		logging.Error("Failed to start reindex: %v", err)
		writeJSONError(w, "Failed to start reindex", http.StatusInternalServerError)
	}
}
