package handler

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vantagemgmt/portal-data/internal/api/respond"
	"github.com/vantagemgmt/portal-data/internal/store"
	"github.com/vantagemgmt/portal-data/internal/upload"
)

// maxUploadBytes caps one multipart upload request.
const maxUploadBytes = 256 << 20

// UploadHighlights accepts a batch of best-clip files and starts uploading
// them to the media host.
// @Summary Upload best clips
// @Description Accepts multipart files under the "files" field and uploads them concurrently to the media host. Returns immediately with the batch ID, per-file upload IDs, and the optimistic placeholder clips; poll the batch endpoint or subscribe to the change feed for completion.
// @Tags highlights
// @Accept multipart/form-data
// @Produce json
// @Param playerID path int true "Player ID"
// @Param files formData file true "Clip files (repeatable)"
// @Success 202 {object} map[string]interface{}
// @Failure 400 {object} respond.ErrorResponse
// @Router /players/{playerID}/highlights [post]
func (h *Handler) UploadHighlights(w http.ResponseWriter, r *http.Request) {
	id, ok := playerID(r)
	if !ok {
		respond.WriteError(w, http.StatusBadRequest, "INVALID_ID", "Player ID must be a positive integer")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		respond.WriteError(w, http.StatusBadRequest, "INVALID_FORM", "Could not parse multipart form")
		return
	}
	headers := r.MultipartForm.File["files"]
	if len(headers) == 0 {
		respond.WriteError(w, http.StatusBadRequest, "NO_FILES", "At least one file is required under the 'files' field")
		return
	}

	files := make([]upload.File, 0, len(headers))
	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			respond.WriteErrorDetail(w, http.StatusBadRequest, "UNREADABLE_FILE",
				"Could not read uploaded file", fh.Filename)
			return
		}
		content, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			respond.WriteErrorDetail(w, http.StatusBadRequest, "UNREADABLE_FILE",
				"Could not read uploaded file", fh.Filename)
			return
		}
		files = append(files, upload.File{Name: fh.Filename, Content: content})
	}

	// Uploads outlive the request.
	batchID, ids := h.uploads.StartBatch(context.WithoutCancel(r.Context()), id, files)

	respond.WriteJSONObject(w, http.StatusAccepted, map[string]interface{}{
		"batch_id":   batchID,
		"upload_ids": ids,
		"pending":    h.uploads.PendingClips(id),
	})
}

// GetUpload returns the state of one upload.
// @Summary Upload state
// @Description Returns one upload item's state and progress.
// @Tags highlights
// @Produce json
// @Param uploadID path string true "Upload ID"
// @Success 200 {object} upload.Item
// @Failure 404 {object} respond.ErrorResponse
// @Router /uploads/{uploadID} [get]
func (h *Handler) GetUpload(w http.ResponseWriter, r *http.Request) {
	item, ok := h.uploads.Snapshot(chi.URLParam(r, "uploadID"))
	if !ok {
		respond.WriteError(w, http.StatusNotFound, "NOT_FOUND", "No upload with that ID")
		return
	}
	respond.WriteJSONObject(w, http.StatusOK, item)
}

// GetUploadBatch returns batch progress or the settled result.
// @Summary Upload batch state
// @Description Returns live item states while the batch is in flight and the aggregate succeeded/failed counts once every file has settled.
// @Tags highlights
// @Produce json
// @Param batchID path string true "Batch ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} respond.ErrorResponse
// @Router /uploads/batch/{batchID} [get]
func (h *Handler) GetUploadBatch(w http.ResponseWriter, r *http.Request) {
	result, items, ok := h.uploads.BatchSnapshot(chi.URLParam(r, "batchID"))
	if !ok {
		respond.WriteError(w, http.StatusNotFound, "NOT_FOUND", "No upload batch with that ID")
		return
	}
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"settled": result != nil,
		"result":  result,
		"items":   items,
	})
}

// RetryUpload relaunches a failed upload.
// @Summary Retry upload
// @Description Moves a failed upload back to uploading and retries with the retained file content.
// @Tags highlights
// @Produce json
// @Param uploadID path string true "Upload ID"
// @Success 202 {object} upload.Item
// @Failure 409 {object} respond.ErrorResponse
// @Router /uploads/{uploadID}/retry [post]
func (h *Handler) RetryUpload(w http.ResponseWriter, r *http.Request) {
	uploadID := chi.URLParam(r, "uploadID")
	if !h.uploads.Retry(context.WithoutCancel(r.Context()), uploadID) {
		respond.WriteError(w, http.StatusConflict, "NOT_RETRYABLE", "Upload is not in a failed state")
		return
	}
	item, _ := h.uploads.Snapshot(uploadID)
	respond.WriteJSONObject(w, http.StatusAccepted, item)
}

type clipRequest struct {
	URL  string `json:"url"`
	Name string `json:"name,omitempty"`
}

// DeleteHighlight removes a hosted clip and drops it from the player's list.
// @Summary Delete best clip
// @Description Deletes the file from the media host and removes the clip from the player's best-clips list.
// @Tags highlights
// @Accept json
// @Produce json
// @Param playerID path int true "Player ID"
// @Param body body handler.clipRequest true "Clip URL"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} respond.ErrorResponse
// @Router /players/{playerID}/highlights [delete]
func (h *Handler) DeleteHighlight(w http.ResponseWriter, r *http.Request) {
	id, ok := playerID(r)
	if !ok {
		respond.WriteError(w, http.StatusBadRequest, "INVALID_ID", "Player ID must be a positive integer")
		return
	}
	var req clipRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.URL == "" {
		respond.WriteError(w, http.StatusBadRequest, "INVALID_BODY", "Body must carry the clip url")
		return
	}

	if err := h.media.Delete(r.Context(), id, req.URL); err != nil {
		h.logger.Warn("media delete failed", "player_id", id, "error", err)
		respond.WriteError(w, http.StatusBadGateway, "MEDIA_FAILED", "Media host rejected the delete")
		return
	}
	if err := h.store.RemoveBestClip(r.Context(), id, req.URL); err != nil && !errors.Is(err, store.ErrNotFound) {
		h.logger.Error("remove clip record failed", "player_id", id, "error", err)
		respond.WriteError(w, http.StatusInternalServerError, "WRITE_FAILED", "Could not update highlights")
		return
	}
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{"deleted": true})
}

// RenameHighlight renames a hosted clip.
// @Summary Rename best clip
// @Description Renames the file on the media host and in the player's best-clips list.
// @Tags highlights
// @Accept json
// @Produce json
// @Param playerID path int true "Player ID"
// @Param body body handler.clipRequest true "Clip URL and new name"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} respond.ErrorResponse
// @Router /players/{playerID}/highlights/rename [post]
func (h *Handler) RenameHighlight(w http.ResponseWriter, r *http.Request) {
	id, ok := playerID(r)
	if !ok {
		respond.WriteError(w, http.StatusBadRequest, "INVALID_ID", "Player ID must be a positive integer")
		return
	}
	var req clipRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.URL == "" || req.Name == "" {
		respond.WriteError(w, http.StatusBadRequest, "INVALID_BODY", "Body must carry the clip url and new name")
		return
	}

	if err := h.media.Rename(r.Context(), id, req.URL, req.Name); err != nil {
		h.logger.Warn("media rename failed", "player_id", id, "error", err)
		respond.WriteError(w, http.StatusBadGateway, "MEDIA_FAILED", "Media host rejected the rename")
		return
	}
	if err := h.store.RenameBestClip(r.Context(), id, req.URL, req.Name); err != nil && !errors.Is(err, store.ErrNotFound) {
		h.logger.Error("rename clip record failed", "player_id", id, "error", err)
		respond.WriteError(w, http.StatusInternalServerError, "WRITE_FAILED", "Could not update highlights")
		return
	}
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{"renamed": true})
}
