package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/vantagemgmt/portal-data/internal/api/respond"
	"github.com/vantagemgmt/portal-data/internal/cache"
	"github.com/vantagemgmt/portal-data/internal/model"
	"github.com/vantagemgmt/portal-data/internal/store"
)

// scoutEmail resolves the requesting scout's identity from the session key
// header. A missing or unknown key is an authentication absence, not an
// error condition.
func (h *Handler) scoutEmail(r *http.Request) (string, bool) {
	key := r.Header.Get("X-Session-Key")
	if key == "" {
		return "", false
	}
	return h.sessions.Resolve(r.Context(), key)
}

// GetScoutingDrafts returns the requesting scout's unsubmitted drafts.
// @Summary Scouting drafts
// @Description Returns the authenticated scout's drafts, most recently edited first.
// @Tags scouting
// @Produce json
// @Param X-Session-Key header string true "Session key"
// @Success 200 {array} model.ScoutingDraft
// @Failure 401 {object} respond.ErrorResponse
// @Router /scouting/drafts [get]
func (h *Handler) GetScoutingDrafts(w http.ResponseWriter, r *http.Request) {
	email, ok := h.scoutEmail(r)
	if !ok {
		respond.WriteError(w, http.StatusUnauthorized, "NO_SESSION", "Sign in to view drafts")
		return
	}
	h.cachedList(w, r, fmt.Sprintf("scouting:drafts:%s", email), cache.TTLRecords, func() (any, error) {
		return h.store.ScoutingDraftsByScout(r.Context(), email)
	})
}

// SaveScoutingDraft inserts or updates a draft.
// @Summary Save scouting draft
// @Description Creates a new draft (no ID) or updates an existing one (ID set) for the authenticated scout.
// @Tags scouting
// @Accept json
// @Produce json
// @Param X-Session-Key header string true "Session key"
// @Param body body model.ScoutingDraft true "Draft"
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} respond.ErrorResponse
// @Router /scouting/drafts [post]
func (h *Handler) SaveScoutingDraft(w http.ResponseWriter, r *http.Request) {
	email, ok := h.scoutEmail(r)
	if !ok {
		respond.WriteError(w, http.StatusUnauthorized, "NO_SESSION", "Sign in to save drafts")
		return
	}

	var d model.ScoutingDraft
	if err := json.NewDecoder(r.Body).Decode(&d); err != nil {
		respond.WriteError(w, http.StatusBadRequest, "INVALID_BODY", "Request body must be a JSON draft")
		return
	}
	if d.PlayerName == "" {
		respond.WriteError(w, http.StatusBadRequest, "MISSING_PLAYER", "player_name is required")
		return
	}
	d.ScoutEmail = email

	// Updates target an existing row; the row must belong to the requesting
	// scout. Foreign drafts look like missing drafts.
	if d.ID != 0 {
		existing, err := h.store.ScoutingDraftByID(r.Context(), d.ID)
		if errors.Is(err, store.ErrNotFound) {
			respond.WriteError(w, http.StatusNotFound, "NOT_FOUND", "No draft with that ID")
			return
		}
		if err != nil {
			h.logger.Error("fetch scouting draft failed", "draft_id", d.ID, "error", err)
			respond.WriteError(w, http.StatusInternalServerError, "FETCH_FAILED", "Could not load draft")
			return
		}
		if existing.ScoutEmail != email {
			respond.WriteError(w, http.StatusNotFound, "NOT_FOUND", "No draft with that ID")
			return
		}
	}

	id, err := h.store.SaveScoutingDraft(r.Context(), d)
	if errors.Is(err, store.ErrNotFound) {
		respond.WriteError(w, http.StatusNotFound, "NOT_FOUND", "No draft with that ID")
		return
	}
	if err != nil {
		h.logger.Error("save scouting draft failed", "scout", email, "error", err)
		respond.WriteError(w, http.StatusInternalServerError, "WRITE_FAILED", "Could not save draft")
		return
	}
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{"id": id})
}

// DeleteScoutingDraft discards a draft.
// @Summary Delete scouting draft
// @Description Deletes a draft without submitting it. Scouts can only delete their own drafts.
// @Tags scouting
// @Produce json
// @Param X-Session-Key header string true "Session key"
// @Param draftID path int true "Draft ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} respond.ErrorResponse
// @Router /scouting/drafts/{draftID} [delete]
func (h *Handler) DeleteScoutingDraft(w http.ResponseWriter, r *http.Request) {
	email, draftID, ok := h.ownedDraft(w, r)
	if !ok {
		return
	}

	if err := h.store.DeleteScoutingDraft(r.Context(), draftID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			respond.WriteError(w, http.StatusNotFound, "NOT_FOUND", "No draft with that ID")
			return
		}
		h.logger.Error("delete scouting draft failed", "scout", email, "draft_id", draftID, "error", err)
		respond.WriteError(w, http.StatusInternalServerError, "WRITE_FAILED", "Could not delete draft")
		return
	}
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{"deleted": true})
}

// SubmitScoutingDraft promotes a draft to a submitted report.
// @Summary Submit scouting draft
// @Description Copies the draft into scouting reports and removes the draft, atomically.
// @Tags scouting
// @Produce json
// @Param X-Session-Key header string true "Session key"
// @Param draftID path int true "Draft ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} respond.ErrorResponse
// @Router /scouting/drafts/{draftID}/submit [post]
func (h *Handler) SubmitScoutingDraft(w http.ResponseWriter, r *http.Request) {
	email, draftID, ok := h.ownedDraft(w, r)
	if !ok {
		return
	}

	reportID, err := h.store.SubmitScoutingDraft(r.Context(), draftID)
	if errors.Is(err, store.ErrNotFound) {
		respond.WriteError(w, http.StatusNotFound, "NOT_FOUND", "No draft with that ID")
		return
	}
	if err != nil {
		h.logger.Error("submit scouting draft failed", "scout", email, "draft_id", draftID, "error", err)
		respond.WriteError(w, http.StatusInternalServerError, "WRITE_FAILED", "Could not submit draft")
		return
	}
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"report_id": reportID,
		"draft_id":  draftID,
	})
}

// GetScoutMessages returns the scout's message thread.
// @Summary Scout messages
// @Description Returns the authenticated scout's message thread, oldest first.
// @Tags scouting
// @Produce json
// @Param X-Session-Key header string true "Session key"
// @Success 200 {array} model.ScoutMessage
// @Failure 401 {object} respond.ErrorResponse
// @Router /scouting/messages [get]
func (h *Handler) GetScoutMessages(w http.ResponseWriter, r *http.Request) {
	email, ok := h.scoutEmail(r)
	if !ok {
		respond.WriteError(w, http.StatusUnauthorized, "NO_SESSION", "Sign in to view messages")
		return
	}
	h.cachedList(w, r, fmt.Sprintf("scouting:messages:%s", email), cache.TTLRecords, func() (any, error) {
		return h.store.ScoutMessages(r.Context(), email)
	})
}

// SendScoutMessage appends a message to the scout's thread.
// @Summary Send scout message
// @Description Appends a message from the authenticated scout to their thread.
// @Tags scouting
// @Accept json
// @Produce json
// @Param X-Session-Key header string true "Session key"
// @Param body body model.ScoutMessage true "Message body"
// @Success 201 {object} map[string]interface{}
// @Failure 401 {object} respond.ErrorResponse
// @Router /scouting/messages [post]
func (h *Handler) SendScoutMessage(w http.ResponseWriter, r *http.Request) {
	email, ok := h.scoutEmail(r)
	if !ok {
		respond.WriteError(w, http.StatusUnauthorized, "NO_SESSION", "Sign in to send messages")
		return
	}

	var m model.ScoutMessage
	if err := json.NewDecoder(r.Body).Decode(&m); err != nil || m.Body == "" {
		respond.WriteError(w, http.StatusBadRequest, "INVALID_BODY", "Message body is required")
		return
	}
	m.ScoutEmail = email
	m.Sender = email

	id, err := h.store.InsertScoutMessage(r.Context(), m)
	if err != nil {
		h.logger.Error("insert scout message failed", "scout", email, "error", err)
		respond.WriteError(w, http.StatusInternalServerError, "WRITE_FAILED", "Could not send message")
		return
	}
	respond.WriteJSONObject(w, http.StatusCreated, map[string]interface{}{"id": id})
}

// ownedDraft authenticates the request and checks the draft belongs to the
// requesting scout. Writes the error response itself on failure.
func (h *Handler) ownedDraft(w http.ResponseWriter, r *http.Request) (string, int64, bool) {
	email, ok := h.scoutEmail(r)
	if !ok {
		respond.WriteError(w, http.StatusUnauthorized, "NO_SESSION", "Sign in first")
		return "", 0, false
	}
	draftID, err := strconv.ParseInt(chi.URLParam(r, "draftID"), 10, 64)
	if err != nil || draftID <= 0 {
		respond.WriteError(w, http.StatusBadRequest, "INVALID_ID", "Draft ID must be a positive integer")
		return "", 0, false
	}

	d, err := h.store.ScoutingDraftByID(r.Context(), draftID)
	if errors.Is(err, store.ErrNotFound) {
		respond.WriteError(w, http.StatusNotFound, "NOT_FOUND", "No draft with that ID")
		return "", 0, false
	}
	if err != nil {
		h.logger.Error("fetch scouting draft failed", "draft_id", draftID, "error", err)
		respond.WriteError(w, http.StatusInternalServerError, "FETCH_FAILED", "Could not load draft")
		return "", 0, false
	}
	if d.ScoutEmail != email {
		respond.WriteError(w, http.StatusNotFound, "NOT_FOUND", "No draft with that ID")
		return "", 0, false
	}
	return email, draftID, true
}
