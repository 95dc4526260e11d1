package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/vantagemgmt/portal-data/internal/api/respond"
	"github.com/vantagemgmt/portal-data/internal/cache"
	"github.com/vantagemgmt/portal-data/internal/model"
	"github.com/vantagemgmt/portal-data/internal/store"
)

// GetPrograms returns a player's training programs with resolved weeks.
// @Summary Training programs
// @Description Returns the player's programs with weekly schedules resolved onto calendar dates and session colors.
// @Tags records
// @Produce json
// @Param playerID path int true "Player ID"
// @Success 200 {array} handler.ProgramPayload
// @Failure 400 {object} respond.ErrorResponse
// @Router /players/{playerID}/programs [get]
func (h *Handler) GetPrograms(w http.ResponseWriter, r *http.Request) {
	id, ok := playerID(r)
	if !ok {
		respond.WriteError(w, http.StatusBadRequest, "INVALID_ID", "Player ID must be a positive integer")
		return
	}
	h.cachedList(w, r, fmt.Sprintf("programs:%d", id), cache.TTLRecords, func() (any, error) {
		programs, err := h.store.ProgramsByPlayer(r.Context(), id)
		if err != nil {
			return nil, err
		}
		return resolvePrograms(programs), nil
	})
}

// GetInvoices returns a player's invoices with remaining balances.
// @Summary Invoices
// @Description Returns the player's invoices, newest due date first, with the derived remaining balance per invoice.
// @Tags records
// @Produce json
// @Param playerID path int true "Player ID"
// @Success 200 {array} handler.InvoicePayload
// @Failure 400 {object} respond.ErrorResponse
// @Router /players/{playerID}/invoices [get]
func (h *Handler) GetInvoices(w http.ResponseWriter, r *http.Request) {
	id, ok := playerID(r)
	if !ok {
		respond.WriteError(w, http.StatusBadRequest, "INVALID_ID", "Player ID must be a positive integer")
		return
	}
	h.cachedList(w, r, fmt.Sprintf("invoices:%d", id), cache.TTLRecords, func() (any, error) {
		invoices, err := h.store.InvoicesByPlayer(r.Context(), id)
		if err != nil {
			return nil, err
		}
		out := make([]InvoicePayload, 0, len(invoices))
		for _, inv := range invoices {
			out = append(out, InvoicePayload{Invoice: inv, Remaining: inv.Remaining()})
		}
		return out, nil
	})
}

// GetUpdates returns a player's informational updates.
// @Summary Updates
// @Description Returns the player's updates, newest first.
// @Tags records
// @Produce json
// @Param playerID path int true "Player ID"
// @Success 200 {array} model.Update
// @Failure 400 {object} respond.ErrorResponse
// @Router /players/{playerID}/updates [get]
func (h *Handler) GetUpdates(w http.ResponseWriter, r *http.Request) {
	id, ok := playerID(r)
	if !ok {
		respond.WriteError(w, http.StatusBadRequest, "INVALID_ID", "Player ID must be a positive integer")
		return
	}
	h.cachedList(w, r, fmt.Sprintf("updates:%d", id), cache.TTLRecords, func() (any, error) {
		return h.store.UpdatesByPlayer(r.Context(), id)
	})
}

// GetTests returns a player's test results.
// @Summary Test results
// @Description Returns the player's test results, newest first.
// @Tags records
// @Produce json
// @Param playerID path int true "Player ID"
// @Success 200 {array} model.TestResult
// @Failure 400 {object} respond.ErrorResponse
// @Router /players/{playerID}/tests [get]
func (h *Handler) GetTests(w http.ResponseWriter, r *http.Request) {
	id, ok := playerID(r)
	if !ok {
		respond.WriteError(w, http.StatusBadRequest, "INVALID_ID", "Player ID must be a positive integer")
		return
	}
	h.cachedList(w, r, fmt.Sprintf("tests:%d", id), cache.TTLRecords, func() (any, error) {
		return h.store.TestsByPlayer(r.Context(), id)
	})
}

// CreateTest stores a new draft test result.
// @Summary Create test result
// @Description Stores a new test result in draft status.
// @Tags records
// @Accept json
// @Produce json
// @Param playerID path int true "Player ID"
// @Param body body model.TestResult true "Test result"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} respond.ErrorResponse
// @Router /players/{playerID}/tests [post]
func (h *Handler) CreateTest(w http.ResponseWriter, r *http.Request) {
	id, ok := playerID(r)
	if !ok {
		respond.WriteError(w, http.StatusBadRequest, "INVALID_ID", "Player ID must be a positive integer")
		return
	}

	var t model.TestResult
	if err := json.NewDecoder(r.Body).Decode(&t); err != nil {
		respond.WriteError(w, http.StatusBadRequest, "INVALID_BODY", "Request body must be a JSON test result")
		return
	}
	if t.TestName == "" {
		respond.WriteError(w, http.StatusBadRequest, "MISSING_NAME", "test_name is required")
		return
	}
	t.PlayerID = id
	t.Status = model.TestDraft

	testID, err := h.store.InsertTestResult(r.Context(), t)
	if err != nil {
		h.logger.Error("insert test result failed", "player_id", id, "error", err)
		respond.WriteError(w, http.StatusInternalServerError, "WRITE_FAILED", "Could not store test result")
		return
	}
	respond.WriteJSONObject(w, http.StatusCreated, map[string]interface{}{
		"id":     testID,
		"status": model.TestDraft,
	})
}

// SubmitTest moves a draft test result to submitted.
// @Summary Submit test result
// @Description Moves a draft test result to submitted status.
// @Tags records
// @Produce json
// @Param testID path int true "Test result ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} respond.ErrorResponse
// @Router /tests/{testID}/submit [post]
func (h *Handler) SubmitTest(w http.ResponseWriter, r *http.Request) {
	testID, err := strconv.ParseInt(chi.URLParam(r, "testID"), 10, 64)
	if err != nil || testID <= 0 {
		respond.WriteError(w, http.StatusBadRequest, "INVALID_ID", "Test ID must be a positive integer")
		return
	}

	err = h.store.SubmitTestResult(r.Context(), testID)
	if errors.Is(err, store.ErrNotFound) {
		respond.WriteError(w, http.StatusNotFound, "NOT_FOUND", "No draft test result with that ID")
		return
	}
	if err != nil {
		h.logger.Error("submit test result failed", "test_id", testID, "error", err)
		respond.WriteError(w, http.StatusInternalServerError, "WRITE_FAILED", "Could not submit test result")
		return
	}
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"id":     testID,
		"status": model.TestSubmitted,
	})
}

// GetConcepts returns all tactical concepts.
// @Summary Tactical concepts
// @Description Returns the shared tactical scheme records.
// @Tags records
// @Produce json
// @Success 200 {array} model.Concept
// @Router /concepts [get]
func (h *Handler) GetConcepts(w http.ResponseWriter, r *http.Request) {
	h.cachedList(w, r, "concepts:all", cache.TTLConcepts, func() (any, error) {
		return h.store.Concepts(r.Context())
	})
}

// cachedList serves a cached JSON list endpoint: ETag check, fetch on miss,
// store, respond.
func (h *Handler) cachedList(w http.ResponseWriter, r *http.Request, key string, ttl time.Duration, fetch func() (any, error)) {
	if data, etag, ok := h.cache.Get(key); ok {
		if cache.CheckETagMatch(r.Header.Get("If-None-Match"), etag) {
			respond.WriteNotModified(w, etag)
			return
		}
		respond.WriteJSON(w, data, etag, ttl, true)
		return
	}

	v, err := fetch()
	if err != nil {
		h.logger.Error("fetch records failed", "key", key, "error", err)
		respond.WriteError(w, http.StatusInternalServerError, "FETCH_FAILED", "Could not load records")
		return
	}
	data, err := json.Marshal(v)
	if err != nil {
		respond.WriteError(w, http.StatusInternalServerError, "ENCODE_FAILED", "Could not encode records")
		return
	}
	etag := h.cache.Set(key, data, ttl)
	respond.WriteJSON(w, data, etag, ttl, false)
}
