package handler

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/vantagemgmt/portal-data/internal/api/respond"
)

type loginRequest struct {
	Email string `json:"email"`
	Key   string `json:"key,omitempty"`
}

// SessionLogin records an identity and returns its session key.
// @Summary Log in
// @Description Stores the identity email under a session key (generated when the client does not supply one) in both identity tiers and returns the key.
// @Tags session
// @Accept json
// @Produce json
// @Param body body handler.loginRequest true "Identity email and optional existing key"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} respond.ErrorResponse
// @Router /session/login [post]
func (h *Handler) SessionLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteError(w, http.StatusBadRequest, "INVALID_BODY", "Request body must be JSON")
		return
	}
	email := strings.TrimSpace(strings.ToLower(req.Email))
	if email == "" || !strings.Contains(email, "@") {
		respond.WriteError(w, http.StatusBadRequest, "INVALID_EMAIL", "A valid email is required")
		return
	}
	key := strings.TrimSpace(req.Key)
	if key == "" {
		key = uuid.NewString()
	}

	if err := h.sessions.Login(r.Context(), key, email); err != nil {
		// The volatile tier already holds the login; the durable write will
		// converge on the next resolve. Report success with a warning.
		h.logger.Warn("durable identity write failed at login", "error", err)
	}
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"key":   key,
		"email": email,
	})
}

// SessionResolve returns the identity for the request's session key.
// @Summary Resolve session
// @Description Resolves the X-Session-Key header to an identity email; durable tier authoritative with volatile fallback and writeback.
// @Tags session
// @Produce json
// @Param X-Session-Key header string true "Session key"
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} respond.ErrorResponse
// @Router /session [get]
func (h *Handler) SessionResolve(w http.ResponseWriter, r *http.Request) {
	key := r.Header.Get("X-Session-Key")
	email, ok := h.sessions.Resolve(r.Context(), key)
	if !ok {
		respond.WriteError(w, http.StatusUnauthorized, "NO_SESSION", "No identity for this session key")
		return
	}
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"email": email,
	})
}

// SessionLogout removes the identity for the request's session key.
// @Summary Log out
// @Description Removes the identity from both tiers.
// @Tags session
// @Produce json
// @Param X-Session-Key header string true "Session key"
// @Success 200 {object} map[string]interface{}
// @Router /session/logout [post]
func (h *Handler) SessionLogout(w http.ResponseWriter, r *http.Request) {
	key := r.Header.Get("X-Session-Key")
	if err := h.sessions.Logout(r.Context(), key); err != nil {
		h.logger.Warn("durable identity delete failed at logout", "error", err)
	}
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"logged_out": true,
	})
}
