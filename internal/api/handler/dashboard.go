package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/vantagemgmt/portal-data/internal/api/respond"
	"github.com/vantagemgmt/portal-data/internal/cache"
	"github.com/vantagemgmt/portal-data/internal/chart"
	"github.com/vantagemgmt/portal-data/internal/enrich"
	"github.com/vantagemgmt/portal-data/internal/metric"
	"github.com/vantagemgmt/portal-data/internal/model"
	"github.com/vantagemgmt/portal-data/internal/normalize"
	"github.com/vantagemgmt/portal-data/internal/schedule"
	"github.com/vantagemgmt/portal-data/internal/store"
)

// DashboardPayload is the complete player dashboard view-model.
type DashboardPayload struct {
	Player   model.Player       `json:"player"`
	Analyses []model.Analysis   `json:"analyses"`
	Metric   metric.Key         `json:"metric"`
	Chart    chart.Data         `json:"chart"`
	Programs []ProgramPayload   `json:"programs"`
	Invoices []InvoicePayload   `json:"invoices"`
	Tests    []model.TestResult `json:"tests"`
	Updates  []model.Update     `json:"updates"`
}

// ProgramPayload is a training program with its weeks resolved onto calendar
// dates and session colors.
type ProgramPayload struct {
	ID            int64                       `json:"id"`
	Name          string                      `json:"name"`
	Weeks         []model.WeekSchedule        `json:"weekly_schedules"`
	ResolvedWeeks [][]schedule.ResolvedDay    `json:"resolved_weeks"`
	Sessions      map[string][]model.Exercise `json:"sessions,omitempty"`
}

// InvoicePayload is an invoice with its derived remaining balance.
type InvoicePayload struct {
	model.Invoice
	Remaining float64 `json:"remaining"`
}

// GetDashboard assembles the full player dashboard.
// @Summary Player dashboard
// @Description Returns the assembled dashboard view-model: normalized player, enriched analyses, chart for the selected metric (auto-switched to the first metric with data when the requested one has none), resolved programs, invoices, tests, and updates.
// @Tags dashboard
// @Produce json
// @Param playerID path int true "Player ID"
// @Param metric query string false "Metric key (default r90)"
// @Success 200 {object} handler.DashboardPayload
// @Failure 400 {object} respond.ErrorResponse
// @Failure 404 {object} respond.ErrorResponse
// @Router /players/{playerID}/dashboard [get]
func (h *Handler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	id, ok := playerID(r)
	if !ok {
		respond.WriteError(w, http.StatusBadRequest, "INVALID_ID", "Player ID must be a positive integer")
		return
	}

	requested := metric.Key(r.URL.Query().Get("metric"))
	if requested == "" {
		requested = metric.R90
	}
	if _, found := metric.Lookup(requested); !found {
		respond.WriteError(w, http.StatusBadRequest, "INVALID_METRIC",
			fmt.Sprintf("Unknown metric %q", requested))
		return
	}

	// Pending uploads make the payload client-specific; skip the shared
	// cache while any are in flight for this player.
	pending := h.uploads.PendingClips(id)
	cacheKey := fmt.Sprintf("dashboard:%d:%s", id, requested)
	if len(pending) == 0 {
		if data, etag, ok := h.cache.Get(cacheKey); ok {
			if cache.CheckETagMatch(r.Header.Get("If-None-Match"), etag) {
				respond.WriteNotModified(w, etag)
				return
			}
			respond.WriteJSON(w, data, etag, cache.TTLDashboard, true)
			return
		}
	}

	ctx := r.Context()
	raw, err := h.store.PlayerByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		respond.WriteError(w, http.StatusNotFound, "NOT_FOUND", "Player not found")
		return
	}
	if err != nil {
		h.logger.Error("fetch player failed", "player_id", id, "error", err)
		respond.WriteError(w, http.StatusInternalServerError, "FETCH_FAILED", "Could not load player")
		return
	}

	player := normalize.Player(raw)
	if len(pending) > 0 {
		local := model.Highlights{BestClips: pending}
		player.Highlights = normalize.MergeHighlights(local, player.Highlights)
	}

	analyses, err := h.store.AnalysesByPlayer(ctx, id)
	if err != nil {
		// Degrade to an empty analysis list rather than failing the view.
		h.logger.Warn("fetch analyses failed", "player_id", id, "error", err)
		analyses = nil
	}
	enriched := enrich.Analyses(ctx, h.store, analyses, h.logger)

	resolved := metric.FirstWithData(enriched, requested)
	chartData, _ := chart.Build(enriched, resolved)

	payload := DashboardPayload{
		Player:   player,
		Analyses: enriched,
		Metric:   resolved,
		Chart:    chartData,
		Programs: h.programPayloads(r, id),
		Invoices: h.invoicePayloads(r, id),
		Tests:    h.testList(r, id),
		Updates:  h.updateList(r, id),
	}

	data, err := json.Marshal(payload)
	if err != nil {
		respond.WriteError(w, http.StatusInternalServerError, "ENCODE_FAILED", "Could not encode dashboard")
		return
	}

	if len(pending) > 0 {
		respond.WriteJSONObject(w, http.StatusOK, payload)
		return
	}
	etag := h.cache.Set(cacheKey, data, cache.TTLDashboard)
	respond.WriteJSON(w, data, etag, cache.TTLDashboard, false)
}

// GetChart returns chart data for one metric.
// @Summary Performance chart
// @Description Returns windowed chart data for the requested metric, auto-switched to the first metric with data when the requested one has none.
// @Tags dashboard
// @Produce json
// @Param playerID path int true "Player ID"
// @Param metric query string false "Metric key (default r90)"
// @Success 200 {object} chart.Data
// @Failure 400 {object} respond.ErrorResponse
// @Router /players/{playerID}/chart [get]
func (h *Handler) GetChart(w http.ResponseWriter, r *http.Request) {
	id, ok := playerID(r)
	if !ok {
		respond.WriteError(w, http.StatusBadRequest, "INVALID_ID", "Player ID must be a positive integer")
		return
	}

	requested := metric.Key(r.URL.Query().Get("metric"))
	if requested == "" {
		requested = metric.R90
	}
	if _, found := metric.Lookup(requested); !found {
		respond.WriteError(w, http.StatusBadRequest, "INVALID_METRIC",
			fmt.Sprintf("Unknown metric %q", requested))
		return
	}

	cacheKey := fmt.Sprintf("dashboard:%d:chart:%s", id, requested)
	if data, etag, ok := h.cache.Get(cacheKey); ok {
		if cache.CheckETagMatch(r.Header.Get("If-None-Match"), etag) {
			respond.WriteNotModified(w, etag)
			return
		}
		respond.WriteJSON(w, data, etag, cache.TTLDashboard, true)
		return
	}

	ctx := r.Context()
	analyses, err := h.store.AnalysesByPlayer(ctx, id)
	if err != nil {
		h.logger.Error("fetch analyses failed", "player_id", id, "error", err)
		respond.WriteError(w, http.StatusInternalServerError, "FETCH_FAILED", "Could not load analyses")
		return
	}
	enriched := enrich.Analyses(ctx, h.store, analyses, h.logger)

	resolved := metric.FirstWithData(enriched, requested)
	chartData, _ := chart.Build(enriched, resolved)

	data, err := json.Marshal(chartData)
	if err != nil {
		respond.WriteError(w, http.StatusInternalServerError, "ENCODE_FAILED", "Could not encode chart")
		return
	}
	etag := h.cache.Set(cacheKey, data, cache.TTLDashboard)
	respond.WriteJSON(w, data, etag, cache.TTLDashboard, false)
}

// --------------------------------------------------------------------------
// Degrading sub-fetches: a failed secondary record set yields an empty list
// and a warning, never a failed dashboard.
// --------------------------------------------------------------------------

func (h *Handler) programPayloads(r *http.Request, id int64) []ProgramPayload {
	programs, err := h.store.ProgramsByPlayer(r.Context(), id)
	if err != nil {
		h.logger.Warn("fetch programs failed", "player_id", id, "error", err)
		return []ProgramPayload{}
	}
	return resolvePrograms(programs)
}

func resolvePrograms(programs []model.Program) []ProgramPayload {
	out := make([]ProgramPayload, 0, len(programs))
	for _, p := range programs {
		pp := ProgramPayload{
			ID:       p.ID,
			Name:     p.Name,
			Weeks:    p.Weeks,
			Sessions: p.Sessions,
		}
		pp.ResolvedWeeks = make([][]schedule.ResolvedDay, len(p.Weeks))
		for i, week := range p.Weeks {
			pp.ResolvedWeeks[i] = schedule.ResolveWeek(week)
		}
		out = append(out, pp)
	}
	return out
}

func (h *Handler) invoicePayloads(r *http.Request, id int64) []InvoicePayload {
	invoices, err := h.store.InvoicesByPlayer(r.Context(), id)
	if err != nil {
		h.logger.Warn("fetch invoices failed", "player_id", id, "error", err)
		return []InvoicePayload{}
	}
	out := make([]InvoicePayload, 0, len(invoices))
	for _, inv := range invoices {
		out = append(out, InvoicePayload{Invoice: inv, Remaining: inv.Remaining()})
	}
	return out
}

func (h *Handler) testList(r *http.Request, id int64) []model.TestResult {
	tests, err := h.store.TestsByPlayer(r.Context(), id)
	if err != nil {
		h.logger.Warn("fetch tests failed", "player_id", id, "error", err)
		return []model.TestResult{}
	}
	return tests
}

func (h *Handler) updateList(r *http.Request, id int64) []model.Update {
	updates, err := h.store.UpdatesByPlayer(r.Context(), id)
	if err != nil {
		h.logger.Warn("fetch updates failed", "player_id", id, "error", err)
		return []model.Update{}
	}
	return updates
}
