package handlers

import (
	"net/http"

	"github.com/rs/zerolog"

	"github.com/Shiro-Vs/EVA-sub001/internal/api/middleware"
	"github.com/Shiro-Vs/EVA-sub001/internal/cache"
	"github.com/Shiro-Vs/EVA-sub001/internal/dashboard"
	"github.com/Shiro-Vs/EVA-sub001/internal/tips"
)

// DashboardHandler serves the composed snapshot.
type DashboardHandler struct {
	engine *dashboard.Engine
	log    zerolog.Logger
}

// NewDashboardHandler creates a new dashboard handler.
func NewDashboardHandler(engine *dashboard.Engine, log zerolog.Logger) *DashboardHandler {
	return &DashboardHandler{engine: engine, log: log}
}

// GetDashboard handles GET /api/dashboard. It always answers with the latest
// snapshot plus the loading flag; while loading, the snapshot is the empty
// value rather than an error.
func (h *DashboardHandler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"loading":   h.engine.Loading(),
		"dashboard": h.engine.Snapshot(),
	})
}

// TipsHandler generates a saving tip from the current snapshot.
type TipsHandler struct {
	engine   *dashboard.Engine
	provider tips.Provider
	log      zerolog.Logger
}

// NewTipsHandler creates a new tips handler.
func NewTipsHandler(engine *dashboard.Engine, provider tips.Provider, log zerolog.Logger) *TipsHandler {
	return &TipsHandler{engine: engine, provider: provider, log: log}
}

// GetTip handles GET /api/tips.
func (h *TipsHandler) GetTip(w http.ResponseWriter, r *http.Request) {
	if h.engine.Loading() {
		middleware.WriteError(w, http.StatusServiceUnavailable, "Dashboard still loading")
		return
	}

	tip, err := h.provider.Generate(r.Context(), h.engine.Snapshot())
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to generate tip")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to generate tip")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, tip)
}

// ReferenceHandler serves the cached account/category reference lists used by
// forms. It reads only from the injected cache; populating and invalidating
// the cache is the owner's job.
type ReferenceHandler struct {
	ref *cache.Reference
	log zerolog.Logger
}

// NewReferenceHandler creates a new reference data handler.
func NewReferenceHandler(ref *cache.Reference, log zerolog.Logger) *ReferenceHandler {
	return &ReferenceHandler{ref: ref, log: log}
}

// GetReference handles GET /api/reference.
func (h *ReferenceHandler) GetReference(w http.ResponseWriter, r *http.Request) {
	accounts, accountsOK := h.ref.Accounts()
	categories, categoriesOK := h.ref.Categories()

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"accounts":   accounts,
		"categories": categories,
		"cached":     accountsOK && categoriesOK,
	})
}
