package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/cloudmeet/agent-bot-go/internal/httputil"
	"github.com/cloudmeet/agent-bot-go/internal/service"
)

// OpsHandler is the read-side operational API: inventory counters, the code
// list and the reconciled overview, for dashboards and pull scripts.
type OpsHandler struct {
	inventory *service.InventoryService
	reconcile *service.ReconcileService
	roles     *service.RoleService
	listLimit int
}

func NewOpsHandler(
	inventory *service.InventoryService,
	reconcile *service.ReconcileService,
	roles *service.RoleService,
	listLimit int,
) *OpsHandler {
	return &OpsHandler{
		inventory: inventory,
		reconcile: reconcile,
		roles:     roles,
		listLimit: listLimit,
	}
}

func (h *OpsHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/stock", h.Stock)
	r.Get("/codes", h.ListCodes)
	r.Get("/overview", h.Overview)
	r.Get("/admins", h.ListAdmins)

	return r
}

func (h *OpsHandler) Stock(w http.ResponseWriter, r *http.Request) {
	stats, err := h.inventory.Stats(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("ops stock stats failed")
		httputil.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (h *OpsHandler) ListCodes(w http.ResponseWriter, r *http.Request) {
	rows, err := h.inventory.ListCodes(r.Context(), h.listLimit)
	if err != nil {
		log.Error().Err(err).Msg("ops code listing failed")
		httputil.WriteError(w, err)
		return
	}

	codes := make([]map[string]any, 0, len(rows))
	for _, row := range rows {
		codes = append(codes, formatCode(row))
	}
	writeJSON(w, http.StatusOK, map[string]any{"codes": codes})
}

// Overview serves the root-scope reconciliation: every assigned code merged
// with the remote live status.
func (h *OpsHandler) Overview(w http.ResponseWriter, r *http.Request) {
	overview, err := h.reconcile.Overview(r.Context(), -1)
	if err != nil {
		log.Error().Err(err).Msg("ops overview failed")
		httputil.WriteError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"inUse":               formatReports(overview.InUse),
		"idle":                formatReports(overview.Idle),
		"remoteIdleUnclaimed": overview.RemoteIdleUnclaimed,
		"degraded":            overview.Degraded,
	})
}

func (h *OpsHandler) ListAdmins(w http.ResponseWriter, r *http.Request) {
	admins, err := h.roles.ListAdmins(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("ops admin listing failed")
		httputil.WriteError(w, err)
		return
	}

	out := make([]map[string]any, 0, len(admins))
	for _, a := range admins {
		out = append(out, map[string]any{
			"telegramId": a.TelegramID,
			"username":   a.Username,
			"firstName":  a.FirstName,
			"firstSeen":  a.FirstSeen.Format(time.RFC3339),
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"admins": out})
}

func formatReports(reports []service.CodeReport) []map[string]any {
	out := make([]map[string]any, 0, len(reports))
	for _, rep := range reports {
		entry := formatCode(rep.Code)
		entry["state"] = rep.State
		entry["openEnded"] = rep.OpenEnded
		if rep.Room != "" {
			entry["room"] = rep.Room
		}
		if rep.Remaining > 0 {
			entry["remainingSeconds"] = int64(rep.Remaining.Seconds())
		}
		if rep.Overdue > 0 {
			entry["overdueSeconds"] = int64(rep.Overdue.Seconds())
		}
		out = append(out, entry)
	}
	return out
}
