package handler

import (
	"net/http"
	"time"

	"github.com/cloudmeet/agent-bot-go/internal/httputil"
	"github.com/cloudmeet/agent-bot-go/internal/model"
)

func writeJSON(w http.ResponseWriter, status int, data any) {
	httputil.WriteJSON(w, status, data)
}

func formatTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.Format(time.RFC3339)
}

func formatCode(row model.AuthCode) map[string]any {
	out := map[string]any{
		"code":       row.Code,
		"status":     row.Status,
		"note":       row.Note,
		"addedAt":    row.AddedAt.Format(time.RFC3339),
		"assignedAt": formatTime(row.AssignedAt),
	}
	if row.HolderKind != nil {
		out["holderKind"] = *row.HolderKind
	}
	if row.AssignedTo != nil {
		out["assignedTo"] = *row.AssignedTo
	}
	return out
}
