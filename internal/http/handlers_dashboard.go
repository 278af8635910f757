package http

import (
	"net/http"

	"rateio/internal/log"
)

func (h *Handler) DashboardSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.dashboard.Summary(r.Context())
	if err != nil {
		writeServiceError(w, r, log.OpRead, err)
		return
	}
	writeJSON(w, http.StatusOK, toSummaryResponse(summary))
}
