package handler

import (
	"net/http"
	"time"

	"github.com/edvin/cronhook/internal/api/response"
	"github.com/edvin/cronhook/internal/core"
)

type Stats struct {
	svc *core.LogService
	now func() time.Time
}

func NewStats(svc *core.LogService) *Stats {
	return &Stats{svc: svc, now: time.Now}
}

// Cron godoc
//
//	@Summary		Execution statistics
//	@Description	Daily success and failure counts across all jobs. Defaults to the 31 days ending yesterday (UTC).
//	@Tags			Statistics
//	@Param			start query string false "First day, YYYY-MM-DD"
//	@Param			end query string false "Last day, YYYY-MM-DD"
//	@Success		200 {array} model.DailySummary
//	@Failure		400 {object} response.ErrorResponse
//	@Router			/stats/cron [get]
func (h *Stats) Cron(w http.ResponseWriter, r *http.Request) {
	start, end := core.DefaultStatisticsRange(h.now())
	if v := r.URL.Query().Get("start"); v != "" {
		start = v
	}
	if v := r.URL.Query().Get("end"); v != "" {
		end = v
	}

	summaries, err := h.svc.Statistics(r.Context(), start, end)
	if err != nil {
		response.WriteServiceError(w, r, err)
		return
	}
	response.WriteJSON(w, http.StatusOK, summaries)
}
