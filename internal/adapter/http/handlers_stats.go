package adapthttp

import (
	"errors"
	"net/http"
	"time"

	"foodloss/internal/domain"
)

func (s *Server) handleStatsWeekly(w http.ResponseWriter, r *http.Request) {
	ref := time.Now()
	if v := r.URL.Query().Get("date"); v != "" {
		d, err := time.ParseInLocation(domain.DayLayout, v, time.Local)
		if err != nil {
			writeError(w, http.StatusBadRequest, errors.New("date must be YYYY-MM-DD"))
			return
		}
		ref = d
	}

	stats, err := s.stats.Weekly(r.Context(), userFromContext(r).ID, ref)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
