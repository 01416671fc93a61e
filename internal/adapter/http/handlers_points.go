package adapthttp

import (
	"log/slog"
	"net/http"
)

const pointsHistoryLimit = 10

func (s *Server) handlePoints(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r)
	total, err := s.points.Total(r.Context(), user.ID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	awards, err := s.points.History(r.Context(), user.ID, pointsHistoryLimit)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"total_points": total, "awards": awards})
}

func (s *Server) handlePointsWeekly(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r)
	res, err := s.points.AwardWeeklyPoints(r.Context(), user.ID)
	if err != nil {
		slog.WarnContext(r.Context(), "weekly points failed", "user_id", user.ID, "error", err)
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
