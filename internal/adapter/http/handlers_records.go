package adapthttp

import (
	"errors"
	"net/http"
	"strconv"
)

const maxRecentRecords = 100

func (s *Server) handleReasons(w http.ResponseWriter, r *http.Request) {
	reasons, err := s.waste.Reasons(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": reasons})
}

func (s *Server) handleRecordCreate(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ItemName    string   `json:"item_name"`
		WeightGrams *float64 `json:"weight_grams"`
		ReasonText  string   `json:"reason_text"`
	}
	if err := parseJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if body.WeightGrams == nil {
		writeError(w, http.StatusBadRequest, errors.New("weight_grams is required"))
		return
	}

	user := userFromContext(r)
	id, err := s.waste.RecordLoss(r.Context(), user.ID, body.ItemName, *body.WeightGrams, body.ReasonText)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"record_id": id})
}

func (s *Server) handleRecordsRecent(w http.ResponseWriter, r *http.Request) {
	limit := min(intQuery(r, "limit", 20), maxRecentRecords)
	items, err := s.waste.ListRecent(r.Context(), userFromContext(r).ID, limit)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

func (s *Server) handleRecordsUndoLast(w http.ResponseWriter, r *http.Request) {
	deleted, id, err := s.waste.UndoLast(r.Context(), userFromContext(r).ID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "deleted": deleted, "record_id": id})
}

func (s *Server) handleRecordDelete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, errors.New("invalid record id"))
		return
	}
	deleted, err := s.waste.Delete(r.Context(), userFromContext(r).ID, id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if !deleted {
		writeError(w, http.StatusNotFound, errors.New("record not found"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}
