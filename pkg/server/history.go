package server

import (
	"net/http"
	"strconv"

	"github.com/samber/lo"

	"github.com/m-mizutani/trek/pkg/model"
)

// displayTimeFormat matches the timestamp rendering of the frontend history
// views (dd-mm-yyyy HH:MM:SS).
const displayTimeFormat = "02-01-2006 15:04:05"

type historyEntry struct {
	ID        string           `json:"id"`
	Type      model.RecordType `json:"type"`
	Timestamp string           `json:"timestamp"`
	Request   any              `json:"request"`
	Response  string           `json:"response"`
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			writeError(ctx, w, http.StatusBadRequest, "invalid limit", err)
			return
		}
		limit = n
	}

	records, err := s.repo.ListRecords(ctx, userFrom(ctx), limit)
	if err != nil {
		writeError(ctx, w, http.StatusInternalServerError, "failed to load history", err)
		return
	}

	if typ := r.URL.Query().Get("type"); typ != "" {
		records = lo.Filter(records, func(record *model.HistoryRecord, _ int) bool {
			return record.Type == model.RecordType(typ)
		})
	}

	entries := lo.Map(records, func(record *model.HistoryRecord, _ int) historyEntry {
		return historyEntry{
			ID:        string(record.ID),
			Type:      record.Type,
			Timestamp: record.Timestamp.Format(displayTimeFormat),
			Request:   record.Request,
			Response:  record.Response,
		}
	})

	writeJSON(ctx, w, http.StatusOK, map[string][]historyEntry{"history": entries})
}
