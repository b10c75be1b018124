package api

import (
	"net/http"
	"strconv"

	"github.com/pixelgenesis/credential-node/internal/core/domain"
	"github.com/pixelgenesis/credential-node/internal/core/ports"
)

// GetLogs - GET /logs
func (s *Server) GetLogs(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := ports.LogFilter{Account: q.Get("account")}
	if et := q.Get("eventType"); et != "" {
		eventType, ok := domain.ParseEventType(et)
		if !ok {
			writeError(w, http.StatusBadRequest, "unknown eventType")
			return
		}
		filter.EventType = &eventType
	}
	var err error
	if filter.Limit, err = intParam(q.Get("limit")); err != nil {
		writeError(w, http.StatusBadRequest, "invalid limit")
		return
	}
	if filter.Offset, err = intParam(q.Get("offset")); err != nil {
		writeError(w, http.StatusBadRequest, "invalid offset")
		return
	}

	entries, err := s.audit.List(r.Context(), filter)
	if err != nil {
		writeServiceError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, LogList{Count: len(entries), Data: toLogEntries(entries)})
}

func intParam(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	return strconv.Atoi(s)
}
