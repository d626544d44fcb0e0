package api

import (
	"net/http"
	"strconv"

	"github.com/talkdata/talkdata/internal/history"
)

func handleSchema(deps Dependencies, w http.ResponseWriter, r *http.Request) {
	description := deps.Schema.Build(r.Context())
	writeJSON(w, http.StatusOK, map[string]any{
		"tables":  description.Tables,
		"context": description.Format(),
	})
}

func handleHistory(deps Dependencies, w http.ResponseWriter, r *http.Request) {
	if deps.History == nil {
		writeError(r.Context(), w, http.StatusNotImplemented, "HISTORY_DISABLED", "query history is not configured", false, nil)
		return
	}

	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 || parsed > 500 {
			writeError(r.Context(), w, http.StatusBadRequest, "INVALID_LIMIT", "limit must be a positive integer up to 500", false, nil)
			return
		}
		limit = parsed
	}

	entries, err := deps.History.Recent(r.Context(), limit)
	if err != nil {
		writeError(r.Context(), w, http.StatusInternalServerError, "HISTORY_UNAVAILABLE", "failed to read query history", true, nil)
		return
	}
	if entries == nil {
		entries = []history.Entry{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"entries": entries})
}
