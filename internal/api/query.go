package api

import (
	"encoding/json"
	"net/http"
	"strings"
)

type queryRequest struct {
	SQL string `json:"sql"`
}

func handleQuery(deps Dependencies, w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(r.Context(), w, http.StatusBadRequest, "INVALID_BODY", "invalid JSON body", false, nil)
		return
	}
	if strings.TrimSpace(req.SQL) == "" {
		writeError(r.Context(), w, http.StatusBadRequest, "SQL_REQUIRED", "sql is required", false, nil)
		return
	}

	result, detection, err := deps.Pipeline.Execute(r.Context(), req.SQL)
	if err != nil {
		writeQueryError(r.Context(), w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"result":       result,
		"display_type": detection.DisplayType,
		"chart_type":   detection.ChartType,
	})
}

type correctRequest struct {
	SQL          string `json:"original_query"`
	ErrorMessage string `json:"error_message"`
	ErrorKind    string `json:"error_type"`
}

func handleCorrect(deps Dependencies, w http.ResponseWriter, r *http.Request) {
	var req correctRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(r.Context(), w, http.StatusBadRequest, "INVALID_BODY", "invalid JSON body", false, nil)
		return
	}
	if strings.TrimSpace(req.SQL) == "" {
		writeError(r.Context(), w, http.StatusBadRequest, "SQL_REQUIRED", "original_query is required", false, nil)
		return
	}

	correction, err := deps.Pipeline.CorrectSQL(r.Context(), req.SQL, req.ErrorMessage, req.ErrorKind)
	if err != nil {
		writeError(r.Context(), w, http.StatusBadGateway, "CORRECTION_FAILED", "SQL correction failed", true, nil)
		return
	}

	writeJSON(w, http.StatusOK, correction)
}
