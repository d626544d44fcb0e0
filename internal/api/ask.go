package api

import (
	"encoding/json"
	"net/http"
	"strings"
)

type askRequest struct {
	Question    string `json:"question"`
	ContextInfo string `json:"context_info"`
}

func handleAsk(deps Dependencies, w http.ResponseWriter, r *http.Request) {
	var req askRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(r.Context(), w, http.StatusBadRequest, "INVALID_BODY", "invalid JSON body", false, nil)
		return
	}
	if strings.TrimSpace(req.Question) == "" {
		writeError(r.Context(), w, http.StatusBadRequest, "QUESTION_REQUIRED", "question is required", false, nil)
		return
	}

	outcome, err := deps.Pipeline.Process(r.Context(), req.Question, req.ContextInfo)
	if err != nil {
		writeQueryError(r.Context(), w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"question":     req.Question,
		"sql":          outcome.NL.SQL,
		"source":       outcome.NL.Source,
		"confidence":   outcome.NL.Confidence,
		"explanation":  outcome.NL.Explanation,
		"usage":        outcome.NL.Usage,
		"result":       outcome.Result,
		"display_type": outcome.Detection.DisplayType,
		"chart_type":   outcome.Detection.ChartType,
		"dual_view":    outcome.DualView,
		"retry_count":  outcome.RetryCount,
	})
}
