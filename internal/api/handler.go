// Package api exposes the question answering pipeline over HTTP.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/talkdata/talkdata/internal/auth"
	"github.com/talkdata/talkdata/internal/config"
	"github.com/talkdata/talkdata/internal/display"
	"github.com/talkdata/talkdata/internal/history"
	"github.com/talkdata/talkdata/internal/nl2sql"
	"github.com/talkdata/talkdata/internal/observability"
	"github.com/talkdata/talkdata/internal/pipeline"
	"github.com/talkdata/talkdata/internal/schema"
)

type ReadinessCheck func(ctx context.Context) error

// QuestionService is the pipeline surface the handlers need.
type QuestionService interface {
	Process(ctx context.Context, question, contextInfo string) (pipeline.Outcome, error)
	Execute(ctx context.Context, sql string) (pipeline.QueryResult, display.Detection, error)
	CorrectSQL(ctx context.Context, sql, errorMessage, errorKind string) (nl2sql.Correction, error)
}

type SchemaProvider interface {
	Build(ctx context.Context) schema.Description
}

type Dependencies struct {
	Logger            *slog.Logger
	Readiness         ReadinessCheck
	AuthMiddleware    func(http.Handler) http.Handler
	DependencyTimeout time.Duration
	Pipeline          QuestionService
	Schema            SchemaProvider
	History           history.Store
}

func NewHandler(cfg config.Config, deps Dependencies) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /v1/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "service": cfg.Service.Name})
	})

	mux.HandleFunc("GET /v1/ready", func(w http.ResponseWriter, r *http.Request) {
		if deps.Readiness == nil {
			writeJSON(w, http.StatusOK, map[string]any{"status": "ready"})
			return
		}
		timeout := deps.DependencyTimeout
		if timeout <= 0 {
			timeout = 2 * time.Second
		}
		ctx, cancel := context.WithTimeout(r.Context(), timeout)
		defer cancel()
		if err := deps.Readiness(ctx); err != nil {
			writeError(r.Context(), w, http.StatusServiceUnavailable, "NOT_READY", err.Error(), true, nil)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"status": "ready"})
	})

	mux.Handle("GET /v1/metrics", promhttp.Handler())

	protected := http.NewServeMux()
	protected.HandleFunc("POST /v1/ask", func(w http.ResponseWriter, r *http.Request) {
		handleAsk(deps, w, r)
	})
	protected.HandleFunc("POST /v1/query", func(w http.ResponseWriter, r *http.Request) {
		handleQuery(deps, w, r)
	})
	protected.HandleFunc("POST /v1/query/correct", func(w http.ResponseWriter, r *http.Request) {
		handleCorrect(deps, w, r)
	})
	protected.HandleFunc("GET /v1/schema", func(w http.ResponseWriter, r *http.Request) {
		handleSchema(deps, w, r)
	})
	protected.HandleFunc("GET /v1/history", func(w http.ResponseWriter, r *http.Request) {
		handleHistory(deps, w, r)
	})

	var protectedHandler http.Handler = protected
	if cfg.Auth.Required {
		if deps.AuthMiddleware == nil {
			if deps.Logger != nil {
				deps.Logger.Error("auth required but auth middleware missing")
			}
			protectedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				writeError(r.Context(), w, http.StatusInternalServerError, "AUTH_MIDDLEWARE_MISSING", "auth middleware is required by configuration", false, nil)
			})
		} else {
			protectedHandler = deps.AuthMiddleware(auth.RequireRole(auth.RoleAnalyst)(protectedHandler))
		}
	}
	mux.Handle("POST /v1/ask", protectedHandler)
	mux.Handle("POST /v1/query", protectedHandler)
	mux.Handle("POST /v1/query/correct", protectedHandler)
	mux.Handle("GET /v1/schema", protectedHandler)
	mux.Handle("GET /v1/history", protectedHandler)

	middlewares := []func(http.Handler) http.Handler{
		observability.TraceMiddleware,
		observability.MetricsMiddleware,
	}
	if deps.Logger != nil {
		middlewares = append(middlewares, observability.LoggingMiddleware(deps.Logger))
	}
	return chain(mux, middlewares...)
}

func CombineReadinessChecks(checks ...ReadinessCheck) ReadinessCheck {
	filtered := make([]ReadinessCheck, 0, len(checks))
	for _, check := range checks {
		if check != nil {
			filtered = append(filtered, check)
		}
	}
	return func(ctx context.Context) error {
		for _, check := range filtered {
			if err := check(ctx); err != nil {
				return err
			}
		}
		return nil
	}
}

func CheckConversionConfig(cfg config.Config) ReadinessCheck {
	return func(_ context.Context) error {
		if !cfg.AI.MockMode && cfg.AI.BaseURL == "" {
			return errors.New("conversion service URL is not configured")
		}
		return nil
	}
}

func chain(base http.Handler, middlewares ...func(http.Handler) http.Handler) http.Handler {
	wrapped := base
	for i := len(middlewares) - 1; i >= 0; i-- {
		wrapped = middlewares[i](wrapped)
	}
	return wrapped
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(ctx context.Context, w http.ResponseWriter, status int, code, message string, retryable bool, extra map[string]any) {
	writeJSON(w, status, map[string]any{
		"error_code": code,
		"message":    message,
		"retryable":  retryable,
		"context":    extra,
		"trace_id":   observability.TraceIDFromContext(ctx),
	})
}

// writeQueryError maps a pipeline failure to a response carrying the static
// user message and remediation suggestions, never the raw engine text.
func writeQueryError(ctx context.Context, w http.ResponseWriter, err error) {
	var queryErr *pipeline.QueryError
	if !errors.As(err, &queryErr) {
		writeError(ctx, w, http.StatusInternalServerError, "INTERNAL", "internal error", false, nil)
		return
	}

	status := http.StatusUnprocessableEntity
	retryable := false
	switch queryErr.Kind {
	case pipeline.KindSQLSyntax:
		status = http.StatusBadRequest
	case pipeline.KindTimeout:
		status = http.StatusGatewayTimeout
		retryable = true
	case pipeline.KindUnknown:
		status = http.StatusInternalServerError
	}

	writeError(ctx, w, status, "QUERY_FAILED", queryErr.UserMessage(), retryable, map[string]any{
		"kind":        string(queryErr.Kind),
		"suggestions": queryErr.Suggestions(),
		"sql":         queryErr.SQL,
	})
}
