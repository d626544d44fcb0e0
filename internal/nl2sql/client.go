package nl2sql

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"github.com/talkdata/talkdata/internal/sqlguard"
)

type ServiceConfig struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// ServiceConverter calls the external conversion service over HTTP. All calls
// flow through a circuit breaker so a dead service fails fast instead of
// holding a connection open for every question.
type ServiceConverter struct {
	baseURL string
	apiKey  string
	client  *http.Client
	breaker *gobreaker.CircuitBreaker
}

func NewServiceConverter(cfg ServiceConfig) (*ServiceConverter, error) {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, fmt.Errorf("base URL is required")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	settings := gobreaker.Settings{
		Name:     "nl2sql-service",
		Interval: 10 * time.Second,
		Timeout:  30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && (counts.ConsecutiveFailures >= 5 || failureRatio >= 0.6)
		},
	}
	return &ServiceConverter{
		baseURL: strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
		apiKey:  strings.TrimSpace(cfg.APIKey),
		client:  &http.Client{Timeout: timeout},
		breaker: gobreaker.NewCircuitBreaker(settings),
	}, nil
}

func (c *ServiceConverter) Convert(ctx context.Context, req Request) (Result, error) {
	payload := map[string]string{
		"query":          req.Question,
		"schema_context": req.SchemaContext,
		"context_info":   req.ContextInfo,
	}

	var parsed struct {
		SQL         string  `json:"sql"`
		Confidence  float64 `json:"confidence"`
		Explanation string  `json:"explanation"`
		DisplayType string  `json:"display_type"`
		ChartType   string  `json:"chart_type"`
		Usage       *Usage  `json:"usage"`
	}
	if err := c.post(ctx, "/api/nl-to-sql", payload, &parsed); err != nil {
		return Result{}, err
	}

	sql := stripMarkdownSQL(parsed.SQL)
	if strings.TrimSpace(sql) == "" {
		return Result{}, fmt.Errorf("conversion service returned empty SQL")
	}
	if err := sqlguard.Validate(sql); err != nil {
		return Result{}, fmt.Errorf("conversion service returned unsafe SQL: %w", err)
	}

	return Result{
		SQL:         sql,
		Confidence:  parsed.Confidence,
		Explanation: parsed.Explanation,
		DisplayType: normalizeDisplayType(parsed.DisplayType),
		ChartType:   normalizeChartType(parsed.ChartType),
		Usage:       parsed.Usage,
	}, nil
}

func (c *ServiceConverter) CorrectSQL(ctx context.Context, req CorrectionRequest) (Correction, error) {
	payload := map[string]string{
		"original_query": req.SQL,
		"error_message":  req.ErrorMessage,
		"error_type":     req.ErrorKind,
		"schema_context": req.SchemaContext,
	}

	var parsed struct {
		CorrectedSQL string  `json:"corrected_sql"`
		Confidence   float64 `json:"confidence"`
	}
	if err := c.post(ctx, "/api/correct-sql", payload, &parsed); err != nil {
		return Correction{}, err
	}

	sql := stripMarkdownSQL(parsed.CorrectedSQL)
	if strings.TrimSpace(sql) == "" {
		return Correction{}, fmt.Errorf("conversion service returned empty correction")
	}
	if err := sqlguard.Validate(sql); err != nil {
		return Correction{}, fmt.Errorf("conversion service returned unsafe correction: %w", err)
	}
	return Correction{SQL: sql, Confidence: parsed.Confidence}, nil
}

func (c *ServiceConverter) post(ctx context.Context, path string, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal conversion payload: %w", err)
	}

	raw, err := c.breaker.Execute(func() (any, error) {
		httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("build conversion request: %w", err)
		}
		httpReq.Header.Set("Content-Type", "application/json")
		if c.apiKey != "" {
			httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
		}

		resp, err := c.client.Do(httpReq)
		if err != nil {
			return nil, fmt.Errorf("request conversion: %w", err)
		}
		defer func() { _ = resp.Body.Close() }()

		rawBody, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("read conversion response body: %w", err)
		}
		if resp.StatusCode >= 400 {
			return nil, fmt.Errorf("conversion failed status=%d body=%s", resp.StatusCode, string(rawBody))
		}
		return rawBody, nil
	})
	if err != nil {
		return err
	}

	if err := json.Unmarshal(raw.([]byte), out); err != nil {
		return fmt.Errorf("decode conversion response: %w", err)
	}
	return nil
}

// stripMarkdownSQL unwraps SQL the service returns inside a fenced code block.
func stripMarkdownSQL(value string) string {
	trimmed := strings.TrimSpace(value)
	if strings.HasPrefix(trimmed, "```") {
		trimmed = strings.TrimPrefix(trimmed, "```sql")
		trimmed = strings.TrimPrefix(trimmed, "```")
		trimmed = strings.TrimSuffix(trimmed, "```")
		return strings.TrimSpace(trimmed)
	}
	return trimmed
}

func normalizeDisplayType(value string) DisplayType {
	switch DisplayType(strings.ToLower(strings.TrimSpace(value))) {
	case DisplayTable, DisplayChart, DisplayText, DisplayError:
		return DisplayType(strings.ToLower(strings.TrimSpace(value)))
	default:
		return ""
	}
}

func normalizeChartType(value string) ChartType {
	switch ChartType(strings.ToLower(strings.TrimSpace(value))) {
	case ChartBar, ChartLine, ChartPie, ChartArea:
		return ChartType(strings.ToLower(strings.TrimSpace(value)))
	default:
		return ""
	}
}
