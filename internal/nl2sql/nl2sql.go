// Package nl2sql turns natural language questions into executable SQL, either
// through an external conversion service or through local query templates.
package nl2sql

import "context"

type DisplayType string

const (
	DisplayTable DisplayType = "table"
	DisplayChart DisplayType = "chart"
	DisplayText  DisplayType = "text"
	DisplayError DisplayType = "error"
)

type ChartType string

const (
	ChartBar  ChartType = "bar"
	ChartLine ChartType = "line"
	ChartPie  ChartType = "pie"
	ChartArea ChartType = "area"
)

// Usage is the token accounting reported by the conversion service.
type Usage struct {
	InputTokens              int `json:"input_tokens"`
	OutputTokens             int `json:"output_tokens"`
	CacheCreationInputTokens int `json:"cache_creation_input_tokens"`
	CacheReadInputTokens     int `json:"cache_read_input_tokens"`
}

// Result is one NL-to-SQL conversion. It is immutable after creation.
type Result struct {
	SQL         string      `json:"sql"`
	Confidence  float64     `json:"confidence"`
	Explanation string      `json:"explanation,omitempty"`
	DisplayType DisplayType `json:"display_type,omitempty"`
	ChartType   ChartType   `json:"chart_type,omitempty"`
	Usage       *Usage      `json:"usage,omitempty"`
}

type Request struct {
	Question      string
	SchemaContext string
	ContextInfo   string
}

// CorrectionRequest asks for a single repair pass over SQL that failed to
// execute.
type CorrectionRequest struct {
	SQL           string
	ErrorMessage  string
	ErrorKind     string
	SchemaContext string
}

type Correction struct {
	SQL        string  `json:"corrected_sql"`
	Confidence float64 `json:"confidence"`
}

type Converter interface {
	Convert(ctx context.Context, req Request) (Result, error)
	CorrectSQL(ctx context.Context, req CorrectionRequest) (Correction, error)
}
