package pipeline

import (
	"context"
	"errors"
	"log/slog"

	"github.com/talkdata/talkdata/internal/display"
	"github.com/talkdata/talkdata/internal/history"
	"github.com/talkdata/talkdata/internal/nl2sql"
	"github.com/talkdata/talkdata/internal/observability"
	"github.com/talkdata/talkdata/internal/schema"
)

// Outcome is one fully processed question.
type Outcome struct {
	Result     QueryResult       `json:"result"`
	NL         nl2sql.Converted  `json:"nl"`
	Detection  display.Detection `json:"detection"`
	DualView   bool              `json:"dual_view"`
	RetryCount int               `json:"retry_count"`
}

// Service composes the schema builder, the converter chain, and the executor
// into one call per question.
type Service struct {
	builder   *schema.Builder
	converter *nl2sql.FallbackConverter
	executor  *Executor
	store     history.Store
	logger    *slog.Logger
}

func NewService(builder *schema.Builder, converter *nl2sql.FallbackConverter, executor *Executor, store history.Store, logger *slog.Logger) *Service {
	return &Service{
		builder:   builder,
		converter: converter,
		executor:  executor,
		store:     store,
		logger:    logger,
	}
}

// Process answers one natural language question. The schema context is built
// fresh per call so new dataset files show up immediately. RetryCount is
// always 0: there is no automatic retry loop, callers decide whether to
// resubmit through CorrectSQL.
func (s *Service) Process(ctx context.Context, question, contextInfo string) (Outcome, error) {
	description := s.builder.Build(ctx)

	converted, err := s.converter.Convert(ctx, nl2sql.Request{
		Question:      question,
		SchemaContext: description.Format(),
		ContextInfo:   contextInfo,
	})
	if err != nil {
		return Outcome{}, err
	}
	observability.ObserveQuestion(converted.Source)

	result, err := s.executor.Execute(ctx, converted.SQL)
	if err != nil {
		s.record(ctx, question, converted, QueryResult{SQL: converted.SQL}, "", errorKind(err))
		return Outcome{NL: converted}, err
	}

	detection := display.Detect(result.Rows, result.Columns, converted.DisplayType, converted.ChartType)
	observability.ObserveDisplayDecision(string(detection.DisplayType))

	outcome := Outcome{
		Result:     result,
		NL:         converted,
		Detection:  detection,
		DualView:   display.ShouldShowDualView(result.Rows, result.Columns),
		RetryCount: 0,
	}
	s.record(ctx, question, converted, result, string(detection.DisplayType), "")
	return outcome, nil
}

// Execute runs caller-provided SQL through the same validation, execution,
// and classification path, skipping conversion.
func (s *Service) Execute(ctx context.Context, sql string) (QueryResult, display.Detection, error) {
	result, err := s.executor.Execute(ctx, sql)
	if err != nil {
		return QueryResult{}, display.Detection{}, err
	}
	detection := display.Detect(result.Rows, result.Columns, "", "")
	observability.ObserveDisplayDecision(string(detection.DisplayType))
	return result, detection, nil
}

// CorrectSQL asks the converter chain for a single repair pass over failed
// SQL, attaching the current schema context.
func (s *Service) CorrectSQL(ctx context.Context, sql, errorMessage, errorKind string) (nl2sql.Correction, error) {
	description := s.builder.Build(ctx)
	return s.converter.CorrectSQL(ctx, nl2sql.CorrectionRequest{
		SQL:           sql,
		ErrorMessage:  errorMessage,
		ErrorKind:     errorKind,
		SchemaContext: description.Format(),
	})
}

func (s *Service) record(ctx context.Context, question string, converted nl2sql.Converted, result QueryResult, displayType, kind string) {
	if s.store == nil {
		return
	}
	entry := history.Entry{
		Question:    question,
		SQL:         result.SQL,
		Source:      converted.Source,
		DisplayType: displayType,
		RowCount:    result.RowCount,
		DurationMs:  result.ExecutionTime,
		ErrorKind:   kind,
	}
	if err := s.store.Record(ctx, entry); err != nil {
		s.logger.WarnContext(ctx, "failed to record query history",
			slog.String("error", err.Error()))
	}
}

func errorKind(err error) string {
	var queryErr *QueryError
	if errors.As(err, &queryErr) {
		return string(queryErr.Kind)
	}
	return string(KindUnknown)
}
