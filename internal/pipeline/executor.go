package pipeline

import (
	"context"
	"errors"
	"time"

	"github.com/talkdata/talkdata/internal/observability"
	"github.com/talkdata/talkdata/internal/sqlguard"
)

// Runner is the slice of the dataset engine the executor needs.
type Runner interface {
	Query(ctx context.Context, sql string) ([]string, []map[string]any, error)
}

// QueryResult is one executed statement. RowCount always equals len(Rows) and
// Columns falls back to the first row's keys when the driver reports none.
type QueryResult struct {
	Rows          []map[string]any `json:"rows"`
	Columns       []string         `json:"columns"`
	RowCount      int              `json:"row_count"`
	ExecutionTime float64          `json:"execution_time_ms"`
	SQL           string           `json:"sql"`
}

type Executor struct {
	runner Runner
}

func NewExecutor(runner Runner) *Executor {
	return &Executor{runner: runner}
}

// Execute validates and runs sql, measuring wall-clock time. Failures come
// back as *QueryError; an empty result set is a success.
func (e *Executor) Execute(ctx context.Context, sql string) (QueryResult, error) {
	if err := sqlguard.Validate(sql); err != nil {
		observability.ObserveQueryFailure(string(KindSQLSyntax))
		return QueryResult{}, &QueryError{Kind: KindSQLSyntax, Raw: err.Error(), SQL: sql}
	}

	start := time.Now()
	columns, rows, err := e.runner.Query(ctx, sql)
	elapsed := time.Since(start)
	observability.ObserveQueryDuration(elapsed)

	if err != nil {
		kind := KindExecution
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			kind = KindTimeout
		}
		observability.ObserveQueryFailure(string(kind))
		return QueryResult{}, &QueryError{Kind: kind, Raw: err.Error(), SQL: sql}
	}

	if len(columns) == 0 && len(rows) > 0 {
		for column := range rows[0] {
			columns = append(columns, column)
		}
	}

	return QueryResult{
		Rows:          rows,
		Columns:       columns,
		RowCount:      len(rows),
		ExecutionTime: float64(elapsed.Microseconds()) / 1000.0,
		SQL:           sql,
	}, nil
}
