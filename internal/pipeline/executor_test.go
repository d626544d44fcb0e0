package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRunner struct {
	columns []string
	rows    []map[string]any
	err     error
	gotSQL  string
}

func (f *fakeRunner) Query(_ context.Context, sql string) ([]string, []map[string]any, error) {
	f.gotSQL = sql
	return f.columns, f.rows, f.err
}

func TestExecuteRejectsInvalidSQLBeforeTheEngine(t *testing.T) {
	runner := &fakeRunner{}
	executor := NewExecutor(runner)

	_, err := executor.Execute(context.Background(), "DROP TABLE dc_order_lines")
	require.Error(t, err)

	var queryErr *QueryError
	require.ErrorAs(t, err, &queryErr)
	assert.Equal(t, KindSQLSyntax, queryErr.Kind)
	assert.Empty(t, runner.gotSQL, "engine must not see invalid SQL")
}

func TestExecuteReturnsResultWithRowCountInvariant(t *testing.T) {
	runner := &fakeRunner{
		columns: []string{"status", "cnt"},
		rows: []map[string]any{
			{"status": "BOOKED", "cnt": int64(4)},
			{"status": "HOLD", "cnt": int64(2)},
		},
	}
	executor := NewExecutor(runner)

	result, err := executor.Execute(context.Background(), "SELECT status, cnt FROM t")
	require.NoError(t, err)
	assert.Equal(t, 2, result.RowCount)
	assert.Len(t, result.Rows, result.RowCount)
	assert.Equal(t, []string{"status", "cnt"}, result.Columns)
	assert.GreaterOrEqual(t, result.ExecutionTime, 0.0)
	assert.Equal(t, "SELECT status, cnt FROM t", result.SQL)
}

func TestExecuteDerivesColumnsFromFirstRow(t *testing.T) {
	runner := &fakeRunner{rows: []map[string]any{{"only": int64(1)}}}
	executor := NewExecutor(runner)

	result, err := executor.Execute(context.Background(), "SELECT 1 AS only")
	require.NoError(t, err)
	assert.Equal(t, []string{"only"}, result.Columns)
}

func TestExecuteEmptyResultIsSuccess(t *testing.T) {
	runner := &fakeRunner{columns: []string{"a"}}
	executor := NewExecutor(runner)

	result, err := executor.Execute(context.Background(), "SELECT a FROM t WHERE 1=0")
	require.NoError(t, err)
	assert.Zero(t, result.RowCount)
	assert.Empty(t, result.Rows)
}

func TestExecuteMapsEngineFailures(t *testing.T) {
	cases := map[ErrorKind]error{
		KindExecution: errors.New(`Binder Error: column "order_num" not found`),
		KindTimeout:   context.DeadlineExceeded,
	}
	for want, engineErr := range cases {
		executor := NewExecutor(&fakeRunner{err: engineErr})
		_, err := executor.Execute(context.Background(), "SELECT 1")
		var queryErr *QueryError
		require.ErrorAs(t, err, &queryErr)
		assert.Equal(t, want, queryErr.Kind)
		assert.Equal(t, "SELECT 1", queryErr.SQL)
	}
}

func TestQueryErrorMessagesAndSuggestions(t *testing.T) {
	kinds := []ErrorKind{KindSQLSyntax, KindExecution, KindNoResults, KindTimeout, KindUnknown}
	for _, kind := range kinds {
		queryErr := &QueryError{Kind: kind, Raw: "raw detail"}
		assert.NotEmpty(t, queryErr.UserMessage(), kind)
		assert.NotEmpty(t, queryErr.Suggestions(), kind)
		// Static wording only, never the raw engine message.
		assert.NotContains(t, queryErr.UserMessage(), "raw detail")
	}

	unknown := &QueryError{Kind: ErrorKind("???")}
	assert.Equal(t, userMessages[KindUnknown], unknown.UserMessage())
	assert.NotEmpty(t, unknown.Suggestions())
}
