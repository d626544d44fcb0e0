// Package dataset owns the embedded analytical engine. Parquet and CSV files
// on disk are registered as views in an in-memory DuckDB database and queried
// through a single long-lived connection pool.
package dataset

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	_ "github.com/marcboeker/go-duckdb/v2"
)

type Engine struct {
	db              *sql.DB
	defaultRowLimit int
}

type ColumnInfo struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// Open starts an in-memory DuckDB instance. Views registered on it live for
// the lifetime of the process.
func Open(defaultRowLimit int) (*Engine, error) {
	db, err := sql.Open("duckdb", "")
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}
	return NewEngine(db, defaultRowLimit), nil
}

// NewEngine wraps an existing database handle. Tests pass a mock here.
func NewEngine(db *sql.DB, defaultRowLimit int) *Engine {
	if defaultRowLimit <= 0 {
		defaultRowLimit = 1000
	}
	return &Engine{db: db, defaultRowLimit: defaultRowLimit}
}

func (e *Engine) Close() error {
	return e.db.Close()
}

func (e *Engine) HealthCheck(ctx context.Context) error {
	var one int
	if err := e.db.QueryRowContext(ctx, "SELECT 1").Scan(&one); err != nil {
		return fmt.Errorf("duckdb health check: %w", err)
	}
	return nil
}

// RegisterFile exposes a parquet or CSV file as a view named after the file.
// Re-registering an existing table replaces the view, which is how file
// updates are picked up.
func (e *Engine) RegisterFile(ctx context.Context, path string) (string, error) {
	table := TableNameForPath(path)
	if table == "" {
		return "", fmt.Errorf("cannot derive table name from %q", path)
	}

	var reader string
	switch strings.ToLower(filepath.Ext(path)) {
	case ".parquet":
		reader = "read_parquet"
	case ".csv":
		reader = "read_csv_auto"
	default:
		return "", fmt.Errorf("unsupported dataset file %q", path)
	}

	viewSQL := fmt.Sprintf(`CREATE OR REPLACE VIEW %s AS SELECT * FROM %s(%s)`,
		quoteIdent(table), reader, quoteString(path))
	if _, err := e.db.ExecContext(ctx, viewSQL); err != nil {
		return "", fmt.Errorf("register %q as %q: %w", path, table, err)
	}
	return table, nil
}

func (e *Engine) DropTable(ctx context.Context, table string) error {
	if _, err := e.db.ExecContext(ctx, fmt.Sprintf(`DROP VIEW IF EXISTS %s`, quoteIdent(table))); err != nil {
		return fmt.Errorf("drop view %q: %w", table, err)
	}
	return nil
}

func (e *Engine) ListTables(ctx context.Context) ([]string, error) {
	rows, err := e.db.QueryContext(ctx,
		"SELECT table_name FROM information_schema.tables WHERE table_schema = 'main' ORDER BY table_name")
	if err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var tables []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan table name: %w", err)
		}
		tables = append(tables, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tables: %w", err)
	}
	return tables, nil
}

func (e *Engine) TableSchema(ctx context.Context, table string) ([]ColumnInfo, error) {
	rows, err := e.db.QueryContext(ctx,
		"SELECT column_name, data_type FROM information_schema.columns WHERE table_schema = 'main' AND table_name = ? ORDER BY ordinal_position",
		table)
	if err != nil {
		return nil, fmt.Errorf("describe table %q: %w", table, err)
	}
	defer func() { _ = rows.Close() }()

	var columns []ColumnInfo
	for rows.Next() {
		var col ColumnInfo
		if err := rows.Scan(&col.Name, &col.Type); err != nil {
			return nil, fmt.Errorf("scan column: %w", err)
		}
		columns = append(columns, col)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate columns: %w", err)
	}
	return columns, nil
}

// Query runs a read-only statement and materializes the result as one map per
// row. The default row limit wraps every statement so an unbounded SELECT
// cannot flood the caller.
func (e *Engine) Query(ctx context.Context, sqlText string) ([]string, []map[string]any, error) {
	trimmed := stripTrailingSemicolons(sqlText)
	if trimmed == "" {
		return nil, nil, fmt.Errorf("sql is required")
	}
	wrapped := fmt.Sprintf("SELECT * FROM (%s) AS q LIMIT %d", trimmed, e.defaultRowLimit)

	rows, err := e.db.QueryContext(ctx, wrapped)
	if err != nil {
		return nil, nil, err
	}
	defer func() { _ = rows.Close() }()

	columns, err := rows.Columns()
	if err != nil {
		return nil, nil, fmt.Errorf("query columns: %w", err)
	}

	result := make([]map[string]any, 0)
	for rows.Next() {
		values := make([]any, len(columns))
		scanTargets := make([]any, len(columns))
		for i := range values {
			scanTargets[i] = &values[i]
		}
		if err := rows.Scan(scanTargets...); err != nil {
			return nil, nil, fmt.Errorf("scan row: %w", err)
		}
		record := make(map[string]any, len(columns))
		for i, column := range columns {
			record[column] = normalizeValue(values[i])
		}
		result = append(result, record)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, err
	}
	return columns, result, nil
}

func normalizeValue(value any) any {
	switch typed := value.(type) {
	case []byte:
		return string(typed)
	default:
		return typed
	}
}

var identPattern = regexp.MustCompile(`[^a-z0-9_]+`)

// TableNameForPath derives a view name from a dataset file name:
// "DC Order Lines.parquet" becomes dc_order_lines.
func TableNameForPath(path string) string {
	base := filepath.Base(path)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	base = strings.ToLower(strings.TrimSpace(base))
	base = identPattern.ReplaceAllString(base, "_")
	return strings.Trim(base, "_")
}

func quoteIdent(value string) string {
	return `"` + strings.ReplaceAll(value, `"`, `""`) + `"`
}

func quoteString(value string) string {
	return `'` + strings.ReplaceAll(value, `'`, `''`) + `'`
}

func stripTrailingSemicolons(sqlText string) string {
	trimmed := strings.TrimSpace(sqlText)
	for strings.HasSuffix(trimmed, ";") {
		trimmed = strings.TrimSpace(strings.TrimSuffix(trimmed, ";"))
	}
	return trimmed
}
