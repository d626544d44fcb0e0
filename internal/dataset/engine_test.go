package dataset

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestQueryMaterializesRowsAsMaps(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	defer func() { _ = db.Close() }()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM (SELECT line_status, cnt FROM t) AS q LIMIT 1000")).
		WillReturnRows(sqlmock.NewRows([]string{"line_status", "cnt"}).
			AddRow([]byte("BOOKED"), int64(12)).
			AddRow([]byte("HOLD"), int64(3)))

	engine := NewEngine(db, 0)
	columns, rows, err := engine.Query(context.Background(), "SELECT line_status, cnt FROM t;")
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if len(columns) != 2 || columns[0] != "line_status" {
		t.Fatalf("columns = %v", columns)
	}
	if len(rows) != 2 {
		t.Fatalf("rows = %d", len(rows))
	}
	if rows[0]["line_status"] != "BOOKED" {
		t.Fatalf("line_status = %#v", rows[0]["line_status"])
	}
	if rows[0]["cnt"] != int64(12) {
		t.Fatalf("cnt = %#v", rows[0]["cnt"])
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestQueryAppliesConfiguredRowLimit(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	defer func() { _ = db.Close() }()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM (SELECT 1) AS q LIMIT 25")).
		WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(int64(1)))

	engine := NewEngine(db, 25)
	if _, _, err := engine.Query(context.Background(), "SELECT 1"); err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestQueryRejectsEmptySQL(t *testing.T) {
	db, _, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	defer func() { _ = db.Close() }()

	engine := NewEngine(db, 10)
	if _, _, err := engine.Query(context.Background(), "  ;; "); err == nil {
		t.Fatal("expected error for empty sql")
	}
}

func TestTableNameForPath(t *testing.T) {
	cases := map[string]string{
		"/data/dc_order_lines.parquet": "dc_order_lines",
		"/data/DC Order Lines.parquet": "dc_order_lines",
		"route-plans.csv":              "route_plans",
		"/data/Route Plans (v2).csv":   "route_plans_v2",
	}
	for path, want := range cases {
		if got := TableNameForPath(path); got != want {
			t.Fatalf("TableNameForPath(%q) = %q, want %q", path, got, want)
		}
	}
}
