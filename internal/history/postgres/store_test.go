package postgres

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/talkdata/talkdata/internal/history"
)

func TestRecordFillsIDAndTimestamp(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	defer func() { _ = db.Close() }()

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO query_history")).
		WithArgs(sqlmock.AnyArg(), "how many holds", "SELECT 1", "template", "text",
			1, 2.5, "", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	store := NewStore(db)
	err = store.Record(context.Background(), history.Entry{
		Question:    "how many holds",
		SQL:         "SELECT 1",
		Source:      "template",
		DisplayType: "text",
		RowCount:    1,
		DurationMs:  2.5,
	})
	if err != nil {
		t.Fatalf("Record() error = %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestRecentDefaultsLimit(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	defer func() { _ = db.Close() }()

	now := time.Now().UTC()
	mock.ExpectQuery(regexp.QuoteMeta("FROM query_history")).
		WithArgs(20).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "question", "sql_text", "source", "display_type", "row_count", "duration_ms", "error_kind", "created_at",
		}).AddRow("id-1", "q", "SELECT 1", "service", "table", 3, 1.2, "", now))

	store := NewStore(db)
	entries, err := store.Recent(context.Background(), 0)
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	if len(entries) != 1 || entries[0].ID != "id-1" {
		t.Fatalf("entries = %+v", entries)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}
