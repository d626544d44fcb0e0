package dataset

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/parquet-go/parquet-go"
)

type orderLine struct {
	OrderNumber string `parquet:"order_number"`
	OrderedQty  int64  `parquet:"ordered_qty"`
	HoldApplied int64  `parquet:"hold_applied_flag"`
}

func writeParquetFile(t *testing.T, path string, rows []orderLine) {
	t.Helper()
	file, err := os.Create(path)
	if err != nil {
		t.Fatalf("create parquet file: %v", err)
	}
	writer := parquet.NewGenericWriter[orderLine](file)
	if _, err := writer.Write(rows); err != nil {
		t.Fatalf("write parquet rows: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close parquet writer: %v", err)
	}
	if err := file.Close(); err != nil {
		t.Fatalf("close parquet file: %v", err)
	}
}

func TestRegisterFileAndQuery(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "dc_order_lines.parquet")
	writeParquetFile(t, path, []orderLine{
		{OrderNumber: "SO-1", OrderedQty: 10, HoldApplied: 1},
		{OrderNumber: "SO-2", OrderedQty: 4, HoldApplied: 0},
		{OrderNumber: "SO-3", OrderedQty: 7, HoldApplied: 1},
	})

	engine, err := Open(100)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer func() { _ = engine.Close() }()

	table, err := engine.RegisterFile(context.Background(), path)
	if err != nil {
		t.Fatalf("RegisterFile() error = %v", err)
	}
	if table != "dc_order_lines" {
		t.Fatalf("table = %q", table)
	}

	_, rows, err := engine.Query(context.Background(),
		"SELECT COUNT(*) AS held FROM dc_order_lines WHERE hold_applied_flag = 1")
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if len(rows) != 1 || rows[0]["held"] != int64(2) {
		t.Fatalf("rows = %+v", rows)
	}

	tables, err := engine.ListTables(context.Background())
	if err != nil {
		t.Fatalf("ListTables() error = %v", err)
	}
	if len(tables) != 1 || tables[0] != "dc_order_lines" {
		t.Fatalf("tables = %v", tables)
	}

	schema, err := engine.TableSchema(context.Background(), "dc_order_lines")
	if err != nil {
		t.Fatalf("TableSchema() error = %v", err)
	}
	if len(schema) != 3 || schema[0].Name != "order_number" {
		t.Fatalf("schema = %+v", schema)
	}

	if err := engine.DropTable(context.Background(), "dc_order_lines"); err != nil {
		t.Fatalf("DropTable() error = %v", err)
	}
	tables, err = engine.ListTables(context.Background())
	if err != nil {
		t.Fatalf("ListTables() error = %v", err)
	}
	if len(tables) != 0 {
		t.Fatalf("tables after drop = %v", tables)
	}
}

func TestLoaderLoadDirSkipsUnknownFiles(t *testing.T) {
	dir := t.TempDir()
	writeParquetFile(t, filepath.Join(dir, "dc_order_lines.parquet"), []orderLine{{OrderNumber: "SO-1"}})
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignore me"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	engine, err := Open(100)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer func() { _ = engine.Close() }()

	loader := NewLoader(engine, slog.New(slog.NewJSONHandler(io.Discard, nil)))
	loaded, err := loader.LoadDir(context.Background(), dir)
	if err != nil {
		t.Fatalf("LoadDir() error = %v", err)
	}
	if loaded != 1 {
		t.Fatalf("loaded = %d", loaded)
	}
}
