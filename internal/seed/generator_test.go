package seed

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestGeneratorIsDeterministic(t *testing.T) {
	first := NewGenerator(7).OrderLines(50)
	second := NewGenerator(7).OrderLines(50)
	if !reflect.DeepEqual(first, second) {
		t.Fatal("same seed must produce identical order lines")
	}
}

func TestOrderLinesLookPlausible(t *testing.T) {
	lines := NewGenerator(1).OrderLines(200)
	if len(lines) != 200 {
		t.Fatalf("len = %d", len(lines))
	}

	holds := 0
	for _, line := range lines {
		if line.OrderedQty <= 0 {
			t.Fatalf("ordered_qty = %d", line.OrderedQty)
		}
		if line.ReservedQty > line.OrderedQty {
			t.Fatalf("reserved %d > ordered %d", line.ReservedQty, line.OrderedQty)
		}
		if line.PlannedFlag == 1 && line.TripID == "" {
			t.Fatal("planned line missing trip id")
		}
		if line.HoldAppliedFlag == 1 {
			holds++
		}
	}
	if holds == 0 {
		t.Fatal("expected some held lines in a 200 line sample")
	}
}

func TestWriteDatasetProducesParquetFiles(t *testing.T) {
	dir := t.TempDir()
	if err := WriteDataset(dir, 20, 5); err != nil {
		t.Fatalf("WriteDataset() error = %v", err)
	}
	for _, name := range []string{"dc_order_lines.parquet", "route_plans.parquet"} {
		info, err := os.Stat(filepath.Join(dir, name))
		if err != nil {
			t.Fatalf("stat %s: %v", name, err)
		}
		if info.Size() == 0 {
			t.Fatalf("%s is empty", name)
		}
	}
}
