package seed

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/parquet-go/parquet-go"
)

// WriteDataset writes the demo tables as parquet files under dir, named so
// the dataset loader derives the expected table names.
func WriteDataset(dir string, orderLines int, routePlans int) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create dataset dir: %w", err)
	}

	generator := NewGenerator(42)
	if err := writeParquet(filepath.Join(dir, "dc_order_lines.parquet"), generator.OrderLines(orderLines)); err != nil {
		return err
	}
	return writeParquet(filepath.Join(dir, "route_plans.parquet"), generator.RoutePlans(routePlans))
}

func writeParquet[T any](path string, rows []T) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %q: %w", path, err)
	}
	writer := parquet.NewGenericWriter[T](file)
	if _, err := writer.Write(rows); err != nil {
		_ = file.Close()
		return fmt.Errorf("write %q: %w", path, err)
	}
	if err := writer.Close(); err != nil {
		_ = file.Close()
		return fmt.Errorf("close parquet writer for %q: %w", path, err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("close %q: %w", path, err)
	}
	return nil
}
