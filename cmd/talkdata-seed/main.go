package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/talkdata/talkdata/internal/seed"
)

func main() {
	dir := flag.String("dir", "./data", "output directory for the generated parquet files")
	orderLines := flag.Int("order-lines", 500, "number of order line rows to generate")
	routePlans := flag.Int("route-plans", 60, "number of route plan rows to generate")
	flag.Parse()

	if err := os.MkdirAll(*dir, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "failed to create output directory: %v\n", err)
		os.Exit(1)
	}
	if err := seed.WriteDataset(*dir, *orderLines, *routePlans); err != nil {
		fmt.Fprintf(os.Stderr, "seed failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("wrote dc_order_lines.parquet (%d rows) and route_plans.parquet (%d rows) to %s\n", *orderLines, *routePlans, *dir)
}
