// Package seed generates a deterministic demo warehouse dataset for local
// development and tests.
package seed

import (
	"fmt"
	"math/rand"
	"time"
)

type OrderLine struct {
	OrderNumber      string `parquet:"order_number"`
	LineID           int64  `parquet:"line_id"`
	OrderedItem      string `parquet:"ordered_item"`
	ItemDescription  string `parquet:"item_description"`
	OrderedDate      string `parquet:"ordered_date"`
	ScheduleShipDate string `parquet:"schedule_ship_date"`
	OrderedQty       int64  `parquet:"ordered_qty"`
	ReservedQty      int64  `parquet:"reserved_qty"`
	SoldTo           string `parquet:"sold_to"`
	ShipTo           string `parquet:"ship_to"`
	DC               string `parquet:"dc"`
	LineStatus       string `parquet:"line_status"`
	HoldAppliedFlag  int64  `parquet:"hold_applied_flag"`
	RoutedFlag       int64  `parquet:"routed_flag"`
	PlannedFlag      int64  `parquet:"planned_flag"`
	TripID           string `parquet:"trip_id"`
	Vendor           string `parquet:"vendor"`
	ProductGroup     string `parquet:"product_group"`
}

type RoutePlan struct {
	TripID      string `parquet:"trip_id"`
	RouteID     string `parquet:"route_id"`
	Carrier     string `parquet:"carrier"`
	DC          string `parquet:"dc"`
	StopCount   int64  `parquet:"stop_count"`
	PlannedDate string `parquet:"planned_date"`
	DepartDate  string `parquet:"depart_date"`
	TotalUnits  int64  `parquet:"total_units"`
	Status      string `parquet:"status"`
}

// Generator is deterministic for a given seed so repeated runs produce the
// same dataset.
type Generator struct {
	rnd  *rand.Rand
	base time.Time
}

func NewGenerator(seed int64) *Generator {
	return &Generator{
		rnd:  rand.New(rand.NewSource(seed)),
		base: time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
	}
}

var (
	customers = []string{"ACME FOODS", "NORTHWIND", "GLOBEX", "INITECH", "WAYNE RETAIL", "STARK GROCERS"}
	dcs       = []string{"DC-ATL", "DC-DFW", "DC-ORD"}
	statuses  = []string{"BOOKED", "RELEASED", "PICKED", "SHIPPED"}
	carriers  = []string{"SWIFT", "KNIGHT", "SCHNEIDER", "JBHUNT"}
	vendors   = []string{"VENDOR-A", "VENDOR-B", "VENDOR-C"}
	groups    = []string{"FROZEN", "DRY", "DAIRY", "PRODUCE"}
)

func (g *Generator) OrderLines(count int) []OrderLine {
	lines := make([]OrderLine, 0, count)
	for i := 0; i < count; i++ {
		ordered := g.base.AddDate(0, 0, -g.rnd.Intn(21))
		ship := ordered.AddDate(0, 0, 1+g.rnd.Intn(10))
		qty := int64(1 + g.rnd.Intn(500))
		routed := g.rnd.Intn(100) < 70
		planned := routed && g.rnd.Intn(100) < 80

		line := OrderLine{
			OrderNumber:      fmt.Sprintf("SO-%06d", 100000+i/3),
			LineID:           int64(i%3 + 1),
			OrderedItem:      fmt.Sprintf("ITEM-%04d", g.rnd.Intn(400)+1),
			ItemDescription:  fmt.Sprintf("%s case pack", pickOne(g.rnd, groups)),
			OrderedDate:      ordered.Format("2006-01-02"),
			ScheduleShipDate: ship.Format("2006-01-02"),
			OrderedQty:       qty,
			ReservedQty:      qty - int64(g.rnd.Intn(int(qty))),
			SoldTo:           pickOne(g.rnd, customers),
			ShipTo:           fmt.Sprintf("STORE-%03d", g.rnd.Intn(120)+1),
			DC:               pickOne(g.rnd, dcs),
			LineStatus:       pickOne(g.rnd, statuses),
			HoldAppliedFlag:  flag(g.rnd.Intn(100) < 12),
			RoutedFlag:       flag(routed),
			PlannedFlag:      flag(planned),
			Vendor:           pickOne(g.rnd, vendors),
			ProductGroup:     pickOne(g.rnd, groups),
		}
		if planned {
			line.TripID = fmt.Sprintf("TRIP-%04d", g.rnd.Intn(60)+1)
		}
		lines = append(lines, line)
	}
	return lines
}

func (g *Generator) RoutePlans(count int) []RoutePlan {
	plans := make([]RoutePlan, 0, count)
	for i := 0; i < count; i++ {
		planned := g.base.AddDate(0, 0, -g.rnd.Intn(14))
		plans = append(plans, RoutePlan{
			TripID:      fmt.Sprintf("TRIP-%04d", i+1),
			RouteID:     fmt.Sprintf("RT-%05d", g.rnd.Intn(90000)+10000),
			Carrier:     pickOne(g.rnd, carriers),
			DC:          pickOne(g.rnd, dcs),
			StopCount:   int64(1 + g.rnd.Intn(8)),
			PlannedDate: planned.Format("2006-01-02"),
			DepartDate:  planned.AddDate(0, 0, 1).Format("2006-01-02"),
			TotalUnits:  int64(100 + g.rnd.Intn(4000)),
			Status:      pickOne(g.rnd, []string{"PLANNED", "TENDERED", "DISPATCHED"}),
		})
	}
	return plans
}

func flag(value bool) int64 {
	if value {
		return 1
	}
	return 0
}

func pickOne(r *rand.Rand, values []string) string {
	return values[r.Intn(len(values))]
}
