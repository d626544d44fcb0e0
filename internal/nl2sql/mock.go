package nl2sql

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// MockConverter answers questions from hand-written query templates. It is
// pure and total: the same question always yields the same result, and no
// question ever fails. It backs mock mode and the fallback path when the
// conversion service is unreachable.
type MockConverter struct{}

func NewMockConverter() *MockConverter {
	return &MockConverter{}
}

// templateRule pairs a match predicate with a result builder. Rules are
// evaluated in declaration order and the first match wins, so narrower rules
// must stay ahead of broader ones ("orders over N units" before the "orders"
// catch-all). Do not reorder or convert to a map.
type templateRule struct {
	name  string
	match func(question string) bool
	build func(question string) Result
}

var numberPattern = regexp.MustCompile(`\b(\d+)\b`)
var overUnitsPattern = regexp.MustCompile(`over\s+(\d+)\s+units?`)

var templateRules = []templateRule{
	{
		name:  "orders_on_hold_count",
		match: containsAll("how many", "hold"),
		build: func(string) Result {
			return Result{
				SQL:         "SELECT COUNT(*) AS orders_on_hold FROM dc_order_lines WHERE hold_applied_flag = 1",
				Confidence:  0.95,
				Explanation: "Counts open order lines that currently have a hold applied.",
				DisplayType: DisplayText,
			}
		},
	},
	{
		name:  "held_orders",
		match: containsAny("hold", "held"),
		build: func(string) Result {
			return Result{
				SQL: "SELECT order_number, ordered_item, sold_to, dc, line_status, ordered_qty " +
					"FROM dc_order_lines WHERE hold_applied_flag = 1 ORDER BY ordered_date DESC LIMIT 50",
				Confidence:  0.85,
				Explanation: "Lists open order lines with an active hold, newest first.",
				DisplayType: DisplayTable,
			}
		},
	},
	{
		name:  "top_customers",
		match: containsAll("top", "customer"),
		build: func(question string) Result {
			n := firstNumber(question, 10)
			return Result{
				SQL: fmt.Sprintf("SELECT sold_to AS customer, SUM(ordered_qty) AS total_units "+
					"FROM dc_order_lines GROUP BY sold_to ORDER BY total_units DESC LIMIT %d", n),
				Confidence:  0.9,
				Explanation: fmt.Sprintf("Ranks the top %d customers by total ordered units.", n),
				DisplayType: DisplayChart,
				ChartType:   ChartBar,
			}
		},
	},
	{
		name: "routed_percentage",
		match: func(question string) bool {
			return (strings.Contains(question, "percent") || strings.Contains(question, "%")) &&
				strings.Contains(question, "rout")
		},
		build: func(string) Result {
			return Result{
				SQL: "SELECT ROUND(100.0 * SUM(CASE WHEN routed_flag = 1 THEN 1 ELSE 0 END) / COUNT(*), 1) " +
					"AS routed_pct FROM dc_order_lines",
				Confidence:  0.9,
				Explanation: "Share of open order lines already sent to the routing system.",
				DisplayType: DisplayText,
			}
		},
	},
	{
		name: "orders_over_units",
		match: func(question string) bool {
			return overUnitsPattern.MatchString(question)
		},
		build: func(question string) Result {
			n := 100
			if m := overUnitsPattern.FindStringSubmatch(question); len(m) == 2 {
				if parsed, err := strconv.Atoi(m[1]); err == nil {
					n = parsed
				}
			}
			return Result{
				SQL: fmt.Sprintf("SELECT order_number, ordered_item, sold_to, ordered_qty "+
					"FROM dc_order_lines WHERE ordered_qty > %d ORDER BY ordered_qty DESC LIMIT 50", n),
				Confidence:  0.85,
				Explanation: fmt.Sprintf("Order lines with more than %d units, largest first.", n),
				DisplayType: DisplayTable,
			}
		},
	},
	{
		name:  "status_breakdown",
		match: containsAny("status", "breakdown"),
		build: func(string) Result {
			return Result{
				SQL: "SELECT line_status AS status, COUNT(*) AS order_count " +
					"FROM dc_order_lines GROUP BY line_status ORDER BY order_count DESC",
				Confidence:  0.85,
				Explanation: "Open order lines grouped by line status.",
				DisplayType: DisplayChart,
				ChartType:   ChartPie,
			}
		},
	},
	{
		name:  "daily_volume",
		match: containsAny("per day", "by day", "daily", "trend", "over time"),
		build: func(string) Result {
			return Result{
				SQL: "SELECT schedule_ship_date AS ship_date, SUM(ordered_qty) AS total_units " +
					"FROM dc_order_lines GROUP BY schedule_ship_date ORDER BY ship_date",
				Confidence:  0.8,
				Explanation: "Scheduled ship volume by day.",
				DisplayType: DisplayChart,
				ChartType:   ChartLine,
			}
		},
	},
	{
		name:  "route_plans",
		match: containsAny("route", "trip", "carrier"),
		build: func(string) Result {
			return Result{
				SQL: "SELECT route_id, carrier, dc, stop_count, total_units, status " +
					"FROM route_plans ORDER BY planned_date DESC LIMIT 50",
				Confidence:  0.8,
				Explanation: "Most recently planned routes.",
				DisplayType: DisplayTable,
			}
		},
	},
	{
		name:  "recent_orders",
		match: containsAny("order"),
		build: func(string) Result {
			return Result{
				SQL: "SELECT order_number, ordered_item, sold_to, dc, line_status, ordered_qty, ordered_date " +
					"FROM dc_order_lines ORDER BY ordered_date DESC LIMIT 25",
				Confidence:  0.75,
				Explanation: "Most recent open order lines.",
				DisplayType: DisplayTable,
			}
		},
	},
}

func (c *MockConverter) Convert(_ context.Context, req Request) (Result, error) {
	question := strings.ToLower(strings.TrimSpace(req.Question))
	for _, rule := range templateRules {
		if rule.match(question) {
			return rule.build(question), nil
		}
	}
	return Result{
		SQL:         "SELECT * FROM dc_order_lines ORDER BY ordered_date DESC LIMIT 20",
		Confidence:  0.6,
		Explanation: "No template matched this question, showing the most recent order lines. Try asking about holds, top customers, routing, or order volume.",
		DisplayType: DisplayTable,
	}, nil
}

// CorrectSQL performs a trivial local rewrite: it strips trailing semicolons
// and bounds unbounded statements with a LIMIT. Confidence is deliberately
// low; a real repair needs the conversion service.
func (c *MockConverter) CorrectSQL(_ context.Context, req CorrectionRequest) (Correction, error) {
	sqlText := strings.TrimSpace(req.SQL)
	for strings.HasSuffix(sqlText, ";") {
		sqlText = strings.TrimSpace(strings.TrimSuffix(sqlText, ";"))
	}
	if !strings.Contains(strings.ToUpper(sqlText), "LIMIT") {
		sqlText += " LIMIT 100"
	}
	return Correction{SQL: sqlText, Confidence: 0.3}, nil
}

func containsAll(parts ...string) func(string) bool {
	return func(question string) bool {
		for _, part := range parts {
			if !strings.Contains(question, part) {
				return false
			}
		}
		return true
	}
}

func containsAny(parts ...string) func(string) bool {
	return func(question string) bool {
		for _, part := range parts {
			if strings.Contains(question, part) {
				return true
			}
		}
		return false
	}
}

func firstNumber(question string, fallback int) int {
	match := numberPattern.FindStringSubmatch(question)
	if len(match) != 2 {
		return fallback
	}
	value, err := strconv.Atoi(match[1])
	if err != nil || value <= 0 {
		return fallback
	}
	return value
}
