package display

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/talkdata/talkdata/internal/nl2sql"
)

func TestDetectStatusCountsAsPieChart(t *testing.T) {
	rows := []map[string]any{
		{"status": "A", "count": int64(10)},
		{"status": "B", "count": int64(5)},
		{"status": "C", "count": int64(3)},
	}
	detection := Detect(rows, []string{"status", "count"}, "", "")

	assert.Equal(t, nl2sql.DisplayChart, detection.DisplayType)
	assert.Equal(t, nl2sql.ChartPie, detection.ChartType)
	assert.Greater(t, detection.Confidence, 0.7)
}

func TestDetectHonorsUpstreamSuggestion(t *testing.T) {
	rows := []map[string]any{{"a": int64(1)}, {"a": int64(2)}}

	detection := Detect(rows, []string{"a"}, nl2sql.DisplayText, "")
	assert.Equal(t, nl2sql.DisplayText, detection.DisplayType)
	assert.InDelta(t, 0.9, detection.Confidence, 0.001)

	// A chart suggestion without a chart type gets one computed.
	detection = Detect(rows, []string{"a"}, nl2sql.DisplayChart, "")
	assert.Equal(t, nl2sql.DisplayChart, detection.DisplayType)
	assert.NotEmpty(t, detection.ChartType)

	// An error suggestion is ignored and classification proceeds.
	detection = Detect(nil, nil, nl2sql.DisplayError, "")
	assert.Equal(t, nl2sql.DisplayText, detection.DisplayType)
	assert.InDelta(t, 1.0, detection.Confidence, 0.001)
}

func TestDetectEmptyResultIsText(t *testing.T) {
	detection := Detect(nil, []string{"a", "b"}, "", "")
	assert.Equal(t, nl2sql.DisplayText, detection.DisplayType)
	assert.InDelta(t, 1.0, detection.Confidence, 0.001)
	assert.Equal(t, "no results", detection.Reason)
}

func TestDetectScalarAggregateIsText(t *testing.T) {
	rows := []map[string]any{{"orders_on_hold": int64(12)}}
	detection := Detect(rows, []string{"orders_on_hold"}, "", "")
	assert.Equal(t, nl2sql.DisplayText, detection.DisplayType)
	assert.InDelta(t, 0.9, detection.Confidence, 0.001)
}

func TestDetectSingleNarrowRowIsText(t *testing.T) {
	rows := []map[string]any{{
		"order_number": "SO-1", "sold_to": "ACME", "dc": "DC1", "line_status": "BOOKED",
	}}
	detection := Detect(rows, []string{"order_number", "sold_to", "dc", "line_status"}, "", "")
	assert.Equal(t, nl2sql.DisplayText, detection.DisplayType)
	assert.InDelta(t, 0.8, detection.Confidence, 0.001)
}

func TestDetectWideResultIsTable(t *testing.T) {
	rows := []map[string]any{
		{"a": "x", "b": "y", "c": "z", "d": "w", "e": int64(1), "f": int64(2)},
		{"a": "x2", "b": "y2", "c": "z2", "d": "w2", "e": int64(3), "f": int64(4)},
	}
	detection := Detect(rows, []string{"a", "b", "c", "d", "e", "f"}, "", "")
	assert.Equal(t, nl2sql.DisplayTable, detection.DisplayType)
	assert.InDelta(t, 0.85, detection.Confidence, 0.001)
}

func TestChartTypeDateColumnMeansLine(t *testing.T) {
	rows := []map[string]any{
		{"ship_date": "2026-08-01", "total_units": int64(120)},
		{"ship_date": "2026-08-02", "total_units": int64(95)},
		{"ship_date": "2026-08-03", "total_units": int64(140)},
	}
	assert.Equal(t, nl2sql.ChartLine, chartTypeFor(rows, []string{"ship_date", "total_units"}))

	// Native time values classify the same way.
	rows = []map[string]any{
		{"d": time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC), "v": int64(1)},
		{"d": time.Date(2026, 8, 2, 0, 0, 0, 0, time.UTC), "v": int64(2)},
	}
	assert.Equal(t, nl2sql.ChartLine, chartTypeFor(rows, []string{"d", "v"}))
}

func TestChartTypeMultipleMeasuresMeansArea(t *testing.T) {
	rows := []map[string]any{
		{"dc": "DC1", "ordered": int64(10), "reserved": int64(8)},
		{"dc": "DC2", "ordered": int64(20), "reserved": int64(15)},
	}
	assert.Equal(t, nl2sql.ChartArea, chartTypeFor(rows, []string{"dc", "ordered", "reserved"}))
}

func TestChartTypeNegativeValuesFallBackToBar(t *testing.T) {
	rows := []map[string]any{
		{"dc": "DC1", "delta": int64(-3)},
		{"dc": "DC2", "delta": int64(5)},
	}
	assert.Equal(t, nl2sql.ChartBar, chartTypeFor(rows, []string{"dc", "delta"}))
}

func TestClassifyColumnToleratesDirtyCells(t *testing.T) {
	rows := []map[string]any{
		{"qty": int64(1)}, {"qty": int64(2)}, {"qty": int64(3)},
		{"qty": int64(4)}, {"qty": "n/a"},
	}
	assert.Equal(t, kindNumeric, classifyColumn(rows, "qty"))

	rows = []map[string]any{
		{"qty": "n/a"}, {"qty": "n/a"}, {"qty": int64(3)},
	}
	assert.Equal(t, kindLabel, classifyColumn(rows, "qty"))
}

func TestAggregationScoreClamps(t *testing.T) {
	rows := []map[string]any{
		{"status": "A", "count": int64(10)},
		{"status": "B", "count": int64(5)},
	}
	score := aggregationScore(rows, []string{"status", "count"})
	assert.InDelta(t, 0.9, score, 0.001)

	assert.GreaterOrEqual(t, aggregationScore(nil, nil), 0.0)
	assert.LessOrEqual(t, score, 1.0)
}

func TestShouldShowDualView(t *testing.T) {
	rows := []map[string]any{
		{"status": "A", "count": int64(10)},
		{"status": "B", "count": int64(5)},
		{"status": "C", "count": int64(3)},
	}
	assert.True(t, ShouldShowDualView(rows, []string{"status", "count"}))

	// Too few rows for a dual rendering.
	assert.False(t, ShouldShowDualView(rows[:2], []string{"status", "count"}))
}
