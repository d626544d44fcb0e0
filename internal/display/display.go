// Package display decides how a query result should be rendered. The
// classifier is heuristic: it inspects result shape and content, honors an
// upstream suggestion when one exists, and records the reason for its verdict.
package display

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/talkdata/talkdata/internal/nl2sql"
)

// Detection is recomputed on every render, never persisted.
type Detection struct {
	DisplayType nl2sql.DisplayType `json:"display_type"`
	ChartType   nl2sql.ChartType   `json:"chart_type,omitempty"`
	Confidence  float64            `json:"confidence"`
	Reason      string             `json:"reason"`
}

type columnKind int

const (
	kindLabel columnKind = iota
	kindNumeric
	kindDate
)

var isoDatePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}`)

// Detect picks a display mode for a result. Decision order, first applicable
// wins:
//  1. a non-error upstream suggestion
//  2. empty result -> text
//  3. single scalar -> text
//  4. single narrow row -> text
//  5. aggregation-shaped small result -> chart
//  6. multiple rows -> table
//  7. table fallback
func Detect(rows []map[string]any, columns []string, suggested nl2sql.DisplayType, suggestedChart nl2sql.ChartType) Detection {
	if suggested != "" && suggested != nl2sql.DisplayError {
		detection := Detection{
			DisplayType: suggested,
			Confidence:  0.9,
			Reason:      "upstream suggestion",
		}
		if suggested == nl2sql.DisplayChart {
			detection.ChartType = suggestedChart
			if detection.ChartType == "" {
				detection.ChartType = chartTypeFor(rows, columns)
			}
		}
		return detection
	}

	rowCount := len(rows)
	switch {
	case rowCount == 0:
		return Detection{DisplayType: nl2sql.DisplayText, Confidence: 1.0, Reason: "no results"}
	case rowCount == 1 && len(columns) == 1:
		return Detection{DisplayType: nl2sql.DisplayText, Confidence: 0.9, Reason: "scalar aggregate"}
	case rowCount == 1 && len(columns) <= 5:
		return Detection{DisplayType: nl2sql.DisplayText, Confidence: 0.8, Reason: "single entity detail"}
	}

	score := aggregationScore(rows, columns)
	if score > 0.7 && rowCount >= 2 && rowCount <= 20 {
		return Detection{
			DisplayType: nl2sql.DisplayChart,
			ChartType:   chartTypeFor(rows, columns),
			Confidence:  score,
			Reason:      "aggregation-shaped result",
		}
	}

	if rowCount > 1 {
		return Detection{DisplayType: nl2sql.DisplayTable, Confidence: 0.85, Reason: "multi-row result"}
	}
	return Detection{DisplayType: nl2sql.DisplayTable, Confidence: 0.7, Reason: "fallback"}
}

// ShouldShowDualView reports whether both a table and a chart rendering are
// appropriate. Presentation hint only.
func ShouldShowDualView(rows []map[string]any, columns []string) bool {
	rowCount := len(rows)
	return aggregationScore(rows, columns) > 0.5 && rowCount >= 3 && rowCount <= 30
}

// classifyColumn inspects non-null values: numeric when at least 80% parse as
// numbers, else date when at least 80% look like dates, else label. The
// fractions keep a few dirty cells from flipping the classification.
func classifyColumn(rows []map[string]any, column string) columnKind {
	total, numeric, date := 0, 0, 0
	for _, row := range rows {
		value, ok := row[column]
		if !ok || value == nil {
			continue
		}
		total++
		if isNumeric(value) {
			numeric++
		} else if isDateLike(value) {
			date++
		}
	}
	if total == 0 {
		return kindLabel
	}
	if float64(numeric)/float64(total) >= 0.8 {
		return kindNumeric
	}
	if float64(date)/float64(total) >= 0.8 {
		return kindDate
	}
	return kindLabel
}

func isNumeric(value any) bool {
	switch typed := value.(type) {
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		return true
	case json.Number:
		_, err := typed.Float64()
		return err == nil
	case string:
		_, err := strconv.ParseFloat(typed, 64)
		return err == nil
	default:
		return false
	}
}

func isDateLike(value any) bool {
	switch typed := value.(type) {
	case time.Time:
		return true
	case string:
		return isoDatePattern.MatchString(typed)
	default:
		return false
	}
}

// aggregationScore rewards the "one dimension plus measures" shape typical of
// GROUP BY results. Clamped to [0, 1].
func aggregationScore(rows []map[string]any, columns []string) float64 {
	labels, numerics := 0, 0
	for _, column := range columns {
		switch classifyColumn(rows, column) {
		case kindNumeric:
			numerics++
		case kindLabel:
			labels++
		}
	}

	score := 0.0
	if labels == 1 && numerics >= 1 {
		score += 0.4
	}
	if anyColumnHasAggregationKeyword(columns) {
		score += 0.3
	}
	rowCount := len(rows)
	switch {
	case rowCount >= 2 && rowCount <= 15:
		score += 0.2
	case rowCount > 15 && rowCount <= 30:
		score += 0.1
	}
	if len(columns) > 4 {
		score -= 0.2
	}

	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}

var aggregationKeywords = []string{"count", "sum", "avg", "average", "total", "min", "max"}

func anyColumnHasAggregationKeyword(columns []string) bool {
	for _, column := range columns {
		lowered := strings.ToLower(column)
		for _, keyword := range aggregationKeywords {
			if strings.Contains(lowered, keyword) {
				return true
			}
		}
	}
	return false
}

// chartTypeFor picks a subtype: dates mean a time series, a single small
// non-negative numeric column means proportions, multiple measures stack as
// an area chart, everything else is a bar chart.
func chartTypeFor(rows []map[string]any, columns []string) nl2sql.ChartType {
	var numericColumns []string
	for _, column := range columns {
		switch classifyColumn(rows, column) {
		case kindDate:
			return nl2sql.ChartLine
		case kindNumeric:
			numericColumns = append(numericColumns, column)
		}
	}

	if len(numericColumns) == 1 && len(rows) <= 8 && allNonNegativeWithPositiveSum(rows, numericColumns[0]) {
		return nl2sql.ChartPie
	}
	if len(numericColumns) > 1 {
		return nl2sql.ChartArea
	}
	return nl2sql.ChartBar
}

func allNonNegativeWithPositiveSum(rows []map[string]any, column string) bool {
	sum := 0.0
	for _, row := range rows {
		value, ok := numericValue(row[column])
		if !ok {
			continue
		}
		if value < 0 {
			return false
		}
		sum += value
	}
	return sum > 0
}

func numericValue(value any) (float64, bool) {
	switch typed := value.(type) {
	case int:
		return float64(typed), true
	case int8:
		return float64(typed), true
	case int16:
		return float64(typed), true
	case int32:
		return float64(typed), true
	case int64:
		return float64(typed), true
	case uint:
		return float64(typed), true
	case uint8:
		return float64(typed), true
	case uint16:
		return float64(typed), true
	case uint32:
		return float64(typed), true
	case uint64:
		return float64(typed), true
	case float32:
		return float64(typed), true
	case float64:
		return typed, true
	case json.Number:
		parsed, err := typed.Float64()
		return parsed, err == nil
	case string:
		parsed, err := strconv.ParseFloat(typed, 64)
		return parsed, err == nil
	default:
		return 0, false
	}
}
