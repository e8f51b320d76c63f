// Package logging provides the debug logger and the plain-text result
// reports. This file contains reusable table formatting infrastructure for
// multi-column metric tables (Scaled, Normalized, Raw, ...).

package logging

import (
	"fmt"
	"math"
	"strings"
)

// MetricRow represents a single row in a table.
// Values are pre-formatted strings to allow for mixed formatting (decimals, scientific notation).
type MetricRow struct {
	Label          string   // Row label, e.g., "1. bassline.mp3"
	Values         []string // One value per column
	Unit           string   // Unit suffix, e.g., "s", "Hz", "" for unitless
	Interpretation string   // Optional interpretation text (only shown if non-empty)
}

// MetricTable formats aligned columns for metric comparison.
// Handles variable column widths, missing values, and optional interpretation column.
type MetricTable struct {
	Headers []string    // Column headers, e.g., ["Scaled", "Normalized", "Raw"]
	Rows    []MetricRow // Data rows
}

// String renders the table with aligned columns.
// - Labels are left-aligned
// - Numeric values are right-aligned within their column
// - Units are appended after the last value column
// - Interpretation column only shown if any row has one
func (t *MetricTable) String() string {
	if len(t.Rows) == 0 {
		return ""
	}

	hasInterpretation := false
	for _, row := range t.Rows {
		if row.Interpretation != "" {
			hasInterpretation = true
			break
		}
	}

	labelWidth := 0
	for _, row := range t.Rows {
		labelWidth = max(labelWidth, len(row.Label))
	}

	// Value column widths start at header width
	valueWidths := make([]int, len(t.Headers))
	for i, header := range t.Headers {
		valueWidths[i] = len(header)
	}
	for _, row := range t.Rows {
		for i, val := range row.Values {
			if i < len(valueWidths) && len(val) > valueWidths[i] {
				valueWidths[i] = len(val)
			}
		}
	}

	unitWidth := 0
	for _, row := range t.Rows {
		unitWidth = max(unitWidth, len(row.Unit))
	}

	var sb strings.Builder

	// Header row
	sb.WriteString(strings.Repeat(" ", labelWidth+2))
	for i, header := range t.Headers {
		sb.WriteString(fmt.Sprintf("%*s  ", valueWidths[i], header))
	}
	if unitWidth > 0 {
		sb.WriteString(strings.Repeat(" ", unitWidth+1))
	}
	if hasInterpretation {
		sb.WriteString("Interpretation")
	}
	sb.WriteString("\n")

	for _, row := range t.Rows {
		sb.WriteString(fmt.Sprintf("%-*s  ", labelWidth, row.Label))

		for i := 0; i < len(t.Headers); i++ {
			val := MissingValue
			if i < len(row.Values) && row.Values[i] != "" {
				val = row.Values[i]
			}
			sb.WriteString(fmt.Sprintf("%*s  ", valueWidths[i], val))
		}

		if unitWidth > 0 {
			sb.WriteString(fmt.Sprintf("%-*s ", unitWidth, row.Unit))
		}
		if hasInterpretation {
			sb.WriteString(row.Interpretation)
		}

		sb.WriteString("\n")
	}

	return sb.String()
}

// =============================================================================
// Metric Formatting Helpers
// =============================================================================

// MissingValue is the placeholder for unavailable measurements
const MissingValue = "-"

// formatMetric formats a numeric value with appropriate precision.
// Handles:
// - Regular floats: formatted to specified decimal places
// - Very small values (< 0.0001): scientific notation
// - NaN/Inf: returns MissingValue
func formatMetric(value float64, decimals int) string {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return MissingValue
	}

	// Raw band energies are routinely far below a millionth
	if value != 0 && math.Abs(value) < 0.0001 {
		return fmt.Sprintf("%.2e", value)
	}

	return fmt.Sprintf("%.*f", decimals, value)
}

// formatMetricPercent formats a 0-1 ratio as a percentage
func formatMetricPercent(ratio float64, decimals int) string {
	if math.IsNaN(ratio) || math.IsInf(ratio, 0) {
		return MissingValue
	}
	return fmt.Sprintf("%.*f%%", decimals, ratio*100)
}

// formatMetricWithUnit combines value and unit for display.
// Returns "value unit" if unit is non-empty, otherwise just "value".
func formatMetricWithUnit(value float64, decimals int, unit string) string {
	formatted := formatMetric(value, decimals)
	if formatted == MissingValue || unit == "" {
		return formatted
	}
	return formatted + " " + unit
}

// =============================================================================
// Table Builder Helpers
// =============================================================================

// NewMetricTable creates a new MetricTable with the given column headers.
func NewMetricTable(headers ...string) *MetricTable {
	return &MetricTable{
		Headers: headers,
		Rows:    make([]MetricRow, 0),
	}
}

// AddRow adds a row to the table with pre-formatted values.
func (t *MetricTable) AddRow(label string, values []string, unit string, interpretation string) {
	t.Rows = append(t.Rows, MetricRow{
		Label:          label,
		Values:         values,
		Unit:           unit,
		Interpretation: interpretation,
	})
}

// AddMetricRow adds a row with numeric values, formatting them automatically.
// Pass math.NaN() for missing values - they will display as "-".
func (t *MetricTable) AddMetricRow(label string, values []float64, decimals int, unit string, interpretation string) {
	formatted := make([]string, len(values))
	for i, v := range values {
		formatted[i] = formatMetric(v, decimals)
	}
	t.AddRow(label, formatted, unit, interpretation)
}
