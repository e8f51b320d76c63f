package logging

import (
	"math"
	"strings"
	"testing"
)

func TestFormatMetric(t *testing.T) {
	tests := []struct {
		name     string
		value    float64
		decimals int
		want     string
	}{
		{"zero", 0.0, 2, "0.00"},
		{"positive", 3.14159, 2, "3.14"},
		{"negative", -16.5, 1, "-16.5"},
		{"large", 12345.6789, 2, "12345.68"},
		{"small_normal", 0.001, 3, "0.001"},
		{"very_small_scientific", 0.00001, 2, "1.00e-05"},
		{"very_small_negative", -0.00001, 2, "-1.00e-05"},
		{"nan", math.NaN(), 2, MissingValue},
		{"positive_inf", math.Inf(1), 2, MissingValue},
		{"negative_inf", math.Inf(-1), 2, MissingValue},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := formatMetric(tt.value, tt.decimals)
			if got != tt.want {
				t.Errorf("formatMetric(%v, %d) = %q, want %q", tt.value, tt.decimals, got, tt.want)
			}
		})
	}
}

func TestFormatMetricPercent(t *testing.T) {
	tests := []struct {
		name  string
		ratio float64
		want  string
	}{
		{"whole", 1, "100.0%"},
		{"half", 0.5, "50.0%"},
		{"zero", 0, "0.0%"},
		{"nan", math.NaN(), MissingValue},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := formatMetricPercent(tt.ratio, 1); got != tt.want {
				t.Errorf("formatMetricPercent(%v, 1) = %q, want %q", tt.ratio, got, tt.want)
			}
		})
	}
}

func TestFormatMetricWithUnit(t *testing.T) {
	tests := []struct {
		name     string
		value    float64
		decimals int
		unit     string
		want     string
	}{
		{"with_unit", 183.456, 2, "s", "183.46 s"},
		{"no_unit", 1234.5, 1, "", "1234.5"},
		{"nan_with_unit", math.NaN(), 1, "Hz", MissingValue},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := formatMetricWithUnit(tt.value, tt.decimals, tt.unit)
			if got != tt.want {
				t.Errorf("formatMetricWithUnit(%v, %d, %q) = %q, want %q", tt.value, tt.decimals, tt.unit, got, tt.want)
			}
		})
	}
}

func TestMetricTableString(t *testing.T) {
	t.Run("basic_columns", func(t *testing.T) {
		table := NewMetricTable("Energy", "Duration")
		table.AddRow("1. deep.mp3", []string{"1234.57", "3m 3s"}, "", "")
		table.AddRow("2. thin.mp3", []string{"0.12", "45.00s"}, "", "")

		output := table.String()

		for _, want := range []string{"Energy", "Duration", "1. deep.mp3", "1234.57", "45.00s"} {
			if !strings.Contains(output, want) {
				t.Errorf("Output should contain %q:\n%s", want, output)
			}
		}
	})

	t.Run("with_interpretation", func(t *testing.T) {
		table := NewMetricTable("Energy")
		table.AddRow("1. deep.mp3", []string{"10.00"}, "", "heaviest in batch")

		output := table.String()

		if !strings.Contains(output, "Interpretation") {
			t.Error("Output should contain 'Interpretation' header when rows have interpretations")
		}
		if !strings.Contains(output, "heaviest in batch") {
			t.Error("Output should contain interpretation text")
		}
	})

	t.Run("missing_values", func(t *testing.T) {
		table := NewMetricTable("Energy", "Normalized", "Raw")
		table.AddRow("Test", []string{"10.0", ""}, "", "")

		output := table.String()

		if !strings.Contains(output, " -  ") {
			t.Error("Missing values should display as dash")
		}
	})

	t.Run("empty_table", func(t *testing.T) {
		table := NewMetricTable("Energy")
		if output := table.String(); output != "" {
			t.Errorf("Empty table should return empty string, got %q", output)
		}
	})

	t.Run("add_metric_row_with_nan", func(t *testing.T) {
		table := NewMetricTable("A", "B", "C")
		table.AddMetricRow("Test", []float64{-23.5, math.NaN(), 0.5}, 1, "Hz", "")

		lines := strings.Split(table.String(), "\n")
		if len(lines) < 2 {
			t.Fatal("Expected at least 2 lines (header + data)")
		}
		dataLine := lines[1]
		if !strings.Contains(dataLine, "-23.5") || !strings.Contains(dataLine, "0.5") {
			t.Errorf("values missing from %q", dataLine)
		}
		if !strings.Contains(dataLine, " -  ") {
			t.Errorf("NaN value should display as dash in: %q", dataLine)
		}
		if !strings.Contains(dataLine, "Hz") {
			t.Errorf("unit missing from %q", dataLine)
		}
	})
}

func TestMetricTableAlignment(t *testing.T) {
	table := NewMetricTable("Energy", "Duration")
	table.AddRow("1. a.mp3", []string{"1.00", "1.00s"}, "", "")
	table.AddRow("2. a much longer name.mp3", []string{"100.00", "10m 0s"}, "", "")

	lines := strings.Split(strings.TrimRight(table.String(), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("Expected 3 lines (header + 2 data), got %d", len(lines))
	}

	// Right-aligned columns end at the same offset on every line
	for i := 1; i < len(lines); i++ {
		if len(lines[i]) != len(lines[0]) {
			t.Errorf("line %d has width %d, header has %d:\n%s", i, len(lines[i]), len(lines[0]), table.String())
		}
	}
}
