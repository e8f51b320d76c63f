// Package export writes analysis results to spreadsheet-friendly files.
package export

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/linuxmatters/subsonic/internal/processor"
)

// CSVHeader is the first line of every export
const CSVHeader = "file_name,subsonic_energy,duration_seconds,lower_freq,upper_freq"

// WriteCSV writes results in the order given, one row per result.
// File names are always quoted; energy and duration use two decimals.
func WriteCSV(w io.Writer, results []processor.AnalysisResult) error {
	bw := bufio.NewWriter(w)
	if _, err := fmt.Fprintln(bw, CSVHeader); err != nil {
		return err
	}
	for _, r := range results {
		if _, err := fmt.Fprintf(bw, "%s,%.2f,%.2f,%s,%s\n",
			quote(r.FileName),
			r.ScaledEnergy,
			r.DurationSeconds,
			formatHz(r.LowerFreq),
			formatHz(r.UpperFreq),
		); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// SaveCSV writes results to path, replacing any existing file
func SaveCSV(path string, results []processor.AnalysisResult) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := WriteCSV(f, results); err != nil {
		f.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return f.Close()
}

// quote wraps s in double quotes, doubling any embedded quote (RFC 4180)
func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// formatHz prints a bound the way it was configured: 20, 150, 20.5
func formatHz(hz float64) string {
	return strconv.FormatFloat(hz, 'f', -1, 64)
}
