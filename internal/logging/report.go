// Package logging handles generation of analysis reports for a batch of tracks

package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/linuxmatters/subsonic/internal/mains"
	"github.com/linuxmatters/subsonic/internal/processor"
)

// ============================================================================
// Energy Interpretation
// ============================================================================

// interpretRelative describes a track's subsonic energy as a share of the
// heaviest track in the same batch.
func interpretRelative(ratio float64) string {
	switch {
	case ratio >= 0.999:
		return "heaviest in batch"
	case ratio >= 0.5:
		return "strong low end"
	case ratio >= 0.2:
		return "moderate low end"
	case ratio >= 0.05:
		return "light low end"
	default:
		return "negligible low end"
	}
}

// relativeTo returns value/top, or 0 when there is no positive top
func relativeTo(value, top float64) float64 {
	if top <= 0 {
		return 0
	}
	return value / top
}

// =============================================================================
// Report
// =============================================================================

// writeSection writes a section header with title and dashed underline.
// The underline length matches the title length.
func writeSection(w io.Writer, title string) {
	fmt.Fprintln(w, title)
	fmt.Fprintln(w, strings.Repeat("-", len(title)))
}

// ReportData contains all the information needed to generate a batch report
type ReportData struct {
	StartTime time.Time
	EndTime   time.Time
	Config    processor.Config
	Batch     *processor.BatchResult
	MainsHz   int // 0 when unknown
}

// GenerateReport writes the batch report to path, replacing any existing file
func GenerateReport(path string, data ReportData) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create report file: %w", err)
	}
	defer f.Close()

	WriteReport(f, data)
	return f.Close()
}

// WriteReport renders the batch report.
//
// Report structure:
// 1. Header - timestamp and track counts
// 2. Analysis Settings - band, chunking, scale, mains hum
// 3. Processing Summary - timings
// 4. Ranked Results - energy table with relative interpretation
// 5. Track Details - source format per track
// 6. Failures - stage and cause per failed track
func WriteReport(w io.Writer, data ReportData) {
	batch := data.Batch
	if batch == nil {
		batch = &processor.BatchResult{}
	}

	writeReportHeader(w, data, batch)
	writeAnalysisSettings(w, data.Config, data.MainsHz)
	writeProcessingSummary(w, data, batch)
	writeResultsTable(w, batch.Results)
	writeTrackDetails(w, batch.Results)
	writeFailures(w, batch.Failures)
}

func writeReportHeader(w io.Writer, data ReportData, batch *processor.BatchResult) {
	fmt.Fprintln(w, "Subsonic Analysis Report")
	fmt.Fprintln(w, "========================")
	fmt.Fprintf(w, "Generated: %s\n", data.EndTime.Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintf(w, "Tracks:    %d analysed, %d failed\n", len(batch.Results), len(batch.Failures))
	fmt.Fprintln(w, "")
}

func writeAnalysisSettings(w io.Writer, cfg processor.Config, mainsHz int) {
	writeSection(w, "Analysis Settings")

	fmt.Fprintf(w, "Band:         %s\n", cfg.Range)
	fmt.Fprintf(w, "Chunk size:   %d samples (FFT %d)\n", cfg.ChunkSize, cfg.FFTSize())
	fmt.Fprintf(w, "Scale factor: %g\n", cfg.ScaleFactor)
	fmt.Fprintf(w, "Workers:      %d\n", cfg.Workers)

	if mainsHz > 0 {
		harmonics := mains.HarmonicsInBand(mainsHz, cfg.Range.LowerHz, cfg.Range.UpperHz)
		if len(harmonics) > 0 {
			fmt.Fprintf(w, "Mains:        %d Hz ⚠ hum at %s Hz falls inside the band\n", mainsHz, joinInts(harmonics))
		} else {
			fmt.Fprintf(w, "Mains:        %d Hz (outside band)\n", mainsHz)
		}
	}
	fmt.Fprintln(w, "")
}

func writeProcessingSummary(w io.Writer, data ReportData, batch *processor.BatchResult) {
	writeSection(w, "Processing Summary")

	var audioSecs float64
	for _, r := range batch.Results {
		audioSecs += r.DurationSeconds
	}

	elapsed := data.EndTime.Sub(data.StartTime)
	fmt.Fprintf(w, "Audio analysed: %s\n", formatDuration(time.Duration(audioSecs*float64(time.Second))))
	fmt.Fprintf(w, "Total:          %s", formatDuration(elapsed))
	if audioSecs > 0 && elapsed > 0 {
		rtf := audioSecs / elapsed.Seconds()
		fmt.Fprintf(w, " (%.0fx real-time)", rtf)
	}
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "")
}

func writeResultsTable(w io.Writer, results []processor.AnalysisResult) {
	writeSection(w, "Ranked Results")

	if len(results) == 0 {
		fmt.Fprintln(w, "No tracks analysed")
		fmt.Fprintln(w, "")
		return
	}

	top := results[0].ScaledEnergy
	table := NewMetricTable("Energy", "Normalized", "Raw", "Duration", "Relative")
	for i, r := range results {
		ratio := relativeTo(r.ScaledEnergy, top)
		table.AddRow(
			fmt.Sprintf("%d. %s", i+1, r.FileName),
			[]string{
				formatMetric(r.ScaledEnergy, 2),
				formatMetric(r.NormalizedEnergy, 4),
				formatMetric(r.RawEnergy, 4),
				formatDurationHMS(r.DurationSeconds),
				formatMetricPercent(ratio, 1),
			},
			"",
			interpretRelative(ratio),
		)
	}
	fmt.Fprint(w, table.String())
	fmt.Fprintln(w, "")
}

func writeTrackDetails(w io.Writer, results []processor.AnalysisResult) {
	if len(results) == 0 {
		return
	}
	writeSection(w, "Track Details")

	for _, r := range results {
		fmt.Fprintf(w, "%s\n", r.FileName)
		fmt.Fprintf(w, "  ID:          %s\n", r.TrackID)
		fmt.Fprintf(w, "  Sample rate: %d Hz\n", r.SampleRate)
		fmt.Fprintf(w, "  Channels:    %s\n", channelName(r.Channels))
		fmt.Fprintf(w, "  Duration:    %s\n", formatMetricWithUnit(r.DurationSeconds, 2, "s"))
		if r.Chunks == 0 {
			fmt.Fprintln(w, "  Chunks:      0 (shorter than one chunk, energy is zero)")
		} else {
			fmt.Fprintf(w, "  Chunks:      %d\n", r.Chunks)
		}
		if nyquist := float64(r.SampleRate) / 2; r.SampleRate > 0 && r.UpperFreq > nyquist {
			fmt.Fprintf(w, "  Note:        band clamped at Nyquist (%.0f Hz)\n", nyquist)
		}
	}
	fmt.Fprintln(w, "")
}

func writeFailures(w io.Writer, failures []processor.Failure) {
	if len(failures) == 0 {
		return
	}
	writeSection(w, "Failures")

	for _, f := range failures {
		fmt.Fprintf(w, "%s\n", f.Track.Name)
		fmt.Fprintf(w, "  Stage: %s\n", processor.FailedStage(f.Err))
		fmt.Fprintf(w, "  Error: %v\n", f.Err)
	}
	fmt.Fprintln(w, "")
}

// formatDuration formats a duration in a human-readable way
func formatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}

	minutes := int(d.Minutes())
	seconds := int(d.Seconds()) % 60

	if minutes < 60 {
		return fmt.Sprintf("%dm %ds", minutes, seconds)
	}

	hours := minutes / 60
	minutes = minutes % 60
	return fmt.Sprintf("%dh %dm %ds", hours, minutes, seconds)
}

// channelName returns a human-readable channel name
func channelName(channels int) string {
	switch channels {
	case 1:
		return "mono"
	case 2:
		return "stereo"
	default:
		return fmt.Sprintf("%d channels", channels)
	}
}

func joinInts(values []int) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = fmt.Sprint(v)
	}
	return strings.Join(parts, ", ")
}
