// Package logging handles generation of analysis reports for a batch of tracks.
// This file provides console display for --plain mode.

package logging

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/linuxmatters/subsonic/internal/processor"
)

// DisplayResults writes the ranked results table to the console.
// Energy and duration use the same two-decimal precision as the CSV export.
func DisplayResults(w io.Writer, results []processor.AnalysisResult, band processor.FrequencyRange) {
	fmt.Fprintln(w, strings.Repeat("=", 70))
	fmt.Fprintf(w, "SUBSONIC ENERGY (%s)\n", band)
	fmt.Fprintln(w, strings.Repeat("=", 70))

	if len(results) == 0 {
		fmt.Fprintln(w, "No results")
		return
	}

	table := NewMetricTable("Energy", "Duration")
	for i, r := range results {
		table.AddRow(
			fmt.Sprintf("%d. %s", i+1, r.FileName),
			[]string{formatMetric(r.ScaledEnergy, 2), formatDurationHMS(r.DurationSeconds)},
			"",
			"",
		)
	}
	fmt.Fprint(w, table.String())
}

// DisplayFailures lists tracks that produced no result
func DisplayFailures(w io.Writer, failures []processor.Failure) {
	if len(failures) == 0 {
		return
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "FAILED (%d)\n", len(failures))
	for _, f := range failures {
		fmt.Fprintf(w, "  %s: %s stage: %v\n", f.Track.Name, processor.FailedStage(f.Err), f.Err)
	}
}

// PlainReporter prints line-oriented progress for terminals without a TUI.
// A line is written whenever a track enters a new 10% step, completes or fails.
type PlainReporter struct {
	mu    sync.Mutex
	w     io.Writer
	names map[processor.TrackID]string
	last  map[processor.TrackID]int
}

// NewPlainReporter prints progress for tracks to w
func NewPlainReporter(w io.Writer, tracks []processor.Track) *PlainReporter {
	names := make(map[processor.TrackID]string, len(tracks))
	for _, t := range tracks {
		names[t.ID()] = t.Name
	}
	return &PlainReporter{
		w:     w,
		names: names,
		last:  make(map[processor.TrackID]int),
	}
}

// Report implements processor.Reporter
func (r *PlainReporter) Report(id processor.TrackID, percent int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	name, ok := r.names[id]
	if !ok {
		name = string(id)
	}

	step := percent / 10
	if prev, seen := r.last[id]; seen && prev == step && percent != processor.ProgressDone && percent != processor.ProgressFailed {
		return
	}
	r.last[id] = step

	switch percent {
	case processor.ProgressQueued:
		// Queued tracks are listed once by the caller
	case processor.ProgressFailed:
		fmt.Fprintf(r.w, "[FAIL] %s\n", name)
	default:
		fmt.Fprintf(r.w, "[%3d%%] %s\n", percent, name)
	}
}

// formatDurationHMS formats duration as "Xh Ym Zs" or "Ym Zs" or "Z.Xs".
func formatDurationHMS(seconds float64) string {
	if seconds < 60 {
		return fmt.Sprintf("%.2fs", seconds)
	}

	totalSeconds := int(seconds)
	hours := totalSeconds / 3600
	minutes := (totalSeconds % 3600) / 60
	secs := totalSeconds % 60

	if hours > 0 {
		return fmt.Sprintf("%dh %dm %ds", hours, minutes, secs)
	}
	return fmt.Sprintf("%dm %ds", minutes, secs)
}
