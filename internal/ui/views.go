package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/linuxmatters/subsonic/internal/mains"
	"github.com/linuxmatters/subsonic/internal/processor"
)

var (
	accentColor = lipgloss.Color("#5A2CA0")
	okColor     = lipgloss.Color("#00AA00")
	busyColor   = lipgloss.Color("#FFA500")
	failColor   = lipgloss.Color("#A40000")
	mutedColor  = lipgloss.Color("#888888")
)

// renderProcessingView renders the main processing view
func renderProcessingView(m Model) string {
	var b strings.Builder

	b.WriteString(renderHeader(m))
	b.WriteString("\n\n")

	b.WriteString(renderFileQueue(m))
	b.WriteString("\n")

	b.WriteString(renderOverallProgress(m))

	return b.String()
}

// renderHeader renders the application header
func renderHeader(m Model) string {
	title := lipgloss.NewStyle().
		Bold(true).
		Foreground(accentColor).
		Render("Subsonic 🔊 - Low-Frequency Energy Analyser")

	subtitle := lipgloss.NewStyle().
		Foreground(mutedColor).
		Italic(true).
		Render(fmt.Sprintf("Analysing %d file(s) | Band %s", m.TotalFiles, m.Band))

	header := title + "\n" + subtitle
	if warning := renderMainsWarning(m); warning != "" {
		header += "\n" + warning
	}
	return header
}

// renderMainsWarning flags local mains hum inside the analysis band
func renderMainsWarning(m Model) string {
	if m.MainsHz <= 0 {
		return ""
	}
	harmonics := mains.HarmonicsInBand(m.MainsHz, m.Band.LowerHz, m.Band.UpperHz)
	if len(harmonics) == 0 {
		return ""
	}
	parts := make([]string, len(harmonics))
	for i, h := range harmonics {
		parts[i] = fmt.Sprint(h)
	}
	return lipgloss.NewStyle().
		Foreground(busyColor).
		Render(fmt.Sprintf("⚠ Mains hum (%d Hz) at %s Hz is inside the band", m.MainsHz, strings.Join(parts, ", ")))
}

// renderFileQueue renders the list of files with their status
func renderFileQueue(m Model) string {
	var b strings.Builder

	for i, file := range m.Files {
		b.WriteString(renderFileEntry(file, i == m.CurrentIndex, spinnerFrames[m.spinnerIndex]))
		b.WriteString("\n")
	}

	return b.String()
}

// renderFileEntry renders a single file entry in the queue
func renderFileEntry(file FileProgress, active bool, spinner string) string {
	switch file.Status {
	case StatusComplete:
		icon := lipgloss.NewStyle().Foreground(okColor).Render("✓")
		summary := "   Analysed"
		if file.Result != nil {
			summary = fmt.Sprintf("   Energy: %.2f | Duration: %s",
				file.Result.ScaledEnergy, formatSeconds(file.Result.DurationSeconds))
		}
		return fmt.Sprintf(" %s %s\n%s", icon, file.Name, summary)

	case StatusError:
		icon := lipgloss.NewStyle().Foreground(failColor).Render("✗")
		if file.Error != nil {
			return fmt.Sprintf(" %s %s\n   Error: %v", icon, file.Name, file.Error)
		}
		return fmt.Sprintf(" %s %s\n   Failed", icon, file.Name)

	case StatusReading, StatusDecoding, StatusAnalysing:
		icon := lipgloss.NewStyle().Foreground(busyColor).Render(spinner)
		if !active {
			icon = lipgloss.NewStyle().Foreground(busyColor).Render("⚙")
		}
		return fmt.Sprintf(" %s %s\n%s", icon, file.Name, renderFileDetails(file))

	default:
		icon := lipgloss.NewStyle().Foreground(mutedColor).Render("○")
		return fmt.Sprintf(" %s %s\n   Queued...", icon, file.Name)
	}
}

// renderFileDetails renders detailed progress for the active file
func renderFileDetails(file FileProgress) string {
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(accentColor).
		Padding(0, 1).
		Width(60)

	var content strings.Builder

	content.WriteString(file.Status.String())
	content.WriteString("\n")
	content.WriteString(renderProgressBar(file.Percent, 40))
	content.WriteString("\n\n")

	elapsed := file.ElapsedTime.Seconds()
	var remaining float64
	if file.Percent > 0 {
		progress := float64(file.Percent) / 100
		remaining = (elapsed / progress) - elapsed
	}
	content.WriteString(fmt.Sprintf("⏱  Elapsed: %.1fs | Remaining: ~%.1fs", elapsed, remaining))

	return box.Render(content.String())
}

// renderProgressBar renders a progress bar for a 0-100 percent
func renderProgressBar(percent int, width int) string {
	percent = max(0, min(100, percent))
	filled := percent * width / 100
	empty := width - filled

	bar := strings.Repeat("█", filled) + strings.Repeat("░", empty)
	return fmt.Sprintf("%s %d%%", bar, percent)
}

// renderOverallProgress renders the overall progress footer
func renderOverallProgress(m Model) string {
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(mutedColor).
		Padding(0, 1).
		Width(60)

	var content string
	if m.CurrentIndex >= 0 && m.CurrentIndex < len(m.Files) {
		content = fmt.Sprintf("Analysing file %d of %d (%d complete, %d failed)",
			m.CurrentIndex+1, m.TotalFiles, m.CompletedFiles, m.FailedFiles)
	} else {
		content = fmt.Sprintf("Overall Progress: %d/%d complete", m.CompletedFiles, m.TotalFiles)
	}

	return box.Render(content)
}

// renderCompletionSummary renders the ranked results once the batch is done
func renderCompletionSummary(m Model) string {
	var b strings.Builder

	header := lipgloss.NewStyle().
		Bold(true).
		Foreground(okColor).
		Render("✨ Analysis Complete!")
	b.WriteString(header)
	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().Foreground(mutedColor).Render(fmt.Sprintf("Subsonic energy, %s", m.Band)))
	b.WriteString("\n\n")

	b.WriteString(renderRankedTable(m.Ranked))

	for _, file := range m.Files {
		if file.Status == StatusError {
			b.WriteString(renderFileEntry(file, false, ""))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(strings.Repeat("─", 60))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("%d analysed, %d failed\n", m.CompletedFiles, m.FailedFiles))
	switch {
	case m.ExportErr != nil:
		b.WriteString(lipgloss.NewStyle().Foreground(failColor).Render(fmt.Sprintf("CSV export failed: %v", m.ExportErr)))
		b.WriteString("\n")
	case m.ExportPath != "":
		b.WriteString(fmt.Sprintf("Results exported to %s\n", m.ExportPath))
	}

	return b.String()
}

// renderRankedTable renders results heaviest first
func renderRankedTable(results []processor.AnalysisResult) string {
	if len(results) == 0 {
		return lipgloss.NewStyle().Foreground(mutedColor).Render("No results") + "\n"
	}

	nameWidth := len("File")
	for _, r := range results {
		nameWidth = max(nameWidth, lipgloss.Width(r.FileName))
	}

	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(accentColor)
	var b strings.Builder
	b.WriteString(headerStyle.Render(fmt.Sprintf("%4s  %-*s  %12s  %10s", "#", nameWidth, "File", "Energy", "Duration")))
	b.WriteString("\n")

	for i, r := range results {
		row := fmt.Sprintf("%4d  %-*s  %12.2f  %10s", i+1, nameWidth, r.FileName, r.ScaledEnergy, formatSeconds(r.DurationSeconds))
		if i == 0 {
			row = lipgloss.NewStyle().Bold(true).Render(row)
		}
		b.WriteString(row)
		b.WriteString("\n")
	}
	return b.String()
}

// formatSeconds renders a duration as "12.34s" or "3:03.46"
func formatSeconds(seconds float64) string {
	if seconds < 60 {
		return fmt.Sprintf("%.2fs", seconds)
	}
	minutes := int(seconds) / 60
	return fmt.Sprintf("%d:%05.2f", minutes, seconds-float64(minutes*60))
}
