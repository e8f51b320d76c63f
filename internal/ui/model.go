// Package ui provides the Bubbletea terminal user interface for subsonic
package ui

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/linuxmatters/subsonic/internal/processor"
	"go.uber.org/zap"
)

// Spinner frames for tracks waiting on the decoder
var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// FileStatus represents the processing state of a single file
type FileStatus int

const (
	StatusQueued FileStatus = iota
	StatusReading
	StatusDecoding
	StatusAnalysing
	StatusComplete
	StatusError
)

// StatusForPercent maps pipeline progress onto the stage being worked on
func StatusForPercent(percent int) FileStatus {
	switch {
	case percent == processor.ProgressFailed:
		return StatusError
	case percent >= processor.ProgressDone:
		return StatusComplete
	case percent >= processor.ProgressDecoded:
		return StatusAnalysing
	case percent >= processor.ProgressReadDone:
		return StatusDecoding
	case percent > processor.ProgressQueued:
		return StatusReading
	default:
		return StatusQueued
	}
}

// String names the stage for display
func (s FileStatus) String() string {
	switch s {
	case StatusReading:
		return "Reading"
	case StatusDecoding:
		return "Decoding"
	case StatusAnalysing:
		return "Analysing spectrum"
	case StatusComplete:
		return "Complete"
	case StatusError:
		return "Failed"
	default:
		return "Queued"
	}
}

// FileProgress tracks progress for a single audio file
type FileProgress struct {
	Name   string
	ID     processor.TrackID
	Status FileStatus

	// Progress tracking (percentage-based)
	Percent     int
	StartTime   time.Time
	ElapsedTime time.Duration

	Result *processor.AnalysisResult
	Error  error
}

// Model is the Bubbletea model for the analysis UI
type Model struct {
	// File queue
	Files          []FileProgress
	CurrentIndex   int
	TotalFiles     int
	CompletedFiles int
	FailedFiles    int

	// Analysis settings shown in the header
	Band    processor.FrequencyRange
	MainsHz int

	// Ranked results, set on completion
	Ranked     []processor.AnalysisResult
	ExportPath string
	ExportErr  error

	// Global state
	StartTime    time.Time
	Done         bool
	spinnerIndex int

	// Terminal dimensions
	Width  int
	Height int

	logger *zap.SugaredLogger
}

// NewModel creates a new UI model for tracks. mainsHz of 0 hides the hum warning.
func NewModel(tracks []processor.Track, band processor.FrequencyRange, mainsHz int, logger *zap.SugaredLogger) Model {
	files := make([]FileProgress, len(tracks))
	for i, t := range tracks {
		files[i] = FileProgress{
			Name:   t.Name,
			ID:     t.ID(),
			Status: StatusQueued,
		}
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	return Model{
		Files:        files,
		CurrentIndex: -1, // No file processing yet
		TotalFiles:   len(tracks),
		Band:         band,
		MainsHz:      mainsHz,
		StartTime:    time.Now(),
		logger:       logger,
	}
}

// tickMsg drives the spinner and elapsed timers
type tickMsg time.Time

// tickCmd returns a command that sends a tick message every 100ms
func tickCmd() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return tickCmd()
}

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		m.logger.Debugw("window size", "width", m.Width, "height", m.Height)

	case tickMsg:
		if m.Done {
			return m, nil
		}
		m.spinnerIndex = (m.spinnerIndex + 1) % len(spinnerFrames)
		if m.CurrentIndex >= 0 && m.CurrentIndex < len(m.Files) {
			f := &m.Files[m.CurrentIndex]
			if f.Status != StatusComplete && f.Status != StatusError {
				f.ElapsedTime = time.Since(f.StartTime)
			}
		}
		return m, tickCmd()

	case ProgressMsg:
		if i := m.indexFor(msg.ID); i >= 0 {
			m.Files[i] = updateFileProgress(m.Files[i], msg)
		}

	case FileStartMsg:
		m.logger.Debugw("file started", "index", msg.FileIndex, "file", msg.FileName)
		if msg.FileIndex < 0 || msg.FileIndex >= len(m.Files) {
			return m, nil
		}
		m.CurrentIndex = msg.FileIndex
		m.Files[m.CurrentIndex].StartTime = time.Now()
		if m.Files[m.CurrentIndex].Status == StatusQueued {
			m.Files[m.CurrentIndex].Status = StatusReading
		}

	case FileCompleteMsg:
		m.logger.Debugw("file complete", "index", msg.FileIndex, "error", msg.Error)
		if msg.FileIndex < 0 || msg.FileIndex >= len(m.Files) {
			return m, nil
		}
		f := &m.Files[msg.FileIndex]
		f.ElapsedTime = time.Since(f.StartTime)
		f.Result = msg.Result
		f.Error = msg.Error
		if msg.Error != nil {
			f.Status = StatusError
			f.Percent = processor.ProgressFailed
			m.FailedFiles++
		} else {
			f.Status = StatusComplete
			f.Percent = processor.ProgressDone
			m.CompletedFiles++
		}

	case AllCompleteMsg:
		m.logger.Debugw("all complete", "results", len(msg.Results))
		m.Ranked = msg.Results
		m.ExportPath = msg.ExportPath
		m.ExportErr = msg.ExportErr
		m.Done = true
		return m, tea.Quit
	}

	return m, nil
}

// View renders the UI
func (m Model) View() string {
	if m.Width == 0 {
		return fmt.Sprintf("Initializing...\nFiles: %d\n", len(m.Files))
	}

	if m.Done {
		return renderCompletionSummary(m)
	}

	return renderProcessingView(m)
}

// indexFor finds the file a progress update belongs to, preferring the
// active one when two tracks share an id
func (m Model) indexFor(id processor.TrackID) int {
	if m.CurrentIndex >= 0 && m.CurrentIndex < len(m.Files) && m.Files[m.CurrentIndex].ID == id {
		return m.CurrentIndex
	}
	for i, f := range m.Files {
		if f.ID == id {
			return i
		}
	}
	return -1
}

// updateFileProgress applies a ProgressMsg. Completion and failure are left
// to FileCompleteMsg, which carries the result.
func updateFileProgress(fp FileProgress, msg ProgressMsg) FileProgress {
	if fp.Status == StatusComplete || fp.Status == StatusError {
		return fp
	}
	if msg.Percent == processor.ProgressFailed {
		fp.Percent = msg.Percent
		fp.Status = StatusError
		return fp
	}
	if msg.Percent < fp.Percent {
		return fp
	}

	fp.Percent = msg.Percent
	status := StatusForPercent(msg.Percent)
	if status == StatusComplete {
		// Held at the last stage until the result arrives
		status = StatusAnalysing
	}
	if status > fp.Status {
		fp.Status = status
	}
	return fp
}
