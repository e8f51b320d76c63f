package ui

import (
	"github.com/linuxmatters/subsonic/internal/processor"
)

// ProgressMsg carries a track's percent from the pipeline, -1 meaning failed
type ProgressMsg struct {
	ID      processor.TrackID
	Percent int
}

// FileStartMsg indicates a new file has started processing
type FileStartMsg struct {
	FileIndex int
	FileName  string
}

// FileCompleteMsg indicates a file has finished processing
type FileCompleteMsg struct {
	FileIndex int
	Result    *processor.AnalysisResult // nil on error
	Error     error
}

// AllCompleteMsg indicates the batch is finished. Results are ranked.
type AllCompleteMsg struct {
	Results    []processor.AnalysisResult
	ExportPath string // CSV written, if any
	ExportErr  error
}
