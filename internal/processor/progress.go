package processor

import (
	"math"
	"sync"
)

// Stage boundaries on the 0-100 progress scale
const (
	ProgressFailed      = -1
	ProgressQueued      = 0
	ProgressReadDone    = 20 // reading spans 0-20 by bytes read
	ProgressDecoded     = 40
	ProgressMixed       = 50 // spectral loop spans 50-90 by chunk
	ProgressSpectralEnd = 90
	ProgressDone        = 100
)

// Reporter receives per-track progress in percent, -1 meaning failed
type Reporter interface {
	Report(id TrackID, percent int)
}

// ReporterFunc adapts a function to Reporter
type ReporterFunc func(id TrackID, percent int)

// Report implements Reporter
func (f ReporterFunc) Report(id TrackID, percent int) { f(id, percent) }

// ReadProgress maps bytes read onto 0-20
func ReadProgress(loaded, total int64) int {
	if total <= 0 {
		return ProgressReadDone
	}
	if loaded > total {
		loaded = total
	}
	return int(math.Round(float64(loaded) / float64(total) * ProgressReadDone))
}

// SpectralProgress maps a chunk index onto 50-90: 50 + floor(chunk/numChunks*40)
func SpectralProgress(chunk, numChunks int) int {
	if numChunks <= 0 {
		return ProgressSpectralEnd
	}
	span := ProgressSpectralEnd - ProgressMixed
	return ProgressMixed + chunk*span/numChunks
}

// ProgressState records the latest percent per track and forwards changes
// to the host reporter. It keeps each track monotonic: lower values are
// dropped, and -1 is terminal until the track is queued again.
// Safe for concurrent use.
type ProgressState struct {
	mu      sync.Mutex
	percent map[TrackID]int
	next    Reporter
}

// NewProgressState wraps next, which may be nil
func NewProgressState(next Reporter) *ProgressState {
	return &ProgressState{
		percent: make(map[TrackID]int),
		next:    next,
	}
}

// Queue resets a track to 0
func (s *ProgressState) Queue(id TrackID) {
	s.mu.Lock()
	s.percent[id] = ProgressQueued
	s.mu.Unlock()

	if s.next != nil {
		s.next.Report(id, ProgressQueued)
	}
}

// Restart returns a track to 0 just before it is processed, so an id shared
// with an earlier track does not hold this one at 100 or -1. The host is only
// told when the stored value actually changes.
func (s *ProgressState) Restart(id TrackID) {
	s.mu.Lock()
	current, seen := s.percent[id]
	s.percent[id] = ProgressQueued
	s.mu.Unlock()

	if (!seen || current != ProgressQueued) && s.next != nil {
		s.next.Report(id, ProgressQueued)
	}
}

// Report implements Reporter
func (s *ProgressState) Report(id TrackID, percent int) {
	if percent < ProgressFailed {
		percent = ProgressFailed
	} else if percent > ProgressDone {
		percent = ProgressDone
	}

	s.mu.Lock()
	current, seen := s.percent[id]
	switch {
	case seen && current == ProgressFailed:
		s.mu.Unlock()
		return
	case seen && percent != ProgressFailed && percent <= current:
		s.mu.Unlock()
		return
	}
	s.percent[id] = percent
	s.mu.Unlock()

	if s.next != nil {
		s.next.Report(id, percent)
	}
}

// Get returns the latest percent for a track
func (s *ProgressState) Get(id TrackID) (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.percent[id]
	return p, ok
}

// Clear forgets every track
func (s *ProgressState) Clear() {
	s.mu.Lock()
	clear(s.percent)
	s.mu.Unlock()
}
