package processor

import "fmt"

// ReadError reports an I/O failure while obtaining a track's raw bytes
type ReadError struct {
	Track TrackID
	Err   error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("read %s: %v", e.Track, e.Err)
}

func (e *ReadError) Unwrap() error { return e.Err }

// DecodeError reports that the decoder rejected a track as unsupported or corrupt
type DecodeError struct {
	Track TrackID
	Err   error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s: %v", e.Track, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// AnalysisError reports decoded audio that breaks an analysis invariant,
// such as channels of different lengths
type AnalysisError struct {
	Track TrackID
	Err   error
}

func (e *AnalysisError) Error() string {
	return fmt.Sprintf("analyse %s: %v", e.Track, e.Err)
}

func (e *AnalysisError) Unwrap() error { return e.Err }
