// Package audio decodes audio files into planar PCM for analysis.
// WAV is handled natively with go-audio; everything else goes through ffmpeg-statigo.
package audio

import (
	"bytes"
	"errors"
	"fmt"
)

// ErrUnsupportedFormat is returned when a decoder cannot convert the source
// sample format to floating-point PCM.
var ErrUnsupportedFormat = errors.New("unsupported sample format")

// DecodedTrack is the immutable output of a Decoder: one float sample slice
// per channel, all of equal length, normalised to -1.0..1.0.
type DecodedTrack struct {
	Channels   [][]float32
	SampleRate int
}

// NumChannels returns the channel count
func (t *DecodedTrack) NumChannels() int {
	return len(t.Channels)
}

// TotalSamples returns the per-channel sample count
func (t *DecodedTrack) TotalSamples() int {
	if len(t.Channels) == 0 {
		return 0
	}
	return len(t.Channels[0])
}

// Duration returns the track length in seconds (totalSamples / sampleRate)
func (t *DecodedTrack) Duration() float64 {
	if t.SampleRate <= 0 {
		return 0
	}
	return float64(t.TotalSamples()) / float64(t.SampleRate)
}

// Validate checks the invariants the analysis relies on: at least one
// channel, a positive sample rate and length-aligned channels.
func (t *DecodedTrack) Validate() error {
	if len(t.Channels) == 0 {
		return errors.New("decoded track has no channels")
	}
	if t.SampleRate <= 0 {
		return fmt.Errorf("invalid sample rate %d", t.SampleRate)
	}
	length := len(t.Channels[0])
	for c, ch := range t.Channels[1:] {
		if len(ch) != length {
			return fmt.Errorf("channel %d has %d samples, channel 0 has %d", c+1, len(ch), length)
		}
	}
	return nil
}

// Decoder turns the raw bytes of an audio file into PCM.
// name is the original file name; decoders may use its extension as a hint.
type Decoder interface {
	Decode(name string, data []byte) (*DecodedTrack, error)
}

// SniffingDecoder routes RIFF/WAVE input to the WAV decoder and everything
// else to the fallback decoder.
type SniffingDecoder struct {
	WAV      Decoder
	Fallback Decoder
}

// NewDecoder returns the default decoder chain: go-audio for WAV, ffmpeg for the rest
func NewDecoder() *SniffingDecoder {
	return &SniffingDecoder{
		WAV:      WAVDecoder{},
		Fallback: FFmpegDecoder{},
	}
}

// Decode implements Decoder
func (d *SniffingDecoder) Decode(name string, data []byte) (*DecodedTrack, error) {
	if IsWAV(data) && d.WAV != nil {
		return d.WAV.Decode(name, data)
	}
	if d.Fallback == nil {
		return nil, fmt.Errorf("no decoder available for %s", name)
	}
	return d.Fallback.Decode(name, data)
}

// IsWAV reports whether data starts with a RIFF/WAVE header
func IsWAV(data []byte) bool {
	return len(data) >= 12 &&
		bytes.Equal(data[0:4], []byte("RIFF")) &&
		bytes.Equal(data[8:12], []byte("WAVE"))
}
