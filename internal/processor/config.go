// Package processor computes the subsonic energy of audio tracks: channel
// downmix, chunked Hann-windowed power spectra, band integration and the
// per-track pipeline that reports staged progress while it works.
package processor

import (
	"errors"
	"fmt"
)

// Analysis defaults
const (
	DefaultLowerHz     = 20.0
	DefaultUpperHz     = 150.0
	DefaultScaleFactor = 1e6
	DefaultChunkSize   = 16384

	// MaxUpperHz is the configurable ceiling: Nyquist for 44.1 kHz material
	MaxUpperHz = 22050.0
)

// FrequencyRange is the band, in Hz, whose power is integrated
type FrequencyRange struct {
	LowerHz float64
	UpperHz float64
}

// Validate enforces 0 <= lower < upper <= MaxUpperHz
func (r FrequencyRange) Validate() error {
	if r.LowerHz < 0 {
		return fmt.Errorf("lower bound %.2f Hz must not be negative", r.LowerHz)
	}
	if r.LowerHz >= r.UpperHz {
		return fmt.Errorf("lower bound %.2f Hz must be below upper bound %.2f Hz", r.LowerHz, r.UpperHz)
	}
	if r.UpperHz > MaxUpperHz {
		return fmt.Errorf("upper bound %.2f Hz exceeds %.0f Hz", r.UpperHz, MaxUpperHz)
	}
	return nil
}

// String renders the band as "20-150 Hz"
func (r FrequencyRange) String() string {
	return fmt.Sprintf("%g-%g Hz", r.LowerHz, r.UpperHz)
}

// Config holds the per-run analysis settings
type Config struct {
	Range       FrequencyRange
	ScaleFactor float64

	// ChunkSize is the number of mono samples per FFT chunk. The FFT length
	// is the next power of two at or above it.
	ChunkSize int

	// Workers > 1 computes chunk spectra concurrently, Workers chunks at a
	// time. The running mean is still accumulated in chunk order.
	Workers int
}

// DefaultConfig returns the settings used when nothing is configured
func DefaultConfig() Config {
	return Config{
		Range:       FrequencyRange{LowerHz: DefaultLowerHz, UpperHz: DefaultUpperHz},
		ScaleFactor: DefaultScaleFactor,
		ChunkSize:   DefaultChunkSize,
		Workers:     1,
	}
}

// Validate checks every field
func (c Config) Validate() error {
	if err := c.Range.Validate(); err != nil {
		return err
	}
	if c.ScaleFactor <= 0 {
		return errors.New("scale factor must be positive")
	}
	if c.ChunkSize < 2 {
		return fmt.Errorf("chunk size %d must be at least 2", c.ChunkSize)
	}
	if c.Workers < 1 {
		return fmt.Errorf("workers %d must be at least 1", c.Workers)
	}
	return nil
}

// FFTSize is the transform length: ChunkSize rounded up to a power of two
func (c Config) FFTSize() int {
	return nextPowerOfTwo(c.ChunkSize)
}
