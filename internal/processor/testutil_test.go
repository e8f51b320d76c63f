package processor

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// TestAudioOptions configures the synthetic audio to generate
type TestAudioOptions struct {
	DurationSecs float64 // Total duration in seconds
	SampleRate   int     // Sample rate (default: 44100)
	Channels     int     // Channel count (default: 1)
	ToneFreq     float64 // Sine wave frequency in Hz (0 = no tone)
	ToneLevel    float64 // Tone level in dBFS (e.g., -6.0)
	NoiseLevel   float64 // White noise level in dBFS (0 = no noise, -60 = quiet noise)
}

// generateSamples renders the tone and noise described by opts as mono
// samples in -1.0..1.0.
func generateSamples(opts TestAudioOptions) []float64 {
	if opts.SampleRate == 0 {
		opts.SampleRate = 44100
	}
	if opts.DurationSecs == 0 {
		opts.DurationSecs = 1.0
	}

	totalSamples := int(opts.DurationSecs * float64(opts.SampleRate))
	samples := make([]float64, totalSamples)

	toneAmp := 0.0
	if opts.ToneFreq > 0 && opts.ToneLevel < 0 {
		toneAmp = math.Pow(10.0, opts.ToneLevel/20.0)
	}
	noiseAmp := 0.0
	if opts.NoiseLevel < 0 {
		noiseAmp = math.Pow(10.0, opts.NoiseLevel/20.0)
	}

	// Deterministic LCG noise
	rngState := uint32(12345)
	nextRandom := func() float64 {
		rngState = rngState*1664525 + 1013904223
		return (float64(rngState)/float64(0xFFFFFFFF))*2.0 - 1.0
	}

	for i := range samples {
		var sample float64
		if toneAmp > 0 {
			t := float64(i) / float64(opts.SampleRate)
			sample += toneAmp * math.Sin(2.0*math.Pi*opts.ToneFreq*t)
		}
		if noiseAmp > 0 {
			sample += noiseAmp * nextRandom()
		}
		samples[i] = max(-1.0, min(1.0, sample))
	}
	return samples
}

// generateTestAudio writes opts as a 16-bit PCM WAV file in a test temp dir
// and returns its path. Every channel carries the same signal.
func generateTestAudio(t *testing.T, name string, opts TestAudioOptions) string {
	t.Helper()

	if opts.SampleRate == 0 {
		opts.SampleRate = 44100
	}
	if opts.Channels == 0 {
		opts.Channels = 1
	}
	samples := generateSamples(opts)

	data := make([]int, 0, len(samples)*opts.Channels)
	for _, s := range samples {
		v := int(s * math.MaxInt16)
		for c := 0; c < opts.Channels; c++ {
			data = append(data, v)
		}
	}

	path := filepath.Join(t.TempDir(), name)
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create test file: %v", err)
	}
	defer f.Close()

	enc := wav.NewEncoder(f, opts.SampleRate, 16, opts.Channels, 1)
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: opts.Channels, SampleRate: opts.SampleRate},
		Data:           data,
		SourceBitDepth: 16,
	}
	if err := enc.Write(buf); err != nil {
		t.Fatalf("failed to write WAV data: %v", err)
	}
	if err := enc.Close(); err != nil {
		t.Fatalf("failed to finalise WAV file: %v", err)
	}

	return path
}

// toFloat32 narrows mono samples for building DecodedTracks by hand
func toFloat32(samples []float64) []float32 {
	out := make([]float32, len(samples))
	for i, s := range samples {
		out[i] = float32(s)
	}
	return out
}

func almostEqual(a, b, tolerance float64) bool {
	return math.Abs(a-b) <= tolerance
}
