package audio

import (
	"bytes"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// encodeWAV renders interleaved integer samples as a PCM WAV file and returns its bytes
func encodeWAV(t *testing.T, samples []int, sampleRate, bitDepth, channels int) []byte {
	t.Helper()

	path := filepath.Join(t.TempDir(), "fixture.wav")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create fixture: %v", err)
	}

	enc := wav.NewEncoder(f, sampleRate, bitDepth, channels, 1)
	buf := &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: channels, SampleRate: sampleRate},
		Data:           samples,
		SourceBitDepth: bitDepth,
	}
	if err := enc.Write(buf); err != nil {
		t.Fatalf("failed to encode fixture: %v", err)
	}
	if err := enc.Close(); err != nil {
		t.Fatalf("failed to finalise fixture: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("failed to close fixture: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read fixture: %v", err)
	}
	return data
}

func TestWAVDecoderStereo(t *testing.T) {
	// Left at +half scale, right at -half scale
	const frames = 100
	samples := make([]int, 0, frames*2)
	for i := 0; i < frames; i++ {
		samples = append(samples, 16384, -16384)
	}
	data := encodeWAV(t, samples, 48000, 16, 2)

	track, err := WAVDecoder{}.Decode("stereo.wav", data)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}

	if track.NumChannels() != 2 {
		t.Fatalf("NumChannels() = %d, want 2", track.NumChannels())
	}
	if track.SampleRate != 48000 {
		t.Errorf("SampleRate = %d, want 48000", track.SampleRate)
	}
	if track.TotalSamples() != frames {
		t.Errorf("TotalSamples() = %d, want %d", track.TotalSamples(), frames)
	}
	if err := track.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
	for i := 0; i < frames; i++ {
		if track.Channels[0][i] != 0.5 || track.Channels[1][i] != -0.5 {
			t.Fatalf("frame %d = (%v, %v), want (0.5, -0.5)", i, track.Channels[0][i], track.Channels[1][i])
		}
	}
}

func TestWAVDecoderBitDepths(t *testing.T) {
	tests := []struct {
		name     string
		bitDepth int
		sample   int
		want     float32
	}{
		{"16-bit full negative", 16, -32768, -1},
		{"16-bit quarter", 16, 8192, 0.25},
		{"24-bit half", 24, 4194304, 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := encodeWAV(t, []int{tt.sample, tt.sample}, 44100, tt.bitDepth, 1)
			track, err := WAVDecoder{}.Decode("depth.wav", data)
			if err != nil {
				t.Fatalf("Decode() error = %v", err)
			}
			if got := track.Channels[0][0]; math.Abs(float64(got-tt.want)) > 1e-6 {
				t.Errorf("sample = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestWAVDecoderRejectsGarbage(t *testing.T) {
	if _, err := (WAVDecoder{}).Decode("junk.wav", []byte("definitely not audio")); err == nil {
		t.Error("Decode() accepted non-WAV input")
	}
}

func TestIsWAV(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want bool
	}{
		{"riff wave", []byte("RIFF\x00\x00\x00\x00WAVEfmt "), true},
		{"riff avi", []byte("RIFF\x00\x00\x00\x00AVI LIST"), false},
		{"mp3 id3", []byte("ID3\x04\x00\x00\x00\x00\x00\x00\x00\x00"), false},
		{"too short", []byte("RIFF"), false},
		{"empty", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsWAV(tt.data); got != tt.want {
				t.Errorf("IsWAV() = %v, want %v", got, tt.want)
			}
		})
	}
}

// stubDecoder records whether it was called
type stubDecoder struct {
	called bool
	err    error
}

func (d *stubDecoder) Decode(string, []byte) (*DecodedTrack, error) {
	d.called = true
	if d.err != nil {
		return nil, d.err
	}
	return &DecodedTrack{Channels: [][]float32{{0}}, SampleRate: 44100}, nil
}

func TestSniffingDecoderRoutes(t *testing.T) {
	wavData := encodeWAV(t, []int{0, 0}, 44100, 16, 1)

	t.Run("wav goes to WAV decoder", func(t *testing.T) {
		wavDec, fallback := &stubDecoder{}, &stubDecoder{}
		d := &SniffingDecoder{WAV: wavDec, Fallback: fallback}
		if _, err := d.Decode("a.wav", wavData); err != nil {
			t.Fatalf("Decode() error = %v", err)
		}
		if !wavDec.called || fallback.called {
			t.Errorf("wav called = %v, fallback called = %v, want true, false", wavDec.called, fallback.called)
		}
	})

	t.Run("other bytes go to fallback", func(t *testing.T) {
		wavDec, fallback := &stubDecoder{}, &stubDecoder{}
		d := &SniffingDecoder{WAV: wavDec, Fallback: fallback}
		if _, err := d.Decode("a.wav", []byte("ID3 mp3 payload")); err != nil {
			t.Fatalf("Decode() error = %v", err)
		}
		if wavDec.called || !fallback.called {
			t.Errorf("wav called = %v, fallback called = %v, want false, true", wavDec.called, fallback.called)
		}
	})

	t.Run("fallback error surfaces", func(t *testing.T) {
		d := &SniffingDecoder{Fallback: &stubDecoder{err: ErrUnsupportedFormat}}
		if _, err := d.Decode("a.ogg", []byte("OggS")); !errors.Is(err, ErrUnsupportedFormat) {
			t.Errorf("Decode() error = %v, want ErrUnsupportedFormat", err)
		}
	})

	t.Run("no fallback", func(t *testing.T) {
		d := &SniffingDecoder{WAV: &stubDecoder{}}
		if _, err := d.Decode("a.mp3", []byte("ID3")); err == nil {
			t.Error("Decode() without fallback should fail")
		}
	})
}

func TestDecodedTrackValidate(t *testing.T) {
	tests := []struct {
		name    string
		track   DecodedTrack
		wantErr bool
	}{
		{"valid stereo", DecodedTrack{Channels: [][]float32{{0, 1}, {1, 0}}, SampleRate: 44100}, false},
		{"empty channel is fine", DecodedTrack{Channels: [][]float32{{}}, SampleRate: 44100}, false},
		{"no channels", DecodedTrack{SampleRate: 44100}, true},
		{"zero rate", DecodedTrack{Channels: [][]float32{{0}}}, true},
		{"misaligned", DecodedTrack{Channels: [][]float32{{0, 1}, {0}}, SampleRate: 44100}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.track.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestDecodedTrackDuration(t *testing.T) {
	track := DecodedTrack{Channels: [][]float32{make([]float32, 22050)}, SampleRate: 44100}
	if got := track.Duration(); got != 0.5 {
		t.Errorf("Duration() = %v, want 0.5", got)
	}
	if got := (&DecodedTrack{}).Duration(); got != 0 {
		t.Errorf("Duration() of empty track = %v, want 0", got)
	}
}

// Guard against accidental reliance on file names for sniffing
func TestSniffingIgnoresExtension(t *testing.T) {
	wavData := encodeWAV(t, []int{100, 100}, 22050, 16, 1)
	track, err := (&SniffingDecoder{WAV: WAVDecoder{}}).Decode("mislabelled.mp3", bytes.Clone(wavData))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if track.SampleRate != 22050 {
		t.Errorf("SampleRate = %d, want 22050", track.SampleRate)
	}
}
