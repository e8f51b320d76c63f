package audio

import (
	"bytes"
	"errors"
	"fmt"
	"math"

	"github.com/go-audio/wav"
)

// go-audio only decodes integer PCM, tagged either plainly or as extensible
const (
	wavFormatPCM        = 0x0001
	wavFormatExtensible = 0xFFFE
)

// WAVDecoder decodes integer PCM WAV files without ffmpeg
type WAVDecoder struct{}

// Decode implements Decoder
func (WAVDecoder) Decode(name string, data []byte) (*DecodedTrack, error) {
	decoder := wav.NewDecoder(bytes.NewReader(data))
	if !decoder.IsValidFile() {
		return nil, fmt.Errorf("invalid WAV file: %s", name)
	}

	if decoder.WavAudioFormat != wavFormatPCM && decoder.WavAudioFormat != wavFormatExtensible {
		return nil, fmt.Errorf("%w: WAV format tag %d in %s", ErrUnsupportedFormat, decoder.WavAudioFormat, name)
	}

	buf, err := decoder.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("could not read PCM buffer: %w", err)
	}
	if buf.Format == nil || buf.Format.NumChannels <= 0 {
		return nil, errors.New("WAV file has no channel information")
	}

	bitDepth := buf.SourceBitDepth
	if bitDepth == 0 {
		bitDepth = int(decoder.BitDepth)
	}
	if bitDepth <= 0 || bitDepth > 32 {
		return nil, fmt.Errorf("%w: %d-bit WAV", ErrUnsupportedFormat, bitDepth)
	}

	numChannels := buf.Format.NumChannels
	frames := len(buf.Data) / numChannels
	fullScale := math.Pow(2, float64(bitDepth-1))

	// 8-bit WAV is unsigned with a 128 midpoint; wider depths are signed
	offset := 0.0
	if bitDepth == 8 {
		offset = fullScale
	}

	channels := make([][]float32, numChannels)
	for c := range channels {
		channels[c] = make([]float32, frames)
	}
	for i := 0; i < frames; i++ {
		for c := 0; c < numChannels; c++ {
			channels[c][i] = float32((float64(buf.Data[i*numChannels+c]) - offset) / fullScale)
		}
	}

	return &DecodedTrack{
		Channels:   channels,
		SampleRate: buf.Format.SampleRate,
	}, nil
}
