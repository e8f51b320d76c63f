package audio

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"unsafe"

	ffmpeg "github.com/linuxmatters/ffmpeg-statigo"
)

// StreamInfo describes the audio stream chosen for decoding
type StreamInfo struct {
	Duration   float64 // seconds, as reported by the container
	SampleRate int
	Channels   int
	SampleFmt  string
}

// streamReader pulls decoded frames from the first audio stream of a file
type streamReader struct {
	fmtCtx    *ffmpeg.AVFormatContext
	decCtx    *ffmpeg.AVCodecContext
	streamIdx int
	frame     *ffmpeg.AVFrame
	packet    *ffmpeg.AVPacket
	info      StreamInfo
}

// openStream opens filename and prepares a decoder for its first audio stream.
// Cover art, subtitles and data streams are ignored.
func openStream(filename string) (*streamReader, error) {
	r := &streamReader{streamIdx: -1}

	filenameC := ffmpeg.ToCStr(filename)
	defer filenameC.Free()

	if _, err := ffmpeg.AVFormatOpenInput(&r.fmtCtx, filenameC, nil, nil); err != nil {
		return nil, fmt.Errorf("open container: %w", err)
	}
	if _, err := ffmpeg.AVFormatFindStreamInfo(r.fmtCtx, nil); err != nil {
		r.Close()
		return nil, fmt.Errorf("probe streams: %w", err)
	}

	var audioStream *ffmpeg.AVStream
	streams := r.fmtCtx.Streams()
	for i := 0; i < int(r.fmtCtx.NbStreams()); i++ {
		if stream := streams.Get(uintptr(i)); stream.Codecpar().CodecType() == ffmpeg.AVMediaTypeAudio {
			r.streamIdx = i
			audioStream = stream
			break
		}
	}
	if audioStream == nil {
		r.Close()
		return nil, fmt.Errorf("%w: no audio stream", ErrUnsupportedFormat)
	}

	codecPar := audioStream.Codecpar()

	codec := ffmpeg.AVCodecFindDecoder(codecPar.CodecId())
	if codec == nil {
		r.Close()
		return nil, fmt.Errorf("%w: no decoder for codec id %d", ErrUnsupportedFormat, codecPar.CodecId())
	}
	if r.decCtx = ffmpeg.AVCodecAllocContext3(codec); r.decCtx == nil {
		r.Close()
		return nil, errors.New("allocate decoder context")
	}
	if _, err := ffmpeg.AVCodecParametersToContext(r.decCtx, codecPar); err != nil {
		r.Close()
		return nil, fmt.Errorf("copy codec parameters: %w", err)
	}
	if _, err := ffmpeg.AVCodecOpen2(r.decCtx, codec, nil); err != nil {
		r.Close()
		return nil, fmt.Errorf("open decoder: %w", err)
	}

	r.info = StreamInfo{
		Duration:   float64(r.fmtCtx.Duration()) / float64(ffmpeg.AVTimeBase),
		SampleRate: r.decCtx.SampleRate(),
		Channels:   r.decCtx.ChLayout().NbChannels(),
		SampleFmt:  ffmpeg.AVGetSampleFmtName(r.decCtx.SampleFmt()).String(),
	}
	r.frame = ffmpeg.AVFrameAlloc()
	r.packet = ffmpeg.AVPacketAlloc()
	return r, nil
}

// next returns the next decoded frame, or nil once the decoder is drained.
// The frame is reused by the following call.
func (r *streamReader) next() (*ffmpeg.AVFrame, error) {
	for {
		_, err := ffmpeg.AVCodecReceiveFrame(r.decCtx, r.frame)
		switch {
		case err == nil:
			return r.frame, nil
		case errors.Is(err, ffmpeg.AVErrorEOF):
			return nil, nil
		case !errors.Is(err, ffmpeg.EAgain):
			return nil, fmt.Errorf("receive frame: %w", err)
		}

		if _, err := ffmpeg.AVReadFrame(r.fmtCtx, r.packet); err != nil {
			if !errors.Is(err, ffmpeg.AVErrorEOF) {
				return nil, fmt.Errorf("read packet: %w", err)
			}
			// Drain whatever the decoder still buffers
			if _, err := ffmpeg.AVCodecSendPacket(r.decCtx, nil); err != nil {
				return nil, fmt.Errorf("flush decoder: %w", err)
			}
			continue
		}

		// Cover art and other streams are read but never decoded
		if r.packet.StreamIndex() != r.streamIdx {
			ffmpeg.AVPacketUnref(r.packet)
			continue
		}

		_, sendErr := ffmpeg.AVCodecSendPacket(r.decCtx, r.packet)
		ffmpeg.AVPacketUnref(r.packet)
		if sendErr != nil {
			return nil, fmt.Errorf("send packet: %w", sendErr)
		}
	}
}

// Close releases every ffmpeg object the reader holds; it is safe on a
// partially opened reader
func (r *streamReader) Close() {
	if r.frame != nil {
		ffmpeg.AVFrameFree(&r.frame)
	}
	if r.packet != nil {
		ffmpeg.AVPacketFree(&r.packet)
	}
	if r.decCtx != nil {
		ffmpeg.AVCodecFreeContext(&r.decCtx)
	}
	if r.fmtCtx != nil {
		ffmpeg.AVFormatCloseInput(&r.fmtCtx)
	}
}

// FFmpegDecoder decodes any container/codec ffmpeg understands (MP3, FLAC, AAC, ...)
type FFmpegDecoder struct{}

// Decode implements Decoder. ffmpeg opens files by name, so the bytes are
// spooled to a temporary file carrying the original extension as a probe hint.
func (FFmpegDecoder) Decode(name string, data []byte) (*DecodedTrack, error) {
	tmp, err := os.CreateTemp("", "subsonic-*"+filepath.Ext(name))
	if err != nil {
		return nil, fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("failed to spool %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return nil, fmt.Errorf("failed to spool %s: %w", name, err)
	}

	return DecodeFile(tmpPath)
}

// DecodeFile decodes every audio frame of a file into planar float PCM
func DecodeFile(filename string) (*DecodedTrack, error) {
	reader, err := openStream(filename)
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	info := reader.info
	if info.Channels <= 0 {
		return nil, fmt.Errorf("no channels reported for %s", filename)
	}

	// Pre-size from the container duration; it is only an estimate
	estimated := int(info.Duration * float64(info.SampleRate))
	if estimated < 0 {
		estimated = 0
	}
	channels := make([][]float32, info.Channels)
	for c := range channels {
		channels[c] = make([]float32, 0, estimated)
	}

	for {
		frame, err := reader.next()
		if err != nil {
			return nil, err
		}
		if frame == nil {
			break // EOF
		}
		if err := appendFrame(channels, frame); err != nil {
			return nil, err
		}
	}

	return &DecodedTrack{
		Channels:   channels,
		SampleRate: info.SampleRate,
	}, nil
}

// appendFrame converts one decoded frame to float32 and appends each channel
// to its destination slice. Planar formats keep one plane per channel; packed
// formats interleave all channels in plane 0.
func appendFrame(channels [][]float32, frame *ffmpeg.AVFrame) error {
	nbSamples := int(frame.NbSamples())
	nbChannels := int(frame.ChLayout().NbChannels())
	if nbSamples == 0 {
		return nil
	}
	if nbChannels != len(channels) {
		return fmt.Errorf("frame has %d channels, stream has %d", nbChannels, len(channels))
	}

	sampleFmt := ffmpeg.AVSampleFormat(frame.Format())
	data := frame.Data()

	switch sampleFmt {
	case ffmpeg.AVSampleFmtFltp:
		for c := range channels {
			plane := unsafe.Slice((*float32)(data.Get(uintptr(c))), nbSamples)
			channels[c] = append(channels[c], plane...)
		}

	case ffmpeg.AVSampleFmtFlt:
		samples := unsafe.Slice((*float32)(data.Get(0)), nbSamples*nbChannels)
		for i := 0; i < nbSamples; i++ {
			for c := range channels {
				channels[c] = append(channels[c], samples[i*nbChannels+c])
			}
		}

	case ffmpeg.AVSampleFmtS16P:
		for c := range channels {
			plane := unsafe.Slice((*int16)(data.Get(uintptr(c))), nbSamples)
			for _, s := range plane {
				channels[c] = append(channels[c], float32(s)/32768.0)
			}
		}

	case ffmpeg.AVSampleFmtS16:
		samples := unsafe.Slice((*int16)(data.Get(0)), nbSamples*nbChannels)
		for i := 0; i < nbSamples; i++ {
			for c := range channels {
				channels[c] = append(channels[c], float32(samples[i*nbChannels+c])/32768.0)
			}
		}

	case ffmpeg.AVSampleFmtS32P:
		for c := range channels {
			plane := unsafe.Slice((*int32)(data.Get(uintptr(c))), nbSamples)
			for _, s := range plane {
				channels[c] = append(channels[c], float32(float64(s)/2147483648.0))
			}
		}

	case ffmpeg.AVSampleFmtS32:
		samples := unsafe.Slice((*int32)(data.Get(0)), nbSamples*nbChannels)
		for i := 0; i < nbSamples; i++ {
			for c := range channels {
				channels[c] = append(channels[c], float32(float64(samples[i*nbChannels+c])/2147483648.0))
			}
		}

	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, ffmpeg.AVGetSampleFmtName(sampleFmt).String())
	}

	return nil
}
