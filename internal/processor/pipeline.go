package processor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/linuxmatters/subsonic/internal/audio"
	"github.com/mdobak/go-xerrors"
	"go.uber.org/zap"
)

// TrackID identifies a track by file name and modification time.
// Two different files sharing both will collide.
type TrackID string

// Track is one queued input file
type Track struct {
	Name    string
	Path    string
	ModTime time.Time
}

// NewTrack stats path and builds its Track
func NewTrack(path string) (Track, error) {
	info, err := os.Stat(path)
	if err != nil {
		return Track{}, err
	}
	return Track{
		Name:    filepath.Base(path),
		Path:    path,
		ModTime: info.ModTime(),
	}, nil
}

// ID returns "<name>-<mtime in unix milliseconds>"
func (t Track) ID() TrackID {
	return TrackID(fmt.Sprintf("%s-%d", t.Name, t.ModTime.UnixMilli()))
}

// AnalysisResult is the subsonic energy measurement of one track
type AnalysisResult struct {
	TrackID          TrackID
	FileName         string
	RawEnergy        float64
	NormalizedEnergy float64
	ScaledEnergy     float64
	DurationSeconds  float64
	LowerFreq        float64
	UpperFreq        float64

	// Source details, for reports
	SampleRate int
	Channels   int
	Chunks     int
}

// Failure records a track that did not produce a result
type Failure struct {
	Track Track
	Err   error
}

// BatchResult is the outcome of one Run
type BatchResult struct {
	Results  []AnalysisResult // ranked by descending ScaledEnergy
	Failures []Failure        // in submission order
}

// Observer is notified as each track of a batch starts and finishes.
// result is nil when err is not.
type Observer interface {
	TrackStarted(index int, track Track)
	TrackFinished(index int, track Track, result *AnalysisResult, err error)
}

// Option customises a Pipeline
type Option func(*Pipeline)

// WithLogger sets the structured logger
func WithLogger(logger *zap.SugaredLogger) Option {
	return func(p *Pipeline) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithYield replaces the cooperative yield used by the spectral loop
func WithYield(yield func()) Option {
	return func(p *Pipeline) { p.yield = yield }
}

// Pipeline analyses tracks one at a time: read, decode, mix, spectrum,
// integrate. A failing track is marked -1 and the batch carries on.
type Pipeline struct {
	config   Config
	decoder  audio.Decoder
	progress *ProgressState
	history  *History
	logger   *zap.SugaredLogger
	yield    func()
}

// NewPipeline creates a pipeline. reporter receives progress and may be nil.
func NewPipeline(cfg Config, decoder audio.Decoder, reporter Reporter, opts ...Option) *Pipeline {
	p := &Pipeline{
		config:   cfg,
		decoder:  decoder,
		progress: NewProgressState(reporter),
		history:  &History{},
		logger:   zap.NewNop().Sugar(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Progress returns the per-track progress state
func (p *Pipeline) Progress() *ProgressState { return p.progress }

// History returns every result produced so far, newest batch first
func (p *Pipeline) History() *History { return p.history }

// Run analyses tracks strictly in order. Cancelling ctx stops the batch
// between tracks, never inside one; results completed so far are still
// ranked into the history and returned alongside ctx.Err().
func (p *Pipeline) Run(ctx context.Context, tracks []Track, obs Observer) (*BatchResult, error) {
	p.progress.Clear()
	for _, track := range tracks {
		p.progress.Queue(track.ID())
	}

	batch := &BatchResult{}
	var completed []AnalysisResult
	var runErr error

	for i, track := range tracks {
		if err := ctx.Err(); err != nil {
			runErr = err
			break
		}
		p.progress.Restart(track.ID())
		if obs != nil {
			obs.TrackStarted(i, track)
		}

		start := time.Now()
		result, err := p.AnalyzeTrack(track)
		if err != nil {
			p.progress.Report(track.ID(), ProgressFailed)
			batch.Failures = append(batch.Failures, Failure{Track: track, Err: err})
			p.logger.Errorw("track analysis failed",
				"track", track.ID(),
				"stage", FailedStage(err),
				"error", xerrors.New(err),
			)
			if obs != nil {
				obs.TrackFinished(i, track, nil, err)
			}
			continue
		}

		completed = append(completed, result)
		p.logger.Infow("track analysed",
			"track", track.ID(),
			"scaled_energy", result.ScaledEnergy,
			"normalized_energy", result.NormalizedEnergy,
			"raw_energy", result.RawEnergy,
			"duration_seconds", result.DurationSeconds,
			"chunks", result.Chunks,
			"elapsed", time.Since(start),
		)
		if obs != nil {
			obs.TrackFinished(i, track, &result, nil)
		}
	}

	batch.Results = p.history.Add(completed)
	return batch, runErr
}

// AnalyzeTrack reads, decodes and analyses a single track
func (p *Pipeline) AnalyzeTrack(track Track) (AnalysisResult, error) {
	id := track.ID()

	p.logger.Debugw("reading", "track", id, "path", track.Path)
	data, err := p.read(id, track.Path)
	if err != nil {
		return AnalysisResult{}, &ReadError{Track: id, Err: err}
	}
	p.progress.Report(id, ProgressReadDone)

	p.logger.Debugw("decoding", "track", id, "bytes", len(data))
	decoded, err := p.decoder.Decode(track.Name, data)
	if err != nil {
		return AnalysisResult{}, &DecodeError{Track: id, Err: err}
	}
	p.progress.Report(id, ProgressDecoded)

	return p.Analyze(id, track.Name, decoded)
}

// Analyze runs mix, spectrum and integration over already decoded PCM.
// A track shorter than one chunk is not an error: it yields zero energy
// with its real duration.
func (p *Pipeline) Analyze(id TrackID, name string, decoded *audio.DecodedTrack) (AnalysisResult, error) {
	if decoded == nil {
		return AnalysisResult{}, &AnalysisError{Track: id, Err: errors.New("no decoded audio")}
	}
	if err := decoded.Validate(); err != nil {
		return AnalysisResult{}, &AnalysisError{Track: id, Err: err}
	}

	result := AnalysisResult{
		TrackID:         id,
		FileName:        name,
		DurationSeconds: decoded.Duration(),
		LowerFreq:       p.config.Range.LowerHz,
		UpperFreq:       p.config.Range.UpperHz,
		SampleRate:      decoded.SampleRate,
		Channels:        decoded.NumChannels(),
	}

	mono := MixToMono(decoded.Channels)
	p.progress.Report(id, ProgressMixed)
	p.logger.Debugw("mixed to mono", "track", id, "channels", decoded.NumChannels(), "samples", len(mono))

	analyzer := NewSpectralAnalyzer(p.config)
	analyzer.Yield = p.yield
	analyzer.OnChunk = func(chunk, numChunks int) {
		p.progress.Report(id, SpectralProgress(chunk, numChunks))
	}
	spectrum := analyzer.Analyze(mono, decoded.SampleRate)
	result.Chunks = spectrum.Chunks

	if spectrum.Empty() {
		p.logger.Debugw("shorter than one chunk", "track", id, "samples", len(mono), "chunk_size", p.config.ChunkSize)
		p.progress.Report(id, ProgressDone)
		return result, nil
	}
	p.progress.Report(id, ProgressSpectralEnd)

	energy := NewEnergyIntegrator(p.config).Integrate(spectrum, decoded.SampleRate, result.DurationSeconds)
	result.RawEnergy = energy.Raw
	result.NormalizedEnergy = energy.Normalized
	result.ScaledEnergy = energy.Scaled
	p.progress.Report(id, ProgressDone)

	return result, nil
}

// read loads the whole file, reporting 0-20% as bytes arrive
func (p *Pipeline) read(id TrackID, path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, err
	}
	total := info.Size()

	var buf bytes.Buffer
	if total > 0 {
		buf.Grow(int(total))
	}
	pr := &progressReader{
		r: f,
		onRead: func(loaded int64) {
			p.progress.Report(id, ReadProgress(loaded, total))
		},
	}
	if _, err := io.Copy(&buf, pr); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// progressReader reports the running byte count after every read
type progressReader struct {
	r      io.Reader
	loaded int64
	onRead func(loaded int64)
}

func (pr *progressReader) Read(b []byte) (int, error) {
	n, err := pr.r.Read(b)
	if n > 0 {
		pr.loaded += int64(n)
		pr.onRead(pr.loaded)
	}
	return n, err
}

// FailedStage names the pipeline stage an error came from
func FailedStage(err error) string {
	var readErr *ReadError
	var decodeErr *DecodeError
	var analysisErr *AnalysisError
	switch {
	case errors.As(err, &readErr):
		return "read"
	case errors.As(err, &decodeErr):
		return "decode"
	case errors.As(err, &analysisErr):
		return "analysis"
	default:
		return "unknown"
	}
}
