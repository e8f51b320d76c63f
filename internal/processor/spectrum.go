package processor

import (
	"math"
	"runtime"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/dsp/fourier"
)

// yieldEvery is how many chunks are processed between cooperative yields
const yieldEvery = 5

// Spectrum is the equal-weighted mean power spectrum of all full chunks of a
// signal. Power[i] is the mean power at Frequencies[i].
// An empty Spectrum (Chunks == 0) means the signal was shorter than one chunk.
type Spectrum struct {
	Frequencies []float64
	Power       []float64
	FFTSize     int
	Chunks      int
}

// Empty reports whether no chunk was analysed
func (s *Spectrum) Empty() bool {
	return s == nil || s.Chunks == 0 || len(s.Power) == 0
}

// SpectralAnalyzer splits a mono signal into fixed-size chunks, windows and
// transforms each one, and averages the chunk power spectra.
type SpectralAnalyzer struct {
	ChunkSize int
	Workers   int

	// Yield is called before chunk 0 and then every yieldEvery chunks.
	// Defaults to runtime.Gosched.
	Yield func()

	// OnChunk is called with each chunk index, in order, as it is accumulated
	OnChunk func(chunk, numChunks int)
}

// NewSpectralAnalyzer builds an analyzer from the run configuration
func NewSpectralAnalyzer(cfg Config) *SpectralAnalyzer {
	return &SpectralAnalyzer{
		ChunkSize: cfg.ChunkSize,
		Workers:   cfg.Workers,
	}
}

// Analyze computes the aggregate power spectrum of mono. Trailing samples
// that do not fill a whole chunk are ignored.
func (a *SpectralAnalyzer) Analyze(mono []float64, sampleRate int) *Spectrum {
	chunkSize := a.ChunkSize
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	fftSize := nextPowerOfTwo(chunkSize)

	numChunks := len(mono) / chunkSize
	if numChunks == 0 {
		return &Spectrum{FFTSize: fftSize}
	}

	spectrum := &Spectrum{
		Frequencies: frequencyAxis(fftSize, sampleRate),
		Power:       make([]float64, fftSize/2),
		FFTSize:     fftSize,
		Chunks:      numChunks,
	}

	if a.Workers > 1 {
		a.analyzeParallel(mono, chunkSize, numChunks, spectrum.Power)
	} else {
		a.analyzeSequential(mono, chunkSize, numChunks, spectrum.Power)
	}

	return spectrum
}

func (a *SpectralAnalyzer) analyzeSequential(mono []float64, chunkSize, numChunks int, agg []float64) {
	p := newPeriodogram(chunkSize)
	var power []float64

	for c := 0; c < numChunks; c++ {
		a.beforeChunk(c, numChunks)

		offset := c * chunkSize
		power = p.compute(mono[offset:offset+chunkSize], power)
		accumulate(agg, power, numChunks)
	}
}

// analyzeParallel transforms Workers chunks at a time, then folds them into
// the running mean in chunk order so the result is bit-identical to the
// sequential path.
func (a *SpectralAnalyzer) analyzeParallel(mono []float64, chunkSize, numChunks int, agg []float64) {
	workers := a.Workers
	periodograms := make([]*periodogram, workers)
	powers := make([][]float64, workers)
	for w := range periodograms {
		periodograms[w] = newPeriodogram(chunkSize)
	}

	for start := 0; start < numChunks; start += workers {
		end := min(start+workers, numChunks)

		var g errgroup.Group
		for c := start; c < end; c++ {
			slot := c - start
			g.Go(func() error {
				offset := c * chunkSize
				powers[slot] = periodograms[slot].compute(mono[offset:offset+chunkSize], powers[slot])
				return nil
			})
		}
		// compute cannot fail; the group only joins the batch
		_ = g.Wait()

		for c := start; c < end; c++ {
			a.beforeChunk(c, numChunks)
			accumulate(agg, powers[c-start], numChunks)
		}
	}
}

func (a *SpectralAnalyzer) beforeChunk(c, numChunks int) {
	if a.OnChunk != nil {
		a.OnChunk(c, numChunks)
	}
	if c%yieldEvery == 0 {
		if a.Yield != nil {
			a.Yield()
		} else {
			runtime.Gosched()
		}
	}
}

// accumulate adds one chunk's share to the running mean. Each term is divided
// before it is summed; summing first and dividing once rounds differently.
func accumulate(agg, power []float64, numChunks int) {
	n := float64(numChunks)
	for i := range agg {
		agg[i] += power[i] / n
	}
}

// periodogram computes Hann-windowed, zero-padded power spectra for inputs
// of one fixed length. Not safe for concurrent use.
type periodogram struct {
	n       int
	fftSize int
	window  []float64
	fft     *fourier.FFT
	buf     []float64
	coeff   []complex128
}

func newPeriodogram(n int) *periodogram {
	fftSize := nextPowerOfTwo(n)
	return &periodogram{
		n:       n,
		fftSize: fftSize,
		window:  hannWindow(n),
		fft:     fourier.NewFFT(fftSize),
		buf:     make([]float64, fftSize),
	}
}

// compute writes fftSize/2 power values for samples into dst, reusing its
// storage when large enough. power[i] = |X[i]|^2 / fftSize^2.
func (p *periodogram) compute(samples []float64, dst []float64) []float64 {
	n := min(len(samples), p.n)
	for i := 0; i < n; i++ {
		p.buf[i] = samples[i] * p.window[i]
	}
	clear(p.buf[n:])

	p.coeff = p.fft.Coefficients(p.coeff, p.buf)

	bins := p.fftSize / 2
	if cap(dst) < bins {
		dst = make([]float64, bins)
	}
	dst = dst[:bins]

	norm := float64(p.fftSize) * float64(p.fftSize)
	for i := 0; i < bins; i++ {
		re := real(p.coeff[i])
		im := imag(p.coeff[i])
		dst[i] = (re*re + im*im) / norm
	}
	return dst
}

// hannWindow spans the unpadded length n: w[i] = 0.5 * (1 - cos(2*pi*i/(n-1))).
// A one-sample window is 1.
func hannWindow(n int) []float64 {
	w := make([]float64, n)
	if n == 1 {
		w[0] = 1
		return w
	}
	for i := range w {
		w[i] = 0.5 * (1 - math.Cos(2*math.Pi*float64(i)/float64(n-1)))
	}
	return w
}

// frequencyAxis returns the centre frequency of each of the fftSize/2 bins
func frequencyAxis(fftSize, sampleRate int) []float64 {
	resolution := float64(sampleRate) / float64(fftSize)
	freqs := make([]float64, fftSize/2)
	for i := range freqs {
		freqs[i] = float64(i) * resolution
	}
	return freqs
}

// nextPowerOfTwo returns the smallest power of 2 greater than or equal to n
func nextPowerOfTwo(n int) int {
	p := 1
	for p < n {
		p *= 2
	}
	return p
}
