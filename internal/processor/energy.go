package processor

import "math"

// Energy is the band power of one track at each stage of normalisation
type Energy struct {
	Raw        float64 // trapezoidal integral of power over the band
	Normalized float64 // Raw / track duration in seconds
	Scaled     float64 // Normalized * scale factor
}

// EnergyIntegrator integrates an aggregate spectrum over a frequency band
type EnergyIntegrator struct {
	Range       FrequencyRange
	ChunkSize   int
	ScaleFactor float64
}

// NewEnergyIntegrator builds an integrator from the run configuration
func NewEnergyIntegrator(cfg Config) *EnergyIntegrator {
	return &EnergyIntegrator{
		Range:       cfg.Range,
		ChunkSize:   cfg.ChunkSize,
		ScaleFactor: cfg.ScaleFactor,
	}
}

// Integrate computes the band energy of spectrum. durationSeconds is the
// full track length, including any trailing partial chunk the spectrum
// never saw. An empty spectrum yields zero energy.
func (e *EnergyIntegrator) Integrate(spectrum *Spectrum, sampleRate int, durationSeconds float64) Energy {
	if spectrum.Empty() {
		return Energy{}
	}

	low, high := BandBins(e.Range, sampleRate, e.ChunkSize, len(spectrum.Power))

	var energy Energy
	energy.Raw = TrapezoidalIntegration(spectrum.Power[low:high+1], spectrum.Frequencies[low:high+1])
	if durationSeconds > 0 {
		energy.Normalized = energy.Raw / durationSeconds
	}
	energy.Scaled = energy.Normalized * e.ScaleFactor
	return energy
}

// BandBins maps a frequency range onto inclusive bin indices using a
// resolution of sampleRate/chunkSize: low = floor(lower/res), high = ceil(upper/res).
// Both are clamped to [0, bins-1] so ranges beyond Nyquist never index out of bounds.
func BandBins(r FrequencyRange, sampleRate, chunkSize, bins int) (low, high int) {
	if bins <= 0 {
		return 0, -1
	}
	resolution := float64(sampleRate) / float64(chunkSize)
	low = clampBin(int(math.Floor(r.LowerHz/resolution)), bins)
	high = clampBin(int(math.Ceil(r.UpperHz/resolution)), bins)
	if high < low {
		high = low
	}
	return low, high
}

func clampBin(bin, bins int) int {
	if bin < 0 {
		return 0
	}
	if bin > bins-1 {
		return bins - 1
	}
	return bin
}

// TrapezoidalIntegration returns the area under y(x) using straight segments
// between successive points. Fewer than two points integrate to 0.
func TrapezoidalIntegration(y, x []float64) float64 {
	n := min(len(x), len(y))
	var sum float64
	for i := 1; i < n; i++ {
		sum += (x[i] - x[i-1]) * (y[i] + y[i-1]) / 2
	}
	return sum
}
