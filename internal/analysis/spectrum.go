package analysis

import (
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
)

// PowerSpectrum returns the magnitude of the first half of the DFT of data
// with its mean removed. Any length is accepted.
func PowerSpectrum(data []float64) []float64 {
	n := len(data)
	if n < 2 {
		return nil
	}

	mean := 0.0
	for _, v := range data {
		mean += v
	}
	mean /= float64(n)

	centered := make([]float64, n)
	for i, v := range data {
		centered[i] = v - mean
	}

	spectrum := fft.FFTReal(centered)
	ps := make([]float64, n/2)
	for i := range ps {
		ps[i] = cmplx.Abs(spectrum[i])
	}
	return ps
}

// DominantPeriod finds the strongest non-zero frequency of values sampled on
// the evenly spaced grid times. ok is false for flat or too short series.
func DominantPeriod(times, values []float64) (period float64, ok bool) {
	n := len(values)
	if n < 4 || len(times) != n {
		return 0, false
	}
	dt := times[1] - times[0]
	if !(dt > 0) {
		return 0, false
	}

	ps := PowerSpectrum(values)
	best, peak := 0, 0.0
	for k := 1; k < len(ps); k++ {
		if ps[k] > peak {
			best, peak = k, ps[k]
		}
	}
	if best == 0 || peak < 1e-12 {
		return 0, false
	}
	return float64(n) * dt / float64(best), true
}

// SpectralEntropy is the normalized Shannon entropy of the power spectrum:
// near 0 for a single tone, near 1 for broadband signals.
func SpectralEntropy(values []float64) float64 {
	ps := PowerSpectrum(values)
	if len(ps) < 2 {
		return 0
	}
	total := 0.0
	for _, p := range ps[1:] {
		total += p * p
	}
	if total == 0 {
		return 0
	}
	h := 0.0
	for _, p := range ps[1:] {
		q := p * p / total
		if q > 0 {
			h -= q * math.Log(q)
		}
	}
	return h / math.Log(float64(len(ps)-1))
}
