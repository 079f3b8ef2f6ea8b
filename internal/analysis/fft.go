package analysis

import (
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
)

// PowerSpectrum returns the one-sided magnitude spectrum of a series sampled
// every dt, with the mean removed. freqs[i] is the frequency of power[i] in Hz.
func PowerSpectrum(data []float64, dt float64) (freqs, power []float64) {
	n := len(data)
	if n < 2 || dt <= 0 {
		return nil, nil
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
	half := n / 2
	freqs = make([]float64, half)
	power = make([]float64, half)
	for i := 0; i < half; i++ {
		freqs[i] = float64(i) / (float64(n) * dt)
		power[i] = cmplx.Abs(spectrum[i]) / float64(n)
	}
	return freqs, power
}

// DominantFrequency is the non-zero frequency with the most power, or 0 for
// a flat series.
func DominantFrequency(data []float64, dt float64) float64 {
	freqs, power := PowerSpectrum(data, dt)
	best, bestPower := 0.0, 0.0
	for i := 1; i < len(power); i++ {
		if power[i] > bestPower {
			best, bestPower = freqs[i], power[i]
		}
	}
	if bestPower < 1e-12 || math.IsNaN(bestPower) {
		return 0
	}
	return best
}
