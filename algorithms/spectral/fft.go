package spectral

import (
	"github.com/mjibson/go-dsp/fft"
)

// FFT provides Fast Fourier Transform functionality over real signals.
type FFT struct{}

// NewFFT creates a new FFT calculator
func NewFFT() *FFT {
	return &FFT{}
}

// Compute computes the FFT of a real signal using mjibson/go-dsp.
func (f *FFT) Compute(x []float64) []complex128 {
	if len(x) == 0 {
		return []complex128{}
	}

	// go-dsp handles all sizes, including non-power-of-2
	return fft.FFTReal(x)
}

// ComputeOneSided computes the one-sided spectrum of a real signal:
// the first n/2+1 bins of the full FFT.
func (f *FFT) ComputeOneSided(x []float64) []complex128 {
	if len(x) == 0 {
		return []complex128{}
	}

	full := fft.FFTReal(x)
	return full[:len(x)/2+1]
}

// FrequencyBins returns the center frequency of each one-sided FFT bin for
// a signal of length n sampled at sampleRate Hz. Mirrors numpy's rfftfreq.
func FrequencyBins(n int, sampleRate float64) []float64 {
	if n <= 0 {
		return []float64{}
	}

	bins := make([]float64, n/2+1)
	for i := range bins {
		bins[i] = float64(i) * sampleRate / float64(n)
	}
	return bins
}
