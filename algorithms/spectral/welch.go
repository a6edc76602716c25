package spectral

import (
	"math/cmplx"

	"gonum.org/v1/gonum/integrate"

	"github.com/rocketwave/relaxbridge/algorithms/common"
	"github.com/rocketwave/relaxbridge/algorithms/windowing"
)

// Band is a closed frequency interval in Hz.
type Band struct {
	Low  float64
	High float64
}

// Contains reports whether freq lies inside the band (inclusive).
func (b Band) Contains(freq float64) bool {
	return freq >= b.Low && freq <= b.High
}

// Welch estimates band power with Welch's method: the signal is demeaned,
// split into overlapping Hann-windowed segments, the segment periodograms
// are averaged, and the averaged PSD is integrated over the requested band.
//
// The estimator is stateless apart from the precomputed window
// coefficients; identical inputs always produce identical outputs.
type Welch struct {
	segmentLength int
	overlap       int
	window        *windowing.Hann
	fft           *FFT
}

// NewWelch creates a Welch estimator with the given segment length and
// overlap in samples. Overlap is clipped to [0, segmentLength-1].
func NewWelch(segmentLength, overlap int) *Welch {
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= segmentLength && segmentLength > 0 {
		overlap = segmentLength - 1
	}

	w := &Welch{
		segmentLength: segmentLength,
		overlap:       overlap,
		fft:           NewFFT(),
	}
	if segmentLength > 0 {
		w.window = windowing.NewHann(segmentLength, true)
	}
	return w
}

// SegmentLength returns the configured segment length in samples.
func (w *Welch) SegmentLength() int {
	return w.segmentLength
}

// Overlap returns the configured segment overlap in samples.
func (w *Welch) Overlap() int {
	return w.overlap
}

// PSD computes the averaged one-sided power spectral density of signal
// sampled at sampleRate Hz, and the frequency of each bin. Degenerate
// input (empty signal, non-positive or too-long segment, zero-energy
// window) yields nil slices.
func (w *Welch) PSD(signal []float64, sampleRate float64) (psd, freqs []float64) {
	n := len(signal)
	if n == 0 || w.segmentLength <= 0 || w.segmentLength > n || sampleRate <= 0 {
		return nil, nil
	}

	windowNorm := w.window.SumSquares()
	if windowNorm == 0 {
		return nil, nil
	}

	// Remove the window-level mean to reduce DC leakage
	mean := common.Mean(signal)
	x := make([]float64, n)
	for i, v := range signal {
		x[i] = v - mean
	}

	step := w.segmentLength - w.overlap
	if step < 1 {
		step = 1
	}

	numBins := w.segmentLength/2 + 1
	accum := make([]float64, numBins)
	seg := make([]float64, w.segmentLength)

	numSegments := 0
	scale := sampleRate * windowNorm
	for offset := 0; offset+w.segmentLength <= n; offset += step {
		copy(seg, x[offset:offset+w.segmentLength])

		// Per-segment demean before windowing
		segMean := common.Mean(seg)
		for i := range seg {
			seg[i] -= segMean
		}
		if err := w.window.ApplyInPlace(seg); err != nil {
			return nil, nil
		}

		spectrum := w.fft.ComputeOneSided(seg)
		for i, c := range spectrum {
			mag := cmplx.Abs(c)
			accum[i] += mag * mag / scale
		}
		numSegments++
	}

	if numSegments == 0 {
		return nil, nil
	}

	for i := range accum {
		accum[i] /= float64(numSegments)
	}

	// Fold negative-frequency power into the positive bins so integrating
	// the one-sided PSD recovers the signal's full power. DC has no mirror,
	// nor does Nyquist for even segment lengths.
	for i := 1; i < numBins; i++ {
		if w.segmentLength%2 == 0 && i == numBins-1 {
			continue
		}
		accum[i] *= 2
	}

	return accum, FrequencyBins(w.segmentLength, sampleRate)
}

// BandPower integrates the Welch PSD of signal over band and returns a
// single non-negative power value. All degenerate cases (empty signal,
// invalid segment parameters, no bin inside the band) return 0.
func (w *Welch) BandPower(signal []float64, sampleRate float64, band Band) float64 {
	psd, freqs := w.PSD(signal, sampleRate)
	return IntegrateBand(psd, freqs, band)
}

// IntegrateBand integrates an already-computed PSD over the bins whose
// frequency lies inside band, via trapezoidal quadrature against the
// frequency axis. Fewer than two bins in the band integrate to 0.
func IntegrateBand(psd, freqs []float64, band Band) float64 {
	if len(psd) == 0 || len(psd) != len(freqs) {
		return 0.0
	}

	var bandFreqs, bandPSD []float64
	for i, f := range freqs {
		if band.Contains(f) {
			bandFreqs = append(bandFreqs, f)
			bandPSD = append(bandPSD, psd[i])
		}
	}

	if len(bandFreqs) < 2 {
		return 0.0
	}

	return integrate.Trapezoidal(bandFreqs, bandPSD)
}
