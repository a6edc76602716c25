package pipeline

import (
	"github.com/rocketwave/relaxbridge/algorithms/spectral"
)

// IndexMode selects how the two relative powers combine into the raw index.
type IndexMode string

const (
	// IndexDifference computes alpha_rel - beta_rel, nominally in [-1, 1].
	IndexDifference IndexMode = "difference"
	// IndexRatio computes alpha_rel / (beta_rel + epsilon).
	IndexRatio IndexMode = "ratio"
)

// IndexConfig configures the derivation of the raw relaxation index from
// per-channel band powers.
type IndexConfig struct {
	AlphaBand spectral.Band `json:"alpha_band"`
	BetaBand  spectral.Band `json:"beta_band"`
	TotalBand spectral.Band `json:"total_band"`

	Mode IndexMode `json:"mode"`

	// Epsilon guards the relative-power division on silent channels.
	Epsilon float64 `json:"epsilon"`
}

// DefaultIndexConfig returns the standard alpha-vs-beta derivation.
func DefaultIndexConfig() IndexConfig {
	return IndexConfig{
		AlphaBand: AlphaBand,
		BetaBand:  BetaBand,
		TotalBand: TotalBand,
		Mode:      IndexDifference,
		Epsilon:   1e-9,
	}
}

// IndexResult holds the relative powers and raw index for one cycle.
type IndexResult struct {
	AlphaRel float64
	BetaRel  float64
	RI       float64
}

// BandPower is one named band's integrated power for a processing window,
// averaged across all channels.
type BandPower struct {
	Name     string
	Absolute float64
	Relative float64
}

// IndexDeriver reduces a processing window to relative powers and a raw
// relaxation index. Alpha activity is read from the temporal pair
// (TP9/TP10), beta activity from the frontal pair (AF7/AF8); averaging each
// symmetric pair reduces single-electrode noise sensitivity.
type IndexDeriver struct {
	cfg        IndexConfig
	welch      *spectral.Welch
	sampleRate float64
}

// NewIndexDeriver creates a deriver bound to a Welch estimator and a
// nominal sampling rate.
func NewIndexDeriver(cfg IndexConfig, welch *spectral.Welch, sampleRate float64) *IndexDeriver {
	return &IndexDeriver{
		cfg:        cfg,
		welch:      welch,
		sampleRate: sampleRate,
	}
}

// Derive computes the relative powers and raw index for one processing
// window, indexed by logical channel. Silent windows yield zero relative
// powers rather than NaN.
func (d *IndexDeriver) Derive(window [][]float64) IndexResult {
	psds := d.channelPSDs(window)

	alphaTP := 0.5 * (d.integrate(psds[TP9], d.cfg.AlphaBand) + d.integrate(psds[TP10], d.cfg.AlphaBand))
	betaAF := 0.5 * (d.integrate(psds[AF7], d.cfg.BetaBand) + d.integrate(psds[AF8], d.cfg.BetaBand))
	totalTP := 0.5 * (d.integrate(psds[TP9], d.cfg.TotalBand) + d.integrate(psds[TP10], d.cfg.TotalBand))
	totalAF := 0.5 * (d.integrate(psds[AF7], d.cfg.TotalBand) + d.integrate(psds[AF8], d.cfg.TotalBand))

	alphaRel := alphaTP / (totalTP + d.cfg.Epsilon)
	betaRel := betaAF / (totalAF + d.cfg.Epsilon)

	var ri float64
	switch d.cfg.Mode {
	case IndexRatio:
		ri = alphaRel / (betaRel + d.cfg.Epsilon)
	default:
		ri = alphaRel - betaRel
	}

	return IndexResult{
		AlphaRel: alphaRel,
		BetaRel:  betaRel,
		RI:       ri,
	}
}

// Spectrum computes the absolute and relative power of the five standard
// bands for one processing window, averaged across all channels.
func (d *IndexDeriver) Spectrum(window [][]float64) []BandPower {
	psds := d.channelPSDs(window)

	total := d.averageAcrossChannels(psds, SpectrumTotalBand)

	bands := SpectrumBands()
	out := make([]BandPower, len(bands))
	for i, nb := range bands {
		abs := d.averageAcrossChannels(psds, nb.Band)
		out[i] = BandPower{
			Name:     nb.Name,
			Absolute: abs,
			Relative: abs / (total + d.cfg.Epsilon),
		}
	}
	return out
}

type channelPSD struct {
	psd   []float64
	freqs []float64
}

// channelPSDs computes each channel's Welch PSD once so multiple band
// integrations share it.
func (d *IndexDeriver) channelPSDs(window [][]float64) [NumChannels]channelPSD {
	var psds [NumChannels]channelPSD
	for ch := 0; ch < NumChannels; ch++ {
		if ch < len(window) {
			psd, freqs := d.welch.PSD(window[ch], d.sampleRate)
			psds[ch] = channelPSD{psd: psd, freqs: freqs}
		}
	}
	return psds
}

func (d *IndexDeriver) integrate(c channelPSD, band spectral.Band) float64 {
	return spectral.IntegrateBand(c.psd, c.freqs, band)
}

func (d *IndexDeriver) averageAcrossChannels(psds [NumChannels]channelPSD, band spectral.Band) float64 {
	var sum float64
	for ch := 0; ch < NumChannels; ch++ {
		sum += d.integrate(psds[ch], band)
	}
	return sum / float64(NumChannels)
}
