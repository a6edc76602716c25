package pipeline

import "github.com/rocketwave/relaxbridge/algorithms/spectral"

// Standard EEG frequency bands in Hz.
var (
	DeltaBand = spectral.Band{Low: 1.0, High: 4.0}
	ThetaBand = spectral.Band{Low: 4.0, High: 8.0}
	AlphaBand = spectral.Band{Low: 8.0, High: 12.0}
	BetaBand  = spectral.Band{Low: 13.0, High: 30.0}
	GammaBand = spectral.Band{Low: 30.0, High: 45.0}

	// TotalBand is the reference band for the relaxation index, excluding
	// delta to keep slow drift out of the denominator.
	TotalBand = spectral.Band{Low: 4.0, High: 45.0}

	// SpectrumTotalBand is the wider reference used for the published
	// five-band spectrum.
	SpectrumTotalBand = spectral.Band{Low: 1.0, High: 45.0}
)

// NamedBand pairs an EEG band with its conventional name.
type NamedBand struct {
	Name string
	Band spectral.Band
}

// SpectrumBands lists the five bands published on the spectrum feed, in
// ascending frequency order.
func SpectrumBands() []NamedBand {
	return []NamedBand{
		{Name: "delta", Band: DeltaBand},
		{Name: "theta", Band: ThetaBand},
		{Name: "alpha", Band: AlphaBand},
		{Name: "beta", Band: BetaBand},
		{Name: "gamma", Band: GammaBand},
	}
}
