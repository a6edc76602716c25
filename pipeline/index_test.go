package pipeline

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketwave/relaxbridge/algorithms/spectral"
)

const testSampleRate = 256.0

// relaxedWindow builds a processing window with strong 10 Hz alpha on the
// temporal pair and weak 20 Hz beta on the frontal pair, plus broadband
// noise - the signature of a relaxed subject.
func relaxedWindow(n int) [][]float64 {
	rng := rand.New(rand.NewSource(11))

	window := make([][]float64, NumChannels)
	for ch := range window {
		window[ch] = make([]float64, n)
	}

	for i := 0; i < n; i++ {
		t := float64(i) / testSampleRate
		alpha := 50e-6 * math.Sin(2*math.Pi*10.0*t)
		beta := 10e-6 * math.Sin(2*math.Pi*20.0*t)

		window[TP9][i] = alpha + 10e-6*rng.NormFloat64()
		window[TP10][i] = alpha + 10e-6*rng.NormFloat64()
		window[AF7][i] = beta + 10e-6*rng.NormFloat64()
		window[AF8][i] = beta + 10e-6*rng.NormFloat64()
	}
	return window
}

func newTestDeriver(cfg IndexConfig) *IndexDeriver {
	return NewIndexDeriver(cfg, spectral.NewWelch(256, 128), testSampleRate)
}

func TestIndexDeriver_RelaxedSubject(t *testing.T) {
	d := newTestDeriver(DefaultIndexConfig())

	result := d.Derive(relaxedWindow(512))

	assert.Greater(t, result.AlphaRel, 0.5)
	assert.Less(t, result.AlphaRel, 1.0)
	assert.Greater(t, result.AlphaRel, result.BetaRel)
	assert.Greater(t, result.RI, 0.05)
	assert.Less(t, result.RI, 1.0)
}

func TestIndexDeriver_RatioMode(t *testing.T) {
	cfg := DefaultIndexConfig()
	cfg.Mode = IndexRatio
	d := newTestDeriver(cfg)

	result := d.Derive(relaxedWindow(512))

	// alpha_rel exceeds beta_rel, so their ratio exceeds one.
	assert.Greater(t, result.RI, 1.0)
}

func TestIndexDeriver_AllZeroWindow(t *testing.T) {
	window := make([][]float64, NumChannels)
	for ch := range window {
		window[ch] = make([]float64, 512)
	}

	for _, mode := range []IndexMode{IndexDifference, IndexRatio} {
		cfg := DefaultIndexConfig()
		cfg.Mode = mode
		result := newTestDeriver(cfg).Derive(window)

		// The epsilon guard keeps silent channels at zero, never NaN.
		assert.Equal(t, 0.0, result.AlphaRel, mode)
		assert.Equal(t, 0.0, result.BetaRel, mode)
		assert.Equal(t, 0.0, result.RI, mode)
		assert.False(t, math.IsNaN(result.RI), mode)
	}
}

func TestIndexDeriver_Deterministic(t *testing.T) {
	d := newTestDeriver(DefaultIndexConfig())
	window := relaxedWindow(512)

	first := d.Derive(window)
	second := d.Derive(window)
	assert.Equal(t, first, second)
}

func TestIndexDeriver_Spectrum(t *testing.T) {
	d := newTestDeriver(DefaultIndexConfig())

	bands := d.Spectrum(relaxedWindow(512))
	require.Len(t, bands, 5)

	byName := make(map[string]BandPower, len(bands))
	for _, bp := range bands {
		assert.GreaterOrEqual(t, bp.Absolute, 0.0)
		assert.GreaterOrEqual(t, bp.Relative, 0.0)
		assert.LessOrEqual(t, bp.Relative, 1.0)
		byName[bp.Name] = bp
	}

	// The 10 Hz alpha tone dominates the spectrum.
	for _, name := range []string{"delta", "theta", "beta", "gamma"} {
		assert.Greater(t, byName["alpha"].Relative, byName[name].Relative)
	}
}
