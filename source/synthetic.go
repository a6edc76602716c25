package source

import (
	"context"
	"math"
	"math/rand"
	"time"
)

// Tone is a pure sinusoid component of a synthetic channel.
type Tone struct {
	Frequency float64 // Hz
	Amplitude float64 // volts
}

// SyntheticConfig describes the generated stream.
type SyntheticConfig struct {
	SampleRate float64
	// Tones holds one sinusoid per channel.
	Tones []Tone
	// NoiseStdDev is the per-sample Gaussian noise level in volts.
	NoiseStdDev float64
	// Seed fixes the noise generator for reproducible runs.
	Seed int64
	// Paced throttles delivery to real time; leave false for tests.
	Paced bool
}

// DefaultSyntheticConfig mimics a relaxed subject on a four-electrode
// headband: strong 10 Hz alpha on the temporal pair, weak 20 Hz beta on
// the frontal pair, broadband noise everywhere.
func DefaultSyntheticConfig() SyntheticConfig {
	return SyntheticConfig{
		SampleRate: 256.0,
		Tones: []Tone{
			{Frequency: 10.0, Amplitude: 50e-6}, // TP9
			{Frequency: 20.0, Amplitude: 10e-6}, // AF7
			{Frequency: 20.0, Amplitude: 10e-6}, // AF8
			{Frequency: 10.0, Amplitude: 50e-6}, // TP10
		},
		NoiseStdDev: 10e-6,
		Seed:        1,
		Paced:       true,
	}
}

// Synthetic generates a deterministic multi-channel sine stream with
// additive Gaussian noise. It satisfies SampleSource.
type Synthetic struct {
	cfg    SyntheticConfig
	rng    *rand.Rand
	index  int64
	period time.Duration
	next   time.Time
	start  time.Time
}

// NewSynthetic creates a synthetic source from cfg.
func NewSynthetic(cfg SyntheticConfig) *Synthetic {
	now := time.Now()
	return &Synthetic{
		cfg:    cfg,
		rng:    rand.New(rand.NewSource(cfg.Seed)),
		period: time.Duration(float64(time.Second) / cfg.SampleRate),
		next:   now,
		start:  now,
	}
}

// Pull produces the next sample, sleeping until it is due when pacing is
// enabled.
func (s *Synthetic) Pull(ctx context.Context, timeout time.Duration) (Sample, bool, error) {
	if s.cfg.Paced {
		if wait := time.Until(s.next); wait > 0 {
			timer := time.NewTimer(wait)
			defer timer.Stop()
			select {
			case <-ctx.Done():
				return Sample{}, false, ctx.Err()
			case <-timer.C:
			}
		}
		s.next = s.next.Add(s.period)
	}

	t := float64(s.index) / s.cfg.SampleRate
	values := make([]float64, len(s.cfg.Tones))
	for ch, tone := range s.cfg.Tones {
		values[ch] = tone.Amplitude*math.Sin(2*math.Pi*tone.Frequency*t) +
			s.cfg.NoiseStdDev*s.rng.NormFloat64()
	}
	s.index++

	return Sample{
		Values:    values,
		Timestamp: s.start.Add(time.Duration(t * float64(time.Second))),
	}, true, nil
}

// SampleRate returns the nominal sampling rate in Hz.
func (s *Synthetic) SampleRate() float64 {
	return s.cfg.SampleRate
}

// Channels returns the number of generated channels.
func (s *Synthetic) Channels() int {
	return len(s.cfg.Tones)
}

// Close is a no-op for the synthetic source.
func (s *Synthetic) Close() error {
	return nil
}
