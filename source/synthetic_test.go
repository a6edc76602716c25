package source

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func unpacedConfig() SyntheticConfig {
	cfg := DefaultSyntheticConfig()
	cfg.Paced = false
	return cfg
}

func TestSynthetic_ChannelCountAndRate(t *testing.T) {
	src := NewSynthetic(unpacedConfig())
	defer src.Close()

	assert.Equal(t, 4, src.Channels())
	assert.InDelta(t, 256.0, src.SampleRate(), 1e-12)
}

func TestSynthetic_DeterministicPerSeed(t *testing.T) {
	a := NewSynthetic(unpacedConfig())
	b := NewSynthetic(unpacedConfig())

	ctx := context.Background()
	for iter := 0; iter < 64; iter++ {
		sa, okA, errA := a.Pull(ctx, time.Second)
		sb, okB, errB := b.Pull(ctx, time.Second)
		require.NoError(t, errA)
		require.NoError(t, errB)
		require.True(t, okA)
		require.True(t, okB)
		assert.Equal(t, sa.Values, sb.Values)
	}
}

func TestSynthetic_SeedChangesNoise(t *testing.T) {
	cfg := unpacedConfig()
	a := NewSynthetic(cfg)
	cfg.Seed = 2
	b := NewSynthetic(cfg)

	ctx := context.Background()
	sa, _, _ := a.Pull(ctx, time.Second)
	sb, _, _ := b.Pull(ctx, time.Second)
	assert.NotEqual(t, sa.Values, sb.Values)
}

func TestSynthetic_ValuesStayPhysiological(t *testing.T) {
	src := NewSynthetic(unpacedConfig())
	ctx := context.Background()

	// Tone amplitudes top out at 50 uV; noise adds a few sigma at most.
	for iter := 0; iter < 1024; iter++ {
		s, ok, err := src.Pull(ctx, time.Second)
		require.NoError(t, err)
		require.True(t, ok)
		require.Len(t, s.Values, 4)
		for _, v := range s.Values {
			assert.False(t, math.IsNaN(v))
			assert.Less(t, math.Abs(v), 500e-6)
		}
	}
}

func TestSynthetic_TimestampsAdvance(t *testing.T) {
	src := NewSynthetic(unpacedConfig())
	ctx := context.Background()

	first, _, err := src.Pull(ctx, time.Second)
	require.NoError(t, err)
	second, _, err := src.Pull(ctx, time.Second)
	require.NoError(t, err)

	gap := second.Timestamp.Sub(first.Timestamp)
	assert.InDelta(t, float64(time.Second)/256.0, float64(gap), float64(time.Microsecond))
}

func TestSynthetic_PacedHonorsCancellation(t *testing.T) {
	cfg := unpacedConfig()
	cfg.Paced = true
	cfg.SampleRate = 1.0 // one-second period guarantees the second pull waits
	src := NewSynthetic(cfg)

	// Drain one sample so the next pull has to wait for the pacing timer.
	_, _, err := src.Pull(context.Background(), time.Second)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, ok, err := src.Pull(ctx, time.Second)
	assert.False(t, ok)
	assert.ErrorIs(t, err, context.Canceled)
}
