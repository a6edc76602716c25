// Package pipeline implements the streaming relaxation-index pipeline:
// per-channel windowing, cadence-gated Welch band-power estimation, index
// derivation, exponential smoothing with rate-limited rescaling, and
// fan-out of each cycle's result.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/rocketwave/relaxbridge/algorithms/spectral"
	"github.com/rocketwave/relaxbridge/logging"
	"github.com/rocketwave/relaxbridge/source"
)

// Emitter fans one cycle's packet (and optionally raw samples) out to the
// configured sinks. Implementations must be non-blocking best-effort.
type Emitter interface {
	Deliver(packet Packet)
	ForwardSample(values []float64, ts time.Time)
}

// Config holds the full processing configuration.
type Config struct {
	// SampleRate is the assumed sampling rate in Hz, used when the source
	// does not report one.
	SampleRate float64

	// WindowSeconds is the processing window length.
	WindowSeconds float64

	// HopSeconds is the minimum spacing between processing cycles.
	HopSeconds float64

	// SegmentSeconds and SegmentOverlap configure the Welch estimator:
	// segment length in seconds and overlap as a fraction of the segment.
	SegmentSeconds float64
	SegmentOverlap float64

	// PullTimeout bounds each wait for the next sample. A timeout is not
	// an error; the wait is retried.
	PullTimeout time.Duration

	Index      IndexConfig
	Smoothing  SmoothingConfig
	ChannelMap ChannelMap

	// PublishSpectrum computes the five-band spectrum for each packet.
	PublishSpectrum bool

	// ForwardRaw forwards every projected sample to raw-capable sinks.
	ForwardRaw bool
}

// DefaultConfig returns the session defaults: 2 s windows at a 0.1 s hop
// over a 256 Hz stream, with 1 s Welch segments at 50% overlap.
func DefaultConfig() Config {
	return Config{
		SampleRate:     256.0,
		WindowSeconds:  2.0,
		HopSeconds:     0.1,
		SegmentSeconds: 1.0,
		SegmentOverlap: 0.5,
		PullTimeout:    5 * time.Second,
		Index:          DefaultIndexConfig(),
		Smoothing:      DefaultSmoothingConfig(),
		ChannelMap:     DefaultChannelMap(),
	}
}

// Validate checks the configuration for internal consistency.
func (c Config) Validate() error {
	if c.SampleRate <= 0 {
		return fmt.Errorf("sample rate must be positive")
	}
	if c.WindowSeconds <= 0 {
		return fmt.Errorf("window length must be positive")
	}
	if c.HopSeconds <= 0 {
		return fmt.Errorf("hop interval must be positive")
	}
	if c.SegmentSeconds <= 0 || c.SegmentSeconds > c.WindowSeconds {
		return fmt.Errorf("segment length must be in (0, window]")
	}
	if c.SegmentOverlap < 0 || c.SegmentOverlap >= 1 {
		return fmt.Errorf("segment overlap must be in [0, 1)")
	}
	if c.Smoothing.TimeConstant <= 0 {
		return fmt.Errorf("smoothing time constant must be positive")
	}
	if c.Smoothing.MaxStep <= 0 {
		return fmt.Errorf("max step must be positive")
	}
	return nil
}

// Pipeline drives the sequential ingestion and processing loop. All state
// (channel buffers, smoothing state) is touched only from Run's control
// path, so no locking is needed.
type Pipeline struct {
	cfg      Config
	src      source.SampleSource
	emitter  Emitter
	logger   logging.Logger
	channels ResolvedChannelMap
	buffers  *BufferSet
	deriver  *IndexDeriver
	smoother *Smoother
}

// New builds a pipeline over src, emitting results through emitter. The
// channel map is resolved against the source's width once, here.
func New(cfg Config, src source.SampleSource, emitter Emitter, logger logging.Logger) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = logging.GetGlobalLogger()
	}

	fs := src.SampleRate()
	if fs <= 0 {
		fs = cfg.SampleRate
	}
	cfg.SampleRate = fs

	resolved, err := cfg.ChannelMap.Resolve(src.Channels())
	if err != nil {
		return nil, fmt.Errorf("resolve channel map: %w", err)
	}

	windowSize := int(fs * cfg.WindowSeconds)
	segmentLength := int(fs * cfg.SegmentSeconds)
	overlap := int(float64(segmentLength) * cfg.SegmentOverlap)

	// Durations are validated in seconds; at very low sampling rates the
	// derived sample counts can still truncate to zero.
	if windowSize < 1 {
		return nil, fmt.Errorf("window of %g s at %g Hz holds no samples", cfg.WindowSeconds, fs)
	}
	if segmentLength < 1 {
		return nil, fmt.Errorf("segment of %g s at %g Hz holds no samples", cfg.SegmentSeconds, fs)
	}

	welch := spectral.NewWelch(segmentLength, overlap)

	cfg.Smoothing.HopSeconds = cfg.HopSeconds

	return &Pipeline{
		cfg:      cfg,
		src:      src,
		emitter:  emitter,
		logger:   logger,
		channels: resolved,
		buffers:  NewBufferSet(NumChannels, windowSize),
		deriver:  NewIndexDeriver(cfg.Index, welch, fs),
		smoother: NewSmoother(cfg.Smoothing),
	}, nil
}

// Run ingests samples and processes windows until the context is cancelled
// or a finite source is exhausted. Cancellation is observed at the top of
// the loop and is not an error.
func (p *Pipeline) Run(ctx context.Context) error {
	start := time.Now()
	gate := NewCadenceGate(time.Duration(p.cfg.HopSeconds*float64(time.Second)), start)

	p.logger.Info("pipeline started", logging.Fields{
		"sample_rate": p.cfg.SampleRate,
		"window_s":    p.cfg.WindowSeconds,
		"hop_s":       p.cfg.HopSeconds,
	})

	for {
		if ctx.Err() != nil {
			p.logger.Info("pipeline stopping")
			return nil
		}

		sample, ok, err := p.src.Pull(ctx, p.cfg.PullTimeout)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				p.logger.Info("pipeline stopping")
				return nil
			}
			if errors.Is(err, io.EOF) {
				p.logger.Info("source exhausted")
				return nil
			}
			return fmt.Errorf("pull sample: %w", err)
		}
		if !ok {
			// Source stall; retry indefinitely.
			p.logger.Debug("no samples received; still waiting")
			continue
		}

		projected := p.channels.Project(sample.Values)
		for ch := 0; ch < NumChannels; ch++ {
			p.buffers.Append(ch, projected[ch])
		}

		if p.cfg.ForwardRaw {
			p.emitter.ForwardSample(projected[:], sample.Timestamp)
		}

		now := time.Now()
		if gate.ShouldProcess(now, p.buffers.WindowReady()) {
			p.processCycle(now, start)
			gate.MarkProcessed(now)
		}
	}
}

// processCycle freezes the current window, derives the index, updates the
// smoothing state and fans the packet out. Processing is synchronous: no
// new window starts until this returns.
func (p *Pipeline) processCycle(now, start time.Time) {
	window := p.buffers.Snapshot()

	result := p.deriver.Derive(window)
	ema, scaled, updated := p.smoother.Update(result.RI)
	if !updated {
		p.logger.Warn("non-finite index value; smoothing update skipped", logging.Fields{
			"ri": result.RI,
		})
	}

	packet := Packet{
		Elapsed:   now.Sub(start).Seconds(),
		Timestamp: now,
		AlphaRel:  result.AlphaRel,
		BetaRel:   result.BetaRel,
		RI:        result.RI,
		RIEMA:     ema,
		RIScaled:  scaled,
	}
	if p.cfg.PublishSpectrum {
		packet.Bands = p.deriver.Spectrum(window)
	}

	p.emitter.Deliver(packet)

	p.logger.Debug("cycle", logging.Fields{
		"ri":        result.RI,
		"ri_ema":    ema,
		"ri_scaled": scaled,
		"alpha_rel": result.AlphaRel,
		"beta_rel":  result.BetaRel,
	})
}
