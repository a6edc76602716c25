// Package source defines the sample stream contract and the offline
// implementations (synthetic generator, session replay). Live hardware
// bridges plug in behind the same interface.
package source

import (
	"context"
	"errors"
	"time"
)

// ErrNoStream indicates that no sample stream could be found within the
// connection timeout. It is the only fatal source condition.
var ErrNoStream = errors.New("no sample stream found")

// Sample is one timestamped vector of per-channel scalar readings.
type Sample struct {
	Values    []float64
	Timestamp time.Time
}

// SampleSource delivers samples on demand with a bounded wait. The pipeline
// treats any source - live hardware, file replay, synthetic generator -
// identically through this contract.
type SampleSource interface {
	// Pull waits up to timeout for the next sample. ok=false with a nil
	// error means no data arrived yet; the caller retries. io.EOF marks an
	// exhausted finite source.
	Pull(ctx context.Context, timeout time.Duration) (sample Sample, ok bool, err error)

	// SampleRate returns the nominal sampling rate in Hz.
	SampleRate() float64

	// Channels returns the number of channels per sample.
	Channels() int

	Close() error
}
