// Package sink delivers output packets to the session log and the live
// feedback channels. Delivery is fire-and-forget: failures are logged and
// discarded at the fan-out point and never abort the pipeline.
package sink

import (
	"errors"
	"time"

	"github.com/rocketwave/relaxbridge/logging"
	"github.com/rocketwave/relaxbridge/pipeline"
)

// Sink consumes one output packet per processing cycle. Send returns an
// error instead of raising so the fan-out owns the failure policy.
type Sink interface {
	Name() string
	Send(packet pipeline.Packet) error
	Close() error
}

// SampleForwarder is optionally implemented by sinks that can forward raw
// sample vectors at the source rate.
type SampleForwarder interface {
	SendSample(values []float64, ts time.Time) error
}

// Fanout delivers each packet independently to every sink. Sinks have no
// ordering relationship to each other; a failure on one never blocks
// delivery to the rest.
type Fanout struct {
	sinks  []Sink
	logger logging.Logger
}

// NewFanout creates a fan-out over sinks. A nil logger falls back to the
// global logger.
func NewFanout(sinks []Sink, logger logging.Logger) *Fanout {
	if logger == nil {
		logger = logging.GetGlobalLogger()
	}
	return &Fanout{
		sinks:  sinks,
		logger: logger,
	}
}

// Deliver sends the packet to every sink, logging and discarding per-sink
// failures.
func (f *Fanout) Deliver(packet pipeline.Packet) {
	for _, s := range f.sinks {
		if err := s.Send(packet); err != nil {
			f.logger.Warn("sink delivery failed", logging.Fields{
				"sink": s.Name(),
				"err":  err.Error(),
			})
		}
	}
}

// ForwardSample forwards a raw sample vector to every sink that supports
// raw forwarding, with the same failure policy as Deliver.
func (f *Fanout) ForwardSample(values []float64, ts time.Time) {
	for _, s := range f.sinks {
		fw, ok := s.(SampleForwarder)
		if !ok {
			continue
		}
		if err := fw.SendSample(values, ts); err != nil {
			f.logger.Warn("raw sample forward failed", logging.Fields{
				"sink": s.Name(),
				"err":  err.Error(),
			})
		}
	}
}

// Close closes every sink and joins their errors.
func (f *Fanout) Close() error {
	var errs []error
	for _, s := range f.sinks {
		if err := s.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
