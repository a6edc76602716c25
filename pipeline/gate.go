package pipeline

import "time"

// CadenceGate decides whether a new processing cycle may run. It enforces a
// maximum processing rate independent of the (generally higher) sample
// arrival rate, so the estimator always sees fixed-length, fixed-hop windows
// regardless of jitter in the source's delivery rate.
type CadenceGate struct {
	hop  time.Duration
	last time.Time
}

// NewCadenceGate creates a gate with the given hop interval. The first cycle
// becomes eligible one hop after start.
func NewCadenceGate(hop time.Duration, start time.Time) *CadenceGate {
	return &CadenceGate{
		hop:  hop,
		last: start,
	}
}

// ShouldProcess returns true iff the window is ready and at least one hop
// interval has elapsed since the last processed cycle.
func (g *CadenceGate) ShouldProcess(now time.Time, windowReady bool) bool {
	return windowReady && now.Sub(g.last) >= g.hop
}

// MarkProcessed records the completion time of a processing cycle.
func (g *CadenceGate) MarkProcessed(now time.Time) {
	g.last = now
}

// Hop returns the configured hop interval.
func (g *CadenceGate) Hop() time.Duration {
	return g.hop
}
