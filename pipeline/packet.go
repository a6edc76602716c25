package pipeline

import "time"

// Packet is the emitted result of one processing cycle. It is immutable
// once constructed and independently consumed by each sink.
type Packet struct {
	// Elapsed is seconds since the pipeline started.
	Elapsed float64

	// Timestamp is the absolute wall-clock time of the cycle.
	Timestamp time.Time

	// AlphaRel and BetaRel are the relative powers used in derivation.
	AlphaRel float64
	BetaRel  float64

	// RI is the raw index, RIEMA the smoothed index and RIScaled the
	// bounded [0,1] output after remap and rate limiting.
	RI       float64
	RIEMA    float64
	RIScaled float64

	// Bands carries the optional five-band spectrum for the pub/sub feed.
	Bands []BandPower
}
