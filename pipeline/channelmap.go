package pipeline

import "fmt"

// Logical channel positions. The Muse LSL stream delivers electrodes in the
// order TP9, AF7, AF8, TP10.
const (
	TP9 = iota
	AF7
	AF8
	TP10

	NumChannels
)

// ChannelNames maps logical channel positions to electrode names.
var ChannelNames = [NumChannels]string{"TP9", "AF7", "AF8", "TP10"}

// ChannelMap lists, per logical channel, the source column indices to try in
// order. Sources with fewer than four channels fall back to a neighbouring
// electrode instead of dropping the channel.
type ChannelMap [NumChannels][]int

// DefaultChannelMap mirrors the Muse fallback convention: AF8 borrows AF7,
// and the temporal pair borrows TP9.
func DefaultChannelMap() ChannelMap {
	return ChannelMap{
		TP9:  {0},
		AF7:  {1, 0},
		AF8:  {2, 1, 0},
		TP10: {3, 0},
	}
}

// ResolvedChannelMap is a channel map bound to a concrete source width,
// resolved once at startup.
type ResolvedChannelMap [NumChannels]int

// Resolve binds the map to a source with sourceChannels columns, picking the
// first in-range index for each logical channel.
func (m ChannelMap) Resolve(sourceChannels int) (ResolvedChannelMap, error) {
	var resolved ResolvedChannelMap
	if sourceChannels <= 0 {
		return resolved, fmt.Errorf("source has no channels")
	}

	for ch := 0; ch < NumChannels; ch++ {
		found := false
		for _, idx := range m[ch] {
			if idx >= 0 && idx < sourceChannels {
				resolved[ch] = idx
				found = true
				break
			}
		}
		if !found {
			return resolved, fmt.Errorf("channel %s: no usable source index in %v for %d-channel source",
				ChannelNames[ch], m[ch], sourceChannels)
		}
	}
	return resolved, nil
}

// Project extracts the logical channel values from one raw sample vector.
// Values outside the vector read as 0; resolution guarantees this only
// happens if the source narrows mid-stream.
func (r ResolvedChannelMap) Project(sample []float64) [NumChannels]float64 {
	var out [NumChannels]float64
	for ch := 0; ch < NumChannels; ch++ {
		if idx := r[ch]; idx < len(sample) {
			out[ch] = sample[idx]
		}
	}
	return out
}
